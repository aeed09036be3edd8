package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
)

type helpSection struct {
	name  string
	lines []string
}

// helpSections uses %[1]s for the command prefix
var helpSections = []helpSection{
	{
		name: "🎵 Music",
		lines: []string{
			"`%[1]splay <query|url>` / `%[1]sp` - Search and queue a track",
			"`%[1]sskip` / `%[1]ss` - Skip the current track",
			"`%[1]sstop` / `%[1]sdc` / `%[1]sleave` - Stop and disconnect",
			"`%[1]spause` - Toggle pause",
			"`%[1]sresume` / `%[1]sunpause` - Resume playback",
			"`%[1]snowplaying` / `%[1]snp` - Show the current track",
			"`%[1]sseek <s|m:ss|h:mm:ss>` - Jump to a position",
			"`%[1]svolume [0-100]` / `%[1]svol` / `%[1]sv` - Show or set the volume",
		},
	},
	{
		name: "📜 Queue",
		lines: []string{
			"`%[1]squeue [page]` / `%[1]sq` - Show the queue",
			"`%[1]sshuffle` - Shuffle the queue",
			"`%[1]sloop [track|queue|off]` / `%[1]srepeat` - Set or cycle the loop mode",
			"`%[1]sremove <position>` / `%[1]srm` - Remove a track",
			"`%[1]sclear` - Clear the queue",
		},
	},
	{
		name: "🎛️ Filters",
		lines: []string{
			"`%[1]sbassboost <off|low|medium|high>` / `%[1]sbb` - Bass boost",
			"`%[1]spreset <clear|vocal|boost|flat>` / `%[1]seq` - Equalizer preset",
			"`%[1]snightcore` / `%[1]sslowed` / `%[1]svaporwave` - Speed and pitch",
			"`%[1]s8d` / `%[1]skaraoke` / `%[1]stremolo` / `%[1]svibrato` - Effects",
			"`%[1]sfilters` - Show active filters",
			"`%[1]sclearfilter` / `%[1]scf` / `%[1]sreset` - Remove all filters",
		},
	},
	{
		name: "ℹ️ Other",
		lines: []string{
			"`%[1]sping` - Gateway latency",
			"`%[1]sabout` / `%[1]sinfo` - Bot information",
			"`%[1]shelp` / `%[1]sh` - Show this message",
		},
	},
}

// HelpCommand lists every command
func HelpCommand(_ context.Context, env *Env, inv *Invocation) error {
	embed := newEmbed("Serenade", "Here are all the available commands:", colorInfo)
	for _, section := range helpSections {
		lines := make([]string, len(section.lines))
		for i, line := range section.lines {
			lines[i] = "• " + fmt.Sprintf(line, env.Prefix)
		}
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  section.name,
			Value: strings.Join(lines, "\n"),
		})
	}
	embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
		Name:  "💡 Tips",
		Value: "• Join a voice channel **before** using `" + env.Prefix + "play`",
	})
	return env.SendEmbed(inv.ChannelID, embed)
}
