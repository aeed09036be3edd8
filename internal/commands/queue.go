package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/samber/lo"
)

const queuePageSize = 10

// QueueCommand lists the current track and one page of upcoming tracks
func QueueCommand(_ context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}

	current := s.Current()
	pending := s.Queue()
	if current == nil && len(pending) == 0 {
		return env.Reply(inv, "📭 The queue is empty!")
	}

	pages := (len(pending) + queuePageSize - 1) / queuePageSize
	if pages == 0 {
		pages = 1
	}
	page := ParsePage(inv.Arg(0), pages)

	var b strings.Builder
	if current != nil {
		fmt.Fprintf(&b, "**Now Playing**\n%s `[%s]`\n\n", trackLink(*current), trackLength(*current))
	}
	b.WriteString("**Up Next**\n")
	if len(pending) == 0 {
		b.WriteString("Nothing queued")
	} else {
		start := (page - 1) * queuePageSize
		end := min(start+queuePageSize, len(pending))
		lines := lo.Map(pending[start:end], func(t common.Track, i int) string {
			return fmt.Sprintf("`%d.` %s `[%s]` • %s", start+i+1, trackLink(t), trackLength(t), orDash(t.Requester.Mention()))
		})
		b.WriteString(strings.Join(lines, "\n"))
	}

	embed := newEmbed("🎶 Queue", b.String(), colorInfo)
	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name:   "Tracks",
			Value:  fmt.Sprintf("%d", len(pending)),
			Inline: true,
		},
		{
			Name:   "Total length",
			Value:  clock(s.QueueLength()),
			Inline: true,
		},
		{
			Name:   "Loop",
			Value:  s.Loop().String(),
			Inline: true,
		},
	}
	embed.Footer.Text = fmt.Sprintf("%s • Page %d/%d", footerText, page, pages)
	return env.SendEmbed(inv.ChannelID, embed)
}
