package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Serenade/pkg/common"
)

// NowPlayingCommand shows the current track with a progress bar
func NowPlayingCommand(_ context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}
	current := s.Current()
	if current == nil {
		return env.Reply(inv, msgNothingPlaying)
	}

	status := "▶️ Playing"
	if s.Paused() {
		status = "⏸️ Paused"
	}
	return env.SendEmbed(inv.ChannelID, nowPlayingEmbed(*current, s.Position(), s.Volume(), s.Loop(), status))
}

func nowPlayingEmbed(t common.Track, position time.Duration, volume int, loop common.LoopMode, status string) *discordgo.MessageEmbed {
	pos := position.Milliseconds()
	length := t.LengthMs()

	progress := common.ProgressBar(pos, length)
	if length > 0 {
		progress = fmt.Sprintf("%s\n`%s / %s`", progress, common.FormatDuration(pos), common.FormatDuration(length))
	}

	embed := newEmbed("🎵 Now Playing", fmt.Sprintf("%s\n\n%s", trackLink(t), progress), colorPlaying)
	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name:   "Requested by",
			Value:  orDash(t.Requester.Mention()),
			Inline: true,
		},
		{
			Name:   "Volume",
			Value:  fmt.Sprintf("%d%%", volume),
			Inline: true,
		},
		{
			Name:   "Loop",
			Value:  loop.String(),
			Inline: true,
		},
		{
			Name:   "Status",
			Value:  status,
			Inline: true,
		},
	}
	return withThumbnail(embed, t)
}
