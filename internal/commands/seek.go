package commands

import (
	"context"
	"fmt"
)

// SeekCommand moves playback to a position given as seconds, m:ss or h:mm:ss
func SeekCommand(ctx context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}
	current := s.Current()
	if current == nil {
		return env.Reply(inv, msgNothingPlaying)
	}
	if len(inv.Args) == 0 {
		return env.Reply(inv, fmt.Sprintf("❌ Usage: `%sseek <seconds | m:ss | h:mm:ss>`", env.Prefix))
	}
	if !current.Seekable() {
		return env.Reply(inv, "❌ Live streams cannot be seeked!")
	}

	position, err := ParseSeek(inv.Arg(0), current.Length)
	if err != nil {
		return env.Reply(inv, fmt.Sprintf("❌ Invalid position! The track is **%s** long.", trackLength(*current)))
	}
	if err := s.Seek(ctx, position); err != nil {
		return err
	}
	return env.Send(inv.ChannelID, fmt.Sprintf("⏩ Seeked to **%s**", clock(position)))
}
