package commands

import (
	"context"
	"fmt"
)

// SkipCommand skips the current track
func SkipCommand(ctx context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}
	if s.Current() == nil {
		return env.Reply(inv, msgNothingPlaying)
	}

	skipped, err := s.Skip(ctx)
	if err != nil {
		return err
	}
	return env.Send(inv.ChannelID, fmt.Sprintf("⏭️ Skipped: **%s**", skipped.Title))
}
