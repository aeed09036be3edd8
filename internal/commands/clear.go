package commands

import (
	"context"
	"fmt"
)

// ClearCommand empties the pending queue, leaving the current track playing
func ClearCommand(_ context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}

	n := s.Clear()
	return env.Send(inv.ChannelID, fmt.Sprintf("🧹 Cleared **%d** tracks from the queue!", n))
}
