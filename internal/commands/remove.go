package commands

import (
	"context"
	"fmt"
)

// RemoveCommand removes a pending track by its 1-based position
func RemoveCommand(_ context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}
	if len(inv.Args) == 0 {
		return env.Reply(inv, fmt.Sprintf("❌ Usage: `%sremove <position>`", env.Prefix))
	}

	size := s.QueueSize()
	index, err := ParseRemoveIndex(inv.Arg(0), size)
	if err != nil {
		return env.Reply(inv, fmt.Sprintf("❌ Invalid position! The queue has **%d** tracks.", size))
	}

	removed, err := s.Remove(index)
	if err != nil {
		// the queue shrank since it was measured
		return env.Reply(inv, fmt.Sprintf("❌ Invalid position! The queue has **%d** tracks.", s.QueueSize()))
	}
	return env.Send(inv.ChannelID, fmt.Sprintf("🗑️ Removed: **%s**", removed.Title))
}
