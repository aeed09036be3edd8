package commands

import (
	"context"
	"fmt"
)

// LoopCommand sets the loop mode, or cycles off → track → queue without an argument
func LoopCommand(_ context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}

	mode := s.Loop().Next()
	if len(inv.Args) > 0 {
		mode, err = ParseLoop(inv.Arg(0))
		if err != nil {
			return env.Reply(inv, "❌ Invalid loop mode! Use: `track`, `queue` or `off`")
		}
	}

	s.SetLoop(mode)
	return env.Send(inv.ChannelID, fmt.Sprintf("🔁 Loop: **%s**", mode))
}
