package commands

import "context"

// PauseCommand toggles pause
func PauseCommand(ctx context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}

	paused, err := s.TogglePause(ctx)
	if err != nil {
		return err
	}
	if paused {
		return env.Send(inv.ChannelID, "⏸️ Paused!")
	}
	return env.Send(inv.ChannelID, "▶️ Resumed!")
}

// ResumeCommand resumes a paused player
func ResumeCommand(ctx context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}
	if !s.Paused() {
		return env.Reply(inv, "❌ The player is not paused!")
	}

	if err := s.SetPaused(ctx, false); err != nil {
		return err
	}
	return env.Send(inv.ChannelID, "▶️ Resumed!")
}
