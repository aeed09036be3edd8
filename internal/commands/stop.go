package commands

import "context"

// StopCommand destroys the guild's player and leaves voice
func StopCommand(ctx context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}

	if err := env.Playback.Destroy(ctx, inv.GuildID); err != nil {
		return err
	}
	return env.Send(inv.ChannelID, "⏹️ Stopped!")
}
