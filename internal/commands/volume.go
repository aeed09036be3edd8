package commands

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// VolumeCommand shows the volume, or sets it from an integer 0–100
func VolumeCommand(ctx context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}

	if len(inv.Args) == 0 {
		return env.Send(inv.ChannelID, fmt.Sprintf("🔊 Volume: **%d%%**", s.Volume()))
	}

	volume, err := ParseVolume(inv.Arg(0))
	if err != nil {
		return env.Reply(inv, "❌ Volume must be a number between 0 and 100!")
	}
	if err := s.SetVolume(ctx, volume); err != nil {
		return errors.Wrapf(err, "set volume %d", volume)
	}
	return env.Send(inv.ChannelID, fmt.Sprintf("🔊 Volume set to **%d%%**", volume))
}
