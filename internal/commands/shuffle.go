package commands

import (
	"context"
	"fmt"

	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/pkg/errors"
)

// ShuffleCommand shuffles the pending tracks
func ShuffleCommand(_ context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}

	n, err := s.Shuffle()
	if errors.Is(err, common.ErrNotEnoughTracks) {
		return env.Reply(inv, "❌ Need at least 2 tracks in the queue to shuffle!")
	}
	if err != nil {
		return err
	}
	return env.Send(inv.ChannelID, fmt.Sprintf("🔀 Shuffled **%d** tracks!", n))
}
