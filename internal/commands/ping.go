package commands

import (
	"context"
	"fmt"
)

// PingCommand reports the gateway heartbeat latency
func PingCommand(_ context.Context, env *Env, inv *Invocation) error {
	return env.Send(inv.ChannelID, fmt.Sprintf("🏓 Pong! Latency: **%dms**", env.Voice.Latency().Milliseconds()))
}
