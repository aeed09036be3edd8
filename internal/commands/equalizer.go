package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/latoulicious/Serenade/pkg/filters"
)

// BassBoostCommand applies a bass boost level
func BassBoostCommand(ctx context.Context, env *Env, inv *Invocation) error {
	return applyTable(ctx, env, inv, filters.BassBoost, "bassboost", "🎸 Bass boost: **%s**")
}

// PresetCommand applies a named equalizer preset
func PresetCommand(ctx context.Context, env *Env, inv *Invocation) error {
	return applyTable(ctx, env, inv, filters.Presets, "preset", "🎚️ Equalizer preset: **%s**")
}

func applyTable(ctx context.Context, env *Env, inv *Invocation, table filters.Table, usage, confirm string) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}

	valid := strings.Join(table.Names(), ", ")
	if len(inv.Args) == 0 {
		return env.Reply(inv, fmt.Sprintf("❌ Usage: `%s%s <%s>`", env.Prefix, usage, strings.Join(table.Names(), "|")))
	}

	name := strings.ToLower(inv.Arg(0))
	eq, err := table.Lookup(name)
	if err != nil {
		return env.Reply(inv, fmt.Sprintf("❌ Unknown option `%s`! Valid: %s", inv.Arg(0), valid))
	}
	if err := s.SetEqualizer(ctx, eq, table.Label(name)); err != nil {
		return err
	}
	return env.Send(inv.ChannelID, fmt.Sprintf(confirm, name))
}
