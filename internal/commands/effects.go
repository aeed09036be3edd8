package commands

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Serenade/pkg/filters"
	"github.com/latoulicious/Serenade/pkg/playback"
)

// effect applies one filter preset to the guild's player and confirms it
func effect(ctx context.Context, env *Env, inv *Invocation, apply func(*playback.Session) error, confirm string) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}
	if err := apply(s); err != nil {
		return err
	}
	return env.Send(inv.ChannelID, confirm)
}

func NightcoreCommand(ctx context.Context, env *Env, inv *Invocation) error {
	return effect(ctx, env, inv, func(s *playback.Session) error {
		return s.SetTimescale(ctx, filters.Nightcore, "nightcore")
	}, "🌙 Nightcore enabled!")
}

func SlowedCommand(ctx context.Context, env *Env, inv *Invocation) error {
	return effect(ctx, env, inv, func(s *playback.Session) error {
		return s.SetTimescale(ctx, filters.Slowed, "slowed")
	}, "🐢 Slowed enabled!")
}

func VaporwaveCommand(ctx context.Context, env *Env, inv *Invocation) error {
	return effect(ctx, env, inv, func(s *playback.Session) error {
		return s.SetTimescale(ctx, filters.Vaporwave, "vaporwave")
	}, "🌴 Vaporwave enabled!")
}

func EightDCommand(ctx context.Context, env *Env, inv *Invocation) error {
	return effect(ctx, env, inv, func(s *playback.Session) error {
		return s.SetRotation(ctx, filters.EightD)
	}, "🎧 8D audio enabled!")
}

func KaraokeCommand(ctx context.Context, env *Env, inv *Invocation) error {
	return effect(ctx, env, inv, func(s *playback.Session) error {
		return s.SetKaraoke(ctx, filters.DefaultKaraoke)
	}, "🎤 Karaoke enabled!")
}

func TremoloCommand(ctx context.Context, env *Env, inv *Invocation) error {
	return effect(ctx, env, inv, func(s *playback.Session) error {
		return s.SetTremolo(ctx, filters.DefaultTremolo)
	}, "〰️ Tremolo enabled!")
}

func VibratoCommand(ctx context.Context, env *Env, inv *Invocation) error {
	return effect(ctx, env, inv, func(s *playback.Session) error {
		return s.SetVibrato(ctx, filters.DefaultVibrato)
	}, "🎻 Vibrato enabled!")
}

// ClearFilterCommand disables every filter
func ClearFilterCommand(ctx context.Context, env *Env, inv *Invocation) error {
	return effect(ctx, env, inv, func(s *playback.Session) error {
		return s.ClearFilters(ctx)
	}, "✅ All filters cleared!")
}

// FiltersCommand lists the active filters
func FiltersCommand(_ context.Context, env *Env, inv *Invocation) error {
	s, err := env.session(inv)
	if s == nil {
		return err
	}

	active := s.Filters()
	embed := newEmbed("🎛️ Active Filters", "No filters active", colorIdle)
	if active.Active() {
		embed.Description = ""
		embed.Color = colorInfo
		for _, name := range active.Names() {
			embed.Description += fmt.Sprintf("• %s\n", name)
		}
	}
	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name:   "Reset",
			Value:  fmt.Sprintf("`%sclearfilter`", env.Prefix),
			Inline: true,
		},
	}
	return env.SendEmbed(inv.ChannelID, embed)
}
