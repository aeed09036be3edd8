package commands

import (
	"context"
	"fmt"

	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/playback"
	"github.com/pkg/errors"
)

const (
	msgNoQuery    = "❌ Provide a song name!"
	msgNoResults  = "❌ No results found!"
	msgPlayFailed = "❌ Error playing, try again!"
)

// PlayCommand searches for the query and queues the first result, joining
// the caller's voice channel when the guild has no player yet
func PlayCommand(ctx context.Context, env *Env, inv *Invocation) error {
	voiceChannelID, err := env.Voice.UserVoiceChannel(inv.GuildID, inv.Author.ID)
	if err != nil {
		if !errors.Is(err, common.ErrNotInVoice) {
			env.Log.WithFields(inv.Fields()).WithError(err).Warn("Voice state lookup failed")
		}
		return env.Reply(inv, msgNotInVoice)
	}

	query := inv.Query()
	if query == "" {
		return env.Reply(inv, msgNoQuery)
	}

	session, err := env.Playback.Create(ctx, inv.GuildID, inv.ChannelID, voiceChannelID)
	if err != nil {
		env.Log.WithFields(inv.Fields()).WithError(err).Error("Failed to create player")
		return env.Reply(inv, msgPlayFailed)
	}

	tracks, err := env.Playback.Search(ctx, query, inv.Author)
	if err != nil {
		releaseIdle(ctx, env, inv, session)
		if errors.Is(err, playback.ErrNoResults) {
			return env.Reply(inv, msgNoResults)
		}
		env.Log.WithFields(inv.Fields()).WithError(err).Error("Search failed")
		return env.Reply(inv, msgPlayFailed)
	}

	track := tracks[0]
	session.Enqueue(track)
	if err := env.Send(inv.ChannelID, fmt.Sprintf("➕ Added: **%s**", track.Title)); err != nil {
		env.Log.WithFields(inv.Fields()).WithError(err).Warn("Failed to confirm queued track")
	}

	if _, err := session.Start(ctx); err != nil {
		env.Log.WithFields(inv.Fields()).WithError(err).Error("Failed to start playback")
		return env.Reply(inv, msgPlayFailed)
	}
	return nil
}

// releaseIdle destroys a session that has nothing to play so a failed first
// search does not leave the bot sitting in voice
func releaseIdle(ctx context.Context, env *Env, inv *Invocation, s *playback.Session) {
	if _, err := env.Playback.Release(ctx, inv.GuildID, s.ID(), true); err != nil {
		env.Log.WithFields(inv.Fields()).WithError(err).Warn("Failed to release idle player")
	}
}
