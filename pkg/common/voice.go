package common

import (
	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
)

// ErrNotInVoice is returned when the user is not connected to a voice channel
var ErrNotInVoice = errors.New("user is not in a voice channel")

// FindUserVoiceChannel looks up the voice channel a user is connected to in
// the gateway state cache
func FindUserVoiceChannel(state *discordgo.State, guildID, userID string) (string, error) {
	if state == nil {
		return "", errors.New("gateway state unavailable")
	}

	vs, err := state.VoiceState(guildID, userID)
	if err != nil {
		if errors.Is(err, discordgo.ErrStateNotFound) {
			return "", ErrNotInVoice
		}
		return "", errors.Wrapf(err, "voice state for user %s in guild %s", userID, guildID)
	}

	if vs.ChannelID == "" {
		return "", ErrNotInVoice
	}
	return vs.ChannelID, nil
}
