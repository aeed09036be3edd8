package handlers

import (
	"context"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

const voiceUpdateTimeout = 10 * time.Second

// VoiceForwarder hands voice gateway updates to the playback client
type VoiceForwarder interface {
	VoiceStateUpdate(ctx context.Context, guildID, channelID, sessionID string)
	VoiceServerUpdate(ctx context.Context, guildID, token, endpoint string)
}

// VoiceTracker is told when the gateway reports the bot joining or leaving
// a voice channel
type VoiceTracker interface {
	OnVoiceJoined(guildID, channelID string)
	OnVoiceLeft(guildID string)
}

// VoiceHandler forwards the bot's own voice updates straight to the playback
// client, outside the dispatch loop
type VoiceHandler struct {
	botUserID string
	forwarder VoiceForwarder
	tracker   VoiceTracker
	log       *logrus.Entry
}

func NewVoiceHandler(botUserID string, forwarder VoiceForwarder, tracker VoiceTracker, log *logrus.Entry) *VoiceHandler {
	return &VoiceHandler{
		botUserID: botUserID,
		forwarder: forwarder,
		tracker:   tracker,
		log:       log,
	}
}

func (h *VoiceHandler) VoiceStateUpdate(s *discordgo.Session, e *discordgo.VoiceStateUpdate) {
	if e.VoiceState == nil {
		return
	}
	h.onVoiceState(e.UserID, e.GuildID, e.ChannelID, e.SessionID)
}

func (h *VoiceHandler) onVoiceState(userID, guildID, channelID, sessionID string) {
	if userID != h.botUserID {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), voiceUpdateTimeout)
	defer cancel()
	h.forwarder.VoiceStateUpdate(ctx, guildID, channelID, sessionID)

	if channelID == "" {
		h.log.WithField("guild_id", guildID).Info("Left voice channel")
		h.tracker.OnVoiceLeft(guildID)
		return
	}
	h.tracker.OnVoiceJoined(guildID, channelID)
}

func (h *VoiceHandler) VoiceServerUpdate(s *discordgo.Session, e *discordgo.VoiceServerUpdate) {
	ctx, cancel := context.WithTimeout(context.Background(), voiceUpdateTimeout)
	defer cancel()
	h.forwarder.VoiceServerUpdate(ctx, e.GuildID, e.Token, e.Endpoint)
}
