package handlers

import (
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/playback"
)

// Gateway answers state questions from the discordgo state cache and the
// playback manager
type Gateway struct {
	session  *discordgo.Session
	playback *playback.Manager
}

func NewGateway(session *discordgo.Session, playback *playback.Manager) *Gateway {
	return &Gateway{session: session, playback: playback}
}

func (g *Gateway) UserVoiceChannel(guildID, userID string) (string, error) {
	return common.FindUserVoiceChannel(g.session.State, guildID, userID)
}

func (g *Gateway) Latency() time.Duration {
	return g.session.HeartbeatLatency()
}

func (g *Gateway) GuildCount() int {
	if g.session.State == nil {
		return 0
	}
	g.session.State.RLock()
	defer g.session.State.RUnlock()
	return len(g.session.State.Guilds)
}

func (g *Gateway) NowPlaying() []common.Track {
	return g.playback.NowPlaying()
}
