package presence

import (
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Presence kinds reported by Current
const (
	KindNone    = ""
	KindDefault = "default"
	KindMusic   = "music"
)

// StatusUpdater sets the bot's status. *discordgo.Session satisfies it.
type StatusUpdater interface {
	UpdateStatusComplex(usd discordgo.UpdateStatusData) error
}

// Stats supplies the numbers shown in the presence
type Stats interface {
	GuildCount() int
	NowPlaying() []common.Track
}

// PresenceManager manages the bot's presence
type PresenceManager struct {
	status StatusUpdater
	stats  Stats
	prefix string
	log    *logrus.Entry

	mu      sync.RWMutex
	current string
	title   string
}

// NewPresenceManager creates a new presence manager. prefix is the command
// prefix advertised in the idle presence.
func NewPresenceManager(status StatusUpdater, stats Stats, prefix string, log *logrus.Entry) *PresenceManager {
	return &PresenceManager{
		status: status,
		stats:  stats,
		prefix: prefix,
		log:    log,
	}
}

// UpdateDefaultPresence shows the number of servers the bot is in
func (pm *PresenceManager) UpdateDefaultPresence() error {
	guilds := pm.stats.GuildCount()
	presence := discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{
			{
				Name:  fmt.Sprintf("%d servers", guilds),
				Type:  discordgo.ActivityTypeWatching,
				State: pm.prefix + "help for commands",
			},
		},
	}

	if err := pm.status.UpdateStatusComplex(presence); err != nil {
		return errors.Wrap(err, "failed to update bot presence")
	}

	pm.mu.Lock()
	pm.current = KindDefault
	pm.title = ""
	pm.mu.Unlock()
	return nil
}

// UpdateMusicPresence shows the track being played
func (pm *PresenceManager) UpdateMusicPresence(songTitle string) error {
	presence := discordgo.UpdateStatusData{
		Status: "online",
		Activities: []*discordgo.Activity{
			{
				Name:  songTitle,
				Type:  discordgo.ActivityTypeListening,
				State: songTitle,
			},
		},
	}

	if err := pm.status.UpdateStatusComplex(presence); err != nil {
		return errors.Wrap(err, "failed to update music presence")
	}

	pm.mu.Lock()
	pm.current = KindMusic
	pm.title = songTitle
	pm.mu.Unlock()
	pm.log.WithField("title", songTitle).Debug("Showing music presence")
	return nil
}

// Refresh shows a playing track when any guild has one, the server count otherwise.
// Unchanged music presences are not resent.
func (pm *PresenceManager) Refresh() error {
	playing := pm.stats.NowPlaying()
	if len(playing) == 0 {
		return pm.UpdateDefaultPresence()
	}

	title := playing[0].Title
	for _, t := range playing {
		if t.Title == pm.Title() {
			return nil
		}
	}
	return pm.UpdateMusicPresence(title)
}

// Current returns the current presence kind
func (pm *PresenceManager) Current() string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.current
}

// Title returns the track shown in a music presence
func (pm *PresenceManager) Title() string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()
	return pm.title
}
