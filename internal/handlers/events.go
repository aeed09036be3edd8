package handlers

import (
	"context"
	"fmt"

	"github.com/latoulicious/Serenade/internal/commands"
	"github.com/latoulicious/Serenade/pkg/metrics"
	"github.com/latoulicious/Serenade/pkg/playback"
	"github.com/sirupsen/logrus"
)

func (d *Dispatcher) handleEvent(ctx context.Context, e playback.Event) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	d.env.Metrics.RecordCounter(metrics.EventsTotal, 1, map[string]string{"event": fmt.Sprintf("%T", e)})
	defer func() {
		d.env.Metrics.RecordGauge(metrics.SessionsActive, float64(d.env.Playback.Count()), nil)
	}()

	switch e := e.(type) {
	case playback.NodeReady:
		d.log.WithField("node", e.Node).Info("✅ Lavalink node connected")

	case playback.NodeError:
		d.log.WithField("node", e.Node).WithError(e.Err).Error("❌ Lavalink node error")

	case playback.TrackStarted:
		if err := d.env.SendEmbed(e.TextChannelID, commands.TrackStartedEmbed(e.Track)); err != nil {
			d.log.WithField("guild_id", e.GuildID).WithError(err).Warn("Failed to announce track")
		}
		if err := d.presence.UpdateMusicPresence(e.Track.Title); err != nil {
			d.log.WithError(err).Warn("Failed to update presence")
		}

	case playback.TrackFailed:
		d.log.WithFields(logrus.Fields{
			"guild_id": e.GuildID,
			"track":    e.Track.Title,
			"reason":   e.Reason,
		}).Warn("Track failed")
		msg := fmt.Sprintf("⚠️ Could not play **%s**: %s", e.Track.Title, e.Reason)
		if err := d.env.Send(e.TextChannelID, msg); err != nil {
			d.log.WithField("guild_id", e.GuildID).WithError(err).Warn("Failed to report track failure")
		}

	case playback.QueueEmptied:
		// a play handled since the event was emitted keeps the session
		if !d.teardown(ctx, e.GuildID, e.SessionID, true) {
			return
		}
		if err := d.env.Send(e.TextChannelID, "⏹️ Queue finished! Disconnecting..."); err != nil {
			d.log.WithField("guild_id", e.GuildID).WithError(err).Warn("Failed to announce end of queue")
		}

	case playback.VoiceClosed:
		d.log.WithFields(logrus.Fields{
			"guild_id":  e.GuildID,
			"code":      e.Code,
			"reason":    e.Reason,
			"by_remote": e.ByRemote,
		}).Warn("Voice connection closed")
		if e.Disconnected {
			d.teardown(ctx, e.GuildID, e.SessionID, false)
		}
	}
}

// teardown destroys the guild session the event was about, if it is still
// the live one, and refreshes the presence. It reports whether it did.
func (d *Dispatcher) teardown(ctx context.Context, guildID string, sessionID uint64, idleOnly bool) bool {
	log := d.log.WithFields(logrus.Fields{"guild_id": guildID, "session_id": sessionID})
	released, err := d.env.Playback.Release(ctx, guildID, sessionID, idleOnly)
	if err != nil {
		log.WithError(err).Error("Failed to destroy session")
	}
	if !released {
		log.Debug("Session is no longer the one the event was about, keeping it")
		return false
	}
	if err := d.presence.Refresh(); err != nil {
		d.log.WithError(err).Warn("Failed to update presence")
	}
	return true
}
