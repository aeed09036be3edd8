package playback

import (
	"context"
	"sync"
	"time"

	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/filters"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Session is one guild's playback pipeline: the pending queue, the current
// track and the transport controls of the node player.
type Session struct {
	id             uint64
	guildID        string
	textChannelID  string
	voiceChannelID string
	createdAt      time.Time

	transport Transport
	queue     *common.MusicQueue
	emit      func(Event)
	log       *logrus.Entry

	mu      sync.Mutex
	playing bool
	paused  bool
	volume  int
	filters filters.Filters
	closed  bool
	// set once the gateway confirmed the bot in a voice channel
	voiceJoined bool
}

func newSession(id uint64, guildID, textChannelID, voiceChannelID string, transport Transport, volume int, emit func(Event), log *logrus.Entry) *Session {
	return &Session{
		id:             id,
		guildID:        guildID,
		textChannelID:  textChannelID,
		voiceChannelID: voiceChannelID,
		createdAt:      time.Now(),
		transport:      transport,
		queue:          common.NewMusicQueue(guildID),
		emit:           emit,
		volume:         volume,
		log:            log.WithFields(logrus.Fields{"guild_id": guildID, "session_id": id}),
	}
}

// ID distinguishes this session from earlier and later sessions of the guild
func (s *Session) ID() uint64 { return s.id }

func (s *Session) GuildID() string        { return s.guildID }
func (s *Session) TextChannelID() string  { return s.textChannelID }
func (s *Session) VoiceChannelID() string { return s.voiceChannelID }
func (s *Session) CreatedAt() time.Time   { return s.createdAt }

// Playing reports whether a track is loaded on the player
func (s *Session) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

func (s *Session) Paused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paused
}

func (s *Session) Volume() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.volume
}

// Filters returns the filter state last accepted by the node
func (s *Session) Filters() filters.Filters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filters
}

// Idle reports whether there is neither a current nor a pending track
func (s *Session) Idle() bool {
	return s.queue.Current() == nil && s.queue.Size() == 0
}

func (s *Session) markVoiceJoined() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.voiceJoined = true
}

func (s *Session) voiceConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceJoined
}

// Current returns the track being played, or nil
func (s *Session) Current() *common.Track {
	return s.queue.Current()
}

// Queue returns the pending tracks
func (s *Session) Queue() []common.Track {
	return s.queue.List()
}

func (s *Session) QueueSize() int {
	return s.queue.Size()
}

// QueueLength is the total length of the pending non-live tracks
func (s *Session) QueueLength() time.Duration {
	return s.queue.TotalLength()
}

func (s *Session) Loop() common.LoopMode {
	return s.queue.Loop()
}

func (s *Session) SetLoop(mode common.LoopMode) {
	s.queue.SetLoop(mode)
}

// Position is the playback position reported by the node
func (s *Session) Position() time.Duration {
	return s.transport.Position()
}

// Enqueue appends a track and returns its 1-based queue position
func (s *Session) Enqueue(track common.Track) int {
	return s.queue.Add(track)
}

// Start begins playback of the next queued track when the player is idle
// and not paused. It returns the started track, or nil when nothing was done.
func (s *Session) Start(ctx context.Context) (*common.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrSessionClosed
	}
	if s.playing || s.paused {
		return nil, nil
	}
	next := s.queue.Advance(false)
	if next == nil {
		return nil, nil
	}
	if err := s.transport.Play(ctx, *next); err != nil {
		s.queue.ClearCurrent()
		return nil, errors.Wrap(err, "failed to play track")
	}
	s.playing = true
	return next, nil
}

// Skip leaves the current track behind and plays the next one. The skipped
// track is returned. When nothing is left the player is stopped and
// QueueEmptied is emitted.
func (s *Session) Skip(ctx context.Context) (common.Track, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return common.Track{}, ErrSessionClosed
	}
	current := s.queue.Current()
	if current == nil {
		return common.Track{}, ErrNothingPlaying
	}
	if err := s.advanceLocked(ctx, true); err != nil {
		return common.Track{}, err
	}
	return *current, nil
}

// advanceLocked plays whatever the queue yields next. The caller holds s.mu.
func (s *Session) advanceLocked(ctx context.Context, skip bool) error {
	next := s.queue.Advance(skip)
	if next == nil {
		s.playing = false
		if err := s.transport.Stop(ctx); err != nil {
			return errors.Wrap(err, "failed to stop player")
		}
		s.emit(QueueEmptied{GuildID: s.guildID, TextChannelID: s.textChannelID, SessionID: s.id})
		return nil
	}
	if err := s.transport.Play(ctx, *next); err != nil {
		s.playing = false
		return errors.Wrapf(err, "failed to play %q", next.Title)
	}
	s.playing = true
	return nil
}

// SetPaused pauses or resumes the player
func (s *Session) SetPaused(ctx context.Context, paused bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if err := s.transport.SetPaused(ctx, paused); err != nil {
		return errors.Wrap(err, "failed to update pause state")
	}
	s.paused = paused
	return nil
}

// TogglePause flips the pause state and returns the new one
func (s *Session) TogglePause(ctx context.Context) (bool, error) {
	paused := !s.Paused()
	if err := s.SetPaused(ctx, paused); err != nil {
		return !paused, err
	}
	return paused, nil
}

// SetVolume sets the player volume, 0–100
func (s *Session) SetVolume(ctx context.Context, volume int) error {
	if volume < 0 || volume > 100 {
		return errors.Wrapf(ErrVolumeOutOfRange, "volume %d", volume)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	if err := s.transport.SetVolume(ctx, volume); err != nil {
		return errors.Wrap(err, "failed to set volume")
	}
	s.volume = volume
	return nil
}

// Seek moves playback of the current track to position
func (s *Session) Seek(ctx context.Context, position time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	current := s.queue.Current()
	if current == nil {
		return ErrNothingPlaying
	}
	if !current.Seekable() {
		return ErrNotSeekable
	}
	if position < 0 || position > current.Length {
		return errors.Wrapf(ErrSeekOutOfRange, "position %s, length %s", position, current.Length)
	}
	if err := s.transport.Seek(ctx, position); err != nil {
		return errors.Wrap(err, "failed to seek")
	}
	return nil
}

func (s *Session) Shuffle() (int, error) {
	return s.queue.Shuffle()
}

// Remove drops the pending track at the 0-based index
func (s *Session) Remove(index int) (common.Track, error) {
	return s.queue.Remove(index)
}

// Clear drops every pending track, leaving the current one playing
func (s *Session) Clear() int {
	return s.queue.Clear()
}

// SetEqualizer replaces the equalizer bands. label names the table entry.
func (s *Session) SetEqualizer(ctx context.Context, eq filters.Equalizer, label string) error {
	return s.applyFilters(ctx, func(f *filters.Filters) {
		f.Equalizer = eq
		f.EqualizerLabel = label
	})
}

func (s *Session) SetTimescale(ctx context.Context, ts filters.Timescale, label string) error {
	return s.applyFilters(ctx, func(f *filters.Filters) {
		f.Timescale = &ts
		f.TimescaleLabel = label
	})
}

func (s *Session) SetRotation(ctx context.Context, r filters.Rotation) error {
	return s.applyFilters(ctx, func(f *filters.Filters) {
		f.Rotation = &r
	})
}

func (s *Session) SetKaraoke(ctx context.Context, k filters.Karaoke) error {
	return s.applyFilters(ctx, func(f *filters.Filters) {
		f.Karaoke = &k
	})
}

func (s *Session) SetTremolo(ctx context.Context, t filters.Tremolo) error {
	return s.applyFilters(ctx, func(f *filters.Filters) {
		f.Tremolo = &t
	})
}

func (s *Session) SetVibrato(ctx context.Context, v filters.Vibrato) error {
	return s.applyFilters(ctx, func(f *filters.Filters) {
		f.Vibrato = &v
	})
}

// ClearFilters disables every filter
func (s *Session) ClearFilters(ctx context.Context) error {
	return s.applyFilters(ctx, func(f *filters.Filters) {
		*f = filters.Filters{}
	})
}

// applyFilters sends the mutated filter state and keeps it once the node accepted it
func (s *Session) applyFilters(ctx context.Context, mutate func(*filters.Filters)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrSessionClosed
	}
	next := s.filters
	mutate(&next)
	if err := s.transport.SetFilters(ctx, next); err != nil {
		return errors.Wrap(err, "failed to apply filters")
	}
	s.filters = next
	return nil
}

func (s *Session) onTrackStart() {
	current := s.queue.Current()
	if current == nil {
		return
	}
	s.emit(TrackStarted{GuildID: s.guildID, TextChannelID: s.textChannelID, Track: *current})
}

// onTrackEnd advances the queue when the node says the next track may start
func (s *Session) onTrackEnd(ctx context.Context, mayStartNext bool) {
	if !mayStartNext {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if err := s.advanceLocked(ctx, false); err != nil {
		s.log.WithError(err).Error("Failed to advance queue")
	}
}

func (s *Session) onTrackFailed(ctx context.Context, reason string, advance bool) {
	current := s.queue.Current()
	if current != nil {
		s.emit(TrackFailed{GuildID: s.guildID, TextChannelID: s.textChannelID, Track: *current, Reason: reason})
	}
	if !advance {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	// a stuck track must not be replayed by track looping
	if err := s.advanceLocked(ctx, true); err != nil {
		s.log.WithError(err).Error("Failed to advance past stuck track")
	}
}

// close destroys the node player and leaves voice. Further operations fail
// with ErrSessionClosed.
func (s *Session) close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	s.playing = false
	s.queue.Clear()
	s.queue.ClearCurrent()
	return s.transport.Destroy(ctx)
}
