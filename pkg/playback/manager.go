package playback

import (
	"context"
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

const eventBuffer = 64

// Options tune the manager
type Options struct {
	DefaultVolume  int
	SearchRate     float64
	SearchCacheTTL time.Duration
	// CallbackTimeout bounds node requests made from backend callbacks
	CallbackTimeout time.Duration
}

// Manager is the registry of guild sessions and the sink for backend
// callbacks. It turns callbacks into Events.
type Manager struct {
	backend Backend
	opts    Options
	log     *logrus.Entry

	events    chan Event
	done      chan struct{}
	started   bool
	closeOnce sync.Once

	// events that did not fit the channel, delivered in order by one forwarder
	emitMu     sync.Mutex
	pending    []Event
	forwarding bool

	mu       sync.RWMutex
	sessions map[string]*Session
	lastID   uint64

	cache   *ttlcache.Cache[string, []common.Track]
	limiter *rate.Limiter
}

// NewManager creates a manager on top of backend
func NewManager(backend Backend, opts Options, log *logrus.Entry) *Manager {
	if opts.DefaultVolume <= 0 || opts.DefaultVolume > 100 {
		opts.DefaultVolume = 80
	}
	if opts.SearchRate <= 0 {
		opts.SearchRate = 5
	}
	if opts.SearchCacheTTL <= 0 {
		opts.SearchCacheTTL = 5 * time.Minute
	}
	if opts.CallbackTimeout <= 0 {
		opts.CallbackTimeout = 10 * time.Second
	}

	return &Manager{
		backend:  backend,
		opts:     opts,
		log:      log,
		events:   make(chan Event, eventBuffer),
		done:     make(chan struct{}),
		sessions: make(map[string]*Session),
		cache: ttlcache.New[string, []common.Track](
			ttlcache.WithTTL[string, []common.Track](opts.SearchCacheTTL),
			ttlcache.WithDisableTouchOnHit[string, []common.Track](),
		),
		limiter: rate.NewLimiter(rate.Limit(opts.SearchRate), int(opts.SearchRate)+1),
	}
}

// Start connects the backend to its nodes and starts cache expiry
func (m *Manager) Start(ctx context.Context) error {
	m.started = true
	go m.cache.Start()
	if err := m.backend.Connect(ctx, m); err != nil {
		return errors.Wrap(err, "failed to connect playback backend")
	}
	return nil
}

// Close destroys every session and disconnects the backend
func (m *Manager) Close(ctx context.Context) {
	m.closeOnce.Do(func() { m.close(ctx) })
}

func (m *Manager) close(ctx context.Context) {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*Session)
	m.mu.Unlock()

	for guildID, s := range sessions {
		if err := s.close(ctx); err != nil {
			m.log.WithError(err).WithField("guild_id", guildID).Warn("Failed to destroy session on shutdown")
		}
	}

	if m.started {
		m.cache.Stop()
	}
	m.backend.Close()
	close(m.done)
}

// Events is the stream of playback notifications
func (m *Manager) Events() <-chan Event {
	return m.events
}

// emit never blocks, the consumer may itself be the emitter. Events are
// delivered in emit order: once one overflows, later ones queue behind it.
func (m *Manager) emit(e Event) {
	m.emitMu.Lock()
	defer m.emitMu.Unlock()

	if !m.forwarding {
		select {
		case m.events <- e:
			return
		default:
		}
		m.forwarding = true
		go m.forward()
	}
	m.pending = append(m.pending, e)
}

func (m *Manager) forward() {
	for {
		m.emitMu.Lock()
		if len(m.pending) == 0 {
			m.forwarding = false
			m.emitMu.Unlock()
			return
		}
		e := m.pending[0]
		m.pending = m.pending[1:]
		m.emitMu.Unlock()

		select {
		case m.events <- e:
		case <-m.done:
			return
		}
	}
}

// Get returns the session of a guild, or nil
func (m *Manager) Get(guildID string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[guildID]
}

// Create joins the voice channel and registers a new session for the guild.
// When a session already exists it is returned unchanged. The voice join is
// not serialized, so two racing calls may both join; only one session is
// kept. The losing transport is dropped untouched: it drives the same guild
// player as the winner.
func (m *Manager) Create(ctx context.Context, guildID, textChannelID, voiceChannelID string) (*Session, error) {
	if s := m.Get(guildID); s != nil {
		return s, nil
	}

	transport, err := m.backend.Join(ctx, guildID, voiceChannelID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to join voice channel")
	}

	m.mu.Lock()
	if existing, ok := m.sessions[guildID]; ok {
		m.mu.Unlock()
		m.log.WithField("guild_id", guildID).Debug("Session created concurrently, keeping the first one")
		return existing, nil
	}
	m.lastID++
	s := newSession(m.lastID, guildID, textChannelID, voiceChannelID, transport, m.opts.DefaultVolume, m.emit, m.log)
	// hold the session until the default volume is applied so no command
	// can change the volume first
	s.mu.Lock()
	m.sessions[guildID] = s
	m.mu.Unlock()

	if err := transport.SetVolume(ctx, m.opts.DefaultVolume); err != nil {
		m.log.WithError(err).WithField("guild_id", guildID).Warn("Failed to apply default volume")
	}
	s.mu.Unlock()

	m.log.WithFields(logrus.Fields{
		"guild_id":   guildID,
		"session_id": s.id,
		"channel_id": voiceChannelID,
	}).Info("Session created")
	return s, nil
}

// Destroy removes the guild session, destroys its player and leaves voice
func (m *Manager) Destroy(ctx context.Context, guildID string) error {
	m.mu.Lock()
	s, ok := m.sessions[guildID]
	delete(m.sessions, guildID)
	m.mu.Unlock()

	if !ok {
		return nil
	}
	if err := s.close(ctx); err != nil {
		return errors.Wrapf(err, "failed to destroy session for guild %s", guildID)
	}
	m.log.WithField("guild_id", guildID).Info("Session destroyed")
	return nil
}

// Release destroys the guild session only while it is still the session
// identified by sessionID. With idleOnly set, a session that has a current
// or pending track is kept as well. It reports whether a session was
// destroyed.
func (m *Manager) Release(ctx context.Context, guildID string, sessionID uint64, idleOnly bool) (bool, error) {
	m.mu.Lock()
	s, ok := m.sessions[guildID]
	if !ok || s.id != sessionID || (idleOnly && !s.Idle()) {
		m.mu.Unlock()
		return false, nil
	}
	delete(m.sessions, guildID)
	m.mu.Unlock()

	if err := s.close(ctx); err != nil {
		return true, errors.Wrapf(err, "failed to destroy session for guild %s", guildID)
	}
	m.log.WithFields(logrus.Fields{"guild_id": guildID, "session_id": sessionID}).Info("Session released")
	return true, nil
}

// Count returns the number of live sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// NowPlaying returns the current track of every session that has one
func (m *Manager) NowPlaying() []common.Track {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []common.Track
	for _, s := range m.sessions {
		if t := s.Current(); t != nil {
			out = append(out, *t)
		}
	}
	return out
}

// Search resolves a query or URL to tracks and attaches the requester.
// Results are cached per identifier and lookups are rate limited.
func (m *Manager) Search(ctx context.Context, query string, requester common.Requester) ([]common.Track, error) {
	identifier := common.SearchIdentifier(query)

	var tracks []common.Track
	if item := m.cache.Get(identifier); item != nil {
		tracks = item.Value()
	} else {
		if err := m.limiter.Wait(ctx); err != nil {
			return nil, errors.Wrap(err, "search rate limit")
		}
		found, err := m.backend.Search(ctx, identifier)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to search %q", identifier)
		}
		if len(found) == 0 {
			return nil, errors.Wrapf(ErrNoResults, "query %q", query)
		}
		m.cache.Set(identifier, found, ttlcache.DefaultTTL)
		tracks = found
	}

	out := make([]common.Track, len(tracks))
	for i, t := range tracks {
		t.Requester = requester
		t.AddedAt = time.Time{}
		out[i] = t
	}
	return out, nil
}

// OnVoiceJoined tells the manager the gateway reported the bot in a voice
// channel of the guild
func (m *Manager) OnVoiceJoined(guildID, channelID string) {
	if s := m.Get(guildID); s != nil {
		s.markVoiceJoined()
	}
}

// OnVoiceLeft tells the manager the bot is no longer in a voice channel of
// the guild. A leave that arrives before the current session's own join was
// confirmed belongs to an earlier session and is ignored.
func (m *Manager) OnVoiceLeft(guildID string) {
	s := m.Get(guildID)
	if s == nil {
		return
	}
	if !s.voiceConnected() {
		m.log.WithFields(logrus.Fields{"guild_id": guildID, "session_id": s.id}).Debug("Ignoring voice leave from an earlier session")
		return
	}
	m.emit(VoiceClosed{GuildID: guildID, SessionID: s.id, Reason: "left voice channel", ByRemote: true, Disconnected: true})
}

func (m *Manager) callbackContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), m.opts.CallbackTimeout)
}

func (m *Manager) OnNodeReady(node string) {
	m.emit(NodeReady{Node: node})
}

func (m *Manager) OnNodeError(node string, err error) {
	m.emit(NodeError{Node: node, Err: err})
}

func (m *Manager) OnTrackStart(guildID string) {
	if s := m.Get(guildID); s != nil {
		s.onTrackStart()
	}
}

func (m *Manager) OnTrackEnd(guildID string, mayStartNext bool, reason string) {
	s := m.Get(guildID)
	if s == nil {
		return
	}
	m.log.WithFields(logrus.Fields{
		"guild_id": guildID,
		"reason":   reason,
	}).Debug("Track ended")

	ctx, cancel := m.callbackContext()
	defer cancel()
	s.onTrackEnd(ctx, mayStartNext)
}

func (m *Manager) OnTrackFailed(guildID string, reason string, advance bool) {
	s := m.Get(guildID)
	if s == nil {
		return
	}
	ctx, cancel := m.callbackContext()
	defer cancel()
	s.onTrackFailed(ctx, reason, advance)
}

func (m *Manager) OnVoiceClosed(guildID string, code int, reason string, byRemote bool) {
	e := VoiceClosed{
		GuildID:  guildID,
		Code:     code,
		Reason:   reason,
		ByRemote: byRemote,
	}
	if s := m.Get(guildID); s != nil {
		e.SessionID = s.id
		e.Disconnected = code == voiceDisconnectedCode && s.voiceConnected()
	}
	m.emit(e)
}
