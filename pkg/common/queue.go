package common

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

var (
	// ErrIndexOutOfRange is returned when a queue position does not exist
	ErrIndexOutOfRange = errors.New("queue index out of range")
	// ErrNotEnoughTracks is returned when shuffling fewer than two tracks
	ErrNotEnoughTracks = errors.New("not enough tracks to shuffle")
)

// Requester identifies the user who asked for a track
type Requester struct {
	ID       string
	Username string
}

// Mention returns the Discord mention for the requester
func (r Requester) Mention() string {
	if r.ID == "" {
		return r.Username
	}
	return "<@" + r.ID + ">"
}

// Track is a resolved, playable track. Length is zero for live streams.
type Track struct {
	Encoded    string
	Identifier string
	Title      string
	Author     string
	URI        string
	ArtworkURL string
	SourceName string
	Length     time.Duration
	IsStream   bool
	Requester  Requester
	AddedAt    time.Time
}

// LengthMs returns the track length in milliseconds
func (t Track) LengthMs() int64 {
	if t.IsStream {
		return 0
	}
	return t.Length.Milliseconds()
}

// Seekable reports whether positions inside the track can be addressed
func (t Track) Seekable() bool {
	return !t.IsStream && t.Length > 0
}

// LoopMode controls what happens when a track ends
type LoopMode int

const (
	LoopOff LoopMode = iota
	LoopTrack
	LoopQueue
)

func (m LoopMode) String() string {
	switch m {
	case LoopTrack:
		return "track"
	case LoopQueue:
		return "queue"
	default:
		return "off"
	}
}

// Next cycles off → track → queue → off
func (m LoopMode) Next() LoopMode {
	switch m {
	case LoopOff:
		return LoopTrack
	case LoopTrack:
		return LoopQueue
	default:
		return LoopOff
	}
}

// ParseLoopMode maps user-facing synonyms onto a LoopMode
func ParseLoopMode(s string) (LoopMode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "track", "song", "current":
		return LoopTrack, true
	case "queue", "all":
		return LoopQueue, true
	case "off", "none", "disable":
		return LoopOff, true
	default:
		return LoopOff, false
	}
}

// MusicQueue manages the pending tracks and the current track for a guild
type MusicQueue struct {
	guildID string
	items   []Track
	current *Track
	loop    LoopMode
	mu      sync.RWMutex
}

// NewMusicQueue creates a new music queue for a guild
func NewMusicQueue(guildID string) *MusicQueue {
	return &MusicQueue{
		guildID: guildID,
		items:   make([]Track, 0),
	}
}

// Add appends a track and returns its 1-based position in the queue
func (mq *MusicQueue) Add(track Track) int {
	mq.mu.Lock()
	defer mq.mu.Unlock()

	if track.AddedAt.IsZero() {
		track.AddedAt = time.Now()
	}
	mq.items = append(mq.items, track)
	return len(mq.items)
}

// Advance moves to the next track according to the loop mode and returns it.
// With skip set, track looping is ignored so the current track is left behind.
// It returns nil when nothing is left to play.
func (mq *MusicQueue) Advance(skip bool) *Track {
	mq.mu.Lock()
	defer mq.mu.Unlock()

	if mq.current != nil {
		switch mq.loop {
		case LoopTrack:
			if !skip {
				next := *mq.current
				return &next
			}
		case LoopQueue:
			mq.items = append(mq.items, *mq.current)
		}
	}

	if len(mq.items) == 0 {
		mq.current = nil
		return nil
	}

	next := mq.items[0]
	mq.items = mq.items[1:]
	mq.current = &next
	out := next
	return &out
}

// Current returns a copy of the current track, or nil
func (mq *MusicQueue) Current() *Track {
	mq.mu.RLock()
	defer mq.mu.RUnlock()
	if mq.current == nil {
		return nil
	}
	c := *mq.current
	return &c
}

// ClearCurrent forgets the current track without touching pending ones
func (mq *MusicQueue) ClearCurrent() {
	mq.mu.Lock()
	defer mq.mu.Unlock()
	mq.current = nil
}

// List returns all pending items in the queue
func (mq *MusicQueue) List() []Track {
	mq.mu.RLock()
	defer mq.mu.RUnlock()

	result := make([]Track, len(mq.items))
	copy(result, mq.items)
	return result
}

// Size returns the number of pending items in the queue
func (mq *MusicQueue) Size() int {
	mq.mu.RLock()
	defer mq.mu.RUnlock()
	return len(mq.items)
}

// TotalLength sums the length of every pending non-live track
func (mq *MusicQueue) TotalLength() time.Duration {
	mq.mu.RLock()
	defer mq.mu.RUnlock()
	return lo.SumBy(mq.items, func(t Track) time.Duration {
		if t.IsStream {
			return 0
		}
		return t.Length
	})
}

// Clear removes every pending item and returns how many were removed
func (mq *MusicQueue) Clear() int {
	mq.mu.Lock()
	defer mq.mu.Unlock()
	n := len(mq.items)
	mq.items = make([]Track, 0)
	return n
}

// Remove removes the item at the 0-based index and returns it
func (mq *MusicQueue) Remove(index int) (Track, error) {
	mq.mu.Lock()
	defer mq.mu.Unlock()

	if index < 0 || index >= len(mq.items) {
		return Track{}, errors.Wrapf(ErrIndexOutOfRange, "index %d, size %d", index, len(mq.items))
	}

	removed := mq.items[index]
	mq.items = append(mq.items[:index], mq.items[index+1:]...)
	return removed, nil
}

// Shuffle reorders the pending items and returns the count
func (mq *MusicQueue) Shuffle() (int, error) {
	mq.mu.Lock()
	defer mq.mu.Unlock()

	if len(mq.items) < 2 {
		return len(mq.items), ErrNotEnoughTracks
	}

	mq.items = lo.Shuffle(mq.items)
	return len(mq.items), nil
}

// SetLoop sets the loop mode
func (mq *MusicQueue) SetLoop(mode LoopMode) {
	mq.mu.Lock()
	defer mq.mu.Unlock()
	mq.loop = mode
}

// Loop returns the loop mode
func (mq *MusicQueue) Loop() LoopMode {
	mq.mu.RLock()
	defer mq.mu.RUnlock()
	return mq.loop
}

func (mq *MusicQueue) String() string {
	return fmt.Sprintf("queue(guild=%s, pending=%d, loop=%s)", mq.guildID, mq.Size(), mq.Loop())
}
