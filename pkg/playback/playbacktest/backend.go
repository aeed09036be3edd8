// Package playbacktest provides an in-memory playback.Backend for tests of
// code built on the playback manager.
package playbacktest

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/filters"
	"github.com/latoulicious/Serenade/pkg/playback"
	"github.com/pkg/errors"
)

// ErrUnavailable is returned by Search for identifiers registered with Fail
var ErrUnavailable = errors.New("node unavailable")

// Backend records joins and serves canned search results
type Backend struct {
	mu         sync.Mutex
	results    map[string][]common.Track
	failing    map[string]bool
	transports map[string]*Transport
	JoinErr    error
	Searches   int
}

func NewBackend() *Backend {
	return &Backend{
		results:    make(map[string][]common.Track),
		failing:    make(map[string]bool),
		transports: make(map[string]*Transport),
	}
}

// AddResult registers tracks for a search query or URL
func (b *Backend) AddResult(query string, tracks ...common.Track) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.results[common.SearchIdentifier(query)] = tracks
}

// Fail makes searches for query return ErrUnavailable
func (b *Backend) Fail(query string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failing[common.SearchIdentifier(query)] = true
}

// Transport returns the player of a guild once it was joined
func (b *Backend) Transport(guildID string) *Transport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transports[guildID]
}

func (b *Backend) Connect(_ context.Context, l playback.Listener) error {
	l.OnNodeReady("test")
	return nil
}

func (b *Backend) Search(_ context.Context, identifier string) ([]common.Track, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Searches++
	if b.failing[identifier] {
		return nil, ErrUnavailable
	}
	return b.results[identifier], nil
}

func (b *Backend) Join(_ context.Context, guildID, channelID string) (playback.Transport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.JoinErr != nil {
		return nil, b.JoinErr
	}
	t := &Transport{ChannelID: channelID}
	b.transports[guildID] = t
	return t, nil
}

func (b *Backend) Close() {}

// Transport records every player update
type Transport struct {
	mu        sync.Mutex
	ChannelID string
	played    []string
	paused    bool
	volume    int
	seeked    time.Duration
	filters   filters.Filters
	position  time.Duration
	destroyed bool
}

func (t *Transport) Play(_ context.Context, track common.Track) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.played = append(t.played, track.Title)
	return nil
}

func (t *Transport) Stop(context.Context) error { return nil }

func (t *Transport) SetPaused(_ context.Context, paused bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = paused
	return nil
}

func (t *Transport) SetVolume(_ context.Context, volume int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.volume = volume
	return nil
}

func (t *Transport) Seek(_ context.Context, position time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seeked = position
	t.position = position
	return nil
}

func (t *Transport) SetFilters(_ context.Context, f filters.Filters) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filters = f
	return nil
}

func (t *Transport) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

func (t *Transport) Destroy(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.destroyed = true
	return nil
}

// Played lists the titles sent to the player, in order
func (t *Transport) Played() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.played...)
}

func (t *Transport) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

func (t *Transport) Volume() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.volume
}

func (t *Transport) Seeked() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seeked
}

func (t *Transport) Filters() filters.Filters {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.filters
}

func (t *Transport) Destroyed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.destroyed
}

// Track builds a seekable test track
func Track(title string, length time.Duration) common.Track {
	return common.Track{
		Encoded:    "enc:" + title,
		Identifier: strings.ReplaceAll(strings.ToLower(title), " ", "-"),
		Title:      title,
		Author:     "Test Artist",
		URI:        "https://example.com/" + strings.ReplaceAll(title, " ", "_"),
		Length:     length,
	}
}
