package playback

import (
	"context"
	"sync"
	"time"

	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/filters"
	"github.com/pkg/errors"
)

type fakeTransport struct {
	mu        sync.Mutex
	played    []string
	stopped   int
	paused    bool
	volume    int
	seeked    time.Duration
	filters   filters.Filters
	position  time.Duration
	destroyed bool
	failPlay  error
}

func (t *fakeTransport) Play(_ context.Context, track common.Track) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.failPlay != nil {
		return t.failPlay
	}
	t.played = append(t.played, track.Title)
	return nil
}

func (t *fakeTransport) Stop(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stopped++
	return nil
}

func (t *fakeTransport) SetPaused(_ context.Context, paused bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.paused = paused
	return nil
}

func (t *fakeTransport) SetVolume(_ context.Context, volume int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.volume = volume
	return nil
}

func (t *fakeTransport) Seek(_ context.Context, position time.Duration) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seeked = position
	return nil
}

func (t *fakeTransport) SetFilters(_ context.Context, f filters.Filters) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.filters = f
	return nil
}

func (t *fakeTransport) Position() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.position
}

func (t *fakeTransport) Destroy(context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.destroyed = true
	return nil
}

func (t *fakeTransport) Played() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.played...)
}

type fakeBackend struct {
	mu         sync.Mutex
	transports map[string]*fakeTransport
	results    map[string][]common.Track
	searches   int
	joins      int
	joinErr    error
	closed     bool
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		transports: make(map[string]*fakeTransport),
		results:    make(map[string][]common.Track),
	}
}

func (b *fakeBackend) Connect(_ context.Context, l Listener) error {
	l.OnNodeReady("fake")
	return nil
}

func (b *fakeBackend) Search(_ context.Context, identifier string) ([]common.Track, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.searches++
	if identifier == "ytsearch:broken" {
		return nil, errors.New("node unreachable")
	}
	return b.results[identifier], nil
}

func (b *fakeBackend) Join(_ context.Context, guildID, _ string) (Transport, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.joinErr != nil {
		return nil, b.joinErr
	}
	b.joins++
	t, ok := b.transports[guildID]
	if !ok {
		t = &fakeTransport{}
		b.transports[guildID] = t
	}
	return t, nil
}

func (b *fakeBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

func (b *fakeBackend) transport(guildID string) *fakeTransport {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.transports[guildID]
}

func track(title string, length time.Duration) common.Track {
	return common.Track{Encoded: "enc-" + title, Title: title, Length: length}
}
