package playback

import (
	"context"
	"testing"
	"time"

	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/filters"
	"github.com/latoulicious/Serenade/pkg/logging"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []Event
}

func (r *recorder) emit(e Event) { r.events = append(r.events, e) }

func newTestSession(t *testing.T) (*Session, *fakeTransport, *recorder) {
	t.Helper()
	tr := &fakeTransport{}
	rec := &recorder{}
	s := newSession(1, "g1", "text1", "voice1", tr, 80, rec.emit, logging.Null())
	return s, tr, rec
}

func TestStartPlaysFirstQueuedTrack(t *testing.T) {
	s, tr, _ := newTestSession(t)
	ctx := context.Background()

	assert.Equal(t, 1, s.Enqueue(track("a", time.Minute)))
	assert.Equal(t, 2, s.Enqueue(track("b", time.Minute)))

	started, err := s.Start(ctx)
	require.NoError(t, err)
	require.NotNil(t, started)
	assert.Equal(t, "a", started.Title)
	assert.True(t, s.Playing())
	assert.Equal(t, []string{"a"}, tr.Played())

	again, err := s.Start(ctx)
	require.NoError(t, err)
	assert.Nil(t, again, "start is a no-op while playing")
}

func TestStartDoesNothingWhilePaused(t *testing.T) {
	s, tr, _ := newTestSession(t)
	ctx := context.Background()

	require.NoError(t, s.SetPaused(ctx, true))
	s.Enqueue(track("a", time.Minute))

	started, err := s.Start(ctx)
	require.NoError(t, err)
	assert.Nil(t, started)
	assert.Empty(t, tr.Played())
}

func TestStartFailureLeavesSessionIdle(t *testing.T) {
	s, tr, _ := newTestSession(t)
	tr.failPlay = errors.New("boom")
	s.Enqueue(track("a", time.Minute))

	_, err := s.Start(context.Background())
	require.Error(t, err)
	assert.False(t, s.Playing())
	assert.Nil(t, s.Current())
}

func TestSkipAdvancesAndEmptiesQueue(t *testing.T) {
	s, tr, rec := newTestSession(t)
	ctx := context.Background()

	_, err := s.Skip(ctx)
	assert.True(t, errors.Is(err, ErrNothingPlaying))

	s.Enqueue(track("a", time.Minute))
	s.Enqueue(track("b", time.Minute))
	_, err = s.Start(ctx)
	require.NoError(t, err)

	skipped, err := s.Skip(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", skipped.Title)
	assert.Equal(t, "b", s.Current().Title)

	skipped, err = s.Skip(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", skipped.Title)
	assert.Nil(t, s.Current())
	assert.False(t, s.Playing())
	assert.Equal(t, 1, tr.stopped)
	require.Len(t, rec.events, 1)
	assert.Equal(t, QueueEmptied{GuildID: "g1", TextChannelID: "text1", SessionID: 1}, rec.events[0])
}

func TestSkipIgnoresTrackLoop(t *testing.T) {
	s, _, _ := newTestSession(t)
	ctx := context.Background()

	s.Enqueue(track("a", time.Minute))
	s.Enqueue(track("b", time.Minute))
	_, err := s.Start(ctx)
	require.NoError(t, err)
	s.SetLoop(common.LoopTrack)

	_, err = s.Skip(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", s.Current().Title)
}

func TestTrackEndFollowsLoopMode(t *testing.T) {
	s, tr, rec := newTestSession(t)
	ctx := context.Background()

	s.Enqueue(track("a", time.Minute))
	s.Enqueue(track("b", time.Minute))
	_, err := s.Start(ctx)
	require.NoError(t, err)

	s.SetLoop(common.LoopTrack)
	s.onTrackEnd(ctx, true)
	assert.Equal(t, []string{"a", "a"}, tr.Played())

	s.SetLoop(common.LoopQueue)
	s.onTrackEnd(ctx, true)
	assert.Equal(t, "b", s.Current().Title)
	assert.Equal(t, []string{"a"}, titles(s.Queue()))

	s.onTrackEnd(ctx, false)
	assert.Equal(t, "b", s.Current().Title, "replaced or stopped tracks do not advance")

	s.SetLoop(common.LoopOff)
	s.onTrackEnd(ctx, true)
	s.onTrackEnd(ctx, true)
	assert.Nil(t, s.Current())
	require.Len(t, rec.events, 1)
	assert.IsType(t, QueueEmptied{}, rec.events[0])
}

func TestTrackStartEmitsCurrentTrack(t *testing.T) {
	s, _, rec := newTestSession(t)
	s.onTrackStart()
	assert.Empty(t, rec.events)

	s.Enqueue(track("a", time.Minute))
	_, err := s.Start(context.Background())
	require.NoError(t, err)
	s.onTrackStart()

	require.Len(t, rec.events, 1)
	started, ok := rec.events[0].(TrackStarted)
	require.True(t, ok)
	assert.Equal(t, "a", started.Track.Title)
	assert.Equal(t, "text1", started.TextChannelID)
}

func TestStuckTrackSkipsEvenWhenLooping(t *testing.T) {
	s, _, rec := newTestSession(t)
	ctx := context.Background()

	s.Enqueue(track("a", time.Minute))
	s.Enqueue(track("b", time.Minute))
	_, err := s.Start(ctx)
	require.NoError(t, err)
	s.SetLoop(common.LoopTrack)

	s.onTrackFailed(ctx, "exception", false)
	assert.Equal(t, "a", s.Current().Title)

	s.onTrackFailed(ctx, "track got stuck", true)
	assert.Equal(t, "b", s.Current().Title)

	require.Len(t, rec.events, 2)
	failed := rec.events[1].(TrackFailed)
	assert.Equal(t, "a", failed.Track.Title)
	assert.Equal(t, "track got stuck", failed.Reason)
}

func TestVolume(t *testing.T) {
	s, tr, _ := newTestSession(t)
	ctx := context.Background()

	assert.Equal(t, 80, s.Volume())
	require.NoError(t, s.SetVolume(ctx, 70))
	assert.Equal(t, 70, s.Volume())
	assert.Equal(t, 70, tr.volume)

	err := s.SetVolume(ctx, 150)
	assert.True(t, errors.Is(err, ErrVolumeOutOfRange))
	assert.Equal(t, 70, s.Volume())
}

func TestTogglePause(t *testing.T) {
	s, tr, _ := newTestSession(t)
	ctx := context.Background()

	paused, err := s.TogglePause(ctx)
	require.NoError(t, err)
	assert.True(t, paused)
	assert.True(t, tr.paused)

	paused, err = s.TogglePause(ctx)
	require.NoError(t, err)
	assert.False(t, paused)
	assert.False(t, s.Paused())
}

func TestSeekBounds(t *testing.T) {
	s, tr, _ := newTestSession(t)
	ctx := context.Background()

	assert.True(t, errors.Is(s.Seek(ctx, time.Second), ErrNothingPlaying))

	s.Enqueue(track("a", 3*time.Minute))
	_, err := s.Start(ctx)
	require.NoError(t, err)

	require.NoError(t, s.Seek(ctx, 90*time.Second))
	assert.Equal(t, 90*time.Second, tr.seeked)

	assert.True(t, errors.Is(s.Seek(ctx, 4*time.Minute), ErrSeekOutOfRange))
	assert.True(t, errors.Is(s.Seek(ctx, -time.Second), ErrSeekOutOfRange))
}

func TestSeekRejectsStreams(t *testing.T) {
	s, _, _ := newTestSession(t)
	ctx := context.Background()

	live := track("radio", 0)
	live.IsStream = true
	s.Enqueue(live)
	_, err := s.Start(ctx)
	require.NoError(t, err)

	assert.True(t, errors.Is(s.Seek(ctx, time.Second), ErrNotSeekable))
}

func TestFiltersAccumulateAndClear(t *testing.T) {
	s, tr, _ := newTestSession(t)
	ctx := context.Background()

	eq, err := filters.BassBoost.Lookup("high")
	require.NoError(t, err)
	require.NoError(t, s.SetEqualizer(ctx, eq, filters.BassBoost.Label("high")))
	require.NoError(t, s.SetTimescale(ctx, filters.Nightcore, "nightcore"))
	require.NoError(t, s.SetRotation(ctx, filters.EightD))
	require.NoError(t, s.SetKaraoke(ctx, filters.DefaultKaraoke))
	require.NoError(t, s.SetTremolo(ctx, filters.DefaultTremolo))
	require.NoError(t, s.SetVibrato(ctx, filters.DefaultVibrato))

	f := s.Filters()
	assert.Equal(t, eq, f.Equalizer)
	assert.Equal(t, filters.Nightcore, *f.Timescale)
	assert.Equal(t, filters.EightD, *f.Rotation)
	assert.Len(t, f.Names(), 6)
	assert.Equal(t, f.Names(), tr.filters.Names())

	require.NoError(t, s.ClearFilters(ctx))
	assert.False(t, s.Filters().Active())
	assert.Equal(t, "none", tr.filters.String())
}

func TestClosedSessionRejectsOperations(t *testing.T) {
	s, tr, _ := newTestSession(t)
	ctx := context.Background()

	s.Enqueue(track("a", time.Minute))
	require.NoError(t, s.close(ctx))
	assert.True(t, tr.destroyed)
	assert.Zero(t, s.QueueSize())

	_, err := s.Start(ctx)
	assert.True(t, errors.Is(err, ErrSessionClosed))
	assert.True(t, errors.Is(s.SetVolume(ctx, 10), ErrSessionClosed))
	assert.True(t, errors.Is(s.ClearFilters(ctx), ErrSessionClosed))
	assert.NoError(t, s.close(ctx), "closing twice is harmless")
}

func titles(tracks []common.Track) []string {
	out := make([]string, len(tracks))
	for i, t := range tracks {
		out[i] = t.Title
	}
	return out
}
