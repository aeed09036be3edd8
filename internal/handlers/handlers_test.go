package handlers

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Serenade/internal/commands"
	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/logging"
	"github.com/latoulicious/Serenade/pkg/metrics"
	"github.com/latoulicious/Serenade/pkg/playback"
	"github.com/latoulicious/Serenade/pkg/playback/playbacktest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMessenger struct {
	mu       sync.Mutex
	contents []string
	embeds   []*discordgo.MessageEmbed
}

func (f *fakeMessenger) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.contents = append(f.contents, content)
	return &discordgo.Message{}, nil
}

func (f *fakeMessenger) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{}, nil
}

func (f *fakeMessenger) ChannelMessageSendReply(channelID string, content string, _ *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	return f.ChannelMessageSend(channelID, content)
}

func (f *fakeMessenger) hasContent(s string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.contents {
		if c == s {
			return true
		}
	}
	return false
}

func (f *fakeMessenger) embedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.embeds)
}

type fakeVoice struct{}

func (fakeVoice) UserVoiceChannel(_, userID string) (string, error) {
	if userID == "alice" {
		return "voice1", nil
	}
	return "", common.ErrNotInVoice
}
func (fakeVoice) Latency() time.Duration { return time.Millisecond }
func (fakeVoice) GuildCount() int         { return 1 }

type fakePresence struct {
	mu        sync.Mutex
	titles    []string
	refreshes int
}

func (f *fakePresence) UpdateMusicPresence(title string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.titles = append(f.titles, title)
	return nil
}

func (f *fakePresence) Refresh() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return nil
}

func (f *fakePresence) state() ([]string, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.titles...), f.refreshes
}

type harness struct {
	dispatcher *Dispatcher
	manager    *playback.Manager
	backend    *playbacktest.Backend
	messenger  *fakeMessenger
	presence   *fakePresence
	metrics    *metrics.Collector
}

func newHarness(t *testing.T, voice commands.VoiceLocator) *harness {
	t.Helper()
	backend := playbacktest.NewBackend()
	manager := playback.NewManager(backend, playback.Options{SearchRate: 100}, logging.Null())
	require.NoError(t, manager.Start(context.Background()))

	messenger := &fakeMessenger{}
	presence := &fakePresence{}
	collector := metrics.NewCollector(logging.Null())
	env := &commands.Env{
		Messenger: messenger,
		Voice:     voice,
		Playback:  manager,
		Metrics:   collector,
		Log:       logging.Null(),
		Prefix:    "!",
	}
	d := NewDispatcher(env, presence, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		assert.NoError(t, d.Run(ctx))
	}()
	t.Cleanup(func() {
		cancel()
		<-done
		manager.Close(context.Background())
	})

	return &harness{
		dispatcher: d,
		manager:    manager,
		backend:    backend,
		messenger:  messenger,
		presence:   presence,
		metrics:    collector,
	}
}

func message(author *discordgo.User, guildID, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        "m1",
		ChannelID: "text1",
		GuildID:   guildID,
		Content:   content,
		Author:    author,
	}
}

var alice = &discordgo.User{ID: "alice", Username: "alice"}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		content string
		token   string
		args    []string
		ok      bool
	}{
		{"!play never gonna", "play", []string{"never", "gonna"}, true},
		{"!PLAY  spaced   out ", "play", []string{"spaced", "out"}, true},
		{"! skip", "skip", []string{}, true},
		{"!", "", nil, false},
		{"play", "", nil, false},
		{"?play", "", nil, false},
	}
	for _, tt := range tests {
		token, args, ok := ParseCommand("!", tt.content)
		assert.Equal(t, tt.ok, ok, tt.content)
		assert.Equal(t, tt.token, token, tt.content)
		if tt.ok {
			assert.Equal(t, tt.args, args, tt.content)
		}
	}
}

func TestInvocationFiltering(t *testing.T) {
	d := NewDispatcher(&commands.Env{Prefix: "!", Log: logging.Null()}, &fakePresence{}, 0)

	bot := &discordgo.User{ID: "b", Bot: true}
	assert.Nil(t, d.invocation(message(bot, "g1", "!play x")))
	assert.Nil(t, d.invocation(message(alice, "", "!play x")), "direct messages are ignored")
	assert.Nil(t, d.invocation(message(alice, "g1", "hello")))
	assert.Nil(t, d.invocation(message(alice, "g1", "!dance")), "unknown commands are ignored")
	assert.Nil(t, d.invocation(&discordgo.Message{GuildID: "g1", Content: "!play"}))

	inv := d.invocation(message(alice, "g1", "!vol 50"))
	require.NotNil(t, inv)
	assert.Equal(t, commands.KindVolume, inv.Kind)
	assert.Equal(t, []string{"50"}, inv.Args)
	assert.Equal(t, "alice", inv.Author.ID)
	assert.Equal(t, "m1", inv.MessageID)
	assert.Len(t, inv.ID, 36)
	assert.Equal(t, 30*time.Second, d.timeout)
}

func TestDispatcherPlaysAndTearsDown(t *testing.T) {
	h := newHarness(t, fakeVoice{})
	h.backend.AddResult("song", playbacktest.Track("Song", time.Minute))

	h.dispatcher.MessageHandler(nil, &discordgo.MessageCreate{Message: message(alice, "g1", "!play song")})
	require.Eventually(t, func() bool { return h.messenger.hasContent("➕ Added: **Song**") }, time.Second, 10*time.Millisecond)
	require.NotNil(t, h.manager.Get("g1"))

	h.manager.OnTrackStart("g1")
	require.Eventually(t, func() bool { return h.messenger.embedCount() == 1 }, time.Second, 10*time.Millisecond)
	titles, _ := h.presence.state()
	assert.Equal(t, []string{"Song"}, titles)

	h.manager.OnTrackEnd("g1", true, "finished")
	require.Eventually(t, func() bool { return h.manager.Get("g1") == nil }, time.Second, 10*time.Millisecond)
	assert.True(t, h.messenger.hasContent("⏹️ Queue finished! Disconnecting..."))
	assert.True(t, h.backend.Transport("g1").Destroyed())
	assert.Eventually(t, func() bool {
		_, refreshes := h.presence.state()
		return refreshes == 1
	}, time.Second, 10*time.Millisecond)
}

func TestDispatcherDestroysOnDisconnect(t *testing.T) {
	h := newHarness(t, fakeVoice{})
	h.backend.AddResult("song", playbacktest.Track("Song", time.Minute))
	h.dispatcher.MessageHandler(nil, &discordgo.MessageCreate{Message: message(alice, "g1", "!play song")})
	require.Eventually(t, func() bool { return h.manager.Get("g1") != nil }, time.Second, 10*time.Millisecond)

	h.manager.OnVoiceJoined("g1", "voice1")
	h.manager.OnVoiceClosed("g1", 4006, "session invalid", true)
	h.manager.OnVoiceLeft("g1")
	require.Eventually(t, func() bool { return h.manager.Get("g1") == nil }, time.Second, 10*time.Millisecond)
}

// newStepHarness builds a dispatcher whose loop is not running, so a test
// decides exactly when commands and events are handled
func newStepHarness(t *testing.T) *harness {
	t.Helper()
	backend := playbacktest.NewBackend()
	manager := playback.NewManager(backend, playback.Options{SearchRate: 100}, logging.Null())
	require.NoError(t, manager.Start(context.Background()))
	t.Cleanup(func() { manager.Close(context.Background()) })

	messenger := &fakeMessenger{}
	presence := &fakePresence{}
	env := &commands.Env{
		Messenger: messenger,
		Voice:     fakeVoice{},
		Playback:  manager,
		Log:       logging.Null(),
		Prefix:    "!",
	}
	return &harness{
		dispatcher: NewDispatcher(env, presence, time.Second),
		manager:    manager,
		backend:    backend,
		messenger:  messenger,
		presence:   presence,
	}
}

func (h *harness) step(t *testing.T, content string) {
	t.Helper()
	inv := h.dispatcher.invocation(message(alice, "g1", content))
	require.NotNil(t, inv, content)
	h.dispatcher.dispatch(context.Background(), inv)
}

// drain handles every event emitted so far
func (h *harness) drain() {
	for {
		select {
		case e := <-h.manager.Events():
			h.dispatcher.handleEvent(context.Background(), e)
		default:
			return
		}
	}
}

func TestQueueEmptiedKeepsSessionRefilledMeanwhile(t *testing.T) {
	h := newStepHarness(t)
	h.backend.AddResult("a", playbacktest.Track("A", time.Minute))
	h.backend.AddResult("b", playbacktest.Track("B", time.Minute))

	h.step(t, "!play a")
	s := h.manager.Get("g1")
	require.NotNil(t, s)

	h.manager.OnTrackEnd("g1", true, "finished")
	h.step(t, "!play b")
	h.drain()

	assert.Same(t, s, h.manager.Get("g1"))
	assert.Equal(t, []string{"A", "B"}, h.backend.Transport("g1").Played())
	assert.False(t, h.backend.Transport("g1").Destroyed())
	assert.False(t, h.messenger.hasContent("⏹️ Queue finished! Disconnecting..."))
	_, refreshes := h.presence.state()
	assert.Zero(t, refreshes)
}

func TestQueueEmptiedReleasesIdleSession(t *testing.T) {
	h := newStepHarness(t)
	h.backend.AddResult("a", playbacktest.Track("A", time.Minute))

	h.step(t, "!play a")
	h.manager.OnTrackEnd("g1", true, "finished")
	h.drain()

	assert.Nil(t, h.manager.Get("g1"))
	assert.True(t, h.backend.Transport("g1").Destroyed())
	assert.True(t, h.messenger.hasContent("⏹️ Queue finished! Disconnecting..."))
}

func TestStaleVoiceLeaveKeepsNewSession(t *testing.T) {
	h := newStepHarness(t)
	h.backend.AddResult("a", playbacktest.Track("A", time.Minute))
	h.backend.AddResult("b", playbacktest.Track("B", time.Minute))
	voice := NewVoiceHandler("bot", &fakeForwarder{}, h.manager, logging.Null())
	update := func(channelID string) {
		voice.VoiceStateUpdate(nil, &discordgo.VoiceStateUpdate{VoiceState: &discordgo.VoiceState{UserID: "bot", GuildID: "g1", ChannelID: channelID}})
	}

	h.step(t, "!play a")
	update("voice1")
	old := h.manager.Get("g1")
	require.NotNil(t, old)

	h.step(t, "!stop")
	h.step(t, "!play b")
	current := h.manager.Get("g1")
	require.NotNil(t, current)

	// the gateway reports the leave caused by !stop only now
	update("")
	h.drain()
	assert.Same(t, current, h.manager.Get("g1"))

	// a disconnect reported for the stopped session does not touch this one
	h.dispatcher.handleEvent(context.Background(), playback.VoiceClosed{GuildID: "g1", SessionID: old.ID(), Disconnected: true})
	assert.Same(t, current, h.manager.Get("g1"))
	assert.False(t, h.backend.Transport("g1").Destroyed())

	// once the new join is confirmed a leave is real
	update("voice1")
	update("")
	h.drain()
	assert.Nil(t, h.manager.Get("g1"))
	assert.True(t, h.backend.Transport("g1").Destroyed())
}

type panickyVoice struct{ fakeVoice }

func (panickyVoice) Latency() time.Duration { panic("gateway gone") }

func TestDispatcherRecoversFromPanics(t *testing.T) {
	h := newHarness(t, panickyVoice{})

	h.dispatcher.MessageHandler(nil, &discordgo.MessageCreate{Message: message(alice, "g1", "!ping")})
	h.dispatcher.MessageHandler(nil, &discordgo.MessageCreate{Message: message(alice, "g1", "!skip")})
	require.Eventually(t, func() bool { return h.messenger.hasContent("❌ Nothing playing!") }, time.Second, 10*time.Millisecond)

	panicked, ok := h.metrics.Get(metrics.CommandsPanicked, map[string]string{"command": "ping"})
	require.True(t, ok)
	assert.Equal(t, 1.0, panicked.Value)
}

func TestDispatcherRecordsMetrics(t *testing.T) {
	h := newHarness(t, fakeVoice{})
	h.dispatcher.MessageHandler(nil, &discordgo.MessageCreate{Message: message(alice, "g1", "!skip")})
	h.dispatcher.MessageHandler(nil, &discordgo.MessageCreate{Message: message(alice, "g1", "!ping")})
	require.Eventually(t, func() bool { return h.metrics.Total(metrics.CommandsTotal) == 2 }, time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		_, ok := h.metrics.Get(metrics.CommandDuration, map[string]string{"command": "ping"})
		return ok
	}, time.Second, 10*time.Millisecond)
	skips, ok := h.metrics.Get(metrics.CommandsTotal, map[string]string{"command": "skip"})
	require.True(t, ok)
	assert.Equal(t, 1.0, skips.Value)
	assert.Zero(t, h.metrics.Total(metrics.CommandsFailed))
}

type fakeForwarder struct {
	states  []string
	servers []string
}

func (f *fakeForwarder) VoiceStateUpdate(_ context.Context, guildID, channelID, _ string) {
	f.states = append(f.states, guildID+"/"+channelID)
}

func (f *fakeForwarder) VoiceServerUpdate(_ context.Context, guildID, _, endpoint string) {
	f.servers = append(f.servers, guildID+"@"+endpoint)
}

type fakeTracker struct {
	joined []string
	left   []string
}

func (f *fakeTracker) OnVoiceJoined(guildID, channelID string) {
	f.joined = append(f.joined, guildID+"/"+channelID)
}

func (f *fakeTracker) OnVoiceLeft(guildID string) { f.left = append(f.left, guildID) }

func TestVoiceHandlerForwardsBotUpdates(t *testing.T) {
	fwd := &fakeForwarder{}
	tracker := &fakeTracker{}
	h := NewVoiceHandler("bot", fwd, tracker, logging.Null())

	h.VoiceStateUpdate(nil, &discordgo.VoiceStateUpdate{VoiceState: &discordgo.VoiceState{UserID: "alice", GuildID: "g1", ChannelID: "v1"}})
	assert.Empty(t, fwd.states, "other members are not forwarded")

	h.VoiceStateUpdate(nil, &discordgo.VoiceStateUpdate{VoiceState: &discordgo.VoiceState{UserID: "bot", GuildID: "g1", ChannelID: "v1", SessionID: "s"}})
	h.VoiceServerUpdate(nil, &discordgo.VoiceServerUpdate{GuildID: "g1", Token: "t", Endpoint: "us-east.discord.media"})
	assert.Equal(t, []string{"g1/v1"}, fwd.states)
	assert.Equal(t, []string{"g1@us-east.discord.media"}, fwd.servers)
	assert.Equal(t, []string{"g1/v1"}, tracker.joined)
	assert.Empty(t, tracker.left)

	h.VoiceStateUpdate(nil, &discordgo.VoiceStateUpdate{VoiceState: &discordgo.VoiceState{UserID: "bot", GuildID: "g1"}})
	assert.Equal(t, []string{"g1"}, tracker.left)
	assert.Len(t, tracker.joined, 1)
}
