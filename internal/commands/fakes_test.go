package commands

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/logging"
	"github.com/latoulicious/Serenade/pkg/playback"
	"github.com/latoulicious/Serenade/pkg/playback/playbacktest"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	ChannelID string
	Content   string
	Embed     *discordgo.MessageEmbed
	Reply     bool
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
}

func (f *fakeMessenger) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeMessenger) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Embed: embed})
	return &discordgo.Message{ChannelID: channelID}, nil
}

func (f *fakeMessenger) ChannelMessageSendReply(channelID string, content string, _ *discordgo.MessageReference, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMessage{ChannelID: channelID, Content: content, Reply: true})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func (f *fakeMessenger) last(t *testing.T) sentMessage {
	t.Helper()
	f.mu.Lock()
	defer f.mu.Unlock()
	require.NotEmpty(t, f.sent, "nothing was sent")
	return f.sent[len(f.sent)-1]
}

func (f *fakeMessenger) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

type fakeVoice struct {
	channels map[string]string
}

func (f *fakeVoice) UserVoiceChannel(_, userID string) (string, error) {
	if c, ok := f.channels[userID]; ok {
		return c, nil
	}
	return "", common.ErrNotInVoice
}

func (f *fakeVoice) Latency() time.Duration { return 42 * time.Millisecond }
func (f *fakeVoice) GuildCount() int         { return 3 }

type harness struct {
	env       *Env
	messenger *fakeMessenger
	backend   *playbacktest.Backend
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := playbacktest.NewBackend()
	manager := playback.NewManager(backend, playback.Options{DefaultVolume: 80, SearchRate: 100}, logging.Null())
	require.NoError(t, manager.Start(context.Background()))
	t.Cleanup(func() { manager.Close(context.Background()) })

	messenger := &fakeMessenger{}
	return &harness{
		env: &Env{
			Messenger: messenger,
			Voice:     &fakeVoice{channels: map[string]string{"alice": "voice1"}},
			Playback:  manager,
			Log:       logging.Null(),
			Prefix:    "!",
			Version:   "test",
			StartedAt: time.Now(),
		},
		messenger: messenger,
		backend:   backend,
	}
}

// run dispatches a command line as alice in guild g1
func (h *harness) run(t *testing.T, token string, args ...string) sentMessage {
	t.Helper()
	h.runAs(t, "alice", token, args...)
	return h.messenger.last(t)
}

func (h *harness) runAs(t *testing.T, userID, token string, args ...string) {
	t.Helper()
	inv := &Invocation{
		ID:        "test",
		Kind:      Lookup(token),
		Token:     token,
		Args:      args,
		Author:    common.Requester{ID: userID, Username: userID},
		GuildID:   "g1",
		ChannelID: "text1",
		MessageID: "m1",
	}
	require.NoError(t, Run(context.Background(), h.env, inv))
}

// playing queues the titles and starts the first one
func (h *harness) playing(t *testing.T, titles ...string) *playback.Session {
	t.Helper()
	for _, title := range titles {
		h.backend.AddResult(title, song(title))
		h.run(t, "play", title)
	}
	s := h.env.Playback.Get("g1")
	require.NotNil(t, s)
	return s
}

func song(title string) common.Track {
	return playbacktest.Track(title, 3*time.Minute)
}
