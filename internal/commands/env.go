package commands

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/metrics"
	"github.com/latoulicious/Serenade/pkg/playback"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Messenger sends chat messages. *discordgo.Session satisfies it.
type Messenger interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendReply(channelID string, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// VoiceLocator answers gateway state questions the commands need
type VoiceLocator interface {
	// UserVoiceChannel returns the voice channel a member is connected to,
	// or common.ErrNotInVoice
	UserVoiceChannel(guildID, userID string) (string, error)
	Latency() time.Duration
	GuildCount() int
}

// Env is the process-wide state shared by every command
type Env struct {
	Messenger Messenger
	Voice     VoiceLocator
	Playback  *playback.Manager
	Metrics   *metrics.Collector
	Log       *logrus.Entry
	Prefix    string
	Version   string
	StartedAt time.Time
}

// Invocation is one parsed chat command
type Invocation struct {
	ID        string
	Kind      Kind
	Token     string
	Args      []string
	Author    common.Requester
	GuildID   string
	ChannelID string
	MessageID string
}

// Query joins the arguments back into free text
func (inv *Invocation) Query() string {
	return strings.Join(inv.Args, " ")
}

// Arg returns the i-th argument, or "" when absent
func (inv *Invocation) Arg(i int) string {
	if i < 0 || i >= len(inv.Args) {
		return ""
	}
	return inv.Args[i]
}

// Fields are the log fields identifying the invocation
func (inv *Invocation) Fields() logrus.Fields {
	return logrus.Fields{
		"invocation_id": inv.ID,
		"command":       inv.Kind.String(),
		"guild_id":      inv.GuildID,
		"channel_id":    inv.ChannelID,
		"user_id":       inv.Author.ID,
	}
}

// Handler runs one command. Problems the user can fix are replied to and
// reported as nil; other errors are returned for the caller to log.
type Handler func(ctx context.Context, env *Env, inv *Invocation) error

var registry = map[Kind]Handler{
	KindPlay:        PlayCommand,
	KindSkip:        SkipCommand,
	KindStop:        StopCommand,
	KindPause:       PauseCommand,
	KindResume:      ResumeCommand,
	KindQueue:       QueueCommand,
	KindNowPlaying:  NowPlayingCommand,
	KindVolume:      VolumeCommand,
	KindShuffle:     ShuffleCommand,
	KindLoop:        LoopCommand,
	KindRemove:      RemoveCommand,
	KindClear:       ClearCommand,
	KindSeek:        SeekCommand,
	KindBassBoost:   BassBoostCommand,
	KindPreset:      PresetCommand,
	KindNightcore:   NightcoreCommand,
	KindSlowed:      SlowedCommand,
	KindEightD:      EightDCommand,
	KindVaporwave:   VaporwaveCommand,
	KindKaraoke:     KaraokeCommand,
	KindTremolo:     TremoloCommand,
	KindVibrato:     VibratoCommand,
	KindClearFilter: ClearFilterCommand,
	KindFilters:     FiltersCommand,
	KindHelp:        HelpCommand,
	KindPing:        PingCommand,
	KindAbout:       AboutCommand,
}

// Run dispatches the invocation to its handler. Unknown commands are ignored.
func Run(ctx context.Context, env *Env, inv *Invocation) error {
	handler, ok := registry[inv.Kind]
	if !ok {
		return nil
	}
	return handler(ctx, env, inv)
}

// Reply answers the invoking message
func (env *Env) Reply(inv *Invocation, content string) error {
	ref := &discordgo.MessageReference{
		MessageID: inv.MessageID,
		ChannelID: inv.ChannelID,
		GuildID:   inv.GuildID,
	}
	_, err := env.Messenger.ChannelMessageSendReply(inv.ChannelID, content, ref)
	return errors.Wrap(err, "failed to send reply")
}

// Send posts a plain message to a channel
func (env *Env) Send(channelID, content string) error {
	_, err := env.Messenger.ChannelMessageSend(channelID, content)
	return errors.Wrap(err, "failed to send message")
}

// SendEmbed posts an embed to a channel
func (env *Env) SendEmbed(channelID string, embed *discordgo.MessageEmbed) error {
	_, err := env.Messenger.ChannelMessageSendEmbed(channelID, embed)
	return errors.Wrap(err, "failed to send embed")
}

// Messages shared by several commands
const (
	msgNotInVoice     = "❌ Join a voice channel first!"
	msgNothingPlaying = "❌ Nothing playing!"
)

// session returns the guild's session or replies that there is none
func (env *Env) session(inv *Invocation) (*playback.Session, error) {
	s := env.Playback.Get(inv.GuildID)
	if s == nil {
		return nil, env.Reply(inv, msgNothingPlaying)
	}
	return s, nil
}

// Embed colors
const (
	colorPlaying = 0x00ff00
	colorInfo    = 0x5865f2
	colorIdle    = 0x808080
)

const footerText = "Serenade"
