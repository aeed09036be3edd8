package playback

import (
	"context"
	"time"

	"github.com/disgoorg/disgolink/v3/disgolink"
	"github.com/disgoorg/disgolink/v3/lavalink"
	"github.com/disgoorg/snowflake/v2"
	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/filters"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// VoiceGateway sends voice state updates over the Discord gateway.
// *discordgo.Session satisfies it.
type VoiceGateway interface {
	ChannelVoiceJoinManual(gID, cID string, mute, deaf bool) error
}

// Lavalink is the Backend backed by disgolink
type Lavalink struct {
	gateway VoiceGateway
	userID  string
	nodes   []NodeConfig
	log     *logrus.Entry

	client disgolink.Client
}

// NewLavalink creates a backend for the bot user. Nodes are connected by Connect.
func NewLavalink(gateway VoiceGateway, userID string, nodes []NodeConfig, log *logrus.Entry) *Lavalink {
	return &Lavalink{
		gateway: gateway,
		userID:  userID,
		nodes:   nodes,
		log:     log,
	}
}

// Connect creates the disgolink client and adds every node. It fails only
// when no node could be reached.
func (l *Lavalink) Connect(ctx context.Context, listener Listener) error {
	userID, err := snowflake.Parse(l.userID)
	if err != nil {
		return errors.Wrapf(err, "invalid bot user id %q", l.userID)
	}

	l.client = disgolink.New(userID,
		disgolink.WithListenerFunc(func(p disgolink.Player, e lavalink.TrackStartEvent) {
			listener.OnTrackStart(p.GuildID().String())
		}),
		disgolink.WithListenerFunc(func(p disgolink.Player, e lavalink.TrackEndEvent) {
			listener.OnTrackEnd(p.GuildID().String(), e.Reason.MayStartNext(), string(e.Reason))
		}),
		disgolink.WithListenerFunc(func(p disgolink.Player, e lavalink.TrackExceptionEvent) {
			// the node follows up with a load failed track end
			listener.OnTrackFailed(p.GuildID().String(), e.Exception.Error(), false)
		}),
		disgolink.WithListenerFunc(func(p disgolink.Player, e lavalink.TrackStuckEvent) {
			listener.OnTrackFailed(p.GuildID().String(), "track got stuck", true)
		}),
		disgolink.WithListenerFunc(func(p disgolink.Player, e lavalink.WebSocketClosedEvent) {
			listener.OnVoiceClosed(p.GuildID().String(), e.Code, e.Reason, e.ByRemote)
		}),
	)

	connected := 0
	for _, n := range l.nodes {
		_, err := l.client.AddNode(ctx, disgolink.NodeConfig{
			Name:     n.Name,
			Address:  n.Address,
			Password: n.Password,
			Secure:   n.Secure,
		})
		if err != nil {
			listener.OnNodeError(n.Name, err)
			continue
		}
		connected++
		listener.OnNodeReady(n.Name)
	}

	if connected == 0 {
		return ErrNoNodes
	}
	return nil
}

// Search loads tracks for an identifier on the best node. A single track or
// a playlist are returned as they are; search results keep their order.
func (l *Lavalink) Search(ctx context.Context, identifier string) ([]common.Track, error) {
	if l.client == nil {
		return nil, ErrNoNodes
	}
	node := l.client.BestNode()
	if node == nil {
		return nil, ErrNoNodes
	}

	var (
		loaded  []lavalink.Track
		loadErr error
	)
	node.LoadTracksHandler(ctx, identifier, disgolink.NewResultHandler(
		func(track lavalink.Track) {
			loaded = []lavalink.Track{track}
		},
		func(playlist lavalink.Playlist) {
			loaded = playlist.Tracks
		},
		func(tracks []lavalink.Track) {
			loaded = tracks
		},
		func() {},
		func(err error) {
			loadErr = err
		},
	))
	if loadErr != nil {
		return nil, errors.Wrap(loadErr, "failed to load tracks")
	}

	out := make([]common.Track, 0, len(loaded))
	for _, t := range loaded {
		track, ok := fromLavalinkTrack(t)
		if !ok {
			l.log.WithField("identifier", t.Info.Identifier).Warn("Skipping track without encoded form")
			continue
		}
		out = append(out, track)
	}
	return out, nil
}

// Join connects the bot to a voice channel, deafened, and returns the
// guild's player
func (l *Lavalink) Join(ctx context.Context, guildID, channelID string) (Transport, error) {
	if l.client == nil {
		return nil, ErrNoNodes
	}
	gid, err := snowflake.Parse(guildID)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid guild id %q", guildID)
	}
	if err := l.gateway.ChannelVoiceJoinManual(guildID, channelID, false, true); err != nil {
		return nil, errors.Wrapf(err, "failed to join channel %s", channelID)
	}
	return &lavalinkTransport{
		player:  l.client.Player(gid),
		gateway: l.gateway,
		guildID: guildID,
	}, nil
}

// VoiceStateUpdate forwards the bot's own voice state to the client
func (l *Lavalink) VoiceStateUpdate(ctx context.Context, guildID, channelID, sessionID string) {
	if l.client == nil {
		return
	}
	gid, err := snowflake.Parse(guildID)
	if err != nil {
		return
	}
	var cid *snowflake.ID
	if channelID != "" {
		id, err := snowflake.Parse(channelID)
		if err != nil {
			return
		}
		cid = &id
	}
	l.client.OnVoiceStateUpdate(ctx, gid, cid, sessionID)
}

// VoiceServerUpdate forwards a voice server update to the client
func (l *Lavalink) VoiceServerUpdate(ctx context.Context, guildID, token, endpoint string) {
	if l.client == nil {
		return
	}
	gid, err := snowflake.Parse(guildID)
	if err != nil {
		return
	}
	l.client.OnVoiceServerUpdate(ctx, gid, token, endpoint)
}

func (l *Lavalink) Close() {
	if l.client != nil {
		l.client.Close()
	}
}

type lavalinkTransport struct {
	player  disgolink.Player
	gateway VoiceGateway
	guildID string
}

func (t *lavalinkTransport) Play(ctx context.Context, track common.Track) error {
	if track.Encoded == "" {
		return errors.Errorf("track %q has no encoded form", track.Title)
	}
	return t.player.Update(ctx, lavalink.WithEncodedTrack(track.Encoded))
}

func (t *lavalinkTransport) Stop(ctx context.Context) error {
	return t.player.Update(ctx, lavalink.WithNullTrack())
}

func (t *lavalinkTransport) SetPaused(ctx context.Context, paused bool) error {
	return t.player.Update(ctx, lavalink.WithPaused(paused))
}

func (t *lavalinkTransport) SetVolume(ctx context.Context, volume int) error {
	return t.player.Update(ctx, lavalink.WithVolume(volume))
}

func (t *lavalinkTransport) Seek(ctx context.Context, position time.Duration) error {
	return t.player.Update(ctx, lavalink.WithPosition(lavalink.Duration(position.Milliseconds())))
}

func (t *lavalinkTransport) SetFilters(ctx context.Context, f filters.Filters) error {
	return t.player.Update(ctx, lavalink.WithFilters(f.Lavalink()))
}

func (t *lavalinkTransport) Position() time.Duration {
	return time.Duration(t.player.Position()) * time.Millisecond
}

func (t *lavalinkTransport) Destroy(ctx context.Context) error {
	err := t.player.Destroy(ctx)
	if leaveErr := t.gateway.ChannelVoiceJoinManual(t.guildID, "", false, false); leaveErr != nil && err == nil {
		err = errors.Wrap(leaveErr, "failed to leave voice channel")
	}
	return err
}

// fromLavalinkTrack keeps the fields the bot shows and replays. A track
// without an encoded form cannot be played and is rejected.
func fromLavalinkTrack(t lavalink.Track) (common.Track, bool) {
	if t.Encoded == "" {
		return common.Track{}, false
	}
	track := common.Track{
		Encoded:    t.Encoded,
		Identifier: t.Info.Identifier,
		Title:      t.Info.Title,
		Author:     t.Info.Author,
		SourceName: t.Info.SourceName,
		Length:     time.Duration(t.Info.Length) * time.Millisecond,
		IsStream:   t.Info.IsStream,
	}
	if t.Info.URI != nil {
		track.URI = *t.Info.URI
	}
	if t.Info.ArtworkURL != nil {
		track.ArtworkURL = *t.Info.ArtworkURL
	}
	return track, true
}
