package playback

import (
	"context"
	"time"

	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/filters"
	"github.com/pkg/errors"
)

var (
	// ErrNoNodes is returned when no Lavalink node is connected
	ErrNoNodes = errors.New("no lavalink node available")
	// ErrNoResults is returned when a search matched nothing
	ErrNoResults = errors.New("no results")
	// ErrSessionClosed is returned by operations on a destroyed session
	ErrSessionClosed = errors.New("session closed")
	// ErrNothingPlaying is returned when an operation needs a current track
	ErrNothingPlaying = errors.New("nothing playing")
	// ErrSeekOutOfRange is returned for positions outside the current track
	ErrSeekOutOfRange = errors.New("seek position out of range")
	// ErrNotSeekable is returned when seeking a live stream
	ErrNotSeekable = errors.New("track is not seekable")
	// ErrVolumeOutOfRange is returned for volumes outside 0–100
	ErrVolumeOutOfRange = errors.New("volume out of range")
)

// NodeConfig describes one Lavalink node
type NodeConfig struct {
	Name     string
	Address  string
	Password string
	Secure   bool
}

// Backend is the external playback client: node connections, track loading
// and one player per guild.
type Backend interface {
	Connect(ctx context.Context, listener Listener) error
	Search(ctx context.Context, identifier string) ([]common.Track, error)
	Join(ctx context.Context, guildID, channelID string) (Transport, error)
	Close()
}

// Transport controls one guild's player on the node
type Transport interface {
	Play(ctx context.Context, track common.Track) error
	Stop(ctx context.Context) error
	SetPaused(ctx context.Context, paused bool) error
	SetVolume(ctx context.Context, volume int) error
	Seek(ctx context.Context, position time.Duration) error
	SetFilters(ctx context.Context, f filters.Filters) error
	Position() time.Duration
	// Destroy removes the player from the node and leaves the voice channel
	Destroy(ctx context.Context) error
}

// Listener receives callbacks from the backend. Guild IDs are Discord
// snowflakes in string form.
type Listener interface {
	OnNodeReady(node string)
	OnNodeError(node string, err error)
	OnTrackStart(guildID string)
	OnTrackEnd(guildID string, mayStartNext bool, reason string)
	// OnTrackFailed reports an exception or a stuck track. advance is set when
	// the node will not follow up with a track end of its own.
	OnTrackFailed(guildID string, reason string, advance bool)
	OnVoiceClosed(guildID string, code int, reason string, byRemote bool)
}
