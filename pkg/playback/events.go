package playback

import "github.com/latoulicious/Serenade/pkg/common"

// Event is a notification from the playback facade. Concrete types:
// NodeReady, NodeError, TrackStarted, TrackFailed, QueueEmptied, VoiceClosed.
type Event interface {
	event()
}

// NodeReady is emitted once per node that connected successfully
type NodeReady struct {
	Node string
}

// NodeError is emitted when a node could not be reached
type NodeError struct {
	Node string
	Err  error
}

// TrackStarted is emitted when the node starts playing a track
type TrackStarted struct {
	GuildID       string
	TextChannelID string
	Track         common.Track
}

// TrackFailed is emitted when a track throws or gets stuck on the node
type TrackFailed struct {
	GuildID       string
	TextChannelID string
	Track         common.Track
	Reason        string
}

// QueueEmptied is emitted when the last track ended and nothing is queued.
// SessionID names the session that ran dry.
type QueueEmptied struct {
	GuildID       string
	TextChannelID string
	SessionID     uint64
}

// VoiceClosed is emitted when the voice connection of a guild went away.
// Disconnected is set when the bot is no longer in a voice channel.
// SessionID is the session live when the close was reported, or zero.
type VoiceClosed struct {
	GuildID      string
	SessionID    uint64
	Code         int
	Reason       string
	ByRemote     bool
	Disconnected bool
}

func (NodeReady) event()    {}
func (NodeError) event()    {}
func (TrackStarted) event() {}
func (TrackFailed) event()  {}
func (QueueEmptied) event() {}
func (VoiceClosed) event()  {}

// voiceDisconnectedCode is the Discord voice close code for being removed
// from the channel
const voiceDisconnectedCode = 4014
