// Package filters holds the audio filter settings applied to a player and the
// static preset tables the chat commands choose from.
//
// The effect types are the Lavalink client's own, so a Filters value converts
// to the node's filters object without an intermediate encoding.
package filters

import (
	"strings"

	"github.com/disgoorg/disgolink/v3/lavalink"
)

// BandCount is the number of equalizer bands defined by the Lavalink protocol
const BandCount = 15

// Band is a single equalizer adjustment. Band is 0–14, Gain is typically
// -0.25 to 1.0; bounds are enforced by the node, not here.
type Band struct {
	Band int
	Gain float64
}

// Equalizer is an ordered set of band adjustments
type Equalizer []Band

// Gains expands the equalizer into the dense band array the node expects.
// Out of range bands are dropped.
func (e Equalizer) Gains() lavalink.Equalizer {
	var out lavalink.Equalizer
	for _, b := range e {
		if b.Band >= 0 && b.Band < BandCount {
			out[b.Band] = float32(b.Gain)
		}
	}
	return out
}

// Flat reports whether every band is at zero gain
func (e Equalizer) Flat() bool {
	for _, b := range e {
		if b.Gain != 0 {
			return false
		}
	}
	return true
}

type (
	Timescale = lavalink.Timescale
	Rotation  = lavalink.Rotation
	Karaoke   = lavalink.Karaoke
	Tremolo   = lavalink.Tremolo
	Vibrato   = lavalink.Vibrato
)

// Filters is the full filter state of one player. Nil fields are disabled.
type Filters struct {
	Equalizer Equalizer
	Timescale *Timescale
	Rotation  *Rotation
	Karaoke   *Karaoke
	Tremolo   *Tremolo
	Vibrato   *Vibrato

	// Label names the equalizer table in use (e.g. "bass:high", "preset:vocal")
	// and the timescale preset (e.g. "nightcore"). Not sent to the node.
	EqualizerLabel string
	TimescaleLabel string
}

// Lavalink converts the state into the node's filters object. The equalizer
// is always present so clearing it resets every band.
func (f Filters) Lavalink() lavalink.Filters {
	eq := f.Equalizer.Gains()
	return lavalink.Filters{
		Equalizer: &eq,
		Timescale: clone(f.Timescale),
		Rotation:  clone(f.Rotation),
		Karaoke:   clone(f.Karaoke),
		Tremolo:   clone(f.Tremolo),
		Vibrato:   clone(f.Vibrato),
	}
}

func clone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

// Active reports whether any filter is enabled
func (f Filters) Active() bool {
	return len(f.Names()) > 0
}

// Names lists the enabled filters in a stable order
func (f Filters) Names() []string {
	var names []string
	if f.Equalizer != nil && !f.Equalizer.Flat() {
		if f.EqualizerLabel != "" {
			names = append(names, "equalizer ("+f.EqualizerLabel+")")
		} else {
			names = append(names, "equalizer")
		}
	}
	if f.Timescale != nil {
		if f.TimescaleLabel != "" {
			names = append(names, "timescale ("+f.TimescaleLabel+")")
		} else {
			names = append(names, "timescale")
		}
	}
	if f.Rotation != nil {
		names = append(names, "rotation")
	}
	if f.Karaoke != nil {
		names = append(names, "karaoke")
	}
	if f.Tremolo != nil {
		names = append(names, "tremolo")
	}
	if f.Vibrato != nil {
		names = append(names, "vibrato")
	}
	return names
}

// String renders the enabled filters for chat output
func (f Filters) String() string {
	names := f.Names()
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ", ")
}
