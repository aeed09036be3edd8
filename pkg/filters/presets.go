package filters

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrUnknownPreset is returned for a preset or level name that is not in a table
var ErrUnknownPreset = errors.New("unknown preset")

// Flat is the neutral equalizer
var Flat = Equalizer{
	{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0},
	{5, 0}, {6, 0}, {7, 0}, {8, 0}, {9, 0},
	{10, 0}, {11, 0}, {12, 0}, {13, 0}, {14, 0},
}

// Table is a named set of equalizer presets with a fixed display order
type Table struct {
	kind    string
	order   []string
	entries map[string]Equalizer
}

// Names returns the valid names in display order
func (t Table) Names() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

// Lookup returns the equalizer stored under name. Unknown names produce an
// error listing every valid name.
func (t Table) Lookup(name string) (Equalizer, error) {
	eq, ok := t.entries[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownPreset, "%s %q, valid: %s", t.kind, name, strings.Join(t.order, ", "))
	}
	out := make(Equalizer, len(eq))
	copy(out, eq)
	return out, nil
}

// Label is the display label stored alongside an applied equalizer
func (t Table) Label(name string) string {
	return fmt.Sprintf("%s:%s", t.kind, strings.ToLower(strings.TrimSpace(name)))
}

// BassBoost holds the bass boost levels
var BassBoost = Table{
	kind:  "bass",
	order: []string{"off", "low", "medium", "high"},
	entries: map[string]Equalizer{
		"off": Flat,
		"low": {
			{0, 0.10}, {1, 0.10}, {2, 0.05}, {3, 0.05}, {4, 0},
			{5, 0}, {6, 0}, {7, 0}, {8, 0}, {9, 0},
			{10, 0}, {11, 0}, {12, 0}, {13, 0}, {14, 0},
		},
		"medium": {
			{0, 0.20}, {1, 0.15}, {2, 0.10}, {3, 0.05}, {4, 0},
			{5, -0.05}, {6, -0.05}, {7, 0}, {8, 0}, {9, 0},
			{10, 0}, {11, 0}, {12, 0}, {13, 0}, {14, 0},
		},
		"high": {
			{0, 0.35}, {1, 0.30}, {2, 0.20}, {3, 0.10}, {4, 0.05},
			{5, -0.05}, {6, -0.10}, {7, -0.10}, {8, -0.05}, {9, 0},
			{10, 0}, {11, 0}, {12, 0}, {13, 0}, {14, 0},
		},
	},
}

// Presets holds the named equalizer presets
var Presets = Table{
	kind:  "preset",
	order: []string{"clear", "vocal", "boost", "flat"},
	entries: map[string]Equalizer{
		"clear": {
			{0, -0.05}, {1, -0.05}, {2, 0}, {3, 0}, {4, 0},
			{5, 0.05}, {6, 0.10}, {7, 0.15}, {8, 0.20}, {9, 0.20},
			{10, 0.15}, {11, 0.10}, {12, 0.10}, {13, 0.05}, {14, 0.05},
		},
		"vocal": {
			{0, -0.20}, {1, -0.15}, {2, -0.10}, {3, -0.05}, {4, 0.05},
			{5, 0.15}, {6, 0.20}, {7, 0.25}, {8, 0.20}, {9, 0.10},
			{10, 0.05}, {11, 0}, {12, -0.05}, {13, -0.10}, {14, -0.10},
		},
		"boost": {
			{0, 0.10}, {1, 0.10}, {2, 0.05}, {3, 0.05}, {4, 0.05},
			{5, 0.05}, {6, 0.05}, {7, 0.05}, {8, 0.05}, {9, 0.05},
			{10, 0.10}, {11, 0.10}, {12, 0.10}, {13, 0.10}, {14, 0.10},
		},
		"flat": Flat,
	},
}

// Effect presets applied by the single-word filter commands
var (
	Nightcore = Timescale{Speed: 1.2, Pitch: 1.2, Rate: 1.0}
	Slowed    = Timescale{Speed: 0.8, Pitch: 0.85, Rate: 1.0}
	Vaporwave = Timescale{Speed: 0.85, Pitch: 0.8, Rate: 1.0}

	// the client carries rotationHz as whole hertz
	EightD = Rotation{RotationHz: 1}

	DefaultKaraoke = Karaoke{Level: 1.0, MonoLevel: 1.0, FilterBand: 220.0, FilterWidth: 100.0}
	DefaultTremolo = Tremolo{Frequency: 4.0, Depth: 0.75}
	DefaultVibrato = Vibrato{Frequency: 4.0, Depth: 0.75}
)
