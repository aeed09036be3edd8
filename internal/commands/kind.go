package commands

import "strings"

// Kind identifies a chat command independently of the alias used
type Kind int

const (
	KindUnknown Kind = iota
	KindPlay
	KindSkip
	KindStop
	KindPause
	KindResume
	KindQueue
	KindNowPlaying
	KindVolume
	KindShuffle
	KindLoop
	KindRemove
	KindClear
	KindSeek
	KindBassBoost
	KindPreset
	KindNightcore
	KindSlowed
	KindEightD
	KindVaporwave
	KindKaraoke
	KindTremolo
	KindVibrato
	KindClearFilter
	KindFilters
	KindHelp
	KindPing
	KindAbout
)

var kindNames = map[Kind]string{
	KindUnknown:     "unknown",
	KindPlay:        "play",
	KindSkip:        "skip",
	KindStop:        "stop",
	KindPause:       "pause",
	KindResume:      "resume",
	KindQueue:       "queue",
	KindNowPlaying:  "nowplaying",
	KindVolume:      "volume",
	KindShuffle:     "shuffle",
	KindLoop:        "loop",
	KindRemove:      "remove",
	KindClear:       "clear",
	KindSeek:        "seek",
	KindBassBoost:   "bassboost",
	KindPreset:      "preset",
	KindNightcore:   "nightcore",
	KindSlowed:      "slowed",
	KindEightD:      "8d",
	KindVaporwave:   "vaporwave",
	KindKaraoke:     "karaoke",
	KindTremolo:     "tremolo",
	KindVibrato:     "vibrato",
	KindClearFilter: "clearfilter",
	KindFilters:     "filters",
	KindHelp:        "help",
	KindPing:        "ping",
	KindAbout:       "about",
}

// aliases maps every accepted token onto its command
var aliases = map[string]Kind{
	"play": KindPlay, "p": KindPlay,
	"skip": KindSkip, "s": KindSkip,
	"stop": KindStop, "dc": KindStop, "disconnect": KindStop, "leave": KindStop,
	"pause":  KindPause,
	"resume": KindResume, "unpause": KindResume,
	"queue": KindQueue, "q": KindQueue,
	"nowplaying": KindNowPlaying, "np": KindNowPlaying,
	"volume": KindVolume, "vol": KindVolume, "v": KindVolume,
	"shuffle": KindShuffle,
	"loop":    KindLoop, "repeat": KindLoop,
	"remove": KindRemove, "rm": KindRemove,
	"clear":     KindClear,
	"seek":      KindSeek,
	"bassboost": KindBassBoost, "bass": KindBassBoost, "bb": KindBassBoost,
	"preset": KindPreset, "eq": KindPreset,
	"nightcore": KindNightcore, "nc": KindNightcore,
	"slowed": KindSlowed, "slow": KindSlowed,
	"8d":        KindEightD,
	"vaporwave": KindVaporwave, "vw": KindVaporwave,
	"karaoke":     KindKaraoke,
	"tremolo":     KindTremolo,
	"vibrato":     KindVibrato,
	"clearfilter": KindClearFilter, "cf": KindClearFilter, "reset": KindClearFilter,
	"filters": KindFilters,
	"help":    KindHelp, "h": KindHelp,
	"ping":  KindPing,
	"about": KindAbout, "info": KindAbout,
}

// Lookup maps a command token, case-insensitively, onto its Kind.
// Unrecognized tokens map to KindUnknown.
func Lookup(token string) Kind {
	if k, ok := aliases[strings.ToLower(token)]; ok {
		return k
	}
	return KindUnknown
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return kindNames[KindUnknown]
}
