package commands

import (
	"strconv"
	"strings"
	"time"

	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/pkg/errors"
)

var (
	ErrInvalidVolume   = errors.New("volume must be a whole number between 0 and 100")
	ErrInvalidSeek     = errors.New("invalid seek position")
	ErrInvalidLoopMode = errors.New("invalid loop mode")
	ErrInvalidIndex    = errors.New("invalid queue position")
)

// ParseVolume accepts an integer in [0,100]
func ParseVolume(arg string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidVolume, "%q", arg)
	}
	if v < 0 || v > 100 {
		return 0, errors.Wrapf(ErrInvalidVolume, "%d", v)
	}
	return v, nil
}

// ParseSeek accepts seconds, m:ss or h:mm:ss and rejects positions that are
// negative or past length
func ParseSeek(arg string, length time.Duration) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(arg), ":")
	if len(parts) == 0 || len(parts) > 3 {
		return 0, errors.Wrapf(ErrInvalidSeek, "%q", arg)
	}

	// every partial sum stays at or below limit, so nothing can overflow
	limit := int64(length / time.Second)
	pastEnd := errors.Wrapf(ErrInvalidSeek, "%q is past the end of the track (%s)", arg, common.FormatDuration(length.Milliseconds()))

	var seconds int64
	for _, part := range parts {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			if errors.Is(err, strconv.ErrRange) && !strings.HasPrefix(part, "-") {
				return 0, pastEnd
			}
			return 0, errors.Wrapf(ErrInvalidSeek, "%q", arg)
		}
		if n < 0 {
			return 0, errors.Wrapf(ErrInvalidSeek, "%q is negative", arg)
		}
		if n > limit || seconds > limit {
			return 0, pastEnd
		}
		seconds = seconds*60 + n
	}

	position := time.Duration(seconds) * time.Second
	if position > length {
		return 0, pastEnd
	}
	return position, nil
}

// ParseRemoveIndex turns a 1-based queue position into a 0-based index
// within a queue of size tracks
func ParseRemoveIndex(arg string, size int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidIndex, "%q", arg)
	}
	if n < 1 || n > size {
		return 0, errors.Wrapf(ErrInvalidIndex, "%d not in 1-%d", n, size)
	}
	return n - 1, nil
}

// ParseLoop maps a loop mode synonym onto a mode
func ParseLoop(arg string) (common.LoopMode, error) {
	mode, ok := common.ParseLoopMode(arg)
	if !ok {
		return common.LoopOff, errors.Wrapf(ErrInvalidLoopMode, "%q", arg)
	}
	return mode, nil
}

// ParsePage returns a 1-based page number clamped to [1,pages]. Anything
// unparsable is page 1.
func ParsePage(arg string, pages int) int {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 1 {
		return 1
	}
	if pages > 0 && n > pages {
		return pages
	}
	return n
}
