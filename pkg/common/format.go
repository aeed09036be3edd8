package common

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/samber/lo"
)

// ProgressBarWidth is the number of segments in a rendered progress bar
const ProgressBarWidth = 20

// FormatDuration formats milliseconds as h:mm:ss or m:ss. A zero or negative
// length is a live stream.
func FormatDuration(ms int64) string {
	if ms <= 0 {
		return "Live"
	}

	totalSeconds := ms / 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60

	if hours > 0 {
		return fmt.Sprintf("%d:%02d:%02d", hours, minutes, seconds)
	}
	return fmt.Sprintf("%d:%02d", minutes, seconds)
}

// ProgressBar renders a fixed-width textual bar for position/duration
func ProgressBar(position, duration int64) string {
	if duration <= 0 {
		return strings.Repeat("▬", ProgressBarWidth) + " 🔴 LIVE"
	}

	ratio := float64(position) / float64(duration)
	marker := lo.Clamp(int(math.Round(ratio*ProgressBarWidth)), 0, ProgressBarWidth-1)

	var bar strings.Builder
	for i := 0; i < ProgressBarWidth; i++ {
		if i == marker {
			bar.WriteString("🔘")
		} else {
			bar.WriteString("▬")
		}
	}
	return bar.String()
}

// FormatUptime formats the uptime duration into a human-readable string
func FormatUptime(d time.Duration) string {
	days := int(d.Hours()) / 24
	hours := int(d.Hours()) % 24
	minutes := int(d.Minutes()) % 60
	seconds := int(d.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	} else {
		return fmt.Sprintf("%ds", seconds)
	}
}
