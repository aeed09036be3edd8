package commands

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Serenade/pkg/common"
)

// trackLink renders a track title, linked when it has a URI
func trackLink(t common.Track) string {
	if t.URI == "" {
		return fmt.Sprintf("**%s**", t.Title)
	}
	return fmt.Sprintf("[%s](%s)", t.Title, t.URI)
}

func trackLength(t common.Track) string {
	return common.FormatDuration(t.LengthMs())
}

// clock formats a duration where zero means the start rather than a live stream
func clock(d time.Duration) string {
	if d <= 0 {
		return "0:00"
	}
	return common.FormatDuration(d.Milliseconds())
}

func newEmbed(title, description string, color int) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       color,
		Timestamp:   time.Now().Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: footerText,
		},
	}
}

func withThumbnail(embed *discordgo.MessageEmbed, t common.Track) *discordgo.MessageEmbed {
	if url := t.Thumbnail(); url != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: url}
	}
	return embed
}

// TrackStartedEmbed is the notice posted when a track starts playing
func TrackStartedEmbed(t common.Track) *discordgo.MessageEmbed {
	embed := newEmbed("🎵 Now playing", trackLink(t), colorPlaying)
	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name:   "Artist",
			Value:  orDash(t.Author),
			Inline: true,
		},
		{
			Name:   "Duration",
			Value:  trackLength(t),
			Inline: true,
		},
		{
			Name:   "Requested by",
			Value:  orDash(t.Requester.Mention()),
			Inline: true,
		},
	}
	return withThumbnail(embed, t)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
