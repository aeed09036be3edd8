package commands

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/metrics"
)

// AboutCommand displays bot information including version, uptime, memory usage, and Go version
func AboutCommand(_ context.Context, env *Env, inv *Invocation) error {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	embed := newEmbed("Bot Information", "A Lavalink music bot", colorPlaying)
	embed.Fields = []*discordgo.MessageEmbedField{
		{
			Name:   "Bot Name & Version",
			Value:  "Serenade " + env.Version,
			Inline: true,
		},
		{
			Name:   "Uptime",
			Value:  common.FormatUptime(time.Since(env.StartedAt)),
			Inline: true,
		},
		{
			Name:   "Memory Usage",
			Value:  fmt.Sprintf("%.2f MB", float64(memStats.Alloc)/1024/1024),
			Inline: true,
		},
		{
			Name:   "Go Version",
			Value:  runtime.Version(),
			Inline: true,
		},
		{
			Name:   "Platform",
			Value:  fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
			Inline: true,
		},
		{
			Name:   "Goroutines",
			Value:  fmt.Sprintf("%d", runtime.NumGoroutine()),
			Inline: true,
		},
		{
			Name:   "Servers",
			Value:  fmt.Sprintf("%d", env.Voice.GuildCount()),
			Inline: true,
		},
		{
			Name:   "Active Players",
			Value:  fmt.Sprintf("%d", env.Playback.Count()),
			Inline: true,
		},
		{
			Name:   "Commands Handled",
			Value:  fmt.Sprintf("%.0f", env.Metrics.Total(metrics.CommandsTotal)),
			Inline: true,
		},
	}
	return env.SendEmbed(inv.ChannelID, embed)
}
