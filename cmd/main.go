package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/latoulicious/Serenade/internal/commands"
	"github.com/latoulicious/Serenade/internal/config"
	"github.com/latoulicious/Serenade/internal/handlers"
	"github.com/latoulicious/Serenade/internal/health"
	"github.com/latoulicious/Serenade/internal/presence"
	"github.com/latoulicious/Serenade/pkg/cron"
	"github.com/latoulicious/Serenade/pkg/logging"
	"github.com/latoulicious/Serenade/pkg/metrics"
	"github.com/latoulicious/Serenade/pkg/playback"
	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	startedAt := time.Now()

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	logging.NewStdLogAdapter(logging.Component(logger, "stdlog")).SetAsStdLogger()
	logging.BridgeDiscordgo(logging.Component(logger, "discordgo"))
	log := logging.Component(logger, "main")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	defer stop()

	// Create a new Discord session using the provided token
	dg, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		log.WithError(err).Fatal("Failed to create Discord session")
	}
	dg.LogLevel = logging.DiscordgoLevel(logger.GetLevel())
	dg.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildVoiceStates |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsMessageContent

	// Open a websocket connection to Discord and begin listening.
	if err := dg.Open(); err != nil {
		log.WithError(err).Fatal("Failed to open Discord session")
	}
	log.WithField("user", dg.State.User.String()).Info("🤖 Bot is online")

	nodes := lo.Map(cfg.Nodes, func(n config.Node, _ int) playback.NodeConfig {
		return playback.NodeConfig{Name: n.Name, Address: n.Address, Password: n.Password, Secure: n.Secure}
	})
	lavalink := playback.NewLavalink(dg, dg.State.User.ID, nodes, logging.Component(logger, "lavalink"))
	manager := playback.NewManager(lavalink, playback.Options{
		DefaultVolume:  cfg.DefaultVolume,
		SearchRate:     cfg.SearchRate,
		SearchCacheTTL: cfg.SearchCacheTTL,
	}, logging.Component(logger, "playback"))

	if err := manager.Start(ctx); err != nil {
		log.WithError(err).Error("No Lavalink node reachable, playback commands will fail")
	}

	voice := handlers.NewVoiceHandler(dg.State.User.ID, lavalink, manager, logging.Component(logger, "voice"))
	dg.AddHandler(voice.VoiceStateUpdate)
	dg.AddHandler(voice.VoiceServerUpdate)

	gateway := handlers.NewGateway(dg, manager)
	presenceManager := presence.NewPresenceManager(dg, gateway, cfg.Prefix, logging.Component(logger, "presence"))
	presenceJob, err := cron.NewJob("presence", cfg.PresenceSchedule, presenceManager.Refresh, logging.Component(logger, "cron"))
	if err != nil {
		log.WithError(err).Fatal("Failed to schedule presence updates")
	}
	presenceJob.Start(true)

	collector := metrics.NewCollector(logging.Component(logger, "metrics"))
	env := &commands.Env{
		Messenger: dg,
		Voice:     gateway,
		Playback:  manager,
		Metrics:   collector,
		Log:       logging.Component(logger, "commands"),
		Prefix:    cfg.Prefix,
		Version:   version,
		StartedAt: startedAt,
	}
	dispatcher := handlers.NewDispatcher(env, presenceManager, cfg.CommandTimeout)
	dg.AddHandler(dispatcher.MessageHandler)

	server := health.NewServer(strconv.Itoa(cfg.Port), gateway, collector, startedAt, logging.Component(logger, "health"))

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := server.Run(ctx); err != nil {
			log.WithError(err).Error("Keep-alive server stopped")
		}
	}()
	go func() {
		defer wg.Done()
		if err := dispatcher.Run(ctx); err != nil {
			log.WithError(err).Error("Dispatcher stopped")
		}
	}()

	log.WithField("prefix", cfg.Prefix).Info("Bot is running. Press CTRL-C to exit.")
	<-ctx.Done()
	log.Info("Shutting down")

	wg.Wait()
	presenceJob.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	manager.Close(shutdownCtx)

	// Cleanly close down the Discord session.
	if err := dg.Close(); err != nil {
		log.WithError(err).Warn("Failed to close Discord session")
	}
}
