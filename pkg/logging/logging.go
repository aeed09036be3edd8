// Package logging configures the process-wide logrus logger and bridges the
// standard library and discordgo loggers into it.
package logging

import (
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"
)

// Config contains configuration for logging
type Config struct {
	Level  string
	Format string
	Output io.Writer
}

// New creates a logger from the given configuration. Unknown levels fall back
// to info, unknown formats to text.
func New(cfg Config) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	switch strings.ToLower(cfg.Format) {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	default:
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	if cfg.Output != nil {
		logger.SetOutput(cfg.Output)
	} else {
		logger.SetOutput(os.Stdout)
	}

	return logger
}

// Null returns a logger that discards all output (useful for testing)
func Null() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

// Component returns an entry tagged with the component name
func Component(logger *logrus.Logger, name string) *logrus.Entry {
	return logger.WithField("component", name)
}

// StdLogAdapter captures standard log output
type StdLogAdapter struct {
	entry *logrus.Entry
}

// NewStdLogAdapter creates a new adapter for the standard log package
func NewStdLogAdapter(entry *logrus.Entry) *StdLogAdapter {
	return &StdLogAdapter{entry: entry}
}

// Write implements io.Writer to capture standard log output
func (a *StdLogAdapter) Write(p []byte) (n int, err error) {
	msg := strings.TrimSpace(string(p))
	if msg != "" {
		a.entry.Info(msg)
	}
	return len(p), nil
}

// SetAsStdLogger sets this adapter as the output for the standard log package
func (a *StdLogAdapter) SetAsStdLogger() {
	log.SetOutput(a)
	log.SetFlags(0)
}

// BridgeDiscordgo routes discordgo's package logger into logrus
func BridgeDiscordgo(entry *logrus.Entry) {
	discordgo.Logger = func(msgL, caller int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			entry.Error(msg)
		case discordgo.LogWarning:
			entry.Warn(msg)
		case discordgo.LogInformational:
			entry.Info(msg)
		default:
			entry.Debug(msg)
		}
	}
}

// DiscordgoLevel maps a logrus level onto discordgo's LogLevel scale
func DiscordgoLevel(level logrus.Level) int {
	switch {
	case level >= logrus.DebugLevel:
		return discordgo.LogDebug
	case level >= logrus.InfoLevel:
		return discordgo.LogInformational
	case level >= logrus.WarnLevel:
		return discordgo.LogWarning
	default:
		return discordgo.LogError
	}
}
