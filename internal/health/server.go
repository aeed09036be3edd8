// Package health serves the liveness endpoints used by uptime monitors
package health

import (
	"context"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/latoulicious/Serenade/pkg/common"
	"github.com/latoulicious/Serenade/pkg/metrics"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// Stats supplies the numbers reported by /status
type Stats interface {
	GuildCount() int
}

// NewRouter builds the liveness routes. collector may be nil.
func NewRouter(stats Stats, collector *metrics.Collector, startedAt time.Time) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Bot is running!")
	})
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "Pong!")
	})
	r.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "online",
			"uptime":  common.FormatUptime(time.Since(startedAt)),
			"servers": stats.GuildCount(),
		})
	})
	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, collector.Snapshot())
	})
	return r
}

// Server is the liveness HTTP server
type Server struct {
	srv *http.Server
	log *logrus.Entry
}

// NewServer builds the keep-alive server. gin runs in release mode so its
// debug route dump stays out of the bot's logs.
func NewServer(port string, stats Stats, collector *metrics.Collector, startedAt time.Time, log *logrus.Entry) *Server {
	gin.SetMode(gin.ReleaseMode)
	return &Server{
		srv: &http.Server{
			Addr:              net.JoinHostPort("", port),
			Handler:           NewRouter(stats, collector, startedAt),
			ReadHeaderTimeout: 10 * time.Second,
		},
		log: log,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.WithField("addr", s.srv.Addr).Info("🌐 Keep-alive server running")
		errCh <- s.srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return errors.Wrap(err, "keep-alive server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "failed to shut down keep-alive server")
	}
	return nil
}
