package handlers

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/latoulicious/Serenade/internal/commands"
	"github.com/latoulicious/Serenade/pkg/metrics"
	"github.com/sirupsen/logrus"
)

const inboundBuffer = 64

// Presence is what the dispatcher needs from the presence manager
type Presence interface {
	UpdateMusicPresence(title string) error
	Refresh() error
}

// Dispatcher is the single loop that runs chat commands and playback events
// one at a time
type Dispatcher struct {
	env      *commands.Env
	presence Presence
	timeout  time.Duration
	log      *logrus.Entry

	inbound chan *commands.Invocation
	stopped chan struct{}
}

// NewDispatcher creates a dispatcher. timeout bounds each command.
func NewDispatcher(env *commands.Env, presence Presence, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		env:      env,
		presence: presence,
		timeout:  timeout,
		log:      env.Log,
		inbound:  make(chan *commands.Invocation, inboundBuffer),
		stopped:  make(chan struct{}),
	}
}

// Submit queues an invocation. It is dropped once the loop has stopped.
func (d *Dispatcher) Submit(inv *commands.Invocation) {
	select {
	case d.inbound <- inv:
	case <-d.stopped:
	}
}

// Run processes invocations and playback events until ctx is cancelled.
// It must be called once.
func (d *Dispatcher) Run(ctx context.Context) error {
	defer close(d.stopped)

	events := d.env.Playback.Events()
	d.log.Info("Dispatcher started")
	for {
		select {
		case <-ctx.Done():
			d.log.Info("Dispatcher stopped")
			return nil
		case inv := <-d.inbound:
			d.dispatch(ctx, inv)
		case e := <-events:
			d.handleEvent(ctx, e)
		}
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, inv *commands.Invocation) {
	log := d.log.WithFields(inv.Fields())
	defer func() {
		if r := recover(); r != nil {
			d.env.Metrics.RecordCounter(metrics.CommandsPanicked, 1, map[string]string{"command": inv.Kind.String()})
			log.WithField("panic", r).WithField("stack", string(debug.Stack())).Error("Command panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	tags := map[string]string{"command": inv.Kind.String()}
	d.env.Metrics.RecordCounter(metrics.CommandsTotal, 1, tags)

	start := time.Now()
	log.WithField("args", inv.Args).Debug("Running command")
	err := commands.Run(ctx, d.env, inv)
	took := time.Since(start)
	d.env.Metrics.RecordTiming(metrics.CommandDuration, took, tags)
	if err != nil {
		d.env.Metrics.RecordCounter(metrics.CommandsFailed, 1, tags)
		log.WithError(err).Error("Command failed")
		return
	}
	log.WithField("took", took.String()).Debug("Command finished")
}
