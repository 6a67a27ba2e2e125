package app

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrStopped is returned by Runtime calls made after Run has returned.
var ErrStopped = errors.New("runtime stopped")

type request struct {
	fn   func(*App)
	done chan struct{}
}

// Runtime owns an App on a single goroutine. Commands, frame ticks and
// state reads are serialized through it, so a command's view rebuild always
// finishes before anything else observes the App.
type Runtime struct {
	app      *App
	clock    clockwork.Clock
	interval time.Duration
	logger   *slog.Logger

	requests chan request
	stopped  chan struct{}
}

// NewRuntime creates a runtime that ticks the App every interval.
func NewRuntime(app *App, clock clockwork.Clock, interval time.Duration, logger *slog.Logger) *Runtime {
	return &Runtime{
		app:      app,
		clock:    clock,
		interval: interval,
		logger:   logger,
		requests: make(chan request),
		stopped:  make(chan struct{}),
	}
}

// Run drives the App until ctx is cancelled. It stops the App on return.
func (r *Runtime) Run(ctx context.Context) error {
	defer close(r.stopped)

	t := r.clock.NewTicker(r.interval)
	defer t.Stop()

	last := r.clock.Now()
	r.logger.Info("runtime started", "frame_interval", r.interval)

	for {
		select {
		case <-ctx.Done():
			r.app.Stop()
			r.logger.Info("runtime stopped", "reason", ctx.Err())
			return nil
		case req := <-r.requests:
			req.fn(r.app)
			close(req.done)
		case now := <-t.Chan():
			dt := now.Sub(last)
			last = now
			r.app.Tick(dt)
		}
	}
}

// Do runs fn on the runtime goroutine and waits for it to finish. ctx only
// bounds the wait for the runtime to accept fn. Once accepted, Do returns
// after fn does, so fn may write to the caller's variables.
func (r *Runtime) Do(ctx context.Context, fn func(*App)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req := request{fn: fn, done: make(chan struct{})}
	select {
	case r.requests <- req:
	case <-r.stopped:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	<-req.done
	return nil
}

// Dispatch applies cmd on the runtime goroutine.
func (r *Runtime) Dispatch(ctx context.Context, cmd Command) error {
	var cmdErr error
	if err := r.Do(ctx, func(a *App) { cmdErr = a.Dispatch(cmd) }); err != nil {
		return err
	}
	return cmdErr
}

// Snapshot reads the App state on the runtime goroutine.
func (r *Runtime) Snapshot(ctx context.Context) (State, error) {
	var s State
	err := r.Do(ctx, func(a *App) { s = a.Snapshot() })
	return s, err
}
