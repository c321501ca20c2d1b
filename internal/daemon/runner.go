package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/1broseidon/minwm/internal/hotkeys"
	"github.com/1broseidon/minwm/internal/platform"
	"github.com/1broseidon/minwm/internal/session"
)

// ErrNothingToManage is returned by Run when no manageable window showed up
// during startup.
var ErrNothingToManage = errors.New("no windows found")

// RunnerConfig holds configuration for the runner.
type RunnerConfig struct {
	StartupAttempts int
	StartupInterval time.Duration
	Logger          *slog.Logger
}

// Runner owns the window manager's main loop: grab keys, wait for the first
// windows, then feed display events to the session one at a time.
type Runner struct {
	attempts int
	interval time.Duration
	display  platform.Display
	sess     *session.Session
	keys     *hotkeys.Table
	logger   *slog.Logger
	capacity int

	state atomic.Pointer[session.Snapshot]
}

// NewRunner creates a runner for an already constructed session.
func NewRunner(cfg RunnerConfig, display platform.Display, sess *session.Session, keys *hotkeys.Table) *Runner {
	attempts := cfg.StartupAttempts
	if attempts <= 0 {
		attempts = 21
	}
	interval := cfg.StartupInterval
	if interval <= 0 {
		interval = 100 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := &Runner{
		attempts: attempts,
		interval: interval,
		display:  display,
		sess:     sess,
		keys:     keys,
		logger:   logger,
		capacity: sess.Registry().Capacity(),
	}
	r.publish()
	return r
}

// Snapshot returns the session state as of the last handled event. It is
// safe to call from any goroutine.
func (r *Runner) Snapshot() session.Snapshot {
	return *r.state.Load()
}

// Capacity returns the registry capacity, root slot included.
func (r *Runner) Capacity() int {
	return r.capacity
}

func (r *Runner) publish() {
	snap := r.sess.Snapshot()
	r.state.Store(&snap)
}

// Run blocks until the last managed window goes away, ctx is cancelled or
// the display connection fails. It returns session.ErrNoWindows for the
// first case and ErrNothingToManage when startup found nothing.
func (r *Runner) Run(ctx context.Context) error {
	if r.keys != nil {
		for _, key := range r.keys.Unresolved() {
			r.logger.Warn("no keycode for binding, key disabled", "key", key)
		}
		if err := r.keys.Grab(r.display); err != nil {
			r.logger.Warn("some key grabs failed", "error", err)
		}
	}

	if err := r.waitForWindows(ctx); err != nil {
		return err
	}

	r.logger.Info("window manager started", "managed", r.sess.Managed())
	for {
		ev, err := r.display.NextEvent(ctx)
		if err != nil {
			if ctx.Err() != nil {
				r.logger.Info("window manager stopped")
				return ctx.Err()
			}
			return fmt.Errorf("failed to read display event: %w", err)
		}
		if err := r.dispatch(ev); err != nil {
			if errors.Is(err, session.ErrNoWindows) {
				r.logger.Info("last window closed, exiting")
			}
			return err
		}
	}
}

// waitForWindows scans for existing windows, retrying at the configured
// interval, until at least one is managed.
func (r *Runner) waitForWindows(ctx context.Context) error {
	for attempt := 1; ; attempt++ {
		n, err := r.sess.Scan()
		r.publish()
		if err != nil {
			r.logger.Warn("startup scan failed", "attempt", attempt, "error", err)
		}
		if n > 0 {
			return nil
		}
		if attempt >= r.attempts {
			return ErrNothingToManage
		}

		timer := time.NewTimer(r.interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}

// dispatch hands one event to the session.
func (r *Runner) dispatch(ev platform.Event) (err error) {
	// Recover from panics to keep the session alive
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("event handler panic recovered", "event", fmt.Sprintf("%T", ev), "error", p)
			err = nil
		}
	}()
	defer r.publish()
	return r.sess.HandleEvent(ev)
}
