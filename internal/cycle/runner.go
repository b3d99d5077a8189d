package cycle

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"k8s.io/utils/clock"

	"github.com/syllabyte/brainprogress/internal/logging"
)

const (
	// DefaultMaxPanics is the number of consecutive callback panics after
	// which a Runner stops itself.
	DefaultMaxPanics = 3
)

var (
	// ErrRunning is returned by Start on a runner that is already running.
	ErrRunning = errors.New("runner already started")

	// ErrStopped is returned by Start when the driver has been stopped.
	ErrStopped = errors.New("driver stopped")
)

// Runner ticks a Driver from a clock ticker on its own goroutine and hands
// every snapshot to onUpdate.
type Runner struct {
	driver   *Driver
	clock    clock.WithTicker
	interval time.Duration
	onUpdate func(Snapshot)
	logger   *logging.ObservableLogger
	max      int

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}

	// delivering is set while onUpdate runs on the loop goroutine.
	delivering atomic.Bool
}

// NewRunner creates a runner. It does not start ticking until Start.
func NewRunner(driver *Driver, clk clock.WithTicker, interval time.Duration, onUpdate func(Snapshot), opts ...Option) *Runner {
	s := newSettings(opts)
	if clk == nil {
		clk = clock.RealClock{}
	}
	if onUpdate == nil {
		onUpdate = func(Snapshot) {}
	}
	return &Runner{
		driver:   driver,
		clock:    clk,
		interval: interval,
		onUpdate: onUpdate,
		logger:   s.logger,
		max:      s.maxPanics,
	}
}

// Start launches the tick loop. It stops when ctx is cancelled, when Stop is
// called, or after too many consecutive callback panics.
func (r *Runner) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.cancel != nil {
		return ErrRunning
	}
	if r.driver.Stopped() {
		return ErrStopped
	}
	if r.interval <= 0 {
		return fmt.Errorf("invalid tick interval %s", r.interval)
	}

	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})

	ticker := r.clock.NewTicker(r.interval)
	go r.loop(ctx, ticker, r.done)

	r.logger.Debug("cycle runner started", "interval", r.interval)
	return nil
}

// Stop cancels the loop, waits for it to exit and stops the driver. No
// snapshot is delivered after Stop returns. It is safe to call repeatedly,
// including from onUpdate: while a snapshot is being delivered Stop does not
// wait, and the loop exits as soon as the callback returns.
func (r *Runner) Stop() {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.mu.Unlock()

	r.driver.Stop()
	if cancel == nil {
		return
	}
	cancel()
	if r.delivering.Load() {
		return
	}
	<-done
}

// Done is closed when the loop has exited. It is nil before Start.
func (r *Runner) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

func (r *Runner) loop(ctx context.Context, ticker clock.Ticker, done chan struct{}) {
	defer close(done)
	defer ticker.Stop()

	panics := 0
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C():
			if ctx.Err() != nil {
				return
			}
			snap := r.driver.Tick(now)
			if r.driver.Stopped() {
				return
			}
			if err := r.deliver(snap); err != nil {
				panics++
				r.logger.Error("cycle update panicked", "component", "cycle", "err", err, "consecutive", panics)
				if panics >= r.max {
					r.logger.Warn("stopping cycle runner after repeated panics", "count", panics)
					r.driver.Stop()
					return
				}
				continue
			}
			panics = 0
		}
	}
}

func (r *Runner) deliver(snap Snapshot) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in update callback: %v", rec)
		}
	}()
	r.delivering.Store(true)
	defer r.delivering.Store(false)
	r.onUpdate(snap)
	return nil
}
