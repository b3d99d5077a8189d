// Copyright 2025 The Brainprogress Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cycle implements the autoplay oscillator: a fill, dwell, drain,
// dwell loop computed from elapsed time by a single Tick function.
package cycle

import (
	"sync"
	"time"

	"github.com/syllabyte/brainprogress/internal/logging"
)

// Snapshot is the observable state after a tick.
type Snapshot struct {
	Progress float64   `json:"progress"`
	State    State     `json:"state"`
	Paused   bool      `json:"paused"`
	Reversed bool      `json:"reversed"`
	Held     bool      `json:"held"`
	At       time.Time `json:"at"`
}

// Option configures a Driver or a Runner.
type Option func(*settings)

type settings struct {
	logger    *logging.ObservableLogger
	maxPanics int
}

// WithLogger sets the logger receiving transitions and recovered panics.
func WithLogger(l *logging.ObservableLogger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMaxPanics sets how many consecutive callback panics stop a Runner.
func WithMaxPanics(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.maxPanics = n
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		logger:    logging.NewDiscardLogger(),
		maxPanics: DefaultMaxPanics,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Driver is the cycle state machine. It is safe for concurrent use.
type Driver struct {
	mu sync.Mutex

	cfg      Config
	state    State
	progress float64
	reversed bool

	entered time.Time
	last    time.Time
	held    bool
	heldAt  time.Time
	stopped bool

	snap   Snapshot
	logger *logging.ObservableLogger
}

// NewDriver creates a driver at progress 0, filling, as of now.
func NewDriver(cfg Config, now time.Time, opts ...Option) *Driver {
	s := newSettings(opts)
	d := &Driver{
		cfg:     cfg.withDefaults(),
		state:   Filling,
		entered: now,
		last:    now,
		logger:  s.logger,
	}
	d.snap = d.snapshotLocked(now)
	return d
}

// Tick advances the machine to now and returns the resulting snapshot.
// After Stop it returns the last snapshot unchanged.
func (d *Driver) Tick(now time.Time) Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return d.snap
	}
	if d.held {
		d.snap.At = now
		return d.snap
	}

	dt := max(now.Sub(d.last), 0)
	d.last = now
	step := dt.Seconds() * d.cfg.UnitsPerSecond()

	switch d.state {
	case Filling:
		d.progress = min(d.progress+step, 100)
		if d.progress >= PeakEpsilon {
			d.progress = 100
			d.dwellLocked(PausedAtPeak, now)
		}
	case Draining:
		d.progress = max(d.progress-step, 0)
		if d.progress <= TroughEpsilon {
			d.progress = 0
			d.dwellLocked(PausedAtTrough, now)
		}
	case PausedAtPeak:
		if now.Sub(d.entered) >= d.cfg.Peak() {
			d.moveLocked(Draining, now)
		}
	case PausedAtTrough:
		if now.Sub(d.entered) >= d.cfg.Trough() {
			d.moveLocked(Filling, now)
		}
	}

	d.snap = d.snapshotLocked(now)
	return d.snap
}

// Pause holds the driver. Progress and dwell timers stand still until Resume.
func (d *Driver) Pause(now time.Time) Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || d.held {
		return d.snap
	}
	d.held = true
	d.heldAt = now
	d.snap = d.snapshotLocked(now)
	return d.snap
}

// Resume releases a held driver.
func (d *Driver) Resume(now time.Time) Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped || !d.held {
		return d.snap
	}
	d.entered = d.entered.Add(max(now.Sub(d.heldAt), 0))
	d.last = now
	d.held = false
	d.snap = d.snapshotLocked(now)
	return d.snap
}

// Reconfigure replaces the timing in place. The current phase and progress
// are kept; a shortened dwell ends on the next tick.
func (d *Driver) Reconfigure(cfg Config, now time.Time) Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return d.snap
	}
	d.cfg = cfg.withDefaults()
	d.logger.Debug("cycle reconfigured", "rate", d.cfg.Rate, "speed", d.cfg.Speed,
		"pauseAtPeak", d.cfg.Peak(), "pauseAtTrough", d.cfg.Trough(), "flip", d.cfg.Flip)
	d.snap = d.snapshotLocked(now)
	return d.snap
}

// Stop freezes the driver permanently.
func (d *Driver) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
}

// Stopped reports whether Stop was called.
func (d *Driver) Stopped() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopped
}

// Snapshot returns the state of the last tick.
func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snap
}

// Config returns the active configuration with defaults applied.
func (d *Driver) Config() Config {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cfg.withDefaults()
}

// dwellLocked enters a dwell state, or moves straight on when its pause is 0.
func (d *Driver) dwellLocked(dwell State, now time.Time) {
	dur, next := d.cfg.Peak(), Draining
	if dwell == PausedAtTrough {
		dur, next = d.cfg.Trough(), Filling
	}
	if dur == 0 {
		d.moveLocked(next, now)
		return
	}
	d.transitionLocked(dwell, now)
	if d.cfg.Flip == FlipAtPauseStart {
		d.reversed = dwell == PausedAtPeak
	}
}

// moveLocked resumes motion. The flag is set before the next delta is computed.
func (d *Driver) moveLocked(motion State, now time.Time) {
	d.transitionLocked(motion, now)
	d.reversed = motion == Draining
}

func (d *Driver) transitionLocked(to State, now time.Time) {
	from := d.state
	d.state = to
	d.entered = now
	d.logger.Count(logging.MetricCycleTransitions, map[string]string{"to": to.String()})
	d.logger.Debug("cycle transition", "state", to, "from", from, "progress", d.progress)
}

func (d *Driver) snapshotLocked(now time.Time) Snapshot {
	return Snapshot{
		Progress: d.progress,
		State:    d.state,
		Paused:   d.state.Paused(),
		Reversed: d.reversed,
		Held:     d.held,
		At:       now,
	}
}
