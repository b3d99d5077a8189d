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

// Package indicator composes geometry, step mapping, the transition engine,
// the cycle driver and the render surface into one progress indicator.
//
// An indicator is either manual, taking progress from SetProgress, or
// autoplay, taking it from a cycle driver. The mode is fixed at
// construction. Indicators are not safe for concurrent use.
package indicator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"k8s.io/utils/clock"

	"github.com/syllabyte/brainprogress/internal/cycle"
	"github.com/syllabyte/brainprogress/internal/engine"
	"github.com/syllabyte/brainprogress/internal/geometry"
	"github.com/syllabyte/brainprogress/internal/logging"
	"github.com/syllabyte/brainprogress/internal/progress"
	"github.com/syllabyte/brainprogress/internal/render"
	"github.com/syllabyte/brainprogress/internal/store"
)

// Option configures an Indicator.
type Option func(*Indicator)

// WithGeometry replaces the built-in artwork.
func WithGeometry(p *geometry.Provider) Option {
	return func(i *Indicator) {
		if p != nil {
			i.provider = p
		}
	}
}

// WithClock sets the time source of the engine and the driver.
func WithClock(c clock.WithTicker) Option {
	return func(i *Indicator) {
		if c != nil {
			i.clock = c
		}
	}
}

// WithLogger sets the logger shared with the engine and the driver.
func WithLogger(l *logging.ObservableLogger) Option {
	return func(i *Indicator) {
		if l != nil {
			i.logger = l
		}
	}
}

// WithStore restores the last percentage saved under id when no explicit
// progress is given, and saves the percentage once transitions settle.
func WithStore(s store.Store, id string) Option {
	return func(i *Indicator) {
		i.store = s
		i.storeID = id
	}
}

// Indicator is a brain progress indicator.
type Indicator struct {
	props    Props
	mode     Mode
	provider *geometry.Provider
	table    progress.Table
	surface  *render.Surface
	engine   *engine.Engine
	driver   *cycle.Driver
	clock    clock.WithTicker
	logger   *logging.ObservableLogger

	store   store.Store
	storeID string
	saved   *float64

	progress float64
	applied  bool
	snap     cycle.Snapshot
}

// New creates an indicator from props.
func New(props Props, opts ...Option) (*Indicator, error) {
	i := &Indicator{
		provider: geometry.Default(),
		clock:    clock.RealClock{},
		logger:   logging.NewDiscardLogger(),
	}
	for _, opt := range opts {
		opt(i)
	}

	i.props = props.withDefaults(i.provider)
	if i.props.Autoplay {
		i.mode = Autoplay
	}

	table := i.props.Table
	if table == nil {
		var err error
		if table, err = progress.NewTable(i.provider.RevealTable()); err != nil {
			return nil, fmt.Errorf("failed to build reveal table: %w", err)
		}
	} else if err := table.Validate(); err != nil {
		return nil, fmt.Errorf("invalid reveal table: %w", err)
	}
	for _, id := range table.All() {
		if _, ok := i.provider.Lookup(id); !ok {
			i.logger.Debug("reveal table references unknown path", "path", id)
		}
	}
	i.table = table

	i.surface = render.NewSurface(i.provider)
	i.engine = engine.New(i.surface.Handles(),
		engine.WithClock(i.clock),
		engine.WithSpeed(i.props.AnimationSpeed),
		engine.WithInstantFill(i.props.InstantFill),
		engine.WithOnComplete(i.complete),
		engine.WithLogger(i.logger),
	)

	if i.mode == Autoplay {
		now := i.clock.Now()
		i.driver = cycle.NewDriver(i.props.Cycle, now, cycle.WithLogger(i.logger))
		if i.props.Paused {
			i.driver.Pause(now)
		}
		i.Observe(i.driver.Snapshot())
		return i, nil
	}

	p := progress.Normalize(i.props.Input())
	if i.props.Input().IsZero() {
		if restored, ok := i.restore(); ok {
			p = restored
		}
	}
	if i.props.Paused {
		i.engine.Pause()
	}
	i.set(p)
	return i, nil
}

// Mode returns the progress writer of the indicator.
func (i *Indicator) Mode() Mode { return i.mode }

// Props returns the effective props.
func (i *Indicator) Props() Props { return i.props }

// Driver returns the cycle driver, or nil for manual indicators.
func (i *Indicator) Driver() *cycle.Driver { return i.driver }

// Surface returns the render surface.
func (i *Indicator) Surface() *render.Surface { return i.surface }

// Table returns the reveal table in use.
func (i *Indicator) Table() progress.Table { return i.table }

// SetProgress feeds a new progress value to a manual indicator.
func (i *Indicator) SetProgress(in progress.Input) error {
	if i.mode == Autoplay {
		return ErrSelfDriven
	}
	i.props.Percent, i.props.Value, i.props.Max = in.Percent, in.Value, in.Max
	i.set(progress.Normalize(in))
	return nil
}

// Update applies new props. Autoplay cannot change and the table is kept.
func (i *Indicator) Update(props Props) error {
	if props.Autoplay != i.props.Autoplay {
		return ErrModeChange
	}
	props = props.withDefaults(i.provider)
	prev := i.props
	props.Table = prev.Table
	i.props = props

	i.engine.SetSpeed(props.AnimationSpeed)
	i.engine.SetInstantFill(props.InstantFill)

	if i.mode == Autoplay && !props.Cycle.Equal(prev.Cycle) {
		i.Observe(i.driver.Reconfigure(props.Cycle, i.clock.Now()))
	}

	switch {
	case props.Paused && !prev.Paused:
		i.Pause()
	case !props.Paused && prev.Paused:
		i.Resume()
	}

	if i.mode == Manual && !sameInput(props.Input(), prev.Input()) {
		i.set(progress.Normalize(props.Input()))
	}
	return nil
}

// Pause suspends animation. Calling it again has no effect.
func (i *Indicator) Pause() {
	i.props.Paused = true
	if i.mode == Autoplay {
		i.Observe(i.driver.Pause(i.clock.Now()))
		return
	}
	i.engine.Pause()
}

// Resume continues a paused indicator. Calling it again has no effect.
func (i *Indicator) Resume() {
	i.props.Paused = false
	if i.mode == Autoplay {
		i.Observe(i.driver.Resume(i.clock.Now()))
		return
	}
	i.engine.Resume()
}

// SetReverse selects the choreography of the next step transition.
func (i *Indicator) SetReverse(reverse bool) {
	i.props.Reverse = reverse
}

// Tick advances the indicator to the clock's current time.
func (i *Indicator) Tick() State {
	if i.mode == Autoplay {
		i.Observe(i.driver.Tick(i.clock.Now()))
		return i.State()
	}
	i.engine.Advance()
	if i.engine.Settled() {
		i.persist()
	}
	return i.State()
}

// Observe paints a driver snapshot. Runners delivering snapshots from
// another goroutine must hand them to the owner of the indicator first.
func (i *Indicator) Observe(snap cycle.Snapshot) {
	if i.mode != Autoplay {
		return
	}
	i.snap = snap
	i.progress = snap.Progress
	for id, r := range cycle.Reveal(snap.Progress, i.provider.Traversal()) {
		i.surface.Set(id, engine.Visual{Opacity: r, FillOpacity: r, DashOffset: 1 - r})
	}
}

// Settled reports whether no transition is in flight.
func (i *Indicator) Settled() bool {
	return i.mode == Autoplay || i.engine.Settled()
}

// Remaining returns the time left until the current transitions end.
func (i *Indicator) Remaining() time.Duration {
	if i.mode == Autoplay {
		return 0
	}
	return i.engine.Remaining()
}

// State returns the observable state.
func (i *Indicator) State() State {
	st := State{
		Percent:  progress.Round(i.progress),
		Progress: i.progress,
		Step:     i.step(),
		Mode:     i.mode,
	}
	for _, id := range i.provider.IDs() {
		v, _ := i.surface.Visual(id)
		st.Paths = append(st.Paths, newPathState(id, v))
	}
	if i.mode == Autoplay {
		st.Paused = i.snap.Paused || i.snap.Held
		st.Reversed = i.snap.Reversed
		st.Phase = i.snap.State.String()
	} else {
		st.Paused = i.props.Paused
		st.Reversed = i.props.Reverse
	}
	return st
}

// Frame returns the render frame of the current state.
func (i *Indicator) Frame() render.Frame {
	st := i.State()
	return render.Frame{
		Percent:   st.Percent,
		Step:      int(st.Step),
		Paused:    st.Paused,
		Reverse:   st.Reversed,
		ShowLabel: i.props.ShowLabel,
		AutoScale: i.props.AutoScale,
		Width:     i.props.Width,
		Height:    i.props.Height,
		Colors:    i.props.Colors,
	}
}

// Render writes the SVG document of the current state.
func (i *Indicator) Render(w io.Writer) error {
	return i.surface.Render(w, i.Frame())
}

// RenderCached writes the SVG document of the current state through c.
func (i *Indicator) RenderCached(w io.Writer, c *render.Cache) error {
	return render.RenderCached(w, i.surface, i.Frame(), c)
}

// Stop halts the driver and saves the final percentage.
func (i *Indicator) Stop() {
	if i.driver != nil {
		i.driver.Stop()
		return
	}
	i.persist()
}

func (i *Indicator) step() progress.Step {
	if i.mode == Autoplay {
		return progress.MapToStep(i.progress)
	}
	return i.engine.Step()
}

func (i *Indicator) set(p float64) {
	i.progress = p
	step := progress.MapToStep(p)
	if i.applied && step == i.engine.Step() {
		return
	}
	dir := engine.Forward
	if i.props.Reverse {
		dir = engine.Reverse
	}
	i.applied = true
	i.engine.Apply(i.table.PathsFor(step), step, dir)
}

func (i *Indicator) complete() {
	if i.props.OnComplete != nil {
		i.props.OnComplete()
	}
}

func (i *Indicator) restore() (float64, bool) {
	if i.store == nil || i.storeID == "" {
		return 0, false
	}
	e, err := i.store.Load(context.Background(), i.storeID)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			i.logger.Warn("failed to restore progress", "id", i.storeID, "err", err)
		}
		return 0, false
	}
	p := progress.Clamp(e.Percent)
	i.saved = &p
	i.logger.Debug("restored progress", "id", i.storeID, "percent", p)
	return p, true
}

func (i *Indicator) persist() {
	if i.store == nil || i.storeID == "" {
		return
	}
	if i.saved != nil && *i.saved == i.progress {
		return
	}
	if err := i.store.Save(context.Background(), i.storeID, i.progress); err != nil {
		i.logger.Warn("failed to save progress", "id", i.storeID, "err", err)
		return
	}
	p := i.progress
	i.saved = &p
}
