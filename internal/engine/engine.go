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

// Package engine reconciles visible path sets and interpolates the per-path
// show and hide tweens between them.
//
// An Engine is driven by its owner: Apply hands it a new target, Advance
// moves the active batch forward to the clock's current time. It is not safe
// for concurrent use.
package engine

import (
	"context"
	"fmt"
	"slices"
	"time"

	"k8s.io/utils/clock"

	"github.com/syllabyte/brainprogress/internal/geometry"
	"github.com/syllabyte/brainprogress/internal/logging"
	"github.com/syllabyte/brainprogress/internal/progress"
)

// Option configures an Engine.
type Option func(*Engine)

// WithClock sets the time source used by Advance.
func WithClock(c clock.PassiveClock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// WithSpeed sets the duration multiplier. Values <= 0 are ignored.
func WithSpeed(speed float64) Option {
	return func(e *Engine) { e.SetSpeed(speed) }
}

// WithInstantFill makes every Apply snap without animation.
func WithInstantFill(instant bool) Option {
	return func(e *Engine) { e.instant = instant }
}

// WithOnComplete registers the callback fired on arrival at step 100.
func WithOnComplete(fn func()) Option {
	return func(e *Engine) { e.onComplete = fn }
}

// WithSettleDelay overrides the pause between reverse exits and entries.
func WithSettleDelay(d time.Duration) Option {
	return func(e *Engine) { e.settle = &d }
}

// WithLogger sets the logger receiving debug output and metrics.
func WithLogger(l *logging.ObservableLogger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

type batch struct {
	tweens  []Tween
	elapsed time.Duration
	last    time.Time
}

// Engine owns the visuals of a fixed set of path handles.
type Engine struct {
	handles map[geometry.PathID]Handle
	current map[geometry.PathID]Visual
	ids     []geometry.PathID

	visible progress.PathSet
	step    progress.Step
	batch   batch

	clock      clock.PassiveClock
	speed      float64
	settle     *time.Duration
	instant    bool
	onComplete func()
	completed  bool
	paused     bool

	logger *logging.ObservableLogger
}

// New creates an engine over handles. Every handle starts hidden.
func New(handles map[geometry.PathID]Handle, opts ...Option) *Engine {
	e := &Engine{
		handles: make(map[geometry.PathID]Handle, len(handles)),
		current: make(map[geometry.PathID]Visual, len(handles)),
		visible: progress.PathSet{},
		clock:   clock.RealClock{},
		speed:   1,
		logger:  logging.NewDiscardLogger(),
	}
	for id, h := range handles {
		if h == nil {
			continue
		}
		e.handles[id] = h
		e.ids = append(e.ids, id)
	}
	slices.Sort(e.ids)

	for _, opt := range opts {
		opt(e)
	}

	for _, id := range e.ids {
		e.set(id, Hidden)
	}
	e.batch.last = e.clock.Now()
	return e
}

// SetSpeed changes the multiplier used by the next Apply.
func (e *Engine) SetSpeed(speed float64) {
	if speed > 0 {
		e.speed = speed
	}
}

// SetInstantFill toggles snapping for subsequent Apply calls.
func (e *Engine) SetInstantFill(instant bool) { e.instant = instant }

// SetOnComplete replaces the completion callback.
func (e *Engine) SetOnComplete(fn func()) { e.onComplete = fn }

// Apply makes next the visible set. In-flight tweens are superseded and the
// new batch starts from the current visuals. Step 100 and instant fill snap
// immediately; arrival at step 100 fires the completion callback once.
func (e *Engine) Apply(next progress.PathSet, step progress.Step, dir Direction) {
	e.supersede()
	if step != progress.StepComplete {
		e.completed = false
	}

	prev := e.visible
	e.visible = next.Clone()
	e.step = step

	if e.instant || step == progress.StepComplete {
		e.snap(e.visible)
		e.logger.Debug("snapped to step", "step", step, "visible", len(e.visible))
		if step == progress.StepComplete && !e.completed {
			e.completed = true
			e.complete()
		}
		return
	}

	diff := Reconcile(prev, e.visible)

	// Paths still fading from a superseded batch must finish leaving.
	for _, id := range e.ids {
		if e.visible.Contains(id) || diff.Exiting.Contains(id) {
			continue
		}
		if !e.current[id].IsHidden() {
			diff.Exiting = append(diff.Exiting, id)
		}
	}

	var held progress.PathSet
	for _, id := range diff.Kept {
		if e.current[id].IsShown() {
			continue
		}
		if dir == Reverse {
			e.set(id, Shown)
			continue
		}
		held = append(held, id)
	}
	diff.Entering = append(held, diff.Entering...)

	planned := Plan(diff, dir, e.speed, e.settleDelay())
	tweens := make([]Tween, 0, len(planned))
	for _, tw := range planned {
		if _, ok := e.handles[tw.Path]; !ok {
			e.logger.Debug("skipping path without handle", "path", tw.Path)
			continue
		}
		tw.From = e.current[tw.Path]
		tweens = append(tweens, tw)
	}

	e.batch = batch{tweens: tweens, last: e.clock.Now()}
	e.logger.Metric(context.Background(), logging.MetricTransitionsScheduled, float64(len(tweens)), map[string]string{
		"direction": dir.String(),
	})
	e.logger.Debug("scheduled transitions",
		"step", step,
		"direction", dir,
		"entering", len(diff.Entering),
		"exiting", len(diff.Exiting),
		"duration", e.Remaining())
}

// Advance interpolates the active batch to the clock's current time and
// writes the result to the handles. It does nothing while paused.
func (e *Engine) Advance() {
	if e.paused {
		return
	}
	now := e.clock.Now()
	e.batch.elapsed += now.Sub(e.batch.last)
	e.batch.last = now

	if len(e.batch.tweens) == 0 {
		return
	}

	remaining := e.batch.tweens[:0]
	for _, tw := range e.batch.tweens {
		e.set(tw.Path, tw.At(e.batch.elapsed))
		if tw.End() > e.batch.elapsed {
			remaining = append(remaining, tw)
		}
	}
	e.batch.tweens = remaining
}

// Pause suspends the active batch. Calling it again has no effect.
func (e *Engine) Pause() {
	if e.paused {
		return
	}
	now := e.clock.Now()
	e.batch.elapsed += now.Sub(e.batch.last)
	e.batch.last = now
	e.paused = true
}

// Resume continues a paused batch where it stopped. Calling it again has no effect.
func (e *Engine) Resume() {
	if !e.paused {
		return
	}
	e.batch.last = e.clock.Now()
	e.paused = false
}

// Paused reports whether the engine is suspended.
func (e *Engine) Paused() bool { return e.paused }

// Settled reports whether no tween is in flight.
func (e *Engine) Settled() bool { return len(e.batch.tweens) == 0 }

// Remaining returns the batch time left until every tween has ended.
func (e *Engine) Remaining() time.Duration {
	var end time.Duration
	for _, tw := range e.batch.tweens {
		end = max(end, tw.End())
	}
	return max(end-e.batch.elapsed, 0)
}

// Visible returns the target visible set of the last Apply.
func (e *Engine) Visible() progress.PathSet { return e.visible.Clone() }

// Step returns the step of the last Apply.
func (e *Engine) Step() progress.Step { return e.step }

// Visual returns the last visual written for id.
func (e *Engine) Visual(id geometry.PathID) (Visual, bool) {
	v, ok := e.current[id]
	return v, ok
}

// IDs returns the ids of every handled path in sorted order.
func (e *Engine) IDs() []geometry.PathID { return slices.Clone(e.ids) }

// Tweens returns a copy of the active batch.
func (e *Engine) Tweens() []Tween { return slices.Clone(e.batch.tweens) }

func (e *Engine) supersede() {
	if n := len(e.batch.tweens); n > 0 {
		e.logger.Metric(context.Background(), logging.MetricTransitionsSuperseded, float64(n), nil)
		e.logger.Debug("superseding in-flight transitions", "count", n)
	}
	e.batch = batch{last: e.clock.Now()}
}

func (e *Engine) snap(shown progress.PathSet) {
	for _, id := range shown {
		if _, ok := e.handles[id]; !ok {
			e.logger.Debug("skipping path without handle", "path", id)
		}
	}
	for _, id := range e.ids {
		if shown.Contains(id) {
			e.set(id, Shown)
		} else {
			e.set(id, Hidden)
		}
	}
}

func (e *Engine) set(id geometry.PathID, v Visual) {
	h, ok := e.handles[id]
	if !ok {
		return
	}
	e.current[id] = v
	h.Apply(v)
}

func (e *Engine) settleDelay() time.Duration {
	if e.settle != nil {
		return *e.settle
	}
	return -1
}

func (e *Engine) complete() {
	if e.onComplete == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("completion callback panicked", "component", "engine", "err", fmt.Errorf("%v", r))
		}
	}()
	e.onComplete()
}
