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

package engine

import (
	"slices"
	"time"

	"github.com/syllabyte/brainprogress/internal/geometry"
	"github.com/syllabyte/brainprogress/internal/progress"
)

// Timing constants of the step choreography, expressed for speed 1.
const (
	EnterDuration       = time.Second
	EnterStagger        = 200 * time.Millisecond
	ExitDuration        = 500 * time.Millisecond
	ExitStagger         = 100 * time.Millisecond
	ReverseExitDuration = 800 * time.Millisecond
	SettleDelay         = 200 * time.Millisecond

	// fillDelayFactor and fillDurationFactor shape the fill-opacity track
	// of a staggered fade-out relative to its stroke track.
	fillDelayFactor    = 0.8
	fillDurationFactor = 1.2
)

// Diff is the outcome of reconciling two visible sets.
type Diff struct {
	Entering progress.PathSet `json:"entering"`
	Exiting  progress.PathSet `json:"exiting"`
	Kept     progress.PathSet `json:"kept"`
}

// Empty reports whether nothing enters or exits.
func (d Diff) Empty() bool {
	return len(d.Entering) == 0 && len(d.Exiting) == 0
}

// Reconcile computes next − prev, prev − next and their intersection. Each
// list keeps the order of the set it was drawn from.
func Reconcile(prev, next progress.PathSet) Diff {
	prevSet, nextSet := prev.Set(), next.Set()
	d := Diff{
		Entering: progress.PathSet{},
		Exiting:  progress.PathSet{},
		Kept:     progress.PathSet{},
	}
	for _, id := range next {
		if prevSet.Has(id) {
			d.Kept = append(d.Kept, id)
		} else {
			d.Entering = append(d.Entering, id)
		}
	}
	for _, id := range prev {
		if !nextSet.Has(id) {
			d.Exiting = append(d.Exiting, id)
		}
	}
	return d
}

// Stagger spaces a group of tweens.
type Stagger struct {
	Base      time.Duration
	Increment time.Duration
	Reverse   bool
}

// FadeOut builds hide tweens for ids, each starting Increment after the
// previous one. The fill track trails the stroke track: it starts at 0.8×
// the delay and lasts 1.2× the duration.
func FadeOut(ids []geometry.PathID, duration time.Duration, ease Easing, s Stagger) []Tween {
	ordered := slices.Clone(ids)
	if s.Reverse {
		slices.Reverse(ordered)
	}
	tweens := make([]Tween, 0, len(ordered))
	for i, id := range ordered {
		delay := s.Base + time.Duration(i)*s.Increment
		tweens = append(tweens, Tween{
			Path:         id,
			From:         Shown,
			To:           Hidden,
			Delay:        delay,
			Duration:     duration,
			FillDelay:    scale(delay, fillDelayFactor),
			FillDuration: scale(duration, fillDurationFactor),
			Ease:         ease,
			Exit:         true,
		})
	}
	return tweens
}

// Plan schedules the tweens of a diff. Speed multiplies every duration and
// delay. Settle separates reverse exits from the entries that follow them;
// a negative settle selects the default of 0.2s×speed.
func Plan(d Diff, dir Direction, speed float64, settle time.Duration) []Tween {
	if speed <= 0 {
		speed = 1
	}
	if settle < 0 {
		settle = scale(SettleDelay, speed)
	}

	var tweens []Tween
	switch dir {
	case Reverse:
		exits := FadeOut(d.Exiting, scale(ReverseExitDuration, speed), Power2InOut, Stagger{
			Increment: scale(ExitStagger, speed),
		})
		tweens = append(tweens, exits...)

		var start time.Duration
		if len(exits) > 0 {
			for _, tw := range exits {
				start = max(start, tw.End())
			}
			start += settle
		}
		tweens = append(tweens, enter(d.Entering, start, speed)...)
	default:
		tweens = append(tweens, enter(d.Entering, 0, speed)...)
		for i, id := range d.Exiting {
			delay := time.Duration(i) * scale(ExitStagger, speed)
			duration := scale(ExitDuration, speed)
			tweens = append(tweens, Tween{
				Path:         id,
				From:         Shown,
				To:           Hidden,
				Delay:        delay,
				Duration:     duration,
				FillDelay:    delay,
				FillDuration: duration,
				Ease:         Power1Out,
				Exit:         true,
			})
		}
	}
	return tweens
}

func enter(ids progress.PathSet, start time.Duration, speed float64) []Tween {
	tweens := make([]Tween, 0, len(ids))
	for i, id := range ids {
		delay := start + time.Duration(i)*scale(EnterStagger, speed)
		duration := scale(EnterDuration, speed)
		tweens = append(tweens, Tween{
			Path:         id,
			From:         Hidden,
			To:           Shown,
			Delay:        delay,
			Duration:     duration,
			FillDelay:    delay,
			FillDuration: duration,
			Ease:         Power2InOut,
		})
	}
	return tweens
}

func scale(d time.Duration, f float64) time.Duration {
	return time.Duration(float64(d) * f)
}
