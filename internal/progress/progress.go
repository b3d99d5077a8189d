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

// Package progress normalizes raw progress inputs and quantizes them into
// discrete reveal steps.
package progress

import (
	"math"

	"golang.org/x/exp/constraints"
)

const (
	// MinPercent is the lower bound of every progress value.
	MinPercent = 0.0

	// MaxPercent is the upper bound of every progress value.
	MaxPercent = 100.0
)

// Input carries the optional progress sources. Build it with k8s.io/utils/ptr.
type Input struct {
	Percent *float64 `json:"percent,omitempty"`
	Value   *float64 `json:"value,omitempty"`
	Max     *float64 `json:"max,omitempty"`
}

// IsZero reports whether no source is set.
func (in Input) IsZero() bool {
	return in.Percent == nil && in.Value == nil && in.Max == nil
}

// Normalize derives a percentage in [0,100]. A value/max pair wins over a
// direct percentage when max is positive. Out-of-range inputs are clamped.
func Normalize(in Input) float64 {
	if in.Value != nil && in.Max != nil && *in.Max > 0 {
		return Clamp(*in.Value / *in.Max * 100)
	}
	if in.Percent != nil {
		return Clamp(*in.Percent)
	}
	return MinPercent
}

// Clamp bounds p to [0,100]. NaN clamps to 0.
func Clamp(p float64) float64 {
	return clamp(p, MinPercent, MaxPercent)
}

// Round returns the displayed integer percentage.
func Round(p float64) int {
	return int(math.Round(Clamp(p)))
}

func clamp[T constraints.Float](v, lo, hi T) T {
	if v != v {
		return lo
	}
	return min(max(v, lo), hi)
}
