package cycle

import (
	"fmt"
	"time"

	"k8s.io/utils/ptr"
)

// State is a phase of the autoplay cycle.
type State int

const (
	Filling State = iota
	PausedAtPeak
	Draining
	PausedAtTrough
)

func (s State) String() string {
	switch s {
	case Filling:
		return "filling"
	case PausedAtPeak:
		return "paused-at-peak"
	case Draining:
		return "draining"
	case PausedAtTrough:
		return "paused-at-trough"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Paused reports whether s is one of the two dwell states.
func (s State) Paused() bool {
	return s == PausedAtPeak || s == PausedAtTrough
}

// FlipPolicy selects when the reversed flag changes around a dwell.
type FlipPolicy string

const (
	// FlipAtPauseStart flips the flag as soon as a dwell begins.
	FlipAtPauseStart FlipPolicy = "pause-start"

	// FlipAtPauseEnd flips the flag when motion resumes.
	FlipAtPauseEnd FlipPolicy = "pause-end"
)

// Valid reports whether p is a known policy.
func (p FlipPolicy) Valid() bool {
	return p == FlipAtPauseStart || p == FlipAtPauseEnd
}

const (
	// PeakEpsilon is the progress at which filling snaps to 100.
	PeakEpsilon = 99.9

	// TroughEpsilon is the progress at which draining snaps to 0.
	TroughEpsilon = 0.1

	DefaultRate          = 20.0
	DefaultSpeed         = 1.0
	DefaultPauseAtPeak   = time.Second
	DefaultPauseAtTrough = 300 * time.Millisecond
)

// Config tunes the cycle. Unset fields take their default. A pause set to 0
// is legal and skips the dwell.
type Config struct {
	Rate          float64        `json:"rate" mapstructure:"rate"`
	Speed         float64        `json:"speed" mapstructure:"speed"`
	PauseAtPeak   *time.Duration `json:"pauseAtPeak,omitempty" mapstructure:"pauseAtPeak"`
	PauseAtTrough *time.Duration `json:"pauseAtTrough,omitempty" mapstructure:"pauseAtTrough"`
	Flip          FlipPolicy     `json:"flip" mapstructure:"flip"`
}

// DefaultConfig returns the stock cycle timing.
func DefaultConfig() Config {
	return Config{
		Rate:          DefaultRate,
		Speed:         DefaultSpeed,
		PauseAtPeak:   ptr.To(DefaultPauseAtPeak),
		PauseAtTrough: ptr.To(DefaultPauseAtTrough),
		Flip:          FlipAtPauseStart,
	}
}

// WithDefaults returns c with every unset or invalid field replaced by its
// default.
func (c Config) WithDefaults() Config {
	return c.withDefaults()
}

// Peak returns the dwell at 100.
func (c Config) Peak() time.Duration {
	return pause(c.PauseAtPeak, DefaultPauseAtPeak)
}

// Trough returns the dwell at 0.
func (c Config) Trough() time.Duration {
	return pause(c.PauseAtTrough, DefaultPauseAtTrough)
}

// Equal reports whether c and o select the same timing.
func (c Config) Equal(o Config) bool {
	c, o = c.withDefaults(), o.withDefaults()
	return c.Rate == o.Rate && c.Speed == o.Speed && c.Peak() == o.Peak() &&
		c.Trough() == o.Trough() && c.Flip == o.Flip
}

func pause(d *time.Duration, def time.Duration) time.Duration {
	if d == nil {
		return def
	}
	return max(*d, 0)
}

// UnitsPerSecond returns the progress velocity.
func (c Config) UnitsPerSecond() float64 {
	return c.Rate * c.Speed
}

// FillDuration returns the time a full 0 to 100 sweep takes.
func (c Config) FillDuration() time.Duration {
	return time.Duration(100 / c.withDefaults().UnitsPerSecond() * float64(time.Second))
}

func (c Config) withDefaults() Config {
	if c.Rate <= 0 {
		c.Rate = DefaultRate
	}
	if c.Speed <= 0 {
		c.Speed = DefaultSpeed
	}
	c.PauseAtPeak = ptr.To(c.Peak())
	c.PauseAtTrough = ptr.To(c.Trough())
	if !c.Flip.Valid() {
		c.Flip = FlipAtPauseStart
	}
	return c
}
