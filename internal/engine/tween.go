package engine

import (
	"math"
	"time"

	"github.com/syllabyte/brainprogress/internal/geometry"
)

// Visual is the animatable state of one path. DashOffset is a fraction of
// the path length: 0 draws the whole stroke, 1 hides it.
type Visual struct {
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fillOpacity"`
	DashOffset  float64 `json:"dashOffset"`
}

var (
	// Shown is the fully revealed visual.
	Shown = Visual{Opacity: 1, FillOpacity: 1, DashOffset: 0}

	// Hidden is the fully concealed visual.
	Hidden = Visual{Opacity: 0, FillOpacity: 0, DashOffset: 1}
)

// IsShown reports whether v is fully revealed.
func (v Visual) IsShown() bool { return v == Shown }

// IsHidden reports whether v is fully concealed.
func (v Visual) IsHidden() bool { return v == Hidden }

// Handle receives visual updates for a single path.
type Handle interface {
	Apply(Visual)
}

// HandleFunc adapts a function to the Handle interface.
type HandleFunc func(Visual)

// Apply calls f(v).
func (f HandleFunc) Apply(v Visual) { f(v) }

// Direction selects the choreography of a batch.
type Direction int

const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// Easing names a timing curve.
type Easing string

const (
	Linear      Easing = "none"
	Power1Out   Easing = "power1.out"
	Power2InOut Easing = "power2.inOut"
)

// Ease maps linear progress t in [0,1] onto the curve.
func (e Easing) Ease(t float64) float64 {
	t = math.Min(math.Max(t, 0), 1)
	switch e {
	case Power1Out:
		return 1 - (1-t)*(1-t)
	case Power2InOut:
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2
	default:
		return t
	}
}

// Tween animates one path from From to To. Opacity and dash offset follow
// Delay/Duration; fill opacity follows FillDelay/FillDuration.
type Tween struct {
	Path         geometry.PathID `json:"path"`
	From         Visual          `json:"from"`
	To           Visual          `json:"to"`
	Delay        time.Duration   `json:"delay"`
	Duration     time.Duration   `json:"duration"`
	FillDelay    time.Duration   `json:"fillDelay"`
	FillDuration time.Duration   `json:"fillDuration"`
	Ease         Easing          `json:"ease"`
	Exit         bool            `json:"exit"`
}

// End returns the elapsed batch time at which the tween is done.
func (tw Tween) End() time.Duration {
	return max(tw.Delay+tw.Duration, tw.FillDelay+tw.FillDuration)
}

// At returns the interpolated visual at elapsed batch time.
func (tw Tween) At(elapsed time.Duration) Visual {
	t := tw.Ease.Ease(fraction(elapsed, tw.Delay, tw.Duration))
	ft := tw.Ease.Ease(fraction(elapsed, tw.FillDelay, tw.FillDuration))
	return Visual{
		Opacity:     lerp(tw.From.Opacity, tw.To.Opacity, t),
		FillOpacity: lerp(tw.From.FillOpacity, tw.To.FillOpacity, ft),
		DashOffset:  lerp(tw.From.DashOffset, tw.To.DashOffset, t),
	}
}

func fraction(elapsed, delay, duration time.Duration) float64 {
	if elapsed < delay {
		return 0
	}
	if duration <= 0 {
		return 1
	}
	return float64(elapsed-delay) / float64(duration)
}

func lerp(a, b, t float64) float64 {
	if t >= 1 {
		return b
	}
	return a + (b-a)*t
}
