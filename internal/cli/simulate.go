package cli

import (
	"context"
	"fmt"
	"time"

	clocktesting "k8s.io/utils/clock/testing"

	"github.com/syllabyte/brainprogress/internal/indicator"
	"github.com/syllabyte/brainprogress/internal/runtime"
)

// maxSettleSteps bounds Settle for indicators whose transitions never end.
const maxSettleSteps = 1000

// Simulation drives an indicator on a fake clock so documents can be
// produced at any point of its timeline without waiting.
type Simulation struct {
	Clock     *clocktesting.FakeClock
	Indicator *indicator.Indicator
	start     time.Time
}

// NewSimulation builds the manifest indicator on a fake clock starting at
// the runtime clock's current time.
func NewSimulation(ctx context.Context, rt *runtime.Runtime, opts ...indicator.Option) (*Simulation, error) {
	start := rt.Clock().Now()
	fake := clocktesting.NewFakeClock(start)
	ind, err := rt.Indicator(ctx, append([]indicator.Option{indicator.WithClock(fake)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Simulation{Clock: fake, Indicator: ind, start: start}, nil
}

// NewPropsSimulation builds an indicator from props instead of the manifest.
func NewPropsSimulation(rt *runtime.Runtime, props indicator.Props, opts ...indicator.Option) (*Simulation, error) {
	start := rt.Clock().Now()
	fake := clocktesting.NewFakeClock(start)
	base := []indicator.Option{indicator.WithClock(fake), indicator.WithLogger(rt.ObservableLogger())}
	ind, err := indicator.New(props, append(base, opts...)...)
	if err != nil {
		return nil, err
	}
	return &Simulation{Clock: fake, Indicator: ind, start: start}, nil
}

// Elapsed returns the simulated time since the start.
func (s *Simulation) Elapsed() time.Duration {
	return s.Clock.Since(s.start)
}

// Advance moves the clock by d and ticks the indicator.
func (s *Simulation) Advance(d time.Duration) indicator.State {
	if d > 0 {
		s.Clock.Step(d)
	}
	return s.Indicator.Tick()
}

// Settle advances until no transition is in flight.
func (s *Simulation) Settle() (indicator.State, error) {
	for range maxSettleSteps {
		if s.Indicator.Settled() {
			return s.Indicator.State(), nil
		}
		s.Advance(max(s.Indicator.Remaining(), time.Millisecond))
	}
	return s.Indicator.State(), fmt.Errorf("indicator did not settle after %s", s.Elapsed())
}
