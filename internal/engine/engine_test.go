package engine

import (
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	testingclock "k8s.io/utils/clock/testing"

	"github.com/syllabyte/brainprogress/internal/geometry"
	"github.com/syllabyte/brainprogress/internal/progress"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name     string
		prev     progress.PathSet
		next     progress.PathSet
		expected Diff
	}{
		{
			name:     "grow",
			prev:     progress.PathSet{"a"},
			next:     progress.PathSet{"a", "b", "c"},
			expected: Diff{Entering: progress.PathSet{"b", "c"}, Exiting: progress.PathSet{}, Kept: progress.PathSet{"a"}},
		},
		{
			name:     "shrink",
			prev:     progress.PathSet{"a", "b", "c"},
			next:     progress.PathSet{"a"},
			expected: Diff{Entering: progress.PathSet{}, Exiting: progress.PathSet{"b", "c"}, Kept: progress.PathSet{"a"}},
		},
		{
			name:     "disjoint",
			prev:     progress.PathSet{"a"},
			next:     progress.PathSet{"b"},
			expected: Diff{Entering: progress.PathSet{"b"}, Exiting: progress.PathSet{"a"}, Kept: progress.PathSet{}},
		},
		{
			name:     "unchanged",
			prev:     progress.PathSet{"a", "b"},
			next:     progress.PathSet{"a", "b"},
			expected: Diff{Entering: progress.PathSet{}, Exiting: progress.PathSet{}, Kept: progress.PathSet{"a", "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Reconcile(tt.prev, tt.next))
		})
	}
}

func TestReconcileIsPure(t *testing.T) {
	prev := progress.PathSet{"a", "b"}
	next := progress.PathSet{"b", "c"}
	first := Reconcile(prev, next)
	second := Reconcile(prev, next)
	assert.Equal(t, first, second)
	assert.Equal(t, progress.PathSet{"a", "b"}, prev)
	assert.Equal(t, progress.PathSet{"b", "c"}, next)
}

func TestPlanForward(t *testing.T) {
	d := Diff{Entering: progress.PathSet{"a", "b"}, Exiting: progress.PathSet{"x", "y"}}
	tweens := Plan(d, Forward, 1, -1)
	require.Len(t, tweens, 4)

	assert.Equal(t, geometry.PathID("a"), tweens[0].Path)
	assert.Equal(t, time.Duration(0), tweens[0].Delay)
	assert.Equal(t, time.Second, tweens[0].Duration)
	assert.Equal(t, Power2InOut, tweens[0].Ease)
	assert.Equal(t, 200*time.Millisecond, tweens[1].Delay)

	assert.True(t, tweens[2].Exit)
	assert.Equal(t, time.Duration(0), tweens[2].Delay)
	assert.Equal(t, 500*time.Millisecond, tweens[2].Duration)
	assert.Equal(t, Power1Out, tweens[2].Ease)
	assert.Equal(t, 100*time.Millisecond, tweens[3].Delay)
	assert.Less(t, tweens[2].Duration, tweens[0].Duration)
}

func TestPlanReverse(t *testing.T) {
	d := Diff{Entering: progress.PathSet{"a"}, Exiting: progress.PathSet{"x", "y"}}
	tweens := Plan(d, Reverse, 1, -1)
	require.Len(t, tweens, 3)

	x, y, a := tweens[0], tweens[1], tweens[2]
	assert.Equal(t, 800*time.Millisecond, x.Duration)
	assert.Equal(t, 100*time.Millisecond, y.Delay)
	assert.Equal(t, 80*time.Millisecond, y.FillDelay)
	assert.Equal(t, 960*time.Millisecond, y.FillDuration)
	assert.Equal(t, 1040*time.Millisecond, y.End())

	// Entries wait for the last exit plus the settle delay.
	assert.Equal(t, geometry.PathID("a"), a.Path)
	assert.Equal(t, 1240*time.Millisecond, a.Delay)
	assert.False(t, a.Exit)
}

func TestPlanReverseWithoutExitsStartsImmediately(t *testing.T) {
	tweens := Plan(Diff{Entering: progress.PathSet{"a", "b"}}, Reverse, 1, -1)
	require.Len(t, tweens, 2)
	assert.Equal(t, time.Duration(0), tweens[0].Delay)
	assert.Equal(t, 200*time.Millisecond, tweens[1].Delay)
}

func TestPlanScalesWithSpeed(t *testing.T) {
	d := Diff{Entering: progress.PathSet{"a", "b"}, Exiting: progress.PathSet{"x"}}
	tweens := Plan(d, Reverse, 2, -1)
	require.Len(t, tweens, 3)
	assert.Equal(t, 1600*time.Millisecond, tweens[0].Duration)
	// exit end is max(1.6s, 1.92s) plus a 0.4s settle
	assert.Equal(t, 2320*time.Millisecond, tweens[1].Delay)
	assert.Equal(t, 2*time.Second, tweens[1].Duration)
	assert.Equal(t, 2720*time.Millisecond, tweens[2].Delay)
}

func TestFadeOutReverseOrder(t *testing.T) {
	tweens := FadeOut([]geometry.PathID{"a", "b", "c"}, time.Second, Power1Out, Stagger{
		Base:      time.Second,
		Increment: 100 * time.Millisecond,
		Reverse:   true,
	})
	require.Len(t, tweens, 3)
	assert.Equal(t, geometry.PathID("c"), tweens[0].Path)
	assert.Equal(t, time.Second, tweens[0].Delay)
	assert.Equal(t, 1200*time.Millisecond, tweens[2].Delay)
	assert.Equal(t, 960*time.Millisecond, tweens[2].FillDelay)
	assert.Equal(t, 1200*time.Millisecond, tweens[2].FillDuration)
}

func TestEasing(t *testing.T) {
	for _, e := range []Easing{Linear, Power1Out, Power2InOut} {
		t.Run(string(e), func(t *testing.T) {
			assert.Equal(t, 0.0, e.Ease(0))
			assert.Equal(t, 1.0, e.Ease(1))
			assert.Equal(t, 1.0, e.Ease(2))
			prev := 0.0
			for x := 0.0; x <= 1; x += 0.01 {
				v := e.Ease(x)
				assert.GreaterOrEqual(t, v, prev)
				prev = v
			}
		})
	}
	assert.InDelta(t, 0.5, Power2InOut.Ease(0.5), 1e-9)
	assert.InDelta(t, 0.75, Power1Out.Ease(0.5), 1e-9)
}

func TestTweenAt(t *testing.T) {
	tw := Tween{From: Hidden, To: Shown, Delay: time.Second, Duration: time.Second, FillDelay: time.Second, FillDuration: time.Second, Ease: Linear}
	assert.Equal(t, Hidden, tw.At(500*time.Millisecond))
	mid := tw.At(1500 * time.Millisecond)
	assert.InDelta(t, 0.5, mid.Opacity, 1e-9)
	assert.InDelta(t, 0.5, mid.DashOffset, 1e-9)
	assert.Equal(t, Shown, tw.At(3*time.Second))

	snap := Tween{From: Shown, To: Hidden}
	assert.Equal(t, Hidden, snap.At(0))
}

type EngineTestSuite struct {
	suite.Suite
	clock    *testingclock.FakeClock
	visuals  map[geometry.PathID]Visual
	applied  int
	table    progress.Table
	complete int
}

func (s *EngineTestSuite) SetupTest() {
	s.clock = testingclock.NewFakeClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	s.visuals = map[geometry.PathID]Visual{}
	s.applied = 0
	s.complete = 0
	s.table = progress.DefaultTable()
}

func (s *EngineTestSuite) handles(skip ...geometry.PathID) map[geometry.PathID]Handle {
	out := map[geometry.PathID]Handle{}
	for _, id := range geometry.Default().IDs() {
		if slices.Contains(skip, id) {
			continue
		}
		out[id] = HandleFunc(func(v Visual) {
			s.visuals[id] = v
			s.applied++
		})
	}
	return out
}

func (s *EngineTestSuite) newEngine(opts ...Option) *Engine {
	opts = append([]Option{
		WithClock(s.clock),
		WithOnComplete(func() { s.complete++ }),
	}, opts...)
	return New(s.handles(), opts...)
}

func (s *EngineTestSuite) apply(e *Engine, step progress.Step, dir Direction) {
	e.Apply(s.table.PathsFor(step), step, dir)
}

func (s *EngineTestSuite) settle(e *Engine) {
	s.clock.Step(e.Remaining() + time.Millisecond)
	e.Advance()
	s.Require().True(e.Settled())
}

func (s *EngineTestSuite) assertVisible(step progress.Step) {
	shown := s.table.PathsFor(step)
	for _, id := range geometry.Default().IDs() {
		if shown.Contains(id) {
			s.Equal(Shown, s.visuals[id], "%s should be shown at %s", id, step)
		} else {
			s.Equal(Hidden, s.visuals[id], "%s should be hidden at %s", id, step)
		}
	}
}

func (s *EngineTestSuite) TestNewHidesEveryPath() {
	s.newEngine()
	s.Len(s.visuals, 10)
	s.assertVisible(progress.StepNone)
}

func (s *EngineTestSuite) TestForwardAnimationSettles() {
	e := s.newEngine()
	s.apply(e, progress.StepHalf, Forward)
	s.False(e.Settled())

	e.Advance()
	s.Equal(Hidden, s.visuals["path-1"], "nothing moves before time passes")

	s.settle(e)
	s.assertVisible(progress.StepHalf)
	s.Zero(s.complete)
}

func (s *EngineTestSuite) TestForwardStaggerOrder() {
	e := s.newEngine()
	s.apply(e, progress.StepHalf, Forward)

	s.clock.Step(500 * time.Millisecond)
	e.Advance()
	first := s.visuals["path-1"].Opacity
	last := s.visuals["path-10"].Opacity
	s.Greater(first, last)
}

func (s *EngineTestSuite) TestStepCompleteShowsAllPathsImmediately() {
	e := s.newEngine()
	s.apply(e, progress.StepQuarter, Forward)
	s.clock.Step(300 * time.Millisecond)
	e.Advance()

	s.apply(e, progress.StepComplete, Forward)
	s.assertVisible(progress.StepComplete)
	s.True(e.Settled())
	s.Equal(1, s.complete)
}

func (s *EngineTestSuite) TestStepCompleteAfterReverseShowsAllPaths() {
	e := s.newEngine()
	s.apply(e, progress.StepThreeQuarters, Forward)
	s.settle(e)
	s.apply(e, progress.StepQuarter, Reverse)
	s.clock.Step(400 * time.Millisecond)
	e.Advance()

	s.apply(e, progress.StepComplete, Reverse)
	s.assertVisible(progress.StepComplete)
}

func (s *EngineTestSuite) TestCompletionFiresOncePerArrival() {
	e := s.newEngine()
	s.apply(e, progress.StepComplete, Forward)
	s.apply(e, progress.StepComplete, Forward)
	s.Equal(1, s.complete)

	s.apply(e, progress.StepThreeQuarters, Reverse)
	s.Equal(1, s.complete)

	s.apply(e, progress.StepComplete, Forward)
	s.Equal(2, s.complete)
}

func (s *EngineTestSuite) TestCompletionPanicIsRecovered() {
	e := New(s.handles(), WithClock(s.clock), WithOnComplete(func() { panic("boom") }))
	s.NotPanics(func() { s.apply(e, progress.StepComplete, Forward) })
	s.assertVisible(progress.StepComplete)
}

func (s *EngineTestSuite) TestInstantFill() {
	e := s.newEngine(WithInstantFill(true))
	s.apply(e, progress.StepThreeQuarters, Forward)
	s.assertVisible(progress.StepThreeQuarters)
	s.True(e.Settled())
	s.Zero(s.complete)

	e.SetInstantFill(false)
	s.apply(e, progress.StepHalf, Forward)
	s.False(e.Settled())
}

func (s *EngineTestSuite) TestPauseIsIdempotent() {
	e := s.newEngine()
	s.apply(e, progress.StepHalf, Forward)
	s.clock.Step(400 * time.Millisecond)
	e.Advance()

	e.Pause()
	e.Pause()
	before := map[geometry.PathID]Visual{}
	for k, v := range s.visuals {
		before[k] = v
	}
	remaining := e.Remaining()

	s.clock.Step(10 * time.Second)
	e.Advance()
	s.Equal(before, s.visuals)
	s.Equal(remaining, e.Remaining())

	e.Resume()
	e.Resume()
	s.clock.Step(100 * time.Millisecond)
	e.Advance()
	s.Equal(remaining-100*time.Millisecond, e.Remaining())

	s.settle(e)
	s.assertVisible(progress.StepHalf)
}

func (s *EngineTestSuite) TestSupersedeStartsFromCurrentVisual() {
	e := s.newEngine()
	s.apply(e, progress.StepHalf, Forward)
	s.clock.Step(700 * time.Millisecond)
	e.Advance()
	mid := s.visuals["path-6"]
	s.False(mid.IsHidden())
	s.False(mid.IsShown())

	s.apply(e, progress.StepQuarter, Forward)
	for _, tw := range e.Tweens() {
		if tw.Path == "path-6" {
			s.True(tw.Exit)
			s.Equal(mid, tw.From)
		}
	}

	// The first frame of the new batch does not jump.
	e.Advance()
	s.Equal(mid, s.visuals["path-6"])

	s.settle(e)
	s.assertVisible(progress.StepQuarter)
}

func (s *EngineTestSuite) TestSupersededExitKeepsLeaving() {
	e := s.newEngine()
	s.apply(e, progress.StepThreeQuarters, Forward)
	s.settle(e)

	s.apply(e, progress.StepHalf, Forward)
	s.clock.Step(200 * time.Millisecond)
	e.Advance()

	// path-5 is mid-exit and absent from both the old and new targets.
	s.apply(e, progress.StepQuarter, Forward)
	s.settle(e)
	s.assertVisible(progress.StepQuarter)
}

func (s *EngineTestSuite) TestReverseHoldsKeptPathsVisible() {
	e := s.newEngine()
	s.apply(e, progress.StepHalf, Forward)
	s.clock.Step(300 * time.Millisecond)
	e.Advance()
	s.False(s.visuals["path-1"].IsShown())

	s.apply(e, progress.StepQuarter, Reverse)
	s.Equal(Shown, s.visuals["path-1"])
	for _, tw := range e.Tweens() {
		s.NotEqual(geometry.PathID("path-1"), tw.Path)
	}
	s.settle(e)
	s.assertVisible(progress.StepQuarter)
}

func (s *EngineTestSuite) TestMissingHandleIsSkipped() {
	e := New(s.handles("path-6"), WithClock(s.clock))
	s.NotPanics(func() { s.apply(e, progress.StepHalf, Forward) })
	for _, tw := range e.Tweens() {
		s.NotEqual(geometry.PathID("path-6"), tw.Path)
	}
	s.Len(e.Tweens(), 3)
	s.settle(e)

	_, ok := e.Visual("path-6")
	s.False(ok)
	s.Equal(Shown, s.visuals["path-9"])
}

func (s *EngineTestSuite) TestSpeedScalesRemaining() {
	e := s.newEngine(WithSpeed(2))
	s.apply(e, progress.StepQuarter, Forward)
	s.Equal(2*time.Second, e.Remaining())

	e.SetSpeed(0)
	s.apply(e, progress.StepNone, Forward)
	s.Equal(time.Second, e.Remaining())
}

func (s *EngineTestSuite) TestSettleDelayOption() {
	e := s.newEngine(WithSettleDelay(0))
	s.apply(e, progress.StepThreeQuarters, Forward)
	s.settle(e)

	e.Apply(progress.PathSet{"path-1", "path-4"}, progress.StepHalf, Reverse)
	var enter Tween
	for _, tw := range e.Tweens() {
		if tw.Path == "path-4" {
			enter = tw
		}
	}
	// six exits: the last starts at 500ms and its fill track ends 1.36s in
	s.Equal(1360*time.Millisecond, enter.Delay)
	s.False(enter.Exit)
}

func (s *EngineTestSuite) TestVisibleTracksLastTarget() {
	e := s.newEngine()
	s.apply(e, progress.StepThreeQuarters, Forward)
	s.Equal(s.table.PathsFor(progress.StepThreeQuarters), e.Visible())
	s.Equal(progress.StepThreeQuarters, e.Step())
}

func TestEngineTestSuite(t *testing.T) {
	suite.Run(t, new(EngineTestSuite))
}

