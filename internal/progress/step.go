package progress

import (
	"errors"
	"fmt"
	"slices"
	"strconv"

	"github.com/spf13/cast"
	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/syllabyte/brainprogress/internal/geometry"
)

// Step is a quantized progress bucket.
type Step int

const (
	StepNone          Step = 0
	StepQuarter       Step = 25
	StepHalf          Step = 50
	StepThreeQuarters Step = 75
	StepComplete      Step = 100
)

// Steps lists every step in ascending order.
var Steps = []Step{StepNone, StepQuarter, StepHalf, StepThreeQuarters, StepComplete}

var (
	// ErrInvalidStep is returned for a threshold outside the step enumeration.
	ErrInvalidStep = errors.New("invalid step")

	// ErrNotNested is returned when a higher step drops a path of a lower one.
	ErrNotNested = errors.New("path table is not monotonically nested")
)

// String returns the step as a percentage.
func (s Step) String() string {
	return strconv.Itoa(int(s)) + "%"
}

// Valid reports whether s is one of the enumerated steps.
func (s Step) Valid() bool {
	return slices.Contains(Steps, s)
}

// MapToStep returns the largest threshold not above p. 100 is only reached at p >= 100.
func MapToStep(p float64) Step {
	switch {
	case p >= 100:
		return StepComplete
	case p >= 75:
		return StepThreeQuarters
	case p >= 50:
		return StepHalf
	case p >= 25:
		return StepQuarter
	default:
		return StepNone
	}
}

// ParseStep converts a threshold such as 75 or "75" to a Step.
func ParseStep(v any) (Step, error) {
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidStep, v)
	}
	s := Step(n)
	if !s.Valid() {
		return 0, fmt.Errorf("%w: %d (valid: 0, 25, 50, 75, 100)", ErrInvalidStep, n)
	}
	return s, nil
}

// PathSet is an ordered list of unique path ids. Order is the reveal sequence.
type PathSet []geometry.PathID

// Contains reports whether id is part of the set.
func (ps PathSet) Contains(id geometry.PathID) bool {
	return slices.Contains(ps, id)
}

// Set returns the unordered view of ps.
func (ps PathSet) Set() sets.Set[geometry.PathID] {
	return sets.New(ps...)
}

// Clone returns an independent copy.
func (ps PathSet) Clone() PathSet {
	if ps == nil {
		return PathSet{}
	}
	return slices.Clone(ps)
}

// Table maps every step to the paths visible at that step.
type Table map[Step]PathSet

// NewTable converts a geometry reveal table and validates it.
func NewTable(reveal geometry.RevealTable) (Table, error) {
	t := make(Table, len(reveal))
	for threshold, ids := range reveal {
		step, err := ParseStep(threshold)
		if err != nil {
			return nil, err
		}
		t[step] = PathSet(ids).Clone()
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// DefaultTable returns the reveal table of the built-in artwork.
func DefaultTable() Table {
	t, err := NewTable(geometry.Default().RevealTable())
	if err != nil {
		panic(fmt.Sprintf("progress: built-in reveal table is invalid: %v", err))
	}
	return t
}

// PathsFor returns the paths visible at step. Steps missing from the table
// inherit the set of the closest lower step.
func (t Table) PathsFor(step Step) PathSet {
	for i := len(Steps) - 1; i >= 0; i-- {
		if Steps[i] > step {
			continue
		}
		if ps, ok := t[Steps[i]]; ok {
			return ps.Clone()
		}
	}
	return PathSet{}
}

// All returns the paths visible at the terminal step.
func (t Table) All() PathSet {
	return t.PathsFor(StepComplete)
}

// Validate checks the table keys, duplicate ids, the empty step 0 and the
// nesting invariant PathSet(25) ⊆ PathSet(50) ⊆ PathSet(75) ⊆ PathSet(100).
func (t Table) Validate() error {
	for step, ps := range t {
		if !step.Valid() {
			return fmt.Errorf("%w: %d", ErrInvalidStep, int(step))
		}
		if ps.Set().Len() != len(ps) {
			return fmt.Errorf("step %s lists a path more than once", step)
		}
	}

	if len(t[StepNone]) > 0 {
		return fmt.Errorf("%w: step 0%% must not reveal any path", ErrNotNested)
	}

	prev := sets.New[geometry.PathID]()
	for _, step := range Steps {
		cur := t.PathsFor(step).Set()
		if !cur.IsSuperset(prev) {
			return fmt.Errorf("%w: step %s drops %v", ErrNotNested, step, sets.List(prev.Difference(cur)))
		}
		prev = cur
	}

	return nil
}
