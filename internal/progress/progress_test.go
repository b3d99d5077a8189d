package progress

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/syllabyte/brainprogress/internal/geometry"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    Input
		expected float64
	}{
		{name: "value over max is clamped", input: Input{Value: ptr.To(150.0), Max: ptr.To(100.0)}, expected: 100},
		{name: "negative value is clamped", input: Input{Value: ptr.To(-10.0), Max: ptr.To(100.0)}, expected: 0},
		{name: "raw percent", input: Input{Percent: ptr.To(60.0)}, expected: 60},
		{name: "ratio", input: Input{Value: ptr.To(3.0), Max: ptr.To(4.0)}, expected: 75},
		{name: "ratio wins over percent", input: Input{Percent: ptr.To(10.0), Value: ptr.To(1.0), Max: ptr.To(2.0)}, expected: 50},
		{name: "zero max falls back to percent", input: Input{Percent: ptr.To(40.0), Value: ptr.To(1.0), Max: ptr.To(0.0)}, expected: 40},
		{name: "value without max falls back to percent", input: Input{Percent: ptr.To(30.0), Value: ptr.To(1.0)}, expected: 30},
		{name: "percent above range", input: Input{Percent: ptr.To(250.0)}, expected: 100},
		{name: "nothing given", input: Input{}, expected: 0},
		{name: "NaN percent", input: Input{Percent: ptr.To(math.NaN())}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Normalize(tt.input), 1e-9)
		})
	}
}

func TestRound(t *testing.T) {
	assert.Equal(t, 75, Round(74.5))
	assert.Equal(t, 74, Round(74.49))
	assert.Equal(t, 100, Round(120))
	assert.Equal(t, 0, Round(-3))
}

func TestMapToStep(t *testing.T) {
	tests := []struct {
		progress float64
		expected Step
	}{
		{0, StepNone},
		{24.999, StepNone},
		{25, StepQuarter},
		{49.9, StepQuarter},
		{50, StepHalf},
		{75, StepThreeQuarters},
		{99.99, StepThreeQuarters},
		{100, StepComplete},
	}

	for _, tt := range tests {
		t.Run(tt.expected.String(), func(t *testing.T) {
			assert.Equal(t, tt.expected, MapToStep(tt.progress))
		})
	}
}

func TestMapToStepIsMonotonic(t *testing.T) {
	prev := MapToStep(0)
	for p := 0.0; p <= 100; p += 0.05 {
		step := MapToStep(p)
		require.True(t, step.Valid(), "step %d at %.2f is not enumerated", step, p)
		require.GreaterOrEqual(t, step, prev, "step decreased at %.2f", p)
		prev = step
	}
}

func TestParseStep(t *testing.T) {
	s, err := ParseStep("75")
	require.NoError(t, err)
	assert.Equal(t, StepThreeQuarters, s)

	s, err = ParseStep(25)
	require.NoError(t, err)
	assert.Equal(t, StepQuarter, s)

	_, err = ParseStep(30)
	assert.ErrorIs(t, err, ErrInvalidStep)

	_, err = ParseStep("half")
	assert.ErrorIs(t, err, ErrInvalidStep)
}

func TestDefaultTableIsNested(t *testing.T) {
	table := DefaultTable()
	require.NoError(t, table.Validate())

	assert.Empty(t, table.PathsFor(StepNone))
	for i := 1; i < len(Steps); i++ {
		lower := table.PathsFor(Steps[i-1]).Set()
		upper := table.PathsFor(Steps[i]).Set()
		assert.True(t, upper.IsSuperset(lower), "%s must contain %s", Steps[i], Steps[i-1])
	}
	assert.Len(t, table.All(), 10)
	assert.Equal(t, PathSet{"path-1"}, table.PathsFor(StepQuarter))
}

func TestTableValidate(t *testing.T) {
	tests := []struct {
		name    string
		table   Table
		wantErr error
	}{
		{
			name: "valid sparse table",
			table: Table{
				StepQuarter:  {"a"},
				StepComplete: {"a", "b"},
			},
		},
		{
			name: "higher step drops a path",
			table: Table{
				StepQuarter: {"a"},
				StepHalf:    {"b"},
			},
			wantErr: ErrNotNested,
		},
		{
			name:    "step zero reveals a path",
			table:   Table{StepNone: {"a"}},
			wantErr: ErrNotNested,
		},
		{
			name:    "unknown threshold",
			table:   Table{Step(30): {"a"}},
			wantErr: ErrInvalidStep,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.table.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTableValidateRejectsDuplicates(t *testing.T) {
	err := Table{StepHalf: {"a", "a"}}.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "more than once")
}

func TestPathsForInheritsLowerStep(t *testing.T) {
	table := Table{StepQuarter: {"a"}, StepComplete: {"a", "b"}}
	assert.Equal(t, PathSet{"a"}, table.PathsFor(StepThreeQuarters))
	assert.Equal(t, PathSet{}, table.PathsFor(StepNone))
}

func TestNewTable(t *testing.T) {
	table, err := NewTable(geometry.RevealTable{25: {"x"}, 100: {"x", "y"}})
	require.NoError(t, err)
	assert.Equal(t, PathSet{"x", "y"}, table.All())

	_, err = NewTable(geometry.RevealTable{25: {"x"}, 50: {"y"}})
	assert.ErrorIs(t, err, ErrNotNested)
}
