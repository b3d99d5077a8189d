package ui

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"

	"github.com/syllabyte/brainprogress/internal/indicator"
	"github.com/syllabyte/brainprogress/internal/progress"
)

func TestTableRender(t *testing.T) {
	table := NewTable().
		SetMaxWidth(80).
		SetColumns([]Column{
			{Title: "ID", Key: "id", MinWidth: 4, Condition: true},
			{Title: "PERCENT", Key: "percent", Condition: true},
			{Title: "HIDDEN", Key: "hidden", Condition: false},
		}).
		SetRows([]Row{
			{"id": "upload", "percent": "42"},
			{"id": "sync"},
		})

	out := table.Render()
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Len(t, lines, 4)
	assert.Contains(t, lines[0], "ID")
	assert.Contains(t, lines[0], "PERCENT")
	assert.NotContains(t, out, "HIDDEN")
	assert.Contains(t, lines[1], "─")
	assert.Contains(t, lines[2], "upload")
	assert.Contains(t, lines[3], "-", "missing values render as a dash")
}

func TestTableRenderWithoutColumns(t *testing.T) {
	assert.Empty(t, NewTable().Render())
}

func TestTruncateText(t *testing.T) {
	tests := []struct {
		text     string
		width    int
		expected string
	}{
		{"brain", 10, "brain"},
		{"brainprogress", 6, "brai…"},
		{"brainprogress", 3, "..."},
		{"brain", 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.expected, truncateText(tt.text, tt.width))
		})
	}
}

func TestShade(t *testing.T) {
	tests := []struct {
		opacity  float64
		expected rune
	}{
		{0, ' '},
		{-1, ' '},
		{0.1, '░'},
		{0.5, '▒'},
		{0.75, '▓'},
		{1, '█'},
		{2, '█'},
	}

	for _, tt := range tests {
		assert.Equal(t, string(tt.expected), string(Shade(tt.opacity)), "opacity %v", tt.opacity)
	}
}

func TestBar(t *testing.T) {
	plain := lipgloss.NewStyle()

	bar := Bar(50, 10, plain)
	assert.Equal(t, 5, strings.Count(bar, "█"))
	assert.Equal(t, 5, strings.Count(bar, "░"))

	assert.Equal(t, 10, strings.Count(Bar(150, 10, plain), "█"), "percent is clamped")
	assert.Equal(t, BarWidth, strings.Count(Bar(0, 0, plain), "░"), "zero width uses the default")
}

func TestPathStrip(t *testing.T) {
	paths := []indicator.PathState{
		{ID: "path-1", Opacity: 1},
		{ID: "path-2", Opacity: 0},
		{ID: "path-3", Opacity: 0.5},
	}
	strip := PathStrip(paths, "#06c9a1", "#007afc")
	assert.Contains(t, strip, "█")
	assert.Contains(t, strip, "▒")
}

func TestStatusLine(t *testing.T) {
	line := StatusLine(indicator.State{Percent: 42, Step: progress.StepQuarter, Phase: "filling", Paused: true, Reversed: true})
	assert.Contains(t, line, "42%")
	assert.Contains(t, line, "step 25%")
	assert.Contains(t, line, "filling")
	assert.Contains(t, line, "paused")
	assert.Contains(t, line, "reversed")

	assert.NotContains(t, StatusLine(indicator.State{Percent: 10}), "paused")
}

func TestProgressTracker(t *testing.T) {
	pt := NewProgressTracker()
	assert.Equal(t, "Step 1/4: Name", pt.GetCurrentStep())
	assert.Equal(t, 0.0, pt.Percent())

	pt.NextStep()
	pt.NextStep()
	assert.Equal(t, "Step 3/4: Appearance", pt.GetCurrentStep())
	assert.Equal(t, 50.0, pt.Percent())

	pt.NextStep()
	pt.NextStep()
	assert.Equal(t, "Complete", pt.GetCurrentStep())
	assert.Equal(t, 100.0, pt.Percent())
}

func TestInitAnswers(t *testing.T) {
	a := &InitAnswers{Mode: indicator.Autoplay.String()}
	assert.True(t, a.Autoplay())
	a.Mode = indicator.Manual.String()
	assert.False(t, a.Autoplay())
	assert.NotNil(t, NewInitForm(a))
}
