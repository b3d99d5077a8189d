package ui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/syllabyte/brainprogress/internal/indicator"
)

// ProgressTracker helps track steps during interactive flows
type ProgressTracker struct {
	currentStep int
	steps       []string
}

// NewProgressTracker creates a tracker over the init wizard steps
func NewProgressTracker() *ProgressTracker {
	return &ProgressTracker{
		steps: []string{
			"Name",
			"Mode",
			"Appearance",
			"Summary",
		},
	}
}

// NextStep increments the current step
func (pt *ProgressTracker) NextStep() { pt.currentStep++ }

// GetCurrentStep returns the current step
func (pt *ProgressTracker) GetCurrentStep() string {
	if pt.currentStep >= len(pt.steps) {
		return "Complete"
	}
	return fmt.Sprintf("Step %d/%d: %s", pt.currentStep+1, len(pt.steps), pt.steps[pt.currentStep])
}

// Percent returns the share of completed steps.
func (pt *ProgressTracker) Percent() float64 {
	return math.Min(100, float64(pt.currentStep)/float64(len(pt.steps))*100)
}

// Shade maps an opacity in [0,1] to a block glyph.
func Shade(opacity float64) rune {
	if opacity <= 0 || math.IsNaN(opacity) {
		return Shades[0]
	}
	i := int(math.Ceil(opacity * float64(len(Shades)-1)))
	return Shades[min(i, len(Shades)-1)]
}

// PathStrip renders one glyph per path, shaded by opacity and colored with
// the gradient from primary to secondary.
func PathStrip(paths []indicator.PathState, primary, secondary string) string {
	var sb strings.Builder
	half := len(paths) / 2
	for i, p := range paths {
		color := primary
		if i >= half && half > 0 {
			color = secondary
		}
		sb.WriteString(lipgloss.NewStyle().
			Foreground(lipgloss.Color(color)).
			Render(string(Shade(p.Opacity))))
	}
	return sb.String()
}

// Bar renders a horizontal bar of width cells filled to percent.
func Bar(percent float64, width int, fill lipgloss.Style) string {
	if width <= 0 {
		width = BarWidth
	}
	filled := int(math.Round(math.Max(0, math.Min(100, percent)) / 100 * float64(width)))
	empty := lipgloss.NewStyle().Foreground(lipgloss.Color(ColorBrightGray))
	return fill.Render(strings.Repeat("█", filled)) + empty.Render(strings.Repeat("░", width-filled))
}

// StatusLine summarizes a state as "42% · step 25% · filling".
func StatusLine(st indicator.State) string {
	parts := []string{fmt.Sprintf("%3d%%", st.Percent), "step " + st.Step.String()}
	if st.Phase != "" {
		parts = append(parts, GetPhaseStyle(st.Phase).Render(st.Phase))
	}
	if st.Paused {
		parts = append(parts, lipgloss.NewStyle().Foreground(lipgloss.Color(ColorYellow)).Render("paused"))
	}
	if st.Reversed {
		parts = append(parts, "reversed")
	}
	return strings.Join(parts, " · ")
}
