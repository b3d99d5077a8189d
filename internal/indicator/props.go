package indicator

import (
	"errors"
	"fmt"

	"k8s.io/utils/ptr"

	"github.com/syllabyte/brainprogress/internal/cycle"
	"github.com/syllabyte/brainprogress/internal/engine"
	"github.com/syllabyte/brainprogress/internal/geometry"
	"github.com/syllabyte/brainprogress/internal/progress"
)

const (
	DefaultWidth  = 200
	DefaultHeight = 200
	DefaultSpeed  = 1.0
)

var (
	// ErrSelfDriven is returned when progress is set on an autoplay indicator.
	ErrSelfDriven = errors.New("indicator is self-driven in autoplay mode")

	// ErrModeChange is returned when Update toggles Autoplay on a live indicator.
	ErrModeChange = errors.New("autoplay cannot be toggled on a live indicator")
)

// Mode tells who writes the progress value.
type Mode int

const (
	// Manual indicators take progress from SetProgress.
	Manual Mode = iota
	// Autoplay indicators take progress from a cycle driver.
	Autoplay
)

func (m Mode) String() string {
	if m == Autoplay {
		return "autoplay"
	}
	return "manual"
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "manual":
		*m = Manual
	case "autoplay":
		*m = Autoplay
	default:
		return fmt.Errorf("unknown mode %q", text)
	}
	return nil
}

// Props configures an indicator.
type Props struct {
	Percent *float64 `json:"percent,omitempty"`
	Value   *float64 `json:"value,omitempty"`
	Max     *float64 `json:"max,omitempty"`

	Width  int `json:"width"`
	Height int `json:"height"`

	ShowLabel   bool `json:"showLabel"`
	Paused      bool `json:"paused"`
	Reverse     bool `json:"reverse"`
	AutoScale   bool `json:"autoScale"`
	InstantFill bool `json:"instantFill"`
	Autoplay    bool `json:"autoplay"`

	AnimationSpeed float64           `json:"animationSpeed"`
	Colors         geometry.Gradient `json:"colors"`
	OnComplete     func()            `json:"-"`

	// Cycle tunes autoplay. Unset fields take the values of cycle.DefaultConfig.
	Cycle cycle.Config `json:"cycle"`

	// Table overrides the reveal table of the geometry. It is read once, at construction.
	Table progress.Table `json:"-"`
}

// Input returns the progress sources of p.
func (p Props) Input() progress.Input {
	return progress.Input{Percent: p.Percent, Value: p.Value, Max: p.Max}
}

func (p Props) withDefaults(provider *geometry.Provider) Props {
	if p.Width <= 0 {
		p.Width = DefaultWidth
	}
	if p.Height <= 0 {
		p.Height = DefaultHeight
	}
	if p.AnimationSpeed <= 0 {
		p.AnimationSpeed = DefaultSpeed
	}
	if p.Colors.Primary == "" {
		p.Colors.Primary = provider.Gradient().Primary
	}
	if p.Colors.Secondary == "" {
		p.Colors.Secondary = provider.Gradient().Secondary
	}
	p.Cycle = p.Cycle.WithDefaults()
	return p
}

func sameInput(a, b progress.Input) bool {
	return ptr.Equal(a.Percent, b.Percent) && ptr.Equal(a.Value, b.Value) && ptr.Equal(a.Max, b.Max)
}

// PathState is the observable visual of one path.
type PathState struct {
	ID          geometry.PathID `json:"id"`
	Opacity     float64         `json:"opacity"`
	FillOpacity float64         `json:"fillOpacity"`
	DashOffset  float64         `json:"dashOffset"`
	Visible     bool            `json:"visible"`
}

func newPathState(id geometry.PathID, v engine.Visual) PathState {
	return PathState{
		ID:          id,
		Opacity:     v.Opacity,
		FillOpacity: v.FillOpacity,
		DashOffset:  v.DashOffset,
		Visible:     !v.IsHidden(),
	}
}

// State is the observable state of an indicator.
type State struct {
	Percent  int           `json:"percent"`
	Progress float64       `json:"progress"`
	Step     progress.Step `json:"step"`
	Paths    []PathState   `json:"paths"`
	Paused   bool          `json:"paused"`
	Reversed bool          `json:"reversed"`
	Mode     Mode          `json:"mode"`
	Phase    string        `json:"phase,omitempty"`
}

// VisibleIDs returns the ids of every visible path.
func (s State) VisibleIDs() []geometry.PathID {
	var out []geometry.PathID
	for _, p := range s.Paths {
		if p.Visible {
			out = append(out, p.ID)
		}
	}
	return out
}
