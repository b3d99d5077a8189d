package manifest

import (
	"encoding/json"
	"time"
)

// Manifest defines the structure of an indicator manifest.
type Manifest struct {
	APIVersion string            `json:"apiVersion" mapstructure:"apiVersion"`
	Name       string            `json:"name,omitempty" mapstructure:"name"`
	EnvFile    string            `json:"envFile,omitempty" mapstructure:"envFile"`
	Variables  map[string]string `json:"variables,omitempty" mapstructure:"variables"`
	Indicator  Indicator         `json:"indicator" mapstructure:"indicator"`
}

// Indicator holds the indicator properties of a manifest.
type Indicator struct {
	Percent *float64 `json:"percent,omitempty" mapstructure:"percent"`
	Value   *float64 `json:"value,omitempty" mapstructure:"value"`
	Max     *float64 `json:"max,omitempty" mapstructure:"max"`

	Width  int `json:"width,omitempty" mapstructure:"width"`
	Height int `json:"height,omitempty" mapstructure:"height"`

	ShowLabel   bool `json:"showLabel,omitempty" mapstructure:"showLabel"`
	Paused      bool `json:"paused,omitempty" mapstructure:"paused"`
	Reverse     bool `json:"reverse,omitempty" mapstructure:"reverse"`
	AutoScale   bool `json:"autoScale,omitempty" mapstructure:"autoScale"`
	InstantFill bool `json:"instantFill,omitempty" mapstructure:"instantFill"`
	Autoplay    bool `json:"autoplay,omitempty" mapstructure:"autoplay"`

	AnimationSpeed float64 `json:"animationSpeed,omitempty" mapstructure:"animationSpeed"`
	Colors         Colors  `json:"colors,omitzero" mapstructure:"colors"`
	Cycle          Cycle   `json:"cycle,omitzero" mapstructure:"cycle"`

	// Steps overrides the reveal table. Keys are step thresholds.
	Steps map[string][]string `json:"steps,omitempty" mapstructure:"steps"`
}

// Colors holds the gradient stops.
type Colors struct {
	Primary   string `json:"primary,omitempty" mapstructure:"primary"`
	Secondary string `json:"secondary,omitempty" mapstructure:"secondary"`
}

// Cycle tunes autoplay.
type Cycle struct {
	Rate          float64  `json:"rate,omitempty" mapstructure:"rate"`
	Speed         float64  `json:"speed,omitempty" mapstructure:"speed"`
	PauseAtPeak   Duration `json:"pauseAtPeak,omitempty" mapstructure:"pauseAtPeak"`
	PauseAtTrough Duration `json:"pauseAtTrough,omitempty" mapstructure:"pauseAtTrough"`
	Flip          string   `json:"flip,omitempty" mapstructure:"flip"`
}

// Duration is a time.Duration written as a Go duration string.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON accepts a duration string or a number of milliseconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := toDuration(raw)
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}
