package manifest

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"k8s.io/utils/ptr"

	"github.com/syllabyte/brainprogress/internal/cycle"
	"github.com/syllabyte/brainprogress/internal/geometry"
	"github.com/syllabyte/brainprogress/internal/indicator"
	"github.com/syllabyte/brainprogress/internal/progress"
)

// Table converts the steps override into a reveal table. It returns nil when
// the manifest keeps the artwork's table.
func (m *Manifest) Table() (progress.Table, error) {
	if len(m.Indicator.Steps) == 0 {
		return nil, nil
	}
	provider := geometry.Default()
	reveal := make(geometry.RevealTable, len(m.Indicator.Steps))
	for _, key := range slices.Sorted(maps.Keys(m.Indicator.Steps)) {
		step, err := progress.ParseStep(key)
		if err != nil {
			return nil, err
		}
		ids := make([]geometry.PathID, 0, len(m.Indicator.Steps[key]))
		for _, raw := range m.Indicator.Steps[key] {
			id := geometry.PathID(raw)
			if _, ok := provider.Lookup(id); !ok {
				return nil, fmt.Errorf("step %s: unknown path %s", step, id)
			}
			ids = append(ids, id)
		}
		reveal[int(step)] = ids
	}
	return progress.NewTable(reveal)
}

// CycleConfig returns the autoplay timing.
func (m *Manifest) CycleConfig() cycle.Config {
	c := m.Indicator.Cycle
	return cycle.Config{
		Rate:          c.Rate,
		Speed:         c.Speed,
		PauseAtPeak:   ptr.To(time.Duration(c.PauseAtPeak)),
		PauseAtTrough: ptr.To(time.Duration(c.PauseAtTrough)),
		Flip:          cycle.FlipPolicy(c.Flip),
	}
}

// Props converts the manifest into indicator props.
func (m *Manifest) Props() (indicator.Props, error) {
	table, err := m.Table()
	if err != nil {
		return indicator.Props{}, err
	}
	ind := m.Indicator
	return indicator.Props{
		Percent:        ind.Percent,
		Value:          ind.Value,
		Max:            ind.Max,
		Width:          ind.Width,
		Height:         ind.Height,
		ShowLabel:      ind.ShowLabel,
		Paused:         ind.Paused,
		Reverse:        ind.Reverse,
		AutoScale:      ind.AutoScale,
		InstantFill:    ind.InstantFill,
		Autoplay:       ind.Autoplay,
		AnimationSpeed: ind.AnimationSpeed,
		Colors:         geometry.Gradient{Primary: ind.Colors.Primary, Secondary: ind.Colors.Secondary},
		Cycle:          m.CycleConfig(),
		Table:          table,
	}, nil
}
