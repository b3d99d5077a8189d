package frames

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"

	"github.com/syllabyte/brainprogress/internal/cli"
	"github.com/syllabyte/brainprogress/internal/indicator"
	"github.com/syllabyte/brainprogress/internal/render"
	"github.com/syllabyte/brainprogress/internal/runtime"
	"github.com/syllabyte/brainprogress/internal/tui"
)

func simulate(t *testing.T, props indicator.Props) *cli.Simulation {
	t.Helper()
	sim, err := cli.NewPropsSimulation(runtime.New(), props)
	require.NoError(t, err)
	return sim
}

func TestSpanOfDemoCycle(t *testing.T) {
	sim := simulate(t, tui.DemoProps())
	cfg := sim.Indicator.Driver().Config()
	assert.Equal(t, 2*time.Second+time.Second+cfg.Trough(), Span(sim.Indicator))
}

func TestExportDemo(t *testing.T) {
	dir := t.TempDir()
	sim := simulate(t, tui.DemoProps())
	cache := render.NewCache(0, sim.Clock, nil)

	result, err := Export(context.Background(), sim, cache, Options{FPS: 10, Duration: time.Second, Output: dir})
	require.NoError(t, err)

	assert.Equal(t, 11, result.Frames)
	assert.Equal(t, time.Second, result.Span)
	assert.Greater(t, result.Unique, 1)
	assert.LessOrEqual(t, result.Unique, result.Frames)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 11)

	var total int64
	for i := range 11 {
		info, err := os.Stat(filepath.Join(dir, fmt.Sprintf(FileNamePattern, i)))
		require.NoError(t, err)
		total += info.Size()
	}
	assert.Equal(t, total, result.Bytes)
	assert.Equal(t, 100, sim.Indicator.State().Percent, "one second fills the demo")
}

func TestExportManualSettles(t *testing.T) {
	sim := simulate(t, indicator.Props{})
	cache := render.NewCache(0, sim.Clock, nil)

	result, err := Export(context.Background(), sim, cache, Options{FPS: 30, Output: t.TempDir(), Percent: ptr.To(100.0)})
	require.NoError(t, err)

	assert.Greater(t, result.Frames, 2)
	assert.True(t, sim.Indicator.Settled())
	assert.Equal(t, 100, sim.Indicator.State().Percent)
}

func TestExportRejectsHugeExports(t *testing.T) {
	sim := simulate(t, tui.DemoProps())
	_, err := Export(context.Background(), sim, render.NewCache(0, sim.Clock, nil),
		Options{FPS: 1000, Duration: time.Hour, Output: t.TempDir()})
	assert.ErrorContains(t, err, "the limit is")
}

func TestExportRejectsFrameRateOutOfRange(t *testing.T) {
	tests := []struct {
		name string
		fps  int
	}{
		{"zero", 0},
		{"negative", -5},
		{"above cap", MaxFPS + 1},
		{"sub-nanosecond interval", 2_000_000_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			sim := simulate(t, tui.DemoProps())
			result, err := Export(context.Background(), sim, render.NewCache(0, sim.Clock, nil),
				Options{FPS: tt.fps, Duration: time.Second, Output: dir})
			assert.ErrorContains(t, err, "frame rate must be between 1 and")
			assert.Zero(t, result.Frames)

			entries, err := os.ReadDir(dir)
			require.NoError(t, err)
			assert.Empty(t, entries)
		})
	}
}

func TestExportStopsOnCancel(t *testing.T) {
	sim := simulate(t, tui.DemoProps())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := Export(ctx, sim, render.NewCache(0, sim.Clock, nil), Options{FPS: 10, Duration: time.Second, Output: t.TempDir()})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, result.Frames)
}
