package logging

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer, level log.Level) *ObservableLogger {
	ol := NewObservableLogger(log.NewWithOptions(buf, log.Options{Level: level}))
	ol.AddHook(NewMetricsCollector())
	return ol
}

func TestMetricsCollectorAggregatesByTags(t *testing.T) {
	mc := NewMetricsCollector()
	ctx := context.Background()

	mc.OnMetric(ctx, MetricRenderFrames, 1, map[string]string{"format": "svg"})
	mc.OnMetric(ctx, MetricRenderFrames, 1, map[string]string{"format": "svg"})
	mc.OnMetric(ctx, MetricRenderFrames, 1, map[string]string{"format": "json"})

	snap := mc.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "json", snap[0].Tags["format"])
	assert.Equal(t, int64(1), snap[0].Count)
	assert.Equal(t, "svg", snap[1].Tags["format"])
	assert.Equal(t, 2.0, snap[1].Value)
}

func TestSnapshotIsACopy(t *testing.T) {
	mc := NewMetricsCollector()
	mc.OnMetric(context.Background(), "a", 1, map[string]string{"k": "v"})

	snap := mc.Snapshot()
	snap[0].Tags["k"] = "changed"
	snap[0].Value = 99

	again := mc.Snapshot()
	assert.Equal(t, "v", again[0].Tags["k"])
	assert.Equal(t, 1.0, again[0].Value)
}

func TestObservableLoggerCountsLogsAboveLevel(t *testing.T) {
	var buf bytes.Buffer
	ol := newTestLogger(&buf, log.InfoLevel)

	ol.Debug("hidden")
	ol.Info("shown")
	ol.Warn("shown too")

	var logs float64
	for _, m := range ol.Collector().Snapshot() {
		if m.Name == MetricLogs {
			logs += m.Value
		}
	}
	assert.Equal(t, 2.0, logs)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestObservableLoggerErrorTags(t *testing.T) {
	var buf bytes.Buffer
	ol := newTestLogger(&buf, log.DebugLevel)

	ol.Error("render failed", "component", "render", "err", errors.New("boom"))

	var found bool
	for _, m := range ol.Collector().Snapshot() {
		if m.Name == MetricErrors {
			found = true
			assert.Equal(t, "render", m.Tags["component"])
		}
	}
	assert.True(t, found)
}

func TestWithSharesHooks(t *testing.T) {
	var buf bytes.Buffer
	ol := newTestLogger(&buf, log.DebugLevel)

	child := ol.With("component", "engine")
	child.Count(MetricTransitionsScheduled, nil)

	snap := ol.Collector().Snapshot()
	require.Len(t, snap, 1)
	assert.Equal(t, MetricTransitionsScheduled, snap[0].Name)
}

func TestLogExporterWritesDebugLines(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	mc := NewMetricsCollector()
	mc.AddHook(NewLogExporter(logger))
	mc.OnMetric(context.Background(), MetricCycleTransitions, 3, map[string]string{"to": "draining"})

	require.NoError(t, mc.ExportMetrics(context.Background()))
	assert.Contains(t, buf.String(), MetricCycleTransitions)
	assert.Contains(t, buf.String(), "draining")
}

func TestCloseStopsRecording(t *testing.T) {
	mc := NewMetricsCollector()
	require.NoError(t, mc.Close())
	mc.OnMetric(context.Background(), "after", 1, nil)
	assert.Empty(t, mc.Snapshot())
}

func TestSetupCharmLogger(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	require.NoError(t, SetupCharmLogger(cmd, "debug", true, false))
	ol := GetObservableLogger(cmd)
	require.NotNil(t, ol.Collector())
	assert.Equal(t, log.DebugLevel, GetLogger(cmd).GetLevel())

	assert.Error(t, SetupCharmLogger(cmd, "loud", false, false))
}

func TestSetupCharmLoggerQuiet(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())

	require.NoError(t, SetupCharmLogger(cmd, "debug", false, true))
	assert.Nil(t, GetObservableLogger(cmd).Collector())
}
