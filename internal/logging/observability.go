// Copyright 2025 The Brainprogress Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"context"
	"maps"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// Metric names emitted by the animation packages.
const (
	MetricLogs                  = "brainprogress.logs.count"
	MetricErrors                = "brainprogress.errors.count"
	MetricTransitionsScheduled  = "brainprogress.transitions.scheduled"
	MetricTransitionsSuperseded = "brainprogress.transitions.superseded"
	MetricCycleTransitions      = "brainprogress.cycle.transitions"
	MetricRenderFrames          = "brainprogress.render.frames"
	MetricRenderCacheHits       = "brainprogress.render.cache_hits"
)

// ObservabilityHook defines an interface for observability hooks that can be
// attached to the logging system to provide metrics and monitoring.
type ObservabilityHook interface {
	// OnLog is called whenever a log event occurs
	OnLog(ctx context.Context, level log.Level, msg string, keyvals []interface{})

	// OnError is called whenever an error-level log occurs
	OnError(ctx context.Context, msg string, err error, keyvals []interface{})

	// OnMetric is called to record custom metrics
	OnMetric(ctx context.Context, name string, value float64, tags map[string]string)

	// Close cleans up resources used by the hook
	Close() error
}

// MetricsCollector collects and exports metrics from log events.
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics map[string]*Metric
	hooks   []MetricsHook
}

// Metric represents a collected metric with its metadata.
type Metric struct {
	Name      string            `json:"name"`
	Value     float64           `json:"value"`
	Tags      map[string]string `json:"tags"`
	Timestamp time.Time         `json:"timestamp"`
	Count     int64             `json:"count"`
}

// MetricsHook defines an interface for metrics exporters.
type MetricsHook interface {
	// Export exports collected metrics to an external system
	Export(ctx context.Context, metrics []*Metric) error

	// Close cleans up resources
	Close() error
}

// NewMetricsCollector creates a new metrics collector.
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metric),
		hooks:   make([]MetricsHook, 0),
	}
}

// AddHook adds a metrics export hook.
func (mc *MetricsCollector) AddHook(hook MetricsHook) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.hooks = append(mc.hooks, hook)
}

// OnLog implements ObservabilityHook.
func (mc *MetricsCollector) OnLog(ctx context.Context, level log.Level, msg string, keyvals []interface{}) {
	mc.recordMetric(MetricLogs, 1, map[string]string{
		"level": level.String(),
	})
}

// OnError implements ObservabilityHook.
func (mc *MetricsCollector) OnError(ctx context.Context, msg string, err error, keyvals []interface{}) {
	tags := map[string]string{
		"error_type": "unknown",
	}

	// Extract error context from keyvals
	for i := 0; i < len(keyvals)-1; i += 2 {
		if key, ok := keyvals[i].(string); ok {
			if value, ok := keyvals[i+1].(string); ok {
				switch key {
				case "component", "operation", "cmd":
					tags[key] = value
				}
			}
		}
	}

	mc.recordMetric(MetricErrors, 1, tags)
}

// OnMetric implements ObservabilityHook.
func (mc *MetricsCollector) OnMetric(ctx context.Context, name string, value float64, tags map[string]string) {
	mc.recordMetric(name, value, tags)
}

// recordMetric records a metric with aggregation.
func (mc *MetricsCollector) recordMetric(name string, value float64, tags map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	if mc.metrics == nil {
		return
	}

	key := buildMetricKey(name, tags)

	now := time.Now()
	if existing, exists := mc.metrics[key]; exists {
		existing.Value += value
		existing.Count++
		existing.Timestamp = now
		return
	}

	mc.metrics[key] = &Metric{
		Name:      name,
		Value:     value,
		Tags:      maps.Clone(tags),
		Timestamp: now,
		Count:     1,
	}
}

// buildMetricKey creates a unique key for a metric based on name and sorted tags.
func buildMetricKey(name string, tags map[string]string) string {
	var sb strings.Builder
	sb.WriteString(name)
	for _, k := range slices.Sorted(maps.Keys(tags)) {
		sb.WriteString(":" + k + "=" + tags[k])
	}
	return sb.String()
}

// Snapshot returns a copy of every collected metric, sorted by name.
func (mc *MetricsCollector) Snapshot() []Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	out := make([]Metric, 0, len(mc.metrics))
	for _, m := range mc.metrics {
		c := *m
		c.Tags = maps.Clone(m.Tags)
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return buildMetricKey(out[i].Name, out[i].Tags) < buildMetricKey(out[j].Name, out[j].Tags)
	})
	return out
}

// ExportMetrics exports all collected metrics to registered hooks.
func (mc *MetricsCollector) ExportMetrics(ctx context.Context) error {
	snapshot := mc.Snapshot()
	metrics := make([]*Metric, len(snapshot))
	for i := range snapshot {
		metrics[i] = &snapshot[i]
	}

	mc.mu.RLock()
	hooks := slices.Clone(mc.hooks)
	mc.mu.RUnlock()

	for _, hook := range hooks {
		if err := hook.Export(ctx, metrics); err != nil {
			// Continue with the remaining hooks
			continue
		}
	}

	return nil
}

// Close implements ObservabilityHook.
func (mc *MetricsCollector) Close() error {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	for _, hook := range mc.hooks {
		hook.Close()
	}

	mc.hooks = nil
	mc.metrics = nil
	return nil
}

// LogExporter writes metrics to a logger at debug level.
type LogExporter struct {
	logger *log.Logger
}

// NewLogExporter creates a metrics hook backed by logger.
func NewLogExporter(logger *log.Logger) *LogExporter {
	return &LogExporter{logger: logger}
}

// Export implements MetricsHook.
func (le *LogExporter) Export(ctx context.Context, metrics []*Metric) error {
	for _, m := range metrics {
		keyvals := []interface{}{"value", m.Value, "count", m.Count}
		for _, k := range slices.Sorted(maps.Keys(m.Tags)) {
			keyvals = append(keyvals, k, m.Tags[k])
		}
		le.logger.Debug(m.Name, keyvals...)
	}
	return nil
}

// Close implements MetricsHook.
func (le *LogExporter) Close() error { return nil }

// ObservableLogger wraps a logger with observability hooks.
type ObservableLogger struct {
	logger *log.Logger
	hooks  []ObservabilityHook
	mu     sync.RWMutex
}

// NewObservableLogger creates a new observable logger.
func NewObservableLogger(logger *log.Logger) *ObservableLogger {
	return &ObservableLogger{
		logger: logger,
		hooks:  make([]ObservabilityHook, 0),
	}
}

// AddHook adds an observability hook.
func (ol *ObservableLogger) AddHook(hook ObservabilityHook) {
	ol.mu.Lock()
	defer ol.mu.Unlock()
	ol.hooks = append(ol.hooks, hook)
}

// Logger returns the underlying charm logger.
func (ol *ObservableLogger) Logger() *log.Logger { return ol.logger }

// Collector returns the first metrics collector attached to the logger, if any.
func (ol *ObservableLogger) Collector() *MetricsCollector {
	ol.mu.RLock()
	defer ol.mu.RUnlock()
	for _, hook := range ol.hooks {
		if mc, ok := hook.(*MetricsCollector); ok {
			return mc
		}
	}
	return nil
}

// Debug logs a debug message and notifies hooks.
func (ol *ObservableLogger) Debug(msg string, keyvals ...interface{}) {
	ol.logger.Debug(msg, keyvals...)
	ol.notifyHooks(context.Background(), log.DebugLevel, msg, keyvals)
}

// Info logs an info message and notifies hooks.
func (ol *ObservableLogger) Info(msg string, keyvals ...interface{}) {
	ol.logger.Info(msg, keyvals...)
	ol.notifyHooks(context.Background(), log.InfoLevel, msg, keyvals)
}

// Warn logs a warning message and notifies hooks.
func (ol *ObservableLogger) Warn(msg string, keyvals ...interface{}) {
	ol.logger.Warn(msg, keyvals...)
	ol.notifyHooks(context.Background(), log.WarnLevel, msg, keyvals)
}

// Error logs an error message and notifies hooks.
func (ol *ObservableLogger) Error(msg string, keyvals ...interface{}) {
	ol.logger.Error(msg, keyvals...)
	ol.notifyHooks(context.Background(), log.ErrorLevel, msg, keyvals)

	var err error
	for i := 0; i < len(keyvals)-1; i += 2 {
		if key, ok := keyvals[i].(string); ok && key == "err" {
			if e, ok := keyvals[i+1].(error); ok {
				err = e
				break
			}
		}
	}

	ol.notifyErrorHooks(context.Background(), msg, err, keyvals)
}

// With returns a new logger with additional key-value pairs.
func (ol *ObservableLogger) With(keyvals ...interface{}) *ObservableLogger {
	ol.mu.RLock()
	defer ol.mu.RUnlock()
	return &ObservableLogger{
		logger: ol.logger.With(keyvals...),
		hooks:  ol.hooks, // Share hooks with the parent logger
	}
}

// Metric records a custom metric.
func (ol *ObservableLogger) Metric(ctx context.Context, name string, value float64, tags map[string]string) {
	ol.mu.RLock()
	hooks := slices.Clone(ol.hooks)
	ol.mu.RUnlock()

	for _, hook := range hooks {
		hook.OnMetric(ctx, name, value, tags)
	}
}

// Count records a single occurrence of name.
func (ol *ObservableLogger) Count(name string, tags map[string]string) {
	ol.Metric(context.Background(), name, 1, tags)
}

// notifyHooks notifies all registered hooks about a log event.
func (ol *ObservableLogger) notifyHooks(ctx context.Context, level log.Level, msg string, keyvals []interface{}) {
	if level < ol.logger.GetLevel() {
		return
	}

	ol.mu.RLock()
	hooks := slices.Clone(ol.hooks)
	ol.mu.RUnlock()

	for _, hook := range hooks {
		hook.OnLog(ctx, level, msg, keyvals)
	}
}

// notifyErrorHooks notifies all registered hooks about an error event.
func (ol *ObservableLogger) notifyErrorHooks(ctx context.Context, msg string, err error, keyvals []interface{}) {
	ol.mu.RLock()
	hooks := slices.Clone(ol.hooks)
	ol.mu.RUnlock()

	for _, hook := range hooks {
		hook.OnError(ctx, msg, err, keyvals)
	}
}

// Close closes all observability hooks.
func (ol *ObservableLogger) Close() error {
	ol.mu.Lock()
	defer ol.mu.Unlock()

	for _, hook := range ol.hooks {
		hook.Close()
	}

	ol.hooks = nil
	return nil
}
