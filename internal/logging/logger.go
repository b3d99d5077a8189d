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
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

const (
	// LogPrefix is prepended to every log line.
	LogPrefix = "brainprogress"

	// LogTimeFormat is the timestamp layout of log lines.
	LogTimeFormat = time.Kitchen
)

// SetupCharmLogger configures the Charm Bracelet logger based on the provided command-line flags.
func SetupCharmLogger(cmd *cobra.Command, logLevel string, noColor, quiet bool) error {
	// Quiet mode: disable all logging by sending output to io.Discard
	if quiet {
		cmd.SetContext(WithObservableLogger(cmd.Context(), NewDiscardLogger()))
		return nil
	}

	level, err := log.ParseLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}

	options := log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      LogTimeFormat,
		Prefix:          LogPrefix,
		ReportCaller:    level == log.DebugLevel, // Only show caller for debug level
	}
	if noColor {
		options.Formatter = log.TextFormatter
	}

	logger := log.NewWithOptions(os.Stderr, options)

	styles := log.DefaultStyles()
	styles.Levels[log.InfoLevel] = styles.Levels[log.InfoLevel].Foreground(lipgloss.Color("#06c9a1"))
	styles.Levels[log.WarnLevel] = styles.Levels[log.WarnLevel].Foreground(lipgloss.Color("#ffff00"))
	styles.Levels[log.ErrorLevel] = styles.Levels[log.ErrorLevel].Foreground(lipgloss.Color("#ff0000"))
	styles.Levels[log.FatalLevel] = styles.Levels[log.FatalLevel].Foreground(lipgloss.Color("#ff0000")).Bold(true)

	// Highlight the keys the engine and driver log most
	for key, color := range map[string]string{
		"step":  "#007afc",
		"path":  "#00ffff",
		"state": "#ff00ff",
		"file":  "#ff00ff",
		"err":   "#ff0000",
	} {
		styles.Keys[key] = styles.Keys[key].Foreground(lipgloss.Color(color))
	}

	logger.SetStyles(styles)

	observableLogger := NewObservableLogger(logger)
	collector := NewMetricsCollector()
	collector.AddHook(NewLogExporter(logger))
	observableLogger.AddHook(collector)

	cmd.SetContext(WithObservableLogger(cmd.Context(), observableLogger))
	return nil
}

// NewDiscardLogger returns an observable logger that writes nowhere and has no hooks.
func NewDiscardLogger() *ObservableLogger {
	return NewObservableLogger(log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel}))
}

// GetLogger retrieves the logger from the command context
func GetLogger(cmd *cobra.Command) *log.Logger {
	if logger := From(cmd.Context()); logger != nil {
		return logger
	}
	return log.New(os.Stderr)
}

// GetObservableLogger retrieves the observable logger from the command context
func GetObservableLogger(cmd *cobra.Command) *ObservableLogger {
	if obsLogger := FromObservable(cmd.Context()); obsLogger != nil {
		return obsLogger
	}
	return NewObservableLogger(log.New(os.Stderr))
}
