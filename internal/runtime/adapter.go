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

// Package runtime provides the runtime implementation for the brainprogress command line.
package runtime

import (
	"io"

	"github.com/charmbracelet/log"
)

// LoggerAdapter exposes the charm logger of the command line, the one
// returned by ObservableLogger.Logger, as the runtime's LoggerProvider.
type LoggerAdapter struct {
	logger *log.Logger
}

// NewLoggerAdapter wraps logger. A nil logger discards every entry, so a
// Runtime built without a command still logs safely.
func NewLoggerAdapter(logger *log.Logger) LoggerProvider {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
	}
	return &LoggerAdapter{logger: logger}
}

func (la *LoggerAdapter) Debug(msg string, keyvals ...interface{}) {
	la.logger.Debug(msg, keyvals...)
}

func (la *LoggerAdapter) Info(msg string, keyvals ...interface{}) {
	la.logger.Info(msg, keyvals...)
}

func (la *LoggerAdapter) Warn(msg string, keyvals ...interface{}) {
	la.logger.Warn(msg, keyvals...)
}

func (la *LoggerAdapter) Error(msg string, keyvals ...interface{}) {
	la.logger.Error(msg, keyvals...)
}

// Fatal logs msg and exits the process.
func (la *LoggerAdapter) Fatal(msg string, keyvals ...interface{}) {
	la.logger.Fatal(msg, keyvals...)
}

// With returns an adapter whose entries carry keyvals, such as the manifest
// path or the indicator id. The receiver is unchanged.
func (la *LoggerAdapter) With(keyvals ...interface{}) LoggerProvider {
	return &LoggerAdapter{logger: la.logger.With(keyvals...)}
}
