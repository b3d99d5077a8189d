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

// Package logging wires the charm logger and its metrics hooks into command contexts.
package logging

import (
	"context"

	"github.com/charmbracelet/log"
)

// loggerKey is a private context key for storing the logger
type loggerKey struct{}

// observableLoggerKey is a private context key for storing the observable logger
type observableLoggerKey struct{}

// WithLogger returns a child context that carries the provided logger
func WithLogger(ctx context.Context, logger *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// WithObservableLogger returns a child context that carries the provided observable logger
func WithObservableLogger(ctx context.Context, logger *ObservableLogger) context.Context {
	// Also store the underlying logger for backward compatibility
	ctx = WithLogger(ctx, logger.logger)
	return context.WithValue(ctx, observableLoggerKey{}, logger)
}

// From extracts a logger from the context, or nil if absent
func From(ctx context.Context) *log.Logger {
	if v := ctx.Value(loggerKey{}); v != nil {
		if lgr, ok := v.(*log.Logger); ok {
			return lgr
		}
	}
	return nil
}

// FromObservable extracts an observable logger from the context, or nil if absent
func FromObservable(ctx context.Context) *ObservableLogger {
	if v := ctx.Value(observableLoggerKey{}); v != nil {
		if lgr, ok := v.(*ObservableLogger); ok {
			return lgr
		}
	}
	return nil
}
