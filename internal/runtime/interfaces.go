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

package runtime

import (
	"context"

	"github.com/syllabyte/brainprogress/internal/manifest"
	"github.com/syllabyte/brainprogress/internal/store"
)

// RuntimeProvider is the per-invocation dependency container handed to
// commands.
type RuntimeProvider interface {
	// Manifest loads and returns the parsed indicator manifest
	Manifest(ctx context.Context) (*manifest.Manifest, error)

	// Store returns the progress store
	Store() (store.Store, error)

	// Close releases resources held by the runtime
	Close() error
}

// ManifestLoader loads indicator manifests.
type ManifestLoader interface {
	// Load reads and parses a manifest file
	Load(ctx context.Context, path string) (*manifest.Manifest, error)

	// Save writes a manifest to a file
	Save(manifest *manifest.Manifest, path string) error
}

// LoggerProvider defines the interface for logging operations.
type LoggerProvider interface {
	Debug(msg string, keyvals ...interface{})
	Info(msg string, keyvals ...interface{})
	Warn(msg string, keyvals ...interface{})
	Error(msg string, keyvals ...interface{})
	Fatal(msg string, keyvals ...interface{})

	// With returns a new logger with the given key-value pairs
	With(keyvals ...interface{}) LoggerProvider
}

// FileLoader is the ManifestLoader backed by the manifest package.
type FileLoader struct{}

// Load implements ManifestLoader.
func (FileLoader) Load(ctx context.Context, path string) (*manifest.Manifest, error) {
	return manifest.Load(ctx, path)
}

// Save implements ManifestLoader.
func (FileLoader) Save(m *manifest.Manifest, path string) error {
	return manifest.Save(m, path)
}
