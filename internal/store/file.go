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

package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
	"k8s.io/utils/clock"

	"github.com/syllabyte/brainprogress/internal/progress"
)

const (
	// EnvStateFile overrides the default state file location.
	EnvStateFile = "BRAINPROGRESS_STATE"

	stateDirName  = "brainprogress"
	stateFileName = "state.yaml"
	stateVersion  = 1
)

// document is the on-disk layout of the state file.
type document struct {
	Version int              `yaml:"version"`
	Entries map[string]Entry `yaml:"entries"`
}

// FileStore keeps entries in a YAML file. Every operation reads the file, so
// several processes may share it; writes replace the file atomically.
type FileStore struct {
	mu    sync.Mutex
	path  string
	clock clock.PassiveClock
}

// DefaultPath resolves the state file location in priority order:
// 1. BRAINPROGRESS_STATE environment variable
// 2. $XDG_STATE_HOME/brainprogress/state.yaml
// 3. ~/.local/state/brainprogress/state.yaml
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvStateFile); p != "" {
		return p, nil
	}

	stateHome := os.Getenv("XDG_STATE_HOME")
	if stateHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to resolve home directory: %w", err)
		}
		stateHome = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(stateHome, stateDirName, stateFileName), nil
}

// NewFileStore creates a store backed by path. An empty path selects DefaultPath.
func NewFileStore(path string, clk clock.PassiveClock) (*FileStore, error) {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return nil, err
		}
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &FileStore{path: path, clock: clk}, nil
}

// Path returns the state file location.
func (f *FileStore) Path() string { return f.path }

// Save implements Store.
func (f *FileStore) Save(ctx context.Context, id string, percent float64) error {
	if err := validateID(id); err != nil {
		return err
	}
	return f.update(ctx, func(doc *document) error {
		doc.Entries[Key(id)] = Entry{ID: id, Percent: progress.Clamp(percent), UpdatedAt: f.clock.Now().UTC()}
		return nil
	})
}

// Load implements Store.
func (f *FileStore) Load(ctx context.Context, id string) (Entry, error) {
	if err := validateID(id); err != nil {
		return Entry{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read(ctx)
	if err != nil {
		return Entry{}, err
	}
	e, ok := doc.Entries[Key(id)]
	if !ok {
		return Entry{}, fmt.Errorf("%w for %q", ErrNotFound, id)
	}
	return e, nil
}

// Delete implements Store.
func (f *FileStore) Delete(ctx context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	return f.update(ctx, func(doc *document) error {
		if _, ok := doc.Entries[Key(id)]; !ok {
			return fmt.Errorf("%w for %q", ErrNotFound, id)
		}
		delete(doc.Entries, Key(id))
		return nil
	})
}

// List implements Store.
func (f *FileStore) List(ctx context.Context) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Entry, 0, len(doc.Entries))
	for key, e := range doc.Entries {
		if e.ID == "" {
			e.ID = strings.TrimPrefix(key, KeyPrefix)
		}
		out = append(out, e)
	}
	return sortEntries(out), nil
}

func (f *FileStore) update(ctx context.Context, mutate func(*document) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, err := f.read(ctx)
	if err != nil {
		return err
	}
	if err := mutate(doc); err != nil {
		return err
	}
	return f.write(doc)
}

func (f *FileStore) read(ctx context.Context) (*document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	doc := &document{Version: stateVersion, Entries: map[string]Entry{}}

	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read state file %s: %w", f.path, err)
	}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse state file %s: %w", f.path, err)
	}
	if doc.Entries == nil {
		doc.Entries = map[string]Entry{}
	}
	return doc, nil
}

func (f *FileStore) write(doc *document) error {
	doc.Version = stateVersion
	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace state file %s: %w", f.path, err)
	}
	return nil
}
