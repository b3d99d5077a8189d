// Package store persists the last progress value of named indicators.
package store

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/syllabyte/brainprogress/internal/progress"
)

// KeyPrefix is prepended to every indicator id.
const KeyPrefix = "brain_progress_"

var (
	// ErrNotFound is returned when no progress is saved for an id.
	ErrNotFound = errors.New("no saved progress")

	// ErrInvalidID is returned for an empty or blank id.
	ErrInvalidID = errors.New("invalid indicator id")
)

// Entry is one saved progress value.
type Entry struct {
	ID        string    `yaml:"id" json:"id"`
	Percent   float64   `yaml:"percent" json:"percent"`
	UpdatedAt time.Time `yaml:"updatedAt" json:"updatedAt"`
}

// Store saves and restores progress by indicator id.
type Store interface {
	Save(ctx context.Context, id string, percent float64) error
	Load(ctx context.Context, id string) (Entry, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]Entry, error)
}

// Key returns the storage key of id.
func Key(id string) string {
	return KeyPrefix + id
}

func validateID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

func sortEntries(entries []Entry) []Entry {
	slices.SortFunc(entries, func(a, b Entry) int { return strings.Compare(a.ID, b.ID) })
	return entries
}

// MemoryStore keeps entries for the lifetime of the process.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
	clock   clock.PassiveClock
}

// NewMemoryStore creates an empty in-memory store. A nil clock uses real time.
func NewMemoryStore(clk clock.PassiveClock) *MemoryStore {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &MemoryStore{entries: make(map[string]Entry), clock: clk}
}

// Save implements Store.
func (m *MemoryStore) Save(_ context.Context, id string, percent float64) error {
	if err := validateID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[Key(id)] = Entry{ID: id, Percent: progress.Clamp(percent), UpdatedAt: m.clock.Now()}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(_ context.Context, id string) (Entry, error) {
	if err := validateID(id); err != nil {
		return Entry{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[Key(id)]
	if !ok {
		return Entry{}, fmt.Errorf("%w for %q", ErrNotFound, id)
	}
	return e, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(_ context.Context, id string) error {
	if err := validateID(id); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.entries[Key(id)]; !ok {
		return fmt.Errorf("%w for %q", ErrNotFound, id)
	}
	delete(m.entries, Key(id))
	return nil
}

// List implements Store.
func (m *MemoryStore) List(_ context.Context) ([]Entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	return sortEntries(out), nil
}
