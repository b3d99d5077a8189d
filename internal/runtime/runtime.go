package runtime

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/utils/clock"

	"github.com/syllabyte/brainprogress/internal/indicator"
	"github.com/syllabyte/brainprogress/internal/logging"
	"github.com/syllabyte/brainprogress/internal/manifest"
	"github.com/syllabyte/brainprogress/internal/store"
)

// runtimeKey is a private context key for storing the Runtime in context
type runtimeKey struct{}

// Runtime holds per-invocation state and lazily initialized resources.
// It implements the RuntimeProvider interface for dependency injection.
type Runtime struct {
	manifestPath string
	statePath    string

	logger     LoggerProvider
	observable *logging.ObservableLogger
	clock      clock.WithTicker
	loader     ManifestLoader

	manifest *manifest.Manifest
	store    store.Store
	mu       sync.Mutex

	// Factory for the progress store (enables testing)
	storeFactory func(*Runtime) (store.Store, error)
}

// Option defines a functional option for configuring Runtime.
type Option func(*Runtime)

// WithManifestPath sets the manifest file path.
func WithManifestPath(manifestPath string) Option {
	return func(r *Runtime) {
		r.manifestPath = manifestPath
	}
}

// WithStatePath sets the progress state file path. Empty selects the default.
func WithStatePath(statePath string) Option {
	return func(r *Runtime) {
		r.statePath = statePath
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger LoggerProvider) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithObservableLogger sets the logger handed to indicators and drivers.
func WithObservableLogger(logger *logging.ObservableLogger) Option {
	return func(r *Runtime) {
		r.observable = logger
	}
}

// WithClock sets the clock used by indicators and the store.
func WithClock(c clock.WithTicker) Option {
	return func(r *Runtime) {
		r.clock = c
	}
}

// WithManifestLoader sets a custom manifest loader for testing.
func WithManifestLoader(loader ManifestLoader) Option {
	return func(r *Runtime) {
		r.loader = loader
	}
}

// WithStoreFactory sets a custom store factory for testing.
func WithStoreFactory(factory func(*Runtime) (store.Store, error)) Option {
	return func(r *Runtime) {
		r.storeFactory = factory
	}
}

// defaultStoreFactory opens the file store at the configured state path.
func defaultStoreFactory(r *Runtime) (store.Store, error) {
	return store.NewFileStore(r.statePath, r.clock)
}

// New constructs a Runtime with functional options.
func New(options ...Option) *Runtime {
	r := &Runtime{
		manifestPath: manifest.DefaultManifestPath,
		clock:        clock.RealClock{},
		loader:       FileLoader{},
		storeFactory: defaultStoreFactory,
	}

	for _, option := range options {
		option(r)
	}

	if r.observable == nil {
		r.observable = logging.NewDiscardLogger()
	}
	if r.logger == nil {
		r.logger = NewLoggerAdapter(r.observable.Logger())
	}

	return r
}

// WithRuntime returns a new context carrying the provided runtime.
func WithRuntime(ctx context.Context, rt *Runtime) context.Context {
	return context.WithValue(ctx, runtimeKey{}, rt)
}

// FromRuntime extracts a Runtime from the command context, or nil if absent.
func FromRuntime(ctx context.Context) *Runtime {
	if v := ctx.Value(runtimeKey{}); v != nil {
		if rt, ok := v.(*Runtime); ok {
			return rt
		}
	}
	return nil
}

// Manifest loads and memoizes the manifest at the configured path.
func (r *Runtime) Manifest(ctx context.Context) (*manifest.Manifest, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.manifest != nil {
		return r.manifest, nil
	}
	if r.manifestPath == "" {
		return nil, fmt.Errorf("manifest path must be set")
	}
	m, err := r.loader.Load(ctx, r.manifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	r.logger.Debug("manifest loaded", "path", r.manifestPath, "name", m.Name)
	r.manifest = m
	return m, nil
}

// Store returns the memoized progress store.
func (r *Runtime) Store() (store.Store, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.store != nil {
		return r.store, nil
	}

	s, err := r.storeFactory(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress store (path=%q): %w", r.statePath, err)
	}
	r.store = s
	return r.store, nil
}

// Indicator builds an indicator from the manifest. Named manifests restore and
// persist progress through the store. Extra options apply last.
func (r *Runtime) Indicator(ctx context.Context, opts ...indicator.Option) (*indicator.Indicator, error) {
	m, err := r.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	props, err := m.Props()
	if err != nil {
		return nil, fmt.Errorf("invalid indicator props: %w", err)
	}

	base := []indicator.Option{
		indicator.WithClock(r.clock),
		indicator.WithLogger(r.observable),
	}
	if m.Name != "" && !m.Indicator.Autoplay {
		s, err := r.Store()
		if err != nil {
			return nil, err
		}
		base = append(base, indicator.WithStore(s, m.Name))
	}

	return indicator.New(props, append(base, opts...)...)
}

// Close performs cleanup of resources held by the runtime.
// It's safe to call multiple times.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.manifest = nil
	r.store = nil

	return nil
}

// ManifestPath returns the configured manifest path.
func (r *Runtime) ManifestPath() string { return r.manifestPath }

// StatePath returns the configured state file path, empty for the default.
func (r *Runtime) StatePath() string { return r.statePath }

// Clock returns the runtime clock.
func (r *Runtime) Clock() clock.WithTicker { return r.clock }

// Logger returns the runtime logger.
func (r *Runtime) Logger() LoggerProvider { return r.logger }

// ObservableLogger returns the logger handed to indicators.
func (r *Runtime) ObservableLogger() *logging.ObservableLogger { return r.observable }
