package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	testingclock "k8s.io/utils/clock/testing"
)

var epoch = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

// StoreTestSuite runs the same contract against every implementation.
type StoreTestSuite struct {
	suite.Suite
	newStore func(t *testing.T, clk *testingclock.FakeClock) Store
	clock    *testingclock.FakeClock
	store    Store
	ctx      context.Context
}

func (s *StoreTestSuite) SetupTest() {
	s.clock = testingclock.NewFakeClock(epoch)
	s.store = s.newStore(s.T(), s.clock)
	s.ctx = context.Background()
}

func (s *StoreTestSuite) TestSaveAndLoad() {
	s.Require().NoError(s.store.Save(s.ctx, "build", 42.5))

	e, err := s.store.Load(s.ctx, "build")
	s.Require().NoError(err)
	s.Equal("build", e.ID)
	s.Equal(42.5, e.Percent)
	s.True(epoch.Equal(e.UpdatedAt))
}

func (s *StoreTestSuite) TestSaveClamps() {
	s.Require().NoError(s.store.Save(s.ctx, "over", 180))
	e, err := s.store.Load(s.ctx, "over")
	s.Require().NoError(err)
	s.Equal(100.0, e.Percent)
}

func (s *StoreTestSuite) TestOverwrite() {
	s.Require().NoError(s.store.Save(s.ctx, "build", 10))
	s.clock.Step(time.Minute)
	s.Require().NoError(s.store.Save(s.ctx, "build", 20))

	e, err := s.store.Load(s.ctx, "build")
	s.Require().NoError(err)
	s.Equal(20.0, e.Percent)
	s.True(epoch.Add(time.Minute).Equal(e.UpdatedAt))
}

func (s *StoreTestSuite) TestLoadMissing() {
	_, err := s.store.Load(s.ctx, "nope")
	s.ErrorIs(err, ErrNotFound)
}

func (s *StoreTestSuite) TestDelete() {
	s.Require().NoError(s.store.Save(s.ctx, "build", 10))
	s.Require().NoError(s.store.Delete(s.ctx, "build"))
	_, err := s.store.Load(s.ctx, "build")
	s.ErrorIs(err, ErrNotFound)
	s.ErrorIs(s.store.Delete(s.ctx, "build"), ErrNotFound)
}

func (s *StoreTestSuite) TestListIsSorted() {
	for _, id := range []string{"zeta", "alpha", "mid"} {
		s.Require().NoError(s.store.Save(s.ctx, id, 1))
	}
	entries, err := s.store.List(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("alpha", entries[0].ID)
	s.Equal("mid", entries[1].ID)
	s.Equal("zeta", entries[2].ID)
}

func (s *StoreTestSuite) TestInvalidID() {
	s.ErrorIs(s.store.Save(s.ctx, " ", 1), ErrInvalidID)
	_, err := s.store.Load(s.ctx, "")
	s.ErrorIs(err, ErrInvalidID)
	s.ErrorIs(s.store.Delete(s.ctx, ""), ErrInvalidID)
}

func TestMemoryStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{newStore: func(t *testing.T, clk *testingclock.FakeClock) Store {
		return NewMemoryStore(clk)
	}})
}

func TestFileStore(t *testing.T) {
	suite.Run(t, &StoreTestSuite{newStore: func(t *testing.T, clk *testingclock.FakeClock) Store {
		fs, err := NewFileStore(filepath.Join(t.TempDir(), "nested", "state.yaml"), clk)
		require.NoError(t, err)
		return fs
	}})
}

func TestKey(t *testing.T) {
	assert.Equal(t, "brain_progress_upload", Key("upload"))
}

func TestFileStoreLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	fs, err := NewFileStore(path, testingclock.NewFakeClock(epoch))
	require.NoError(t, err)
	require.NoError(t, fs.Save(context.Background(), "upload", 75))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 1")
	assert.Contains(t, string(data), "brain_progress_upload:")
	assert.Contains(t, string(data), "percent: 75")

	matches, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".state-*"))
	require.NoError(t, err)
	assert.Empty(t, matches, "temp files must not be left behind")
}

func TestFileStoreSharedAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	a, err := NewFileStore(path, nil)
	require.NoError(t, err)
	b, err := NewFileStore(path, nil)
	require.NoError(t, err)

	require.NoError(t, a.Save(context.Background(), "one", 10))
	require.NoError(t, b.Save(context.Background(), "two", 20))

	entries, err := a.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.yaml")
	require.NoError(t, os.WriteFile(path, []byte("entries: [not, a, map"), 0o644))

	fs, err := NewFileStore(path, nil)
	require.NoError(t, err)
	_, err = fs.List(context.Background())
	assert.ErrorContains(t, err, "failed to parse state file")
}

func TestFileStoreCancelledContext(t *testing.T) {
	fs, err := NewFileStore(filepath.Join(t.TempDir(), "state.yaml"), nil)
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, fs.Save(ctx, "x", 1), context.Canceled)
}

func TestDefaultPath(t *testing.T) {
	t.Setenv(EnvStateFile, "")
	t.Setenv("XDG_STATE_HOME", "/tmp/xdg-state")
	p, err := DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg-state/brainprogress/state.yaml", p)

	t.Setenv(EnvStateFile, "/custom/state.yaml")
	p, err = DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, "/custom/state.yaml", p)

	t.Setenv(EnvStateFile, "")
	t.Setenv("XDG_STATE_HOME", "")
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	p, err = DefaultPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".local", "state", "brainprogress", "state.yaml"), p)
}
