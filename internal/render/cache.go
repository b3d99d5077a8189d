package render

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"slices"
	"sync"
	"time"

	"k8s.io/utils/clock"

	"github.com/syllabyte/brainprogress/internal/logging"
)

// DefaultCacheTTL is how long a rendered document stays valid.
const DefaultCacheTTL = time.Hour

var (
	templateHash     string
	templateHashErr  error
	templateHashOnce sync.Once
)

// cacheEntry is one rendered document.
type cacheEntry struct {
	data      []byte
	createdAt time.Time
}

// CacheInfo describes the cache contents.
type CacheInfo struct {
	Count        int      `json:"count"`
	TotalSize    int64    `json:"totalSize"`
	TemplateHash string   `json:"templateHash"`
	TTL          string   `json:"ttl"`
	Keys         []string `json:"keys,omitempty"`
}

// Cache stores rendered documents keyed by the hash of everything that
// affects their bytes. It is safe for concurrent use.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
	clock   clock.PassiveClock
	logger  *logging.ObservableLogger
}

// NewCache creates a cache. A ttl <= 0 selects DefaultCacheTTL.
func NewCache(ttl time.Duration, clk clock.PassiveClock, logger *logging.ObservableLogger) *Cache {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	if clk == nil {
		clk = clock.RealClock{}
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Cache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
		clock:   clk,
		logger:  logger,
	}
}

// CacheKey hashes the frame, the path views and the embedded template.
func CacheKey(f Frame, paths []PathData) (string, error) {
	payload, err := json.Marshal(struct {
		Frame Frame      `json:"frame"`
		Paths []PathData `json:"paths"`
	}{f, paths})
	if err != nil {
		return "", fmt.Errorf("failed to marshal frame for hashing: %w", err)
	}

	tplHash, err := embeddedTemplateHash()
	if err != nil {
		return "", err
	}

	frameHash := sha256.Sum256(payload)
	combined := sha256.Sum256([]byte(hex.EncodeToString(frameHash[:]) + "-" + tplHash))
	return hex.EncodeToString(combined[:]), nil
}

// embeddedTemplateHash hashes every embedded template once per process.
func embeddedTemplateHash() (string, error) {
	templateHashOnce.Do(func() {
		hasher := sha256.New()
		walkErr := fs.WalkDir(TemplateFS, "templates", func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return fmt.Errorf("failed to access embedded template %s: %w", path, err)
			}
			if d.IsDir() {
				return nil
			}
			data, err := TemplateFS.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read embedded template %s: %w", path, err)
			}
			hasher.Write([]byte(path))
			hasher.Write(data)
			return nil
		})
		if walkErr != nil {
			templateHashErr = fmt.Errorf("failed to hash embedded templates: %w", walkErr)
			return
		}
		templateHash = hex.EncodeToString(hasher.Sum(nil))
	})
	return templateHash, templateHashErr
}

// Get returns a cached document if it exists and has not expired.
func (c *Cache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.clock.Since(entry.createdAt) > c.ttl {
		return nil, false
	}
	return entry.data, true
}

// Set stores a document.
func (c *Cache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &cacheEntry{
		data:      slices.Clone(data),
		createdAt: c.clock.Now(),
	}
}

// CleanupExpired drops entries older than the TTL and returns how many it removed.
func (c *Cache) CleanupExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.clock.Now()
	for key, entry := range c.entries {
		if now.Sub(entry.createdAt) > c.ttl {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	clear(c.entries)
}

// Info returns statistics about the cache.
func (c *Cache) Info() CacheInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()

	info := CacheInfo{
		Count: len(c.entries),
		TTL:   c.ttl.String(),
	}
	if hash, err := embeddedTemplateHash(); err == nil {
		info.TemplateHash = hash
	}
	for key, entry := range c.entries {
		info.Keys = append(info.Keys, key)
		info.TotalSize += int64(len(entry.data))
	}
	slices.Sort(info.Keys)
	return info
}

// RenderCached renders f from s through c and writes the result to w.
func RenderCached(w io.Writer, s *Surface, f Frame, c *Cache) error {
	if f.Colors.Primary == "" && f.Colors.Secondary == "" {
		f.Colors = s.Provider().Gradient()
	}
	key, err := CacheKey(f, s.Paths())
	if err != nil {
		return fmt.Errorf("failed to generate cache key: %w", err)
	}

	data, ok := c.Get(key)
	if ok {
		c.logger.Count(logging.MetricRenderCacheHits, nil)
	} else {
		data, err = s.Bytes(f)
		if err != nil {
			return err
		}
		c.Set(key, data)
		c.logger.Count(logging.MetricRenderFrames, nil)

		// Sweep periodically rather than on every miss
		if n := c.Info().Count; n > 0 && n%64 == 0 {
			if removed := c.CleanupExpired(); removed > 0 {
				c.logger.Debug("removed expired frames", "count", removed)
			}
		}
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write svg: %w", err)
	}
	return nil
}
