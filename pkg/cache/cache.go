// Package cache provides the TTL response cache placed in front of cluster read operations.
//
// A Cache is constructed once per process and injected into the components that need it.
// Whether caching is enabled, and for how long entries stay valid, is read from a
// ConfigProvider on every call, so configuration changes apply immediately.
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"k8s.io/klog/v2"
	"k8s.io/utils/clock"
)

// Config is the caching configuration in effect for a single call.
type Config struct {
	Enabled bool
	TTL     time.Duration
}

// ConfigProvider returns the current caching configuration.
// It is consulted on every cached call and every maintenance operation.
type ConfigProvider interface {
	CacheConfig() Config
}

// ConfigProviderFunc adapts a function to the ConfigProvider interface.
type ConfigProviderFunc func() Config

func (f ConfigProviderFunc) CacheConfig() Config {
	return f()
}

// Observer is notified of cache lookups performed while caching is enabled.
type Observer interface {
	RecordCacheLookup(ctx context.Context, prefix string, hit bool)
}

// Stats is a read-only snapshot of the cache contents.
type Stats struct {
	TotalEntries   int     `json:"total_entries"`
	ExpiredEntries int     `json:"expired_entries"`
	ActiveEntries  int     `json:"active_entries"`
	CachingEnabled bool    `json:"caching_enabled"`
	TTLSeconds     float64 `json:"ttl_seconds"`
}

type entry struct {
	storedAt time.Time
	value    any
}

// Cache is a thread-safe key/value store whose entries expire after the configured TTL.
// A single mutex guards the store; it is never held while a wrapped operation runs.
type Cache struct {
	mu       sync.Mutex
	entries  map[string]entry
	config   ConfigProvider
	observer Observer
	clock    clock.PassiveClock
}

type Option func(*Cache)

// WithObserver registers an Observer notified of hits and misses.
func WithObserver(observer Observer) Option {
	return func(c *Cache) {
		c.observer = observer
	}
}

// WithClock replaces the clock used to timestamp and age entries.
func WithClock(clk clock.PassiveClock) Option {
	return func(c *Cache) {
		c.clock = clk
	}
}

// New creates an empty Cache reading its configuration from config.
func New(config ConfigProvider, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		config:  config,
		clock:   clock.RealClock{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config returns the caching configuration currently in effect.
// A nil Cache, or one without a provider, reports caching as disabled.
func (c *Cache) Config() Config {
	if c == nil || c.config == nil {
		return Config{}
	}
	return c.config.CacheConfig()
}

func (c *Cache) expired(e entry, now time.Time, ttl time.Duration) bool {
	return now.Sub(e.storedAt) >= ttl
}

// lookup returns the value stored under key if it is still valid for ttl.
// Expired entries are removed.
func (c *Cache) lookup(key string, ttl time.Duration) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.expired(e, c.clock.Now(), ttl) {
		delete(c.entries, key)
		return nil, false
	}
	return e.value, true
}

func (c *Cache) store(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{storedAt: c.clock.Now(), value: value}
}

// Set stores value under key with the current timestamp, replacing any previous entry.
func (c *Cache) Set(key string, value any) {
	if c == nil {
		return
	}
	c.store(key, value)
}

// Contains reports whether an entry, valid or not, is stored under key.
func (c *Cache) Contains(key string) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Len returns the number of stored entries, including expired ones.
func (c *Cache) Len() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear removes every entry and returns how many were removed.
func (c *Cache) Clear() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	count := len(c.entries)
	c.entries = make(map[string]entry)
	klog.V(3).Infof("response cache cleared: %d entries", count)
	return count
}

// ClearExpired removes the entries whose age is at least the current TTL
// and returns how many were removed.
func (c *Cache) ClearExpired() int {
	if c == nil {
		return 0
	}
	ttl := c.Config().TTL
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	cleared := 0
	for key, e := range c.entries {
		if c.expired(e, now, ttl) {
			delete(c.entries, key)
			cleared++
		}
	}
	return cleared
}

// Invalidate removes the entries whose key contains pattern as a plain substring
// and returns how many were removed.
func (c *Cache) Invalidate(pattern string) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	removed := 0
	for key := range c.entries {
		if strings.Contains(key, pattern) {
			delete(c.entries, key)
			removed++
		}
	}
	if removed > 0 {
		klog.V(3).Infof("response cache invalidated %d entries matching %q", removed, pattern)
	}
	return removed
}

// Stats reports the number of total, expired and active entries under the current TTL.
// Expired entries are counted but not removed.
func (c *Cache) Stats() Stats {
	cfg := c.Config()
	stats := Stats{
		CachingEnabled: cfg.Enabled,
		TTLSeconds:     cfg.TTL.Seconds(),
	}
	if c == nil {
		return stats
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock.Now()
	stats.TotalEntries = len(c.entries)
	for _, e := range c.entries {
		if c.expired(e, now, cfg.TTL) {
			stats.ExpiredEntries++
		}
	}
	stats.ActiveEntries = stats.TotalEntries - stats.ExpiredEntries
	return stats
}
