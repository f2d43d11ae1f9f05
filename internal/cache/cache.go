// Package cache memoizes engine results for a short time and collapses
// concurrent identical queries into one computation.
package cache

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"github.com/litescript/ls-planets/internal/engine"
	"github.com/litescript/ls-planets/internal/logging"
	"github.com/litescript/ls-planets/internal/observability"
)

const (
	// DefaultTTL is how long a computed result stays valid.
	DefaultTTL = 60 * time.Second

	// DefaultMaxEntries bounds the number of cached results.
	DefaultMaxEntries = 1024

	// DefaultSweepInterval is the Run period when none is given.
	DefaultSweepInterval = time.Minute
)

// ComputeFunc produces the result for a key on a miss.
type ComputeFunc func(ctx context.Context) (engine.Result, error)

// Config configures a Cache. Zero values select the defaults.
type Config struct {
	TTL        time.Duration
	MaxEntries int
	Logger     *logging.Logger
	Metrics    *observability.Metrics
}

type entry struct {
	key     Key
	result  engine.Result
	created time.Time
	expires time.Time
}

// Stats is a point-in-time view of cache activity.
type Stats struct {
	Entries     int           `json:"entries"`
	MaxEntries  int           `json:"maxEntries"`
	TTL         time.Duration `json:"ttl"`
	Hits        uint64        `json:"hits"`
	Misses      uint64        `json:"misses"`
	Coalesced   uint64        `json:"coalesced"`
	Evictions   uint64        `json:"evictions"`
	Corruptions uint64        `json:"corruptions"`
}

// Cache is a TTL-bounded LRU of engine results. Safe for concurrent use.
type Cache struct {
	ttl        time.Duration
	maxEntries int
	lru        *lru.Cache[Key, *entry]
	group      singleflight.Group

	// mu orders conditional removals against stores.
	mu sync.Mutex

	log     *logging.Logger
	metrics *observability.Metrics
	now     func() time.Time

	hits, misses, coalesced, evictions, corruptions atomic.Uint64
}

// New creates a cache.
func New(cfg Config) (*Cache, error) {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = DefaultMaxEntries
	}
	c := &Cache{
		ttl:        cfg.TTL,
		maxEntries: cfg.MaxEntries,
		log:        cfg.Logger,
		metrics:    cfg.Metrics,
		now:        time.Now,
	}
	l, err := lru.NewWithEvict(cfg.MaxEntries, func(Key, *entry) {
		c.evictions.Add(1)
		c.metrics.CacheEvicted()
	})
	if err != nil {
		return nil, fmt.Errorf("create lru: %w", err)
	}
	c.lru = l
	return c, nil
}

// GetOrCompute returns a copy of the live result for key, or runs fn once
// for all concurrent callers of the same key and caches its result.
// Errors are returned to every waiting caller and never cached. A caller
// whose ctx ends stops waiting; the shared computation carries on for the
// others.
func (c *Cache) GetOrCompute(ctx context.Context, key Key, fn ComputeFunc) (engine.Result, error) {
	if r, ok := c.lookup(key); ok {
		c.hits.Add(1)
		c.metrics.CacheHit()
		return r.Clone(), nil
	}

	leader := false
	ch := c.group.DoChan(string(key), func() (any, error) {
		leader = true
		// a flight that finished just before this one may have stored it
		if r, ok := c.lookup(key); ok {
			c.hits.Add(1)
			c.metrics.CacheHit()
			return r, nil
		}
		c.misses.Add(1)
		c.metrics.CacheMiss()

		r, err := fn(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		c.store(key, r)
		return r, nil
	})

	select {
	case <-ctx.Done():
		return engine.Result{}, ctx.Err()
	case res := <-ch:
		if res.Shared && !leader {
			c.coalesced.Add(1)
			c.metrics.CacheShared()
		}
		if res.Err != nil {
			return engine.Result{}, res.Err
		}
		return res.Val.(engine.Result).Clone(), nil
	}
}

// lookup returns the stored result for key if it is live and intact.
// Expired and corrupt entries are removed.
func (c *Cache) lookup(key Key) (engine.Result, bool) {
	e, ok := c.lru.Get(key)
	if !ok {
		return engine.Result{}, false
	}
	if err := e.check(key); err != nil {
		c.corruptions.Add(1)
		c.metrics.CacheCorrupted()
		c.log.Warn("discarding cache entry", "err", err)
		c.removeIf(key, e)
		return engine.Result{}, false
	}
	if !c.now().Before(e.expires) {
		c.removeIf(key, e)
		return engine.Result{}, false
	}
	return e.result, true
}

func (c *Cache) store(key Key, r engine.Result) {
	now := c.now()
	c.mu.Lock()
	c.lru.Add(key, &entry{key: key, result: r, created: now, expires: now.Add(c.ttl)})
	c.mu.Unlock()
	c.metrics.SetCacheEntries(c.lru.Len())
}

// removeIf drops key only while it still maps to e, so a fresh entry
// stored concurrently survives.
func (c *Cache) removeIf(key Key, e *entry) {
	c.mu.Lock()
	if cur, ok := c.lru.Peek(key); ok && cur == e {
		c.lru.Remove(key)
	}
	c.mu.Unlock()
	c.metrics.SetCacheEntries(c.lru.Len())
}

// check validates an entry before it is served.
func (e *entry) check(key Key) error {
	if e == nil {
		return &CacheCorruptionError{Key: key, Reason: "nil entry"}
	}
	if e.key != key {
		return &CacheCorruptionError{Key: key, Reason: fmt.Sprintf("stored under key %q", e.key)}
	}
	if e.expires.Before(e.created) {
		return &CacheCorruptionError{Key: key, Reason: "expiry precedes creation"}
	}
	r := e.result
	if r.Instant.IsZero() {
		return &CacheCorruptionError{Key: key, Reason: "result has no instant"}
	}
	for _, o := range r.Observations {
		switch {
		case o.ID == "":
			return &CacheCorruptionError{Key: key, Reason: "observation without body id"}
		case math.IsNaN(o.Altitude) || math.IsNaN(o.Azimuth):
			return &CacheCorruptionError{Key: key, Reason: o.ID + " has NaN coordinates"}
		case o.RightAscension < 0 || o.RightAscension >= 360:
			return &CacheCorruptionError{Key: key, Reason: o.ID + " right ascension out of range"}
		case o.Declination < -90 || o.Declination > 90:
			return &CacheCorruptionError{Key: key, Reason: o.ID + " declination out of range"}
		}
	}
	return nil
}

// Sweep removes every expired entry and returns how many were dropped.
func (c *Cache) Sweep() int {
	now := c.now()
	n := 0
	for _, k := range c.lru.Keys() {
		e, ok := c.lru.Peek(k)
		if !ok || now.Before(e.expires) {
			continue
		}
		c.mu.Lock()
		if cur, ok := c.lru.Peek(k); ok && cur == e {
			c.lru.Remove(k)
			n++
		}
		c.mu.Unlock()
	}
	if n > 0 {
		c.log.Debug("cache sweep", "removed", n, "entries", c.lru.Len())
	}
	c.metrics.SetCacheEntries(c.lru.Len())
	return n
}

// Run sweeps every interval until ctx is done.
func (c *Cache) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Sweep()
		}
	}
}

// Invalidate drops key and reports whether it was present.
func (c *Cache) Invalidate(key Key) bool {
	c.mu.Lock()
	ok := c.lru.Remove(key)
	c.mu.Unlock()
	c.metrics.SetCacheEntries(c.lru.Len())
	return ok
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.mu.Lock()
	c.lru.Purge()
	c.mu.Unlock()
	c.metrics.SetCacheEntries(0)
}

// Len returns the number of stored entries, expired ones included until
// they are swept or looked up.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// TTL returns the entry lifetime.
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Stats returns the current counters.
func (c *Cache) Stats() Stats {
	return Stats{
		Entries:     c.lru.Len(),
		MaxEntries:  c.maxEntries,
		TTL:         c.ttl,
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Coalesced:   c.coalesced.Load(),
		Evictions:   c.evictions.Load(),
		Corruptions: c.corruptions.Load(),
	}
}
