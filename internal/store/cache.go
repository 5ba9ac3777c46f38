// Package store holds the in-memory record table between refreshes.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"payportal/internal/core"
	"payportal/internal/records"
)

const (
	// DefaultTTL matches the admin portal's source cache interval.
	DefaultTTL = 10 * time.Minute

	// DriverTTL matches the driver portal's longer interval; the CSV export
	// is regenerated at most hourly.
	DriverTTL = time.Hour

	// DefaultFetchTimeout bounds the external fetch. The load is the only
	// blocking operation in the system and is treated as fail-fast.
	DefaultFetchTimeout = 30 * time.Second
)

// Cache serves one immutable Table, refreshed wholesale from a Source when
// older than the TTL. The swap is atomic under the lock, so readers never
// observe a partially loaded table, and reads never race a refresh.
// Concurrent expirations collapse into a single upstream fetch.
type Cache struct {
	src          records.Source
	ttl          time.Duration
	fetchTimeout time.Duration

	sf singleflight.Group

	mu        sync.RWMutex
	tbl       core.Table
	fetchedAt time.Time
	loaded    bool
}

func NewCache(src records.Source, ttl, fetchTimeout time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if fetchTimeout <= 0 {
		fetchTimeout = DefaultFetchTimeout
	}
	return &Cache{src: src, ttl: ttl, fetchTimeout: fetchTimeout}
}

// Table returns the current table, refreshing it first if stale. A failed
// refresh is returned as an error; there is no partial-data fallback.
func (c *Cache) Table(ctx context.Context) (core.Table, error) {
	c.mu.RLock()
	if c.loaded && time.Since(c.fetchedAt) < c.ttl {
		tbl := c.tbl
		c.mu.RUnlock()
		return tbl, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.sf.Do("table", func() (interface{}, error) {
		// Re-check under the flight: another caller may have refreshed while
		// this one waited.
		c.mu.RLock()
		if c.loaded && time.Since(c.fetchedAt) < c.ttl {
			tbl := c.tbl
			c.mu.RUnlock()
			return tbl, nil
		}
		c.mu.RUnlock()
		return c.refresh(ctx)
	})
	if err != nil {
		return core.Table{}, err
	}
	return v.(core.Table), nil
}

func (c *Cache) refresh(ctx context.Context) (core.Table, error) {
	fctx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	start := time.Now()
	tbl, err := c.src.Fetch(fctx)
	if err != nil {
		slog.ErrorContext(ctx, "Record refresh failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return core.Table{}, fmt.Errorf("refresh records: %w", err)
	}

	c.mu.Lock()
	c.tbl = tbl
	c.fetchedAt = time.Now()
	c.loaded = true
	c.mu.Unlock()

	slog.InfoContext(ctx, "Record table refreshed",
		"record_count", len(tbl.Records),
		"duration_ms", time.Since(start).Milliseconds())
	return tbl, nil
}

// Invalidate forces the next Table call to refetch. Used when a refresh
// event arrives over AMQP.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	c.loaded = false
	c.mu.Unlock()
}

// FetchedAt reports when the current table was loaded; the zero time means
// no successful load yet.
func (c *Cache) FetchedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.loaded {
		return time.Time{}
	}
	return c.fetchedAt
}
