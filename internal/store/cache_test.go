package store

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"payportal/internal/core"
)

type fakeSource struct {
	calls atomic.Int64
	tbl   core.Table
	err   error
	delay time.Duration
}

func (f *fakeSource) Fetch(ctx context.Context) (core.Table, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return core.Table{}, ctx.Err()
		}
	}
	if f.err != nil {
		return core.Table{}, f.err
	}
	return f.tbl, nil
}

func oneRecordTable() core.Table {
	return core.Table{
		Records: []core.TripRecord{{TripID: "1", DriverNum: "d1"}},
		Columns: core.ColumnSet{core.ColTripID: true, core.ColDriverNum: true},
	}
}

func TestCacheServesWithinTTL(t *testing.T) {
	src := &fakeSource{tbl: oneRecordTable()}
	c := NewCache(src, time.Minute, time.Second)

	for i := 0; i < 3; i++ {
		tbl, err := c.Table(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(tbl.Records) != 1 {
			t.Fatalf("expected 1 record, got %d", len(tbl.Records))
		}
	}
	if got := src.calls.Load(); got != 1 {
		t.Fatalf("expected a single upstream fetch, got %d", got)
	}
}

func TestCacheRefreshesAfterTTL(t *testing.T) {
	src := &fakeSource{tbl: oneRecordTable()}
	c := NewCache(src, 30*time.Millisecond, time.Second)

	if _, err := c.Table(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	time.Sleep(50 * time.Millisecond)
	if _, err := c.Table(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Fatalf("expected 2 fetches after TTL expiry, got %d", got)
	}
}

func TestCacheFailFast(t *testing.T) {
	src := &fakeSource{err: errors.New("upstream down")}
	c := NewCache(src, time.Minute, time.Second)

	if _, err := c.Table(context.Background()); err == nil {
		t.Fatal("expected error when the source is unavailable")
	}
	// The failure is not cached: the next read tries again.
	src.err = nil
	src.tbl = oneRecordTable()
	tbl, err := c.Table(context.Background())
	if err != nil {
		t.Fatalf("expected recovery, got %v", err)
	}
	if len(tbl.Records) != 1 {
		t.Fatalf("expected 1 record after recovery, got %d", len(tbl.Records))
	}
}

func TestCacheFetchTimeout(t *testing.T) {
	src := &fakeSource{tbl: oneRecordTable(), delay: 200 * time.Millisecond}
	c := NewCache(src, time.Minute, 20*time.Millisecond)

	if _, err := c.Table(context.Background()); err == nil {
		t.Fatal("expected timeout error from slow source")
	}
}

func TestCacheInvalidate(t *testing.T) {
	src := &fakeSource{tbl: oneRecordTable()}
	c := NewCache(src, time.Hour, time.Second)

	if _, err := c.Table(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	c.Invalidate()
	if _, err := c.Table(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := src.calls.Load(); got != 2 {
		t.Fatalf("expected refetch after Invalidate, got %d fetches", got)
	}
}

func TestCacheConcurrentReadersSingleFetch(t *testing.T) {
	src := &fakeSource{tbl: oneRecordTable(), delay: 50 * time.Millisecond}
	c := NewCache(src, time.Minute, time.Second)

	done := make(chan error, 10)
	for i := 0; i < 10; i++ {
		go func() {
			_, err := c.Table(context.Background())
			done <- err
		}()
	}
	for i := 0; i < 10; i++ {
		if err := <-done; err != nil {
			t.Fatalf("reader %d: %v", i, err)
		}
	}
	if got := src.calls.Load(); got != 1 {
		t.Fatalf("expected concurrent readers to share one fetch, got %d", got)
	}
}
