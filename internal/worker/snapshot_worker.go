// Package worker runs the periodic snapshot job: pull the payments table
// from the live Google source, persist it to the local SQLite snapshot, and
// announce the refresh over AMQP so running portals can drop their caches.
package worker

import (
	"context"
	"fmt"
	"time"

	"payportal/internal/amqp"
	"payportal/internal/log"
	"payportal/internal/records"
	"payportal/internal/storage"
)

// Publisher announces a completed snapshot. Nil-able: the worker runs fine
// without a broker, portals then rely on their cache TTLs alone.
type Publisher interface {
	PublishSnapshot(ctx context.Context, msg *amqp.SnapshotMessage) error
}

type SnapshotWorker struct {
	source    records.Source
	snapshots *storage.SnapshotRepository
	publisher Publisher
	backend   string
	logger    *log.Logger
}

func NewSnapshotWorker(source records.Source, snapshots *storage.SnapshotRepository, publisher Publisher, backend string, logger *log.Logger) *SnapshotWorker {
	return &SnapshotWorker{
		source:    source,
		snapshots: snapshots,
		publisher: publisher,
		backend:   backend,
		logger:    logger.WithComponent(log.ComponentWorker),
	}
}

// RunOnce performs one snapshot cycle.
func (w *SnapshotWorker) RunOnce(ctx context.Context) error {
	start := time.Now()

	tbl, err := w.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch records: %w", err)
	}
	fetchedAt := time.Now().UTC()

	if err := w.snapshots.Replace(ctx, tbl, fetchedAt); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	w.logger.InfoContext(ctx, "snapshot refreshed",
		log.FieldOperation, log.OpSnapshot,
		log.FieldRecordCount, len(tbl.Records),
		log.FieldDuration, time.Since(start).Milliseconds(),
	)

	if w.publisher == nil {
		return nil
	}
	msg := amqp.NewSnapshotMessage(len(tbl.Records), w.backend, fetchedAt)
	if err := w.publisher.PublishSnapshot(ctx, msg); err != nil {
		// The snapshot itself landed; portals will converge via TTL.
		w.logger.WarnContext(ctx, "snapshot event publish failed", log.FieldError, err)
	}
	return nil
}

// Run loops until the context is canceled. The first cycle runs
// immediately so a fresh deployment serves data without waiting a full
// interval.
func (w *SnapshotWorker) Run(ctx context.Context, interval time.Duration) error {
	if err := w.RunOnce(ctx); err != nil {
		w.logger.ErrorContext(ctx, "snapshot cycle failed", log.FieldError, err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.RunOnce(ctx); err != nil {
				w.logger.ErrorContext(ctx, "snapshot cycle failed", log.FieldError, err)
			}
		}
	}
}
