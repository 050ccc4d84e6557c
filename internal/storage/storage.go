// Package storage defines the durable record store port and its SQLite
// implementation. The durable store exclusively owns record identity; the
// in-memory cache in internal/ledger is rebuilt from it on demand.
package storage

import (
	"context"
	"errors"

	"jizhang/internal/core"
)

// ErrUnavailable wraps any failure to reach the durable store so callers
// can tell the user to retry instead of crashing the serving loop.
var ErrUnavailable = errors.New("durable store unavailable")

// ErrNotFound wraps lookups for records that no longer exist, so the
// export worker can skip rows cleared before it caught up.
var ErrNotFound = errors.New("record not found")

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// Repository is the outbound port for the durable record store.
type Repository interface {
	// Insert appends one record atomically and returns it with its
	// store-assigned id.
	Insert(ctx context.Context, d core.Draft) (core.Record, error)

	// Get fetches a single record by id.
	Get(ctx context.Context, id int64) (core.Record, error)

	// ListRecent returns up to limit records, most-recent-first by
	// canonical instant, ties broken by insertion order.
	ListRecent(ctx context.Context, limit int) ([]core.Record, error)

	// ListAll returns every record, most-recent-first. Used by export.
	ListAll(ctx context.Context) ([]core.Record, error)

	// DeleteAll removes every record. Irreversible.
	DeleteAll(ctx context.Context) error

	// InsertBatch appends drafts in one transaction, preserving their
	// timestamps. All-or-nothing: on error no draft is persisted.
	InsertBatch(ctx context.Context, drafts []core.Draft) (int, error)

	Close() error
}
