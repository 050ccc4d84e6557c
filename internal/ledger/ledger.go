// Package ledger keeps the bounded in-memory mirror of the durable record
// store and owns the store's consistency contract: the cache is a
// read-through accelerator, rebuilt wholesale after any bulk mutation, and
// never the only copy of a record.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"jizhang/internal/core"
	"jizhang/internal/storage"
)

// DefaultCacheSize bounds the in-memory mirror. Reads beyond the bound
// (full export) go straight to the repository.
const DefaultCacheSize = 1000

type Ledger struct {
	repo storage.Repository
	cap  int

	// mu is held for the whole of every mutating operation, durable write
	// included, so clear+reload is one critical section and readers see
	// either the pre- or post-mutation cache, never a partial state.
	// Record volume is small; correctness beats micro-latency here.
	mu    sync.RWMutex
	cache []core.Record // most-recent-first, len <= cap
}

func New(repo storage.Repository, cacheSize int) *Ledger {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	return &Ledger{repo: repo, cap: cacheSize}
}

// Insert persists the draft and, only on success, prepends the new record
// to the cache. A durable-write failure propagates and leaves the cache
// untouched, so an unpersisted record is never visible.
func (l *Ledger) Insert(ctx context.Context, d core.Draft) (core.Record, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rec, err := l.repo.Insert(ctx, d)
	if err != nil {
		return core.Record{}, fmt.Errorf("insert record: %w", err)
	}

	l.cache = append([]core.Record{rec}, l.cache...)
	if len(l.cache) > l.cap {
		l.cache = l.cache[:l.cap]
	}
	return rec, nil
}

// Reload replaces the cache wholesale from the durable store. Called at
// startup and after every bulk mutation.
func (l *Ledger) Reload(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.reloadLocked(ctx)
}

func (l *Ledger) reloadLocked(ctx context.Context) error {
	records, err := l.repo.ListRecent(ctx, l.cap)
	if err != nil {
		return fmt.Errorf("reload cache: %w", err)
	}
	l.cache = records
	slog.DebugContext(ctx, "Ledger cache reloaded", "count", len(records))
	return nil
}

// ClearAll deletes every durable record and empties the cache in one
// critical section.
func (l *Ledger) ClearAll(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.repo.DeleteAll(ctx); err != nil {
		return fmt.Errorf("clear ledger: %w", err)
	}
	return l.reloadLocked(ctx)
}

// BulkImport optionally clears, inserts every draft in one storage
// transaction, then reloads the cache exactly once. Returns the number of
// records inserted.
func (l *Ledger) BulkImport(ctx context.Context, drafts []core.Draft, clearFirst bool) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if clearFirst {
		if err := l.repo.DeleteAll(ctx); err != nil {
			return 0, fmt.Errorf("clear before import: %w", err)
		}
	}
	count, err := l.repo.InsertBatch(ctx, drafts)
	if err != nil {
		// Partial completion is reported, never hidden: reload so the
		// cache reflects whatever the store actually holds now.
		if rerr := l.reloadLocked(ctx); rerr != nil {
			slog.ErrorContext(ctx, "Cache reload after failed import", "error", rerr)
		}
		return count, fmt.Errorf("bulk import: %w", err)
	}
	if err := l.reloadLocked(ctx); err != nil {
		return count, err
	}
	return count, nil
}

// Snapshot returns a copy of the cache, most-recent-first. Aggregation
// works exclusively on snapshots.
func (l *Ledger) Snapshot() []core.Record {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]core.Record, len(l.cache))
	copy(out, l.cache)
	return out
}

// Export returns every durable record, bypassing the cache bound.
func (l *Ledger) Export(ctx context.Context) ([]core.Record, error) {
	records, err := l.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("export ledger: %w", err)
	}
	return records, nil
}
