// Package memory provides an in-memory Repository used by tests and by
// deployments that run without a database file.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"jizhang/internal/core"
	"jizhang/internal/storage"
)

type Store struct {
	mu     sync.Mutex
	nextID int64
	items  []core.Record

	// FailNext makes the next mutating call fail, for exercising the
	// store-unavailable path in tests.
	FailNext bool
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{nextID: 1}
}

func (s *Store) Insert(_ context.Context, d core.Draft) (core.Record, error) {
	if err := d.Validate(); err != nil {
		return core.Record{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNext {
		s.FailNext = false
		return core.Record{}, fmt.Errorf("%w: injected failure", storage.ErrUnavailable)
	}
	rec := core.Record{
		ID:          s.nextID,
		DisplayTime: d.DisplayTime,
		CreatedUTC:  d.CreatedUTC.UTC(),
		MemberName:  d.MemberName,
		MemberID:    d.MemberID,
		Category:    d.Category,
		Shop:        d.Shop,
		Amount:      d.Amount,
	}
	s.nextID++
	s.items = append(s.items, rec)
	return rec, nil
}

func (s *Store) Get(_ context.Context, id int64) (core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range s.items {
		if rec.ID == id {
			return rec, nil
		}
	}
	return core.Record{}, fmt.Errorf("%w: id %d", storage.ErrNotFound, id)
}

func (s *Store) ListRecent(ctx context.Context, limit int) ([]core.Record, error) {
	all, err := s.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *Store) ListAll(_ context.Context) ([]core.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Record, len(s.items))
	copy(out, s.items)
	// Most-recent-first; later insertion wins ties, matching the SQLite
	// ORDER BY created_utc DESC, id DESC.
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedUTC.Equal(out[j].CreatedUTC) {
			return out[i].CreatedUTC.After(out[j].CreatedUTC)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) DeleteAll(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailNext {
		s.FailNext = false
		return fmt.Errorf("%w: injected failure", storage.ErrUnavailable)
	}
	s.items = nil
	return nil
}

func (s *Store) InsertBatch(ctx context.Context, drafts []core.Draft) (int, error) {
	// All-or-nothing like the SQLite transaction: validate first.
	for i, d := range drafts {
		if err := d.Validate(); err != nil {
			return 0, fmt.Errorf("draft %d: %w", i, err)
		}
	}
	for _, d := range drafts {
		if _, err := s.Insert(ctx, d); err != nil {
			return 0, err
		}
	}
	return len(drafts), nil
}

func (s *Store) Close() error { return nil }
