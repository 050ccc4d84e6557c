// Package memory implements the spreadsheet mirror as an in-memory grid
// for tests and local runs without Google credentials.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "jizhang/internal/sheets"
)

type Sheet struct {
	mu   sync.Mutex
	rows [][]string

	FailNext bool
}

var _ ports.RowAppender = (*Sheet)(nil)

func New() *Sheet {
	return &Sheet{}
}

func (s *Sheet) AppendRow(_ context.Context, row []string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailNext {
		s.FailNext = false
		return "", errors.New("append failed")
	}

	copied := make([]string, len(row))
	copy(copied, row)
	s.rows = append(s.rows, copied)
	return fmt.Sprintf("A%d", len(s.rows)), nil
}

// Rows returns a copy of everything appended so far.
func (s *Sheet) Rows() [][]string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([][]string, len(s.rows))
	for i, row := range s.rows {
		out[i] = append([]string(nil), row...)
	}
	return out
}
