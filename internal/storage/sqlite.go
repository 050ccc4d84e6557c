package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"jizhang/internal/core"

	_ "modernc.org/sqlite"
)

// queryTimeout bounds every durable-store call so an unreachable store
// surfaces as an error instead of a hung request.
const queryTimeout = 5 * time.Second

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, d core.Draft) (core.Record, error) {
	if err := d.Validate(); err != nil {
		return core.Record{}, err
	}
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO records (display_time, created_utc, member_name, member_id, category, shop, amount_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		d.DisplayTime, d.CreatedUTC.UTC().Format(time.RFC3339), d.MemberName, d.MemberID, d.Category, d.Shop, d.Amount.Cents)
	if err != nil {
		return core.Record{}, fmt.Errorf("%w: insert record: %v", ErrUnavailable, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return core.Record{}, fmt.Errorf("%w: last insert id: %v", ErrUnavailable, err)
	}

	rec := draftToRecord(id, d)
	slog.InfoContext(ctx, "Record saved",
		"id", rec.ID,
		"member", rec.MemberName,
		"category", rec.Category,
		"amount_cents", rec.Amount.Cents)
	return rec, nil
}

func (r *SQLiteRepository) Get(ctx context.Context, id int64) (core.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	row := r.db.QueryRowContext(ctx, `
		SELECT id, display_time, created_utc, member_name, member_id, category, shop, amount_cents
		FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return core.Record{}, fmt.Errorf("%w: id %d", ErrNotFound, id)
		}
		return core.Record{}, fmt.Errorf("%w: get record: %v", ErrUnavailable, err)
	}
	return rec, nil
}

func (r *SQLiteRepository) ListRecent(ctx context.Context, limit int) ([]core.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, display_time, created_utc, member_name, member_id, category, shop, amount_cents
		FROM records ORDER BY created_utc DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: list recent: %v", ErrUnavailable, err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx, `
		SELECT id, display_time, created_utc, member_name, member_id, category, shop, amount_cents
		FROM records ORDER BY created_utc DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: list all: %v", ErrUnavailable, err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (r *SQLiteRepository) DeleteAll(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	if _, err := r.db.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return fmt.Errorf("%w: delete all records: %v", ErrUnavailable, err)
	}
	slog.InfoContext(ctx, "Ledger cleared")
	return nil
}

// InsertBatch runs as one transaction so a restore is all-or-nothing at
// the storage level.
func (r *SQLiteRepository) InsertBatch(ctx context.Context, drafts []core.Draft) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%w: begin tx: %v", ErrUnavailable, err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO records (display_time, created_utc, member_name, member_id, category, shop, amount_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("%w: prepare insert: %v", ErrUnavailable, err)
	}
	defer stmt.Close()

	inserted := 0
	for _, d := range drafts {
		if err := d.Validate(); err != nil {
			return 0, fmt.Errorf("draft %d: %w", inserted, err)
		}
		if _, err := stmt.ExecContext(ctx,
			d.DisplayTime, d.CreatedUTC.UTC().Format(time.RFC3339), d.MemberName, d.MemberID, d.Category, d.Shop, d.Amount.Cents); err != nil {
			return 0, fmt.Errorf("%w: insert draft %d: %v", ErrUnavailable, inserted, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%w: commit batch: %v", ErrUnavailable, err)
	}
	slog.InfoContext(ctx, "Batch insert committed", "count", inserted)
	return inserted, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (core.Record, error) {
	var rec core.Record
	var createdUTC string
	if err := row.Scan(&rec.ID, &rec.DisplayTime, &createdUTC, &rec.MemberName, &rec.MemberID, &rec.Category, &rec.Shop, &rec.Amount.Cents); err != nil {
		return core.Record{}, err
	}
	ts, err := time.Parse(time.RFC3339, createdUTC)
	if err != nil {
		return core.Record{}, fmt.Errorf("parse created_utc %q: %w", createdUTC, err)
	}
	rec.CreatedUTC = ts.UTC()
	return rec, nil
}

func collectRecords(rows *sql.Rows) ([]core.Record, error) {
	var out []core.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrUnavailable, err)
	}
	return out, nil
}

func draftToRecord(id int64, d core.Draft) core.Record {
	return core.Record{
		ID:          id,
		DisplayTime: d.DisplayTime,
		CreatedUTC:  d.CreatedUTC.UTC(),
		MemberName:  d.MemberName,
		MemberID:    d.MemberID,
		Category:    d.Category,
		Shop:        d.Shop,
		Amount:      d.Amount,
	}
}
