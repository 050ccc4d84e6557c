// Package worker mirrors ledger records to the family spreadsheet as
// sync messages arrive from the queue.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	"jizhang/internal/amqp"
	"jizhang/internal/codec"
	"jizhang/internal/sheets"
	"jizhang/internal/storage"
)

type ExportWorker struct {
	repo  storage.Repository
	sheet sheets.RowAppender
}

func NewExportWorker(repo storage.Repository, sheet sheets.RowAppender) *ExportWorker {
	return &ExportWorker{repo: repo, sheet: sheet}
}

// HandleSyncMessage mirrors one record. The record is re-read from the
// database so the sheet reflects durable state, not the message payload.
// A missing record is not an error; the row was cleared before the
// worker caught up.
func (w *ExportWorker) HandleSyncMessage(ctx context.Context, msg *amqp.RecordSyncMessage) error {
	rec, err := w.repo.Get(ctx, msg.ID)
	if err != nil {
		if storage.IsNotFound(err) {
			slog.WarnContext(ctx, "Record gone before sync, skipping", "id", msg.ID)
			return nil
		}
		return fmt.Errorf("get record %d: %w", msg.ID, err)
	}

	ref, err := w.sheet.AppendRow(ctx, codec.EncodeRow(rec))
	if err != nil {
		return fmt.Errorf("append record %d to sheet: %w", msg.ID, err)
	}

	slog.InfoContext(ctx, "Mirrored record to spreadsheet",
		"id", msg.ID,
		"sheet_ref", ref,
		"category", rec.Category,
		"amount_cents", rec.Amount.Cents)

	return nil
}
