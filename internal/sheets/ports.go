// Package sheets defines the outbound port for the spreadsheet mirror.
package sheets

import "context"

// RowAppender appends one encoded ledger row to the family spreadsheet.
// The downstream sheet does its own filtering and pivoting; the ledger
// only ever appends.
type RowAppender interface {
	AppendRow(ctx context.Context, row []string) (rowRef string, err error)
}
