// Package codec maps ledger records to and from flat delimited rows for
// backup, restore and spreadsheet export.
package codec

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"jizhang/internal/core"
)

// Export column order. The bucket column is derived on export and ignored
// on import.
var Header = []string{"display_time", "created_utc", "member_name", "member_id", "category", "shop", "amount", "bucket"}

// ColumnMap resolves column positions from a CSV header, so rows exported
// by older layouts (or hand-edited sheets) still decode. -1 means absent.
type ColumnMap struct {
	DisplayTime int
	CreatedUTC  int
	MemberName  int
	MemberID    int
	Category    int
	Shop        int
	Amount      int
}

// DefaultColumns matches Header.
func DefaultColumns() ColumnMap {
	return ColumnMap{DisplayTime: 0, CreatedUTC: 1, MemberName: 2, MemberID: 3, Category: 4, Shop: 5, Amount: 6}
}

// MapHeader builds a ColumnMap from a header row. Unknown columns are
// ignored; missing ones stay -1 and decode to zero values.
func MapHeader(header []string) ColumnMap {
	cm := ColumnMap{DisplayTime: -1, CreatedUTC: -1, MemberName: -1, MemberID: -1, Category: -1, Shop: -1, Amount: -1}
	for i, name := range header {
		switch strings.TrimSpace(strings.ToLower(name)) {
		case "display_time":
			cm.DisplayTime = i
		case "created_utc":
			cm.CreatedUTC = i
		case "member_name":
			cm.MemberName = i
		case "member_id":
			cm.MemberID = i
		case "category":
			cm.Category = i
		case "shop":
			cm.Shop = i
		case "amount":
			cm.Amount = i
		}
	}
	return cm
}

// ImportedRow is one decoded backup row. TimeFellBack reports that
// neither timestamp form parsed and decode-time now was substituted.
type ImportedRow struct {
	Draft        core.Draft
	TimeFellBack bool
}

// EncodeRow flattens a record into Header order, recomputing the
// classification bucket from the category.
func EncodeRow(r core.Record) []string {
	return []string{
		r.DisplayTime,
		r.CreatedUTC.UTC().Format(time.RFC3339),
		r.MemberName,
		r.MemberID,
		r.Category,
		r.Shop,
		r.Amount.DecimalString(),
		Classify(r.Category),
	}
}

// DecodeRow parses one delimited row back into a draft. The canonical
// instant is preferred; the localized display string is the fallback; a
// row with neither gets stamped with now. A bad or non-positive amount
// fails the row (the batch skips and counts it).
func DecodeRow(row []string, cm ColumnMap, loc *time.Location, now time.Time) (ImportedRow, error) {
	get := func(idx int) string {
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}

	cents, err := core.ParseDecimalToCents(get(cm.Amount))
	if err != nil {
		return ImportedRow{}, fmt.Errorf("amount %q: %w", get(cm.Amount), err)
	}
	category := get(cm.Category)
	if category == "" {
		return ImportedRow{}, core.ErrEmptyCategory
	}

	created, fellBack := core.NormalizeTimestamp(get(cm.CreatedUTC), get(cm.DisplayTime), loc, now)
	display := get(cm.DisplayTime)
	if display == "" || fellBack {
		// An unparseable display string would stay inconsistent with the
		// substituted instant forever; re-render it instead.
		display = created.In(loc).Format(core.DisplayLayout)
	}

	return ImportedRow{
		Draft: core.Draft{
			DisplayTime: display,
			CreatedUTC:  created,
			MemberName:  get(cm.MemberName),
			MemberID:    get(cm.MemberID),
			Category:    category,
			Shop:        get(cm.Shop),
			Amount:      core.Money{Cents: cents},
		},
		TimeFellBack: fellBack,
	}, nil
}

// ReadResult reports how a batch decode went. Skipped rows are malformed
// (amount or category); fallbacks are rows whose timestamps did not parse.
type ReadResult struct {
	Rows      []ImportedRow
	Skipped   int
	Fallbacks int
}

// Read decodes a whole CSV stream. A leading header row is detected by
// its amount column failing to parse, and used to build the column map;
// headerless streams decode with the default layout.
func Read(r io.Reader, loc *time.Location, now time.Time) (ReadResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	var res ReadResult
	cm := DefaultColumns()
	first := true
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read csv: %w", err)
		}
		if first {
			first = false
			if _, err := core.ParseDecimalToCents(pick(row, cm.Amount)); err != nil {
				cm = MapHeader(row)
				continue
			}
		}
		imported, err := DecodeRow(row, cm, loc, now)
		if err != nil {
			res.Skipped++
			continue
		}
		if imported.TimeFellBack {
			res.Fallbacks++
		}
		res.Rows = append(res.Rows, imported)
	}
	return res, nil
}

// Write encodes records, oldest first, preceded by the header row.
func Write(w io.Writer, records []core.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	// Records arrive most-recent-first from the store; a backup file
	// reads naturally oldest-first.
	for i := len(records) - 1; i >= 0; i-- {
		if err := cw.Write(EncodeRow(records[i])); err != nil {
			return fmt.Errorf("write row: %w", err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func pick(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}
