// Package aggregate computes totals and ordered listings over a ledger
// snapshot. Every query is a pure function of the snapshot and a single
// "now" resolved once by the caller, so a window can never flicker across
// a boundary mid-computation.
package aggregate

import (
	"sort"
	"time"

	"jizhang/internal/core"
)

// Summary is the result of a period aggregation. Items are chronological
// ascending, the order a period's detail is presented in.
type Summary struct {
	TotalCents int64
	Items      []core.Record
	Count      int
}

// WeekSummary adds the budget line to the personal weekly window.
type WeekSummary struct {
	Summary
	AnchorStart    time.Time // local midnight opening the current cycle
	RemainingCents int64     // budget − total; negative once overspent or with no budget set
}

// Month sums every record whose canonical instant falls in the same local
// calendar month as now. The monthly view is household-wide: it is not
// filtered by member, unlike the weekly view. That asymmetry is
// deliberate and load-bearing.
func Month(records []core.Record, now time.Time, loc *time.Location) Summary {
	localNow := now.In(loc)
	year, month := localNow.Year(), localNow.Month()

	var items []core.Record
	var total int64
	for _, rec := range records {
		local := rec.CreatedUTC.In(loc)
		if local.Year() == year && local.Month() == month {
			items = append(items, rec)
			total += rec.Amount.Cents
		}
	}
	sortChronological(items)
	return Summary{TotalCents: total, Items: items, Count: len(items)}
}

// Week sums the requesting member's own records inside the current weekly
// cycle [anchor, anchor+7d) and reports what is left of the weekly budget.
// Records of other members are excluded regardless of date.
func Week(records []core.Record, now time.Time, loc *time.Location, anchor time.Weekday, memberID string, budgetCents int64) WeekSummary {
	start := CycleStart(now, loc, anchor)
	end := start.AddDate(0, 0, 7)

	var items []core.Record
	var total int64
	for _, rec := range records {
		if rec.MemberID != memberID {
			continue
		}
		local := rec.CreatedUTC.In(loc)
		if !local.Before(start) && local.Before(end) {
			items = append(items, rec)
			total += rec.Amount.Cents
		}
	}
	sortChronological(items)
	return WeekSummary{
		Summary:        Summary{TotalCents: total, Items: items, Count: len(items)},
		AnchorStart:    start,
		RemainingCents: budgetCents - total,
	}
}

// Recent returns up to n records from the snapshot, most-recent-first.
// The snapshot is already in that order; ties at identical timestamps
// keep insertion order.
func Recent(records []core.Record, n int) []core.Record {
	if len(records) > n {
		records = records[:n]
	}
	out := make([]core.Record, len(records))
	copy(out, records)
	return out
}

// CycleStart returns local midnight of the most recent occurrence of the
// anchor weekday on-or-before now. A record dated exactly at the anchor
// instant belongs to the new cycle.
func CycleStart(now time.Time, loc *time.Location, anchor time.Weekday) time.Time {
	local := now.In(loc)
	daysBack := (int(local.Weekday()) - int(anchor) + 7) % 7
	day := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return day.AddDate(0, 0, -daysBack)
}

// sortChronological orders ascending by canonical instant, insertion
// order (id) breaking ties so equal timestamps stay stable.
func sortChronological(items []core.Record) {
	sort.SliceStable(items, func(i, j int) bool {
		if !items[i].CreatedUTC.Equal(items[j].CreatedUTC) {
			return items[i].CreatedUTC.Before(items[j].CreatedUTC)
		}
		return items[i].ID < items[j].ID
	})
}
