package core

import "time"

// Display layouts accepted on the import path. The zero-padded form is
// what this system writes; the unpadded form shows up in spreadsheets
// that went through locale formatting.
var displayLayouts = []string{
	DisplayLayout,
	"2006/1/2 15:04:05",
	"2006/1/2 15:04",
}

// NormalizeTimestamp resolves the canonical instant for an imported row.
// The canonical RFC 3339 form wins when it parses; otherwise the localized
// display string is tried against the known layouts in loc. When neither
// parses the decode-time now is substituted and fellBack reports it, so a
// batch import can count (rather than fail on) rows with mangled dates.
func NormalizeTimestamp(canonical, display string, loc *time.Location, now time.Time) (t time.Time, fellBack bool) {
	if canonical != "" {
		if ts, err := time.Parse(time.RFC3339, canonical); err == nil {
			return ts.UTC(), false
		}
	}
	if display != "" {
		for _, layout := range displayLayouts {
			if ts, err := time.ParseInLocation(layout, display, loc); err == nil {
				return ts.UTC(), false
			}
		}
	}
	return now.UTC(), true
}
