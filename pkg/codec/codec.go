// Package codec converts raw spreadsheet cell text to typed field values
// and back. The spreadsheet is hand-edited, so every parser here degrades
// to a zero value instead of failing: a stray "%", a comma decimal or a
// blank cell must never abort a whole table load.
package codec

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the cell format for every date column (day first).
const DateLayout = "02/01/2006"

// ParsePercent reads a percent cell. It tolerates a trailing "%", comma
// decimals and surrounding whitespace. Empty or unparseable input yields 0.
func ParsePercent(raw string) float64 {
	cleaned := strings.ReplaceAll(raw, "%", "")
	cleaned = strings.ReplaceAll(cleaned, ",", ".")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return 0.0
	}
	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0.0
	}
	return f
}

// ParseDate reads a DD/MM/YYYY cell. Blank or unparseable cells yield the
// zero time, which the rest of the module treats as "absent".
func ParseDate(raw string) time.Time {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}
	}
	t, err := time.Parse(DateLayout, trimmed)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ParseInt reads an integer cell. Cells that carry a float rendering
// ("3.0") are truncated; anything else unparseable yields 0.
func ParseInt(raw string) int {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return 0
	}
	if n, err := strconv.Atoi(trimmed); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(strings.ReplaceAll(trimmed, ",", "."), 64); err == nil {
		return int(f)
	}
	return 0
}

// FormatDate renders a date cell. The zero time renders as the empty
// string, never as a zero date.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(DateLayout)
}

// FormatPercent renders the persisted form of a percent: one decimal
// place, no "%" suffix. The suffix is display-only (see DisplayPercent).
func FormatPercent(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

// DisplayPercent renders a percent for the view table.
func DisplayPercent(f float64) string {
	return FormatPercent(f) + "%"
}

// FormatInt renders a whole-number cell.
func FormatInt(n int) string {
	return strconv.Itoa(n)
}
