package scenario

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the canonical date format for assumptions and extracts.
const DateLayout = "2006-01-02"

var dateLayouts = []string{DateLayout, "02/01/2006", "2006/01/02"}

// ParseDate parses a calendar date in UTC. Accepted layouts are
// YYYY-MM-DD, DD/MM/YYYY and YYYY/MM/DD.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("malformed date %q (want YYYY-MM-DD)", s)
}

// AddMonths adds n calendar months to t, clamping to the last day of the
// target month when t's day does not exist there (Jan 31 + 1 = Feb 28/29).
func AddMonths(t time.Time, n int) time.Time {
	y, m, d := t.Date()
	total := int(m) - 1 + n
	y += total / 12
	total %= 12
	if total < 0 {
		total += 12
		y--
	}
	month := time.Month(total + 1)

	if last := daysIn(y, month); d > last {
		d = last
	}
	return time.Date(y, month, d, 0, 0, 0, 0, t.Location())
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
