package listing

import (
	"strings"
	"time"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2 January 2006",
	"Monday, January 2, 2006",
	"Mon Jan 02 2006",
}

// ParseDate reads the date formats the frontend has stored over time. Formats
// without a zone are interpreted in loc.
func ParseDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// StartOfDay zeroes the time of day in t's location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// IsUpcoming reports whether formattedDate falls on or after the day of now.
// Unparseable dates are never upcoming.
func IsUpcoming(formattedDate string, now time.Time) bool {
	t, ok := ParseDate(formattedDate, now.Location())
	if !ok {
		return false
	}
	return !StartOfDay(t.In(now.Location())).Before(StartOfDay(now))
}
