package documents

import (
	"strings"
	"time"
)

// dateLayouts are tried in order. Day and month accept one or two digits.
var dateLayouts = []string{
	"2/1/2006",
	"2/1/2006 15:04",
	"2/1/2006 15:04:05",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseDate parses s in the local time zone. See ParseDateIn.
func ParseDate(s string) (time.Time, bool) {
	return ParseDateIn(s, time.Local)
}

// ParseDateIn parses a sheet date: DD/MM/YYYY, DD/MM/YYYY HH:mm or ISO-8601.
// Values without a zone are read in loc. Blank and unrecognised input
// reports false and the zero time.
func ParseDateIn(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.In(loc), true
		}
	}
	return time.Time{}, false
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormatDate renders t the way the sheets store dates: DD/MM/YYYY, with
// HH:mm appended when the time of day is not midnight.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	if t.Equal(StartOfDay(t)) {
		return t.Format("02/01/2006")
	}
	return t.Format("02/01/2006 15:04")
}
