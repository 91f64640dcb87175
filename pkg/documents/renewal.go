package documents

import (
	"slices"
	"time"
)

// Status is the renewal urgency of a record.
type Status int

// Renewal states.
const (
	// NotApplicable covers records that do not need renewal and records
	// that need one but carry no usable date. Both render as "Required".
	NotApplicable Status = iota
	Overdue
	DueToday
	Upcoming
)

// String returns the display label.
func (s Status) String() string {
	switch s {
	case Overdue:
		return "Overdue"
	case DueToday:
		return "Due Today"
	case Upcoming:
		return "Upcoming"
	default:
		return "Required"
	}
}

// MarshalText renders the display label.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Classify compares a due date against the start of now's day. Date-only
// values are midnight in now's location.
func Classify(needsRenewal bool, dueAt string, now time.Time) Status {
	if !needsRenewal {
		return NotApplicable
	}
	due, ok := ParseDateIn(dueAt, now.Location())
	if !ok {
		return NotApplicable
	}
	today := StartOfDay(now)
	switch {
	case due.Before(today):
		return Overdue
	case due.Before(today.AddDate(0, 0, 1)):
		return DueToday
	default:
		return Upcoming
	}
}

// DaysUntil returns the whole calendar days from now's date to the due date.
// Negative values are overdue.
func DaysUntil(dueAt string, now time.Time) (int, bool) {
	due, ok := ParseDateIn(dueAt, now.Location())
	if !ok {
		return 0, false
	}
	from := civilDay(now)
	to := civilDay(due)
	return int(to.Sub(from).Hours() / 24), true
}

// civilDay maps a calendar date onto UTC so day arithmetic ignores DST.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Buckets groups the records that need renewal by urgency. Dated buckets are
// ordered by due date, soonest first.
type Buckets struct {
	Overdue  []Record `json:"overdue" yaml:"overdue"`
	DueToday []Record `json:"due_today" yaml:"due_today"`
	Upcoming []Record `json:"upcoming" yaml:"upcoming"`
	Required []Record `json:"required" yaml:"required"`
}

// Total counts every bucketed record.
func (b Buckets) Total() int {
	return len(b.Overdue) + len(b.DueToday) + len(b.Upcoming) + len(b.Required)
}

// RenewalBuckets classifies every live record that needs renewal.
func RenewalBuckets(records []Record, now time.Time) Buckets {
	b := Buckets{
		Overdue:  []Record{},
		DueToday: []Record{},
		Upcoming: []Record{},
		Required: []Record{},
	}
	for _, r := range records {
		if r.IsDeleted || !r.NeedsRenewal {
			continue
		}
		switch r.RenewalStatus(now) {
		case Overdue:
			b.Overdue = append(b.Overdue, r)
		case DueToday:
			b.DueToday = append(b.DueToday, r)
		case Upcoming:
			b.Upcoming = append(b.Upcoming, r)
		default:
			b.Required = append(b.Required, r)
		}
	}
	loc := now.Location()
	for _, list := range [][]Record{b.Overdue, b.DueToday, b.Upcoming} {
		SortByDueDate(list, loc)
	}
	return b
}

// SortByDueDate orders records by parsed due date, soonest first. Records
// without a usable date go last in their existing order.
func SortByDueDate(records []Record, loc *time.Location) {
	slices.SortStableFunc(records, func(a, b Record) int {
		ta, okA := a.DueDate(loc)
		tb, okB := b.DueDate(loc)
		switch {
		case okA && okB:
			return ta.Compare(tb)
		case okA:
			return -1
		case okB:
			return 1
		}
		return 0
	})
}
