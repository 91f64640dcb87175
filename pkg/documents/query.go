package documents

import (
	"strings"
)

// Viewer is who a view is rendered for.
type Viewer struct {
	Name  string
	Admin bool
}

// Scope returns the records v may see: everything for administrators,
// otherwise only records owned by v. Deleted records are always dropped.
func Scope(records []Record, v Viewer) []Record {
	out := make([]Record, 0, len(records))
	name := strings.TrimSpace(v.Name)
	for _, r := range records {
		if r.IsDeleted {
			continue
		}
		if v.Admin || strings.EqualFold(strings.TrimSpace(r.OwnerName), name) {
			out = append(out, r)
		}
	}
	return out
}

// Search keeps records matching query case-insensitively on any text
// field or tag. An empty query keeps everything.
func Search(records []Record, query string) []Record {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return records
	}
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return out
}

func matches(r Record, q string) bool {
	fields := []string{
		r.Name,
		string(r.Kind),
		r.Category,
		r.Affiliation,
		r.ContactEmail,
		r.ContactMobile,
		r.SerialNumber,
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	for _, t := range r.Tags {
		if strings.Contains(strings.ToLower(t), q) {
			return true
		}
	}
	return false
}

// FilterAll disables a filter dimension.
const FilterAll = "All"

// FilterRenewal as a category keeps records that need renewal.
const FilterRenewal = "Renewal"

// Filter narrows records by category and kind.
type Filter struct {
	Category string
	Kind     string
}

// Apply returns the records that pass f.
func (f Filter) Apply(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.match(r) {
			out = append(out, r)
		}
	}
	return out
}

func (f Filter) match(r Record) bool {
	switch f.Category {
	case "", FilterAll:
	case FilterRenewal:
		if !r.NeedsRenewal {
			return false
		}
	default:
		if r.Category != f.Category {
			return false
		}
	}
	if f.Kind != "" && f.Kind != FilterAll && string(r.Kind) != f.Kind {
		return false
	}
	return true
}

// SharedFor returns the share history rows v may see. Non-administrators see
// rows whose recipient name contains their own name.
func SharedFor(shared []SharedRecord, v Viewer) []SharedRecord {
	if v.Admin {
		return shared
	}
	name := strings.ToLower(strings.TrimSpace(v.Name))
	out := make([]SharedRecord, 0, len(shared))
	if name == "" {
		return out
	}
	for _, s := range shared {
		if strings.Contains(strings.ToLower(s.RecipientName), name) {
			out = append(out, s)
		}
	}
	return out
}

// FindBySerial returns the first record with serial.
func FindBySerial(records []Record, serial string) (Record, bool) {
	if serial == "" {
		return Record{}, false
	}
	for _, r := range records {
		if r.SerialNumber == serial {
			return r, true
		}
	}
	return Record{}, false
}
