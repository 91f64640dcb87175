// Package documents holds the document record model shared by every ledger
// sheet, the positional row mapper, the renewal classifier and the read-side
// views (scoping, search, filters, statistics and reports).
//
// Rows arrive from the script service as positional string slices. Each sheet
// has its own column table (see Layout) and MapRow turns a row into a Record
// without ever failing: blank, short or malformed rows degrade to zero values.
package documents

import (
	"slices"
	"strings"
	"time"
)

// Kind is the document kind. It also selects the serial prefix.
type Kind string

// Document kinds.
const (
	KindPersonal Kind = "Personal"
	KindCompany  Kind = "Company"
	KindDirector Kind = "Director"
)

// Kinds lists the known kinds in display order.
var Kinds = []Kind{KindPersonal, KindCompany, KindDirector}

// String returns the kind name.
func (k Kind) String() string {
	return string(k)
}

// ParseKind matches a kind name case-insensitively.
func ParseKind(s string) (Kind, bool) {
	s = strings.TrimSpace(s)
	for _, k := range Kinds {
		if strings.EqualFold(s, string(k)) {
			return k, true
		}
	}
	return "", false
}

// Origin names the ledger that contributed the winning version of a record.
// Updates must be sent to the origin's sheet.
type Origin string

// Ledger origins.
const (
	OriginPrimary Origin = "primary"
	OriginRenewal Origin = "renewal"
)

// Sheet returns the backing sheet name for the origin.
func (o Origin) Sheet() string {
	if o == OriginRenewal {
		return SheetRenewals
	}
	return SheetDocuments
}

// String returns the origin name.
func (o Origin) String() string {
	return string(o)
}

// Record is a reconciled document.
//
// DisplayID is the 1-based position in the last reconciled ordering. It is
// recomputed on every pass and never sent to the script service, which
// addresses rows by SerialNumber and RawTimestamp instead.
type Record struct {
	DisplayID       int       `json:"id" yaml:"id"`
	SerialNumber    string    `json:"serial_number" yaml:"serial_number"`
	SourceTimestamp time.Time `json:"timestamp" yaml:"timestamp"`
	RawTimestamp    string    `json:"raw_timestamp,omitempty" yaml:"raw_timestamp,omitempty"`
	SourceOrigin    Origin    `json:"origin" yaml:"origin"`
	Name            string    `json:"name" yaml:"name"`
	Kind            Kind      `json:"kind" yaml:"kind"`
	Category        string    `json:"category,omitempty" yaml:"category,omitempty"`
	Affiliation     string    `json:"affiliation,omitempty" yaml:"affiliation,omitempty"`
	Tags            []string  `json:"tags" yaml:"tags"`
	OwnerName       string    `json:"owner,omitempty" yaml:"owner,omitempty"`
	NeedsRenewal    bool      `json:"needs_renewal" yaml:"needs_renewal"`
	RenewalDueAt    string    `json:"renewal_due_at,omitempty" yaml:"renewal_due_at,omitempty"`
	FileSize        string    `json:"file_size,omitempty" yaml:"file_size,omitempty"`
	ImageReference  string    `json:"image,omitempty" yaml:"image,omitempty"`
	ContactEmail    string    `json:"email,omitempty" yaml:"email,omitempty"`
	ContactMobile   string    `json:"mobile,omitempty" yaml:"mobile,omitempty"`
	IsDeleted       bool      `json:"-" yaml:"-"`
}

// Clone returns a copy that shares no slices with r.
func (r Record) Clone() Record {
	r.Tags = slices.Clone(r.Tags)
	if r.Tags == nil {
		r.Tags = []string{}
	}
	return r
}

// HasTag reports whether the record carries tag, ignoring case.
func (r Record) HasTag(tag string) bool {
	for _, t := range r.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// RenewalStatus classifies the record against now.
func (r Record) RenewalStatus(now time.Time) Status {
	return Classify(r.NeedsRenewal, r.RenewalDueAt, now)
}

// DueDate parses RenewalDueAt, reading date-only values in loc.
func (r Record) DueDate(loc *time.Location) (time.Time, bool) {
	return ParseDateIn(r.RenewalDueAt, loc)
}

// UnionTags returns the tags of a followed by the tags of b that a lacks.
// First-seen order is kept and the result is never nil.
func UnionTags(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	seen := make(map[string]struct{}, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, t := range list {
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// SplitTags splits a tag cell on commas, trimming pieces and dropping empties.
func SplitTags(cell string) []string {
	tags := []string{}
	for _, piece := range strings.Split(cell, ",") {
		if piece = strings.TrimSpace(piece); piece != "" {
			tags = append(tags, piece)
		}
	}
	return tags
}

// JoinTags is the inverse of SplitTags for write requests.
func JoinTags(tags []string) string {
	return strings.Join(tags, ", ")
}

// ApprovalStatus is the review state of an Approval Documents row.
type ApprovalStatus string

// Approval states.
const (
	StatusPending  ApprovalStatus = "Pending"
	StatusApproved ApprovalStatus = "Approved"
	StatusRejected ApprovalStatus = "Rejected"
)

// ApprovalRecord is a document waiting for an administrator's decision.
type ApprovalRecord struct {
	Record `yaml:",inline"`
	Status ApprovalStatus `json:"status" yaml:"status"`
}

// Pending reports whether the row still needs a decision.
func (a ApprovalRecord) Pending() bool {
	return a.Status == StatusPending
}
