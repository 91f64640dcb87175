package documents

import (
	"strings"
	"time"
)

// MapRow converts one positional row into a Record using layout. It never
// panics: missing and blank cells leave the field at its zero value.
//
// Timestamps are parsed in the local zone; use MapRowIn to pick another.
func MapRow(layout Layout, origin Origin, row []string) Record {
	return MapRowIn(layout, origin, row, time.Local)
}

// MapRowIn is MapRow with an explicit location for zone-less timestamps.
func MapRowIn(layout Layout, origin Origin, row []string, loc *time.Location) Record {
	// Flag cells are compared exactly as written; everything else is trimmed.
	raw := func(f Field) string {
		idx, ok := layout.Column(f)
		if !ok || idx < 0 || idx >= len(row) {
			return ""
		}
		return row[idx]
	}
	cell := func(f Field) string { return strings.TrimSpace(raw(f)) }

	r := Record{
		SerialNumber:   cell(FieldSerial),
		RawTimestamp:   cell(FieldTimestamp),
		SourceOrigin:   origin,
		Name:           cell(FieldName),
		Category:       cell(FieldCategory),
		Affiliation:    cell(FieldAffiliation),
		Tags:           SplitTags(cell(FieldTags)),
		OwnerName:      cell(FieldOwner),
		NeedsRenewal:   IsTrue(raw(FieldNeedsRenewal)),
		RenewalDueAt:   cell(FieldRenewalDue),
		FileSize:       cell(FieldFileSize),
		ImageReference: cell(FieldImage),
		ContactEmail:   cell(FieldEmail),
		ContactMobile:  cell(FieldMobile),
		IsDeleted:      IsDeletionMarker(raw(FieldDeletion)),
	}

	if ts, ok := ParseDateIn(r.RawTimestamp, loc); ok {
		r.SourceTimestamp = ts
	}

	if layout.Has(FieldKind) {
		r.Kind = KindPersonal
		if k, ok := ParseKind(cell(FieldKind)); ok {
			r.Kind = k
		}
	}

	if layout.Has(FieldRenewalInfo) {
		r.NeedsRenewal, r.RenewalDueAt = interpretRenewalInfo(cell(FieldRenewalInfo), loc)
	}

	return r
}

// MapRows maps every row with MapRowIn.
func MapRows(layout Layout, origin Origin, rows [][]string, loc *time.Location) []Record {
	out := make([]Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, MapRowIn(layout, origin, row, loc))
	}
	return out
}

// MapApproval maps an Approval Documents row. A blank status is pending.
func MapApproval(row []string, loc *time.Location) ApprovalRecord {
	a := ApprovalRecord{
		Record: MapRowIn(ApprovalLayout, OriginPrimary, row, loc),
		Status: StatusPending,
	}
	if idx, ok := ApprovalLayout.Column(FieldStatus); ok && idx < len(row) {
		switch s := strings.TrimSpace(row[idx]); {
		case strings.EqualFold(s, string(StatusApproved)):
			a.Status = StatusApproved
		case strings.EqualFold(s, string(StatusRejected)):
			a.Status = StatusRejected
		}
	}
	return a
}

// IsTrue reports whether a boolean-like cell is set. Only the literal
// values "TRUE" and "Yes" count.
func IsTrue(cell string) bool {
	return cell == "TRUE" || cell == "Yes"
}

// IsDeletionMarker reports whether a cell marks the row as deleted.
func IsDeletionMarker(cell string) bool {
	switch cell {
	case "DELETED", "Deleted", "deleted":
		return true
	}
	return false
}

// interpretRenewalInfo reads the renewal ledger's combined column: a date
// means renewal is due then, otherwise a marker phrase means it is due
// without a date.
func interpretRenewalInfo(info string, loc *time.Location) (bool, string) {
	if info == "" {
		return false, ""
	}
	if _, ok := ParseDateIn(info, loc); ok {
		return true, info
	}
	needs := IsTrue(info) ||
		info == "Requires Renewal" ||
		strings.Contains(strings.ToLower(info), "renew")
	return needs, ""
}
