// Package table converts ledger values into rows for the CLI table output.
package table

import (
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/docledger/pkg/constants"
	"github.com/agentstation/docledger/pkg/documents"
)

// Align represents column alignment in tables.
type Align int

const (
	// AlignDefault uses the default alignment (skip).
	AlignDefault Align = iota
	// AlignLeft aligns content to the left.
	AlignLeft
	// AlignCenter centers content.
	AlignCenter
	// AlignRight aligns content to the right.
	AlignRight
)

// Data is a rendered table.
type Data struct {
	Headers         []string
	Rows            [][]string
	ColumnAlignment []Align // Optional: column alignment
}

// placeholder fills empty cells.
const placeholder = "-"

// DocumentsToTableData converts records to rows. Wide output adds owner,
// contact and file columns.
func DocumentsToTableData(records []documents.Record, now time.Time, wide bool) Data {
	headers := []string{"ID", "Serial", "Name", "Kind", "Category", "Tags", "Renewal"}
	align := []Align{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignLeft}
	if wide {
		headers = append(headers, "Owner", "Email", "Mobile", "Size", "Added")
		align = append(align, AlignLeft, AlignLeft, AlignLeft, AlignRight, AlignLeft)
	}

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{
			strconv.Itoa(r.DisplayID),
			r.SerialNumber,
			Truncate(r.Name, 40),
			orDash(string(r.Kind)),
			orDash(r.Category),
			orDash(documents.JoinTags(r.Tags)),
			RenewalLabel(r, now),
		}
		if wide {
			row = append(row,
				orDash(r.OwnerName),
				orDash(r.ContactEmail),
				orDash(r.ContactMobile),
				orDash(r.FileSize),
				FormatTime(r.SourceTimestamp),
			)
		}
		rows = append(rows, row)
	}

	return Data{Headers: headers, Rows: rows, ColumnAlignment: align}
}

// BucketsToTableData lists every bucketed record with its urgency.
func BucketsToTableData(b documents.Buckets, now time.Time) Data {
	rows := [][]string{}
	add := func(status documents.Status, records []documents.Record) {
		for _, r := range records {
			days := placeholder
			if n, ok := documents.DaysUntil(r.RenewalDueAt, now); ok {
				days = strconv.Itoa(n)
			}
			rows = append(rows, []string{
				status.String(),
				r.SerialNumber,
				Truncate(r.Name, 40),
				orDash(r.RenewalDueAt),
				days,
			})
		}
	}
	add(documents.Overdue, b.Overdue)
	add(documents.DueToday, b.DueToday)
	add(documents.Upcoming, b.Upcoming)
	add(documents.NotApplicable, b.Required)

	return Data{
		Headers:         []string{"Status", "Serial", "Name", "Due", "Days"},
		Rows:            rows,
		ColumnAlignment: []Align{AlignLeft, AlignLeft, AlignLeft, AlignLeft, AlignRight},
	}
}

// StatsToTableData renders the dashboard counters as metric/value pairs.
func StatsToTableData(s documents.Stats) Data {
	return Data{
		Headers: []string{"Metric", "Value"},
		Rows: [][]string{
			{"Total documents", strconv.Itoa(s.Total)},
			{"Added in last 7 days", strconv.Itoa(s.Recent)},
			{"Shared", strconv.Itoa(s.Shared)},
			{"Needs renewal", strconv.Itoa(s.NeedsRenewal)},
			{"Personal", strconv.Itoa(s.Personal)},
			{"Company", strconv.Itoa(s.Company)},
			{"Director", strconv.Itoa(s.Director)},
		},
		ColumnAlignment: []Align{AlignLeft, AlignRight},
	}
}

// ApprovalsToTableData converts approval requests to rows. The timestamp
// column is the raw cell, which approve and reject need verbatim.
func ApprovalsToTableData(approvals []documents.ApprovalRecord) Data {
	rows := make([][]string, 0, len(approvals))
	for _, a := range approvals {
		rows = append(rows, []string{
			a.SerialNumber,
			Truncate(a.Name, 40),
			orDash(string(a.Kind)),
			orDash(a.OwnerName),
			orDash(a.RawTimestamp),
			string(a.Status),
		})
	}
	return Data{
		Headers: []string{"Serial", "Name", "Kind", "Owner", "Timestamp", "Status"},
		Rows:    rows,
	}
}

// SharedToTableData converts share history rows.
func SharedToTableData(shared []documents.SharedRecord) Data {
	rows := make([][]string, 0, len(shared))
	for _, s := range shared {
		to := s.RecipientEmail
		if to == "" {
			to = s.RecipientMobile
		}
		rows = append(rows, []string{
			FormatTime(s.SharedAt),
			s.RecipientName,
			orDash(to),
			s.ShareMethod,
			orDash(s.SerialNumber),
			Truncate(s.DocumentName, 40),
		})
	}
	return Data{
		Headers: []string{"Shared", "Recipient", "To", "Method", "Serial", "Document"},
		Rows:    rows,
	}
}

// MasterToTableData lays the two reference lists side by side.
func MasterToTableData(m documents.MasterLists) Data {
	n := max(len(m.DocumentTypes), len(m.Categories))
	rows := make([][]string, 0, n)
	for i := range n {
		row := []string{"", ""}
		if i < len(m.DocumentTypes) {
			row[0] = m.DocumentTypes[i]
		}
		if i < len(m.Categories) {
			row[1] = m.Categories[i]
		}
		rows = append(rows, row)
	}
	return Data{Headers: []string{"Document Type", "Category"}, Rows: rows}
}

// RenewalLabel describes the renewal state of r as of now.
func RenewalLabel(r documents.Record, now time.Time) string {
	if !r.NeedsRenewal {
		return placeholder
	}
	status := r.RenewalStatus(now).String()
	if r.RenewalDueAt == "" {
		return status
	}
	return status + " (" + r.RenewalDueAt + ")"
}

// FormatTime renders t in the human layout, or a dash when unset.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return placeholder
	}
	return t.Format(constants.TimeFormatHuman)
}

// Truncate shortens s to at most n runes, marking the cut with "...".
func Truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n || n <= 3 {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}
