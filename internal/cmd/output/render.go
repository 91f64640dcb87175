package output

import (
	"io"
	"time"

	"github.com/agentstation/docledger/internal/cmd/table"
	"github.com/agentstation/docledger/pkg/documents"
)

// Render writes data in format. Table formats use tabular, which is given
// whether the wide layout was requested; other formats encode data as is.
func Render(w io.Writer, format Format, data any, tabular func(wide bool) Data) error {
	formatter := NewFormatter(format)
	if format.IsTable() && tabular != nil {
		return formatter.Format(w, tabular(format == FormatWide))
	}
	return formatter.Format(w, data)
}

// FormatDocuments writes reconciled records.
func FormatDocuments(w io.Writer, format Format, records []documents.Record, now time.Time) error {
	return Render(w, format, records, func(wide bool) Data {
		return table.DocumentsToTableData(records, now, wide)
	})
}

// FormatBuckets writes the renewal buckets.
func FormatBuckets(w io.Writer, format Format, b documents.Buckets, now time.Time) error {
	return Render(w, format, b, func(bool) Data {
		return table.BucketsToTableData(b, now)
	})
}

// FormatStats writes the dashboard summary.
func FormatStats(w io.Writer, format Format, s documents.Stats) error {
	return Render(w, format, s, func(bool) Data {
		return table.StatsToTableData(s)
	})
}

// FormatApprovals writes approval requests.
func FormatApprovals(w io.Writer, format Format, approvals []documents.ApprovalRecord) error {
	return Render(w, format, approvals, func(bool) Data {
		return table.ApprovalsToTableData(approvals)
	})
}

// FormatShared writes share history rows.
func FormatShared(w io.Writer, format Format, shared []documents.SharedRecord) error {
	return Render(w, format, shared, func(bool) Data {
		return table.SharedToTableData(shared)
	})
}

// FormatMaster writes the reference lists.
func FormatMaster(w io.Writer, format Format, m documents.MasterLists) error {
	return Render(w, format, m, func(bool) Data {
		return table.MasterToTableData(m)
	})
}
