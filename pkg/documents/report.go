package documents

import (
	"fmt"
	"io"
	"strconv"
	"time"

	md "github.com/nao1215/markdown"
)

// WriteRenewalReport renders buckets as a Markdown report.
func WriteRenewalReport(w io.Writer, b Buckets, now time.Time) error {
	doc := md.NewMarkdown(w)
	doc.H1("Renewal Report")
	doc.PlainTextf("Generated %s. %s documents need renewal.",
		now.Format("02/01/2006 15:04"), md.Bold(strconv.Itoa(b.Total())))
	doc.LF()

	doc.Table(md.TableSet{
		Header: []string{"Status", "Documents"},
		Rows: [][]string{
			{Overdue.String(), strconv.Itoa(len(b.Overdue))},
			{DueToday.String(), strconv.Itoa(len(b.DueToday))},
			{Upcoming.String(), strconv.Itoa(len(b.Upcoming))},
			{NotApplicable.String(), strconv.Itoa(len(b.Required))},
		},
	})

	sections := []struct {
		status  Status
		records []Record
	}{
		{Overdue, b.Overdue},
		{DueToday, b.DueToday},
		{Upcoming, b.Upcoming},
		{NotApplicable, b.Required},
	}
	for _, sec := range sections {
		if len(sec.records) == 0 {
			continue
		}
		doc.H2(sec.status.String())
		doc.Table(md.TableSet{
			Header: []string{"Serial", "Name", "Kind", "Owner", "Due", "Days"},
			Rows:   reportRows(sec.records, now),
		})
	}

	return doc.Build()
}

func reportRows(records []Record, now time.Time) [][]string {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		due := r.RenewalDueAt
		if due == "" {
			due = NotApplicable.String()
		}
		days := "-"
		if n, ok := DaysUntil(r.RenewalDueAt, now); ok {
			days = fmt.Sprintf("%+d", n)
		}
		rows = append(rows, []string{r.SerialNumber, r.Name, string(r.Kind), r.OwnerName, due, days})
	}
	return rows
}
