package documents

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	loc := time.FixedZone("GST", 4*60*60)
	tests := []struct {
		in   string
		want time.Time
		ok   bool
	}{
		{"15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, loc), true},
		{"5/3/2024", time.Date(2024, 3, 5, 0, 0, 0, 0, loc), true},
		{"15/03/2024 09:30", time.Date(2024, 3, 15, 9, 30, 0, 0, loc), true},
		{" 15/03/2024 09:30:45 ", time.Date(2024, 3, 15, 9, 30, 45, 0, loc), true},
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, loc), true},
		{"2024-03-15T09:30", time.Date(2024, 3, 15, 9, 30, 0, 0, loc), true},
		{"2024-03-15T05:30:00.000Z", time.Date(2024, 3, 15, 9, 30, 0, 0, loc), true},
		{"2024-03-15T09:30:00+04:00", time.Date(2024, 3, 15, 9, 30, 0, 0, loc), true},
		{"", time.Time{}, false},
		{"Required", time.Time{}, false},
		{"31/02/2024", time.Time{}, false},
		{"03/15/2024", time.Time{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseDateIn(tt.in, loc)
			require.Equal(t, tt.ok, ok)
			assert.True(t, tt.want.Equal(got), "got %v want %v", got, tt.want)
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		needs bool
		due   string
		now   time.Time
		want  Status
	}{
		{"due today", true, "15/03/2024", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), DueToday},
		{"overdue after midnight", true, "15/03/2024", time.Date(2024, 3, 16, 0, 0, 1, 0, time.UTC), Overdue},
		{"not needed", false, "15/03/2024", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), NotApplicable},
		{"not needed overdue date", false, "01/01/2000", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), NotApplicable},
		{"upcoming", true, "16/03/2024", time.Date(2024, 3, 15, 23, 59, 0, 0, time.UTC), Upcoming},
		{"due later today", true, "15/03/2024 18:00", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), DueToday},
		{"earlier today is still today", true, "15/03/2024 06:00", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), DueToday},
		{"missing date", true, "", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), NotApplicable},
		{"garbage date", true, "soon", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC), NotApplicable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.needs, tt.due, tt.now))
		})
	}
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "Required", NotApplicable.String())
	assert.Equal(t, "Due Today", DueToday.String())
	text, err := Overdue.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "Overdue", string(text))
}

func TestDaysUntil(t *testing.T) {
	now := time.Date(2024, 3, 15, 22, 0, 0, 0, time.UTC)
	n, ok := DaysUntil("20/03/2024", now)
	require.True(t, ok)
	assert.Equal(t, 5, n)

	n, ok = DaysUntil("14/03/2024 23:59", now)
	require.True(t, ok)
	assert.Equal(t, -1, n)

	_, ok = DaysUntil("", now)
	assert.False(t, ok)
}

func TestRenewalBuckets(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	records := []Record{
		{SerialNumber: "PN-001", NeedsRenewal: true, RenewalDueAt: "20/03/2024"},
		{SerialNumber: "PN-002", NeedsRenewal: true, RenewalDueAt: "17/03/2024"},
		{SerialNumber: "PN-003", NeedsRenewal: true, RenewalDueAt: "01/03/2024"},
		{SerialNumber: "PN-004", NeedsRenewal: true, RenewalDueAt: "15/03/2024"},
		{SerialNumber: "PN-005", NeedsRenewal: true},
		{SerialNumber: "PN-006", NeedsRenewal: false, RenewalDueAt: "01/01/2000"},
		{SerialNumber: "PN-007", NeedsRenewal: true, RenewalDueAt: "01/01/2000", IsDeleted: true},
	}

	b := RenewalBuckets(records, now)

	assert.Equal(t, []string{"PN-003"}, serials(b.Overdue))
	assert.Equal(t, []string{"PN-004"}, serials(b.DueToday))
	assert.Equal(t, []string{"PN-002", "PN-001"}, serials(b.Upcoming))
	assert.Equal(t, []string{"PN-005"}, serials(b.Required))
	assert.Equal(t, 5, b.Total())
}

func TestWriteRenewalReport(t *testing.T) {
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)
	b := RenewalBuckets([]Record{
		{SerialNumber: "PN-003", Name: "Passport", Kind: KindPersonal, NeedsRenewal: true, RenewalDueAt: "01/03/2024"},
		{SerialNumber: "CN-001", Name: "Licence", Kind: KindCompany, NeedsRenewal: true},
	}, now)

	var buf bytes.Buffer
	require.NoError(t, WriteRenewalReport(&buf, b, now))

	out := buf.String()
	assert.Contains(t, out, "# Renewal Report")
	assert.Contains(t, out, "## Overdue")
	assert.Contains(t, out, "## Required")
	assert.NotContains(t, out, "## Upcoming")
	assert.Contains(t, out, "PN-003")
	assert.Contains(t, out, "-14")
}

func serials(records []Record) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.SerialNumber)
	}
	return out
}
