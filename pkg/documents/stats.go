package documents

import (
	"slices"
	"time"

	"github.com/agentstation/docledger/pkg/constants"
)

// Stats is the dashboard summary.
type Stats struct {
	Total        int `json:"total" yaml:"total"`
	Recent       int `json:"recent" yaml:"recent"`
	Shared       int `json:"shared" yaml:"shared"`
	NeedsRenewal int `json:"needs_renewal" yaml:"needs_renewal"`
	Personal     int `json:"personal" yaml:"personal"`
	Company      int `json:"company" yaml:"company"`
	Director     int `json:"director" yaml:"director"`

	RecentDocuments  []Record `json:"recent_documents" yaml:"recent_documents"`
	UpcomingRenewals []Record `json:"upcoming_renewals" yaml:"upcoming_renewals"`
}

// ComputeStats summarises records and the share history as of now.
func ComputeStats(records []Record, shared []SharedRecord, now time.Time) Stats {
	s := Stats{
		Shared:           len(shared),
		RecentDocuments:  []Record{},
		UpcomingRenewals: []Record{},
	}
	since := now.Add(-constants.RecentWindow)

	var recent, renewals []Record
	for _, r := range records {
		if r.IsDeleted {
			continue
		}
		s.Total++
		switch r.Kind {
		case KindPersonal:
			s.Personal++
		case KindCompany:
			s.Company++
		case KindDirector:
			s.Director++
		}
		if !r.SourceTimestamp.IsZero() && r.SourceTimestamp.After(since) {
			s.Recent++
			recent = append(recent, r)
		}
		if r.NeedsRenewal {
			s.NeedsRenewal++
			renewals = append(renewals, r)
		}
	}

	slices.SortStableFunc(recent, func(a, b Record) int {
		return b.SourceTimestamp.Compare(a.SourceTimestamp)
	})
	SortByDueDate(renewals, now.Location())

	s.RecentDocuments = append(s.RecentDocuments, recent[:min(len(recent), constants.RecentListLimit)]...)
	s.UpcomingRenewals = append(s.UpcomingRenewals, renewals[:min(len(renewals), constants.RenewalListLimit)]...)
	return s
}
