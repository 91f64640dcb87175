// Package sheetstest provides an in-memory script service for tests of the
// packages built on the ledger.
package sheetstest

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/agentstation/docledger/internal/sheets"
	"github.com/agentstation/docledger/pkg/accounts"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/serials"
)

// Memory keeps the sheets in memory. Writes are visible to the next read,
// the way the script service behaves. The zero value is ready to use.
type Memory struct {
	mu sync.Mutex

	Primary      []documents.Record
	RenewalRows  []documents.Record
	ApprovalRows []documents.ApprovalRecord
	SharedRows   []documents.SharedRecord
	MasterLists  documents.MasterLists
	AccountRows  []accounts.Account
	Seeds        serials.Seeds

	// Err, when set, fails every call.
	Err error

	Uploads       []sheets.Upload
	EmailShares   []sheets.EmailShare
	WhatsAppSends []string
}

// Documents returns the live primary rows.
func (m *Memory) Documents(context.Context) ([]documents.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return cloneRecords(m.Primary), nil
}

// Renewals returns the renewal rows.
func (m *Memory) Renewals(context.Context) ([]documents.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return cloneRecords(m.RenewalRows), nil
}

// Approvals returns every approval row.
func (m *Memory) Approvals(context.Context) ([]documents.ApprovalRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.ApprovalRows), nil
}

// Shared returns the share history.
func (m *Memory) Shared(context.Context) ([]documents.SharedRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.SharedRows), nil
}

// Master returns the reference lists.
func (m *Memory) Master(context.Context) (documents.MasterLists, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.MasterLists, m.Err
}

// Accounts returns the Pass sheet.
func (m *Memory) Accounts(context.Context) ([]accounts.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.AccountRows), m.Err
}

// NextSerials returns the configured counters.
func (m *Memory) NextSerials(context.Context) (serials.Seeds, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Seeds, m.Err
}

// Insert appends the row to the primary sheet and advances its counter.
func (m *Memory) Insert(_ context.Context, row sheets.InsertRow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	ts, _ := documents.ParseDateIn(row.Timestamp, time.UTC)
	m.Primary = append(m.Primary, documents.Record{
		SerialNumber:    row.SerialNumber,
		SourceTimestamp: ts,
		RawTimestamp:    row.Timestamp,
		SourceOrigin:    documents.OriginPrimary,
		Name:            row.Name,
		Kind:            row.Kind,
		Category:        row.Category,
		Affiliation:     row.Affiliation,
		Tags:            slices.Clone(row.Tags),
		OwnerName:       row.OwnerName,
		NeedsRenewal:    row.NeedsRenewal,
		RenewalDueAt:    row.RenewalDueAt,
		FileSize:        row.FileSize,
		ImageReference:  row.FileURL,
		ContactEmail:    row.ContactEmail,
		ContactMobile:   row.ContactPhone,
	})
	if _, n, err := serials.Parse(row.SerialNumber); err == nil {
		m.Seeds = advance(m.Seeds, row.Kind, n)
	}
	return nil
}

// Approve marks the matching approval row approved.
func (m *Memory) Approve(_ context.Context, rec documents.ApprovalRecord, _ string) error {
	return m.decide(rec, documents.StatusApproved)
}

// Reject marks the matching approval row rejected.
func (m *Memory) Reject(_ context.Context, rec documents.ApprovalRecord, _ string) error {
	return m.decide(rec, documents.StatusRejected)
}

func (m *Memory) decide(rec documents.ApprovalRecord, status documents.ApprovalStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for i, a := range m.ApprovalRows {
		if a.SerialNumber == rec.SerialNumber && a.RawTimestamp == rec.RawTimestamp {
			m.ApprovalRows[i].Status = status
			return nil
		}
	}
	return errors.NewServiceError("approve", "Document not found")
}

// MarkDeleted drops the record from its origin sheet.
func (m *Memory) MarkDeleted(_ context.Context, rec documents.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	drop := func(r documents.Record) bool { return r.SerialNumber == rec.SerialNumber }
	if rec.SourceOrigin == documents.OriginRenewal {
		m.RenewalRows = slices.DeleteFunc(m.RenewalRows, drop)
	} else {
		m.Primary = slices.DeleteFunc(m.Primary, drop)
	}
	return nil
}

// UpdateRenewal appends an amendment to the renewal sheet.
func (m *Memory) UpdateRenewal(_ context.Context, req sheets.RenewalRequest) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	rec := req.Record.Clone()
	rec.SourceOrigin = documents.OriginRenewal
	rec.NeedsRenewal = req.NeedsRenewal
	rec.RenewalDueAt = req.RenewalDate
	rec.RawTimestamp = req.Timestamp
	rec.SourceTimestamp, _ = documents.ParseDateIn(req.Timestamp, time.UTC)
	if req.ImageURL != "" {
		rec.ImageReference = req.ImageURL
	}
	m.RenewalRows = append(m.RenewalRows, rec)
	return rec.SerialNumber, nil
}

// UploadFile records the upload and returns a Drive-style link.
func (m *Memory) UploadFile(_ context.Context, up sheets.Upload) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	m.Uploads = append(m.Uploads, up)
	return "https://drive.google.com/file/d/" + up.FileName + "/view", nil
}

// ShareViaEmail records the share.
func (m *Memory) ShareViaEmail(_ context.Context, share sheets.EmailShare) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.EmailShares = append(m.EmailShares, share)
	return nil
}

// ShareViaWhatsApp records the destination number.
func (m *Memory) ShareViaWhatsApp(_ context.Context, number string, _ []documents.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.WhatsAppSends = append(m.WhatsAppSends, number)
	return nil
}

func advance(s serials.Seeds, kind documents.Kind, used int) serials.Seeds {
	switch kind {
	case documents.KindPersonal:
		s.Personal = max(s.Personal, used+1)
	case documents.KindCompany:
		s.Company = max(s.Company, used+1)
	case documents.KindDirector:
		s.Director = max(s.Director, used+1)
	}
	return s
}

func cloneRecords(recs []documents.Record) []documents.Record {
	out := make([]documents.Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}
