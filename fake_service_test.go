package docledger_test

import (
	"context"
	"sync"

	"github.com/agentstation/docledger/internal/sheets"
	"github.com/agentstation/docledger/pkg/accounts"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/serials"
)

// fakeService is an in-memory script service.
type fakeService struct {
	mu sync.Mutex

	primary   []documents.Record
	renewals  []documents.Record
	approvals []documents.ApprovalRecord
	shared    []documents.SharedRecord
	master    documents.MasterLists
	accounts  []accounts.Account
	seeds     serials.Seeds

	// documentsGate, when set, blocks Documents until it is closed.
	// documentsEntered is signalled when a gated call starts waiting.
	documentsGate    chan struct{}
	documentsEntered chan struct{}

	errDocuments error
	errRenewals  error
	errInsertAt  int // 1-based insert call that fails, 0 for never
	errUpload    error
	errWrite     error

	inserts      []sheets.InsertRow
	uploads      []sheets.Upload
	deleted      []documents.Record
	renewalReqs  []sheets.RenewalRequest
	approved     []documents.ApprovalRecord
	rejected     []documents.ApprovalRecord
	emailShares  []sheets.EmailShare
	whatsappDocs []documents.Record
	whatsappTo   string
	newSerial    string
}

func (f *fakeService) Documents(ctx context.Context) ([]documents.Record, error) {
	f.mu.Lock()
	gate, entered := f.documentsGate, f.documentsEntered
	f.mu.Unlock()
	if gate != nil {
		if entered != nil {
			entered <- struct{}{}
		}
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errDocuments != nil {
		return nil, f.errDocuments
	}
	return clone(f.primary), nil
}

func (f *fakeService) Renewals(context.Context) ([]documents.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errRenewals != nil {
		return nil, f.errRenewals
	}
	return clone(f.renewals), nil
}

func (f *fakeService) Approvals(context.Context) ([]documents.ApprovalRecord, error) {
	return f.approvals, nil
}

func (f *fakeService) Shared(context.Context) ([]documents.SharedRecord, error) {
	return f.shared, nil
}

func (f *fakeService) Master(context.Context) (documents.MasterLists, error) {
	return f.master, nil
}

func (f *fakeService) Accounts(context.Context) ([]accounts.Account, error) {
	return f.accounts, nil
}

func (f *fakeService) NextSerials(context.Context) (serials.Seeds, error) {
	return f.seeds, nil
}

func (f *fakeService) Insert(_ context.Context, row sheets.InsertRow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.errInsertAt > 0 && len(f.inserts)+1 == f.errInsertAt {
		return errors.NewServiceError("insert", "Sheet is locked")
	}
	f.inserts = append(f.inserts, row)
	return nil
}

func (f *fakeService) Approve(_ context.Context, rec documents.ApprovalRecord, _ string) error {
	f.approved = append(f.approved, rec)
	return f.errWrite
}

func (f *fakeService) Reject(_ context.Context, rec documents.ApprovalRecord, _ string) error {
	f.rejected = append(f.rejected, rec)
	return f.errWrite
}

func (f *fakeService) MarkDeleted(_ context.Context, rec documents.Record) error {
	if f.errWrite != nil {
		return f.errWrite
	}
	f.deleted = append(f.deleted, rec)
	return nil
}

func (f *fakeService) UpdateRenewal(_ context.Context, req sheets.RenewalRequest) (string, error) {
	if f.errWrite != nil {
		return "", f.errWrite
	}
	f.renewalReqs = append(f.renewalReqs, req)
	if f.newSerial != "" {
		return f.newSerial, nil
	}
	return req.Record.SerialNumber, nil
}

func (f *fakeService) UploadFile(_ context.Context, up sheets.Upload) (string, error) {
	if f.errUpload != nil {
		return "", f.errUpload
	}
	f.uploads = append(f.uploads, up)
	return "https://drive.google.com/file/d/" + up.FileName + "/view", nil
}

func (f *fakeService) ShareViaEmail(_ context.Context, share sheets.EmailShare) error {
	f.emailShares = append(f.emailShares, share)
	return nil
}

func (f *fakeService) ShareViaWhatsApp(_ context.Context, number string, docs []documents.Record) error {
	f.whatsappTo = number
	f.whatsappDocs = docs
	return nil
}

func clone(recs []documents.Record) []documents.Record {
	out := make([]documents.Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}
