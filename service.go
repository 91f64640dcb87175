package docledger

import (
	"context"

	"github.com/agentstation/docledger/internal/sheets"
	"github.com/agentstation/docledger/pkg/accounts"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/serials"
)

// Compile-time interface check to ensure proper implementation.
var _ Service = (*sheets.Client)(nil)

// Service is the script service the ledger reads from and writes to.
// *sheets.Client is the production implementation.
type Service interface {
	Documents(ctx context.Context) ([]documents.Record, error)
	Renewals(ctx context.Context) ([]documents.Record, error)
	Approvals(ctx context.Context) ([]documents.ApprovalRecord, error)
	Shared(ctx context.Context) ([]documents.SharedRecord, error)
	Master(ctx context.Context) (documents.MasterLists, error)
	Accounts(ctx context.Context) ([]accounts.Account, error)
	NextSerials(ctx context.Context) (serials.Seeds, error)

	Insert(ctx context.Context, row sheets.InsertRow) error
	Approve(ctx context.Context, rec documents.ApprovalRecord, role string) error
	Reject(ctx context.Context, rec documents.ApprovalRecord, role string) error
	MarkDeleted(ctx context.Context, rec documents.Record) error
	UpdateRenewal(ctx context.Context, req sheets.RenewalRequest) (string, error)
	UploadFile(ctx context.Context, up sheets.Upload) (string, error)
	ShareViaEmail(ctx context.Context, share sheets.EmailShare) error
	ShareViaWhatsApp(ctx context.Context, number string, docs []documents.Record) error
}
