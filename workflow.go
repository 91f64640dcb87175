package docledger

import (
	"context"

	"github.com/agentstation/docledger/internal/sheets"
	"github.com/agentstation/docledger/pkg/accounts"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
)

// Compile-time interface check to ensure proper implementation.
var _ Workflow = (*client)(nil)

// Workflow covers the reads and writes that do not touch the collection.
type Workflow interface {
	// Authenticate checks credentials against the Pass sheet
	Authenticate(ctx context.Context, username, password string) (accounts.Account, error)

	// Approvals returns the pending approval requests
	Approvals(ctx context.Context) ([]documents.ApprovalRecord, error)

	// Approve approves a pending request
	Approve(ctx context.Context, serial, timestamp, role string) error

	// Reject rejects a pending request
	Reject(ctx context.Context, serial, timestamp, role string) error

	// Shared returns the share history
	Shared(ctx context.Context) ([]documents.SharedRecord, error)

	// Master returns the document type and category lists
	Master(ctx context.Context) (documents.MasterLists, error)

	// ShareViaEmail mails links to documents in the collection
	ShareViaEmail(ctx context.Context, share EmailShare) error

	// ShareViaWhatsApp sends documents in the collection to a phone number
	ShareViaWhatsApp(ctx context.Context, number string, serials []string) error
}

// EmailShare is an email share of documents by serial number.
type EmailShare struct {
	RecipientEmail string
	RecipientName  string
	Subject        string
	Message        string
	Serials        []string
}

func (c *client) Authenticate(ctx context.Context, username, password string) (accounts.Account, error) {
	accts, err := c.service.Accounts(ctx)
	if err != nil {
		return accounts.Account{}, err
	}
	acct, err := accounts.Authenticate(accts, username, password)
	if err != nil {
		c.logger.Warn().Str("username", username).Msg("Login rejected")
		return accounts.Account{}, err
	}
	return acct, nil
}

func (c *client) Approvals(ctx context.Context) ([]documents.ApprovalRecord, error) {
	all, err := c.service.Approvals(ctx)
	if err != nil {
		return nil, err
	}
	pending := make([]documents.ApprovalRecord, 0, len(all))
	for _, a := range all {
		if a.Pending() {
			pending = append(pending, a)
		}
	}
	return pending, nil
}

func (c *client) Approve(ctx context.Context, serial, timestamp, role string) error {
	if err := c.service.Approve(ctx, approvalRef(serial, timestamp), role); err != nil {
		return err
	}
	c.logger.Info().Str("serial", serial).Str("role", role).Msg("Approval granted")
	return nil
}

func (c *client) Reject(ctx context.Context, serial, timestamp, role string) error {
	if err := c.service.Reject(ctx, approvalRef(serial, timestamp), role); err != nil {
		return err
	}
	c.logger.Info().Str("serial", serial).Str("role", role).Msg("Approval rejected")
	return nil
}

func approvalRef(serial, timestamp string) documents.ApprovalRecord {
	return documents.ApprovalRecord{
		Record: documents.Record{SerialNumber: serial, RawTimestamp: timestamp},
	}
}

func (c *client) Shared(ctx context.Context) ([]documents.SharedRecord, error) {
	return c.service.Shared(ctx)
}

func (c *client) Master(ctx context.Context) (documents.MasterLists, error) {
	return c.service.Master(ctx)
}

func (c *client) ShareViaEmail(ctx context.Context, share EmailShare) error {
	docs, err := c.resolve(share.Serials)
	if err != nil {
		return err
	}
	return c.service.ShareViaEmail(ctx, sheets.EmailShare{
		RecipientEmail: share.RecipientEmail,
		RecipientName:  share.RecipientName,
		Subject:        share.Subject,
		Message:        share.Message,
		Documents:      docs,
	})
}

func (c *client) ShareViaWhatsApp(ctx context.Context, number string, serials []string) error {
	docs, err := c.resolve(serials)
	if err != nil {
		return err
	}
	return c.service.ShareViaWhatsApp(ctx, number, docs)
}

// resolve looks up every serial in the collection.
func (c *client) resolve(serials []string) ([]documents.Record, error) {
	if len(serials) == 0 {
		return nil, errors.NewValidationError("documents", 0, "select at least one document")
	}
	docs := make([]documents.Record, 0, len(serials))
	for _, s := range serials {
		rec, err := c.Get(s)
		if err != nil {
			return nil, err
		}
		docs = append(docs, rec)
	}
	return docs, nil
}
