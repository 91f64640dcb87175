package sheets

import (
	"context"
	"encoding/json"
	"net/url"

	"github.com/agentstation/docledger/pkg/accounts"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/serials"
)

// Documents fetches and maps the primary ledger.
func (c *Client) Documents(ctx context.Context) ([]documents.Record, error) {
	rows, err := c.Fetch(ctx, documents.SheetDocuments)
	if err != nil {
		return nil, err
	}
	return documents.MapRows(documents.PrimaryLayout, documents.OriginPrimary, rows, c.loc), nil
}

// Renewals fetches and maps the renewal ledger.
func (c *Client) Renewals(ctx context.Context) ([]documents.Record, error) {
	rows, err := c.Fetch(ctx, documents.SheetRenewals)
	if err != nil {
		return nil, err
	}
	return documents.MapRows(documents.RenewalLayout, documents.OriginRenewal, rows, c.loc), nil
}

// Approvals fetches every Approval Documents row, whatever its status.
func (c *Client) Approvals(ctx context.Context) ([]documents.ApprovalRecord, error) {
	rows, err := c.Fetch(ctx, documents.SheetApprovals)
	if err != nil {
		return nil, err
	}
	out := make([]documents.ApprovalRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, documents.MapApproval(row, c.loc))
	}
	return out, nil
}

// Shared fetches the share history.
func (c *Client) Shared(ctx context.Context) ([]documents.SharedRecord, error) {
	rows, err := c.Fetch(ctx, documents.SheetShared)
	if err != nil {
		return nil, err
	}
	out := make([]documents.SharedRecord, 0, len(rows))
	for _, row := range rows {
		out = append(out, documents.MapShared(row, c.loc))
	}
	return out, nil
}

// Master fetches the document type and category lists.
func (c *Client) Master(ctx context.Context) (documents.MasterLists, error) {
	rows, err := c.Fetch(ctx, documents.SheetMaster)
	if err != nil {
		return documents.MasterLists{}, err
	}
	return documents.MapMaster(rows), nil
}

// Accounts fetches the Pass sheet.
func (c *Client) Accounts(ctx context.Context) ([]accounts.Account, error) {
	rows, err := c.Fetch(ctx, documents.SheetAccounts)
	if err != nil {
		return nil, err
	}
	return accounts.MapAccounts(rows), nil
}

// NextSerials reads the service's serial counters.
func (c *Client) NextSerials(ctx context.Context) (serials.Seeds, error) {
	env, err := c.get(ctx, "getNextSerials", url.Values{"action": {"getNextSerials"}})
	if err != nil {
		return serials.Seeds{}, err
	}
	var seeds serials.Seeds
	if len(env.NextSerials) == 0 {
		return seeds, errors.NewParseError("json", "getNextSerials response", "missing nextSerials", nil)
	}
	if err := json.Unmarshal(env.NextSerials, &seeds); err != nil {
		return seeds, errors.WrapParse("json", "nextSerials", err)
	}
	return seeds, nil
}
