// Package dashboard provides the command printing ledger statistics.
package dashboard

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docledger/internal/appcontext"
	"github.com/agentstation/docledger/internal/cmd/output"
	"github.com/agentstation/docledger/pkg/documents"
)

// NewCommand creates the dashboard command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "dashboard",
		Aliases: []string{"stats"},
		GroupID: "core",
		Short:   "Show ledger statistics",
		Long: `Dashboard summarises the documents you can see: totals by kind,
documents added in the last week, shares and pending renewals.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := appcontext.RequireSession(app)
			if err != nil {
				return err
			}
			dl, err := app.Ledger(cmd.Context())
			if err != nil {
				return err
			}

			shared, err := dl.Shared(cmd.Context())
			if err != nil {
				return err
			}

			viewer := sess.Viewer()
			stats := documents.ComputeStats(
				documents.Scope(dl.Documents(), viewer),
				documents.SharedFor(shared, viewer),
				dl.Now(),
			)
			return output.FormatStats(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), stats)
		},
	}
}
