// Package renewals provides the command showing renewal deadlines.
package renewals

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docledger/internal/appcontext"
	"github.com/agentstation/docledger/internal/cmd/output"
	"github.com/agentstation/docledger/pkg/documents"
)

// NewCommand creates the renewals command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var report bool

	cmd := &cobra.Command{
		Use:     "renewals",
		Aliases: []string{"renewal"},
		GroupID: "core",
		Short:   "Show documents that need renewal",
		Long: `Renewals groups the documents that need renewal by how close their
due date is: overdue, due today, upcoming and required (no due date yet).

With --report the groups are written as a Markdown report.`,
		Example: `  docledger renewals                        # Renewal buckets
  docledger renewals --report > renewals.md # Markdown report`,
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

			now := dl.Now()
			buckets := documents.RenewalBuckets(documents.Scope(dl.Documents(), sess.Viewer()), now)

			if report {
				return documents.WriteRenewalReport(cmd.OutOrStdout(), buckets, now)
			}
			return output.FormatBuckets(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), buckets, now)
		},
	}

	cmd.Flags().BoolVar(&report, "report", false, "Write a Markdown report")

	return cmd
}
