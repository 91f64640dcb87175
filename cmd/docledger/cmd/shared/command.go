// Package shared provides the command listing share history.
package shared

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docledger/internal/appcontext"
	"github.com/agentstation/docledger/internal/cmd/output"
	"github.com/agentstation/docledger/pkg/documents"
)

// NewCommand creates the shared command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "shared",
		GroupID: "core",
		Short:   "List documents shared with you",
		Long: `Shared lists the share history. Administrators see every share;
other users see the shares addressed to them.`,
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

			rows, err := dl.Shared(cmd.Context())
			if err != nil {
				return err
			}
			rows = documents.SharedFor(rows, sess.Viewer())
			return output.FormatShared(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), rows)
		},
	}
}
