// Package remove provides the delete command.
package remove

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/docledger/internal/appcontext"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
)

// NewCommand creates the delete command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <serial>",
		Aliases: []string{"rm"},
		GroupID: "core",
		Short:   "Mark a document as deleted",
		Long: `Delete sets the deletion marker on the ledger row the document came
from. The row itself stays in the sheet; the document disappears from
every view.`,
		Example: `  docledger delete PN-004`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := appcontext.RequireSession(app)
			if err != nil {
				return err
			}
			dl, err := app.Ledger(cmd.Context())
			if err != nil {
				return err
			}

			serial := args[0]
			rec, err := dl.Get(serial)
			if err != nil {
				return err
			}
			if len(documents.Scope([]documents.Record{rec}, sess.Viewer())) == 0 {
				return errors.NewNotFoundError("document", serial)
			}

			if err := dl.MarkDeleted(cmd.Context(), serial); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s)\n", serial, rec.Name)
			return nil
		},
	}
}
