// Package renew provides the command that updates a document's renewal.
package renew

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/docledger"
	"github.com/agentstation/docledger/internal/appcontext"
	"github.com/agentstation/docledger/internal/cmd/input"
	"github.com/agentstation/docledger/internal/cmd/output"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
)

// Flags holds the renew command options.
type Flags struct {
	Date string
	Time string
	None bool
	File string
}

// NewCommand creates the renew command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "renew <serial>",
		GroupID: "core",
		Short:   "Update a document's renewal date",
		Long: `Renew records a new renewal requirement for a document. The change is
appended to the renewal ledger, so the document moves to the top of the
list and keeps its other details.

Use --none to record that the document no longer needs renewal.`,
		Example: `  docledger renew PN-004 --date 2025-04-01
  docledger renew PN-004 --date 01/04/2025 --time 14:30
  docledger renew PN-004 --date 2025-04-01 --file renewed.pdf
  docledger renew PN-004 --none`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, app, flags, args[0])
		},
	}

	cmd.Flags().StringVar(&flags.Date, "date", "", "New due date (YYYY-MM-DD or DD/MM/YYYY)")
	cmd.Flags().StringVar(&flags.Time, "time", "", "New due time (HH:mm)")
	cmd.Flags().BoolVar(&flags.None, "none", false, "The document no longer needs renewal")
	cmd.Flags().StringVar(&flags.File, "file", "", "Replacement file to upload")

	cmd.MarkFlagsMutuallyExclusive("date", "none")
	cmd.MarkFlagsOneRequired("date", "none")

	return cmd
}

func run(cmd *cobra.Command, app appcontext.Interface, flags *Flags, serial string) error {
	sess, err := appcontext.RequireSession(app)
	if err != nil {
		return err
	}
	if flags.None && flags.Time != "" {
		return errors.NewValidationError("time", flags.Time, "cannot be combined with --none")
	}

	dl, err := app.Ledger(cmd.Context())
	if err != nil {
		return err
	}

	rec, err := dl.Get(serial)
	if err != nil {
		return err
	}
	if len(documents.Scope([]documents.Record{rec}, sess.Viewer())) == 0 {
		return errors.NewNotFoundError("document", serial)
	}

	update := docledger.RenewalUpdate{NeedsRenewal: !flags.None, DueTime: flags.Time}
	if update.DueDate, err = input.ParseDueDate("date", flags.Date, dl.Location()); err != nil {
		return err
	}
	if flags.File != "" {
		if update.File, err = input.ReadUpload(flags.File); err != nil {
			return err
		}
	}

	updated, err := dl.UpdateRenewal(cmd.Context(), serial, update)
	if err != nil {
		return err
	}

	format := output.DetectFormat(app.OutputFormat())
	if format.IsTable() {
		due := updated.RenewalDueAt
		if !updated.NeedsRenewal {
			due = "not required"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renewal for %s set to %s\n", serial, due)
		return nil
	}
	return output.FormatDocuments(cmd.OutOrStdout(), format, []documents.Record{updated}, dl.Now())
}
