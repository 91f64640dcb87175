// Package approvals provides commands for reviewing approval requests.
package approvals

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentstation/docledger/internal/appcontext"
	"github.com/agentstation/docledger/internal/cmd/output"
)

// NewCommand creates the approvals command and its subcommands.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "approvals",
		Aliases: []string{"approval"},
		GroupID: "management",
		Short:   "Review pending approval requests (administrators)",
		Long: `Approvals lists pending requests and records decisions on them.

A request is identified by its serial number and the timestamp shown
by 'docledger approvals list'.`,
		Example: `  docledger approvals list
  docledger approvals approve PN-004 "14/03/2024 10:00"
  docledger approvals reject PN-004 "14/03/2024 10:00"`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newListCommand(app))
	cmd.AddCommand(newDecisionCommand(app, "approve"))
	cmd.AddCommand(newDecisionCommand(app, "reject"))

	return cmd
}

func newListCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List pending approval requests",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if _, err := appcontext.RequireAdmin(app); err != nil {
				return err
			}
			dl, err := app.Ledger(cmd.Context())
			if err != nil {
				return err
			}
			pending, err := dl.Approvals(cmd.Context())
			if err != nil {
				return err
			}
			return output.FormatApprovals(cmd.OutOrStdout(), output.DetectFormat(app.OutputFormat()), pending)
		},
	}
}

// newDecisionCommand creates the approve or reject subcommand.
func newDecisionCommand(app appcontext.Interface, action string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <serial> <timestamp>",
		Short: fmt.Sprintf("%s a pending request", titles[action]),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			sess, err := appcontext.RequireAdmin(app)
			if err != nil {
				return err
			}
			dl, err := app.Ledger(cmd.Context())
			if err != nil {
				return err
			}

			serial, timestamp := args[0], args[1]
			decide := dl.Approve
			if action == "reject" {
				decide = dl.Reject
			}
			if err := decide(cmd.Context(), serial, timestamp, sess.Role); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", past[action], serial, timestamp)
			return nil
		},
	}
}

var (
	titles = map[string]string{"approve": "Approve", "reject": "Reject"}
	past   = map[string]string{"approve": "Approved", "reject": "Rejected"}
)
