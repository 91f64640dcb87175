// Package share provides commands for sending documents to other people.
package share

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/docledger"
	"github.com/agentstation/docledger/internal/appcontext"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
)

// NewCommand creates the share command and its subcommands.
func NewCommand(app appcontext.Interface) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "share",
		GroupID: "core",
		Short:   "Share documents by email or WhatsApp",
		Long: `Share sends links to one or more documents. The script service
delivers the message and records the share in the share history.`,
		Example: `  docledger share email PN-001 CN-002 --to bob@example.com --name Bob
  docledger share whatsapp PN-001 --number +971500000000`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newEmailCommand(app))
	cmd.AddCommand(newWhatsAppCommand(app))

	return cmd
}

func newEmailCommand(app appcontext.Interface) *cobra.Command {
	var share docledger.EmailShare

	cmd := &cobra.Command{
		Use:   "email <serial>...",
		Short: "Share documents by email",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(share.RecipientEmail) == "" {
				return errors.NewValidationError("to", "", "a recipient email is required")
			}
			dl, err := visible(cmd, app, args)
			if err != nil {
				return err
			}

			share.Serials = args
			if err := dl.ShareViaEmail(cmd.Context(), share); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shared %d document(s) with %s\n", len(args), share.RecipientEmail)
			return nil
		},
	}

	cmd.Flags().StringVar(&share.RecipientEmail, "to", "", "Recipient email address")
	cmd.Flags().StringVar(&share.RecipientName, "name", "", "Recipient name")
	cmd.Flags().StringVar(&share.Subject, "subject", "", "Email subject")
	cmd.Flags().StringVar(&share.Message, "message", "", "Message to include")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

func newWhatsAppCommand(app appcontext.Interface) *cobra.Command {
	var number string

	cmd := &cobra.Command{
		Use:     "whatsapp <serial>...",
		Aliases: []string{"wa"},
		Short:   "Share documents by WhatsApp",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(number) == "" {
				return errors.NewValidationError("number", "", "a phone number is required")
			}
			dl, err := visible(cmd, app, args)
			if err != nil {
				return err
			}

			if err := dl.ShareViaWhatsApp(cmd.Context(), number, args); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Shared %d document(s) with %s\n", len(args), number)
			return nil
		},
	}

	cmd.Flags().StringVar(&number, "number", "", "Recipient phone number in international format")
	_ = cmd.MarkFlagRequired("number")

	return cmd
}

// visible loads the ledger and checks the session may see every serial.
func visible(cmd *cobra.Command, app appcontext.Interface, serials []string) (docledger.Client, error) {
	sess, err := appcontext.RequireSession(app)
	if err != nil {
		return nil, err
	}
	dl, err := app.Ledger(cmd.Context())
	if err != nil {
		return nil, err
	}
	for _, serial := range serials {
		rec, err := dl.Get(serial)
		if err != nil {
			return nil, err
		}
		if len(documents.Scope([]documents.Record{rec}, sess.Viewer())) == 0 {
			return nil, errors.NewNotFoundError("document", serial)
		}
	}
	return dl, nil
}
