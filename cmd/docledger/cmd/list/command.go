// Package list provides the command for listing ledger documents.
package list

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/agentstation/docledger"
	"github.com/agentstation/docledger/internal/appcontext"
	"github.com/agentstation/docledger/internal/cmd/output"
	"github.com/agentstation/docledger/internal/session"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
)

// AppContext defines the interface that the list command needs from the app.
// This allows for better testability and decoupling from the full app.
type AppContext interface {
	Ledger(ctx context.Context) (docledger.Client, error)
	Sessions() (*session.Manager, error)
	Logger() *zerolog.Logger
	OutputFormat() string
}

// Flags holds the list command options.
type Flags struct {
	Search   string
	Category string
	Kind     string
	AllUsers bool
	Limit    int
}

// NewCommand creates the list command with app dependencies.
func NewCommand(app AppContext) *cobra.Command {
	flags := &Flags{}

	cmd := &cobra.Command{
		Use:     "list [serial]",
		Aliases: []string{"ls"},
		GroupID: "core",
		Short:   "List documents from the reconciled ledger",
		Long: `List displays documents from the primary and renewal ledgers,
reconciled into one collection with the newest version of every serial
number first.

Only your own documents are listed. Administrators can list every
user's documents with --all-users.`,
		Example: `  docledger list                            # Your documents
  docledger list PN-004                     # One document in detail
  docledger list --search passport          # Search every text field and tag
  docledger list --category Renewal         # Documents that need renewal
  docledger list --kind Company -o json     # Company documents as JSON
  docledger list --all-users --limit 20     # Latest 20 documents (admins)`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return showDocument(cmd, app, args[0])
			}
			return listDocuments(cmd, app, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.Search, "search", "s", "", "Search names, categories, contacts, serials and tags")
	cmd.Flags().StringVar(&flags.Category, "category", documents.FilterAll, "Filter by category (\"Renewal\" selects documents needing renewal)")
	cmd.Flags().StringVar(&flags.Kind, "kind", documents.FilterAll, "Filter by kind: Personal, Company, Director")
	cmd.Flags().BoolVar(&flags.AllUsers, "all-users", false, "List every user's documents (administrators only)")
	cmd.Flags().IntVarP(&flags.Limit, "limit", "l", 0, "Maximum number of documents to show (0 for all)")

	return cmd
}

// listDocuments prints the filtered collection.
func listDocuments(cmd *cobra.Command, app AppContext, flags *Flags) error {
	viewer, err := resolveViewer(app, flags.AllUsers)
	if err != nil {
		return err
	}

	kind := documents.FilterAll
	if !strings.EqualFold(flags.Kind, documents.FilterAll) {
		k, ok := documents.ParseKind(flags.Kind)
		if !ok {
			return errors.NewValidationError("kind", flags.Kind, "must be Personal, Company or Director")
		}
		kind = string(k)
	}

	dl, err := app.Ledger(cmd.Context())
	if err != nil {
		return err
	}

	records := documents.Scope(dl.Documents(), viewer)
	records = documents.Search(records, flags.Search)
	records = documents.Filter{Category: flags.Category, Kind: kind}.Apply(records)
	if flags.Limit > 0 && len(records) > flags.Limit {
		records = records[:flags.Limit]
	}

	app.Logger().Debug().
		Int("documents", len(records)).
		Str("search", flags.Search).
		Msg("Listing documents")

	format := output.DetectFormat(app.OutputFormat())
	return output.FormatDocuments(cmd.OutOrStdout(), format, records, dl.Now())
}

// showDocument prints one document the session may see.
func showDocument(cmd *cobra.Command, app AppContext, serial string) error {
	sess, err := appcontext.RequireSession(app)
	if err != nil {
		return err
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

	format := output.DetectFormat(app.OutputFormat())
	if format.IsTable() {
		format = output.FormatWide
	}
	return output.FormatDocuments(cmd.OutOrStdout(), format, []documents.Record{rec}, dl.Now())
}

// resolveViewer returns who the listing is for. Without allUsers even an
// administrator only sees their own documents.
func resolveViewer(app AppContext, allUsers bool) (documents.Viewer, error) {
	sess, err := appcontext.RequireSession(app)
	if err != nil {
		return documents.Viewer{}, err
	}
	viewer := sess.Viewer()
	switch {
	case allUsers && !viewer.Admin:
		return documents.Viewer{}, errors.NewAuthenticationError("role", "--all-users requires an administrator session", nil)
	case !allUsers:
		viewer.Admin = false
	}
	return viewer, nil
}
