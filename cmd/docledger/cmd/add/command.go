// Package add provides the command for submitting new documents.
package add

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"github.com/agentstation/docledger"
	"github.com/agentstation/docledger/internal/appcontext"
	"github.com/agentstation/docledger/internal/cmd/input"
	"github.com/agentstation/docledger/internal/session"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
)

// Entry is one document on the command line or in a batch file.
type Entry struct {
	Name        string   `yaml:"name"`
	Kind        string   `yaml:"kind"`
	Category    string   `yaml:"category"`
	Affiliation string   `yaml:"affiliation"`
	Tags        []string `yaml:"tags"`
	Owner       string   `yaml:"owner"`
	Renewal     bool     `yaml:"renewal"`
	DueDate     string   `yaml:"due_date"`
	DueTime     string   `yaml:"due_time"`
	Email       string   `yaml:"email"`
	Phone       string   `yaml:"phone"`
	File        string   `yaml:"file"`
}

// Batch is the layout of a --from file.
type Batch struct {
	Documents []Entry `yaml:"documents"`
}

// NewCommand creates the add command.
func NewCommand(app appcontext.Interface) *cobra.Command {
	var (
		entry Entry
		from  string
	)

	cmd := &cobra.Command{
		Use:     "add",
		Aliases: []string{"submit"},
		GroupID: "core",
		Short:   "Submit new documents",
		Long: `Add submits documents to the primary ledger. Each document gets the
next serial number for its kind (PN personal, CN company, DN director)
and its file, if any, is uploaded before the row is written.

Use --from to submit a batch described in a YAML file. Documents are
written one at a time; if one fails, the ones before it stay written
and their serial numbers are printed.

Only administrators can submit documents on behalf of someone else.`,
		Example: `  docledger add --name Passport --kind Personal --file passport.pdf
  docledger add --name "Trade licence" --kind Company --category Legal \
      --renewal --date 2025-01-31 --time 09:00
  docledger add --from batch.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := appcontext.RequireSession(app)
			if err != nil {
				return err
			}

			entries, base, err := collect(cmd, entry, from)
			if err != nil {
				return err
			}

			dl, err := app.Ledger(cmd.Context())
			if err != nil {
				return err
			}

			docs := make([]docledger.NewDocument, 0, len(entries))
			for i, e := range entries {
				doc, err := e.document(i, base, sess, dl)
				if err != nil {
					return err
				}
				docs = append(docs, doc)
			}

			submitted, err := dl.Submit(cmd.Context(), docs)
			for _, serial := range submitted {
				fmt.Fprintf(cmd.OutOrStdout(), "Submitted %s\n", serial)
			}
			if err != nil {
				var batchErr *errors.BatchError
				if stderrors.As(err, &batchErr) {
					app.Logger().Warn().
						Int("persisted", batchErr.Persisted()).
						Int("total", batchErr.Total).
						Msg("Batch submit stopped early")
				}
				return err
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&entry.Name, "name", "", "Document name")
	f.StringVar(&entry.Kind, "kind", string(documents.KindPersonal), "Kind: Personal, Company, Director")
	f.StringVar(&entry.Category, "category", "", "Category")
	f.StringVar(&entry.Affiliation, "affiliation", "", "Company or person the document belongs to")
	f.StringSliceVar(&entry.Tags, "tags", nil, "Tags (comma-separated)")
	f.StringVar(&entry.Owner, "owner", "", "Owner name (administrators only, defaults to you)")
	f.BoolVar(&entry.Renewal, "renewal", false, "The document needs renewal")
	f.StringVar(&entry.DueDate, "date", "", "Renewal due date (YYYY-MM-DD or DD/MM/YYYY)")
	f.StringVar(&entry.DueTime, "time", "", "Renewal due time (HH:mm)")
	f.StringVar(&entry.Email, "email", "", "Contact email")
	f.StringVar(&entry.Phone, "phone", "", "Contact phone number")
	f.StringVar(&entry.File, "file", "", "File to upload with the document")
	f.StringVar(&from, "from", "", "YAML file with a batch of documents")

	cmd.MarkFlagsMutuallyExclusive("from", "name")
	cmd.MarkFlagsOneRequired("from", "name")

	return cmd
}

// collect returns the entries to submit and the directory relative file
// paths are resolved against.
func collect(cmd *cobra.Command, entry Entry, from string) ([]Entry, string, error) {
	if from == "" {
		return []Entry{entry}, "", nil
	}
	for _, name := range []string{"kind", "category", "affiliation", "tags", "owner", "renewal", "date", "time", "email", "phone", "file"} {
		if cmd.Flags().Changed(name) {
			return nil, "", errors.NewValidationError(name, from, "cannot be combined with --from")
		}
	}

	data, err := os.ReadFile(from)
	if err != nil {
		return nil, "", errors.WrapIO("read", from, err)
	}
	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, "", errors.WrapParse("yaml", from, err)
	}
	if len(batch.Documents) == 0 {
		return nil, "", errors.NewValidationError("documents", from, "the batch file lists no documents")
	}
	return batch.Documents, filepath.Dir(from), nil
}

// document converts an entry into a submission for sess.
func (e Entry) document(i int, base string, sess session.Session, dl docledger.Reader) (docledger.NewDocument, error) {
	field := func(name string) string { return fmt.Sprintf("documents[%d].%s", i, name) }

	kind, ok := documents.ParseKind(e.Kind)
	if !ok {
		return docledger.NewDocument{}, errors.NewValidationError(field("kind"), e.Kind, "must be Personal, Company or Director")
	}

	owner := strings.TrimSpace(e.Owner)
	switch {
	case owner == "":
		owner = sess.UserName
	case !sess.IsAdmin() && !strings.EqualFold(owner, sess.UserName):
		return docledger.NewDocument{}, errors.NewAuthenticationError("role", "only administrators can submit for another owner", nil)
	}

	due, err := input.ParseDueDate(field("due_date"), e.DueDate, dl.Location())
	if err != nil {
		return docledger.NewDocument{}, err
	}

	doc := docledger.NewDocument{
		Name:         e.Name,
		Kind:         kind,
		Category:     e.Category,
		Affiliation:  e.Affiliation,
		Tags:         e.Tags,
		OwnerName:    owner,
		NeedsRenewal: e.Renewal,
		DueDate:      due,
		DueTime:      e.DueTime,
		ContactEmail: e.Email,
		ContactPhone: e.Phone,
	}

	if e.File != "" {
		path := e.File
		if base != "" && !filepath.IsAbs(path) {
			path = filepath.Join(base, path)
		}
		if doc.File, err = input.ReadUpload(path); err != nil {
			return docledger.NewDocument{}, err
		}
	}
	return doc, nil
}
