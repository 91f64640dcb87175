package docledger

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/agentstation/docledger/internal/sheets"
	"github.com/agentstation/docledger/pkg/constants"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/reconcile"
	"github.com/agentstation/docledger/pkg/serials"
)

// Compile-time interface check to ensure proper implementation.
var _ Mutator = (*client)(nil)

// Mutator writes documents. Successful writes are applied to the local
// collection right away and reconciled against the ledgers on the next
// refresh. Nothing is retried.
type Mutator interface {
	// MarkDeleted sets the deletion marker on the document's origin sheet
	MarkDeleted(ctx context.Context, serial string) error

	// UpdateRenewal appends a renewal amendment and moves the document to the top
	UpdateRenewal(ctx context.Context, serial string, update RenewalUpdate) (documents.Record, error)

	// Submit adds new documents one at a time
	Submit(ctx context.Context, docs []NewDocument) ([]string, error)
}

// RenewalUpdate is a change to a document's renewal requirement.
type RenewalUpdate struct {
	NeedsRenewal bool
	DueDate      time.Time      // date part only
	DueTime      string         // optional HH:mm
	File         *sheets.Upload // optional replacement image
}

// renewalDate renders the date as DD/MM/YYYY, with the time appended when set.
func (u RenewalUpdate) renewalDate() (string, error) {
	return formatDue(u.DueDate, u.DueTime)
}

// NewDocument is a document to submit.
type NewDocument struct {
	Name         string
	Kind         documents.Kind
	Category     string
	Affiliation  string
	Tags         []string
	OwnerName    string
	NeedsRenewal bool
	DueDate      time.Time
	DueTime      string
	ContactEmail string
	ContactPhone string
	File         *sheets.Upload
}

func (d NewDocument) validate(i int) error {
	field := func(name string) string { return fmt.Sprintf("documents[%d].%s", i, name) }
	if strings.TrimSpace(d.Name) == "" {
		return errors.NewValidationError(field("name"), d.Name, "name is required")
	}
	if _, ok := documents.ParseKind(string(d.Kind)); !ok {
		return errors.NewValidationError(field("kind"), string(d.Kind), "must be Personal, Company or Director")
	}
	if d.NeedsRenewal && d.DueDate.IsZero() {
		return errors.NewValidationError(field("due_date"), "", "a renewal date is required")
	}
	if _, err := formatDue(d.DueDate, d.DueTime); err != nil {
		return errors.WrapValidation(field("due_time"), err)
	}
	return nil
}

func formatDue(date time.Time, clock string) (string, error) {
	if date.IsZero() {
		return "", nil
	}
	out := date.Format(constants.SheetDateLayout)
	if clock = strings.TrimSpace(clock); clock != "" {
		if _, err := time.Parse("15:04", clock); err != nil {
			return "", fmt.Errorf("time %q is not HH:mm", clock)
		}
		out += " " + clock
	}
	return out, nil
}

// MarkDeleted sets the deletion marker on the document's origin sheet and
// drops it from the collection.
func (c *client) MarkDeleted(ctx context.Context, serial string) error {
	rec, err := c.Get(serial)
	if err != nil {
		return err
	}
	if err := c.service.MarkDeleted(ctx, rec); err != nil {
		return err
	}

	c.mu.Lock()
	c.records = slices.DeleteFunc(c.records, func(r documents.Record) bool {
		return r.SerialNumber == serial
	})
	reconcile.Renumber(c.records)
	c.installed = c.generation.Add(1)
	c.mu.Unlock()

	c.logger.Info().Str("serial", serial).Str("sheet", rec.SourceOrigin.Sheet()).Msg("Document marked deleted")
	c.hooks.fireRemoved(rec)
	return nil
}

// UpdateRenewal appends a renewal amendment for the document. On success the
// amended document moves to the top of the collection as a renewal-ledger
// record and every DisplayID is renumbered.
func (c *client) UpdateRenewal(ctx context.Context, serial string, update RenewalUpdate) (documents.Record, error) {
	rec, err := c.Get(serial)
	if err != nil {
		return documents.Record{}, err
	}
	if update.NeedsRenewal && update.DueDate.IsZero() {
		return documents.Record{}, errors.NewValidationError("due_date", "", "a renewal date is required")
	}
	due, err := update.renewalDate()
	if err != nil {
		return documents.Record{}, errors.WrapValidation("due_time", err)
	}

	image := ""
	if update.File != nil {
		if image, err = c.service.UploadFile(ctx, *update.File); err != nil {
			return documents.Record{}, err
		}
	}

	now := c.options.now()
	ts := now.UTC().Format(constants.ISOTimestampLayout)
	newSerial, err := c.service.UpdateRenewal(ctx, sheets.RenewalRequest{
		Record:       rec,
		NeedsRenewal: update.NeedsRenewal,
		RenewalDate:  due,
		ImageURL:     image,
		Timestamp:    ts,
	})
	if err != nil {
		return documents.Record{}, err
	}

	updated := rec.Clone()
	updated.NeedsRenewal = update.NeedsRenewal
	updated.RenewalDueAt = due
	updated.SerialNumber = newSerial
	updated.SourceOrigin = documents.OriginRenewal
	updated.SourceTimestamp = now
	updated.RawTimestamp = ts
	if image != "" {
		updated.ImageReference = image
	}

	c.mu.Lock()
	rest := slices.DeleteFunc(c.records, func(r documents.Record) bool {
		return r.SerialNumber == serial
	})
	c.records = append([]documents.Record{updated}, rest...)
	reconcile.Renumber(c.records)
	updated = c.records[0].Clone()
	c.installed = c.generation.Add(1)
	c.mu.Unlock()

	c.logger.Info().
		Str("serial", serial).
		Str("new_serial", newSerial).
		Bool("needs_renewal", update.NeedsRenewal).
		Str("due", due).
		Msg("Renewal updated")
	c.hooks.fireUpdated(rec, updated)
	return updated, nil
}

// Submit validates every document, then writes them one at a time, uploading
// each file before its row. Serials are allocated from one read of the
// service's counters. It returns the serials written; when a write fails it
// stops and returns an *errors.BatchError, leaving earlier documents in place.
func (c *client) Submit(ctx context.Context, docs []NewDocument) ([]string, error) {
	if len(docs) == 0 {
		return nil, errors.NewValidationError("documents", 0, "at least one document is required")
	}
	for i, d := range docs {
		if err := d.validate(i); err != nil {
			return nil, err
		}
	}

	seeds, err := c.service.NextSerials(ctx)
	if err != nil {
		return nil, err
	}
	alloc := serials.NewAllocator(seeds)
	timestamp := c.options.now().In(c.options.location).Format(constants.SheetDateTimeLayout)

	submitted := make([]string, 0, len(docs))
	fail := func(i int, err error) ([]string, error) {
		c.logger.Warn().Err(err).Int("index", i).Int("persisted", len(submitted)).Msg("Submit stopped")
		return submitted, &errors.BatchError{Operation: "submit", Index: i, Total: len(docs), Err: err}
	}

	for i, d := range docs {
		kind, _ := documents.ParseKind(string(d.Kind))
		serial := alloc.Next(kind)

		fileURL, size := "", FileSize(0)
		if d.File != nil {
			if fileURL, err = c.service.UploadFile(ctx, *d.File); err != nil {
				return fail(i, err)
			}
			size = FileSize(len(d.File.Data))
		}

		due := ""
		if d.NeedsRenewal {
			due, _ = formatDue(d.DueDate, d.DueTime)
		}

		row := sheets.InsertRow{
			Timestamp:    timestamp,
			SerialNumber: serial,
			Name:         strings.TrimSpace(d.Name),
			Kind:         kind,
			Category:     d.Category,
			Affiliation:  d.Affiliation,
			Tags:         d.Tags,
			OwnerName:    d.OwnerName,
			NeedsRenewal: d.NeedsRenewal,
			RenewalDueAt: due,
			FileSize:     size,
			FileURL:      fileURL,
			ContactEmail: d.ContactEmail,
			ContactPhone: d.ContactPhone,
		}
		if err := c.service.Insert(ctx, row); err != nil {
			return fail(i, err)
		}
		submitted = append(submitted, serial)
		c.logger.Info().Str("serial", serial).Str("name", row.Name).Msg("Document submitted")
	}
	return submitted, nil
}

// FileSize renders a byte count the way the Documents sheet stores it.
func FileSize(n int) string {
	return fmt.Sprintf("%.2f MB", float64(n)/1024/1024)
}
