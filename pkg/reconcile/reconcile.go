// Package reconcile merges the document ledgers into one deduplicated,
// newest-first collection.
//
// Sources are processed in order. Records sharing a non-empty serial number
// collapse into one: a strictly newer record is merged over the current
// entry, anything else is discarded. Records without a serial are never
// deduplicated. Deleted records are dropped after merging, so a deletion on
// either ledger hides the document.
package reconcile

import (
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/logging"
)

// Reconciler merges record sources.
type Reconciler struct {
	tieBreak TieBreak
	tracking bool
	logger   *zerolog.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler) error

// New creates a Reconciler. The default tie-break keeps the first source.
func New(opts ...Option) (*Reconciler, error) {
	r := &Reconciler{
		tieBreak: TieKeepFirst,
		logger:   logging.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// WithTieBreak selects how equal timestamps for one serial are resolved.
func WithTieBreak(tb TieBreak) Option {
	return func(r *Reconciler) error {
		if !tb.Valid() {
			return fmt.Errorf("unknown tie-break %q", tb)
		}
		r.tieBreak = tb
		return nil
	}
}

// WithTracking records per-serial provenance in the result.
func WithTracking(enabled bool) Option {
	return func(r *Reconciler) error {
		r.tracking = enabled
		return nil
	}
}

// WithLogger sets the logger used for pass summaries.
func WithLogger(logger *zerolog.Logger) Option {
	return func(r *Reconciler) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		r.logger = logger
		return nil
	}
}

// TieBreak returns the configured tie-break.
func (r *Reconciler) TieBreak() TieBreak {
	return r.tieBreak
}

// Reconcile merges sources in order and returns the live records sorted by
// timestamp, newest first, with DisplayID set to the 1-based position.
// Input slices are not modified.
func (r *Reconciler) Reconcile(sources ...[]documents.Record) *Result {
	start := time.Now()
	stats := Statistics{SourceCounts: make([]int, len(sources))}

	var tracker *provenanceTracker
	if r.tracking {
		tracker = newProvenanceTracker()
	}

	// entries keeps first-seen order; index maps serials into it.
	entries := make([]documents.Record, 0)
	index := make(map[string]int)

	for si, source := range sources {
		stats.SourceCounts[si] = len(source)
		for _, incoming := range source {
			incoming = incoming.Clone()

			if incoming.SerialNumber == "" {
				stats.Bypassed++
				entries = append(entries, incoming)
				continue
			}

			i, exists := index[incoming.SerialNumber]
			if !exists {
				index[incoming.SerialNumber] = len(entries)
				entries = append(entries, incoming)
				tracker.insert(incoming, si)
				continue
			}

			if !r.supersedes(incoming, entries[i]) {
				stats.Discarded++
				tracker.discard(incoming, si)
				continue
			}

			entries[i] = Merge(entries[i], incoming)
			stats.Merged++
			tracker.merge(incoming, si)
		}
	}

	out := make([]documents.Record, 0, len(entries))
	for _, rec := range entries {
		if rec.IsDeleted {
			stats.Deleted++
			tracker.drop(rec)
			continue
		}
		out = append(out, rec)
	}

	Order(out)

	stats.Output = len(out)
	stats.Duration = time.Since(start)

	r.logger.Debug().
		Ints("sources", stats.SourceCounts).
		Int("merged", stats.Merged).
		Int("discarded", stats.Discarded).
		Int("deleted", stats.Deleted).
		Int("records", stats.Output).
		Str("tie_break", r.tieBreak.String()).
		Dur("duration", stats.Duration).
		Msg("Reconciled ledgers")

	result := &Result{Records: out, Statistics: stats}
	if tracker != nil {
		result.Provenance = tracker.export()
	}
	return result
}

// supersedes reports whether incoming should be merged over current.
func (r *Reconciler) supersedes(incoming, current documents.Record) bool {
	switch incoming.SourceTimestamp.Compare(current.SourceTimestamp) {
	case 1:
		return true
	case 0:
		return r.tieBreak == TieKeepLatest
	default:
		return false
	}
}

// Order sorts records newest first and renumbers DisplayID. The sort is
// stable so equal timestamps keep their relative order.
func Order(records []documents.Record) {
	slices.SortStableFunc(records, func(a, b documents.Record) int {
		return b.SourceTimestamp.Compare(a.SourceTimestamp)
	})
	Renumber(records)
}

// Renumber sets DisplayID to each record's 1-based position.
func Renumber(records []documents.Record) {
	for i := range records {
		records[i].DisplayID = i + 1
	}
}

// Reconcile merges sources with the default configuration.
func Reconcile(sources ...[]documents.Record) []documents.Record {
	r, _ := New()
	return r.Reconcile(sources...).Records
}
