package reconcile

import (
	"fmt"
	"time"

	"github.com/agentstation/docledger/pkg/documents"
)

// Result is the outcome of one reconciliation pass.
type Result struct {
	// Records are the live records, newest first.
	Records []documents.Record

	// Statistics about the pass
	Statistics Statistics

	// Provenance is set only when tracking is enabled.
	Provenance Provenance
}

// Statistics counts what happened to the input records.
type Statistics struct {
	// SourceCounts is the number of records read from each source, in order.
	SourceCounts []int

	// Merged counts records laid over an existing entry.
	Merged int

	// Discarded counts records that lost to an entry at least as new.
	Discarded int

	// Bypassed counts records without a serial number.
	Bypassed int

	// Deleted counts entries dropped for carrying a deletion marker.
	Deleted int

	// Output is the number of records returned.
	Output int

	Duration time.Duration
}

// Input returns the total number of records read.
func (s Statistics) Input() int {
	total := 0
	for _, n := range s.SourceCounts {
		total += n
	}
	return total
}

// Summary returns a one-line description of the pass.
func (r *Result) Summary() string {
	s := r.Statistics
	return fmt.Sprintf("%d records from %d sources: %d merged, %d discarded, %d deleted, %d out",
		s.Input(), len(s.SourceCounts), s.Merged, s.Discarded, s.Deleted, s.Output)
}
