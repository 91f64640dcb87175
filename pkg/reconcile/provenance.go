package reconcile

import (
	"sort"
	"time"

	"github.com/agentstation/docledger/pkg/documents"
)

// Action is what a pass did with one version of a record.
type Action string

// Provenance actions.
const (
	ActionInsert  Action = "insert"
	ActionMerge   Action = "merge"
	ActionDiscard Action = "discard"
	ActionDrop    Action = "drop"
)

// ProvenanceEvent is one step in a serial's history.
type ProvenanceEvent struct {
	Source    int              // index of the source slice, -1 for drops
	Origin    documents.Origin // ledger the version came from
	Timestamp time.Time        // version timestamp
	Action    Action
}

// ProvenanceInfo is the history of one serial number.
type ProvenanceInfo struct {
	// Winner is the origin that contributed the surviving version.
	Winner  documents.Origin
	Dropped bool
	History []ProvenanceEvent
}

// Provenance maps serial numbers to their history.
type Provenance map[string]*ProvenanceInfo

// Serials returns the tracked serials in sorted order.
func (p Provenance) Serials() []string {
	out := make([]string, 0, len(p))
	for serial := range p {
		out = append(out, serial)
	}
	sort.Strings(out)
	return out
}

// provenanceTracker is nil when tracking is off; every method is a no-op
// on a nil receiver.
type provenanceTracker struct {
	entries Provenance
}

func newProvenanceTracker() *provenanceTracker {
	return &provenanceTracker{entries: make(Provenance)}
}

func (p *provenanceTracker) record(rec documents.Record, source int, action Action) *ProvenanceInfo {
	info, ok := p.entries[rec.SerialNumber]
	if !ok {
		info = &ProvenanceInfo{}
		p.entries[rec.SerialNumber] = info
	}
	info.History = append(info.History, ProvenanceEvent{
		Source:    source,
		Origin:    rec.SourceOrigin,
		Timestamp: rec.SourceTimestamp,
		Action:    action,
	})
	return info
}

func (p *provenanceTracker) insert(rec documents.Record, source int) {
	if p == nil {
		return
	}
	p.record(rec, source, ActionInsert).Winner = rec.SourceOrigin
}

func (p *provenanceTracker) merge(rec documents.Record, source int) {
	if p == nil {
		return
	}
	p.record(rec, source, ActionMerge).Winner = rec.SourceOrigin
}

func (p *provenanceTracker) discard(rec documents.Record, source int) {
	if p == nil {
		return
	}
	p.record(rec, source, ActionDiscard)
}

func (p *provenanceTracker) drop(rec documents.Record) {
	if p == nil || rec.SerialNumber == "" {
		return
	}
	p.record(rec, -1, ActionDrop).Dropped = true
}

func (p *provenanceTracker) export() Provenance {
	return p.entries
}
