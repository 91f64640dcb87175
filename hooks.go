package docledger

import (
	"sync"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/agentstation/docledger/pkg/documents"
)

// Compile-time interface check to ensure proper implementation.
var _ Hooks = (*client)(nil)

// Hook function types for document events.
type (
	// DocumentAddedHook is called when a document appears in the collection.
	DocumentAddedHook func(rec documents.Record)

	// DocumentUpdatedHook is called when a document changes.
	DocumentUpdatedHook func(old, new documents.Record)

	// DocumentRemovedHook is called when a document leaves the collection.
	DocumentRemovedHook func(rec documents.Record)
)

// Hooks registers callbacks for collection changes.
type Hooks interface {
	OnDocumentAdded(DocumentAddedHook)
	OnDocumentUpdated(DocumentUpdatedHook)
	OnDocumentRemoved(DocumentRemovedHook)
}

// OnDocumentAdded registers a callback for added documents.
func (c *client) OnDocumentAdded(fn DocumentAddedHook) { c.hooks.onAdded(fn) }

// OnDocumentUpdated registers a callback for updated documents.
func (c *client) OnDocumentUpdated(fn DocumentUpdatedHook) { c.hooks.onUpdated(fn) }

// OnDocumentRemoved registers a callback for removed documents.
func (c *client) OnDocumentRemoved(fn DocumentRemovedHook) { c.hooks.onRemoved(fn) }

// hooks manages event callbacks for collection changes.
type hooks struct {
	mu      sync.RWMutex
	added   []DocumentAddedHook
	updated []DocumentUpdatedHook
	removed []DocumentRemovedHook
}

func newHooks() *hooks {
	return &hooks{}
}

func (h *hooks) onAdded(fn DocumentAddedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.added = append(h.added, fn)
}

func (h *hooks) onUpdated(fn DocumentUpdatedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updated = append(h.updated, fn)
}

func (h *hooks) onRemoved(fn DocumentRemovedHook) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removed = append(h.removed, fn)
}

func (h *hooks) fireAdded(rec documents.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.added {
		fn(rec)
	}
}

func (h *hooks) fireUpdated(old, new documents.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.updated {
		fn(old, new)
	}
}

func (h *hooks) fireRemoved(rec documents.Record) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, fn := range h.removed {
		fn(rec)
	}
}

// triggerCollectionUpdate diffs two collections by serial number and fires
// the matching hooks. DisplayID is ignored since every pass renumbers.
// Records without a serial cannot be matched and are skipped.
func (h *hooks) triggerCollectionUpdate(oldRecs, newRecs []documents.Record) {
	oldBySerial := make(map[string]documents.Record, len(oldRecs))
	for _, rec := range oldRecs {
		if rec.SerialNumber != "" {
			oldBySerial[rec.SerialNumber] = rec
		}
	}
	newSerials := make(map[string]struct{}, len(newRecs))

	for _, rec := range newRecs {
		if rec.SerialNumber == "" {
			continue
		}
		newSerials[rec.SerialNumber] = struct{}{}
		old, exists := oldBySerial[rec.SerialNumber]
		if !exists {
			h.fireAdded(rec)
			continue
		}
		if changed(old, rec) {
			h.fireUpdated(old, rec)
		}
	}

	for _, rec := range oldRecs {
		if rec.SerialNumber == "" {
			continue
		}
		if _, exists := newSerials[rec.SerialNumber]; !exists {
			h.fireRemoved(rec)
		}
	}
}

// recordChanges ignores the display position, which shifts whenever the
// collection is reordered.
var recordChanges = []cmp.Option{
	cmpopts.IgnoreFields(documents.Record{}, "DisplayID"),
	cmpopts.EquateEmpty(),
}

func changed(a, b documents.Record) bool {
	return !cmp.Equal(a, b, recordChanges...)
}
