// Package events provides a unified event system for real-time ledger updates.
//
// The broker connects the ledger hooks to every transport (WebSocket, SSE)
// through one pipeline, so each hook is published once and fanned out to
// all connected clients.
package events

import "time"

// EventType represents the type of ledger event.
type EventType string

// Event types for ledger changes.
const (
	// Document events (from ledger hooks).
	DocumentAdded   EventType = "document.added"
	DocumentUpdated EventType = "document.updated"
	DocumentRemoved EventType = "document.removed"

	// Ledger events (from refreshes and approvals).
	LedgerRefreshed EventType = "ledger.refreshed"
	ApprovalDecided EventType = "approval.decided"
	DocumentsShared EventType = "documents.shared"

	// Client events (from transport layers).
	ClientConnected EventType = "client.connected"
)

// Event represents a ledger event with type, timestamp, and data.
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}
