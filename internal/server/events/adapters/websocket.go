// Package adapters forwards ledger events from the broker to the realtime
// transports. Document added, updated and removed events come from the
// ledger hooks; refresh, approval and share events come from the handlers.
package adapters

import (
	"github.com/agentstation/docledger/internal/server/events"
	ws "github.com/agentstation/docledger/internal/server/websocket"
)

// WebSocketSubscriber pushes ledger events to every connected WebSocket
// client as a JSON message whose type is the event name, for example
// "document.removed".
type WebSocketSubscriber struct {
	hub *ws.Hub
}

// NewWebSocketSubscriber returns a subscriber for hub.
func NewWebSocketSubscriber(hub *ws.Hub) *WebSocketSubscriber {
	return &WebSocketSubscriber{hub: hub}
}

// Send queues the event on the hub. A full hub drops it; clients catch up
// on the next ledger.refreshed event.
func (w *WebSocketSubscriber) Send(event events.Event) error {
	w.hub.Broadcast(ws.Message{
		Type:      string(event.Type),
		Timestamp: event.Timestamp,
		Data:      event.Data,
	})
	return nil
}

// Close does nothing. Server.Shutdown stops the hub.
func (w *WebSocketSubscriber) Close() error {
	return nil
}
