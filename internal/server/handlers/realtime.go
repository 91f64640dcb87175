package handlers

import (
	"net/http"

	"github.com/agentstation/docledger/pkg/logging"
)

// HandleWebSocket handles WebSocket connections at /api/v1/updates/ws.
// @Summary WebSocket updates
// @Description WebSocket connection for real-time ledger updates
// @Tags updates
// @Success 101 "Switching Protocols"
// @Security BearerAuth
// @Router /api/v1/updates/ws [get].
func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	client, err := h.wsHub.Serve(h.upgrader, w, r)
	if err != nil {
		// The upgrader has already written the error response.
		logging.FromContext(r.Context()).Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	logging.FromContext(r.Context()).Debug().Str("client_id", client.ID()).Msg("WebSocket client connected")
}

// HandleSSE handles Server-Sent Events at /api/v1/updates/stream.
// @Summary SSE updates stream
// @Description Server-Sent Events stream for ledger change notifications
// @Tags updates
// @Produce text/event-stream
// @Success 200 "Event stream"
// @Security BearerAuth
// @Router /api/v1/updates/stream [get].
func (h *Handlers) HandleSSE(w http.ResponseWriter, r *http.Request) {
	h.sseBroadcaster.ServeHTTP(w, r)
}
