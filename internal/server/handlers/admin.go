package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/agentstation/docledger/internal/server/events"
	"github.com/agentstation/docledger/internal/server/response"
	"github.com/agentstation/docledger/pkg/documents"
)

// HandleRefresh handles POST /api/v1/refresh.
// @Summary Refresh ledger
// @Description Reload both ledgers from the script service and reconcile them
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Failure 409 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Security BearerAuth
// @Router /api/v1/refresh [post].
func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if err := h.ledger.Refresh(r.Context()); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	// Invalidate cache
	h.cache.Clear()

	result := map[string]any{
		"documents":    len(h.ledger.Documents()),
		"refreshed_at": h.ledger.RefreshedAt(),
		"duration_ms":  time.Since(start).Milliseconds(),
	}
	h.broker.Publish(events.LedgerRefreshed, result)
	response.OK(w, result)
}

// HandleStats handles GET /api/v1/stats.
// @Summary Server statistics
// @Description Runtime, ledger, event and cache statistics
// @Tags admin
// @Produce json
// @Success 200 {object} response.Response{data=object}
// @Security BearerAuth
// @Router /api/v1/stats [get].
func (h *Handlers) HandleStats(w http.ResponseWriter, _ *http.Request) {
	records := h.ledger.Documents()
	var primary, renewal int
	for _, rec := range records {
		switch rec.SourceOrigin {
		case documents.OriginPrimary:
			primary++
		case documents.OriginRenewal:
			renewal++
		}
	}

	// Get runtime stats
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	response.OK(w, map[string]any{
		"runtime": map[string]any{
			"uptime_seconds": int64(time.Since(h.startTime).Seconds()),
			"goroutines":     runtime.NumGoroutine(),
			"memory_mb":      memStats.Alloc / 1024 / 1024,
			"memory_sys_mb":  memStats.Sys / 1024 / 1024,
		},
		"ledger": map[string]any{
			"documents_total": len(records),
			"primary":         primary,
			"renewal":         renewal,
			"refreshed_at":    h.ledger.RefreshedAt(),
		},
		"events": map[string]any{
			"published_total": h.broker.EventsPublished(),
			"dropped_total":   h.broker.EventsDropped(),
			"queue_depth":     h.broker.QueueDepth(),
		},
		"realtime": map[string]any{
			"websocket_clients": h.wsHub.ClientCount(),
			"sse_clients":       h.sseBroadcaster.ClientCount(),
		},
		"cache": h.cache.GetStats(),
	})
}
