package handlers

import (
	"net/http"

	"github.com/agentstation/docledger/internal/server/cache"
	"github.com/agentstation/docledger/internal/server/response"
	"github.com/agentstation/docledger/pkg/documents"
)

// HandleRenewals handles GET /api/v1/renewals.
// @Summary Renewal buckets
// @Description Visible documents needing renewal, grouped by due status
// @Tags views
// @Produce json
// @Success 200 {object} response.Response{data=documents.Buckets}
// @Security BearerAuth
// @Router /api/v1/renewals [get].
func (h *Handlers) HandleRenewals(w http.ResponseWriter, r *http.Request) {
	records := documents.Scope(h.ledger.Documents(), viewer(r).Viewer())
	response.OK(w, documents.RenewalBuckets(records, h.ledger.Now()))
}

// HandleDashboard handles GET /api/v1/dashboard.
// @Summary Dashboard statistics
// @Description Counts, recent documents and upcoming renewals for the caller
// @Tags views
// @Produce json
// @Success 200 {object} response.Response{data=documents.Stats}
// @Failure 502 {object} response.Response{error=response.Error}
// @Security BearerAuth
// @Router /api/v1/dashboard [get].
func (h *Handlers) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	v := viewer(r).Viewer()

	stats, err := h.cache.Remember(cache.DashboardKey(v.Name, v.Admin), func() (any, error) {
		shared, err := h.ledger.Shared(r.Context())
		if err != nil {
			return nil, err
		}
		records := documents.Scope(h.ledger.Documents(), v)
		return documents.ComputeStats(records, documents.SharedFor(shared, v), h.ledger.Now()), nil
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, stats)
}

// HandleShared handles GET /api/v1/shared.
// @Summary Share history
// @Tags views
// @Produce json
// @Success 200 {object} response.Response{data=[]documents.SharedRecord}
// @Security BearerAuth
// @Router /api/v1/shared [get].
func (h *Handlers) HandleShared(w http.ResponseWriter, r *http.Request) {
	shared, err := h.ledger.Shared(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, documents.SharedFor(shared, viewer(r).Viewer()))
}

// HandleMaster handles GET /api/v1/master.
// @Summary Reference lists
// @Description Document types and categories from the Master sheet
// @Tags views
// @Produce json
// @Success 200 {object} response.Response{data=documents.MasterLists}
// @Security BearerAuth
// @Router /api/v1/master [get].
func (h *Handlers) HandleMaster(w http.ResponseWriter, r *http.Request) {
	lists, err := h.cache.Remember(cache.KeyMaster, func() (any, error) {
		return h.ledger.Master(r.Context())
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, lists)
}
