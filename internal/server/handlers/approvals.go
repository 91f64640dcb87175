package handlers

import (
	"net/http"
	"strings"

	"github.com/agentstation/docledger/internal/server/events"
	"github.com/agentstation/docledger/internal/server/response"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/logging"
)

// DecisionRequest identifies the approval request being decided. The
// timestamp is the request's raw sheet timestamp.
type DecisionRequest struct {
	Timestamp string `json:"timestamp"`
}

// HandleListApprovals handles GET /api/v1/approvals.
// @Summary Pending approvals
// @Tags approvals
// @Produce json
// @Success 200 {object} response.Response{data=[]documents.ApprovalRecord}
// @Failure 403 {object} response.Response{error=response.Error}
// @Security BearerAuth
// @Router /api/v1/approvals [get].
func (h *Handlers) HandleListApprovals(w http.ResponseWriter, r *http.Request) {
	pending, err := h.ledger.Approvals(r.Context())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, pending)
}

// HandleApprove handles POST /api/v1/approvals/{serial}/approve.
// @Summary Approve request
// @Tags approvals
// @Accept json
// @Produce json
// @Param serial path string true "Serial number"
// @Param decision body DecisionRequest true "Request timestamp"
// @Success 200 {object} response.Response{data=object}
// @Failure 403 {object} response.Response{error=response.Error}
// @Security BearerAuth
// @Router /api/v1/approvals/{serial}/approve [post].
func (h *Handlers) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, documents.StatusApproved)
}

// HandleReject handles POST /api/v1/approvals/{serial}/reject.
// @Summary Reject request
// @Tags approvals
// @Accept json
// @Produce json
// @Param serial path string true "Serial number"
// @Param decision body DecisionRequest true "Request timestamp"
// @Success 200 {object} response.Response{data=object}
// @Failure 403 {object} response.Response{error=response.Error}
// @Security BearerAuth
// @Router /api/v1/approvals/{serial}/reject [post].
func (h *Handlers) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, documents.StatusRejected)
}

func (h *Handlers) decide(w http.ResponseWriter, r *http.Request, status documents.ApprovalStatus) {
	serial := r.PathValue("serial")

	var req DecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Timestamp) == "" {
		response.ErrorFromType(w, errors.NewValidationError("timestamp", "", "the request timestamp is required"))
		return
	}

	caller := viewer(r)
	decide := h.ledger.Approve
	if status == documents.StatusRejected {
		decide = h.ledger.Reject
	}
	if err := decide(r.Context(), serial, req.Timestamp, caller.Role); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	decision := map[string]any{
		"serial_number": serial,
		"timestamp":     req.Timestamp,
		"status":        status,
		"decided_by":    caller.UserName,
	}
	h.broker.Publish(events.ApprovalDecided, decision)
	logging.FromContext(r.Context()).Info().
		Str("serial", serial).
		Str("status", string(status)).
		Msg("Approval decided")

	response.OK(w, decision)
}
