package handlers

import (
	"net/http"
	"strings"

	"github.com/agentstation/docledger"
	"github.com/agentstation/docledger/internal/server/events"
	"github.com/agentstation/docledger/internal/server/response"
	"github.com/agentstation/docledger/pkg/errors"
)

// EmailShareRequest is the body of POST /api/v1/share/email.
type EmailShareRequest struct {
	RecipientEmail string   `json:"recipient_email"`
	RecipientName  string   `json:"recipient_name"`
	Subject        string   `json:"subject,omitempty"`
	Message        string   `json:"message,omitempty"`
	Serials        []string `json:"serials"`
}

// WhatsAppShareRequest is the body of POST /api/v1/share/whatsapp.
type WhatsAppShareRequest struct {
	Number  string   `json:"number"`
	Serials []string `json:"serials"`
}

// HandleShareEmail handles POST /api/v1/share/email.
// @Summary Share by email
// @Tags sharing
// @Accept json
// @Produce json
// @Param share body EmailShareRequest true "Recipient and documents"
// @Success 200 {object} response.Response{data=object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 404 {object} response.Response{error=response.Error}
// @Security BearerAuth
// @Router /api/v1/share/email [post].
func (h *Handlers) HandleShareEmail(w http.ResponseWriter, r *http.Request) {
	var req EmailShareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.RecipientEmail) == "" {
		response.ErrorFromType(w, errors.NewValidationError("recipient_email", "", "a recipient email is required"))
		return
	}
	if err := h.visibleAll(r, req.Serials); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	err := h.ledger.ShareViaEmail(r.Context(), docledger.EmailShare{
		RecipientEmail: req.RecipientEmail,
		RecipientName:  req.RecipientName,
		Subject:        req.Subject,
		Message:        req.Message,
		Serials:        req.Serials,
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.shared(w, "email", req.RecipientEmail, req.Serials)
}

// HandleShareWhatsApp handles POST /api/v1/share/whatsapp.
// @Summary Share by WhatsApp
// @Tags sharing
// @Accept json
// @Produce json
// @Param share body WhatsAppShareRequest true "Number and documents"
// @Success 200 {object} response.Response{data=object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 404 {object} response.Response{error=response.Error}
// @Security BearerAuth
// @Router /api/v1/share/whatsapp [post].
func (h *Handlers) HandleShareWhatsApp(w http.ResponseWriter, r *http.Request) {
	var req WhatsAppShareRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	if strings.TrimSpace(req.Number) == "" {
		response.ErrorFromType(w, errors.NewValidationError("number", "", "a phone number is required"))
		return
	}
	if err := h.visibleAll(r, req.Serials); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	if err := h.ledger.ShareViaWhatsApp(r.Context(), req.Number, req.Serials); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	h.shared(w, "whatsapp", req.Number, req.Serials)
}

// shared records a completed share: dashboards count shares, so they are
// dropped from the cache.
func (h *Handlers) shared(w http.ResponseWriter, channel, recipient string, serials []string) {
	h.cache.InvalidateDashboards()
	result := map[string]any{
		"channel":   channel,
		"recipient": recipient,
		"serials":   serials,
	}
	h.broker.Publish(events.DocumentsShared, result)
	response.OK(w, result)
}
