package handlers

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/agentstation/docledger"
	"github.com/agentstation/docledger/internal/server/response"
	"github.com/agentstation/docledger/internal/sheets"
	"github.com/agentstation/docledger/pkg/constants"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/logging"
)

// dateLayouts are the accepted due date formats: HTML date inputs and the
// sheet's own day-first layout.
var dateLayouts = []string{time.DateOnly, constants.SheetDateLayout}

// FileRequest is an uploaded file. Data is base64 in JSON.
type FileRequest struct {
	Name     string `json:"name"`
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

func (f *FileRequest) upload() *sheets.Upload {
	if f == nil {
		return nil
	}
	return &sheets.Upload{FileName: f.Name, MimeType: f.MimeType, Data: f.Data}
}

// RenewalRequest is the body of PUT /api/v1/documents/{serial}/renewal.
type RenewalRequest struct {
	NeedsRenewal bool         `json:"needs_renewal"`
	DueDate      string       `json:"due_date,omitempty"`
	DueTime      string       `json:"due_time,omitempty"`
	File         *FileRequest `json:"file,omitempty"`
}

// NewDocumentRequest is one document of a submission.
type NewDocumentRequest struct {
	Name         string       `json:"name"`
	Kind         string       `json:"kind"`
	Category     string       `json:"category,omitempty"`
	Affiliation  string       `json:"affiliation,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Owner        string       `json:"owner,omitempty"`
	NeedsRenewal bool         `json:"needs_renewal"`
	DueDate      string       `json:"due_date,omitempty"`
	DueTime      string       `json:"due_time,omitempty"`
	Email        string       `json:"email,omitempty"`
	Mobile       string       `json:"mobile,omitempty"`
	File         *FileRequest `json:"file,omitempty"`
}

// SubmitRequest is the body of POST /api/v1/documents.
type SubmitRequest struct {
	Documents []NewDocumentRequest `json:"documents"`
}

// parseDueDate reads a due date in loc. An empty string is the zero time.
func parseDueDate(field, s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewValidationError(field, s, "must be YYYY-MM-DD or DD/MM/YYYY")
}

// HandleListDocuments handles GET /api/v1/documents.
// @Summary List documents
// @Description Reconciled documents visible to the caller, newest first
// @Tags documents
// @Produce json
// @Param search query string false "Case-insensitive substring match"
// @Param category query string false "Category, Renewal or All"
// @Param kind query string false "Personal, Company, Director or All"
// @Param limit query int false "Maximum number of documents"
// @Success 200 {object} response.Response{data=object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Security BearerAuth
// @Router /api/v1/documents [get].
func (h *Handlers) HandleListDocuments(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	records := documents.Scope(h.ledger.Documents(), viewer(r).Viewer())
	records = documents.Search(records, q.Get("search"))
	records = documents.Filter{Category: q.Get("category"), Kind: q.Get("kind")}.Apply(records)

	if s := q.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit < 0 {
			response.BadRequest(w, "Invalid limit", "limit must be a non-negative integer")
			return
		}
		if limit > 0 && limit < len(records) {
			records = records[:limit]
		}
	}

	response.OK(w, map[string]any{
		"documents":    records,
		"count":        len(records),
		"refreshed_at": h.ledger.RefreshedAt(),
	})
}

// HandleGetDocument handles GET /api/v1/documents/{serial}.
// @Summary Get document
// @Tags documents
// @Produce json
// @Param serial path string true "Serial number"
// @Success 200 {object} response.Response{data=documents.Record}
// @Failure 404 {object} response.Response{error=response.Error}
// @Security BearerAuth
// @Router /api/v1/documents/{serial} [get].
func (h *Handlers) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	rec, err := h.visible(r, r.PathValue("serial"))
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, rec)
}

// HandleDeleteDocument handles DELETE /api/v1/documents/{serial}.
// @Summary Delete document
// @Description Set the deletion marker on the document's origin sheet
// @Tags documents
// @Param serial path string true "Serial number"
// @Success 200 {object} response.Response{data=object}
// @Failure 404 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{error=response.Error}
// @Security BearerAuth
// @Router /api/v1/documents/{serial} [delete].
func (h *Handlers) HandleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	serial := r.PathValue("serial")
	if _, err := h.visible(r, serial); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	if err := h.ledger.MarkDeleted(r.Context(), serial); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	response.OK(w, map[string]any{
		"serial_number": serial,
		"deleted":       true,
	})
}

// HandleUpdateRenewal handles PUT /api/v1/documents/{serial}/renewal.
// @Summary Update renewal
// @Description Append a renewal amendment; the document moves to the top
// @Tags documents
// @Accept json
// @Produce json
// @Param serial path string true "Serial number"
// @Param renewal body RenewalRequest true "Renewal change"
// @Success 200 {object} response.Response{data=documents.Record}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 404 {object} response.Response{error=response.Error}
// @Security BearerAuth
// @Router /api/v1/documents/{serial}/renewal [put].
func (h *Handlers) HandleUpdateRenewal(w http.ResponseWriter, r *http.Request) {
	serial := r.PathValue("serial")
	if _, err := h.visible(r, serial); err != nil {
		response.ErrorFromType(w, err)
		return
	}

	var req RenewalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	due, err := parseDueDate("due_date", req.DueDate, h.ledger.Location())
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}

	updated, err := h.ledger.UpdateRenewal(r.Context(), serial, docledger.RenewalUpdate{
		NeedsRenewal: req.NeedsRenewal,
		DueDate:      due,
		DueTime:      req.DueTime,
		File:         req.File.upload(),
	})
	if err != nil {
		response.ErrorFromType(w, err)
		return
	}
	response.OK(w, updated)
}

// HandleSubmitDocuments handles POST /api/v1/documents.
// @Summary Submit documents
// @Description Submit one or more documents in order. A failure stops the
// @Description batch; documents before it stay submitted.
// @Tags documents
// @Accept json
// @Produce json
// @Param documents body SubmitRequest true "Documents"
// @Success 201 {object} response.Response{data=object}
// @Failure 400 {object} response.Response{error=response.Error}
// @Failure 502 {object} response.Response{data=object,error=response.Error}
// @Security BearerAuth
// @Router /api/v1/documents [post].
func (h *Handlers) HandleSubmitDocuments(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	caller := viewer(r)
	docs := make([]docledger.NewDocument, 0, len(req.Documents))
	for i, d := range req.Documents {
		due, err := parseDueDate("documents["+strconv.Itoa(i)+"].due_date", d.DueDate, h.ledger.Location())
		if err != nil {
			response.ErrorFromType(w, err)
			return
		}
		owner := strings.TrimSpace(d.Owner)
		if owner == "" || !caller.IsAdmin() {
			owner = caller.UserName
		}
		docs = append(docs, docledger.NewDocument{
			Name:         d.Name,
			Kind:         documents.Kind(d.Kind),
			Category:     d.Category,
			Affiliation:  d.Affiliation,
			Tags:         d.Tags,
			OwnerName:    owner,
			NeedsRenewal: d.NeedsRenewal,
			DueDate:      due,
			DueTime:      d.DueTime,
			ContactEmail: d.Email,
			ContactPhone: d.Mobile,
			File:         d.File.upload(),
		})
	}

	submitted, err := h.ledger.Submit(r.Context(), docs)
	if len(submitted) > 0 {
		h.refreshAfterWrite(r)
	}

	var batch *errors.BatchError
	switch {
	case err == nil:
		response.Created(w, map[string]any{
			"submitted": submitted,
			"count":     len(submitted),
		})
	case stderrors.As(err, &batch):
		logging.FromContext(r.Context()).Warn().Err(err).Int("persisted", batch.Persisted()).Msg("Partial submission")
		response.JSON(w, http.StatusBadGateway, response.Response{
			Data: map[string]any{
				"submitted": submitted,
				"count":     len(submitted),
			},
			Error: &response.Error{
				Code:    "PARTIAL_SUBMIT",
				Message: errors.UserMessage(err),
				Details: batch.Error(),
			},
		})
	default:
		response.ErrorFromType(w, err)
	}
}
