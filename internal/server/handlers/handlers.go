// Package handlers provides HTTP request handlers for the document ledger API.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/agentstation/docledger"
	"github.com/agentstation/docledger/internal/auth"
	"github.com/agentstation/docledger/internal/server/cache"
	"github.com/agentstation/docledger/internal/server/events"
	"github.com/agentstation/docledger/internal/server/middleware"
	"github.com/agentstation/docledger/internal/server/response"
	"github.com/agentstation/docledger/internal/server/sse"
	ws "github.com/agentstation/docledger/internal/server/websocket"
	"github.com/agentstation/docledger/internal/session"
	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/logging"
)

// Handlers provides access to all HTTP handlers.
type Handlers struct {
	ledger         docledger.Client
	tokens         *auth.TokenService
	cache          *cache.Cache
	broker         *events.Broker
	wsHub          *ws.Hub
	sseBroadcaster *sse.Broadcaster
	upgrader       *websocket.Upgrader
	logger         *zerolog.Logger
	startTime      time.Time
}

// New creates a new Handlers instance. tokens is nil when the server runs
// without authentication.
func New(
	ledger docledger.Client,
	tokens *auth.TokenService,
	cache *cache.Cache,
	broker *events.Broker,
	wsHub *ws.Hub,
	sseBroadcaster *sse.Broadcaster,
	upgrader *websocket.Upgrader,
	logger *zerolog.Logger,
) *Handlers {
	return &Handlers{
		ledger:         ledger,
		tokens:         tokens,
		cache:          cache,
		broker:         broker,
		wsHub:          wsHub,
		sseBroadcaster: sseBroadcaster,
		upgrader:       upgrader,
		logger:         logger,
		startTime:      time.Now(),
	}
}

// viewer returns the caller's session. Routes behind the auth middleware
// always have one; an empty session sees nothing.
func viewer(r *http.Request) session.Session {
	s, _ := middleware.SessionFromContext(r.Context())
	return s
}

// decodeJSON reads a JSON request body into v, rejecting unknown fields.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if err == io.EOF {
			return errors.NewValidationError("body", "", "request body is required")
		}
		return &errors.ParseError{Format: "json", Message: "invalid request body", Err: err}
	}
	return nil
}

// writeDecodeError answers a body that could not be decoded.
func writeDecodeError(w http.ResponseWriter, err error) {
	var parse *errors.ParseError
	if stderrors.As(err, &parse) {
		response.BadRequest(w, "Invalid JSON in request body", parse.Err.Error())
		return
	}
	response.ErrorFromType(w, err)
}

// visible returns the document with serial when the caller may see it.
// Documents outside the caller's scope are reported as not found.
func (h *Handlers) visible(r *http.Request, serial string) (documents.Record, error) {
	rec, err := h.ledger.Get(serial)
	if err != nil {
		return documents.Record{}, err
	}
	if len(documents.Scope([]documents.Record{rec}, viewer(r).Viewer())) == 0 {
		return documents.Record{}, errors.NewNotFoundError("document", serial)
	}
	return rec, nil
}

// visibleAll checks every serial with visible.
func (h *Handlers) visibleAll(r *http.Request, serials []string) error {
	if len(serials) == 0 {
		return errors.NewValidationError("serials", "", "at least one document is required")
	}
	for _, serial := range serials {
		if _, err := h.visible(r, strings.TrimSpace(serial)); err != nil {
			return err
		}
	}
	return nil
}

// refreshAfterWrite reloads the collection after a write the ledger does
// not apply locally. Failures are logged; the write itself succeeded.
func (h *Handlers) refreshAfterWrite(r *http.Request) {
	if err := h.ledger.Refresh(r.Context()); err != nil && !stderrors.Is(err, errors.ErrStale) {
		logging.FromContext(r.Context()).Warn().Err(err).Msg("Refresh after write failed")
	}
}
