package handlers

import (
	"net/http"
	"time"

	"github.com/agentstation/docledger/internal/server/response"
	"github.com/agentstation/docledger/internal/session"
	"github.com/agentstation/docledger/pkg/logging"
)

// LoginRequest is the body of POST /api/v1/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResponse carries an issued token and the session it stands for.
type LoginResponse struct {
	Token     string          `json:"token"`
	TokenType string          `json:"token_type"`
	ExpiresAt time.Time       `json:"expires_at"`
	Session   session.Session `json:"session"`
}

// HandleLogin handles POST /api/v1/login.
// @Summary Sign in
// @Description Check credentials against the Pass sheet and issue a bearer token
// @Tags session
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} response.Response{data=LoginResponse}
// @Failure 401 {object} response.Response{error=response.Error}
// @Router /api/v1/login [post].
func (h *Handlers) HandleLogin(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil {
		response.BadRequest(w, "Authentication is disabled", "This server does not issue tokens")
		return
	}

	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}

	account, err := h.ledger.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		logging.FromContext(r.Context()).Info().Str("username", req.Username).Msg("Login rejected")
		response.ErrorFromType(w, err)
		return
	}

	token, err := h.tokens.Issue(account)
	if err != nil {
		response.InternalError(w, err)
		return
	}

	logging.FromContext(r.Context()).Info().Str("username", account.Username).Str("role", account.Role).Msg("Login succeeded")
	response.OK(w, LoginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresAt: time.Now().Add(h.tokens.TTL()).UTC(),
		Session:   session.FromAccount(account),
	})
}

// HandleMe handles GET /api/v1/me.
// @Summary Current session
// @Tags session
// @Produce json
// @Success 200 {object} response.Response{data=session.Session}
// @Security BearerAuth
// @Router /api/v1/me [get].
func (h *Handlers) HandleMe(w http.ResponseWriter, r *http.Request) {
	response.OK(w, viewer(r))
}
