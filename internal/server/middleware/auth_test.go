package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/agentstation/docledger/internal/auth"
	"github.com/agentstation/docledger/internal/session"
	"github.com/agentstation/docledger/pkg/accounts"
)

func newTokens(t *testing.T) *auth.TokenService {
	t.Helper()
	tokens, err := auth.NewTokenService("test-secret")
	if err != nil {
		t.Fatal(err)
	}
	return tokens
}

func issue(t *testing.T, tokens *auth.TokenService, role string) string {
	t.Helper()
	token, err := tokens.Issue(accounts.Account{Name: "Alice", Username: "alice", Role: role})
	if err != nil {
		t.Fatal(err)
	}
	return token
}

// sessionEcho writes the caller's user name, or "-" without a session.
func sessionEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		if !ok {
			_, _ = w.Write([]byte("-"))
			return
		}
		_, _ = w.Write([]byte(s.UserName))
	})
}

// TestAuth tests bearer token validation.
func TestAuth(t *testing.T) {
	logger := zerolog.Nop()
	tokens := newTokens(t)
	cfg := DefaultAuthConfig("/api/v1")
	cfg.Verifier = tokens
	h := Auth(cfg, &logger)(sessionEcho())

	valid := issue(t, tokens, accounts.RoleUser)
	other, _ := auth.NewTokenService("other-secret")
	forged := issue(t, other, accounts.RoleAdmin)

	tests := []struct {
		name       string
		path       string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"public health", "/api/v1/health", "", http.StatusOK, "-"},
		{"public login", "/api/v1/login", "", http.StatusOK, "-"},
		{"missing token", "/api/v1/documents", "", http.StatusUnauthorized, ""},
		{"valid token", "/api/v1/documents", "Bearer " + valid, http.StatusOK, "Alice"},
		{"lowercase scheme", "/api/v1/documents", "bearer " + valid, http.StatusOK, "Alice"},
		{"wrong scheme", "/api/v1/documents", "Basic " + valid, http.StatusUnauthorized, ""},
		{"forged token", "/api/v1/documents", "Bearer " + forged, http.StatusUnauthorized, ""},
		{"query token", "/api/v1/updates/ws?access_token=" + valid, "", http.StatusOK, "Alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantBody != "" && w.Body.String() != tt.wantBody {
				t.Errorf("body = %q, want %q", w.Body.String(), tt.wantBody)
			}
			if tt.wantStatus == http.StatusUnauthorized && w.Header().Get("WWW-Authenticate") == "" {
				t.Error("expected WWW-Authenticate header")
			}
		})
	}
}

// TestAuthDisabled tests that the anonymous session is used when disabled.
func TestAuthDisabled(t *testing.T) {
	logger := zerolog.Nop()
	cfg := AuthConfig{
		Enabled:   false,
		Anonymous: session.Session{LoggedIn: true, Role: accounts.RoleAdmin, UserName: "local"},
	}
	h := Auth(cfg, &logger)(sessionEcho())

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/documents", nil))

	if w.Body.String() != "local" {
		t.Errorf("body = %q, want local", w.Body.String())
	}
}

// TestRequireAdmin tests role enforcement.
func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name       string
		sess       *session.Session
		wantStatus int
	}{
		{"no session", nil, http.StatusUnauthorized},
		{"user", &session.Session{LoggedIn: true, Role: accounts.RoleUser, UserName: "Bob"}, http.StatusForbidden},
		{"admin", &session.Session{LoggedIn: true, Role: "Admin", UserName: "Root"}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/refresh", nil)
			if tt.sess != nil {
				req = req.WithContext(WithSession(req.Context(), *tt.sess))
			}
			w := httptest.NewRecorder()
			RequireAdmin(okHandler()).ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
		})
	}
}
