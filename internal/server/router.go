package server

import (
	"net/http"

	"github.com/agentstation/docledger/internal/server/handlers"
	"github.com/agentstation/docledger/internal/server/middleware"
	"github.com/agentstation/docledger/internal/session"
	"github.com/agentstation/docledger/pkg/accounts"
)

// anonymous is the session every request runs as when auth is disabled.
var anonymous = session.Session{LoggedIn: true, Role: accounts.RoleAdmin, UserName: "local"}

// setupRouter creates the HTTP handler with routes and middleware.
func (s *Server) setupRouter() http.Handler {
	mux := http.NewServeMux()

	h := handlers.New(
		s.ledger,
		s.tokens,
		s.cache,
		s.broker,
		s.wsHub,
		s.sseBroadcaster,
		&s.upgrader,
		s.logger,
	)

	s.registerRoutes(mux, h)

	return s.applyMiddleware(mux)
}

// registerRoutes registers all HTTP routes.
func (s *Server) registerRoutes(mux *http.ServeMux, h *handlers.Handlers) {
	prefix := s.config.PathPrefix
	admin := func(fn http.HandlerFunc) http.Handler {
		return middleware.RequireAdmin(fn)
	}

	// Favicon handler (return 204 No Content to avoid 404 logs)
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	// Public endpoints (no auth required)
	mux.HandleFunc("GET /health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/health", h.HandleHealth)
	mux.HandleFunc("GET "+prefix+"/ready", h.HandleReady)
	mux.HandleFunc("POST "+prefix+"/login", h.HandleLogin)

	mux.HandleFunc("GET "+prefix+"/me", h.HandleMe)

	// Documents
	mux.HandleFunc("GET "+prefix+"/documents", h.HandleListDocuments)
	mux.HandleFunc("POST "+prefix+"/documents", h.HandleSubmitDocuments)
	mux.HandleFunc("GET "+prefix+"/documents/{serial}", h.HandleGetDocument)
	mux.HandleFunc("DELETE "+prefix+"/documents/{serial}", h.HandleDeleteDocument)
	mux.HandleFunc("PUT "+prefix+"/documents/{serial}/renewal", h.HandleUpdateRenewal)

	// Views
	mux.HandleFunc("GET "+prefix+"/renewals", h.HandleRenewals)
	mux.HandleFunc("GET "+prefix+"/dashboard", h.HandleDashboard)
	mux.HandleFunc("GET "+prefix+"/shared", h.HandleShared)
	mux.HandleFunc("GET "+prefix+"/master", h.HandleMaster)

	// Sharing
	mux.HandleFunc("POST "+prefix+"/share/email", h.HandleShareEmail)
	mux.HandleFunc("POST "+prefix+"/share/whatsapp", h.HandleShareWhatsApp)

	// Admin endpoints
	mux.Handle("GET "+prefix+"/approvals", admin(h.HandleListApprovals))
	mux.Handle("POST "+prefix+"/approvals/{serial}/approve", admin(h.HandleApprove))
	mux.Handle("POST "+prefix+"/approvals/{serial}/reject", admin(h.HandleReject))
	mux.Handle("POST "+prefix+"/refresh", admin(h.HandleRefresh))
	mux.Handle("GET "+prefix+"/stats", admin(h.HandleStats))

	// Real-time endpoints
	mux.HandleFunc("GET "+prefix+"/updates/ws", h.HandleWebSocket)
	mux.HandleFunc("GET "+prefix+"/updates/stream", h.HandleSSE)
}

// applyMiddleware wraps handler with middleware chain. The first
// middleware listed runs outermost.
func (s *Server) applyMiddleware(handler http.Handler) http.Handler {
	cfg := s.config

	if cfg.MaxBodyBytes > 0 {
		handler = http.MaxBytesHandler(handler, cfg.MaxBodyBytes)
	}

	chain := []func(http.Handler) http.Handler{
		middleware.Recovery(s.logger),
		middleware.RequestID,
		middleware.Logger(s.logger),
	}

	// CORS (if enabled)
	if cfg.CORSEnabled {
		corsConfig := middleware.DefaultCORSConfig()
		if len(cfg.CORSOrigins) > 0 {
			corsConfig.AllowedOrigins = cfg.CORSOrigins
		} else {
			corsConfig.AllowAll = true
		}
		chain = append(chain, middleware.CORS(corsConfig))
	}

	// Rate limiting (if enabled)
	if s.rateLimiter != nil {
		chain = append(chain, middleware.RateLimit(s.rateLimiter))
	}

	authConfig := middleware.DefaultAuthConfig(cfg.PathPrefix)
	authConfig.Enabled = cfg.AuthEnabled
	authConfig.Anonymous = anonymous
	if s.tokens != nil {
		authConfig.Verifier = s.tokens
	}
	chain = append(chain, middleware.Auth(authConfig, s.logger))

	return middleware.Chain(chain...)(handler)
}
