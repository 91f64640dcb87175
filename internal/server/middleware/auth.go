package middleware

import (
	"context"
	"net/http"
	"slices"
	"strings"

	"github.com/rs/zerolog"

	"github.com/agentstation/docledger/internal/auth"
	"github.com/agentstation/docledger/internal/session"
	"github.com/agentstation/docledger/pkg/logging"
)

// TokenVerifier checks bearer tokens. *auth.TokenService implements it.
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// AuthConfig holds authentication configuration.
type AuthConfig struct {
	Enabled     bool
	Verifier    TokenVerifier
	PublicPaths []string

	// QueryParam names a query parameter accepted in place of the
	// Authorization header, for browser WebSocket and EventSource clients.
	QueryParam string

	// Anonymous is the session used for every request while disabled.
	Anonymous session.Session
}

// DefaultAuthConfig returns default authentication configuration for the
// given path prefix.
func DefaultAuthConfig(prefix string) AuthConfig {
	return AuthConfig{
		Enabled:     true,
		PublicPaths: []string{"/health", prefix + "/health", prefix + "/ready", prefix + "/login"},
		QueryParam:  "access_token",
	}
}

type sessionKey struct{}

// WithSession stores the caller's session in the context.
func WithSession(ctx context.Context, s session.Session) context.Context {
	return context.WithValue(ctx, sessionKey{}, s)
}

// SessionFromContext returns the caller's session, if authenticated.
func SessionFromContext(ctx context.Context) (session.Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(session.Session)
	return s, ok && s.LoggedIn
}

// Auth validates bearer tokens on protected endpoints and stores the
// token's session in the request context.
func Auth(config AuthConfig, logger *zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled {
				next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), config.Anonymous)))
				return
			}

			if slices.Contains(config.PublicPaths, r.URL.Path) || r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}

			token := extractToken(r, config.QueryParam)
			if token == "" {
				writeUnauthorized(w, "Missing bearer token")
				return
			}

			claims, err := config.Verifier.Verify(token)
			if err != nil {
				logger.Warn().
					Err(err).
					Str("path", r.URL.Path).
					Str("remote_addr", r.RemoteAddr).
					Msg("Authentication failed")
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			ctx := WithSession(r.Context(), claims.Session())
			ctx = logging.WithUser(ctx, claims.Subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin rejects callers whose session lacks the admin role.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s, ok := SessionFromContext(r.Context())
		if !ok {
			writeUnauthorized(w, "Authentication required")
			return
		}
		if !s.IsAdmin() {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"data":null,"error":{"code":"FORBIDDEN","message":"Administrator role required"}}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", `Bearer realm="docledger"`)
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"data":null,"error":{"code":"UNAUTHORIZED","message":"` + message + `","details":"Provide a valid token in the Authorization header"}}`))
}

// extractToken reads "Authorization: Bearer <token>", falling back to the
// query parameter when one is configured.
func extractToken(r *http.Request, queryParam string) string {
	if h := r.Header.Get("Authorization"); h != "" {
		scheme, token, ok := strings.Cut(h, " ")
		if ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if queryParam != "" {
		return r.URL.Query().Get(queryParam)
	}
	return ""
}
