// Package appcontext provides the shared application context interface
// used by all commands. This eliminates interface duplication across
// command packages and provides a single source of truth for app dependencies.
package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/docledger"
	"github.com/agentstation/docledger/internal/auth"
	"github.com/agentstation/docledger/internal/session"
	"github.com/agentstation/docledger/pkg/errors"
)

// Interface defines the application context interface that commands need.
// The App struct from cmd/docledger/app implements this interface,
// providing dependency injection for commands while maintaining testability.
//
// Commands should accept this interface rather than the concrete App type,
// allowing for easier testing with mock implementations.
type Interface interface {
	// Ledger returns the default ledger, loading it from the script service
	// on first use. Later calls return the same client without reloading.
	Ledger(ctx context.Context) (docledger.Client, error)

	// Sessions returns the session manager backed by the session file.
	Sessions() (*session.Manager, error)

	// Tokens returns the API token service built from the configured secret.
	Tokens() (*auth.TokenService, error)

	// Logger returns the configured logger instance.
	// Commands should use this for all logging operations.
	Logger() *zerolog.Logger

	// OutputFormat returns the configured output format (json, yaml, table, etc).
	// Commands that support different output formats should use this.
	OutputFormat() string

	// Version returns the application version string.
	Version() string

	// Commit returns the git commit hash.
	Commit() string

	// Date returns the build date.
	Date() string

	// BuiltBy returns the build system identifier.
	BuiltBy() string
}

// SessionProvider is the part of Interface that RequireSession needs.
type SessionProvider interface {
	Sessions() (*session.Manager, error)
}

// RequireSession returns the logged-in session or an authentication error.
func RequireSession(app SessionProvider) (session.Session, error) {
	mgr, err := app.Sessions()
	if err != nil {
		return session.Session{}, err
	}
	return mgr.Require()
}

// RequireAdmin returns the logged-in session when it has the admin role.
func RequireAdmin(app SessionProvider) (session.Session, error) {
	sess, err := RequireSession(app)
	if err != nil {
		return sess, err
	}
	if !sess.IsAdmin() {
		return sess, errors.NewAuthenticationError("role", "this command requires an administrator session", nil)
	}
	return sess, nil
}
