// Package app provides the application context and dependency management
// for the docledger CLI. It centralizes configuration, dependency injection
// and lifecycle management for every command.
package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"github.com/agentstation/docledger"
	"github.com/agentstation/docledger/internal/auth"
	"github.com/agentstation/docledger/internal/session"
	"github.com/agentstation/docledger/pkg/errors"
	"github.com/agentstation/docledger/pkg/reconcile"
)

// App represents the docledger application with all its dependencies.
type App struct {
	// Version information
	version string
	commit  string
	date    string
	builtBy string

	// Configuration
	config *Config

	// Logger
	logger *zerolog.Logger

	// Lazy-initialized singletons
	mu       sync.RWMutex
	ledger   docledger.Client
	loaded   bool
	sessions *session.Manager
	tokens   *auth.TokenService
}

// New creates a new App instance with the given version information.
// The app is initialized with the loaded configuration, which can be
// replaced using functional options.
func New(version, commit, date, builtBy string, opts ...Option) (*App, error) {
	app := &App{
		version: version,
		commit:  commit,
		date:    date,
		builtBy: builtBy,
	}

	config, err := LoadConfig()
	if err != nil {
		return nil, errors.WrapResource("load", "config", "", err)
	}
	app.config = config

	logger := NewLogger(config)
	app.logger = &logger

	for _, opt := range opts {
		if err := opt(app); err != nil {
			return nil, err
		}
	}

	return app, nil
}

// Version returns the version information.
func (a *App) Version() string {
	return a.version
}

// Commit returns the git commit hash.
func (a *App) Commit() string {
	return a.commit
}

// Date returns the build date.
func (a *App) Date() string {
	return a.date
}

// BuiltBy returns the build system identifier.
func (a *App) BuiltBy() string {
	return a.builtBy
}

// Config returns the application configuration.
func (a *App) Config() *Config {
	return a.config
}

// Logger returns the application logger.
func (a *App) Logger() *zerolog.Logger {
	return a.logger
}

// OutputFormat returns the requested output format.
func (a *App) OutputFormat() string {
	return a.config.Format
}

// Ledger returns the ledger, creating it and running the first refresh
// on first use. A failed refresh is returned and retried on the next call.
func (a *App) Ledger(ctx context.Context) (docledger.Client, error) {
	a.mu.RLock()
	if a.loaded {
		dl := a.ledger
		a.mu.RUnlock()
		return dl, nil
	}
	a.mu.RUnlock()

	a.mu.Lock()
	defer a.mu.Unlock()

	// Double-check after acquiring write lock
	if a.loaded {
		return a.ledger, nil
	}

	if a.ledger == nil {
		opts, err := a.ledgerOptions()
		if err != nil {
			return nil, err
		}
		dl, err := docledger.New(opts...)
		if err != nil {
			return nil, errors.WrapResource("create", "ledger", "", err)
		}
		a.ledger = dl
	}

	if err := a.ledger.Refresh(ctx); err != nil {
		return nil, err
	}
	a.loaded = true
	return a.ledger, nil
}

// ledgerOptions constructs ledger options from the app configuration.
func (a *App) ledgerOptions() ([]docledger.Option, error) {
	if a.config.Endpoint == "" {
		return nil, errors.NewConfigError("docledger",
			"no script endpoint configured, set DOCLEDGER_ENDPOINT or 'endpoint' in ~/.docledger.yaml", nil)
	}

	tieBreak, err := reconcile.ParseTieBreak(a.config.TieBreak)
	if err != nil {
		return nil, errors.NewValidationError("tie_break", a.config.TieBreak, err.Error())
	}

	opts := []docledger.Option{
		docledger.WithEndpoint(a.config.Endpoint),
		docledger.WithTieBreak(tieBreak),
		docledger.WithLogger(a.logger),
		docledger.WithAutoRefresh(false),
	}
	if a.config.APIKey != "" {
		opts = append(opts, docledger.WithAPIKey(a.config.APIKey, a.config.APIKeyScheme()))
	}
	if a.config.UploadFolderID != "" {
		opts = append(opts, docledger.WithUploadFolder(a.config.UploadFolderID))
	}
	if a.config.RefreshInterval > 0 {
		opts = append(opts, docledger.WithAutoRefreshInterval(a.config.RefreshInterval))
	}
	return opts, nil
}

// Sessions returns the session manager over the configured session file.
func (a *App) Sessions() (*session.Manager, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.sessions != nil {
		return a.sessions, nil
	}
	mgr, err := session.NewManager(session.NewFileStore(a.config.SessionFile), a.logger)
	if err != nil {
		return nil, errors.WrapResource("load", "session", a.config.SessionFile, err)
	}
	a.sessions = mgr
	return mgr, nil
}

// Tokens returns the API token service for the configured secret.
func (a *App) Tokens() (*auth.TokenService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.tokens != nil {
		return a.tokens, nil
	}
	tokens, err := auth.NewTokenService(a.config.JWTSecret)
	if err != nil {
		return nil, errors.NewConfigError("auth",
			"no token secret configured, set DOCLEDGER_JWT_SECRET or 'jwt_secret'", err)
	}
	a.tokens = tokens
	return tokens, nil
}

// Shutdown performs graceful shutdown of the application.
// It stops background refreshes started by long-running commands.
func (a *App) Shutdown(_ context.Context) error {
	a.mu.RLock()
	dl := a.ledger
	a.mu.RUnlock()

	if dl != nil {
		if err := dl.AutoRefreshOff(); err != nil {
			a.logger.Error().Err(err).Msg("Failed to stop auto-refresh during shutdown")
			return err
		}
	}
	return nil
}

// Option is a functional option for configuring the App.
type Option func(*App) error

// WithConfig sets a custom configuration.
func WithConfig(config *Config) Option {
	return func(a *App) error {
		a.config = config
		return nil
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(a *App) error {
		a.logger = logger
		return nil
	}
}

// WithLedger sets a ledger client (useful for testing). The client is
// refreshed on first use like one built from configuration.
func WithLedger(dl docledger.Client) Option {
	return func(a *App) error {
		a.ledger = dl
		return nil
	}
}

// WithSessions sets the session manager (useful for testing).
func WithSessions(mgr *session.Manager) Option {
	return func(a *App) error {
		a.sessions = mgr
		return nil
	}
}
