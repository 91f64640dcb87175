package appcontext

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/agentstation/docledger"
	"github.com/agentstation/docledger/internal/auth"
	"github.com/agentstation/docledger/internal/session"
	"github.com/agentstation/docledger/pkg/errors"
)

// Mock provides a mock implementation of Interface for testing.
// Each method can be customized by setting the corresponding function field.
// If a function field is nil, the method returns a default/zero value.
type Mock struct {
	LedgerFunc   func(context.Context) (docledger.Client, error)
	SessionsFunc func() (*session.Manager, error)
	TokensFunc   func() (*auth.TokenService, error)
	LoggerFunc   func() *zerolog.Logger
	FormatFunc   func() string
	VersionFunc  func() string
	CommitFunc   func() string
	DateFunc     func() string
	BuiltByFunc  func() string
}

// Ledger returns a ledger using the mock function or a config error.
func (m *Mock) Ledger(ctx context.Context) (docledger.Client, error) {
	if m.LedgerFunc != nil {
		return m.LedgerFunc(ctx)
	}
	return nil, errors.NewConfigError("docledger", "no ledger configured", nil)
}

// Sessions returns a manager using the mock function or one over an
// empty in-memory store.
func (m *Mock) Sessions() (*session.Manager, error) {
	if m.SessionsFunc != nil {
		return m.SessionsFunc()
	}
	return session.NewManager(session.NewMemoryStore(session.Session{}), m.Logger())
}

// Tokens returns a token service using the mock function or a config error.
func (m *Mock) Tokens() (*auth.TokenService, error) {
	if m.TokensFunc != nil {
		return m.TokensFunc()
	}
	return nil, errors.NewConfigError("auth", "no token secret configured", nil)
}

// Logger returns a logger using the mock function or a no-op logger.
func (m *Mock) Logger() *zerolog.Logger {
	if m.LoggerFunc != nil {
		return m.LoggerFunc()
	}
	logger := zerolog.Nop()
	return &logger
}

// OutputFormat returns the format using the mock function or "table".
func (m *Mock) OutputFormat() string {
	if m.FormatFunc != nil {
		return m.FormatFunc()
	}
	return "table"
}

// Version returns version using the mock function or "dev".
func (m *Mock) Version() string {
	if m.VersionFunc != nil {
		return m.VersionFunc()
	}
	return "dev"
}

// Commit returns commit using the mock function or "unknown".
func (m *Mock) Commit() string {
	if m.CommitFunc != nil {
		return m.CommitFunc()
	}
	return "unknown"
}

// Date returns date using the mock function or "unknown".
func (m *Mock) Date() string {
	if m.DateFunc != nil {
		return m.DateFunc()
	}
	return "unknown"
}

// BuiltBy returns builtBy using the mock function or "test".
func (m *Mock) BuiltBy() string {
	if m.BuiltByFunc != nil {
		return m.BuiltByFunc()
	}
	return "test"
}

// Ensure Mock implements Interface at compile time.
var _ Interface = (*Mock)(nil)
