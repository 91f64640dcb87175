// Package auth issues and verifies the bearer tokens of the HTTP API.
//
// Tokens are HS256 JWTs carrying the account's display name and role, so a
// request can be scoped to its user without a round trip to the Pass sheet.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/agentstation/docledger/internal/session"
	"github.com/agentstation/docledger/pkg/accounts"
	"github.com/agentstation/docledger/pkg/constants"
	"github.com/agentstation/docledger/pkg/errors"
)

// Claims are the JWT claims of an API token. The subject is the username.
type Claims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Session converts the claims into a signed-in session.
func (c *Claims) Session() session.Session {
	return session.Session{LoggedIn: true, Role: c.Role, UserName: c.Name}
}

// TokenService signs and verifies API tokens.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithTTL sets the token lifetime.
func WithTTL(ttl time.Duration) Option {
	return func(s *TokenService) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithClock sets the time source. Used by tests.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewTokenService creates a token service. The secret must not be empty.
func NewTokenService(secret string, opts ...Option) (*TokenService, error) {
	if secret == "" {
		return nil, errors.NewConfigError("auth", "token secret is required", nil)
	}
	s := &TokenService{
		secret: []byte(secret),
		ttl:    constants.TokenTTL,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the token lifetime.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for an authenticated account.
func (s *TokenService) Issue(a accounts.Account) (string, error) {
	now := s.now()
	claims := Claims{
		Name: a.DisplayName(),
		Role: a.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    constants.TokenIssuer,
			Subject:   a.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", errors.NewAuthenticationError("token", "failed to sign token", err)
	}
	return token, nil
}

// Verify parses a token and returns its claims.
func (s *TokenService) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(constants.TokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, errors.NewAuthenticationError("token", "invalid or expired token", err)
	}
	if !parsed.Valid {
		return nil, errors.NewAuthenticationError("token", "invalid token", nil)
	}
	return claims, nil
}
