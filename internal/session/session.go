// Package session holds the signed-in user for the CLI and keeps it in a
// small YAML file so every docledger process on the machine shares it.
package session

import (
	"strings"

	"github.com/agentstation/docledger/pkg/accounts"
	"github.com/agentstation/docledger/pkg/documents"
)

// Session is the signed-in state.
type Session struct {
	LoggedIn bool   `yaml:"is_logged_in" json:"is_logged_in"`
	Role     string `yaml:"user_role,omitempty" json:"user_role,omitempty"`
	UserName string `yaml:"user_name,omitempty" json:"user_name,omitempty"`
}

// FromAccount starts a session for an authenticated account.
func FromAccount(a accounts.Account) Session {
	return Session{
		LoggedIn: true,
		Role:     a.Role,
		UserName: a.DisplayName(),
	}
}

// IsAdmin reports whether the session has the admin role.
func (s Session) IsAdmin() bool {
	return s.LoggedIn && strings.EqualFold(strings.TrimSpace(s.Role), accounts.RoleAdmin)
}

// Viewer returns who document views are rendered for.
func (s Session) Viewer() documents.Viewer {
	return documents.Viewer{Name: s.UserName, Admin: s.IsAdmin()}
}
