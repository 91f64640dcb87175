// Package accounts checks credentials against the Pass sheet.
package accounts

import (
	"strings"

	"github.com/agentstation/docledger/pkg/documents"
	"github.com/agentstation/docledger/pkg/errors"
)

// RoleAdmin is the role that sees every document and may review approvals.
const RoleAdmin = "admin"

// RoleUser is the default role.
const RoleUser = "user"

// ErrInvalidCredentials is returned for an unknown user or wrong password.
var ErrInvalidCredentials = errors.NewAuthenticationError("password", "Invalid username or password", nil)

// Account is one row of the Pass sheet.
type Account struct {
	Name     string `json:"name" yaml:"name"`
	Username string `json:"username" yaml:"username"`
	Password string `json:"-" yaml:"-"`
	Role     string `json:"role" yaml:"role"`
}

// IsAdmin reports whether the account has the admin role.
func (a Account) IsAdmin() bool {
	return strings.EqualFold(strings.TrimSpace(a.Role), RoleAdmin)
}

// DisplayName is the name documents are owned under. It falls back to the
// username when the name column is blank.
func (a Account) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	return a.Username
}

// MapAccounts converts Pass rows. Rows without a username are skipped.
func MapAccounts(rows [][]string) []Account {
	out := make([]Account, 0, len(rows))
	for _, row := range rows {
		cell := func(i int) string {
			if i < len(row) {
				return strings.TrimSpace(row[i])
			}
			return ""
		}
		a := Account{
			Name:     cell(documents.AccountColName),
			Username: cell(documents.AccountColUsername),
			Role:     cell(documents.AccountColRole),
		}
		if a.Username == "" {
			continue
		}
		if a.Role == "" {
			a.Role = RoleUser
		}
		// Passwords are compared verbatim; only the row's own padding is kept.
		if i := documents.AccountColPassword; i < len(row) {
			a.Password = row[i]
		}
		out = append(out, a)
	}
	return out
}

// Authenticate finds the account for username and checks password. The
// username match ignores case and surrounding space; the password must match
// exactly.
func Authenticate(accounts []Account, username, password string) (Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return Account{}, ErrInvalidCredentials
	}
	for _, a := range accounts {
		if strings.EqualFold(a.Username, username) {
			if a.Password != password {
				return Account{}, ErrInvalidCredentials
			}
			return a, nil
		}
	}
	return Account{}, ErrInvalidCredentials
}
