// Package login provides the session commands: login, logout and whoami.
package login

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentstation/docledger/internal/appcontext"
	"github.com/agentstation/docledger/internal/cmd/output"
	"github.com/agentstation/docledger/pkg/errors"
)

// NewLoginCommand creates the login command.
func NewLoginCommand(app appcontext.Interface) *cobra.Command {
	var username, password string

	cmd := &cobra.Command{
		Use:     "login",
		GroupID: "management",
		Short:   "Sign in with a ledger account",
		Long: `Login checks a username and password against the accounts sheet and
stores the session in the session file, shared by every docledger
process for this user.

When --password is omitted it is read from the first line of stdin.`,
		Example: `  docledger login --username alice
  echo "$PASSWORD" | docledger login --username alice`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if password == "" {
				var err error
				if password, err = readPassword(cmd.InOrStdin(), cmd.ErrOrStderr()); err != nil {
					return err
				}
			}

			mgr, err := app.Sessions()
			if err != nil {
				return err
			}
			dl, err := app.Ledger(cmd.Context())
			if err != nil {
				return err
			}

			acct, err := dl.Authenticate(cmd.Context(), username, password)
			if err != nil {
				return err
			}
			sess, err := mgr.Login(acct)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Logged in as %s (%s)\n", sess.UserName, sess.Role)
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "Account username")
	cmd.Flags().StringVarP(&password, "password", "p", "", "Account password (read from stdin when omitted)")
	_ = cmd.MarkFlagRequired("username")

	return cmd
}

// NewLogoutCommand creates the logout command.
func NewLogoutCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "logout",
		GroupID: "management",
		Short:   "Sign out and clear the stored session",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mgr, err := app.Sessions()
			if err != nil {
				return err
			}
			if err := mgr.Logout(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Logged out")
			return nil
		},
	}
}

// NewWhoamiCommand creates the whoami command.
func NewWhoamiCommand(app appcontext.Interface) *cobra.Command {
	return &cobra.Command{
		Use:     "whoami",
		GroupID: "management",
		Short:   "Show the signed-in user",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := appcontext.RequireSession(app)
			if err != nil {
				return err
			}
			// Only an explicit format switches away from plain text
			if f := output.Format(app.OutputFormat()); f != "" && !f.IsTable() {
				return output.NewFormatter(f).Format(cmd.OutOrStdout(), sess)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", sess.UserName, sess.Role)
			return nil
		},
	}
}

// readPassword reads one line from in after prompting on prompt.
func readPassword(in io.Reader, prompt io.Writer) (string, error) {
	fmt.Fprint(prompt, "Password: ")
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", errors.WrapIO("read", "stdin", err)
	}
	password := strings.TrimRight(line, "\r\n")
	if password == "" {
		return "", errors.NewValidationError("password", "", "a password is required")
	}
	return password, nil
}
