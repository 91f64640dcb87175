package app

import (
	"github.com/spf13/cobra"

	"github.com/agentstation/docledger/cmd/docledger/cmd/add"
	"github.com/agentstation/docledger/cmd/docledger/cmd/approvals"
	"github.com/agentstation/docledger/cmd/docledger/cmd/dashboard"
	"github.com/agentstation/docledger/cmd/docledger/cmd/list"
	"github.com/agentstation/docledger/cmd/docledger/cmd/login"
	"github.com/agentstation/docledger/cmd/docledger/cmd/man"
	"github.com/agentstation/docledger/cmd/docledger/cmd/remove"
	"github.com/agentstation/docledger/cmd/docledger/cmd/renew"
	"github.com/agentstation/docledger/cmd/docledger/cmd/renewals"
	"github.com/agentstation/docledger/cmd/docledger/cmd/serve"
	"github.com/agentstation/docledger/cmd/docledger/cmd/share"
	"github.com/agentstation/docledger/cmd/docledger/cmd/shared"
	"github.com/agentstation/docledger/cmd/docledger/cmd/version"
)

// registerCommands registers all subcommands with the root command.
func (a *App) registerCommands(rootCmd *cobra.Command) {
	// Core commands
	rootCmd.AddCommand(list.NewCommand(a))
	rootCmd.AddCommand(renewals.NewCommand(a))
	rootCmd.AddCommand(dashboard.NewCommand(a))
	rootCmd.AddCommand(shared.NewCommand(a))
	rootCmd.AddCommand(add.NewCommand(a))
	rootCmd.AddCommand(renew.NewCommand(a))
	rootCmd.AddCommand(remove.NewCommand(a))
	rootCmd.AddCommand(share.NewCommand(a))

	// Management commands
	rootCmd.AddCommand(approvals.NewCommand(a))
	rootCmd.AddCommand(login.NewLoginCommand(a))
	rootCmd.AddCommand(login.NewLogoutCommand(a))
	rootCmd.AddCommand(login.NewWhoamiCommand(a))
	rootCmd.AddCommand(serve.NewCommand(a))

	// Utility commands
	rootCmd.AddCommand(version.NewCommand(a))
	rootCmd.AddCommand(man.NewCommand())
}
