// Command fintrack manages a personal ledger from the terminal and serves it
// over HTTP.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"fintrack/internal/cli"
)

// app is opened by the root command before any subcommand runs.
var app *cli.App

var rootCmd = &cobra.Command{
	Use:           "fintrack",
	Short:         "Personal finance tracker",
	Long:          `Track accounts, spending categories, budgets, transactions and loans.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		a, err := cli.Bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		app = a
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if app == nil {
			return nil
		}
		return app.Close()
	},
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
