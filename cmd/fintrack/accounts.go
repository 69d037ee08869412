package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
)

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountListCmd, accountAddCmd, accountRemoveCmd, accountFundCmd, accountTransferCmd)

	accountAddCmd.Flags().String("balance", "", "Opening balance (may be negative)")
}

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage accounts and move money between them",
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts with their balances",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts := app.Service.Accounts()
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), accounts)
		}
		rows := make([][]string, 0, len(accounts)+1)
		for _, a := range accounts {
			rows = append(rows, []string{a.Name, a.Balance.String()})
		}
		rows = append(rows, []string{"TOTAL", app.Service.TotalBalance().String()})
		return table(cmd.OutOrStdout(), []string{"ACCOUNT", "BALANCE"}, rows)
	},
}

var accountAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Open an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var balance core.Money
		if s, _ := cmd.Flags().GetString("balance"); s != "" {
			b, err := core.ParseSignedAmount(s)
			if err != nil {
				return core.NewValidationError("opening balance must be a number")
			}
			balance = b
		}
		if err := app.Service.AddAccount(cmd.Context(), args[0], balance); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account %q opened with %s\n", args[0], balance)
		return nil
	},
}

var accountRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"delete", "rm"},
	Short:   "Delete an account; its transactions keep the name",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := app.Service.DeleteAccount(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !removed {
			return &core.NotFoundError{Kind: "account", Key: args[0]}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Account %q deleted\n", args[0])
		return nil
	},
}

var accountFundCmd = &cobra.Command{
	Use:   "fund NAME AMOUNT",
	Short: "Add funds to an account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Service.AddFunds(cmd.Context(), args[0], parseAmountArg(args[1])); err != nil {
			return err
		}
		acc, _ := app.Service.Account(args[0])
		fmt.Fprintf(cmd.OutOrStdout(), "%s balance: %s\n", acc.Name, acc.Balance)
		return nil
	},
}

var accountTransferCmd = &cobra.Command{
	Use:   "transfer FROM TO AMOUNT",
	Short: "Move money between two accounts",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount := parseAmountArg(args[2])
		if err := app.Service.TransferFunds(cmd.Context(), args[0], args[1], amount); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Transferred %s from %q to %q\n", amount, args[0], args[1])
		return nil
	},
}

// parseAmountArg parses a positive amount. Unparseable text yields zero and
// the ledger rejects it with its own message.
func parseAmountArg(s string) core.Money {
	m, err := core.ParseAmount(s)
	if err != nil {
		return core.Money{}
	}
	return m
}
