package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
)

func init() {
	rootCmd.AddCommand(loanCmd)
	loanCmd.AddCommand(loanListCmd, loanAddCmd, loanEditCmd, loanRemoveCmd)

	loanEditCmd.Flags().String("name", "", "New name")
	loanEditCmd.Flags().String("total", "", "New total amount")
}

var loanCmd = &cobra.Command{
	Use:   "loan",
	Short: "Track loans and their remaining balance",
}

var loanListCmd = &cobra.Command{
	Use:   "list",
	Short: "List loans",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		loans := app.Service.Loans()
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), loans)
		}
		rows := make([][]string, 0, len(loans)+1)
		for _, l := range loans {
			rows = append(rows, []string{l.Name, l.TotalAmount.String(), l.Paid().String(), l.RemainingBalance.String()})
		}
		rows = append(rows, []string{"TOTAL DEBT", "", "", app.Service.TotalDebt().String()})
		return table(cmd.OutOrStdout(), []string{"LOAN", "TOTAL", "PAID", "REMAINING"}, rows)
	},
}

var loanAddCmd = &cobra.Command{
	Use:   "add NAME TOTAL",
	Short: "Register a loan",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		loan, err := app.Service.AddLoan(cmd.Context(), args[0], parseAmountArg(args[1]))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loan %q registered: %s outstanding\n", loan.Name, loan.RemainingBalance)
		return nil
	},
}

var loanEditCmd = &cobra.Command{
	Use:   "edit NAME",
	Short: "Rename a loan or change its total; payments already made are kept",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var current core.Loan
		found := false
		for _, l := range app.Service.Loans() {
			if l.Name == args[0] {
				current, found = l, true
				break
			}
		}
		if !found {
			return &core.NotFoundError{Kind: "loan", Key: args[0]}
		}
		newName, total := current.Name, current.TotalAmount
		if cmd.Flags().Changed("name") {
			newName, _ = cmd.Flags().GetString("name")
		}
		if cmd.Flags().Changed("total") {
			s, _ := cmd.Flags().GetString("total")
			total = parseAmountArg(s)
		}
		loan, err := app.Service.EditLoan(cmd.Context(), args[0], newName, total)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loan %q: total %s, remaining %s\n", loan.Name, loan.TotalAmount, loan.RemainingBalance)
		return nil
	},
}

var loanRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"delete", "rm"},
	Short:   "Delete a loan; its payments stay on record",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dangling, err := app.Service.DeleteLoan(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Loan %q deleted\n", args[0])
		if dangling > 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%d payment(s) now reference a missing loan; see 'fintrack tx dangling'\n", dangling)
		}
		return nil
	},
}
