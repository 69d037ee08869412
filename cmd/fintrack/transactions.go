package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/ledger"
	"fintrack/internal/report"
)

func init() {
	rootCmd.AddCommand(txCmd)
	txCmd.AddCommand(txListCmd, txAddCmd, txEditCmd, txRemoveCmd, txTargetsCmd, txDanglingCmd)

	txListCmd.Flags().String("target", "", "Only transactions booked against this selector label")
	txListCmd.Flags().StringP("query", "q", "", "Only transactions whose description contains this text")

	for _, c := range []*cobra.Command{txAddCmd, txEditCmd} {
		c.Flags().String("date", "", "Date as YYYY-MM-DD (default today)")
		c.Flags().String("amount", "", "Amount spent")
		c.Flags().String("target", "", `Category or "Loan: <name>"`)
		c.Flags().String("account", "", "Account the money comes from")
		c.Flags().String("description", "", "Free text")
	}
}

var txCmd = &cobra.Command{
	Use:     "tx",
	Aliases: []string{"transaction"},
	Short:   "Record and review transactions",
}

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target, _ := cmd.Flags().GetString("target")
		query, _ := cmd.Flags().GetString("query")
		return printTransactions(cmd, app.Service.Transactions(report.Filter{Target: target, Description: query}))
	},
}

func printTransactions(cmd *cobra.Command, txs []core.Transaction) error {
	if wantJSON(cmd) {
		return printJSON(cmd.OutOrStdout(), txs)
	}
	rows := make([][]string, 0, len(txs))
	for _, t := range txs {
		rows = append(rows, []string{string(t.ID), t.Date.String(), t.Amount.String(), t.Target.Label(), t.AccountName, t.Description})
	}
	return table(cmd.OutOrStdout(), []string{"ID", "DATE", "AMOUNT", "TARGET", "ACCOUNT", "DESCRIPTION"}, rows)
}

// transactionInput reads the add/edit flags. Flags left unset fall back to
// base, so an edit only names what changes.
func transactionInput(cmd *cobra.Command, base ledger.TransactionInput) ledger.TransactionInput {
	in := base
	f := cmd.Flags()
	if f.Changed("date") {
		in.Date, _ = f.GetString("date")
	}
	if f.Changed("amount") {
		s, _ := f.GetString("amount")
		in.Amount = parseAmountArg(s)
	}
	if f.Changed("target") {
		s, _ := f.GetString("target")
		in.Target = app.Service.TargetFromLabel(s)
	}
	if f.Changed("account") {
		in.Account, _ = f.GetString("account")
	}
	if f.Changed("description") {
		in.Description, _ = f.GetString("description")
	}
	return in
}

var txAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		base := ledger.TransactionInput{Date: time.Now().Format("2006-01-02")}
		if accounts := app.Service.Accounts(); len(accounts) > 0 {
			base.Account = accounts[0].Name
		}
		tx, err := app.Service.AddTransaction(cmd.Context(), transactionInput(cmd, base))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Recorded %s: %s on %s from %s\n", tx.ID, tx.Amount, tx.Target.Label(), tx.AccountName)
		return nil
	},
}

var txEditCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Change a transaction; balances are rebooked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id := core.TransactionID(args[0])
		orig, ok := findTransaction(id)
		if !ok {
			return &core.NotFoundError{Kind: "transaction", Key: args[0]}
		}
		base := ledger.TransactionInput{
			Date:        orig.Date.String(),
			Amount:      orig.Amount,
			Target:      orig.Target,
			Account:     orig.AccountName,
			Description: orig.Description,
		}
		tx, err := app.Service.EditTransaction(cmd.Context(), id, transactionInput(cmd, base))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s: %s on %s from %s\n", tx.ID, tx.Amount, tx.Target.Label(), tx.AccountName)
		return nil
	},
}

var txRemoveCmd = &cobra.Command{
	Use:     "remove ID",
	Aliases: []string{"delete", "rm"},
	Short:   "Delete a transaction and reverse its effect",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		tx, err := app.Service.DeleteTransaction(cmd.Context(), core.TransactionID(args[0]))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s (%s refunded to %s)\n", tx.ID, tx.Amount, tx.AccountName)
		return nil
	},
}

var txTargetsCmd = &cobra.Command{
	Use:   "targets",
	Short: "List the labels a transaction can be booked against",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		sel := app.Service.Selectors()
		labels := make([]string, 0, len(sel))
		for _, s := range sel {
			labels = append(labels, s.Label)
		}
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), labels)
		}
		for _, l := range labels {
			fmt.Fprintln(cmd.OutOrStdout(), l)
		}
		return nil
	},
}

var txDanglingCmd = &cobra.Command{
	Use:   "dangling",
	Short: "List loan payments whose loan was deleted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return printTransactions(cmd, app.Service.DanglingLoanPayments())
	},
}

func findTransaction(id core.TransactionID) (core.Transaction, bool) {
	for _, t := range app.Service.Transactions(report.Filter{}) {
		if t.ID == id {
			return t, true
		}
	}
	return core.Transaction{}, false
}
