package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
)

func init() {
	rootCmd.AddCommand(categoryCmd, budgetCmd)
	categoryCmd.AddCommand(categoryListCmd, categoryAddCmd, categoryRemoveCmd)
	budgetCmd.AddCommand(budgetListCmd, budgetSetCmd, budgetClearCmd)
}

var categoryCmd = &cobra.Command{
	Use:   "category",
	Short: "Manage spending categories",
}

var categoryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cats := app.Service.Categories()
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), cats)
		}
		for _, c := range cats {
			fmt.Fprintln(cmd.OutOrStdout(), c)
		}
		return nil
	},
}

var categoryAddCmd = &cobra.Command{
	Use:   "add NAME",
	Short: "Add a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Service.AddCategory(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Category %q added\n", args[0])
		return nil
	},
}

var categoryRemoveCmd = &cobra.Command{
	Use:     "remove NAME",
	Aliases: []string{"delete", "rm"},
	Short:   "Delete a category and its budget",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := app.Service.DeleteCategory(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !removed {
			return &core.NotFoundError{Kind: "category", Key: args[0]}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Category %q deleted\n", args[0])
		return nil
	},
}

var budgetCmd = &cobra.Command{
	Use:   "budget",
	Short: "Manage monthly category budgets",
}

var budgetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List budget caps",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		budgets := app.Service.Budgets()
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), budgets)
		}
		names := make([]string, 0, len(budgets))
		for n := range budgets {
			names = append(names, n)
		}
		sort.Strings(names)
		rows := make([][]string, 0, len(names))
		for _, n := range names {
			rows = append(rows, []string{n, budgets[n].String()})
		}
		return table(cmd.OutOrStdout(), []string{"CATEGORY", "CAP"}, rows)
	},
}

var budgetSetCmd = &cobra.Command{
	Use:   "set CATEGORY [AMOUNT]",
	Short: "Set a budget cap; an empty amount clears it",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		value := ""
		if len(args) == 2 {
			value = args[1]
		}
		if err := app.Service.ApplyBudgetInput(cmd.Context(), args[0], value); err != nil {
			return err
		}
		if limit, ok := app.Service.Budgets()[args[0]]; ok {
			fmt.Fprintf(cmd.OutOrStdout(), "Budget for %q: %s\n", args[0], limit)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Budget for %q cleared\n", args[0])
		}
		return nil
	},
}

var budgetClearCmd = &cobra.Command{
	Use:   "clear CATEGORY",
	Short: "Remove a budget cap",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		removed, err := app.Service.ClearBudget(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !removed {
			return &core.NotFoundError{Kind: "budget", Key: args[0]}
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Budget for %q cleared\n", args[0])
		return nil
	},
}
