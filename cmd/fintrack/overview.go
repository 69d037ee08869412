package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func init() {
	rootCmd.AddCommand(overviewCmd, themeCmd)
	overviewCmd.Flags().Int("year", 0, "Year (default current)")
	overviewCmd.Flags().Int("month", 0, "Month 1-12 (default current)")
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show spending, budgets and balances for a month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		m := report.MonthOf(time.Now())
		year, month := m.Year, m.Month
		if cmd.Flags().Changed("year") {
			year, _ = cmd.Flags().GetInt("year")
		}
		if cmd.Flags().Changed("month") {
			month, _ = cmd.Flags().GetInt("month")
		}
		m, err := report.NewMonth(year, month)
		if err != nil {
			return err
		}
		ov := app.Service.Overview(m)
		if wantJSON(cmd) {
			return printJSON(cmd.OutOrStdout(), ov)
		}
		return printOverview(cmd, ov)
	},
}

func printOverview(cmd *cobra.Command, ov core.MonthOverview) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%04d-%02d  spent %s  balance %s  debt %s\n\n",
		ov.Year, ov.Month, ov.Total, ov.TotalBalance, ov.TotalDebt)

	rows := make([][]string, 0, len(ov.ByCategory))
	for _, c := range ov.ByCategory {
		rows = append(rows, []string{c.Name, c.Amount.String()})
	}
	if err := table(out, []string{"CATEGORY", "SPENT"}, rows); err != nil {
		return err
	}
	if len(ov.Budgets) == 0 {
		return nil
	}
	fmt.Fprintln(out)
	rows = rows[:0]
	for _, b := range ov.Budgets {
		status := ""
		if b.Over {
			status = "OVER"
		}
		rows = append(rows, []string{b.Category, b.Spent.String(), b.Cap.String(),
			strconv.FormatFloat(b.PercentUsed, 'f', 1, 64) + "%", status})
	}
	return table(out, []string{"BUDGET", "SPENT", "CAP", "USED", ""}, rows)
}

var themeCmd = &cobra.Command{
	Use:       "theme [light|dark|toggle]",
	Short:     "Show or change the display theme",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"light", "dark", "toggle"},
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), app.Service.Theme())
			return nil
		}
		if args[0] == "toggle" {
			t, err := app.Service.ToggleTheme(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), t)
			return nil
		}
		if err := app.Service.SetTheme(cmd.Context(), core.Theme(args[0])); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), args[0])
		return nil
	},
}
