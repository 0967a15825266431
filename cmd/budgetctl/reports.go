package main

import (
	"context"
	"fmt"
	"net/url"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"budget/internal/core"
	apphttp "budget/internal/http"
	"budget/internal/report"
	"budget/internal/services"
)

var (
	refMonth      string
	refDate       string
	period        string
	categoryTypes string
)

// refFromFlags resolves --date/--month the same way the HTTP API resolves
// its query parameters.
func refFromFlags(today core.Date) (core.Date, error) {
	q := url.Values{}
	if refDate != "" {
		q.Set("date", refDate)
	}
	if refMonth != "" {
		q.Set("month", refMonth)
	}
	return apphttp.ParseRefDate(q, today)
}

var overviewCmd = &cobra.Command{
	Use:   "overview",
	Short: "Show income, expenses and balance for a month",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *services.LedgerService) error {
			ref, err := refFromFlags(svc.Today())
			if err != nil {
				return err
			}
			ov := svc.Overview(ref)
			ch := svc.Change(ref)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Month:     %s\n", ref.Format("2006-01"))
			fmt.Fprintf(out, "Income:    %s\n", ov.Income.StringFixed(2))
			fmt.Fprintf(out, "Expenses:  %s\n", ov.Expenses.StringFixed(2))
			fmt.Fprintf(out, "Balance:   %s\n", ov.Balance.StringFixed(2))
			if ch.Percent != nil {
				fmt.Fprintf(out, "vs. prior: %s (%+.1f%%)\n", ch.Delta.StringFixed(2), *ch.Percent)
			} else {
				fmt.Fprintf(out, "vs. prior: %s\n", ch.Delta.StringFixed(2))
			}
			return nil
		})
	},
}

var breakdownCmd = &cobra.Command{
	Use:   "breakdown",
	Short: "Show expenses by category for the last week, month or year",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *services.LedgerService) error {
			ref, err := refFromFlags(svc.Today())
			if err != nil {
				return err
			}
			p := report.ParsePeriod(period)
			start, end := report.PeriodWindow(p, ref)
			slices := svc.Breakdown(p, ref)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Expenses %s to %s (%s)\n", start, end, p)
			if len(slices) == 0 {
				_, err := fmt.Fprintln(out, "No expenses in this period.")
				return err
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
			for _, s := range slices {
				fmt.Fprintf(w, "%s\t%s\t%.1f%%\t\n", s.Label, s.Total.StringFixed(2), s.Percent)
			}
			return w.Flush()
		})
	},
}

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the categories accepted for each type",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		types := []core.TransactionType{core.Expense, core.Income}
		if categoryTypes != "" {
			t, err := core.ParseTransactionType(categoryTypes)
			if err != nil {
				return err
			}
			types = []core.TransactionType{t}
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TYPE\tVALUE\tLABEL")
		for _, t := range types {
			for _, c := range core.Categories(t) {
				fmt.Fprintf(w, "%s\t%s\t%s\n", t, c.Value, c.Label)
			}
		}
		return w.Flush()
	},
}

func init() {
	for _, c := range []*cobra.Command{overviewCmd, breakdownCmd} {
		c.Flags().StringVar(&refDate, "date", "", "reference date YYYY-MM-DD (default today)")
		c.Flags().StringVar(&refMonth, "month", "", "reference month YYYY-MM")
	}
	breakdownCmd.Flags().StringVarP(&period, "period", "p", string(report.Month), "week, month or year")
	categoriesCmd.Flags().StringVarP(&categoryTypes, "type", "t", "", "only this type")
}
