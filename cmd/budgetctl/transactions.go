package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"budget/internal/core"
	"budget/internal/filter"
	"budget/internal/ledger"
	"budget/internal/services"
)

var (
	txDescription string
	txAmount      string
	txType        string
	txCategory    string
	txDate        string

	listType     string
	listCategory string

	deleteYes bool
)

func addTransactionFlags(fs *pflag.FlagSet) {
	fs.StringVarP(&txDescription, "desc", "d", "", "description")
	fs.StringVarP(&txAmount, "amount", "a", "", "amount, e.g. 12.50 or 12,50")
	fs.StringVarP(&txType, "type", "t", string(core.Expense), "income or expense")
	fs.StringVarP(&txCategory, "category", "c", "", "category value (see 'budgetctl categories')")
	fs.StringVar(&txDate, "date", "", "YYYY-MM-DD (default today)")
}

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a transaction",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *services.LedgerService) error {
			in := ledger.Input{
				Description: txDescription,
				Amount:      txAmount,
				Type:        txType,
				Category:    txCategory,
				Date:        txDate,
			}
			if !cmd.Flags().Changed("date") {
				in.Date = svc.Today().String()
			}
			tx, err := svc.Create(ctx, in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s\n", tx.ID)
			return nil
		})
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Change a transaction; omitted flags keep their current value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *services.LedgerService) error {
			current, err := svc.Get(args[0])
			if err != nil {
				return err
			}
			tx, err := svc.Update(ctx, current.ID, mergeInput(current, cmd.Flags()))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", tx.ID)
			return nil
		})
	},
}

// mergeInput starts from the stored transaction and overrides only the
// flags the user actually set.
func mergeInput(current core.Transaction, fs *pflag.FlagSet) ledger.Input {
	in := ledger.Input{
		Description: current.Description,
		Amount:      current.Amount.String(),
		Type:        current.Type.String(),
		Category:    current.Category,
		Date:        current.Date.String(),
	}
	override := func(flag string, dst *string) {
		if f := fs.Lookup(flag); f != nil && f.Changed {
			*dst = f.Value.String()
		}
	}
	override("desc", &in.Description)
	override("amount", &in.Amount)
	override("type", &in.Type)
	override("category", &in.Category)
	override("date", &in.Date)
	return in
}

var errDeleteDeclined = errors.New("delete cancelled")

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a transaction after confirmation",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withService(cmd, func(ctx context.Context, svc *services.LedgerService) error {
			tx, err := svc.Get(args[0])
			if err != nil {
				return err
			}
			if !deleteYes {
				ok, err := confirm(cmd.InOrStdin(), cmd.OutOrStdout(),
					fmt.Sprintf("Delete %q (%s %s on %s)?", tx.Description, tx.Type, tx.Amount.StringFixed(2), tx.Date))
				if err != nil {
					return err
				}
				if !ok {
					return errDeleteDeclined
				}
			}
			if err := svc.Delete(ctx, tx.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", tx.ID)
			return nil
		})
	},
}

// confirm asks a yes/no question. Anything but y or yes declines, including
// end of input.
func confirm(in io.Reader, out io.Writer, question string) (bool, error) {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List transactions, newest date first",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		typeFilter, err := filter.ParseTypeFilter(listType)
		if err != nil {
			return err
		}
		categoryFilter := filter.ParseCategoryFilter(listCategory)

		return withService(cmd, func(ctx context.Context, svc *services.LedgerService) error {
			return printTransactions(cmd.OutOrStdout(), svc.List(typeFilter, categoryFilter))
		})
	},
}

func printTransactions(out io.Writer, txs []core.Transaction) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(out, "No transactions.")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tTYPE\tCATEGORY\tAMOUNT\tDESCRIPTION\tID")
	for _, tx := range txs {
		sign := "-"
		if tx.Type == core.Income {
			sign = "+"
		}
		cat := core.ResolveCategory(tx.Type, tx.Category)
		fmt.Fprintf(w, "%s\t%s\t%s\t%s%s\t%s\t%s\n",
			tx.Date, tx.Type, cat.Label, sign, tx.Amount.StringFixed(2), tx.Description, tx.ID)
	}
	return w.Flush()
}

func init() {
	addTransactionFlags(addCmd.Flags())
	_ = addCmd.MarkFlagRequired("desc")
	_ = addCmd.MarkFlagRequired("amount")
	_ = addCmd.MarkFlagRequired("category")

	addTransactionFlags(editCmd.Flags())

	listCmd.Flags().StringVarP(&listType, "type", "t", filter.All, "all, income or expense")
	listCmd.Flags().StringVarP(&listCategory, "category", "c", filter.All, "category value or all")
	_ = listCmd.RegisterFlagCompletionFunc("category", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return append([]string{filter.All}, core.AllCategoryValues()...), cobra.ShellCompDirectiveNoFileComp
	})

	deleteCmd.Flags().BoolVarP(&deleteYes, "yes", "y", false, "do not ask for confirmation")
}
