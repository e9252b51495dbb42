package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/state"
	"github.com/envelope-zero/tracker/internal/types"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var kinds = []string{"transactions", "wallets", "categories", "budgets", "totals"}

func newListCmd(f *flags) *cobra.Command {
	var (
		search    string
		category  string
		wallet    string
		sortBy    string
		ascending bool
		asJSON    bool
		month     types.Month
	)

	cmd := &cobra.Command{
		Use:       "list [transactions|wallets|categories|budgets|totals]",
		Short:     "List the synchronized records",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: kinds,
		RunE: func(cmd *cobra.Command, args []string) error {
			kind := "transactions"
			if len(args) == 1 {
				kind = args[0]
			}

			s, err := open(cmd.Context(), f)
			if err != nil {
				return err
			}
			defer s.close()

			var dates state.DateRange
			if !month.IsZero() {
				dates.From, dates.Until = month.Range()
			}

			st := s.co.Store().Dispatch(
				state.SetDateRange{DateRange: dates},
				state.SetSearch{Search: search},
				state.SetFilter{Filter: state.Filter{Category: category, WalletID: wallet}},
				state.SetSort{Sort: state.Sort{Field: state.SortField(sortBy), Ascending: ascending}},
			)

			var out any
			switch kind {
			case "transactions":
				out = state.VisibleTransactions(st)
			case "wallets":
				out = st.Wallets
			case "categories":
				out = st.Categories
			case "budgets":
				out = st.Budgets
			case "totals":
				out = state.TotalsByCategory(st)
			}

			w := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(w)
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}

			return printTable(w, newFormatter(st.Profile), out)
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "search term for note and category, * matches anything")
	cmd.Flags().StringVar(&category, "category", "", "only transactions of this category")
	cmd.Flags().StringVar(&wallet, "wallet", "", "only transactions of this wallet ID")
	cmd.Flags().StringVar(&sortBy, "sort", string(state.SortByDate), "sort transactions by date or amount")
	cmd.Flags().BoolVar(&ascending, "asc", false, "sort ascending")
	cmd.Flags().Var(&month, "month", "only transactions of this month, as YYYY-MM")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")

	return cmd
}

// formatter prints amounts in the currency of the profile.
type formatter struct {
	unit    currency.Unit
	printer *message.Printer
}

func newFormatter(p *models.UserProfile) formatter {
	unit := currency.USD
	if p != nil {
		if u, err := p.CurrencyUnit(); err == nil {
			unit = u
		}
	}

	return formatter{unit: unit, printer: message.NewPrinter(language.English)}
}

func (f formatter) amount(d decimal.Decimal) string {
	v, _ := d.Float64()
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(v)))
}

func printTable(out io.Writer, f formatter, v any) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	switch v := v.(type) {
	case []models.Transaction:
		fmt.Fprintln(w, "DATE\tAMOUNT\tCATEGORY\tNOTE\tID")
		for _, t := range v {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.Date.Format(dateLayout), f.amount(t.Amount), t.Category, t.Note, t.ID)
		}
	case []models.Wallet:
		fmt.Fprintln(w, "NAME\tTYPE\tBALANCE\tID")
		for _, wallet := range v {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", wallet.Name, wallet.Type, f.amount(wallet.Balance), wallet.ID)
		}
	case []models.Category:
		fmt.Fprintln(w, "NAME\tTYPE\tDEFAULT")
		for _, c := range v {
			fmt.Fprintf(w, "%s\t%s\t%t\n", c.Name, c.Type, models.IsDefaultCategory(c.Name))
		}
	case models.Budgets:
		printAmounts(w, f, "BUDGET", v)
	case map[string]decimal.Decimal:
		printAmounts(w, f, "TOTAL", v)
	}

	return w.Flush()
}

func printAmounts(w io.Writer, f formatter, title string, amounts map[string]decimal.Decimal) {
	names := make([]string, 0, len(amounts))
	for name := range amounts {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintf(w, "CATEGORY\t%s\n", title)
	for _, name := range names {
		fmt.Fprintf(w, "%s\t%s\n", name, f.amount(amounts[name]))
	}
}
