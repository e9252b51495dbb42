package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/envelope-zero/tracker/internal/models"
	"github.com/envelope-zero/tracker/internal/state"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

const dateLayout = "2006-01-02"

func newAddWalletCmd(f *flags) *cobra.Command {
	var (
		name        string
		walletType  string
		creditLimit string
		billingDay  int
	)

	cmd := &cobra.Command{
		Use:   "add-wallet",
		Short: "Add a wallet",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := models.Wallet{
				Name: name,
				Type: models.WalletType(walletType),
			}

			if creditLimit != "" {
				limit, err := decimal.NewFromString(creditLimit)
				if err != nil {
					return fmt.Errorf("invalid credit limit %q: %w", creditLimit, err)
				}
				w.CreditLimit = limit
			}
			if cmd.Flags().Changed("billing-day") {
				w.BillingDate = &billingDay
			}

			s, err := open(cmd.Context(), f)
			if err != nil {
				return err
			}
			defer s.close()

			created, err := s.co.Gateway().AddWallet(cmd.Context(), w)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name of the wallet")
	cmd.Flags().StringVar(&walletType, "type", string(models.WalletTypeCash), "cash or credit")
	cmd.Flags().StringVar(&creditLimit, "credit-limit", "", "credit limit of a credit wallet")
	cmd.Flags().IntVar(&billingDay, "billing-day", 0, "day of month the bill of a credit wallet is issued")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

func newAddTransactionCmd(f *flags) *cobra.Command {
	var (
		amount   string
		category string
		wallet   string
		note     string
		date     string
		txType   string
	)

	cmd := &cobra.Command{
		Use:   "add-transaction",
		Short: "Book a transaction",
		Long: `Books a transaction against a wallet.

The wallet can be given by ID or by name. Negative amounts are expenses.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := decimal.NewFromString(amount)
			if err != nil {
				return fmt.Errorf("invalid amount %q: %w", amount, err)
			}

			day := time.Now().UTC().Truncate(24 * time.Hour)
			if date != "" {
				if day, err = time.Parse(dateLayout, date); err != nil {
					return fmt.Errorf("invalid date %q, use YYYY-MM-DD: %w", date, err)
				}
			}

			s, err := open(cmd.Context(), f)
			if err != nil {
				return err
			}
			defer s.close()

			walletID, err := resolveWallet(s.state(), wallet)
			if err != nil {
				return err
			}

			created, err := s.co.Gateway().AddTransaction(cmd.Context(), models.Transaction{
				Amount:   a,
				Category: category,
				WalletID: walletID,
				Date:     day,
				Note:     note,
				Type:     models.TransactionType(txType),
			})
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "signed amount")
	cmd.Flags().StringVar(&category, "category", "Other", "name of the category")
	cmd.Flags().StringVar(&wallet, "wallet", "", "ID or name of the wallet, optional if there is exactly one wallet")
	cmd.Flags().StringVar(&note, "note", "", "free text note")
	cmd.Flags().StringVar(&date, "date", "", "booking date as YYYY-MM-DD, defaults to today")
	cmd.Flags().StringVar(&txType, "type", "", "expense or income")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

// resolveWallet returns the ID of the wallet with the given ID or name. An
// empty reference resolves to the only wallet.
func resolveWallet(s state.State, ref string) (string, error) {
	if ref == "" {
		if len(s.Wallets) == 1 {
			return s.Wallets[0].ID, nil
		}
		return "", fmt.Errorf("%w: --wallet is required with %d wallets", models.ErrUnknownWallet, len(s.Wallets))
	}

	if w, ok := state.WalletByID(s, ref); ok {
		return w.ID, nil
	}

	for _, w := range s.Wallets {
		if strings.EqualFold(w.Name, ref) {
			return w.ID, nil
		}
	}

	return "", fmt.Errorf("%w: %s", models.ErrUnknownWallet, ref)
}
