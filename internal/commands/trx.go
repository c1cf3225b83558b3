package commands

import (
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/export"
	"github.com/tally-dev/tally/internal/model"
)

func newAddCommand(dir *string) *cobra.Command {
	var debitName, creditName, amountStr, summary, description, dateStr string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a transaction",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dir)
			if err != nil {
				return err
			}
			defer e.Close()

			debit, err := e.store.GetAccountByName(e.profile.ID, debitName)
			if err != nil {
				return fmt.Errorf("looking up debit account %q: %w", debitName, err)
			}
			credit, err := e.store.GetAccountByName(e.profile.ID, creditName)
			if err != nil {
				return fmt.Errorf("looking up credit account %q: %w", creditName, err)
			}
			amount, err := decimal.NewFromString(amountStr)
			if err != nil {
				return fmt.Errorf("parsing amount %q: %w", amountStr, err)
			}

			now := nowFunc()
			date := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
			if dateStr != "" {
				date, err = time.Parse(model.DateFormat, dateStr)
				if err != nil {
					return fmt.Errorf("parsing date %q: %w", dateStr, err)
				}
			}

			trx := model.Transaction{
				DebitAccountID:  debit.ID,
				CreditAccountID: credit.ID,
				Amount:          amount,
				Summary:         summary,
				Description:     description,
				Date:            date,
			}
			if err := e.ledger.AddTransaction(&trx); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Recorded transaction %d: %s %s -> %s\n",
				trx.ID, amount.StringFixed(2), creditName, debitName)
			return nil
		},
	}

	cmd.Flags().StringVar(&debitName, "debit", "", "account debited (required)")
	cmd.Flags().StringVar(&creditName, "credit", "", "account credited (required)")
	cmd.Flags().StringVar(&amountStr, "amount", "", "amount (required)")
	cmd.Flags().StringVar(&summary, "summary", "", "summary line (required)")
	cmd.Flags().StringVar(&description, "description", "", "longer description")
	cmd.Flags().StringVar(&dateStr, "date", "", "date as YYYY-MM-DD (default: today)")
	_ = cmd.MarkFlagRequired("debit")
	_ = cmd.MarkFlagRequired("credit")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("summary")

	return cmd
}

func newBalanceCommand(dir *string) *cobra.Command {
	var year, month int

	cmd := &cobra.Command{
		Use:   "balance <account>",
		Short: "Show an account's balance and recent activity",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dir)
			if err != nil {
				return err
			}
			defer e.Close()

			acct, err := e.store.GetAccountByName(e.profile.ID, args[0])
			if err != nil {
				return fmt.Errorf("looking up account %q: %w", args[0], err)
			}
			if year == 0 {
				year = e.profile.Year(nowFunc())
			}

			balance, err := e.ledger.Balance(acct, year)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%d): %s\n", acct.Name, year, balance.StringFixed(2))

			if acct.IsCategory {
				return nil
			}
			entries, err := e.ledger.Entries(acct, year, month)
			if err != nil {
				return err
			}
			for _, entry := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-40s %12s %12s\n",
					entry.Date.Format(model.DateFormat), entry.Summary,
					entry.Signed.StringFixed(2), entry.Balance.StringFixed(2))
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year (default: profile's active year)")
	cmd.Flags().IntVar(&month, "month", 0, "restrict activity to one calendar month")
	return cmd
}

func newSetYearCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set-year <year>",
		Short: "Change the profile's active year",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var year int
			if _, err := fmt.Sscanf(args[0], "%d", &year); err != nil {
				return fmt.Errorf("parsing year %q: %w", args[0], err)
			}

			e, err := openEnv(*dir)
			if err != nil {
				return err
			}
			defer e.Close()

			if err := e.ledger.SetYear(&e.profile, year); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Active year for %q is now %d\n", e.profile.Name, year)
			return nil
		},
	}
}

func newExportCommand(dir *string) *cobra.Command {
	var year int
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export a year's transactions as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dir)
			if err != nil {
				return err
			}
			defer e.Close()

			if year == 0 {
				year = e.profile.Year(nowFunc())
			}

			w := cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("creating %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}
			return export.Year(w, e.store, e.profile.ID, year)
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to export (default: profile's active year)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	return cmd
}
