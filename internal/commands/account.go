package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
)

func newTypeCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "type",
		Short: "Manage account types",
	}
	cmd.AddCommand(newTypeAddCommand(dir))
	cmd.AddCommand(newTypeListCommand(dir))
	return cmd
}

func newTypeAddCommand(dir *string) *cobra.Command {
	var side string
	var yearly bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dir)
			if err != nil {
				return err
			}
			defer e.Close()

			defaultType := model.DebitCredit(strings.ToUpper(side))
			if defaultType != model.Debit && defaultType != model.Credit {
				return fmt.Errorf("side must be %s or %s", model.Debit, model.Credit)
			}

			_, err = e.store.CreateAccountType(model.AccountType{
				ProfileID:   e.profile.ID,
				Name:        args[0],
				DefaultType: defaultType,
				Yearly:      yearly,
			})
			if err != nil {
				return fmt.Errorf("creating account type: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added account type %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&side, "side", string(model.Debit), "default side (DEBIT or CREDIT)")
	cmd.Flags().BoolVar(&yearly, "yearly", false, "include in yearly dashboards")
	return cmd
}

func newTypeListCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List account types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dir)
			if err != nil {
				return err
			}
			defer e.Close()

			types, err := e.store.AccountTypes(e.profile.ID)
			if err != nil {
				return fmt.Errorf("listing account types: %w", err)
			}
			for _, t := range types {
				yearly := ""
				if t.Yearly {
					yearly = " yearly"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-20s %s%s\n", t.Name, t.DefaultType, yearly)
			}
			return nil
		},
	}
}

func newAccountCommand(dir *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "account",
		Short: "Manage accounts",
	}
	cmd.AddCommand(newAccountAddCommand(dir))
	cmd.AddCommand(newAccountListCommand(dir))
	return cmd
}

func newAccountAddCommand(dir *string) *cobra.Command {
	var typeName, parentName, description string
	var category bool

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add an account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dir)
			if err != nil {
				return err
			}
			defer e.Close()

			typ, err := e.store.GetAccountTypeByName(e.profile.ID, typeName)
			if err != nil {
				return fmt.Errorf("looking up account type %q: %w", typeName, err)
			}

			acct := model.Account{
				ProfileID:     e.profile.ID,
				AccountTypeID: typ.ID,
				Name:          args[0],
				Description:   description,
				IsCategory:    category,
			}
			if parentName != "" {
				parent, err := e.store.GetAccountByName(e.profile.ID, parentName)
				if err != nil {
					return fmt.Errorf("looking up parent %q: %w", parentName, err)
				}
				acct.ParentID = parent.ID
			}

			verrs, err := ledger.ValidateAccount(acct, e.store)
			if err != nil {
				return err
			}
			if len(verrs) > 0 {
				return ledger.ValidationErrors(verrs)
			}

			if _, err := e.store.CreateAccount(acct); err != nil {
				return fmt.Errorf("creating account: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added account %q\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&typeName, "type", "", "account type name (required)")
	_ = cmd.MarkFlagRequired("type")
	cmd.Flags().StringVar(&parentName, "parent", "", "parent category account")
	cmd.Flags().StringVar(&description, "description", "", "account description")
	cmd.Flags().BoolVar(&category, "category", false, "create a category (aggregates subaccounts, holds no transactions)")
	return cmd
}

func newAccountListCommand(dir *string) *cobra.Command {
	var year int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with balances",
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

			accounts, err := e.store.Accounts(e.profile.ID)
			if err != nil {
				return fmt.Errorf("listing accounts: %w", err)
			}
			for _, acct := range accounts {
				balance, err := e.ledger.Balance(acct, year)
				if err != nil {
					return err
				}
				marker := ""
				if acct.IsCategory {
					marker = " [category]"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-30s %12s%s\n", acct.Name, balance.StringFixed(2), marker)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&year, "year", 0, "year to balance (default: profile's active year)")
	return cmd
}
