package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/auditlog"
	"github.com/tally-dev/tally/internal/importer"
	"github.com/tally-dev/tally/internal/pdftext"
)

func newImportCommand(dir *string) *cobra.Command {
	var accountName string
	var year int
	var commit bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Import a bank statement as candidate transactions",
		Long: `Parses a CSV or PDF bank statement against an account, infers the
offsetting account for each row from transaction history, and flags
exact duplicates. Without --commit nothing is written; review the
candidate list, then re-run with --commit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dir)
			if err != nil {
				return err
			}
			defer e.Close()

			acct, err := e.store.GetAccountByName(e.profile.ID, accountName)
			if err != nil {
				return fmt.Errorf("looking up account %q: %w", accountName, err)
			}

			im := importer.New(e.store, pdftext.New(), e.log)
			batch, err := im.Parse(args[0], acct.ID, year)
			if err != nil {
				return fmt.Errorf("unable to import file: %w", err)
			}

			names := map[int64]string{0: "?"}
			accounts, err := e.store.Accounts(e.profile.ID)
			if err != nil {
				return err
			}
			for _, a := range accounts {
				names[a.ID] = a.Name
			}

			out := cmd.OutOrStdout()
			for _, c := range batch.Candidates {
				marker := ""
				if c.Duplicate {
					marker = " [duplicate]"
				}
				fmt.Fprintf(out, "%s  %-40s %10s  %s -> %s%s\n",
					c.Date.Format("2006-01-02"), c.Summary, c.Amount.StringFixed(2),
					names[c.CreditAccountID], names[c.DebitAccountID], marker)
			}

			if !commit {
				fmt.Fprintf(out, "Parsed %d candidates from %s (%s). Re-run with --commit to record them.\n",
					len(batch.Candidates), batch.Filename, batch.Layout)
				return nil
			}

			committed, err := im.Commit(batch, e.ledger)
			if err != nil {
				return err
			}
			if err := auditlog.Append(*dir, []auditlog.Entry{{
				Timestamp: time.Now().UTC(),
				BatchID:   batch.ID,
				Filename:  batch.Filename,
				Layout:    string(batch.Layout),
				Parsed:    len(batch.Candidates),
				Committed: committed,
				Skipped:   len(batch.Candidates) - committed,
			}}); err != nil {
				return fmt.Errorf("recording import: %w", err)
			}
			fmt.Fprintf(out, "Committed %d of %d candidates from %s\n",
				committed, len(batch.Candidates), batch.Filename)
			return nil
		},
	}

	cmd.Flags().StringVar(&accountName, "account", "", "account the statement belongs to (required)")
	_ = cmd.MarkFlagRequired("account")
	cmd.Flags().IntVar(&year, "year", 0, "year for PDF statements without one (default: current year)")
	cmd.Flags().BoolVar(&commit, "commit", false, "record the non-duplicate candidates")
	return cmd
}
