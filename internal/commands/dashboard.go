package commands

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/tally-dev/tally/internal/dashboard"
)

func newDashboardCommand(dir *string) *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Show the year's monthly spending and income",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := openEnv(*dir)
			if err != nil {
				return err
			}
			defer e.Close()

			now := nowFunc()
			out := cmd.OutOrStdout()
			year := e.profile.Year(now)
			fmt.Fprintf(out, "%s %d\n\n", e.profile.Name, year)

			debitsTitle, err := e.dashboard.DebitsTitle(e.profile)
			if err != nil {
				return err
			}
			debits, err := e.dashboard.MonthlyTotals(e.profile, true, now)
			if err != nil {
				return err
			}
			printMonthly(out, debitsTitle, year, now, debits)

			creditsTitle, err := e.dashboard.CreditsTitle(e.profile)
			if err != nil {
				return err
			}
			credits, err := e.dashboard.MonthlyTotals(e.profile, false, now)
			if err != nil {
				return err
			}
			printMonthly(out, creditsTitle, year, now, credits)

			net, err := e.dashboard.MonthlyDebitsVsCredits(e.profile, now)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, "Net")
			for _, mt := range net {
				fmt.Fprintf(out, "  %-10s %12s\n", time.Month(mt.Month), mt.Total.StringFixed(2))
			}
			return nil
		},
	}
}

func printMonthly(out io.Writer, title string, year int, now time.Time, totals map[int][]dashboard.Entry) {
	fmt.Fprintln(out, title)
	for _, month := range dashboard.Months(year, now) {
		entries := totals[month]
		if len(entries) == 0 {
			continue
		}
		fmt.Fprintf(out, "  %s\n", time.Month(month))
		for _, entry := range entries {
			fmt.Fprintf(out, "    %-28s %12s\n", entry.Label, entry.Balance.StringFixed(2))
		}
	}
	fmt.Fprintln(out)
}
