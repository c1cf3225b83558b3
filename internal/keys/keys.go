// Package keys builds the cache key namespace shared by the balance engine
// and the dashboard. Account keys deliberately omit the year: a year change
// bulk-invalidates the yearly set instead of forking the keyspace.
package keys

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tally-dev/tally/internal/model"
)

// Account returns the balance cache key for an account, like "account-42".
func Account(accountID int64) string {
	return fmt.Sprintf("account-%d", accountID)
}

// ParseAccount extracts the account ID from a balance cache key.
func ParseAccount(key string) (int64, error) {
	rest, ok := strings.CutPrefix(key, "account-")
	if !ok {
		return 0, fmt.Errorf("invalid account key format: %q", key)
	}
	id, err := strconv.ParseInt(rest, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid account ID in key %q: %w", key, err)
	}
	return id, nil
}

// MonthlyTotals returns the dashboard cache key for one side's monthly
// totals, like "7-2025-monthly-totals-debits".
func MonthlyTotals(profileID int64, year int, side model.DebitCredit) string {
	kind := "debits"
	if side == model.Credit {
		kind = "credits"
	}
	return fmt.Sprintf("%d-%d-monthly-totals-%s", profileID, year, kind)
}

// DebitsVsCredits returns the cache key for the net monthly comparison.
func DebitsVsCredits(profileID int64, year int) string {
	return fmt.Sprintf("%d-%d-debits-vs-credits", profileID, year)
}

// Dashboard returns every dashboard-level key for a profile and year.
// Transaction mutations invalidate all of them at once.
func Dashboard(profileID int64, year int) []string {
	return []string{
		MonthlyTotals(profileID, year, model.Debit),
		MonthlyTotals(profileID, year, model.Credit),
		DebitsVsCredits(profileID, year),
	}
}
