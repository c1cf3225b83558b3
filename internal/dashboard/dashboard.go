// Package dashboard aggregates yearly-flagged accounts into month-by-month
// totals for charting. Results are cached per (profile, year, kind) and
// invalidated by the ledger whenever a transaction mutates.
package dashboard

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/cache"
	"github.com/tally-dev/tally/internal/keys"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Entry is one account's signed total within a month.
type Entry struct {
	Label   string          `json:"label"`
	Balance decimal.Decimal `json:"balance"`
}

// MonthTotal is the net of all debit and credit entries for one month.
type MonthTotal struct {
	Month int             `json:"month"`
	Total decimal.Decimal `json:"total"`
}

// Service computes dashboard aggregates from the ledger.
type Service struct {
	store  *store.Store
	cache  cache.Cache
	ledger *ledger.Service
}

// NewService creates a dashboard Service.
func NewService(st *store.Store, c cache.Cache, l *ledger.Service) *Service {
	return &Service{store: st, cache: c, ledger: l}
}

// Months returns the calendar months to aggregate for a year: none for a
// future year, 1..now's month for the current year, otherwise 1..12.
func Months(year int, now time.Time) []int {
	current := now.Year()
	if year > current {
		return nil
	}
	count := 12
	if year == current {
		count = int(now.Month())
	}
	months := make([]int, 0, count)
	for i := 1; i <= count; i++ {
		months = append(months, i)
	}
	return months
}

// MonthlyTotals returns, per month of the profile's active year, the signed
// totals of every yearly account on the requested side that had activity in
// that month, each month's entries sorted ascending by balance. Months with
// no qualifying entries are absent from the map.
func (s *Service) MonthlyTotals(p model.Profile, debits bool, now time.Time) (map[int][]Entry, error) {
	side := model.Debit
	if !debits {
		side = model.Credit
	}
	year := p.Year(now)
	key := keys.MonthlyTotals(p.ID, year, side)

	if cached, ok := s.cacheGet(key); ok {
		var totals map[int][]Entry
		if err := json.Unmarshal([]byte(cached), &totals); err == nil {
			return totals, nil
		}
	}

	accounts, err := s.store.AccountsBySide(p.ID, side)
	if err != nil {
		return nil, fmt.Errorf("listing %s accounts: %w", strings.ToLower(string(side)), err)
	}

	totals := make(map[int][]Entry)
	for _, month := range Months(year, now) {
		for _, acct := range accounts {
			entries, err := s.ledger.Entries(acct, year, month)
			if err != nil {
				return nil, err
			}
			if len(entries) == 0 {
				continue
			}
			// Entries are most-recent-first; the head's running balance
			// is the account's total for the month.
			totals[month] = append(totals[month], Entry{
				Label:   acct.Name,
				Balance: entries[0].Balance,
			})
		}
		if entries := totals[month]; len(entries) > 1 {
			sort.SliceStable(entries, func(i, j int) bool {
				return entries[i].Balance.LessThan(entries[j].Balance)
			})
		}
	}

	s.cacheSetJSON(key, totals)
	return totals, nil
}

// DebitsTitle joins the names of the profile's yearly DEBIT account types
// with "/", in name order.
func (s *Service) DebitsTitle(p model.Profile) (string, error) {
	return s.title(p, model.Debit)
}

// CreditsTitle joins the names of the profile's yearly CREDIT account
// types with "/", in name order.
func (s *Service) CreditsTitle(p model.Profile) (string, error) {
	return s.title(p, model.Credit)
}

func (s *Service) title(p model.Profile, side model.DebitCredit) (string, error) {
	types, err := s.store.YearlyAccountTypes(p.ID, side)
	if err != nil {
		return "", fmt.Errorf("listing account types: %w", err)
	}
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = t.Name
	}
	return strings.Join(names, "/"), nil
}

// MonthlyDebitsVsCredits returns, for each month in the active range, the
// sum of debit-side and credit-side totals. Credit totals are already
// negative under the signed convention, so each entry is effectively
// debits minus credits. Future years yield nil; in-range months with no
// activity yield a zero total.
func (s *Service) MonthlyDebitsVsCredits(p model.Profile, now time.Time) ([]MonthTotal, error) {
	year := p.Year(now)
	key := keys.DebitsVsCredits(p.ID, year)

	if cached, ok := s.cacheGet(key); ok {
		var totals []MonthTotal
		if err := json.Unmarshal([]byte(cached), &totals); err == nil {
			return totals, nil
		}
	}

	debits, err := s.MonthlyTotals(p, true, now)
	if err != nil {
		return nil, err
	}
	credits, err := s.MonthlyTotals(p, false, now)
	if err != nil {
		return nil, err
	}

	var totals []MonthTotal
	for _, month := range Months(year, now) {
		total := decimal.Zero
		for _, e := range debits[month] {
			total = total.Add(e.Balance)
		}
		for _, e := range credits[month] {
			total = total.Add(e.Balance)
		}
		totals = append(totals, MonthTotal{Month: month, Total: total})
	}

	s.cacheSetJSON(key, totals)
	return totals, nil
}

func (s *Service) cacheGet(key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	return s.cache.Get(key)
}

func (s *Service) cacheSetJSON(key string, v any) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.cache.Set(key, string(data))
}
