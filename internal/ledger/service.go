// Package ledger computes account balances and running-balance histories
// and owns every transaction mutation, so cache invalidation can never be
// skipped when a write succeeds.
package ledger

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/cache"
	"github.com/tally-dev/tally/internal/keys"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Entry is a transaction annotated from one account's perspective: a
// signed amount (negative when the account is on the credit side) and the
// running balance after applying it in chronological order.
type Entry struct {
	model.Transaction

	Signed  decimal.Decimal
	Balance decimal.Decimal
}

// Service provides balance computation and transaction mutations over a
// store and a write-through cache. A nil cache degrades to recomputing
// every balance.
type Service struct {
	store *store.Store
	cache cache.Cache
	log   zerolog.Logger
}

// NewService creates a ledger Service.
func NewService(st *store.Store, c cache.Cache, log zerolog.Logger) *Service {
	return &Service{store: st, cache: c, log: log}
}

// Balance returns the account's balance for the given year. Category
// accounts aggregate their descendants' leaf balances; the walk is an
// explicit stack with a visited set so a cyclic parent chain terminates,
// contributing zero for the revisited account.
func (s *Service) Balance(acct model.Account, year int) (decimal.Decimal, error) {
	key := keys.Account(acct.ID)
	if v, ok := s.cacheGet(key); ok {
		balance, err := decimal.NewFromString(v)
		if err == nil {
			return balance, nil
		}
		s.log.Warn().Str("key", key).Str("value", v).Msg("discarding unparsable cached balance")
	}

	balance := decimal.Zero
	if acct.IsCategory {
		visited := map[int64]bool{acct.ID: true}
		stack := []model.Account{acct}
		for len(stack) > 0 {
			cur := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			children, err := s.store.Children(cur.ID)
			if err != nil {
				return decimal.Zero, fmt.Errorf("listing subaccounts of %d: %w", cur.ID, err)
			}
			for _, child := range children {
				if visited[child.ID] {
					s.log.Warn().
						Int64("account", child.ID).
						Int64("parent", cur.ID).
						Msg("cycle in account parent chain, skipping")
					continue
				}
				visited[child.ID] = true
				if child.IsCategory {
					stack = append(stack, child)
					continue
				}
				leaf, err := s.leafBalance(child, year)
				if err != nil {
					return decimal.Zero, err
				}
				balance = balance.Add(leaf)
			}
		}
	} else {
		var err error
		balance, err = s.leafBalance(acct, year)
		if err != nil {
			return decimal.Zero, err
		}
	}

	s.cacheSet(key, balance.String())
	return balance, nil
}

// leafBalance is the final running total of the account's year, zero when
// it has no transactions.
func (s *Service) leafBalance(acct model.Account, year int) (decimal.Decimal, error) {
	entries, err := s.Entries(acct, year, 0)
	if err != nil {
		return decimal.Zero, err
	}
	if len(entries) == 0 {
		return decimal.Zero, nil
	}
	// Entries are most-recent-first, so the head carries the final total.
	return entries[0].Balance, nil
}

// Entries returns the account's transactions for the year (optionally one
// calendar month, month 0 = all), annotated with signed amounts and a
// running balance accumulated in chronological order, then reversed so the
// most recent transaction comes first.
func (s *Service) Entries(acct model.Account, year, month int) ([]Entry, error) {
	trxs, err := s.store.AccountTransactions(acct.ID, year, month)
	if err != nil {
		return nil, fmt.Errorf("listing transactions for account %d: %w", acct.ID, err)
	}

	entries := make([]Entry, 0, len(trxs))
	running := decimal.Zero
	for _, trx := range trxs {
		signed := trx.Amount
		if trx.CreditAccountID == acct.ID {
			signed = signed.Neg()
		}
		running = running.Add(signed)
		entries = append(entries, Entry{Transaction: trx, Signed: signed, Balance: running})
	}

	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}

// AddTransaction validates and persists a new transaction, then
// invalidates the cached balances of both accounts and the profile's
// dashboard aggregates.
func (s *Service) AddTransaction(trx *model.Transaction) error {
	if err := s.validate(*trx); err != nil {
		return err
	}
	if err := s.store.CreateTransaction(trx); err != nil {
		return err
	}
	return s.invalidate(trx.DebitAccountID, trx.CreditAccountID)
}

// UpdateTransaction rewrites an existing transaction and invalidates both
// the old and new account pairs.
func (s *Service) UpdateTransaction(trx model.Transaction) error {
	if err := s.validate(trx); err != nil {
		return err
	}
	old, err := s.store.GetTransaction(trx.ID)
	if err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(trx); err != nil {
		return err
	}
	return s.invalidate(trx.DebitAccountID, trx.CreditAccountID,
		old.DebitAccountID, old.CreditAccountID)
}

// DeleteTransaction removes a transaction and invalidates its accounts.
func (s *Service) DeleteTransaction(id int64) error {
	old, err := s.store.DeleteTransaction(id)
	if err != nil {
		return err
	}
	return s.invalidate(old.DebitAccountID, old.CreditAccountID)
}

// SetYear changes the profile's active fiscal year and flushes the cached
// balance of every yearly account, since balances are year-scoped but keyed
// on account ID alone.
func (s *Service) SetYear(p *model.Profile, year int) error {
	if err := s.store.UpdateProfileYear(p.ID, year); err != nil {
		return err
	}
	oldYear := p.CurrentYear
	p.CurrentYear = year

	accts, err := s.store.YearlyAccounts(p.ID)
	if err != nil {
		return fmt.Errorf("listing yearly accounts: %w", err)
	}
	stale := make([]string, 0, len(accts)+6)
	for _, a := range accts {
		stale = append(stale, keys.Account(a.ID))
	}
	stale = append(stale, keys.Dashboard(p.ID, year)...)
	if oldYear != 0 && oldYear != year {
		stale = append(stale, keys.Dashboard(p.ID, oldYear)...)
	}
	s.cacheDeleteMany(stale)
	return nil
}

// validate wraps Validate with store-backed account lookup and joins the
// violations into one error.
func (s *Service) validate(trx model.Transaction) error {
	verrs, err := Validate(trx, s.store)
	if err != nil {
		return err
	}
	if len(verrs) == 0 {
		return nil
	}
	return ValidationErrors(verrs)
}

// invalidate drops the balance entries for the given accounts and the
// dashboard aggregates of every profile they belong to, for that profile's
// active year.
func (s *Service) invalidate(accountIDs ...int64) error {
	stale := make([]string, 0, len(accountIDs)*4)
	seenAcct := make(map[int64]bool)
	seenProfile := make(map[int64]bool)
	for _, id := range accountIDs {
		if seenAcct[id] {
			continue
		}
		seenAcct[id] = true
		stale = append(stale, keys.Account(id))

		acct, err := s.store.GetAccount(id)
		if err != nil {
			return fmt.Errorf("loading account %d for invalidation: %w", id, err)
		}
		if seenProfile[acct.ProfileID] {
			continue
		}
		seenProfile[acct.ProfileID] = true
		p, err := s.store.GetProfile(acct.ProfileID)
		if err != nil {
			return fmt.Errorf("loading profile %d for invalidation: %w", acct.ProfileID, err)
		}
		stale = append(stale, keys.Dashboard(p.ID, p.Year(nowFunc()))...)
	}
	s.cacheDeleteMany(stale)
	return nil
}

func (s *Service) cacheGet(key string) (string, bool) {
	if s.cache == nil {
		return "", false
	}
	return s.cache.Get(key)
}

func (s *Service) cacheSet(key, value string) {
	if s.cache == nil {
		return
	}
	s.cache.Set(key, value)
}

func (s *Service) cacheDeleteMany(stale []string) {
	if s.cache == nil || len(stale) == 0 {
		return
	}
	s.cache.DeleteMany(stale)
}
