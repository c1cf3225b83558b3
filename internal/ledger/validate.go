package ledger

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// ValidationError describes a single invariant violation.
type ValidationError struct {
	Invariant   int
	Description string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invariant %d: %s", e.Invariant, e.Description)
}

// ValidationErrors joins violations into a single error.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = ve.Error()
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// AccountLookup resolves account IDs during validation.
type AccountLookup interface {
	GetAccount(id int64) (model.Account, error)
}

// Validate enforces the transaction invariants: a positive amount with at
// most 2 decimal places, two distinct existing accounts, and neither side
// a category (categories aggregate, they never hold transactions).
func Validate(trx model.Transaction, accounts AccountLookup) ([]ValidationError, error) {
	var verrs []ValidationError

	if !trx.Amount.IsPositive() {
		verrs = append(verrs, ValidationError{
			Invariant:   1,
			Description: fmt.Sprintf("amount %s must be positive", trx.Amount),
		})
	}

	two := decimal.NewFromInt(100)
	if !trx.Amount.Mul(two).Equal(trx.Amount.Mul(two).Floor()) {
		verrs = append(verrs, ValidationError{
			Invariant:   2,
			Description: fmt.Sprintf("amount %s has more than 2 decimal places", trx.Amount),
		})
	}

	if trx.DebitAccountID == trx.CreditAccountID {
		verrs = append(verrs, ValidationError{
			Invariant:   3,
			Description: fmt.Sprintf("debit and credit sides are both account %d", trx.DebitAccountID),
		})
	}

	if trx.Date.IsZero() {
		verrs = append(verrs, ValidationError{
			Invariant:   4,
			Description: "date is not set",
		})
	}

	for _, side := range []struct {
		name string
		id   int64
	}{
		{"debit", trx.DebitAccountID},
		{"credit", trx.CreditAccountID},
	} {
		acct, err := accounts.GetAccount(side.id)
		if errors.Is(err, store.ErrNotFound) {
			verrs = append(verrs, ValidationError{
				Invariant:   5,
				Description: fmt.Sprintf("unknown %s account %d", side.name, side.id),
			})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("looking up %s account %d: %w", side.name, side.id, err)
		}
		if acct.IsCategory {
			verrs = append(verrs, ValidationError{
				Invariant:   6,
				Description: fmt.Sprintf("%s account %q is a category", side.name, acct.Name),
			})
		}
	}

	return verrs, nil
}

// ValidateAccount enforces the account tree invariant: a parent, when
// set, must exist and be a category.
func ValidateAccount(acct model.Account, accounts AccountLookup) ([]ValidationError, error) {
	if acct.ParentID == 0 {
		return nil, nil
	}
	parent, err := accounts.GetAccount(acct.ParentID)
	if errors.Is(err, store.ErrNotFound) {
		return []ValidationError{{
			Invariant:   7,
			Description: fmt.Sprintf("unknown parent account %d", acct.ParentID),
		}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up parent account %d: %w", acct.ParentID, err)
	}
	if !parent.IsCategory {
		return []ValidationError{{
			Invariant:   8,
			Description: fmt.Sprintf("parent account %q is not a category", parent.Name),
		}}, nil
	}
	return nil, nil
}
