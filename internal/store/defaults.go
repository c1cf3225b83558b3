package store

import (
	"fmt"

	"github.com/tally-dev/tally/internal/model"
)

// defaultTypes is the starter set of account types seeded for a fresh
// profile. Expenses and Income feed the yearly dashboard; Bank does not.
var defaultTypes = []model.AccountType{
	{Name: "Expenses", DefaultType: model.Debit, Yearly: true},
	{Name: "Income", DefaultType: model.Credit, Yearly: true},
	{Name: "Bank", DefaultType: model.Debit, Yearly: false},
}

// SeedDefaults creates the default account types for a new profile.
func (s *Store) SeedDefaults(profileID int64) error {
	for _, t := range defaultTypes {
		t.ProfileID = profileID
		if _, err := s.CreateAccountType(t); err != nil {
			return fmt.Errorf("seeding account type %s: %w", t.Name, err)
		}
	}
	return nil
}
