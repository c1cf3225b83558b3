package store

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/tally-dev/tally/internal/model"
)

// CreateAccountType inserts an account type and returns its ID.
func (s *Store) CreateAccountType(t model.AccountType) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO account_types (profile_id, name, default_type, yearly)
		VALUES (?, ?, ?, ?)
	`, t.ProfileID, t.Name, string(t.DefaultType), boolToInt(t.Yearly))
	if err != nil {
		return 0, fmt.Errorf("insert account type: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("account type id: %w", err)
	}
	return id, nil
}

// AccountTypes returns a profile's account types ordered by name.
func (s *Store) AccountTypes(profileID int64) ([]model.AccountType, error) {
	rows, err := s.db.Query(`
		SELECT id, profile_id, name, default_type, yearly
		FROM account_types WHERE profile_id = ? ORDER BY name
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query account types: %w", err)
	}
	defer rows.Close()
	return scanAccountTypes(rows)
}

// YearlyAccountTypes returns a profile's yearly account types of one side,
// ordered by name. These drive the dashboard titles and aggregation.
func (s *Store) YearlyAccountTypes(profileID int64, side model.DebitCredit) ([]model.AccountType, error) {
	rows, err := s.db.Query(`
		SELECT id, profile_id, name, default_type, yearly
		FROM account_types
		WHERE profile_id = ? AND yearly = 1 AND default_type = ?
		ORDER BY name
	`, profileID, string(side))
	if err != nil {
		return nil, fmt.Errorf("query yearly account types: %w", err)
	}
	defer rows.Close()
	return scanAccountTypes(rows)
}

// CreateAccount inserts an account and returns its ID.
func (s *Store) CreateAccount(a model.Account) (int64, error) {
	var parent any
	if a.ParentID != 0 {
		parent = a.ParentID
	}
	res, err := s.db.Exec(`
		INSERT INTO accounts (profile_id, account_type_id, name, description, parent_id, is_category)
		VALUES (?, ?, ?, ?, ?, ?)
	`, a.ProfileID, a.AccountTypeID, a.Name, a.Description, parent, boolToInt(a.IsCategory))
	if err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("account id: %w", err)
	}
	return id, nil
}

// UpdateAccount rewrites an existing account.
func (s *Store) UpdateAccount(a model.Account) error {
	var parent any
	if a.ParentID != 0 {
		parent = a.ParentID
	}
	res, err := s.db.Exec(`
		UPDATE accounts
		SET account_type_id = ?, name = ?, description = ?, parent_id = ?, is_category = ?
		WHERE id = ?
	`, a.AccountTypeID, a.Name, a.Description, parent, boolToInt(a.IsCategory), a.ID)
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update account: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetAccount returns an account by ID.
func (s *Store) GetAccount(id int64) (model.Account, error) {
	row := s.db.QueryRow(`
		SELECT id, profile_id, account_type_id, name, description, parent_id, is_category
		FROM accounts WHERE id = ?
	`, id)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}

// GetAccountByName returns a profile's account by name.
func (s *Store) GetAccountByName(profileID int64, name string) (model.Account, error) {
	row := s.db.QueryRow(`
		SELECT id, profile_id, account_type_id, name, description, parent_id, is_category
		FROM accounts WHERE profile_id = ? AND name = ?
	`, profileID, name)
	a, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, ErrNotFound
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("scan account: %w", err)
	}
	return a, nil
}

// GetAccountTypeByName returns a profile's account type by name.
func (s *Store) GetAccountTypeByName(profileID int64, name string) (model.AccountType, error) {
	row := s.db.QueryRow(`
		SELECT id, profile_id, name, default_type, yearly
		FROM account_types WHERE profile_id = ? AND name = ?
	`, profileID, name)
	var t model.AccountType
	var defaultType string
	var yearly int
	err := row.Scan(&t.ID, &t.ProfileID, &t.Name, &defaultType, &yearly)
	if errors.Is(err, sql.ErrNoRows) {
		return model.AccountType{}, ErrNotFound
	}
	if err != nil {
		return model.AccountType{}, fmt.Errorf("scan account type: %w", err)
	}
	t.DefaultType = model.DebitCredit(defaultType)
	t.Yearly = yearly != 0
	return t, nil
}

// Accounts returns a profile's accounts ordered by account type then name.
func (s *Store) Accounts(profileID int64) ([]model.Account, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.profile_id, a.account_type_id, a.name, a.description, a.parent_id, a.is_category
		FROM accounts a
		JOIN account_types t ON t.id = a.account_type_id
		WHERE a.profile_id = ?
		ORDER BY t.name, a.name
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// Children returns the direct subaccounts of a category account.
func (s *Store) Children(parentID int64) ([]model.Account, error) {
	rows, err := s.db.Query(`
		SELECT id, profile_id, account_type_id, name, description, parent_id, is_category
		FROM accounts WHERE parent_id = ? ORDER BY name
	`, parentID)
	if err != nil {
		return nil, fmt.Errorf("query children: %w", err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// YearlyAccounts returns every account of a profile whose account type is
// flagged yearly. A year change invalidates exactly this set.
func (s *Store) YearlyAccounts(profileID int64) ([]model.Account, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.profile_id, a.account_type_id, a.name, a.description, a.parent_id, a.is_category
		FROM accounts a
		JOIN account_types t ON t.id = a.account_type_id
		WHERE a.profile_id = ? AND t.yearly = 1
		ORDER BY a.id
	`, profileID)
	if err != nil {
		return nil, fmt.Errorf("query yearly accounts: %w", err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

// AccountsBySide returns the yearly accounts of a profile whose account
// type defaults to the given side, ordered by name.
func (s *Store) AccountsBySide(profileID int64, side model.DebitCredit) ([]model.Account, error) {
	rows, err := s.db.Query(`
		SELECT a.id, a.profile_id, a.account_type_id, a.name, a.description, a.parent_id, a.is_category
		FROM accounts a
		JOIN account_types t ON t.id = a.account_type_id
		WHERE a.profile_id = ? AND t.yearly = 1 AND t.default_type = ?
		ORDER BY a.name
	`, profileID, string(side))
	if err != nil {
		return nil, fmt.Errorf("query accounts by side: %w", err)
	}
	defer rows.Close()
	return scanAccounts(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (model.Account, error) {
	var a model.Account
	var parent sql.NullInt64
	var isCategory int
	if err := row.Scan(&a.ID, &a.ProfileID, &a.AccountTypeID, &a.Name,
		&a.Description, &parent, &isCategory); err != nil {
		return model.Account{}, err
	}
	a.ParentID = parent.Int64
	a.IsCategory = isCategory != 0
	return a, nil
}

func scanAccounts(rows *sql.Rows) ([]model.Account, error) {
	var accts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scan account: %w", err)
		}
		accts = append(accts, a)
	}
	return accts, rows.Err()
}

func scanAccountTypes(rows *sql.Rows) ([]model.AccountType, error) {
	var types []model.AccountType
	for rows.Next() {
		var t model.AccountType
		var defaultType string
		var yearly int
		if err := rows.Scan(&t.ID, &t.ProfileID, &t.Name, &defaultType, &yearly); err != nil {
			return nil, fmt.Errorf("scan account type: %w", err)
		}
		t.DefaultType = model.DebitCredit(defaultType)
		t.Yearly = yearly != 0
		types = append(types, t)
	}
	return types, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
