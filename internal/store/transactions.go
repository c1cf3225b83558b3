package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// CreateTransaction inserts a transaction and sets its ID.
func (s *Store) CreateTransaction(trx *model.Transaction) error {
	res, err := s.db.Exec(`
		INSERT INTO transactions (debit_account_id, credit_account_id, amount, summary, description, date)
		VALUES (?, ?, ?, ?, ?, ?)
	`, trx.DebitAccountID, trx.CreditAccountID, trx.Amount.StringFixed(2),
		trx.Summary, trx.Description, trx.Date.Format(model.DateFormat))
	if err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("transaction id: %w", err)
	}
	trx.ID = id
	return nil
}

// UpdateTransaction rewrites an existing transaction.
func (s *Store) UpdateTransaction(trx model.Transaction) error {
	res, err := s.db.Exec(`
		UPDATE transactions
		SET debit_account_id = ?, credit_account_id = ?, amount = ?, summary = ?, description = ?, date = ?
		WHERE id = ?
	`, trx.DebitAccountID, trx.CreditAccountID, trx.Amount.StringFixed(2),
		trx.Summary, trx.Description, trx.Date.Format(model.DateFormat), trx.ID)
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update transaction: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTransaction removes a transaction and returns the deleted row so
// the caller can invalidate the accounts it touched.
func (s *Store) DeleteTransaction(id int64) (model.Transaction, error) {
	trx, err := s.GetTransaction(id)
	if err != nil {
		return model.Transaction{}, err
	}
	if _, err := s.db.Exec("DELETE FROM transactions WHERE id = ?", id); err != nil {
		return model.Transaction{}, fmt.Errorf("delete transaction: %w", err)
	}
	return trx, nil
}

// GetTransaction returns a transaction by ID.
func (s *Store) GetTransaction(id int64) (model.Transaction, error) {
	row := s.db.QueryRow(`
		SELECT id, debit_account_id, credit_account_id, amount, summary, description, date
		FROM transactions WHERE id = ?
	`, id)
	trx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, ErrNotFound
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("scan transaction: %w", err)
	}
	return trx, nil
}

// AccountTransactions returns every transaction touching an account (either
// side) in the given year, optionally narrowed to one calendar month
// (month 0 = whole year), ordered by date then insertion order.
func (s *Store) AccountTransactions(accountID int64, year, month int) ([]model.Transaction, error) {
	from, to := dateRange(year, month)
	rows, err := s.db.Query(`
		SELECT id, debit_account_id, credit_account_id, amount, summary, description, date
		FROM transactions
		WHERE (debit_account_id = ? OR credit_account_id = ?)
		  AND date >= ? AND date <= ?
		ORDER BY date, id
	`, accountID, accountID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query account transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// ProfileTransactions returns every transaction of a profile's accounts in
// the given year, ordered by date then insertion order.
func (s *Store) ProfileTransactions(profileID int64, year int) ([]model.Transaction, error) {
	from, to := dateRange(year, 0)
	rows, err := s.db.Query(`
		SELECT DISTINCT x.id, x.debit_account_id, x.credit_account_id, x.amount, x.summary, x.description, x.date
		FROM transactions x
		JOIN accounts a ON a.id IN (x.debit_account_id, x.credit_account_id)
		WHERE a.profile_id = ? AND x.date >= ? AND x.date <= ?
		ORDER BY x.date, x.id
	`, profileID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query profile transactions: %w", err)
	}
	defer rows.Close()
	return scanTransactions(rows)
}

// FirstBySummary returns the oldest transaction with an exactly matching
// summary where the given account is on either side. The boolean reports
// whether a match was found.
func (s *Store) FirstBySummary(summary string, accountID int64) (model.Transaction, bool, error) {
	row := s.db.QueryRow(`
		SELECT id, debit_account_id, credit_account_id, amount, summary, description, date
		FROM transactions
		WHERE summary = ? AND (debit_account_id = ? OR credit_account_id = ?)
		ORDER BY id LIMIT 1
	`, summary, accountID, accountID)
	trx, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, false, nil
	}
	if err != nil {
		return model.Transaction{}, false, fmt.Errorf("scan transaction: %w", err)
	}
	return trx, true, nil
}

// TransactionExists reports whether a transaction with exactly this
// summary, amount, and date already exists.
func (s *Store) TransactionExists(summary string, amount decimal.Decimal, date time.Time) (bool, error) {
	var n int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM transactions
		WHERE summary = ? AND amount = ? AND date = ?
	`, summary, amount.StringFixed(2), date.Format(model.DateFormat)).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("count transactions: %w", err)
	}
	return n > 0, nil
}

func dateRange(year, month int) (string, string) {
	if month == 0 {
		return fmt.Sprintf("%04d-01-01", year), fmt.Sprintf("%04d-12-31", year)
	}
	first := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	last := first.AddDate(0, 1, -1)
	return first.Format(model.DateFormat), last.Format(model.DateFormat)
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var trx model.Transaction
	var amount, date string
	if err := row.Scan(&trx.ID, &trx.DebitAccountID, &trx.CreditAccountID,
		&amount, &trx.Summary, &trx.Description, &date); err != nil {
		return model.Transaction{}, err
	}
	amt, err := decimal.NewFromString(amount)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing amount %q: %w", amount, err)
	}
	d, err := time.Parse(model.DateFormat, date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing date %q: %w", date, err)
	}
	trx.Amount = amt
	trx.Date = d
	return trx, nil
}

func scanTransactions(rows *sql.Rows) ([]model.Transaction, error) {
	var trxs []model.Transaction
	for rows.Next() {
		trx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		trxs = append(trxs, trx)
	}
	return trxs, rows.Err()
}
