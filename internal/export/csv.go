// Package export writes a profile's ledger out as CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// Header is the CSV header for exported ledgers.
const Header = "id,date,debit_account,credit_account,summary,description,amount"

const (
	numFields = 7
	colID     = 0
	colDate   = 1
	colDebit  = 2
	colCredit = 3
	colSum    = 4
	colDesc   = 5
	colAmount = 6
)

// Row pairs a transaction with the resolved names of its two accounts.
type Row struct {
	Transaction model.Transaction
	DebitName   string
	CreditName  string
}

// Year writes one year of a profile's transactions, with account names
// resolved, as CSV including the header row.
func Year(w io.Writer, st *store.Store, profileID int64, year int) error {
	trxs, err := st.ProfileTransactions(profileID, year)
	if err != nil {
		return fmt.Errorf("listing transactions: %w", err)
	}
	accounts, err := st.Accounts(profileID)
	if err != nil {
		return fmt.Errorf("listing accounts: %w", err)
	}

	names := make(map[int64]string, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	rows := make([]Row, len(trxs))
	for i, trx := range trxs {
		rows[i] = Row{
			Transaction: trx,
			DebitName:   accountName(names, trx.DebitAccountID),
			CreditName:  accountName(names, trx.CreditAccountID),
		}
	}
	return WriteRows(w, rows)
}

// accountName falls back to the raw ID for accounts outside the profile,
// which can happen when a transaction crosses profiles.
func accountName(names map[int64]string, id int64) string {
	if name, ok := names[id]; ok {
		return name
	}
	return strconv.FormatInt(id, 10)
}

// WriteRows writes rows as CSV including the header.
func WriteRows(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range rows {
		if err := cw.Write(MarshalRow(row)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// ReadRows reads exported rows back, skipping the header.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading export CSV: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}

	var rows []Row
	for i, rec := range records[1:] {
		row, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// MarshalRow converts a Row to a CSV record.
func MarshalRow(row Row) []string {
	rec := make([]string, numFields)
	rec[colID] = strconv.FormatInt(row.Transaction.ID, 10)
	rec[colDate] = row.Transaction.Date.Format(model.DateFormat)
	rec[colDebit] = row.DebitName
	rec[colCredit] = row.CreditName
	rec[colSum] = row.Transaction.Summary
	rec[colDesc] = row.Transaction.Description
	rec[colAmount] = row.Transaction.Amount.StringFixed(2)
	return rec
}

// UnmarshalRow converts a CSV record to a Row.
func UnmarshalRow(record []string) (Row, error) {
	if len(record) != numFields {
		return Row{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	id, err := strconv.ParseInt(record[colID], 10, 64)
	if err != nil {
		return Row{}, fmt.Errorf("parsing id %q: %w", record[colID], err)
	}
	date, err := time.Parse(model.DateFormat, record[colDate])
	if err != nil {
		return Row{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}
	amount, err := decimal.NewFromString(record[colAmount])
	if err != nil {
		return Row{}, fmt.Errorf("parsing amount %q: %w", record[colAmount], err)
	}

	return Row{
		Transaction: model.Transaction{
			ID:          id,
			Date:        date,
			Summary:     record[colSum],
			Description: record[colDesc],
			Amount:      amount,
		},
		DebitName:  record[colDebit],
		CreditName: record[colCredit],
	}, nil
}
