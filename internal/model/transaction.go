package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateFormat is the canonical on-disk date layout.
const DateFormat = "2006-01-02"

// Transaction is a double-entry record: a positive amount moved from the
// credit account to the debit account on a date. Direction is encoded
// structurally; the amount itself never carries a sign.
type Transaction struct {
	ID              int64
	DebitAccountID  int64
	CreditAccountID int64
	Amount          decimal.Decimal
	Summary         string // free text, used for offset inference and dedup
	Description     string
	Date            time.Time
}
