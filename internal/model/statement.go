package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementRow is one parsed line of a bank statement, normalized to the
// common shape shared by every vendor layout. Amount keeps the sign from
// the statement; negative means money left the main account.
type StatementRow struct {
	Date    time.Time
	Summary string
	Amount  decimal.Decimal
}

// Candidate is a statement row staged for review. Nothing is written to
// the ledger until the candidate survives confirmation with Skip unset.
type Candidate struct {
	StatementRow

	DebitAccountID  int64 // 0 = unresolved, needs manual selection
	CreditAccountID int64
	Duplicate       bool // exact (summary, amount, date) match exists
	Skip            bool // defaults to Duplicate; the reviewer may flip it
}
