package model

// DebitCredit marks which side of the ledger an account type defaults to.
type DebitCredit string

const (
	Debit  DebitCredit = "DEBIT"
	Credit DebitCredit = "CREDIT"
)

// AccountType is a user-defined category of accounts (e.g. "Expenses").
// Yearly types are included in the year-over-year dashboard aggregation.
type AccountType struct {
	ID          int64
	ProfileID   int64
	Name        string
	DefaultType DebitCredit
	Yearly      bool
}

// Account is a named ledger account. Category accounts aggregate the
// balances of their descendants and hold no transactions of their own.
type Account struct {
	ID            int64
	ProfileID     int64
	AccountTypeID int64
	Name          string
	Description   string
	ParentID      int64 // 0 = top-level; non-zero parents must be categories
	IsCategory    bool
}
