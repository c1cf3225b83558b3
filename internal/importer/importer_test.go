package importer

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/cache"
	"github.com/tally-dev/tally/internal/keys"
	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

type fixture struct {
	store    *store.Store
	cache    *cache.Memory
	ledger   *ledger.Service
	importer *Importer
	profile  model.Profile

	checking model.Account
	rent     model.Account
	salary   model.Account
}

// fakeExtractor stands in for the PDF text extractor so parsing can be
// tested without real documents.
type fakeExtractor struct {
	text string
	err  error
}

func (f *fakeExtractor) Extract(string) (string, error) { return f.text, f.err }

func newFixture(t *testing.T, extractor Extractor) *fixture {
	t.Helper()
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	p, err := st.CreateProfile("home")
	require.NoError(t, err)
	require.NoError(t, st.SeedDefaults(p.ID))
	require.NoError(t, st.UpdateProfileYear(p.ID, 2010))
	p, err = st.GetProfile(p.ID)
	require.NoError(t, err)

	types, err := st.AccountTypes(p.ID)
	require.NoError(t, err)
	var expenses, income, bank int64
	for _, typ := range types {
		switch typ.Name {
		case "Expenses":
			expenses = typ.ID
		case "Income":
			income = typ.ID
		case "Bank":
			bank = typ.ID
		}
	}

	f := &fixture{store: st, cache: cache.NewMemory(), profile: p}
	f.checking = f.account(t, "Checking", bank)
	f.rent = f.account(t, "Rent", expenses)
	f.salary = f.account(t, "Salary", income)
	f.ledger = ledger.NewService(st, f.cache, zerolog.Nop())
	f.importer = New(st, extractor, zerolog.Nop())
	return f
}

func (f *fixture) account(t *testing.T, name string, typeID int64) model.Account {
	t.Helper()
	id, err := f.store.CreateAccount(model.Account{
		ProfileID: f.profile.ID, AccountTypeID: typeID, Name: name,
	})
	require.NoError(t, err)
	acct, err := f.store.GetAccount(id)
	require.NoError(t, err)
	return acct
}

func (f *fixture) transaction(t *testing.T, debit, credit int64, amount, summary string, d time.Time) {
	t.Helper()
	trx := model.Transaction{
		DebitAccountID:  debit,
		CreditAccountID: credit,
		Amount:          decimal.RequireFromString(amount),
		Summary:         summary,
		Date:            d,
	}
	require.NoError(t, f.ledger.AddTransaction(&trx))
}

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestDetectFormat(t *testing.T) {
	assert.Equal(t, FormatPDF, DetectFormat("statement.pdf"))
	assert.Equal(t, FormatPDF, DetectFormat("STATEMENT.PDF"))
	assert.Equal(t, FormatCSV, DetectFormat("statement.csv"))
	assert.Equal(t, FormatCSV, DetectFormat("statement.txt"))
	assert.Equal(t, FormatCSV, DetectFormat("statement"))
}

func TestParseChaseCSV(t *testing.T) {
	f := newFixture(t, nil)

	batch, err := f.importer.Parse(filepath.Join("testdata", "chase_sample.csv"), f.checking.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, LayoutChaseCSV, batch.Layout)
	assert.Equal(t, "chase_sample.csv", batch.Filename)
	assert.NotEmpty(t, batch.ID)
	require.Len(t, batch.Candidates, 3)

	first := batch.Candidates[0]
	assert.Equal(t, date(2010, 1, 5), first.Date)
	assert.Equal(t, "STARBUCKS STORE 1234", first.Summary)
	assert.Equal(t, "4.25", first.Amount.StringFixed(2))
}

func TestParseCapitalOne360CSV(t *testing.T) {
	f := newFixture(t, nil)

	batch, err := f.importer.Parse(filepath.Join("testdata", "capitalone360_sample.csv"), f.checking.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, LayoutCapitalOneCSV, batch.Layout)
	require.Len(t, batch.Candidates, 2)

	assert.Equal(t, date(2010, 1, 15), batch.Candidates[0].Date)
	assert.Equal(t, "Interest Paid", batch.Candidates[0].Summary)
	assert.Equal(t, "2.15", batch.Candidates[0].Amount.StringFixed(2))
	assert.Equal(t, "Withdrawal to Checking", batch.Candidates[1].Summary)
}

func TestParseUnrecognizedHeader(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.importer.Parse(filepath.Join("testdata", "unknown_sample.csv"), f.checking.ID, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnrecognizedFormat))
}

func TestSignAssignment(t *testing.T) {
	f := newFixture(t, nil)

	batch, err := f.importer.Parse(filepath.Join("testdata", "chase_sample.csv"), f.checking.ID, 0)
	require.NoError(t, err)
	require.Len(t, batch.Candidates, 3)

	// Negative statement amounts put the main account on the credit side.
	charge := batch.Candidates[0]
	assert.Equal(t, f.checking.ID, charge.CreditAccountID)
	assert.Zero(t, charge.DebitAccountID)
	assert.Equal(t, "4.25", charge.Amount.StringFixed(2))

	// Positive amounts put it on the debit side.
	payment := batch.Candidates[2]
	assert.Equal(t, f.checking.ID, payment.DebitAccountID)
	assert.Zero(t, payment.CreditAccountID)
	assert.Equal(t, "150.00", payment.Amount.StringFixed(2))
}

func TestInferOffset(t *testing.T) {
	f := newFixture(t, nil)
	f.transaction(t, f.rent.ID, f.checking.ID, "100.00", "ACME PROPERTY MGMT", date(2009, 12, 1))
	f.transaction(t, f.checking.ID, f.salary.ID, "2500.00", "PAYROLL DEPOSIT", date(2009, 12, 15))

	// Main account on the credit side of the match: offset is the debit side.
	offset, err := f.importer.InferOffset(f.checking.ID, "ACME PROPERTY MGMT")
	require.NoError(t, err)
	assert.Equal(t, f.rent.ID, offset)

	// Main account on the debit side: offset is the credit side.
	offset, err = f.importer.InferOffset(f.checking.ID, "PAYROLL DEPOSIT")
	require.NoError(t, err)
	assert.Equal(t, f.salary.ID, offset)

	// No history leaves the offset unresolved.
	offset, err = f.importer.InferOffset(f.checking.ID, "NEVER SEEN BEFORE")
	require.NoError(t, err)
	assert.Zero(t, offset)

	// A match where the main account appears on neither side does not count.
	offset, err = f.importer.InferOffset(f.rent.ID, "PAYROLL DEPOSIT")
	require.NoError(t, err)
	assert.Zero(t, offset)
}

func TestParseInfersOffsetFromHistory(t *testing.T) {
	f := newFixture(t, nil)
	f.transaction(t, f.rent.ID, f.checking.ID, "12.00", "SHELL OIL 57442", date(2009, 11, 2))

	batch, err := f.importer.Parse(filepath.Join("testdata", "chase_sample.csv"), f.checking.ID, 0)
	require.NoError(t, err)

	shell := batch.Candidates[1]
	assert.Equal(t, f.checking.ID, shell.CreditAccountID)
	assert.Equal(t, f.rent.ID, shell.DebitAccountID)
}

func TestDuplicatePreselectsSkip(t *testing.T) {
	f := newFixture(t, nil)
	f.transaction(t, f.rent.ID, f.checking.ID, "4.25", "STARBUCKS STORE 1234", date(2010, 1, 5))

	batch, err := f.importer.Parse(filepath.Join("testdata", "chase_sample.csv"), f.checking.ID, 0)
	require.NoError(t, err)

	dup := batch.Candidates[0]
	assert.True(t, dup.Duplicate)
	assert.True(t, dup.Skip)

	// Same summary but different amount is not a duplicate.
	assert.False(t, batch.Candidates[1].Duplicate)
	assert.False(t, batch.Candidates[1].Skip)
}

const statementText = `CHASE BANK STATEMENT
Account Activity

01/05                    STARBUCKS STORE 1234                    -4.25
01/12                    SHELL OIL 57442                    -1,035.00
01/21                    AUTOMATIC PAYMENT - THANK                    $150.00
Total fees charged this period
01/31                    NOT AN AMOUNT                    abc
`

func TestParsePDFStatement(t *testing.T) {
	f := newFixture(t, &fakeExtractor{text: statementText})

	batch, err := f.importer.Parse("statement.pdf", f.checking.ID, 2010)
	require.NoError(t, err)
	assert.Equal(t, LayoutPDF, batch.Layout)
	require.Len(t, batch.Candidates, 3)

	assert.Equal(t, date(2010, 1, 5), batch.Candidates[0].Date)
	assert.Equal(t, "STARBUCKS STORE 1234", batch.Candidates[0].Summary)
	assert.Equal(t, f.checking.ID, batch.Candidates[0].CreditAccountID)
	assert.Equal(t, "4.25", batch.Candidates[0].Amount.StringFixed(2))

	// Thousands separators and currency markers are tolerated.
	assert.Equal(t, "1035.00", batch.Candidates[1].Amount.StringFixed(2))
	assert.Equal(t, "150.00", batch.Candidates[2].Amount.StringFixed(2))
}

func TestParsePDFYearHintDefaultsToCurrentYear(t *testing.T) {
	f := newFixture(t, &fakeExtractor{text: "01/05                    COFFEE                    -4.25\n"})

	orig := nowFunc
	nowFunc = func() time.Time { return date(2012, 6, 1) }
	defer func() { nowFunc = orig }()

	batch, err := f.importer.Parse("statement.pdf", f.checking.ID, 0)
	require.NoError(t, err)
	require.Len(t, batch.Candidates, 1)
	assert.Equal(t, date(2012, 1, 5), batch.Candidates[0].Date)
}

func TestParsePDFExtractorFailure(t *testing.T) {
	f := newFixture(t, &fakeExtractor{err: errors.New("damaged file")})

	_, err := f.importer.Parse("statement.pdf", f.checking.ID, 2010)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "damaged file")
}

func TestCommit(t *testing.T) {
	f := newFixture(t, nil)

	batch := &Batch{
		ID:            "b1",
		MainAccountID: f.checking.ID,
		Candidates: []model.Candidate{
			{
				StatementRow:    model.StatementRow{Date: date(2010, 1, 5), Summary: "rent", Amount: decimal.RequireFromString("100.00")},
				DebitAccountID:  f.rent.ID,
				CreditAccountID: f.checking.ID,
			},
			{
				StatementRow:    model.StatementRow{Date: date(2010, 1, 6), Summary: "skipped", Amount: decimal.RequireFromString("50.00")},
				DebitAccountID:  f.rent.ID,
				CreditAccountID: f.checking.ID,
				Skip:            true,
			},
		},
	}

	committed, err := f.importer.Commit(batch, f.ledger)
	require.NoError(t, err)
	assert.Equal(t, 1, committed)

	trxs, err := f.store.AccountTransactions(f.checking.ID, 2010, 0)
	require.NoError(t, err)
	require.Len(t, trxs, 1)
	assert.Equal(t, "rent", trxs[0].Summary)
	assert.Equal(t, "100.00", trxs[0].Amount.StringFixed(2))
}

func TestCommitRejectsUnresolvedOffset(t *testing.T) {
	f := newFixture(t, nil)

	batch := &Batch{
		ID:            "b1",
		MainAccountID: f.checking.ID,
		Candidates: []model.Candidate{
			{
				StatementRow:    model.StatementRow{Date: date(2010, 1, 5), Summary: "mystery", Amount: decimal.RequireFromString("10.00")},
				CreditAccountID: f.checking.ID,
			},
		},
	}

	_, err := f.importer.Commit(batch, f.ledger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mystery")

	trxs, err := f.store.AccountTransactions(f.checking.ID, 2010, 0)
	require.NoError(t, err)
	assert.Empty(t, trxs)
}

func TestCommitInvalidatesBalanceCache(t *testing.T) {
	f := newFixture(t, nil)

	// Warm the cache, then commit through the ledger.
	_, err := f.ledger.Balance(f.rent, 2010)
	require.NoError(t, err)
	_, ok := f.cache.Get(keys.Account(f.rent.ID))
	require.True(t, ok)

	batch := &Batch{
		ID:            "b1",
		MainAccountID: f.checking.ID,
		Candidates: []model.Candidate{
			{
				StatementRow:    model.StatementRow{Date: date(2010, 1, 5), Summary: "rent", Amount: decimal.RequireFromString("100.00")},
				DebitAccountID:  f.rent.ID,
				CreditAccountID: f.checking.ID,
			},
		},
	}
	_, err = f.importer.Commit(batch, f.ledger)
	require.NoError(t, err)

	_, ok = f.cache.Get(keys.Account(f.rent.ID))
	assert.False(t, ok)

	balance, err := f.ledger.Balance(f.rent, 2010)
	require.NoError(t, err)
	assert.Equal(t, "100.00", balance.StringFixed(2))
}
