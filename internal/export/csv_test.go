package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestYearExport(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	p, err := st.CreateProfile("home")
	require.NoError(t, err)
	require.NoError(t, st.SeedDefaults(p.ID))
	types, err := st.AccountTypes(p.ID)
	require.NoError(t, err)

	checking, err := st.CreateAccount(model.Account{ProfileID: p.ID, AccountTypeID: types[0].ID, Name: "Checking"})
	require.NoError(t, err)
	rent, err := st.CreateAccount(model.Account{ProfileID: p.ID, AccountTypeID: types[1].ID, Name: "Rent"})
	require.NoError(t, err)

	trx := model.Transaction{
		DebitAccountID:  rent,
		CreditAccountID: checking,
		Amount:          decimal.RequireFromString("100.00"),
		Summary:         "january rent",
		Description:     "apt 4b",
		Date:            date(2010, 1, 5),
	}
	require.NoError(t, st.CreateTransaction(&trx))

	// A different year stays out of the export.
	other := model.Transaction{
		DebitAccountID:  rent,
		CreditAccountID: checking,
		Amount:          decimal.RequireFromString("90.00"),
		Summary:         "december rent",
		Date:            date(2009, 12, 5),
	}
	require.NoError(t, st.CreateTransaction(&other))

	var buf bytes.Buffer
	require.NoError(t, Year(&buf, st, p.ID, 2010))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, Header, lines[0])
	assert.Contains(t, lines[1], "2010-01-05")
	assert.Contains(t, lines[1], "Rent")
	assert.Contains(t, lines[1], "Checking")
	assert.Contains(t, lines[1], "100.00")

	rows, err := ReadRows(&buf)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "january rent", rows[0].Transaction.Summary)
	assert.Equal(t, "apt 4b", rows[0].Transaction.Description)
	assert.Equal(t, "Rent", rows[0].DebitName)
	assert.Equal(t, "Checking", rows[0].CreditName)
	assert.Equal(t, "100.00", rows[0].Transaction.Amount.StringFixed(2))
}

func TestYearExportEmpty(t *testing.T) {
	st, err := store.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	p, err := st.CreateProfile("home")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Year(&buf, st, p.ID, 2010))
	assert.Equal(t, Header, strings.TrimSpace(buf.String()))
}
