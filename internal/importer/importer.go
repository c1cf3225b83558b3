// Package importer turns bank statement files into candidate transactions.
// It guesses the offsetting account from transaction history and flags
// likely duplicates, but never writes to the ledger on its own: rows are
// staged in a Batch until a reviewer confirms which ones to commit.
package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tally-dev/tally/internal/ledger"
	"github.com/tally-dev/tally/internal/model"
	"github.com/tally-dev/tally/internal/store"
)

// ErrUnrecognizedFormat is returned when a CSV header matches no known
// vendor layout.
var ErrUnrecognizedFormat = errors.New("unrecognized statement format")

// Format is the coarse file format, dispatched purely on file extension.
type Format string

const (
	FormatCSV Format = "CSV"
	FormatPDF Format = "PDF"
)

// Layout identifies the vendor layout resolved for a parsed file.
type Layout string

const (
	LayoutChaseCSV      Layout = "chase-csv"
	LayoutCapitalOneCSV Layout = "capitalone-csv"
	LayoutPDF           Layout = "pdf"
)

// Batch is one parsed statement file awaiting confirmation.
type Batch struct {
	ID            string
	MainAccountID int64
	Filename      string
	Layout        Layout
	Candidates    []model.Candidate
}

// Extractor converts a PDF document into layout-preserving plain text.
type Extractor interface {
	Extract(path string) (string, error)
}

// Importer parses statement files against an existing ledger.
type Importer struct {
	store     *store.Store
	extractor Extractor
	log       zerolog.Logger
}

// New creates an Importer. The extractor may be nil if PDF import is not
// needed.
func New(st *store.Store, extractor Extractor, log zerolog.Logger) *Importer {
	return &Importer{store: st, extractor: extractor, log: log}
}

// DetectFormat dispatches on the file extension alone: ".pdf" takes the
// PDF path, anything else is treated as CSV.
func DetectFormat(filename string) Format {
	if strings.EqualFold(filepath.Ext(filename), ".pdf") {
		return FormatPDF
	}
	return FormatCSV
}

// Parse reads a statement file and stages every row as a candidate
// against mainAccountID. yearHint supplies the year for PDF statements
// whose line items omit it; 0 means the current calendar year.
func (im *Importer) Parse(path string, mainAccountID int64, yearHint int) (*Batch, error) {
	if yearHint == 0 {
		yearHint = nowFunc().Year()
	}

	var rows []model.StatementRow
	var layout Layout
	switch DetectFormat(path) {
	case FormatPDF:
		if im.extractor == nil {
			return nil, fmt.Errorf("no PDF extractor configured")
		}
		text, err := im.extractor.Extract(path)
		if err != nil {
			return nil, fmt.Errorf("extracting text from %s: %w", path, err)
		}
		rows = im.parseStatementText(text, yearHint)
		layout = LayoutPDF
	default:
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening statement: %w", err)
		}
		defer f.Close()
		rows, layout, err = parseCSV(f)
		if err != nil {
			return nil, err
		}
	}

	batch := &Batch{
		ID:            uuid.NewString(),
		MainAccountID: mainAccountID,
		Filename:      filepath.Base(path),
		Layout:        layout,
	}
	for _, row := range rows {
		c, err := im.stage(mainAccountID, row)
		if err != nil {
			return nil, err
		}
		batch.Candidates = append(batch.Candidates, c)
	}
	return batch, nil
}

// stage builds a candidate: infer the offset account, assign sides from
// the amount's sign, normalize the amount, and pre-select duplicates for
// exclusion.
func (im *Importer) stage(mainAccountID int64, row model.StatementRow) (model.Candidate, error) {
	offset, err := im.InferOffset(mainAccountID, row.Summary)
	if err != nil {
		return model.Candidate{}, err
	}

	c := model.Candidate{StatementRow: row}
	if row.Amount.IsNegative() {
		c.CreditAccountID = mainAccountID
		c.DebitAccountID = offset
	} else {
		c.DebitAccountID = mainAccountID
		c.CreditAccountID = offset
	}
	c.Amount = row.Amount.Abs()

	dup, err := im.store.TransactionExists(row.Summary, c.Amount, row.Date)
	if err != nil {
		return model.Candidate{}, err
	}
	c.Duplicate = dup
	c.Skip = dup
	return c, nil
}

// InferOffset looks for an existing transaction with the exact summary
// where the main account is on either side and returns the other side's
// account ID, or 0 when there is no history to learn from.
func (im *Importer) InferOffset(mainAccountID int64, summary string) (int64, error) {
	trx, ok, err := im.store.FirstBySummary(summary, mainAccountID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, nil
	}
	if trx.DebitAccountID == mainAccountID {
		return trx.CreditAccountID, nil
	}
	return trx.DebitAccountID, nil
}

// Commit writes every candidate not flagged for skipping through the
// ledger service, so balance caches are invalidated as a side effect.
// It returns the number of transactions created.
func (im *Importer) Commit(batch *Batch, ldg *ledger.Service) (int, error) {
	committed := 0
	for _, c := range batch.Candidates {
		if c.Skip {
			continue
		}
		if c.DebitAccountID == 0 || c.CreditAccountID == 0 {
			return committed, fmt.Errorf("candidate %q has no offset account assigned", c.Summary)
		}
		trx := model.Transaction{
			DebitAccountID:  c.DebitAccountID,
			CreditAccountID: c.CreditAccountID,
			Amount:          c.Amount,
			Summary:         c.Summary,
			Date:            c.Date,
		}
		if err := ldg.AddTransaction(&trx); err != nil {
			return committed, fmt.Errorf("committing candidate %q: %w", c.Summary, err)
		}
		committed++
	}
	return committed, nil
}
