package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// Column headers for the supported vendor CSV layouts. CapitalOne 360
// exports carry a leading space in the description header; it is matched
// verbatim.
const (
	chaseDateColumn    = "Post Date"
	chaseSummaryColumn = "Description"
	chaseAmountColumn  = "Amount"

	capitalOneIDColumn      = "BANK ID"
	capitalOneDateColumn    = "Transaction Date"
	capitalOneSummaryColumn = " Transaction Description"
	capitalOneAmountColumn  = "Transaction Amount"
)

const (
	chaseDateFormat      = "01/02/2006"
	capitalOneDateFormat = "2006-01-02"
)

// parseCSV sniffs the header row to pick a vendor layout and parses the
// remaining records into statement rows.
func parseCSV(r io.Reader) ([]model.StatementRow, Layout, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = false

	header, err := cr.Read()
	if err == io.EOF {
		return nil, "", ErrUnrecognizedFormat
	}
	if err != nil {
		return nil, "", fmt.Errorf("reading statement header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[name] = i
	}

	layout, err := sniffLayout(columns)
	if err != nil {
		return nil, "", err
	}

	var rows []model.StatementRow
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, "", fmt.Errorf("reading statement row: %w", err)
		}
		row, err := parseRecord(layout, columns, record)
		if err != nil {
			return nil, "", err
		}
		rows = append(rows, row)
	}
	return rows, layout, nil
}

func sniffLayout(columns map[string]int) (Layout, error) {
	if hasColumns(columns, chaseDateColumn, chaseSummaryColumn, chaseAmountColumn) {
		return LayoutChaseCSV, nil
	}
	if hasColumns(columns, capitalOneIDColumn, capitalOneDateColumn, capitalOneSummaryColumn, capitalOneAmountColumn) {
		return LayoutCapitalOneCSV, nil
	}
	return "", ErrUnrecognizedFormat
}

func hasColumns(columns map[string]int, names ...string) bool {
	for _, name := range names {
		if _, ok := columns[name]; !ok {
			return false
		}
	}
	return true
}

func parseRecord(layout Layout, columns map[string]int, record []string) (model.StatementRow, error) {
	var dateCol, summaryCol, amountCol string
	var dateFormat string
	switch layout {
	case LayoutChaseCSV:
		dateCol, summaryCol, amountCol = chaseDateColumn, chaseSummaryColumn, chaseAmountColumn
		dateFormat = chaseDateFormat
	case LayoutCapitalOneCSV:
		dateCol, summaryCol, amountCol = capitalOneDateColumn, capitalOneSummaryColumn, capitalOneAmountColumn
		dateFormat = capitalOneDateFormat
	default:
		return model.StatementRow{}, ErrUnrecognizedFormat
	}

	field := func(name string) string {
		i := columns[name]
		if i >= len(record) {
			return ""
		}
		return record[i]
	}

	date, err := time.Parse(dateFormat, field(dateCol))
	if err != nil {
		return model.StatementRow{}, fmt.Errorf("parsing statement date %q: %w", field(dateCol), err)
	}
	amount, err := decimal.NewFromString(field(amountCol))
	if err != nil {
		return model.StatementRow{}, fmt.Errorf("parsing statement amount %q: %w", field(amountCol), err)
	}
	return model.StatementRow{
		Date:    date,
		Summary: field(summaryCol),
		Amount:  amount,
	}, nil
}
