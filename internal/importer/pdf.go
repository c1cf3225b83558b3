package importer

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tally-dev/tally/internal/model"
)

// PDF statements render transaction tables as fixed columns; after text
// extraction the columns are separated by long runs of spaces.
var columnGap = regexp.MustCompile(` {15,}`)

const pdfDateFormat = "01/02"

// parseStatementText scans extracted PDF text line by line, keeping the
// lines that look like a transaction row (date, description, amount in
// three wide-separated columns). Everything else on the page, headers,
// balances, marketing text, is skipped. Statement dates carry no year,
// so the caller's hint supplies it.
func (im *Importer) parseStatementText(text string, year int) []model.StatementRow {
	var rows []model.StatementRow
	for _, line := range strings.Split(text, "\n") {
		parts := columnGap.Split(strings.TrimSpace(line), -1)
		if len(parts) != 3 {
			continue
		}
		date, err := time.Parse(pdfDateFormat, strings.TrimSpace(parts[0]))
		if err != nil {
			continue
		}
		amount, err := decimal.NewFromString(cleanAmount(parts[2]))
		if err != nil {
			im.log.Debug().Str("line", line).Msg("skipping statement line with unparsable amount")
			continue
		}
		rows = append(rows, model.StatementRow{
			Date:    time.Date(year, date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
			Summary: strings.TrimSpace(parts[1]),
			Amount:  amount,
		})
	}
	return rows
}

// cleanAmount strips the thousands separators and currency marker some
// statements print around amounts.
func cleanAmount(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	return s
}
