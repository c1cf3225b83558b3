// Package pdftext extracts layout-preserving plain text from PDF
// statements. Bank statements render transactions as fixed columns, so
// word X positions are mapped back to runs of spaces wide enough for a
// column-aware parser to split on.
package pdftext

import (
	"bytes"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
)

// pointsPerSpace converts a horizontal gap in PDF points into padding
// spaces. Statement column gaps are typically 80+ points, which keeps
// them comfortably wider than intra-column word spacing.
const pointsPerSpace = 4.0

// Extractor reads PDF files from disk.
type Extractor struct{}

// New creates an Extractor.
func New() *Extractor {
	return &Extractor{}
}

// Extract returns the document's text, one line per rendered row, with
// horizontal gaps expanded into proportional runs of spaces. The pdf
// library panics on some malformed documents, so extraction is wrapped
// in recover.
func (e *Extractor) Extract(path string) (text string, err error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extracting text from %s: %v", path, r)
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("opening %s: %w", path, err)
	}

	var b strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			return "", fmt.Errorf("reading page %d of %s: %w", i, path, err)
		}
		b.WriteString(renderRows(rows))
	}
	return b.String(), nil
}

// renderRows lays rows out top to bottom, words left to right, padding
// each horizontal gap with one space per pointsPerSpace points.
func renderRows(rows pdf.Rows) string {
	sorted := make(pdf.Rows, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position > sorted[j].Position
	})

	var b strings.Builder
	for _, row := range sorted {
		words := make([]pdf.Text, len(row.Content))
		copy(words, row.Content)
		sort.SliceStable(words, func(i, j int) bool {
			return words[i].X < words[j].X
		})

		cursor := 0.0
		for i, word := range words {
			if i > 0 {
				pad := int((word.X - cursor) / pointsPerSpace)
				if pad < 1 {
					pad = 1
				}
				b.WriteString(strings.Repeat(" ", pad))
			}
			b.WriteString(word.S)
			cursor = word.X + word.W
		}
		b.WriteString("\n")
	}
	return b.String()
}
