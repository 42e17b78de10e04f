// Package importer turns bank statement exports into ledger entries.
package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/WOOWTECH/ha-finance/internal/encoding"
)

// ErrUnknownFormat is returned when no header row matches a known profile.
var ErrUnknownFormat = errors.New("no matching statement format found")

// Entry is one statement line. Amount is signed: negative for expenses.
type Entry struct {
	Date   time.Time
	Note   string
	Amount float64
}

var dateLayouts = []string{
	time.DateOnly,
	"2006/01/02",
	"02-01-2006",
	"02/01/2006",
	"2006.01.02",
}

type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

// Parse reads a statement in any supported encoding. The separator is ";"
// when the header area contains one, "," otherwise. Rows before the header
// are ignored, as are rows without a parsable date (footers) and rows with
// a blank or zero amount.
func (p *Parser) Parse(r io.Reader) ([]Entry, error) {
	utf8r, err := encoding.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	content, err := io.ReadAll(utf8r)
	if err != nil {
		return nil, fmt.Errorf("read statement: %w", err)
	}

	if len(bytes.TrimSpace(content)) == 0 {
		return nil, nil
	}

	reader := csv.NewReader(bytes.NewReader(content))
	reader.Comma = sniffComma(content)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	profile, cols, headerIdx := detectProfile(rows)
	if profile == nil {
		return nil, ErrUnknownFormat
	}

	return parseRows(profile, cols, rows[headerIdx+1:], headerIdx+1)
}

func sniffComma(content []byte) rune {
	sc := bufio.NewScanner(bytes.NewReader(content))

	for lines := 0; sc.Scan() && lines < 50; lines++ {
		if strings.Contains(sc.Text(), ";") {
			return ';'
		}
	}

	return ','
}

func detectProfile(rows [][]string) (*Profile, columns, int) {
	for rowIdx, row := range rows {
		for i := range profiles {
			if cols, ok := profiles[i].match(row); ok {
				return &profiles[i], cols, rowIdx
			}
		}
	}

	return nil, columns{}, 0
}

// parseRows extracts entries from the rows following the header.
// headerRow is the 0-based index of the header, used for error messages.
func parseRows(p *Profile, cols columns, rows [][]string, headerRow int) ([]Entry, error) {
	var entries []Entry

	decimalComma := usesDecimalComma(amountCells(p, cols, rows))

	for i, row := range rows {
		rowNum := headerRow + i + 2

		date, ok := parseDate(cellValue(row, cols.date))
		if !ok {
			continue
		}

		amount, ok := rowAmount(p, cols, row, decimalComma)
		if !ok {
			continue
		}

		note := cellValue(row, cols.note)
		if note == "" {
			return nil, fmt.Errorf("row %d: missing description", rowNum)
		}

		entries = append(entries, Entry{Date: date, Note: note, Amount: amount})
	}

	return entries, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}

	return time.Time{}, false
}

func rowAmount(p *Profile, cols columns, row []string, decimalComma bool) (float64, bool) {
	switch p.AmountMode {
	case amountSigned:
		d, err := parseAmount(cellValue(row, cols.amount), decimalComma)
		if err != nil || d.IsZero() {
			return 0, false
		}

		return d.Round(2).InexactFloat64(), true

	case amountSplit:
		if d, err := parseAmount(cellValue(row, cols.debit), decimalComma); err == nil && !d.IsZero() {
			return -d.Abs().Round(2).InexactFloat64(), true
		}

		if d, err := parseAmount(cellValue(row, cols.credit), decimalComma); err == nil && !d.IsZero() {
			return d.Abs().Round(2).InexactFloat64(), true
		}
	}

	return 0, false
}

// amountCells collects every amount cell of the statement body.
func amountCells(p *Profile, cols columns, rows [][]string) []string {
	var cells []string

	for _, row := range rows {
		switch p.AmountMode {
		case amountSigned:
			cells = append(cells, cellValue(row, cols.amount))
		case amountSplit:
			cells = append(cells, cellValue(row, cols.debit), cellValue(row, cols.credit))
		}
	}

	return cells
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
