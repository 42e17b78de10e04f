package importer

import (
	"strings"

	"golang.org/x/text/cases"
)

// amountMode determines how amounts are extracted from a row.
type amountMode int

const (
	// amountSigned means one signed column ("-10,00" is an expense).
	amountSigned amountMode = iota
	// amountSplit means separate debit and credit columns.
	amountSplit
)

// Profile describes one statement layout. Each column lists the header
// names it is recognised by; matching ignores case and surrounding space.
type Profile struct {
	Name       string
	Date       []string
	Note       []string
	AmountMode amountMode
	Amount     []string // amountSigned
	Debit      []string // amountSplit
	Credit     []string // amountSplit
}

var (
	dateHeaders = []string{"date", "data", "data mov.", "data-valor", "日期", "交易日期", "記帳日"}
	noteHeaders = []string{"description", "note", "memo", "descrição", "摘要", "說明", "备注", "備註"}
)

// profiles is tried in order; split comes first because a split header
// row may also carry a balance column that looks like an amount.
var profiles = []Profile{
	{
		Name:       "split",
		Date:       dateHeaders,
		Note:       noteHeaders,
		AmountMode: amountSplit,
		Debit:      []string{"debit", "withdrawal", "débito", "支出", "提款", "支出金額"},
		Credit:     []string{"credit", "deposit", "crédito", "收入", "存款", "存入金額"},
	},
	{
		Name:       "signed",
		Date:       dateHeaders,
		Note:       noteHeaders,
		AmountMode: amountSigned,
		Amount:     []string{"amount", "montante", "movimento", "金額", "金额", "交易金額"},
	},
}

// columns holds the resolved index of each field for a matched header.
type columns struct {
	date, note, amount, debit, credit int
}

// match resolves the profile's columns against a header row.
func (p *Profile) match(header []string) (columns, bool) {
	idx := headerIndex(header)

	cols := columns{amount: -1, debit: -1, credit: -1}

	var ok bool

	if cols.date, ok = lookup(idx, p.Date); !ok {
		return cols, false
	}

	if cols.note, ok = lookup(idx, p.Note); !ok {
		return cols, false
	}

	switch p.AmountMode {
	case amountSigned:
		cols.amount, ok = lookup(idx, p.Amount)
		return cols, ok
	case amountSplit:
		if cols.debit, ok = lookup(idx, p.Debit); !ok {
			return cols, false
		}

		cols.credit, ok = lookup(idx, p.Credit)

		return cols, ok
	}

	return cols, false
}

func headerIndex(header []string) map[string]int {
	fold := cases.Fold()
	idx := make(map[string]int, len(header))

	for i, cell := range header {
		name := fold.String(strings.TrimSpace(cell))
		if _, seen := idx[name]; name != "" && !seen {
			idx[name] = i
		}
	}

	return idx
}

func lookup(idx map[string]int, names []string) (int, bool) {
	fold := cases.Fold()

	for _, name := range names {
		if i, ok := idx[fold.String(name)]; ok {
			return i, true
		}
	}

	return -1, false
}
