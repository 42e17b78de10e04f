package finance

import (
	"context"
	"fmt"
	"slices"

	"github.com/shopspring/decimal"

	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

// DefaultChartMonths is the number of months returned when none is requested.
const DefaultChartMonths = 6

// ChartMonth aggregates one calendar month. Expenses is positive.
type ChartMonth struct {
	Month    string // YYYY-MM
	Income   float64
	Expenses float64
}

type monthTotals struct {
	income, expenses decimal.Decimal
}

// ChartData groups the retained transactions by the month of their
// timestamp and returns the latest months that have data, oldest first.
// Transactions with unparsable timestamps are skipped.
func (s *Service) ChartData(ctx context.Context, accountID string, months int) ([]ChartMonth, error) {
	if months <= 0 {
		return nil, fmt.Errorf("chart data: %w", ledger.ValidationError{Field: "months", Message: "must be positive"})
	}

	totals := make(map[string]*monthTotals)

	err := s.store.View(ctx, func(d *ledger.FinanceData) error {
		a, err := d.Account(accountID)
		if err != nil {
			return err
		}

		for _, tx := range a.Transactions {
			ts, err := tx.Time()
			if err != nil {
				continue
			}

			key := ts.Format("2006-01")

			t, ok := totals[key]
			if !ok {
				t = &monthTotals{}
				totals[key] = t
			}

			amount := decimal.NewFromFloat(tx.Amount)
			if amount.IsNegative() {
				t.expenses = t.expenses.Add(amount.Abs())
			} else {
				t.income = t.income.Add(amount)
			}
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("chart data: %w", err)
	}

	keys := make([]string, 0, len(totals))
	for k := range totals {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	if len(keys) > months {
		keys = keys[len(keys)-months:]
	}

	out := make([]ChartMonth, len(keys))
	for i, k := range keys {
		out[i] = ChartMonth{
			Month:    k,
			Income:   totals[k].income.Round(2).InexactFloat64(),
			Expenses: totals[k].expenses.Round(2).InexactFloat64(),
		}
	}

	return out, nil
}
