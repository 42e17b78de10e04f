package finance_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WOOWTECH/ha-finance/internal/event"
	"github.com/WOOWTECH/ha-finance/internal/finance"
	"github.com/WOOWTECH/ha-finance/internal/importer"
	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

func chartAccount() *ledger.Account {
	a := ledger.NewAccount("wallet", "Wallet", 0)

	add := func(amount float64, ts string) {
		a.AddTransaction(&ledger.Transaction{ID: ledger.NewTransactionID(), Amount: amount, Timestamp: ts, Type: ledger.TypeManual}, 100)
	}

	add(100, "2023-12-31T23:59:59Z")
	add(52000, "2024-01-05T08:00:00Z")
	add(-0.1, "2024-01-06T08:00:00Z")
	add(-0.2, "2024-01-07T08:00:00")
	add(-800, "2024-02-01T00:00:05.123456+00:00")
	add(0, "2024-02-02")
	add(-5, "not a timestamp")
	add(30.005, "2024-03-01T10:00:00Z")

	return a
}

func TestService_ChartData(t *testing.T) {
	type testCase struct {
		name   string
		months int
		want   []finance.ChartMonth
	}

	tests := []testCase{
		{
			name:   "AllMonths",
			months: 12,
			want: []finance.ChartMonth{
				{Month: "2023-12", Income: 100},
				{Month: "2024-01", Income: 52000, Expenses: 0.3},
				{Month: "2024-02", Expenses: 800},
				{Month: "2024-03", Income: 30.01},
			},
		},
		{
			name:   "LatestTwoOldestFirst",
			months: 2,
			want: []finance.ChartMonth{
				{Month: "2024-02", Expenses: 800},
				{Month: "2024-03", Income: 30.01},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := seeded(t, midnight(2024, 3, 10), finance.Options{}, chartAccount())

			got, err := svc.ChartData(t.Context(), "wallet", tt.months)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestService_ChartData_Errors(t *testing.T) {
	svc, _, _ := seeded(t, midnight(2024, 3, 10), finance.Options{}, chartAccount())

	_, err := svc.ChartData(t.Context(), "wallet", 0)
	assert.ErrorIs(t, err, ledger.ErrInvalidInput)

	_, err = svc.ChartData(t.Context(), "missing", finance.DefaultChartMonths)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_ImportStatement(t *testing.T) {
	f := newFixture(t, finance.Options{LowBalanceThreshold: 1000})
	f.addAccount(t, "wallet", "Wallet", 2000)

	entries := []importer.Entry{
		{Date: midnight(2024, 3, 1), Note: "Lunch", Amount: -150},
		{Date: midnight(2024, 3, 2), Note: "Rent", Amount: -1200},
	}

	txs, err := f.svc.ImportStatement(t.Context(), "wallet", entries)
	require.NoError(t, err)
	require.Len(t, txs, 2)
	assert.Equal(t, "2024-03-01T00:00:00Z", txs[0].Timestamp)
	assert.Equal(t, ledger.TypeManual, txs[1].Type)

	assert.Equal(t, []event.Name{event.TransactionAdded, event.TransactionAdded, event.LowBalance}, f.events.names())

	chart, err := f.svc.ChartData(t.Context(), "wallet", finance.DefaultChartMonths)
	require.NoError(t, err)
	assert.Equal(t, []finance.ChartMonth{{Month: "2024-03", Expenses: 1350}}, chart)

	_, err = f.svc.ImportStatement(t.Context(), "missing", entries)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestService_ImportStatement_OldestFirst(t *testing.T) {
	f := newFixture(t, finance.Options{})
	f.addAccount(t, "wallet", "Wallet", 0)

	// statements usually list the newest line first
	entries := []importer.Entry{
		{Date: midnight(2024, 3, 3), Note: "Third", Amount: -3},
		{Date: midnight(2024, 3, 1), Note: "First", Amount: -1},
		{Date: midnight(2024, 3, 2), Note: "Second", Amount: -2},
	}

	txs, err := f.svc.ImportStatement(t.Context(), "wallet", entries)
	require.NoError(t, err)
	require.Len(t, txs, 3)
	assert.Equal(t, "Third", entries[0].Note)

	a, err := f.svc.Account(t.Context(), "wallet")
	require.NoError(t, err)

	notes := make([]string, len(a.Transactions))
	for i, tx := range a.Transactions {
		notes[i] = tx.Note
	}

	assert.Equal(t, []string{"First", "Second", "Third"}, notes)
	assert.Equal(t, "First", txs[0].Note)
}
