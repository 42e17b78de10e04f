package ledger_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func TestAccount_AddTransaction(t *testing.T) {
	a := ledger.NewAccount("wallet", "Wallet", 100)

	a.AddTransaction(ledger.NewTransaction(-30, "coffee", ledger.TypeManual, nil, now), 10)
	a.AddTransaction(ledger.NewTransaction(50.5, "refund", ledger.TypeManual, nil, now), 10)

	assert.InDelta(t, 120.5, a.Balance, 1e-9)
	require.Len(t, a.Transactions, 2)
	assert.Equal(t, "coffee", a.Transactions[0].Note)
	assert.Equal(t, "refund", a.LastTransaction().Note)
}

func TestAccount_AddTransaction_TrimKeepsBalance(t *testing.T) {
	const (
		initial = 1000.0
		limit   = 5
	)

	a := ledger.NewAccount("wallet", "Wallet", initial)

	var sum float64

	for i := 1; i <= 12; i++ {
		amount := float64(i)
		sum += amount
		a.AddTransaction(ledger.NewTransaction(amount, "", ledger.TypeManual, nil, now), limit)
	}

	require.Len(t, a.Transactions, limit)
	assert.InDelta(t, initial+sum, a.Balance, 1e-9)

	// newest-last ordering survives the trim
	for i, tx := range a.Transactions {
		assert.InDelta(t, float64(8+i), tx.Amount, 1e-9)
	}
}

func TestAccount_AddTransaction_DefaultCap(t *testing.T) {
	a := ledger.NewAccount("wallet", "Wallet", 0)

	for range ledger.DefaultMaxTransactions + 3 {
		a.AddTransaction(ledger.NewTransaction(1, "", ledger.TypeManual, nil, now), 0)
	}

	assert.Len(t, a.Transactions, ledger.DefaultMaxTransactions)
	assert.InDelta(t, float64(ledger.DefaultMaxTransactions+3), a.Balance, 1e-9)
}

func TestAccount_Adjust(t *testing.T) {
	type testCase struct {
		name      string
		balance   float64
		target    float64
		wantTx    bool
		wantDelta float64
	}

	tests := []testCase{
		{name: "Increase", balance: 100, target: 250, wantTx: true, wantDelta: 150},
		{name: "Decrease", balance: 100, target: -20, wantTx: true, wantDelta: -120},
		{name: "Unchanged", balance: 100, target: 100, wantTx: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := ledger.NewAccount("wallet", "Wallet", tt.balance)

			tx := a.Adjust(tt.target, now, 10)

			assert.Equal(t, tt.target, a.Balance)

			if !tt.wantTx {
				assert.Nil(t, tx)
				assert.Empty(t, a.Transactions)

				return
			}

			require.NotNil(t, tx)
			assert.Equal(t, ledger.TypeAdjustment, tx.Type)
			assert.Equal(t, ledger.NoteBalanceAdjustment, tx.Note)
			assert.InDelta(t, tt.wantDelta, tx.Amount, 1e-9)
			assert.Len(t, a.Transactions, 1)
		})
	}
}

func TestAccount_UpdateAndDeleteTransaction(t *testing.T) {
	a := ledger.NewAccount("wallet", "Wallet", 0)
	tx := ledger.NewTransaction(-40, "groceries", ledger.TypeManual, nil, now)
	a.AddTransaction(tx, 10)

	_, err := a.UpdateTransaction(tx.ID, new(-55.0), new("market"))
	require.NoError(t, err)
	assert.InDelta(t, -55, a.Balance, 1e-9)
	assert.Equal(t, "market", tx.Note)

	_, err = a.UpdateTransaction(tx.ID, nil, new("only note"))
	require.NoError(t, err)
	assert.InDelta(t, -55, a.Balance, 1e-9)

	_, err = a.UpdateTransaction("tx_missing", new(1.0), nil)
	assert.ErrorIs(t, err, ledger.ErrNotFound)

	deleted, err := a.DeleteTransaction(tx.ID)
	require.NoError(t, err)
	assert.Equal(t, tx, deleted)
	assert.InDelta(t, 0, a.Balance, 1e-9)
	assert.Empty(t, a.Transactions)

	_, err = a.DeleteTransaction(tx.ID)
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestAccount_Plans(t *testing.T) {
	a := ledger.NewAccount("wallet", "Wallet", 0)
	a.AddPlan(&ledger.RecurringPlan{ID: "plan_b", Title: "Rent"})
	a.AddPlan(&ledger.RecurringPlan{ID: "plan_a", Title: "Salary"})

	plans := a.SortedPlans()
	require.Len(t, plans, 2)
	assert.Equal(t, "plan_a", plans[0].ID)

	assert.True(t, a.RemovePlan("plan_b"))
	assert.False(t, a.RemovePlan("plan_b"))

	_, err := a.Plan("plan_b")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestFinanceData_AccountByName(t *testing.T) {
	d := ledger.NewFinanceData()
	d.AddAccount(ledger.NewAccount("wallet", "Wallet", 0))
	d.AddAccount(ledger.NewAccount("bank", "Épargne", 0))

	assert.NotNil(t, d.AccountByName("  WALLET ", ""))
	assert.Nil(t, d.AccountByName("wallet", "wallet"))
	assert.NotNil(t, d.AccountByName("ÉPARGNE", ""))
	assert.Nil(t, d.AccountByName("savings", ""))

	_, err := d.Account("savings")
	assert.ErrorIs(t, err, ledger.ErrNotFound)
}

func TestRecurringPlan_Validate(t *testing.T) {
	type testCase struct {
		name    string
		plan    ledger.RecurringPlan
		wantErr bool
	}

	tests := []testCase{
		{name: "Monthly", plan: ledger.RecurringPlan{Frequency: ledger.FrequencyMonthly, Day: 28, Month: 1}},
		{name: "WeeklySunday", plan: ledger.RecurringPlan{Frequency: ledger.FrequencyWeekly, Day: 7, Month: 1}},
		{name: "WeeklyOutOfRange", plan: ledger.RecurringPlan{Frequency: ledger.FrequencyWeekly, Day: 8, Month: 1}, wantErr: true},
		{name: "MonthlyDay29", plan: ledger.RecurringPlan{Frequency: ledger.FrequencyMonthly, Day: 29, Month: 1}, wantErr: true},
		{name: "YearlyMonth13", plan: ledger.RecurringPlan{Frequency: ledger.FrequencyYearly, Day: 1, Month: 13}, wantErr: true},
		{name: "UnknownFrequency", plan: ledger.RecurringPlan{Frequency: "hourly", Day: 1, Month: 1}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.plan.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ledger.ErrInvalidInput)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestNewAccountID(t *testing.T) {
	id := ledger.NewAccountID("Daily Wallet!")
	assert.Regexp(t, `^daily_wallet_[0-9a-f]{6}$`, id)

	assert.Regexp(t, `^account_[0-9a-f]{6}$`, ledger.NewAccountID("錢包"))
	assert.Regexp(t, `^tx_[0-9a-f]{8}$`, ledger.NewTransactionID())
	assert.Regexp(t, `^plan_[0-9a-f]{8}$`, ledger.NewPlanID())
}

func TestAccount_Clone(t *testing.T) {
	a := ledger.NewAccount("wallet", "Wallet", 10)
	a.AddTransaction(ledger.NewTransaction(-1, "x", ledger.TypeRecurring, new("plan_a"), now), 10)
	a.AddPlan(&ledger.RecurringPlan{ID: "plan_a", Title: "A", NextDate: new(ledger.DateOf(now))})

	c := a.Clone()
	require.Equal(t, a, c)

	c.Transactions[0].Note = "changed"
	*c.Transactions[0].PlanID = "plan_b"
	c.Plans["plan_a"].Title = "B"
	*c.Plans["plan_a"].NextDate = now.AddDate(1, 0, 0)

	assert.Equal(t, "x", a.Transactions[0].Note)
	assert.Equal(t, "plan_a", *a.Transactions[0].PlanID)
	assert.Equal(t, "A", a.Plans["plan_a"].Title)
	assert.Equal(t, ledger.DateOf(now), *a.Plans["plan_a"].NextDate)
}

func TestFinanceData_MarkSwept(t *testing.T) {
	d := ledger.NewFinanceData()
	assert.Nil(t, d.LastSweep)

	assert.True(t, d.MarkSwept(time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)))
	assert.False(t, d.MarkSwept(time.Date(2024, 3, 10, 23, 0, 0, 0, time.UTC)))
	assert.False(t, d.MarkSwept(time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC), *d.LastSweep)

	assert.True(t, d.MarkSwept(time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, time.Date(2024, 3, 12, 0, 0, 0, 0, time.UTC), *d.LastSweep)
}
