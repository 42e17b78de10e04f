package recurring_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/WOOWTECH/ha-finance/internal/ledger"
	"github.com/WOOWTECH/ha-finance/internal/recurring"
)

func TestExecutor_LazyInitThenExecute(t *testing.T) {
	account := ledger.NewAccount("wallet", "Wallet", 5000)
	account.AddPlan(&ledger.RecurringPlan{
		ID:        "plan_rent",
		Title:     "Rent",
		Amount:    -800,
		Frequency: ledger.FrequencyMonthly,
		Day:       15,
		Month:     1,
		Active:    true,
	})

	exec := recurring.Executor{MaxTransactions: 100}

	// first tick only computes the next date
	res := exec.Run(account, time.Date(2024, 3, 10, 0, 0, 1, 0, time.UTC), date(2024, 3, 10))
	assert.Equal(t, []string{"plan_rent"}, res.Initialized)
	assert.Empty(t, res.Executions)
	assert.Empty(t, account.Transactions)

	plan := account.Plans["plan_rent"]
	require.NotNil(t, plan.NextDate)
	assert.Equal(t, date(2024, 3, 15), *plan.NextDate)

	// not due yet
	res = exec.Run(account, time.Date(2024, 3, 14, 0, 0, 1, 0, time.UTC), date(2024, 3, 14))
	assert.Empty(t, res.Executions)

	now := time.Date(2024, 3, 15, 0, 0, 1, 0, time.UTC)
	res = exec.Run(account, now, date(2024, 3, 15))
	require.Len(t, res.Executions, 1)

	got := res.Executions[0]
	assert.Equal(t, "plan_rent", got.PlanID)
	assert.InDelta(t, -800, got.Amount, 1e-9)
	assert.Equal(t, "Rent (Auto)", got.Transaction.Note)
	assert.Equal(t, ledger.TypeRecurring, got.Transaction.Type)
	assert.Equal(t, "plan_rent", *got.Transaction.PlanID)

	assert.InDelta(t, 4200, account.Balance, 1e-9)
	assert.Equal(t, date(2024, 4, 15), *plan.NextDate)
	assert.True(t, plan.LastExecuted.Equal(now))

	// same day again is a no-op
	res = exec.Run(account, now.Add(time.Hour), date(2024, 3, 15))
	assert.Empty(t, res.Executions)
	assert.Len(t, account.Transactions, 1)
}

func TestExecutor_SkipsInactive(t *testing.T) {
	account := ledger.NewAccount("wallet", "Wallet", 0)
	account.AddPlan(&ledger.RecurringPlan{
		ID:        "plan_gym",
		Title:     "Gym",
		Amount:    -30,
		Frequency: ledger.FrequencyDaily,
		Active:    false,
		NextDate:  new(date(2024, 3, 1)),
	})
	account.AddPlan(&ledger.RecurringPlan{
		ID:        "plan_new",
		Title:     "New",
		Amount:    -1,
		Frequency: ledger.FrequencyDaily,
		Active:    false,
	})

	res := recurring.Executor{}.Run(account, time.Now(), date(2024, 3, 10))

	assert.Empty(t, res.Initialized)
	assert.Empty(t, res.Executions)
	assert.Nil(t, account.Plans["plan_new"].NextDate)
	assert.Equal(t, date(2024, 3, 1), *account.Plans["plan_gym"].NextDate)
}

func TestExecutor_MissedOccurrences(t *testing.T) {
	type testCase struct {
		name      string
		catchUp   bool
		wantRuns  int
		wantNext  time.Time
		frequency ledger.Frequency
		day       int
	}

	// next date 2024-03-04 (a Monday), evaluated on 2024-03-20
	tests := []testCase{
		{name: "DailySingleStep", frequency: ledger.FrequencyDaily, wantRuns: 1, wantNext: date(2024, 3, 21)},
		{name: "DailyCatchUp", frequency: ledger.FrequencyDaily, catchUp: true, wantRuns: 17, wantNext: date(2024, 3, 21)},
		{name: "WeeklySingleStep", frequency: ledger.FrequencyWeekly, day: 1, wantRuns: 1, wantNext: date(2024, 3, 25)},
		{name: "WeeklyCatchUp", frequency: ledger.FrequencyWeekly, day: 1, catchUp: true, wantRuns: 3, wantNext: date(2024, 3, 25)},
		{name: "MonthlyCatchUp", frequency: ledger.FrequencyMonthly, day: 4, catchUp: true, wantRuns: 1, wantNext: date(2024, 4, 4)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account := ledger.NewAccount("wallet", "Wallet", 0)
			account.AddPlan(&ledger.RecurringPlan{
				ID:        "plan_x",
				Title:     "X",
				Amount:    -10,
				Frequency: tt.frequency,
				Day:       tt.day,
				Month:     1,
				Active:    true,
				NextDate:  new(date(2024, 3, 4)),
			})

			exec := recurring.Executor{MaxTransactions: 100, CatchUp: tt.catchUp}
			res := exec.Run(account, time.Date(2024, 3, 20, 0, 0, 1, 0, time.UTC), date(2024, 3, 20))

			assert.Len(t, res.Executions, tt.wantRuns)
			assert.InDelta(t, float64(-10*tt.wantRuns), account.Balance, 1e-9)
			assert.Equal(t, tt.wantNext, *account.Plans["plan_x"].NextDate)
		})
	}
}

func TestExecutor_VisitsPlansInIDOrder(t *testing.T) {
	account := ledger.NewAccount("wallet", "Wallet", 0)

	for _, id := range []string{"plan_c", "plan_a", "plan_b"} {
		account.AddPlan(&ledger.RecurringPlan{
			ID:        id,
			Title:     id,
			Amount:    1,
			Frequency: ledger.FrequencyDaily,
			Active:    true,
			NextDate:  new(date(2024, 3, 10)),
		})
	}

	res := recurring.Executor{}.Run(account, time.Now(), date(2024, 3, 10))

	require.Len(t, res.Executions, 3)
	assert.Equal(t, "plan_a", res.Executions[0].PlanID)
	assert.Equal(t, "plan_b", res.Executions[1].PlanID)
	assert.Equal(t, "plan_c", res.Executions[2].PlanID)
}
