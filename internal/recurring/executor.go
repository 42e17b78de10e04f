package recurring

import (
	"time"

	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

// autoSuffix marks transactions created by a plan.
const autoSuffix = " (Auto)"

// Execution records one plan occurrence applied to an account.
type Execution struct {
	PlanID      string
	Title       string
	Amount      float64
	Transaction *ledger.Transaction
}

// Result summarises a single Run.
type Result struct {
	// Initialized lists plans whose next date was computed for the first time.
	Initialized []string
	Executions  []Execution
}

// Executor applies due recurring plans to an account.
//
// With CatchUp disabled a plan fires at most once per Run, however many
// occurrences were missed; its next date then moves past today. With
// CatchUp enabled every occurrence up to today is applied.
type Executor struct {
	MaxTransactions int
	CatchUp         bool
}

// Run evaluates every plan of the account. now stamps the transactions,
// today is the local calendar date used for due checks.
func (e Executor) Run(account *ledger.Account, now, today time.Time) Result {
	var res Result

	today = ledger.DateOf(today)

	for _, plan := range account.SortedPlans() {
		if !plan.Active {
			continue
		}

		if plan.NextDate == nil {
			plan.NextDate = new(NextDueDate(plan, today))
			res.Initialized = append(res.Initialized, plan.ID)

			continue
		}

		for IsDue(plan, today) {
			occurrence := *plan.NextDate

			res.Executions = append(res.Executions, e.execute(account, plan, now))

			if !e.CatchUp {
				plan.NextDate = new(NextDueDate(plan, today.AddDate(0, 0, 1)))
				break
			}

			plan.NextDate = new(NextDueDate(plan, occurrence.AddDate(0, 0, 1)))
		}
	}

	return res
}

func (e Executor) execute(account *ledger.Account, plan *ledger.RecurringPlan, now time.Time) Execution {
	tx := ledger.NewTransaction(plan.Amount, plan.Title+autoSuffix, ledger.TypeRecurring, new(plan.ID), now)
	account.AddTransaction(tx, e.MaxTransactions)

	plan.LastExecuted = new(now)

	return Execution{
		PlanID:      plan.ID,
		Title:       plan.Title,
		Amount:      plan.Amount,
		Transaction: tx,
	}
}
