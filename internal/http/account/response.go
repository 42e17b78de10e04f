package account

import (
	"github.com/WOOWTECH/ha-finance/internal/finance"
	"github.com/WOOWTECH/ha-finance/internal/http/plan"
	"github.com/WOOWTECH/ha-finance/internal/http/transaction"
	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

type summaryResponse struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Balance         float64               `json:"balance"`
	Currency        string                `json:"currency"`
	LastTransaction *transaction.Response `json:"last_transaction"`
}

type listResponse struct {
	Accounts []summaryResponse `json:"accounts"`
}

type accountResponse struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Balance         float64                  `json:"balance"`
	Currency        string                   `json:"currency"`
	LastTransaction *transaction.Response    `json:"last_transaction"`
	Transactions    []transaction.Response   `json:"transactions"`
	RecurringPlans  map[string]plan.Response `json:"recurring_plans"`
}

type balanceResponse struct {
	Balance    float64               `json:"balance"`
	Adjustment *transaction.Response `json:"adjustment"`
}

type chartMonthResponse struct {
	Month    string  `json:"month"`
	Income   float64 `json:"income"`
	Expenses float64 `json:"expenses"`
}

type chartResponse struct {
	Months []chartMonthResponse `json:"months"`
}

func toResponse(a *ledger.Account, currency string) accountResponse {
	return accountResponse{
		ID:              a.ID,
		Name:            a.Name,
		Balance:         a.Balance,
		Currency:        currency,
		LastTransaction: lastTransaction(a.LastTransaction()),
		Transactions:    transaction.ToResponseList(a.Transactions),
		RecurringPlans:  plan.ToResponseMap(a.Plans),
	}
}

func toListResponse(summaries []finance.Summary, currency string) listResponse {
	resp := listResponse{Accounts: make([]summaryResponse, len(summaries))}
	for i, s := range summaries {
		resp.Accounts[i] = summaryResponse{
			ID:              s.ID,
			Name:            s.Name,
			Balance:         s.Balance,
			Currency:        currency,
			LastTransaction: lastTransaction(s.LastTransaction),
		}
	}

	return resp
}

func lastTransaction(tx *ledger.Transaction) *transaction.Response {
	if tx == nil {
		return nil
	}

	return new(transaction.ToResponse(tx))
}

func toChartResponse(months []finance.ChartMonth) chartResponse {
	resp := chartResponse{Months: make([]chartMonthResponse, len(months))}
	for i, m := range months {
		resp.Months[i] = chartMonthResponse{Month: m.Month, Income: m.Income, Expenses: m.Expenses}
	}

	return resp
}
