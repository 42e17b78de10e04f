package plan

import (
	"time"

	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

type Response struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Amount       float64          `json:"amount"`
	Frequency    ledger.Frequency `json:"frequency"`
	Day          int              `json:"day"`
	Month        int              `json:"month"`
	Active       bool             `json:"active"`
	LastExecuted *string          `json:"last_executed"`
	NextDate     *string          `json:"next_date"`
}

func ToResponse(p *ledger.RecurringPlan) Response {
	resp := Response{
		ID:        p.ID,
		Title:     p.Title,
		Amount:    p.Amount,
		Frequency: p.Frequency,
		Day:       p.Day,
		Month:     p.Month,
		Active:    p.Active,
	}

	if p.LastExecuted != nil {
		resp.LastExecuted = new(p.LastExecuted.UTC().Format(time.RFC3339))
	}

	if p.NextDate != nil {
		resp.NextDate = new(p.NextDate.Format(time.DateOnly))
	}

	return resp
}

// ToResponseMap keys plans by id, the shape the account detail uses.
func ToResponseMap(plans map[string]*ledger.RecurringPlan) map[string]Response {
	resp := make(map[string]Response, len(plans))
	for id, p := range plans {
		resp[id] = ToResponse(p)
	}

	return resp
}
