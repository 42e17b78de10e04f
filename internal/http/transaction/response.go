package transaction

import (
	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

// Response is the wire form of a ledger transaction.
type Response struct {
	ID        string      `json:"id"`
	Amount    float64     `json:"amount"`
	Note      string      `json:"note"`
	Timestamp string      `json:"timestamp"`
	Type      ledger.Type `json:"type"`
	PlanID    *string     `json:"plan_id"`
}

func ToResponse(tx *ledger.Transaction) Response {
	return Response{
		ID:        tx.ID,
		Amount:    tx.Amount,
		Note:      tx.Note,
		Timestamp: tx.Timestamp,
		Type:      tx.Type,
		PlanID:    tx.PlanID,
	}
}

func ToResponseList(txs []*ledger.Transaction) []Response {
	resp := make([]Response, len(txs))
	for i, tx := range txs {
		resp[i] = ToResponse(tx)
	}

	return resp
}
