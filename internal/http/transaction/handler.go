package transaction

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/WOOWTECH/ha-finance/internal/finance"
	"github.com/WOOWTECH/ha-finance/internal/http/apierr"
)

// Handler serves the transactions of one account, mounted under
// /accounts/{accountID}/transactions.
type Handler struct {
	svc *finance.Service
}

func NewHandler(svc *finance.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Post("/quick", h.quickAdd)
	r.Patch("/{txID}", h.update)
	r.Delete("/{txID}", h.delete)
}

type createTransactionRequest struct {
	Amount *float64 `json:"amount"`
	Note   string   `json:"note"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	if req.Amount == nil {
		apierr.BadRequest(w, "amount is required")
		return
	}

	tx, err := h.svc.AddTransaction(r.Context(), chi.URLParam(r, "accountID"), *req.Amount, req.Note)
	if err != nil {
		apierr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(ToResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

// quickAdd ignores zero amounts and answers 204 for them.
func (h *Handler) quickAdd(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	var amount float64
	if req.Amount != nil {
		amount = *req.Amount
	}

	tx, err := h.svc.QuickAdd(r.Context(), chi.URLParam(r, "accountID"), amount, req.Note)
	if err != nil {
		apierr.Write(w, err)
		return
	}

	if tx == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(ToResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateTransactionRequest struct {
	Amount *float64 `json:"amount,omitempty"`
	Note   *string  `json:"note,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	tx, err := h.svc.UpdateTransaction(r.Context(), chi.URLParam(r, "accountID"), chi.URLParam(r, "txID"), finance.TransactionUpdate{
		Amount: req.Amount,
		Note:   req.Note,
	})
	if err != nil {
		apierr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(ToResponse(tx)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTransaction(r.Context(), chi.URLParam(r, "accountID"), chi.URLParam(r, "txID")); err != nil {
		apierr.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
