package account

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/WOOWTECH/ha-finance/internal/finance"
	"github.com/WOOWTECH/ha-finance/internal/http/apierr"
	"github.com/WOOWTECH/ha-finance/internal/http/transaction"
)

type Handler struct {
	svc *finance.Service
}

func NewHandler(svc *finance.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{accountID}", h.get)
	r.Patch("/{accountID}", h.update)
	r.Delete("/{accountID}", h.delete)
	r.Put("/{accountID}/balance", h.adjustBalance)
	r.Get("/{accountID}/chart", h.chart)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.svc.Accounts(r.Context())
	if err != nil {
		apierr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toListResponse(summaries, h.svc.Currency())); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type createAccountRequest struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	InitialBalance float64 `json:"initial_balance"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	a, err := h.svc.AddAccount(r.Context(), finance.AddAccountParams{
		ID:             req.ID,
		Name:           req.Name,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		apierr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(toResponse(a, h.svc.Currency())); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	a, err := h.svc.Account(r.Context(), chi.URLParam(r, "accountID"))
	if err != nil {
		apierr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(a, h.svc.Currency())); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updateAccountRequest struct {
	Name string `json:"name"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	a, err := h.svc.UpdateAccount(r.Context(), chi.URLParam(r, "accountID"), req.Name)
	if err != nil {
		apierr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toResponse(a, h.svc.Currency())); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteAccount(r.Context(), chi.URLParam(r, "accountID")); err != nil {
		apierr.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

type adjustBalanceRequest struct {
	Balance *float64 `json:"balance"`
}

func (h *Handler) adjustBalance(w http.ResponseWriter, r *http.Request) {
	var req adjustBalanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	if req.Balance == nil {
		apierr.BadRequest(w, "balance is required")
		return
	}

	tx, err := h.svc.AdjustBalance(r.Context(), chi.URLParam(r, "accountID"), *req.Balance)
	if err != nil {
		apierr.Write(w, err)
		return
	}

	resp := balanceResponse{Balance: *req.Balance}
	if tx != nil {
		resp.Adjustment = new(transaction.ToResponse(tx))
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) chart(w http.ResponseWriter, r *http.Request) {
	months := finance.DefaultChartMonths

	if s := r.URL.Query().Get("months"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			apierr.BadRequest(w, "months must be an integer")
			return
		}

		months = n
	}

	data, err := h.svc.ChartData(r.Context(), chi.URLParam(r, "accountID"), months)
	if err != nil {
		apierr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(toChartResponse(data)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
