package plan

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/WOOWTECH/ha-finance/internal/finance"
	"github.com/WOOWTECH/ha-finance/internal/http/apierr"
	"github.com/WOOWTECH/ha-finance/internal/ledger"
)

// Handler serves recurring plans, mounted under /accounts/{accountID}/plans.
type Handler struct {
	svc *finance.Service
}

func NewHandler(svc *finance.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.create)
	r.Patch("/{planID}", h.update)
	r.Delete("/{planID}", h.delete)
}

type createPlanRequest struct {
	Title     string           `json:"title"`
	Amount    float64          `json:"amount"`
	Frequency ledger.Frequency `json:"frequency"`
	Day       int              `json:"day"`
	Month     int              `json:"month"`
	Active    *bool            `json:"active"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createPlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	p, err := h.svc.AddPlan(r.Context(), chi.URLParam(r, "accountID"), finance.PlanParams{
		Title:     req.Title,
		Amount:    req.Amount,
		Frequency: req.Frequency,
		Day:       req.Day,
		Month:     req.Month,
		Active:    req.Active,
	})
	if err != nil {
		apierr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(ToResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

type updatePlanRequest struct {
	Title     *string           `json:"title,omitempty"`
	Amount    *float64          `json:"amount,omitempty"`
	Frequency *ledger.Frequency `json:"frequency,omitempty"`
	Day       *int              `json:"day,omitempty"`
	Month     *int              `json:"month,omitempty"`
	Active    *bool             `json:"active,omitempty"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var req updatePlanRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	p, err := h.svc.UpdatePlan(r.Context(), chi.URLParam(r, "accountID"), chi.URLParam(r, "planID"), finance.PlanUpdate{
		Title:     req.Title,
		Amount:    req.Amount,
		Frequency: req.Frequency,
		Day:       req.Day,
		Month:     req.Month,
		Active:    req.Active,
	})
	if err != nil {
		apierr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(ToResponse(p)); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.RemovePlan(r.Context(), chi.URLParam(r, "accountID"), chi.URLParam(r, "planID")); err != nil {
		apierr.Write(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
