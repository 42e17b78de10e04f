package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/WOOWTECH/ha-finance/internal/http/account"
	"github.com/WOOWTECH/ha-finance/internal/http/events"
	"github.com/WOOWTECH/ha-finance/internal/http/importcsv"
	"github.com/WOOWTECH/ha-finance/internal/http/plan"
	"github.com/WOOWTECH/ha-finance/internal/http/transaction"
)

type Options struct {
	AllowedOrigins []string
	// AuthSecret enables bearer-token auth on /api/v1 when non-empty.
	AuthSecret string
}

type Handlers struct {
	Accounts     *account.Handler
	Transactions *transaction.Handler
	Plans        *plan.Handler
	Import       *importcsv.Handler
	Events       *events.Handler
}

func New(h Handlers, opts Options) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	router.Get("/health", health)

	router.Route("/api/v1", func(r chi.Router) {
		if opts.AuthSecret != "" {
			r.Use(RequireBearer([]byte(opts.AuthSecret)))
		}

		r.Route("/accounts", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Accounts.Routes(r)
				r.Route("/{accountID}/transactions", h.Transactions.Routes)
				r.Route("/{accountID}/plans", h.Plans.Routes)
			})

			r.Route("/{accountID}/import", h.Import.Routes)
		})

		r.Method(http.MethodGet, "/events", h.Events)
	})

	return router
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if err := json.NewEncoder(w).Encode(map[string]string{"status": "ok"}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
