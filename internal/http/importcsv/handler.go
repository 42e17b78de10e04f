package importcsv

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/WOOWTECH/ha-finance/internal/finance"
	"github.com/WOOWTECH/ha-finance/internal/http/apierr"
	"github.com/WOOWTECH/ha-finance/internal/http/transaction"
	"github.com/WOOWTECH/ha-finance/internal/importer"
)

const maxUploadSize = 10 << 20

// Handler imports bank statements into an account, mounted under
// /accounts/{accountID}/import.
type Handler struct {
	parser *importer.Parser
	svc    *finance.Service
}

func NewHandler(parser *importer.Parser, svc *finance.Service) *Handler {
	return &Handler{parser: parser, svc: svc}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/", h.importStatement)
}

type entryResponse struct {
	Date   string  `json:"date"`
	Note   string  `json:"note"`
	Amount float64 `json:"amount"`
}

type previewResponse struct {
	Entries []entryResponse `json:"entries"`
}

type importSuccessResponse struct {
	Imported     int                    `json:"imported"`
	Transactions []transaction.Response `json:"transactions"`
}

// importStatement parses the multipart "file" field. With ?dry_run=true the
// parsed entries are returned without touching the ledger.
func (h *Handler) importStatement(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		apierr.BadRequest(w, "failed to parse form: "+err.Error())
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		apierr.BadRequest(w, "file field is required")
		return
	}
	defer file.Close()

	entries, err := h.parser.Parse(file)
	if err != nil {
		apierr.BadRequest(w, err.Error())
		return
	}

	if dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run")); dryRun {
		w.Header().Set("Content-Type", "application/json")

		if err := json.NewEncoder(w).Encode(toPreviewResponse(entries)); err != nil {
			slog.Error("failed to encode response", "error", err)
		}

		return
	}

	txs, err := h.svc.ImportStatement(r.Context(), chi.URLParam(r, "accountID"), entries)
	if err != nil {
		apierr.Write(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(importSuccessResponse{
		Imported:     len(txs),
		Transactions: transaction.ToResponseList(txs),
	}); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}

func toPreviewResponse(entries []importer.Entry) previewResponse {
	resp := previewResponse{Entries: make([]entryResponse, len(entries))}
	for i, e := range entries {
		resp.Entries[i] = entryResponse{
			Date:   e.Date.Format(time.DateOnly),
			Note:   e.Note,
			Amount: e.Amount,
		}
	}

	return resp
}
