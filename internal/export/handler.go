package export

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/bodega-ims/bodega-ims/internal/inventory"
	"github.com/bodega-ims/bodega-ims/internal/platform/httpx"
)

// Handler serves CSV downloads of ledger and movement data.
type Handler struct {
	logger  *slog.Logger
	service *inventory.Service
}

// NewHandler constructs export handler.
func NewHandler(logger *slog.Logger, service *inventory.Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers export routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/movements.csv", h.handleMovementsCSV)
	r.Get("/ledger.csv", h.handleLedgerCSV)
}

func (h *Handler) handleMovementsCSV(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := inventory.MovementFilter{
		ProductID:     q.Get("product_id"),
		WarehouseID:   q.Get("warehouse_id"),
		TransactionID: q.Get("transaction_id"),
		Type:          inventory.MovementType(q.Get("type")),
	}
	movements, err := h.service.ListMovements(r.Context(), filter)
	if err != nil {
		h.logger.Error("export movements", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="movements.csv"`)
	if err := MovementsCSV(w, movements); err != nil {
		h.logger.Error("stream movements csv", slog.Any("error", err))
	}
}

func (h *Handler) handleLedgerCSV(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.LedgerSnapshot(r.Context())
	if err != nil {
		h.logger.Error("export ledger", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="ledger.csv"`)
	if err := LedgerCSV(w, entries); err != nil {
		h.logger.Error("stream ledger csv", slog.Any("error", err))
	}
}
