// Package overview aggregates a read-only operational summary across the
// inventory, catalog and purchasing modules for dashboard clients.
package overview

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/bodega-ims/bodega-ims/internal/inventory"
	"github.com/bodega-ims/bodega-ims/internal/masterdata"
	"github.com/bodega-ims/bodega-ims/internal/platform/httpx"
	"github.com/bodega-ims/bodega-ims/internal/purchasing"
)

const requestTimeout = 2 * time.Second
const recentMovements = 10

// LedgerService provides the movement log view.
type LedgerService interface {
	ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]inventory.Movement, error)
}

// CatalogService provides low stock alerts.
type CatalogService interface {
	ListLowStock(ctx context.Context) ([]masterdata.LowStockItem, error)
}

// PurchasingService provides open order listings.
type PurchasingService interface {
	ListOrders(ctx context.Context, filter purchasing.OrderFilter) ([]purchasing.PurchaseOrder, error)
}

// Handler serves the aggregated overview endpoint.
type Handler struct {
	logger     *slog.Logger
	ledger     LedgerService
	catalog    CatalogService
	purchasing PurchasingService
}

// NewHandler constructs the overview handler.
func NewHandler(logger *slog.Logger, ledger LedgerService, catalog CatalogService, po PurchasingService) *Handler {
	return &Handler{logger: logger, ledger: ledger, catalog: catalog, purchasing: po}
}

// MountRoutes registers overview routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.handleOverview)
}

type overviewResponse struct {
	LowStock        []masterdata.LowStockItem  `json:"low_stock"`
	RecentMovements []inventory.Movement       `json:"recent_movements"`
	OpenOrders      []purchasing.PurchaseOrder `json:"open_orders"`
	GeneratedAt     time.Time                  `json:"generated_at"`
}

func (h *Handler) handleOverview(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	var resp overviewResponse
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		items, err := h.catalog.ListLowStock(ctx)
		if err != nil {
			return err
		}
		resp.LowStock = items
		return nil
	})

	g.Go(func() error {
		movements, err := h.ledger.ListMovements(ctx, inventory.MovementFilter{Limit: recentMovements})
		if err != nil {
			return err
		}
		resp.RecentMovements = movements
		return nil
	})

	g.Go(func() error {
		orders, err := h.purchasing.ListOrders(ctx, purchasing.OrderFilter{Status: purchasing.POStatusIssued})
		if err != nil {
			return err
		}
		resp.OpenOrders = orders
		return nil
	})

	if err := g.Wait(); err != nil {
		h.logger.Error("build overview", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	resp.GeneratedAt = time.Now().UTC()
	httpx.JSON(w, http.StatusOK, resp)
}
