package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/bodega-ims/bodega-ims/internal/observability"
	"github.com/bodega-ims/bodega-ims/internal/platform/httpx"
	"github.com/bodega-ims/bodega-ims/internal/shared"
)

// Handler wires HTTP endpoints for the inventory module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	metrics   *observability.Metrics
}

// NewHandler constructs inventory handler.
func NewHandler(logger *slog.Logger, service *Service, metrics *observability.Metrics) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New(), metrics: metrics}
}

// MountRoutes registers inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/ledger", h.handleLedger)
	r.Get("/stock", h.handleStockQuery)
	r.Get("/movements", h.handleMovements)
	r.Post("/adjustments", h.handleAdjustment)
	r.Post("/transfers", h.handleTransfer)
	r.Post("/transfers/bulk", h.handleBulkTransfer)
}

type adjustmentRequest struct {
	ProductID      string `json:"product_id" validate:"required,uuid4"`
	WarehouseID    string `json:"warehouse_id" validate:"required,uuid4"`
	QuantityChange int64  `json:"quantity_change" validate:"required"`
	Type           string `json:"type" validate:"required,oneof=ENTRY EXIT ADJUSTMENT"`
	Details        string `json:"details" validate:"max=500"`
}

type transferRequest struct {
	ProductID       string `json:"product_id" validate:"required,uuid4"`
	FromWarehouseID string `json:"from_warehouse_id" validate:"required,uuid4"`
	ToWarehouseID   string `json:"to_warehouse_id" validate:"required,uuid4"`
	Quantity        int64  `json:"quantity" validate:"required,gt=0"`
	Details         string `json:"details" validate:"max=500"`
}

type bulkTransferRequest struct {
	Items []struct {
		ProductID string `json:"product_id" validate:"required,uuid4"`
		Quantity  int64  `json:"quantity" validate:"required,gt=0"`
	} `json:"items" validate:"required,min=1,dive"`
	FromWarehouseID string `json:"from_warehouse_id" validate:"required,uuid4"`
	ToWarehouseID   string `json:"to_warehouse_id" validate:"required,uuid4"`
	Details         string `json:"details" validate:"max=500"`
}

func (h *Handler) handleAdjustment(w http.ResponseWriter, r *http.Request) {
	var req adjustmentRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	movement, err := h.service.AdjustStock(r.Context(), AdjustmentInput{
		ProductID:      req.ProductID,
		WarehouseID:    req.WarehouseID,
		QuantityChange: req.QuantityChange,
		Type:           MovementType(req.Type),
		Details:        req.Details,
		Actor:          shared.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, r, "post adjustment", err)
		return
	}
	h.metrics.RecordMovement(string(movement.Type))
	httpx.JSON(w, http.StatusCreated, movement)
}

func (h *Handler) handleTransfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	exit, entry, err := h.service.TransferStock(r.Context(), TransferInput{
		ProductID:       req.ProductID,
		FromWarehouseID: req.FromWarehouseID,
		ToWarehouseID:   req.ToWarehouseID,
		Quantity:        req.Quantity,
		Details:         req.Details,
		Actor:           shared.ActorFromContext(r.Context()),
	})
	if err != nil {
		h.respondError(w, r, "post transfer", err)
		return
	}
	h.metrics.RecordMovement(string(MovementExit))
	h.metrics.RecordMovement(string(MovementEntry))
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"transaction_id": exit.TransactionID,
		"movements":      []Movement{exit, entry},
	})
}

func (h *Handler) handleBulkTransfer(w http.ResponseWriter, r *http.Request) {
	var req bulkTransferRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input := BulkTransferInput{
		FromWarehouseID: req.FromWarehouseID,
		ToWarehouseID:   req.ToWarehouseID,
		Details:         req.Details,
		Actor:           shared.ActorFromContext(r.Context()),
	}
	for _, item := range req.Items {
		input.Items = append(input.Items, BulkTransferItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	movements, err := h.service.BulkTransferStock(r.Context(), input)
	if err != nil {
		h.respondError(w, r, "post bulk transfer", err)
		return
	}
	for _, m := range movements {
		h.metrics.RecordMovement(string(m.Type))
	}
	txID := ""
	if len(movements) > 0 {
		txID = movements[0].TransactionID
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"transaction_id": txID,
		"movements":      movements,
	})
}

func (h *Handler) handleStockQuery(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	productID := q.Get("product_id")
	warehouseID := q.Get("warehouse_id")
	switch {
	case productID != "" && warehouseID != "":
		qty, err := h.service.QuantityOf(r.Context(), productID, warehouseID)
		if err != nil {
			h.respondError(w, r, "stock query", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"product_id": productID, "warehouse_id": warehouseID, "quantity": qty})
	case productID != "":
		total, err := h.service.TotalOfProduct(r.Context(), productID)
		if err != nil {
			h.respondError(w, r, "stock query", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"product_id": productID, "total": total})
	case warehouseID != "":
		total, err := h.service.TotalOfWarehouse(r.Context(), warehouseID)
		if err != nil {
			h.respondError(w, r, "stock query", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"warehouse_id": warehouseID, "total": total})
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "product_id or warehouse_id required")
	}
}

func (h *Handler) handleLedger(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.LedgerSnapshot(r.Context())
	if err != nil {
		h.respondError(w, r, "ledger snapshot", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) handleMovements(w http.ResponseWriter, r *http.Request) {
	filter := movementFilterFromQuery(r)
	movements, err := h.service.ListMovements(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, "list movements", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"movements": movements})
}

// maxMovementPage caps how much of the log one request may read.
const maxMovementPage = 500

func movementFilterFromQuery(r *http.Request) MovementFilter {
	q := r.URL.Query()
	filter := MovementFilter{
		ProductID:     q.Get("product_id"),
		WarehouseID:   q.Get("warehouse_id"),
		TransactionID: q.Get("transaction_id"),
		Limit:         maxMovementPage,
	}
	if t := q.Get("type"); t != "" {
		filter.Type = MovementType(t)
	}
	if limit, err := strconv.Atoi(q.Get("limit")); err == nil && limit > 0 && limit < maxMovementPage {
		filter.Limit = limit
	}
	return filter
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidOperation):
		httpx.Problem(w, http.StatusBadRequest, "Invalid Operation", err.Error())
	case errors.Is(err, ErrInsufficientStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Insufficient Stock", err.Error())
	default:
		h.logger.Error(op, slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
