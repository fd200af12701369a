package purchasing

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/bodega-ims/bodega-ims/internal/platform/httpx"
	"github.com/bodega-ims/bodega-ims/internal/shared"
)

// Handler wires HTTP endpoints for the purchasing module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs purchasing handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers purchasing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/orders", func(r chi.Router) {
		r.Get("/", h.handleList)
		r.Post("/", h.handleCreate)
		r.Get("/{id}", h.handleGet)
		r.Put("/{id}", h.handleUpdate)
		r.Post("/{id}/issue", h.handleIssue)
		r.Post("/{id}/cancel", h.handleCancel)
		r.Post("/{id}/receive", h.handleReceive)
	})
}

type orderItemRequest struct {
	ProductID string  `json:"product_id" validate:"required,uuid4"`
	Quantity  int64   `json:"quantity" validate:"required,gt=0"`
	Price     *string `json:"price" validate:"omitempty"`
}

type orderRequest struct {
	SupplierID             string             `json:"supplier_id" validate:"required,uuid4"`
	IssuingCompanyID       string             `json:"issuing_company_id" validate:"required,uuid4"`
	DestinationWarehouseID string             `json:"destination_warehouse_id" validate:"required,uuid4"`
	Items                  []orderItemRequest `json:"items" validate:"required,min=1,dive"`
	Notes                  string             `json:"notes" validate:"max=2000"`
	ExpectedDelivery       string             `json:"expected_delivery" validate:"omitempty,datetime=2006-01-02"`
}

func (req orderRequest) toInput() (OrderInput, error) {
	input := OrderInput{
		SupplierID:             req.SupplierID,
		IssuingCompanyID:       req.IssuingCompanyID,
		DestinationWarehouseID: req.DestinationWarehouseID,
		Notes:                  req.Notes,
		Items:                  make([]OrderItemInput, len(req.Items)),
	}
	if req.ExpectedDelivery != "" {
		delivery, err := time.Parse("2006-01-02", req.ExpectedDelivery)
		if err != nil {
			return OrderInput{}, err
		}
		input.ExpectedDelivery = &delivery
	}
	for i, item := range req.Items {
		input.Items[i] = OrderItemInput{ProductID: item.ProductID, Quantity: item.Quantity}
		if item.Price != nil {
			price, err := decimal.NewFromString(*item.Price)
			if err != nil {
				return OrderInput{}, err
			}
			input.Items[i].Price = price
			input.Items[i].PriceSet = true
		}
	}
	return input, nil
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "price: "+err.Error())
		return
	}
	po, err := h.service.CreateOrder(r.Context(), input, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "create order", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, po)
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req orderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	input, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "price: "+err.Error())
		return
	}
	po, err := h.service.UpdateOrder(r.Context(), chi.URLParam(r, "id"), input, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "update order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) handleIssue(w http.ResponseWriter, r *http.Request) {
	po, err := h.service.IssueOrder(r.Context(), chi.URLParam(r, "id"), shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "issue order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	po, err := h.service.CancelOrder(r.Context(), chi.URLParam(r, "id"), shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "cancel order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) handleReceive(w http.ResponseWriter, r *http.Request) {
	po, movements, err := h.service.ReceiveOrder(r.Context(), chi.URLParam(r, "id"), shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "receive order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"order": po, "movements": movements})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	po, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, "get order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, po)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := OrderFilter{SupplierID: q.Get("supplier_id")}
	if status := q.Get("status"); status != "" {
		filter.Status = POStatus(status)
	}
	orders, err := h.service.ListOrders(r.Context(), filter)
	if err != nil {
		h.respondError(w, r, "list orders", err)
		return
	}
	page, perPage := shared.PageParams(q)
	p := shared.NewPagination(page, perPage, len(orders))
	from, to := p.Slice()
	httpx.JSON(w, http.StatusOK, map[string]any{"orders": orders[from:to], "pagination": p})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, ErrInvalidState):
		httpx.Problem(w, http.StatusConflict, "Invalid State", err.Error())
	default:
		h.logger.Debug(op, slog.String("path", r.URL.Path), slog.Any("error", err))
		httpx.RespondError(w, err)
	}
}
