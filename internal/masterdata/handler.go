package masterdata

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/bodega-ims/bodega-ims/internal/platform/httpx"
	"github.com/bodega-ims/bodega-ims/internal/shared"
)

// Handler wires HTTP endpoints for the catalog module.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
}

// NewHandler constructs masterdata handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validator: validator.New()}
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", h.handleListProducts)
		r.Post("/", h.handleCreateProduct)
		r.Get("/low-stock", h.handleLowStock)
		r.Get("/{id}", h.handleGetProduct)
		r.Put("/{id}", h.handleUpdateProduct)
		r.Delete("/{id}", h.handleDeleteProduct)
	})
	r.Route("/warehouses", func(r chi.Router) {
		r.Get("/", h.handleListWarehouses)
		r.Post("/", h.handleCreateWarehouse)
		r.Get("/{id}", h.handleGetWarehouse)
		r.Put("/{id}", h.handleUpdateWarehouse)
		r.Delete("/{id}", h.handleDeleteWarehouse)
	})
	r.Route("/suppliers", func(r chi.Router) {
		r.Get("/", h.handleListSuppliers)
		r.Post("/", h.handleCreateSupplier)
		r.Get("/{id}", h.handleGetSupplier)
		r.Put("/{id}", h.handleUpdateSupplier)
		r.Delete("/{id}", h.handleDeleteSupplier)
	})
	r.Route("/companies", func(r chi.Router) {
		r.Get("/", h.handleListCompanies)
		r.Post("/", h.handleCreateCompany)
		r.Get("/{id}", h.handleGetCompany)
		r.Put("/{id}", h.handleUpdateCompany)
		r.Delete("/{id}", h.handleDeleteCompany)
	})
}

type productRequest struct {
	SKU               string   `json:"sku" validate:"required,max=64"`
	Name              string   `json:"name" validate:"required,max=200"`
	Category          string   `json:"category" validate:"max=100"`
	Description       string   `json:"description" validate:"max=2000"`
	Price             string   `json:"price" validate:"required"`
	LowStockThreshold int64    `json:"low_stock_threshold" validate:"gte=0"`
	Images            []string `json:"images" validate:"max=4,dive,url"`
}

func (req productRequest) toInput() (ProductInput, error) {
	price, err := decimal.NewFromString(req.Price)
	if err != nil {
		return ProductInput{}, err
	}
	return ProductInput{
		SKU:               req.SKU,
		Name:              req.Name,
		Category:          req.Category,
		Description:       req.Description,
		Price:             price,
		LowStockThreshold: req.LowStockThreshold,
		Images:            req.Images,
	}, nil
}

type warehouseRequest struct {
	Name     string `json:"name" validate:"required,max=200"`
	Location string `json:"location" validate:"max=500"`
}

type supplierRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	ContactName string `json:"contact_name" validate:"max=200"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"max=50"`
	Address     string `json:"address" validate:"max=500"`
	IsActive    *bool  `json:"is_active"`
}

// toInput defaults omitted is_active to true so new suppliers are usable
// without an extra activation step.
func (req supplierRequest) toInput() SupplierInput {
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	return SupplierInput{
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		IsActive:    active,
	}
}

type companyRequest struct {
	Name    string `json:"name" validate:"required,max=200"`
	TaxID   string `json:"tax_id" validate:"max=50"`
	Address string `json:"address" validate:"max=500"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
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
	product, err := h.service.CreateProduct(r.Context(), input, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "create product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, product)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
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
	product, err := h.service.UpdateProduct(r.Context(), chi.URLParam(r, "id"), input, shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "update product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id"), shared.ActorFromContext(r.Context())); err != nil {
		h.respondError(w, r, "delete product", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	if sku := r.URL.Query().Get("sku"); sku != "" {
		product, err := h.service.GetProductBySKU(r.Context(), sku)
		if err != nil {
			h.respondError(w, r, "get product by sku", err)
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]any{"products": []Product{product}})
		return
	}
	products, err := h.service.ListProducts(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.respondError(w, r, "list products", err)
		return
	}
	page, perPage := shared.PageParams(r.URL.Query())
	p := shared.NewPagination(page, perPage, len(products))
	from, to := p.Slice()
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products[from:to], "pagination": p})
}

func (h *Handler) handleLowStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListLowStock(r.Context())
	if err != nil {
		h.respondError(w, r, "low stock report", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) handleCreateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req warehouseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	warehouse, err := h.service.CreateWarehouse(r.Context(), WarehouseInput(req), shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "create warehouse", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, warehouse)
}

func (h *Handler) handleUpdateWarehouse(w http.ResponseWriter, r *http.Request) {
	var req warehouseRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	warehouse, err := h.service.UpdateWarehouse(r.Context(), chi.URLParam(r, "id"), WarehouseInput(req), shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "update warehouse", err)
		return
	}
	httpx.JSON(w, http.StatusOK, warehouse)
}

func (h *Handler) handleDeleteWarehouse(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteWarehouse(r.Context(), chi.URLParam(r, "id"), shared.ActorFromContext(r.Context())); err != nil {
		h.respondError(w, r, "delete warehouse", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetWarehouse(w http.ResponseWriter, r *http.Request) {
	warehouse, err := h.service.GetWarehouse(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, "get warehouse", err)
		return
	}
	httpx.JSON(w, http.StatusOK, warehouse)
}

func (h *Handler) handleListWarehouses(w http.ResponseWriter, r *http.Request) {
	warehouses, err := h.service.ListWarehouses(r.Context())
	if err != nil {
		h.respondError(w, r, "list warehouses", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"warehouses": warehouses})
}

func (h *Handler) handleCreateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	supplier, err := h.service.CreateSupplier(r.Context(), req.toInput(), shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "create supplier", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, supplier)
}

func (h *Handler) handleUpdateSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	supplier, err := h.service.UpdateSupplier(r.Context(), chi.URLParam(r, "id"), req.toInput(), shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "update supplier", err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) handleDeleteSupplier(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteSupplier(r.Context(), chi.URLParam(r, "id"), shared.ActorFromContext(r.Context())); err != nil {
		h.respondError(w, r, "delete supplier", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetSupplier(w http.ResponseWriter, r *http.Request) {
	supplier, err := h.service.GetSupplier(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, "get supplier", err)
		return
	}
	httpx.JSON(w, http.StatusOK, supplier)
}

func (h *Handler) handleListSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.service.ListSuppliers(r.Context())
	if err != nil {
		h.respondError(w, r, "list suppliers", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"suppliers": suppliers})
}

func (h *Handler) handleCreateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	company, err := h.service.CreateCompany(r.Context(), CompanyInput(req), shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "create company", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, company)
}

func (h *Handler) handleUpdateCompany(w http.ResponseWriter, r *http.Request) {
	var req companyRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	company, err := h.service.UpdateCompany(r.Context(), chi.URLParam(r, "id"), CompanyInput(req), shared.ActorFromContext(r.Context()))
	if err != nil {
		h.respondError(w, r, "update company", err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) handleDeleteCompany(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteCompany(r.Context(), chi.URLParam(r, "id"), shared.ActorFromContext(r.Context())); err != nil {
		h.respondError(w, r, "delete company", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleGetCompany(w http.ResponseWriter, r *http.Request) {
	company, err := h.service.GetCompany(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondError(w, r, "get company", err)
		return
	}
	httpx.JSON(w, http.StatusOK, company)
}

func (h *Handler) handleListCompanies(w http.ResponseWriter, r *http.Request) {
	companies, err := h.service.ListCompanies(r.Context())
	if err != nil {
		h.respondError(w, r, "list companies", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"companies": companies})
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.logger.Debug(op, slog.String("path", r.URL.Path), slog.Any("error", err))
	httpx.RespondError(w, err)
}
