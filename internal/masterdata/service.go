package masterdata

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bodega-ims/bodega-ims/internal/shared"
)

// LedgerPort is how the catalog talks to the stock ledger without owning
// it. Product creation and deletion leave traces in the movement log.
type LedgerPort interface {
	RecordProductCreation(ctx context.Context, productID, sku, name, actor string) error
	WriteOffProduct(ctx context.Context, productID, sku, name, actor string) error
	TotalOfProduct(ctx context.Context, productID string) (int64, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service implements catalog business logic.
type Service struct {
	repo   RepositoryPort
	ledger LedgerPort
	audit  AuditPort
	logger *slog.Logger
}

// NewService builds Service. ledger and audit may be nil.
func NewService(repo RepositoryPort, ledger LedgerPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, ledger: ledger, audit: audit, logger: logger}
}

// CreateProduct registers a product and appends its creation marker to the
// movement log. SKUs are unique catalog-wide.
func (s *Service) CreateProduct(ctx context.Context, input ProductInput, actor string) (Product, error) {
	if err := validateProductInput(input); err != nil {
		return Product{}, err
	}
	now := time.Now().UTC()
	product := Product{
		ID:                uuid.NewString(),
		SKU:               input.SKU,
		Name:              input.Name,
		Category:          input.Category,
		Description:       input.Description,
		Price:             input.Price,
		LowStockThreshold: input.LowStockThreshold,
		Images:            input.Images,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.InsertProduct(ctx, product); err != nil {
		return Product{}, err
	}
	if s.ledger != nil {
		if err := s.ledger.RecordProductCreation(ctx, product.ID, product.SKU, product.Name, actor); err != nil {
			s.logger.Warn("creation movement failed", slog.String("product_id", product.ID), slog.Any("error", err))
		}
	}
	s.recordAudit(ctx, actor, "product:create", product.ID, map[string]any{"sku": product.SKU})
	return product, nil
}

// UpdateProduct replaces the writable fields of an existing product.
func (s *Service) UpdateProduct(ctx context.Context, id string, input ProductInput, actor string) (Product, error) {
	if err := validateProductInput(input); err != nil {
		return Product{}, err
	}
	product, err := s.repo.ProductByID(ctx, id)
	if err != nil {
		return Product{}, err
	}
	product.SKU = input.SKU
	product.Name = input.Name
	product.Category = input.Category
	product.Description = input.Description
	product.Price = input.Price
	product.LowStockThreshold = input.LowStockThreshold
	product.Images = input.Images
	product.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateProduct(ctx, product); err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, actor, "product:update", product.ID, map[string]any{"sku": product.SKU})
	return product, nil
}

// DeleteProduct removes a product from the catalog. Remaining stock at any
// warehouse is written off through the ledger first, so the movement log
// accounts for the disappearance.
func (s *Service) DeleteProduct(ctx context.Context, id, actor string) error {
	product, err := s.repo.ProductByID(ctx, id)
	if err != nil {
		return err
	}
	if s.ledger != nil {
		if err := s.ledger.WriteOffProduct(ctx, product.ID, product.SKU, product.Name, actor); err != nil {
			return fmt.Errorf("write off product %s: %w", product.SKU, err)
		}
	}
	if err := s.repo.DeleteProduct(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "product:delete", product.ID, map[string]any{"sku": product.SKU})
	return nil
}

// GetProduct fetches one product by ID.
func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	return s.repo.ProductByID(ctx, id)
}

// GetProductBySKU fetches one product by SKU.
func (s *Service) GetProductBySKU(ctx context.Context, sku string) (Product, error) {
	return s.repo.ProductBySKU(ctx, sku)
}

// ListProducts lists the catalog, optionally filtered by a search term.
func (s *Service) ListProducts(ctx context.Context, search string) ([]Product, error) {
	return s.repo.ListProducts(ctx, search)
}

// ListLowStock reports products whose total across warehouses sits at or
// below their threshold. Products with a zero threshold never alert.
func (s *Service) ListLowStock(ctx context.Context) ([]LowStockItem, error) {
	if s.ledger == nil {
		return nil, nil
	}
	products, err := s.repo.ListProducts(ctx, "")
	if err != nil {
		return nil, err
	}
	var items []LowStockItem
	for _, p := range products {
		if p.LowStockThreshold <= 0 {
			continue
		}
		total, err := s.ledger.TotalOfProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		if total <= p.LowStockThreshold {
			items = append(items, LowStockItem{Product: p, Total: total, Shortage: p.LowStockThreshold - total})
		}
	}
	return items, nil
}

// CreateWarehouse registers a warehouse.
func (s *Service) CreateWarehouse(ctx context.Context, input WarehouseInput, actor string) (Warehouse, error) {
	if input.Name == "" {
		return Warehouse{}, fmt.Errorf("%w: warehouse name is required", shared.ErrValidation)
	}
	now := time.Now().UTC()
	warehouse := Warehouse{ID: uuid.NewString(), Name: input.Name, Location: input.Location, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.InsertWarehouse(ctx, warehouse); err != nil {
		return Warehouse{}, err
	}
	s.recordAudit(ctx, actor, "warehouse:create", warehouse.ID, map[string]any{"name": warehouse.Name})
	return warehouse, nil
}

// UpdateWarehouse replaces the writable fields of an existing warehouse.
func (s *Service) UpdateWarehouse(ctx context.Context, id string, input WarehouseInput, actor string) (Warehouse, error) {
	if input.Name == "" {
		return Warehouse{}, fmt.Errorf("%w: warehouse name is required", shared.ErrValidation)
	}
	warehouse, err := s.repo.WarehouseByID(ctx, id)
	if err != nil {
		return Warehouse{}, err
	}
	warehouse.Name = input.Name
	warehouse.Location = input.Location
	warehouse.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateWarehouse(ctx, warehouse); err != nil {
		return Warehouse{}, err
	}
	s.recordAudit(ctx, actor, "warehouse:update", warehouse.ID, map[string]any{"name": warehouse.Name})
	return warehouse, nil
}

// DeleteWarehouse removes a warehouse from the catalog.
func (s *Service) DeleteWarehouse(ctx context.Context, id, actor string) error {
	if err := s.repo.DeleteWarehouse(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "warehouse:delete", id, nil)
	return nil
}

// GetWarehouse fetches one warehouse by ID.
func (s *Service) GetWarehouse(ctx context.Context, id string) (Warehouse, error) {
	return s.repo.WarehouseByID(ctx, id)
}

// ListWarehouses lists all warehouses.
func (s *Service) ListWarehouses(ctx context.Context) ([]Warehouse, error) {
	return s.repo.ListWarehouses(ctx)
}

// CreateSupplier registers a supplier.
func (s *Service) CreateSupplier(ctx context.Context, input SupplierInput, actor string) (Supplier, error) {
	if input.Name == "" {
		return Supplier{}, fmt.Errorf("%w: supplier name is required", shared.ErrValidation)
	}
	now := time.Now().UTC()
	supplier := Supplier{
		ID:          uuid.NewString(),
		Name:        input.Name,
		ContactName: input.ContactName,
		Email:       input.Email,
		Phone:       input.Phone,
		Address:     input.Address,
		IsActive:    input.IsActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.InsertSupplier(ctx, supplier); err != nil {
		return Supplier{}, err
	}
	s.recordAudit(ctx, actor, "supplier:create", supplier.ID, map[string]any{"name": supplier.Name})
	return supplier, nil
}

// UpdateSupplier replaces the writable fields of an existing supplier.
func (s *Service) UpdateSupplier(ctx context.Context, id string, input SupplierInput, actor string) (Supplier, error) {
	if input.Name == "" {
		return Supplier{}, fmt.Errorf("%w: supplier name is required", shared.ErrValidation)
	}
	supplier, err := s.repo.SupplierByID(ctx, id)
	if err != nil {
		return Supplier{}, err
	}
	supplier.Name = input.Name
	supplier.ContactName = input.ContactName
	supplier.Email = input.Email
	supplier.Phone = input.Phone
	supplier.Address = input.Address
	supplier.IsActive = input.IsActive
	supplier.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateSupplier(ctx, supplier); err != nil {
		return Supplier{}, err
	}
	s.recordAudit(ctx, actor, "supplier:update", supplier.ID, map[string]any{"name": supplier.Name})
	return supplier, nil
}

// DeleteSupplier removes a supplier.
func (s *Service) DeleteSupplier(ctx context.Context, id, actor string) error {
	if err := s.repo.DeleteSupplier(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "supplier:delete", id, nil)
	return nil
}

// GetSupplier fetches one supplier by ID.
func (s *Service) GetSupplier(ctx context.Context, id string) (Supplier, error) {
	return s.repo.SupplierByID(ctx, id)
}

// ListSuppliers lists all suppliers.
func (s *Service) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx)
}

// CreateCompany registers an issuing company.
func (s *Service) CreateCompany(ctx context.Context, input CompanyInput, actor string) (Company, error) {
	if input.Name == "" {
		return Company{}, fmt.Errorf("%w: company name is required", shared.ErrValidation)
	}
	now := time.Now().UTC()
	company := Company{ID: uuid.NewString(), Name: input.Name, TaxID: input.TaxID, Address: input.Address, CreatedAt: now, UpdatedAt: now}
	if err := s.repo.InsertCompany(ctx, company); err != nil {
		return Company{}, err
	}
	s.recordAudit(ctx, actor, "company:create", company.ID, map[string]any{"name": company.Name})
	return company, nil
}

// UpdateCompany replaces the writable fields of an existing company.
func (s *Service) UpdateCompany(ctx context.Context, id string, input CompanyInput, actor string) (Company, error) {
	if input.Name == "" {
		return Company{}, fmt.Errorf("%w: company name is required", shared.ErrValidation)
	}
	company, err := s.repo.CompanyByID(ctx, id)
	if err != nil {
		return Company{}, err
	}
	company.Name = input.Name
	company.TaxID = input.TaxID
	company.Address = input.Address
	company.UpdatedAt = time.Now().UTC()
	if err := s.repo.UpdateCompany(ctx, company); err != nil {
		return Company{}, err
	}
	s.recordAudit(ctx, actor, "company:update", company.ID, map[string]any{"name": company.Name})
	return company, nil
}

// DeleteCompany removes a company.
func (s *Service) DeleteCompany(ctx context.Context, id, actor string) error {
	if err := s.repo.DeleteCompany(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "company:delete", id, nil)
	return nil
}

// GetCompany fetches one company by ID.
func (s *Service) GetCompany(ctx context.Context, id string) (Company, error) {
	return s.repo.CompanyByID(ctx, id)
}

// ListCompanies lists all companies.
func (s *Service) ListCompanies(ctx context.Context) ([]Company, error) {
	return s.repo.ListCompanies(ctx)
}

func validateProductInput(input ProductInput) error {
	if input.SKU == "" {
		return fmt.Errorf("%w: sku is required", shared.ErrValidation)
	}
	if input.Name == "" {
		return fmt.Errorf("%w: product name is required", shared.ErrValidation)
	}
	if input.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", shared.ErrValidation)
	}
	if input.LowStockThreshold < 0 {
		return fmt.Errorf("%w: low stock threshold must not be negative", shared.ErrValidation)
	}
	if len(input.Images) > MaxProductImages {
		return fmt.Errorf("%w: %s", shared.ErrValidation, errTooManyImages)
	}
	return nil
}

func (s *Service) recordAudit(ctx context.Context, actor, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor, Action: action, Entity: "masterdata", EntityID: entityID, Meta: meta})
}
