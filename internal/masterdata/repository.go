package masterdata

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bodega-ims/bodega-ims/internal/shared"
)

// RepositoryPort abstracts catalog storage for the service.
type RepositoryPort interface {
	InsertProduct(ctx context.Context, p Product) error
	UpdateProduct(ctx context.Context, p Product) error
	DeleteProduct(ctx context.Context, id string) error
	ProductByID(ctx context.Context, id string) (Product, error)
	ProductBySKU(ctx context.Context, sku string) (Product, error)
	ListProducts(ctx context.Context, search string) ([]Product, error)

	InsertWarehouse(ctx context.Context, w Warehouse) error
	UpdateWarehouse(ctx context.Context, w Warehouse) error
	DeleteWarehouse(ctx context.Context, id string) error
	WarehouseByID(ctx context.Context, id string) (Warehouse, error)
	ListWarehouses(ctx context.Context) ([]Warehouse, error)

	InsertSupplier(ctx context.Context, s Supplier) error
	UpdateSupplier(ctx context.Context, s Supplier) error
	DeleteSupplier(ctx context.Context, id string) error
	SupplierByID(ctx context.Context, id string) (Supplier, error)
	ListSuppliers(ctx context.Context) ([]Supplier, error)

	InsertCompany(ctx context.Context, c Company) error
	UpdateCompany(ctx context.Context, c Company) error
	DeleteCompany(ctx context.Context, id string) error
	CompanyByID(ctx context.Context, id string) (Company, error)
	ListCompanies(ctx context.Context) ([]Company, error)
}

// Repository is the authoritative in-memory catalog store.
type Repository struct {
	mu         sync.RWMutex
	products   map[string]Product
	skuIndex   map[string]string
	warehouses map[string]Warehouse
	suppliers  map[string]Supplier
	companies  map[string]Company
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{
		products:   make(map[string]Product),
		skuIndex:   make(map[string]string),
		warehouses: make(map[string]Warehouse),
		suppliers:  make(map[string]Supplier),
		companies:  make(map[string]Company),
	}
}

func (r *Repository) InsertProduct(_ context.Context, p Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeSKU(p.SKU)
	if _, exists := r.skuIndex[key]; exists {
		return fmt.Errorf("sku %s: %w", p.SKU, shared.ErrDuplicate)
	}
	r.products[p.ID] = p
	r.skuIndex[key] = p.ID
	return nil
}

func (r *Repository) UpdateProduct(_ context.Context, p Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.products[p.ID]
	if !ok {
		return fmt.Errorf("product %s: %w", p.ID, shared.ErrNotFound)
	}
	newKey := normalizeSKU(p.SKU)
	oldKey := normalizeSKU(existing.SKU)
	if newKey != oldKey {
		if _, taken := r.skuIndex[newKey]; taken {
			return fmt.Errorf("sku %s: %w", p.SKU, shared.ErrDuplicate)
		}
		delete(r.skuIndex, oldKey)
		r.skuIndex[newKey] = p.ID
	}
	r.products[p.ID] = p
	return nil
}

func (r *Repository) DeleteProduct(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product %s: %w", id, shared.ErrNotFound)
	}
	delete(r.skuIndex, normalizeSKU(p.SKU))
	delete(r.products, id)
	return nil
}

func (r *Repository) ProductByID(_ context.Context, id string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.products[id]
	if !ok {
		return Product{}, fmt.Errorf("product %s: %w", id, shared.ErrNotFound)
	}
	return p, nil
}

func (r *Repository) ProductBySKU(_ context.Context, sku string) (Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.skuIndex[normalizeSKU(sku)]
	if !ok {
		return Product{}, fmt.Errorf("sku %s: %w", sku, shared.ErrNotFound)
	}
	return r.products[id], nil
}

// ListProducts returns products sorted by name. An empty search returns
// everything; otherwise name and SKU are matched case-insensitively.
func (r *Repository) ListProducts(_ context.Context, search string) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	needle := strings.ToLower(strings.TrimSpace(search))
	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		if needle != "" &&
			!strings.Contains(strings.ToLower(p.Name), needle) &&
			!strings.Contains(strings.ToLower(p.SKU), needle) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Repository) InsertWarehouse(_ context.Context, w Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.warehouses[w.ID] = w
	return nil
}

func (r *Repository) UpdateWarehouse(_ context.Context, w Warehouse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.warehouses[w.ID]; !ok {
		return fmt.Errorf("warehouse %s: %w", w.ID, shared.ErrNotFound)
	}
	r.warehouses[w.ID] = w
	return nil
}

func (r *Repository) DeleteWarehouse(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.warehouses[id]; !ok {
		return fmt.Errorf("warehouse %s: %w", id, shared.ErrNotFound)
	}
	delete(r.warehouses, id)
	return nil
}

func (r *Repository) WarehouseByID(_ context.Context, id string) (Warehouse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	w, ok := r.warehouses[id]
	if !ok {
		return Warehouse{}, fmt.Errorf("warehouse %s: %w", id, shared.ErrNotFound)
	}
	return w, nil
}

func (r *Repository) ListWarehouses(_ context.Context) ([]Warehouse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Warehouse, 0, len(r.warehouses))
	for _, w := range r.warehouses {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Repository) InsertSupplier(_ context.Context, s Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.suppliers[s.ID] = s
	return nil
}

func (r *Repository) UpdateSupplier(_ context.Context, s Supplier) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.suppliers[s.ID]; !ok {
		return fmt.Errorf("supplier %s: %w", s.ID, shared.ErrNotFound)
	}
	r.suppliers[s.ID] = s
	return nil
}

func (r *Repository) DeleteSupplier(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.suppliers[id]; !ok {
		return fmt.Errorf("supplier %s: %w", id, shared.ErrNotFound)
	}
	delete(r.suppliers, id)
	return nil
}

func (r *Repository) SupplierByID(_ context.Context, id string) (Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.suppliers[id]
	if !ok {
		return Supplier{}, fmt.Errorf("supplier %s: %w", id, shared.ErrNotFound)
	}
	return s, nil
}

func (r *Repository) ListSuppliers(_ context.Context) ([]Supplier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Supplier, 0, len(r.suppliers))
	for _, s := range r.suppliers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *Repository) InsertCompany(_ context.Context, c Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.companies[c.ID] = c
	return nil
}

func (r *Repository) UpdateCompany(_ context.Context, c Company) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[c.ID]; !ok {
		return fmt.Errorf("company %s: %w", c.ID, shared.ErrNotFound)
	}
	r.companies[c.ID] = c
	return nil
}

func (r *Repository) DeleteCompany(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.companies[id]; !ok {
		return fmt.Errorf("company %s: %w", id, shared.ErrNotFound)
	}
	delete(r.companies, id)
	return nil
}

func (r *Repository) CompanyByID(_ context.Context, id string) (Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.companies[id]
	if !ok {
		return Company{}, fmt.Errorf("company %s: %w", id, shared.ErrNotFound)
	}
	return c, nil
}

func (r *Repository) ListCompanies(_ context.Context) ([]Company, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Company, 0, len(r.companies))
	for _, c := range r.companies {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func normalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}
