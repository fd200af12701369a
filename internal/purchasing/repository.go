package purchasing

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/bodega-ims/bodega-ims/internal/shared"
)

// RepositoryPort abstracts order storage for the service.
type RepositoryPort interface {
	Insert(ctx context.Context, po PurchaseOrder) error
	Update(ctx context.Context, po PurchaseOrder) error
	ByID(ctx context.Context, id string) (PurchaseOrder, error)
	List(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error)
	NextSequence(ctx context.Context) int64
}

// Repository is the authoritative in-memory order store.
type Repository struct {
	mu     sync.RWMutex
	orders map[string]PurchaseOrder
	seq    int64
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{orders: make(map[string]PurchaseOrder)}
}

func (r *Repository) Insert(_ context.Context, po PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[po.ID]; exists {
		return fmt.Errorf("purchase order %s: %w", po.ID, shared.ErrDuplicate)
	}
	r.orders[po.ID] = clonePO(po)
	return nil
}

func (r *Repository) Update(_ context.Context, po PurchaseOrder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.orders[po.ID]; !exists {
		return fmt.Errorf("purchase order %s: %w", po.ID, shared.ErrNotFound)
	}
	r.orders[po.ID] = clonePO(po)
	return nil
}

func (r *Repository) ByID(_ context.Context, id string) (PurchaseOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	po, ok := r.orders[id]
	if !ok {
		return PurchaseOrder{}, fmt.Errorf("purchase order %s: %w", id, shared.ErrNotFound)
	}
	return clonePO(po), nil
}

// List returns matching orders, newest first.
func (r *Repository) List(_ context.Context, filter OrderFilter) ([]PurchaseOrder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]PurchaseOrder, 0, len(r.orders))
	for _, po := range r.orders {
		if filter.Status != "" && po.Status != filter.Status {
			continue
		}
		if filter.SupplierID != "" && po.SupplierID != filter.SupplierID {
			continue
		}
		out = append(out, clonePO(po))
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].OrderNumber > out[j].OrderNumber
	})
	return out, nil
}

// NextSequence hands out order numbers.
func (r *Repository) NextSequence(_ context.Context) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	return r.seq
}

// clonePO keeps callers from mutating stored items through the shared slice.
func clonePO(po PurchaseOrder) PurchaseOrder {
	items := make([]POItem, len(po.Items))
	copy(items, po.Items)
	po.Items = items
	return po
}
