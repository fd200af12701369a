package inventory

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// RepositoryPort abstracts repository usage for service.
type RepositoryPort interface {
	WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error
	QuantityOf(ctx context.Context, productID, warehouseID string) (int64, error)
	TotalOfProduct(ctx context.Context, productID string) (int64, error)
	TotalOfWarehouse(ctx context.Context, warehouseID string) (int64, error)
	LedgerSnapshot(ctx context.Context) ([]LedgerEntry, error)
	ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error)
}

// TxRepository exposes the mutations available inside one atomic unit.
type TxRepository interface {
	Quantity(ctx context.Context, productID, warehouseID string) (int64, error)
	SetQuantity(ctx context.Context, productID, warehouseID string, qty int64) error
	EntriesOfProduct(ctx context.Context, productID string) ([]LedgerEntry, error)
	RemoveProduct(ctx context.Context, productID string) error
	AppendMovement(ctx context.Context, m Movement) error
}

// Repository is the authoritative in-memory ledger and movement log.
// A single mutex serialises transactions, so every WithTx body observes and
// produces a consistent ledger+log pair; writes are staged and applied only
// when the body returns nil, which keeps failed operations invisible.
type Repository struct {
	mu        sync.RWMutex
	ledger    map[string]int64
	movements []Movement
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{ledger: make(map[string]int64)}
}

func ledgerKey(productID, warehouseID string) string {
	return productID + "\x00" + warehouseID
}

func splitLedgerKey(key string) (productID, warehouseID string) {
	parts := strings.SplitN(key, "\x00", 2)
	if len(parts) != 2 {
		return key, ""
	}
	return parts[0], parts[1]
}

type txState struct {
	repo     *Repository
	staged   map[string]int64
	removed  map[string]bool
	appended []Movement
}

// WithTx runs fn against staged state and commits on success.
func (r *Repository) WithTx(ctx context.Context, fn func(context.Context, TxRepository) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx := &txState{repo: r, staged: make(map[string]int64), removed: make(map[string]bool)}
	if err := fn(ctx, tx); err != nil {
		return err
	}

	for key := range tx.removed {
		for existing := range r.ledger {
			if p, _ := splitLedgerKey(existing); p == key {
				delete(r.ledger, existing)
			}
		}
	}
	for key, qty := range tx.staged {
		r.ledger[key] = qty
	}
	r.movements = append(r.movements, tx.appended...)
	return nil
}

func (tx *txState) Quantity(_ context.Context, productID, warehouseID string) (int64, error) {
	key := ledgerKey(productID, warehouseID)
	if qty, ok := tx.staged[key]; ok {
		return qty, nil
	}
	return tx.repo.ledger[key], nil
}

func (tx *txState) SetQuantity(_ context.Context, productID, warehouseID string, qty int64) error {
	tx.staged[ledgerKey(productID, warehouseID)] = qty
	return nil
}

func (tx *txState) EntriesOfProduct(_ context.Context, productID string) ([]LedgerEntry, error) {
	seen := make(map[string]bool)
	var entries []LedgerEntry
	for key, qty := range tx.staged {
		p, w := splitLedgerKey(key)
		if p != productID {
			continue
		}
		seen[w] = true
		entries = append(entries, LedgerEntry{ProductID: p, WarehouseID: w, Quantity: qty})
	}
	for key, qty := range tx.repo.ledger {
		p, w := splitLedgerKey(key)
		if p != productID || seen[w] {
			continue
		}
		entries = append(entries, LedgerEntry{ProductID: p, WarehouseID: w, Quantity: qty})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].WarehouseID < entries[j].WarehouseID })
	return entries, nil
}

func (tx *txState) RemoveProduct(_ context.Context, productID string) error {
	tx.removed[productID] = true
	for key := range tx.staged {
		if p, _ := splitLedgerKey(key); p == productID {
			delete(tx.staged, key)
		}
	}
	return nil
}

func (tx *txState) AppendMovement(_ context.Context, m Movement) error {
	tx.appended = append(tx.appended, m)
	return nil
}

// QuantityOf answers the current quantity for one (product, warehouse) pair.
// A pair that was never touched reads as zero.
func (r *Repository) QuantityOf(_ context.Context, productID, warehouseID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.ledger[ledgerKey(productID, warehouseID)], nil
}

// TotalOfProduct sums a product's quantity across all warehouses.
func (r *Repository) TotalOfProduct(_ context.Context, productID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total int64
	for key, qty := range r.ledger {
		if p, _ := splitLedgerKey(key); p == productID {
			total += qty
		}
	}
	return total, nil
}

// TotalOfWarehouse sums all product quantities held at one warehouse.
func (r *Repository) TotalOfWarehouse(_ context.Context, warehouseID string) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var total int64
	for key, qty := range r.ledger {
		if _, w := splitLedgerKey(key); w == warehouseID {
			total += qty
		}
	}
	return total, nil
}

// LedgerSnapshot returns every ledger entry, sorted for stable output.
func (r *Repository) LedgerSnapshot(_ context.Context) ([]LedgerEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entries := make([]LedgerEntry, 0, len(r.ledger))
	for key, qty := range r.ledger {
		p, w := splitLedgerKey(key)
		entries = append(entries, LedgerEntry{ProductID: p, WarehouseID: w, Quantity: qty})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].ProductID != entries[j].ProductID {
			return entries[i].ProductID < entries[j].ProductID
		}
		return entries[i].WarehouseID < entries[j].WarehouseID
	})
	return entries, nil
}

// ListMovements returns matching log entries, most recent first. Append
// order defines chronology; the reversal here is presentation only.
func (r *Repository) ListMovements(_ context.Context, filter MovementFilter) ([]Movement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Movement
	for i := len(r.movements) - 1; i >= 0; i-- {
		m := r.movements[i]
		if filter.ProductID != "" && m.ProductID != filter.ProductID {
			continue
		}
		if filter.WarehouseID != "" && m.WarehouseID != filter.WarehouseID {
			continue
		}
		if filter.TransactionID != "" && m.TransactionID != filter.TransactionID {
			continue
		}
		if filter.Type != "" && m.Type != filter.Type {
			continue
		}
		out = append(out, m)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}
