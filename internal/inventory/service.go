package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/bodega-ims/bodega-ims/internal/shared"
)

// ProductRef is the catalog snapshot denormalized onto movements.
type ProductRef struct {
	ID   string
	SKU  string
	Name string
}

// WarehouseRef identifies a warehouse for movement posting.
type WarehouseRef struct {
	ID   string
	Name string
}

// CatalogPort resolves products and warehouses. Implementations return
// shared.ErrNotFound for unknown IDs.
type CatalogPort interface {
	ProductRef(ctx context.Context, id string) (ProductRef, error)
	WarehouseRef(ctx context.Context, id string) (WarehouseRef, error)
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service is the movement engine. Every operation either commits its ledger
// deltas together with the matching log entries or leaves both untouched.
type Service struct {
	repo    RepositoryPort
	catalog CatalogPort
	audit   AuditPort
	exits   ExitHandler
	logger  *slog.Logger
}

// NewService builds Service. audit and exits may be nil.
func NewService(repo RepositoryPort, catalog CatalogPort, audit AuditPort, exits ExitHandler, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, catalog: catalog, audit: audit, exits: exits, logger: logger}
}

// AdjustStock posts a single manual movement at one warehouse. Removals
// exceeding the available quantity are rejected, never clamped.
func (s *Service) AdjustStock(ctx context.Context, input AdjustmentInput) (Movement, error) {
	if input.QuantityChange == 0 {
		return Movement{}, fmt.Errorf("%w: zero quantity adjustment", ErrInvalidOperation)
	}
	switch input.Type {
	case MovementEntry:
		if input.QuantityChange < 0 {
			return Movement{}, fmt.Errorf("%w: entry requires positive quantity", ErrInvalidOperation)
		}
	case MovementExit:
		if input.QuantityChange > 0 {
			return Movement{}, fmt.Errorf("%w: exit requires negative quantity", ErrInvalidOperation)
		}
	case MovementAdjustment:
	default:
		return Movement{}, fmt.Errorf("%w: movement type %q not postable", ErrInvalidOperation, input.Type)
	}

	product, warehouse, err := s.resolveRefs(ctx, input.ProductID, input.WarehouseID)
	if err != nil {
		return Movement{}, err
	}

	var movement Movement
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		var txErr error
		movement, txErr = s.applyDelta(ctx, tx, product, warehouse, input.QuantityChange, input.Type, input.Details, input.Actor, "")
		return txErr
	})
	if err != nil {
		return Movement{}, err
	}

	s.recordAudit(ctx, input.Actor, fmt.Sprintf("stock:%s", input.Type), movement.ID, map[string]any{
		"product_id":   product.ID,
		"warehouse_id": warehouse.ID,
		"qty_change":   input.QuantityChange,
	})
	s.publishExit(ctx, movement)
	return movement, nil
}

// TransferStock moves stock between two warehouses as one EXIT+ENTRY pair
// sharing a transaction ID. The source is checked before any mutation.
func (s *Service) TransferStock(ctx context.Context, input TransferInput) (Movement, Movement, error) {
	if input.Quantity <= 0 {
		return Movement{}, Movement{}, fmt.Errorf("%w: transfer quantity must be positive", ErrInvalidOperation)
	}
	if input.FromWarehouseID == input.ToWarehouseID {
		return Movement{}, Movement{}, fmt.Errorf("%w: source and destination warehouse must differ", ErrInvalidOperation)
	}

	product, err := s.catalog.ProductRef(ctx, input.ProductID)
	if err != nil {
		return Movement{}, Movement{}, err
	}
	src, err := s.catalog.WarehouseRef(ctx, input.FromWarehouseID)
	if err != nil {
		return Movement{}, Movement{}, err
	}
	dst, err := s.catalog.WarehouseRef(ctx, input.ToWarehouseID)
	if err != nil {
		return Movement{}, Movement{}, err
	}

	txID := uuid.NewString()
	var exit, entry Movement
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		available, err := tx.Quantity(ctx, product.ID, src.ID)
		if err != nil {
			return err
		}
		if available < input.Quantity {
			return fmt.Errorf("%w: %d available at %s, %d requested", ErrInsufficientStock, available, src.Name, input.Quantity)
		}
		exit, err = s.applyDelta(ctx, tx, product, src, -input.Quantity, MovementExit, transferDetails("to", dst.Name, input.Details), input.Actor, txID)
		if err != nil {
			return err
		}
		entry, err = s.applyDelta(ctx, tx, product, dst, input.Quantity, MovementEntry, transferDetails("from", src.Name, input.Details), input.Actor, txID)
		return err
	})
	if err != nil {
		return Movement{}, Movement{}, err
	}

	s.recordAudit(ctx, input.Actor, "stock:TRANSFER", txID, map[string]any{
		"product_id": product.ID,
		"from":       src.ID,
		"to":         dst.ID,
		"qty":        input.Quantity,
	})
	return exit, entry, nil
}

// BulkTransferStock transfers several products between the same two
// warehouses. Every line is validated against source stock before any line
// is applied; the whole batch shares one transaction ID.
func (s *Service) BulkTransferStock(ctx context.Context, input BulkTransferInput) ([]Movement, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: bulk transfer requires at least one item", ErrInvalidOperation)
	}
	if input.FromWarehouseID == input.ToWarehouseID {
		return nil, fmt.Errorf("%w: source and destination warehouse must differ", ErrInvalidOperation)
	}

	src, err := s.catalog.WarehouseRef(ctx, input.FromWarehouseID)
	if err != nil {
		return nil, err
	}
	dst, err := s.catalog.WarehouseRef(ctx, input.ToWarehouseID)
	if err != nil {
		return nil, err
	}
	products := make([]ProductRef, len(input.Items))
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: transfer quantity must be positive", ErrInvalidOperation)
		}
		if products[i], err = s.catalog.ProductRef(ctx, item.ProductID); err != nil {
			return nil, err
		}
	}

	txID := uuid.NewString()
	movements := make([]Movement, 0, 2*len(input.Items))
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for i, item := range input.Items {
			available, err := tx.Quantity(ctx, item.ProductID, src.ID)
			if err != nil {
				return err
			}
			if available < item.Quantity {
				return fmt.Errorf("%w: %d available of %s at %s, %d requested", ErrInsufficientStock, available, products[i].SKU, src.Name, item.Quantity)
			}
		}
		for i, item := range input.Items {
			exit, err := s.applyDelta(ctx, tx, products[i], src, -item.Quantity, MovementExit, transferDetails("to", dst.Name, input.Details), input.Actor, txID)
			if err != nil {
				return err
			}
			entry, err := s.applyDelta(ctx, tx, products[i], dst, item.Quantity, MovementEntry, transferDetails("from", src.Name, input.Details), input.Actor, txID)
			if err != nil {
				return err
			}
			movements = append(movements, exit, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, input.Actor, "stock:BULK_TRANSFER", txID, map[string]any{
		"from":  src.ID,
		"to":    dst.ID,
		"items": len(input.Items),
	})
	return movements, nil
}

// PostReceipt posts one ENTRY per receipt line into the destination
// warehouse, all lines in one atomic unit. Multi-line receipts share a
// transaction ID; a single-line receipt carries none. Purchasing is the
// only caller.
func (s *Service) PostReceipt(ctx context.Context, input ReceiptInput) ([]Movement, error) {
	if len(input.Lines) == 0 {
		return nil, fmt.Errorf("%w: receipt requires at least one line", ErrInvalidOperation)
	}
	if input.TransactionID == "" && len(input.Lines) >= 2 {
		input.TransactionID = uuid.NewString()
	}
	warehouse, err := s.catalog.WarehouseRef(ctx, input.WarehouseID)
	if err != nil {
		return nil, err
	}
	products := make([]ProductRef, len(input.Lines))
	for i, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, fmt.Errorf("%w: receipt quantity must be positive", ErrInvalidOperation)
		}
		if products[i], err = s.catalog.ProductRef(ctx, line.ProductID); err != nil {
			return nil, err
		}
	}

	movements := make([]Movement, 0, len(input.Lines))
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		for i, line := range input.Lines {
			entry, err := s.applyDelta(ctx, tx, products[i], warehouse, line.Quantity, MovementEntry, input.Details, input.Actor, input.TransactionID)
			if err != nil {
				return err
			}
			movements = append(movements, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return movements, nil
}

// RecordCreation appends the zero-effect CREATION movement for a product
// that just entered the catalog. No ledger entry is touched.
func (s *Service) RecordCreation(ctx context.Context, product ProductRef, actor string) (Movement, error) {
	movement := Movement{
		ID:          uuid.NewString(),
		Timestamp:   time.Now().UTC(),
		ProductID:   product.ID,
		ProductName: product.Name,
		SKU:         product.SKU,
		Type:        MovementCreation,
		Details:     "product created",
		Actor:       actor,
	}
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		return tx.AppendMovement(ctx, movement)
	})
	if err != nil {
		return Movement{}, err
	}
	return movement, nil
}

// RemoveProductEntries cascades a product deletion: every non-zero balance
// gets a synthetic write-off ADJUSTMENT before the ledger entries go away,
// so the log keeps accounting for the deletion.
func (s *Service) RemoveProductEntries(ctx context.Context, product ProductRef, actor string) ([]Movement, error) {
	var movements []Movement
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		entries, err := tx.EntriesOfProduct(ctx, product.ID)
		if err != nil {
			return err
		}
		for _, entry := range entries {
			if entry.Quantity == 0 {
				continue
			}
			warehouse, err := s.catalog.WarehouseRef(ctx, entry.WarehouseID)
			if err != nil {
				return err
			}
			movement := Movement{
				ID:             uuid.NewString(),
				Timestamp:      time.Now().UTC(),
				ProductID:      product.ID,
				ProductName:    product.Name,
				SKU:            product.SKU,
				WarehouseID:    warehouse.ID,
				WarehouseName:  warehouse.Name,
				Type:           MovementAdjustment,
				QuantityChange: -entry.Quantity,
				NewQuantity:    0,
				Details:        "product deleted, balance written off",
				Actor:          actor,
			}
			if err := tx.AppendMovement(ctx, movement); err != nil {
				return err
			}
			movements = append(movements, movement)
		}
		return tx.RemoveProduct(ctx, product.ID)
	})
	if err != nil {
		return nil, err
	}
	s.recordAudit(ctx, actor, "stock:PRODUCT_REMOVED", product.ID, map[string]any{"sku": product.SKU})
	return movements, nil
}

// QuantityOf answers a point ledger query.
func (s *Service) QuantityOf(ctx context.Context, productID, warehouseID string) (int64, error) {
	return s.repo.QuantityOf(ctx, productID, warehouseID)
}

// TotalOfProduct sums a product across warehouses.
func (s *Service) TotalOfProduct(ctx context.Context, productID string) (int64, error) {
	return s.repo.TotalOfProduct(ctx, productID)
}

// TotalOfWarehouse sums everything held at one warehouse.
func (s *Service) TotalOfWarehouse(ctx context.Context, warehouseID string) (int64, error) {
	return s.repo.TotalOfWarehouse(ctx, warehouseID)
}

// LedgerSnapshot lists all ledger entries.
func (s *Service) LedgerSnapshot(ctx context.Context) ([]LedgerEntry, error) {
	return s.repo.LedgerSnapshot(ctx)
}

// ListMovements queries the movement log, most recent first.
func (s *Service) ListMovements(ctx context.Context, filter MovementFilter) ([]Movement, error) {
	return s.repo.ListMovements(ctx, filter)
}

// applyDelta is the single ledger mutator. It reads the current quantity,
// rejects negative results, writes the new quantity and appends the log
// entry inside the caller's transaction.
func (s *Service) applyDelta(ctx context.Context, tx TxRepository, product ProductRef, warehouse WarehouseRef, delta int64, movementType MovementType, details, actor, transactionID string) (Movement, error) {
	current, err := tx.Quantity(ctx, product.ID, warehouse.ID)
	if err != nil {
		return Movement{}, err
	}
	newQty := current + delta
	if newQty < 0 {
		return Movement{}, fmt.Errorf("%w: %d available of %s at %s, removal of %d requested", ErrInsufficientStock, current, product.SKU, warehouse.Name, -delta)
	}
	if err := tx.SetQuantity(ctx, product.ID, warehouse.ID, newQty); err != nil {
		return Movement{}, err
	}
	movement := Movement{
		ID:             uuid.NewString(),
		Timestamp:      time.Now().UTC(),
		ProductID:      product.ID,
		ProductName:    product.Name,
		SKU:            product.SKU,
		WarehouseID:    warehouse.ID,
		WarehouseName:  warehouse.Name,
		Type:           movementType,
		QuantityChange: delta,
		NewQuantity:    newQty,
		Details:        details,
		Actor:          actor,
		TransactionID:  transactionID,
	}
	if err := tx.AppendMovement(ctx, movement); err != nil {
		return Movement{}, err
	}
	return movement, nil
}

func (s *Service) resolveRefs(ctx context.Context, productID, warehouseID string) (ProductRef, WarehouseRef, error) {
	product, err := s.catalog.ProductRef(ctx, productID)
	if err != nil {
		return ProductRef{}, WarehouseRef{}, err
	}
	warehouse, err := s.catalog.WarehouseRef(ctx, warehouseID)
	if err != nil {
		return ProductRef{}, WarehouseRef{}, err
	}
	return product, warehouse, nil
}

func (s *Service) recordAudit(ctx context.Context, actor, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor, Action: action, Entity: "stock_movement", EntityID: entityID, Meta: meta})
}

func (s *Service) publishExit(ctx context.Context, movement Movement) {
	if s.exits == nil || movement.Type != MovementExit {
		return
	}
	evt := ExitPostedEvent{
		MovementID:    movement.ID,
		SKU:           movement.SKU,
		ProductName:   movement.ProductName,
		WarehouseName: movement.WarehouseName,
		Quantity:      -movement.QuantityChange,
		Details:       movement.Details,
		Actor:         movement.Actor,
		PostedAt:      movement.Timestamp,
	}
	if err := s.exits.HandleExitPosted(ctx, evt); err != nil {
		// E-invoicing is informational; the movement stays committed.
		s.logger.Warn("exit event handler failed", slog.String("movement_id", movement.ID), slog.Any("error", err))
	}
}

func transferDetails(direction, warehouseName, note string) string {
	base := fmt.Sprintf("transfer %s %s", direction, warehouseName)
	if note == "" {
		return base
	}
	return base + ": " + note
}
