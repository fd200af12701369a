package purchasing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bodega-ims/bodega-ims/internal/inventory"
	"github.com/bodega-ims/bodega-ims/internal/shared"
)

// ProductInfo is the catalog snapshot drafted onto order lines.
type ProductInfo struct {
	ID    string
	SKU   string
	Name  string
	Price decimal.Decimal
}

// CatalogPort resolves the master data an order references. Implementations
// return shared.ErrNotFound for unknown IDs.
type CatalogPort interface {
	ProductInfo(ctx context.Context, id string) (ProductInfo, error)
	SupplierExists(ctx context.Context, id string) error
	CompanyExists(ctx context.Context, id string) error
	WarehouseExists(ctx context.Context, id string) error
}

// InventoryPort exposes the required stock-ledger integration.
type InventoryPort interface {
	PostReceipt(ctx context.Context, input inventory.ReceiptInput) ([]inventory.Movement, error)
}

// IdempotencyPort guards receipt posting against replays.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key, module string) error
}

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service orchestrates the purchase order workflow.
type Service struct {
	repo        RepositoryPort
	catalog     CatalogPort
	inventory   InventoryPort
	idempotency IdempotencyPort
	audit       AuditPort
	logger      *slog.Logger
}

// NewService constructs purchasing service. idempotency and audit may be nil.
func NewService(repo RepositoryPort, catalog CatalogPort, inv InventoryPort, idem IdempotencyPort, audit AuditPort, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, catalog: catalog, inventory: inv, idempotency: idem, audit: audit, logger: logger}
}

// CreateOrder drafts a new purchase order. Product names, SKUs and, when no
// price is given, prices are snapshotted from the catalog.
func (s *Service) CreateOrder(ctx context.Context, input OrderInput, actor string) (PurchaseOrder, error) {
	items, err := s.buildItems(ctx, input)
	if err != nil {
		return PurchaseOrder{}, err
	}
	now := time.Now().UTC()
	po := PurchaseOrder{
		ID:                     uuid.NewString(),
		OrderNumber:            fmt.Sprintf("PO-%06d", s.repo.NextSequence(ctx)),
		SupplierID:             input.SupplierID,
		IssuingCompanyID:       input.IssuingCompanyID,
		DestinationWarehouseID: input.DestinationWarehouseID,
		Status:                 POStatusDraft,
		Items:                  items,
		Notes:                  input.Notes,
		ExpectedDelivery:       input.ExpectedDelivery,
		CreatedAt:              now,
		UpdatedAt:              now,
	}
	if err := s.repo.Insert(ctx, po); err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, actor, "po:create", po.ID, map[string]any{"number": po.OrderNumber})
	return po, nil
}

// UpdateOrder replaces the writable fields of a draft. Any other status is
// frozen.
func (s *Service) UpdateOrder(ctx context.Context, id string, input OrderInput, actor string) (PurchaseOrder, error) {
	po, err := s.repo.ByID(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if po.Status != POStatusDraft {
		return PurchaseOrder{}, fmt.Errorf("%w: %s order %s is not editable", ErrInvalidState, po.Status, po.OrderNumber)
	}
	items, err := s.buildItems(ctx, input)
	if err != nil {
		return PurchaseOrder{}, err
	}
	po.SupplierID = input.SupplierID
	po.IssuingCompanyID = input.IssuingCompanyID
	po.DestinationWarehouseID = input.DestinationWarehouseID
	po.Items = items
	po.Notes = input.Notes
	po.ExpectedDelivery = input.ExpectedDelivery
	po.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, po); err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, actor, "po:update", po.ID, map[string]any{"number": po.OrderNumber})
	return po, nil
}

// IssueOrder transitions DRAFT to ISSUED.
func (s *Service) IssueOrder(ctx context.Context, id, actor string) (PurchaseOrder, error) {
	po, err := s.repo.ByID(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if po.Status != POStatusDraft {
		return PurchaseOrder{}, fmt.Errorf("%w: cannot issue %s order %s", ErrInvalidState, po.Status, po.OrderNumber)
	}
	now := time.Now().UTC()
	po.Status = POStatusIssued
	po.IssuedAt = &now
	po.UpdatedAt = now
	if err := s.repo.Update(ctx, po); err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, actor, "po:issue", po.ID, map[string]any{"number": po.OrderNumber})
	return po, nil
}

// CancelOrder transitions DRAFT or ISSUED to CANCELLED. Received orders
// already moved stock and stay closed.
func (s *Service) CancelOrder(ctx context.Context, id, actor string) (PurchaseOrder, error) {
	po, err := s.repo.ByID(ctx, id)
	if err != nil {
		return PurchaseOrder{}, err
	}
	if po.Status != POStatusDraft && po.Status != POStatusIssued {
		return PurchaseOrder{}, fmt.Errorf("%w: cannot cancel %s order %s", ErrInvalidState, po.Status, po.OrderNumber)
	}
	now := time.Now().UTC()
	po.Status = POStatusCancelled
	po.CancelledAt = &now
	po.UpdatedAt = now
	if err := s.repo.Update(ctx, po); err != nil {
		return PurchaseOrder{}, err
	}
	s.recordAudit(ctx, actor, "po:cancel", po.ID, map[string]any{"number": po.OrderNumber})
	return po, nil
}

// ReceiveOrder transitions ISSUED to RECEIVED and posts one ENTRY per line
// into the destination warehouse. All lines land atomically under a single
// transaction ID; a failed posting leaves the order ISSUED.
func (s *Service) ReceiveOrder(ctx context.Context, id, actor string) (PurchaseOrder, []inventory.Movement, error) {
	po, err := s.repo.ByID(ctx, id)
	if err != nil {
		return PurchaseOrder{}, nil, err
	}
	if po.Status != POStatusIssued {
		return PurchaseOrder{}, nil, fmt.Errorf("%w: cannot receive %s order %s", ErrInvalidState, po.Status, po.OrderNumber)
	}

	key := "PO:" + po.ID
	inserted := false
	if s.idempotency != nil {
		if err := s.idempotency.CheckAndInsert(ctx, key, "purchasing.receipt"); err != nil {
			return PurchaseOrder{}, nil, err
		}
		inserted = true
	}

	lines := make([]inventory.ReceiptLine, len(po.Items))
	for i, item := range po.Items {
		lines[i] = inventory.ReceiptLine{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	// A transaction ID groups movements; a one-line receipt posts a single
	// movement and carries none.
	txID := ""
	if len(po.Items) >= 2 {
		txID = uuid.NewString()
	}
	movements, err := s.inventory.PostReceipt(ctx, inventory.ReceiptInput{
		WarehouseID:   po.DestinationWarehouseID,
		Lines:         lines,
		Details:       fmt.Sprintf("receipt of %s", po.OrderNumber),
		Actor:         actor,
		TransactionID: txID,
	})
	if err != nil {
		if inserted {
			if delErr := s.idempotency.Delete(ctx, key, "purchasing.receipt"); delErr != nil {
				s.logger.Warn("idempotency rollback failed", slog.String("key", key), slog.Any("error", delErr))
			}
		}
		return PurchaseOrder{}, nil, err
	}

	now := time.Now().UTC()
	po.Status = POStatusReceived
	po.ReceivedAt = &now
	po.UpdatedAt = now
	if err := s.repo.Update(ctx, po); err != nil {
		return PurchaseOrder{}, nil, err
	}
	s.recordAudit(ctx, actor, "po:receive", po.ID, map[string]any{"number": po.OrderNumber, "lines": len(po.Items)})
	return po, movements, nil
}

// GetOrder fetches one order by ID.
func (s *Service) GetOrder(ctx context.Context, id string) (PurchaseOrder, error) {
	return s.repo.ByID(ctx, id)
}

// ListOrders lists orders, newest first.
func (s *Service) ListOrders(ctx context.Context, filter OrderFilter) ([]PurchaseOrder, error) {
	return s.repo.List(ctx, filter)
}

func (s *Service) buildItems(ctx context.Context, input OrderInput) ([]POItem, error) {
	if len(input.Items) == 0 {
		return nil, fmt.Errorf("%w: order requires at least one item", shared.ErrValidation)
	}
	if err := s.catalog.SupplierExists(ctx, input.SupplierID); err != nil {
		return nil, err
	}
	if err := s.catalog.CompanyExists(ctx, input.IssuingCompanyID); err != nil {
		return nil, err
	}
	if err := s.catalog.WarehouseExists(ctx, input.DestinationWarehouseID); err != nil {
		return nil, err
	}
	items := make([]POItem, len(input.Items))
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: item quantity must be positive", shared.ErrValidation)
		}
		if item.PriceSet && item.Price.IsNegative() {
			return nil, fmt.Errorf("%w: item price must not be negative", shared.ErrValidation)
		}
		info, err := s.catalog.ProductInfo(ctx, item.ProductID)
		if err != nil {
			return nil, err
		}
		price := info.Price
		if item.PriceSet {
			price = item.Price
		}
		items[i] = POItem{
			ProductID:   info.ID,
			ProductName: info.Name,
			SKU:         info.SKU,
			Quantity:    item.Quantity,
			Price:       price,
		}
	}
	return items, nil
}

func (s *Service) recordAudit(ctx context.Context, actor, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor, Action: action, Entity: "purchase_order", EntityID: entityID, Meta: meta})
}
