package purchasing

import (
	"context"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bodega-ims/bodega-ims/internal/inventory"
	"github.com/bodega-ims/bodega-ims/internal/shared"
)

type fakeCatalog struct {
	products   map[string]ProductInfo
	suppliers  map[string]bool
	companies  map[string]bool
	warehouses map[string]bool
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products:   make(map[string]ProductInfo),
		suppliers:  make(map[string]bool),
		companies:  make(map[string]bool),
		warehouses: make(map[string]bool),
	}
}

func (c *fakeCatalog) ProductInfo(_ context.Context, id string) (ProductInfo, error) {
	info, ok := c.products[id]
	if !ok {
		return ProductInfo{}, fmt.Errorf("product %s: %w", id, shared.ErrNotFound)
	}
	return info, nil
}

func (c *fakeCatalog) SupplierExists(_ context.Context, id string) error {
	if !c.suppliers[id] {
		return fmt.Errorf("supplier %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (c *fakeCatalog) CompanyExists(_ context.Context, id string) error {
	if !c.companies[id] {
		return fmt.Errorf("company %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

func (c *fakeCatalog) WarehouseExists(_ context.Context, id string) error {
	if !c.warehouses[id] {
		return fmt.Errorf("warehouse %s: %w", id, shared.ErrNotFound)
	}
	return nil
}

type fakeInventory struct {
	receipts []inventory.ReceiptInput
	err      error
}

func (f *fakeInventory) PostReceipt(_ context.Context, input inventory.ReceiptInput) ([]inventory.Movement, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.receipts = append(f.receipts, input)
	movements := make([]inventory.Movement, len(input.Lines))
	for i, line := range input.Lines {
		movements[i] = inventory.Movement{
			ID:             fmt.Sprintf("m%d", i),
			ProductID:      line.ProductID,
			WarehouseID:    input.WarehouseID,
			Type:           inventory.MovementEntry,
			QuantityChange: line.Quantity,
			NewQuantity:    line.Quantity,
			TransactionID:  input.TransactionID,
		}
	}
	return movements, nil
}

type fakeIdempotency struct {
	keys map[string]bool
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{keys: make(map[string]bool)}
}

func (f *fakeIdempotency) CheckAndInsert(_ context.Context, key, _ string) error {
	if f.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	f.keys[key] = true
	return nil
}

func (f *fakeIdempotency) Delete(_ context.Context, key, _ string) error {
	delete(f.keys, key)
	return nil
}

func setup(t *testing.T) (*Service, *fakeCatalog, *fakeInventory, *fakeIdempotency) {
	t.Helper()
	catalog := newFakeCatalog()
	catalog.products["p1"] = ProductInfo{ID: "p1", SKU: "SKU-1", Name: "Widget", Price: decimal.NewFromInt(5)}
	catalog.products["p2"] = ProductInfo{ID: "p2", SKU: "SKU-2", Name: "Gadget", Price: decimal.NewFromInt(3)}
	catalog.suppliers["s1"] = true
	catalog.companies["c1"] = true
	catalog.warehouses["w1"] = true
	inv := &fakeInventory{}
	idem := newFakeIdempotency()
	return NewService(NewRepository(), catalog, inv, idem, nil, nil), catalog, inv, idem
}

func orderInput() OrderInput {
	return OrderInput{
		SupplierID:             "s1",
		IssuingCompanyID:       "c1",
		DestinationWarehouseID: "w1",
		Items: []OrderItemInput{
			{ProductID: "p1", Quantity: 10},
			{ProductID: "p2", Quantity: 4, Price: decimal.NewFromInt(2), PriceSet: true},
		},
	}
}

func TestCreateOrderSnapshotsCatalog(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, orderInput(), "ana")
	require.NoError(t, err)
	require.Equal(t, POStatusDraft, po.Status)
	require.Equal(t, "PO-000001", po.OrderNumber)
	require.Equal(t, "Widget", po.Items[0].ProductName)
	require.Equal(t, "SKU-1", po.Items[0].SKU)
	// Omitted price comes from the catalog, explicit price wins.
	require.True(t, po.Items[0].Price.Equal(decimal.NewFromInt(5)))
	require.True(t, po.Items[1].Price.Equal(decimal.NewFromInt(2)))
	// 10*5 + 4*2
	require.True(t, po.Total().Equal(decimal.NewFromInt(58)))
}

func TestCreateOrderValidation(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	input := orderInput()
	input.Items = nil
	_, err := svc.CreateOrder(ctx, input, "ana")
	require.ErrorIs(t, err, shared.ErrValidation)

	input = orderInput()
	input.Items[0].Quantity = 0
	_, err = svc.CreateOrder(ctx, input, "ana")
	require.ErrorIs(t, err, shared.ErrValidation)

	input = orderInput()
	input.SupplierID = "ghost"
	_, err = svc.CreateOrder(ctx, input, "ana")
	require.ErrorIs(t, err, shared.ErrNotFound)

	input = orderInput()
	input.Items[0].ProductID = "ghost"
	_, err = svc.CreateOrder(ctx, input, "ana")
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestUpdateOrderDraftOnly(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, orderInput(), "ana")
	require.NoError(t, err)

	updated := orderInput()
	updated.Notes = "rush order"
	po, err = svc.UpdateOrder(ctx, po.ID, updated, "ana")
	require.NoError(t, err)
	require.Equal(t, "rush order", po.Notes)

	_, err = svc.IssueOrder(ctx, po.ID, "ana")
	require.NoError(t, err)

	_, err = svc.UpdateOrder(ctx, po.ID, updated, "ana")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestOrderLifecycle(t *testing.T) {
	svc, _, _, _ := setup(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, orderInput(), "ana")
	require.NoError(t, err)

	// Receiving a draft is invalid.
	_, _, err = svc.ReceiveOrder(ctx, po.ID, "ana")
	require.ErrorIs(t, err, ErrInvalidState)

	po, err = svc.IssueOrder(ctx, po.ID, "ana")
	require.NoError(t, err)
	require.Equal(t, POStatusIssued, po.Status)
	require.NotNil(t, po.IssuedAt)

	// Issuing twice is invalid.
	_, err = svc.IssueOrder(ctx, po.ID, "ana")
	require.ErrorIs(t, err, ErrInvalidState)

	po, err = svc.CancelOrder(ctx, po.ID, "ana")
	require.NoError(t, err)
	require.Equal(t, POStatusCancelled, po.Status)

	// Cancelled orders cannot move further.
	_, err = svc.IssueOrder(ctx, po.ID, "ana")
	require.ErrorIs(t, err, ErrInvalidState)
	_, _, err = svc.ReceiveOrder(ctx, po.ID, "ana")
	require.ErrorIs(t, err, ErrInvalidState)
}

func TestReceiveOrderPostsAllLines(t *testing.T) {
	svc, _, inv, _ := setup(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, orderInput(), "ana")
	require.NoError(t, err)
	_, err = svc.IssueOrder(ctx, po.ID, "ana")
	require.NoError(t, err)

	po, movements, err := svc.ReceiveOrder(ctx, po.ID, "ana")
	require.NoError(t, err)
	require.Equal(t, POStatusReceived, po.Status)
	require.NotNil(t, po.ReceivedAt)
	require.Len(t, movements, 2)

	require.Len(t, inv.receipts, 1)
	receipt := inv.receipts[0]
	require.Equal(t, "w1", receipt.WarehouseID)
	require.Len(t, receipt.Lines, 2)
	require.NotEmpty(t, receipt.TransactionID)
	require.Contains(t, receipt.Details, po.OrderNumber)
}

func TestReceiveSingleLineOrderHasNoTransactionID(t *testing.T) {
	svc, _, inv, _ := setup(t)
	ctx := context.Background()

	input := orderInput()
	input.Items = input.Items[:1]
	po, err := svc.CreateOrder(ctx, input, "ana")
	require.NoError(t, err)
	_, err = svc.IssueOrder(ctx, po.ID, "ana")
	require.NoError(t, err)

	_, movements, err := svc.ReceiveOrder(ctx, po.ID, "ana")
	require.NoError(t, err)
	require.Len(t, movements, 1)
	require.Empty(t, movements[0].TransactionID, "single movement groups nothing")
	require.Empty(t, inv.receipts[0].TransactionID)
}

func TestReceiveOrderTwiceLeavesStateUnchanged(t *testing.T) {
	svc, _, inv, _ := setup(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, orderInput(), "ana")
	require.NoError(t, err)
	_, err = svc.IssueOrder(ctx, po.ID, "ana")
	require.NoError(t, err)
	_, _, err = svc.ReceiveOrder(ctx, po.ID, "ana")
	require.NoError(t, err)

	_, _, err = svc.ReceiveOrder(ctx, po.ID, "ana")
	require.ErrorIs(t, err, ErrInvalidState)
	require.Len(t, inv.receipts, 1, "stock must move exactly once")

	po, err = svc.GetOrder(ctx, po.ID)
	require.NoError(t, err)
	require.Equal(t, POStatusReceived, po.Status)
}

func TestReceiveOrderInventoryFailureKeepsOrderIssued(t *testing.T) {
	svc, _, inv, idem := setup(t)
	ctx := context.Background()

	po, err := svc.CreateOrder(ctx, orderInput(), "ana")
	require.NoError(t, err)
	_, err = svc.IssueOrder(ctx, po.ID, "ana")
	require.NoError(t, err)

	inv.err = inventory.ErrInsufficientStock
	_, _, err = svc.ReceiveOrder(ctx, po.ID, "ana")
	require.Error(t, err)

	po, err = svc.GetOrder(ctx, po.ID)
	require.NoError(t, err)
	require.Equal(t, POStatusIssued, po.Status, "a failed posting keeps the order receivable")
	require.Empty(t, idem.keys, "the idempotency key is released on failure")

	// Retry succeeds once inventory recovers.
	inv.err = nil
	po, _, err = svc.ReceiveOrder(ctx, po.ID, "ana")
	require.NoError(t, err)
	require.Equal(t, POStatusReceived, po.Status)
}

func TestListOrdersFilters(t *testing.T) {
	svc, catalog, _, _ := setup(t)
	catalog.suppliers["s2"] = true
	ctx := context.Background()

	first, err := svc.CreateOrder(ctx, orderInput(), "ana")
	require.NoError(t, err)

	second := orderInput()
	second.SupplierID = "s2"
	_, err = svc.CreateOrder(ctx, second, "ana")
	require.NoError(t, err)

	_, err = svc.IssueOrder(ctx, first.ID, "ana")
	require.NoError(t, err)

	all, err := svc.ListOrders(ctx, OrderFilter{})
	require.NoError(t, err)
	require.Len(t, all, 2)

	drafts, err := svc.ListOrders(ctx, OrderFilter{Status: POStatusDraft})
	require.NoError(t, err)
	require.Len(t, drafts, 1)

	bySupplier, err := svc.ListOrders(ctx, OrderFilter{SupplierID: "s2"})
	require.NoError(t, err)
	require.Len(t, bySupplier, 1)
}
