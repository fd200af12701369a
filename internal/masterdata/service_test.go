package masterdata

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/bodega-ims/bodega-ims/internal/shared"
)

type fakeLedger struct {
	creations  []string
	writeOffs  []string
	totals     map[string]int64
	writeOffFn func(productID string) error
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{totals: make(map[string]int64)}
}

func (l *fakeLedger) RecordProductCreation(_ context.Context, productID, _, _, _ string) error {
	l.creations = append(l.creations, productID)
	return nil
}

func (l *fakeLedger) WriteOffProduct(_ context.Context, productID, _, _, _ string) error {
	if l.writeOffFn != nil {
		if err := l.writeOffFn(productID); err != nil {
			return err
		}
	}
	l.writeOffs = append(l.writeOffs, productID)
	return nil
}

func (l *fakeLedger) TotalOfProduct(_ context.Context, productID string) (int64, error) {
	return l.totals[productID], nil
}

func productInput(sku string) ProductInput {
	return ProductInput{
		SKU:   sku,
		Name:  "Widget " + sku,
		Price: decimal.NewFromInt(10),
	}
}

func TestCreateProductRecordsCreationMovement(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewService(NewRepository(), ledger, nil, nil)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, productInput("SKU-1"), "ana")
	require.NoError(t, err)
	require.NotEmpty(t, product.ID)
	require.Equal(t, []string{product.ID}, ledger.creations)
}

func TestCreateProductRejectsDuplicateSKU(t *testing.T) {
	svc := NewService(NewRepository(), nil, nil, nil)
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, productInput("SKU-1"), "ana")
	require.NoError(t, err)

	_, err = svc.CreateProduct(ctx, productInput("SKU-1"), "ana")
	require.ErrorIs(t, err, shared.ErrDuplicate)

	// SKU comparison ignores case and surrounding whitespace.
	_, err = svc.CreateProduct(ctx, productInput(" sku-1 "), "ana")
	require.ErrorIs(t, err, shared.ErrDuplicate)
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(NewRepository(), nil, nil, nil)
	ctx := context.Background()

	input := productInput("SKU-1")
	input.Price = decimal.NewFromInt(-1)
	_, err := svc.CreateProduct(ctx, input, "ana")
	require.ErrorIs(t, err, shared.ErrValidation)

	input = productInput("SKU-2")
	input.Images = []string{"a", "b", "c", "d", "e"}
	_, err = svc.CreateProduct(ctx, input, "ana")
	require.ErrorIs(t, err, shared.ErrValidation)

	input = productInput("")
	_, err = svc.CreateProduct(ctx, input, "ana")
	require.ErrorIs(t, err, shared.ErrValidation)
}

func TestUpdateProductSKUCollision(t *testing.T) {
	svc := NewService(NewRepository(), nil, nil, nil)
	ctx := context.Background()

	first, err := svc.CreateProduct(ctx, productInput("SKU-1"), "ana")
	require.NoError(t, err)
	_, err = svc.CreateProduct(ctx, productInput("SKU-2"), "ana")
	require.NoError(t, err)

	input := productInput("SKU-2")
	_, err = svc.UpdateProduct(ctx, first.ID, input, "ana")
	require.ErrorIs(t, err, shared.ErrDuplicate)

	// Keeping the own SKU is not a collision.
	input = productInput("SKU-1")
	input.Name = "Renamed"
	updated, err := svc.UpdateProduct(ctx, first.ID, input, "ana")
	require.NoError(t, err)
	require.Equal(t, "Renamed", updated.Name)
}

func TestDeleteProductCascadesToLedger(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewService(NewRepository(), ledger, nil, nil)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, productInput("SKU-1"), "ana")
	require.NoError(t, err)

	require.NoError(t, svc.DeleteProduct(ctx, product.ID, "ana"))
	require.Equal(t, []string{product.ID}, ledger.writeOffs)

	_, err = svc.GetProduct(ctx, product.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestDeleteProductKeepsCatalogOnLedgerFailure(t *testing.T) {
	ledger := newFakeLedger()
	ledger.writeOffFn = func(string) error { return context.DeadlineExceeded }
	svc := NewService(NewRepository(), ledger, nil, nil)
	ctx := context.Background()

	product, err := svc.CreateProduct(ctx, productInput("SKU-1"), "ana")
	require.NoError(t, err)

	err = svc.DeleteProduct(ctx, product.ID, "ana")
	require.Error(t, err)

	_, err = svc.GetProduct(ctx, product.ID)
	require.NoError(t, err, "product stays when the write-off fails")
}

func TestGetProductBySKU(t *testing.T) {
	svc := NewService(NewRepository(), nil, nil, nil)
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, productInput("SKU-1"), "ana")
	require.NoError(t, err)

	found, err := svc.GetProductBySKU(ctx, "sku-1")
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)
}

func TestListProductsSearch(t *testing.T) {
	svc := NewService(NewRepository(), nil, nil, nil)
	ctx := context.Background()

	input := productInput("SKU-1")
	input.Name = "Blue Paint"
	_, err := svc.CreateProduct(ctx, input, "ana")
	require.NoError(t, err)

	input = productInput("SKU-2")
	input.Name = "Red Paint"
	_, err = svc.CreateProduct(ctx, input, "ana")
	require.NoError(t, err)

	all, err := svc.ListProducts(ctx, "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	require.Equal(t, "Blue Paint", all[0].Name, "sorted by name")

	blue, err := svc.ListProducts(ctx, "blue")
	require.NoError(t, err)
	require.Len(t, blue, 1)

	bySKU, err := svc.ListProducts(ctx, "sku-2")
	require.NoError(t, err)
	require.Len(t, bySKU, 1)
	require.Equal(t, "Red Paint", bySKU[0].Name)
}

func TestListLowStock(t *testing.T) {
	ledger := newFakeLedger()
	svc := NewService(NewRepository(), ledger, nil, nil)
	ctx := context.Background()

	low := productInput("SKU-1")
	low.LowStockThreshold = 10
	lowProduct, err := svc.CreateProduct(ctx, low, "ana")
	require.NoError(t, err)
	ledger.totals[lowProduct.ID] = 3

	ok := productInput("SKU-2")
	ok.LowStockThreshold = 10
	okProduct, err := svc.CreateProduct(ctx, ok, "ana")
	require.NoError(t, err)
	ledger.totals[okProduct.ID] = 50

	// Zero threshold never alerts.
	_, err = svc.CreateProduct(ctx, productInput("SKU-3"), "ana")
	require.NoError(t, err)

	items, err := svc.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, lowProduct.ID, items[0].Product.ID)
	require.Equal(t, int64(3), items[0].Total)
	require.Equal(t, int64(7), items[0].Shortage)
}

func TestWarehouseCRUD(t *testing.T) {
	svc := NewService(NewRepository(), nil, nil, nil)
	ctx := context.Background()

	warehouse, err := svc.CreateWarehouse(ctx, WarehouseInput{Name: "Central", Location: "Lima"}, "ana")
	require.NoError(t, err)

	warehouse, err = svc.UpdateWarehouse(ctx, warehouse.ID, WarehouseInput{Name: "Central", Location: "Callao"}, "ana")
	require.NoError(t, err)
	require.Equal(t, "Callao", warehouse.Location)

	list, err := svc.ListWarehouses(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.DeleteWarehouse(ctx, warehouse.ID, "ana"))
	_, err = svc.GetWarehouse(ctx, warehouse.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestSupplierCRUD(t *testing.T) {
	svc := NewService(NewRepository(), nil, nil, nil)
	ctx := context.Background()

	supplier, err := svc.CreateSupplier(ctx, SupplierInput{Name: "Acme", Email: "sales@acme.test"}, "ana")
	require.NoError(t, err)

	supplier, err = svc.UpdateSupplier(ctx, supplier.ID, SupplierInput{Name: "Acme Corp"}, "ana")
	require.NoError(t, err)
	require.Equal(t, "Acme Corp", supplier.Name)

	require.NoError(t, svc.DeleteSupplier(ctx, supplier.ID, "ana"))
	_, err = svc.GetSupplier(ctx, supplier.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}

func TestCompanyCRUD(t *testing.T) {
	svc := NewService(NewRepository(), nil, nil, nil)
	ctx := context.Background()

	company, err := svc.CreateCompany(ctx, CompanyInput{Name: "Bodega SAC", TaxID: "20123456789"}, "ana")
	require.NoError(t, err)

	company, err = svc.UpdateCompany(ctx, company.ID, CompanyInput{Name: "Bodega SAC", TaxID: "20999999999"}, "ana")
	require.NoError(t, err)
	require.Equal(t, "20999999999", company.TaxID)

	list, err := svc.ListCompanies(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.DeleteCompany(ctx, company.ID, "ana"))
	_, err = svc.GetCompany(ctx, company.ID)
	require.ErrorIs(t, err, shared.ErrNotFound)
}
