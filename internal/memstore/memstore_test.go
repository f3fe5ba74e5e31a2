package memstore

import (
	"context"
	"errors"
	"testing"

	"souk-inventory/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSeeded(t *testing.T) *Store {
	t.Helper()
	s := New()
	s.AddWarehouse(core.Warehouse{ID: 2, Name: "Overflow", Capacity: 10})
	s.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 100})
	s.AddSupplier(core.Supplier{ID: 1, Name: "Default Supplier"})
	sup := 1
	s.AddProduct(core.Product{ID: 2, SKU: "OIL-001", QuantityInStock: 5, WarehouseID: 1})
	s.AddProduct(core.Product{ID: 1, SKU: "TEA-001", QuantityInStock: 4, ReorderThreshold: 10, DefaultSupplierID: &sup, WarehouseID: 1})
	return s
}

func order(productID int) core.NewPurchaseOrder {
	return core.NewPurchaseOrder{
		ProductID: productID, SupplierID: 1, WarehouseID: 1, QuantityOrdered: 5,
		OrderDate: "2026-03-01", ExpectedArrivalDate: "2026-03-04",
	}
}

func TestWithinTx_RollbackLeavesDataUntouched(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	abort := errors.New("abort")
	err := s.WithinTx(ctx, func(repo core.Repository) error {
		if _, err := repo.ApplyStockDelta(ctx, 1, 50); err != nil {
			return err
		}
		if _, err := repo.InsertOrder(ctx, order(1)); err != nil {
			return err
		}
		return abort
	})
	require.ErrorIs(t, err, abort)

	p, err := s.GetProduct(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 4, p.QuantityInStock)

	orders, err := s.ListOrdersWithJoins(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestWithinTx_CommitsOnSuccess(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	err := s.WithinTx(ctx, func(repo core.Repository) error {
		_, err := repo.ApplyStockDelta(ctx, 1, 6)
		return err
	})
	require.NoError(t, err)

	total, err := s.SumStockByWarehouse(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 15, total)
}

func TestWithinTx_CancelledContextDiscardsChanges(t *testing.T) {
	s := newSeeded(t)
	ctx, cancel := context.WithCancel(context.Background())

	err := s.WithinTx(ctx, func(repo core.Repository) error {
		_, err := repo.ApplyStockDelta(ctx, 1, 1)
		cancel()
		return err
	})
	assert.ErrorIs(t, err, core.ErrStorage)

	p, err := s.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 4, p.QuantityInStock)
}

func TestApplyStockDelta(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	_, err := s.ApplyStockDelta(ctx, 2, -6)
	assert.ErrorIs(t, err, core.ErrInvalidState)

	qty, err := s.ApplyStockDelta(ctx, 2, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)

	_, err = s.ApplyStockDelta(ctx, 99, 1)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestInsertOrder(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	id, err := s.InsertOrder(ctx, order(1))
	require.NoError(t, err)

	_, err = s.InsertOrder(ctx, order(1))
	assert.ErrorIs(t, err, core.ErrConflict)

	bad := order(2)
	bad.SupplierID = 7
	_, err = s.InsertOrder(ctx, bad)
	assert.ErrorIs(t, err, core.ErrStorage)

	pending, err := s.FindPendingOrder(ctx, 1, 1)
	require.NoError(t, err)
	require.NotNil(t, pending)
	assert.Equal(t, id, pending.ID)

	require.NoError(t, s.UpdateOrderStatus(ctx, id, core.StatusReceived))
	pending, err = s.FindPendingOrder(ctx, 1, 1)
	require.NoError(t, err)
	assert.Nil(t, pending)

	_, err = s.InsertOrder(ctx, order(1))
	assert.NoError(t, err, "a new order is allowed once the previous one is received")

	assert.ErrorIs(t, s.UpdateOrderStatus(ctx, 404, core.StatusReceived), core.ErrNotFound)
}

func TestListings(t *testing.T) {
	s := newSeeded(t)
	ctx := context.Background()

	products, err := s.ListProductsWithJoins(ctx)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, 1, products[0].ID)
	require.NotNil(t, products[0].SupplierName)
	assert.Equal(t, "Default Supplier", *products[0].SupplierName)
	assert.Nil(t, products[1].SupplierName)
	require.NotNil(t, products[1].WarehouseName)
	assert.Equal(t, "Main", *products[1].WarehouseName)

	warehouses, err := s.ListWarehouses(ctx)
	require.NoError(t, err)
	require.Len(t, warehouses, 2)
	assert.Equal(t, 1, warehouses[0].ID)

	first, err := s.InsertOrder(ctx, order(1))
	require.NoError(t, err)
	second, err := s.InsertOrder(ctx, order(2))
	require.NoError(t, err)

	orders, err := s.ListOrdersWithJoins(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, second, orders[0].ID)
	assert.Equal(t, first, orders[1].ID)
	require.NotNil(t, orders[0].ProductSKU)
	assert.Equal(t, "OIL-001", *orders[0].ProductSKU)
}
