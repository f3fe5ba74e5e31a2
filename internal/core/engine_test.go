package core_test

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"souk-inventory/internal/core"
	"souk-inventory/internal/events"
	"souk-inventory/internal/memstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, e events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) types() []events.Type {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]events.Type, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type engine struct {
	store     *memstore.Store
	ledger    core.StockLedger
	capacity  core.CapacityOracle
	orders    core.PurchaseOrderService
	reorder   core.ReorderService
	inventory core.InventoryService
	pub       *recordingPublisher
}

func newEngine(t *testing.T, autoReorderOnRead bool) *engine {
	t.Helper()
	store := memstore.New()
	store.AddSupplier(core.Supplier{ID: 1, Name: "Fallback Supply"})
	store.AddSupplier(core.Supplier{ID: 2, Name: "Atlas Trading"})

	pub := &recordingPublisher{}
	policy := core.DefaultReorderPolicy()
	ledger := core.NewStockLedger(store)
	capacity := core.NewCapacityOracle(store)
	orders := core.NewPurchaseOrderService(store, policy, ledger, capacity, pub, nil)
	reorder := core.NewReorderService(store, policy, capacity, orders, pub, nil)
	inventory := core.NewInventoryService(store, ledger, orders, reorder, autoReorderOnRead, pub, nil)

	return &engine{
		store:     store,
		ledger:    ledger,
		capacity:  capacity,
		orders:    orders,
		reorder:   reorder,
		inventory: inventory,
		pub:       pub,
	}
}

func supplierID(v int) *int { return &v }

func pendingOrders(t *testing.T, e *engine, productID int) []core.PurchaseOrder {
	t.Helper()
	all, err := e.orders.ListOrders(context.Background())
	require.NoError(t, err)
	var out []core.PurchaseOrder
	for _, po := range all {
		if po.ProductID == productID && po.Status == core.StatusPending {
			out = append(out, po)
		}
	}
	return out
}

func stockOf(t *testing.T, e *engine, productID int) int {
	t.Helper()
	qty, err := e.ledger.CurrentStock(context.Background(), productID)
	require.NoError(t, err)
	return qty
}

// ── Stock ledger and capacity ─────────────────────────────────────────────────

func TestStockLedger(t *testing.T) {
	e := newEngine(t, false)
	ctx := context.Background()
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 100})
	e.store.AddWarehouse(core.Warehouse{ID: 2, Name: "Empty", Capacity: 10})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 5, WarehouseID: 1})
	e.store.AddProduct(core.Product{ID: 2, SKU: "B", QuantityInStock: 7, WarehouseID: 1})

	qty, err := e.ledger.ApplyDelta(ctx, 1, 3)
	require.NoError(t, err)
	assert.Equal(t, 8, qty)

	_, err = e.ledger.ApplyDelta(ctx, 1, -9)
	assert.True(t, errors.Is(err, core.ErrInvalidState), "got %v", err)
	assert.Equal(t, 8, stockOf(t, e, 1))

	qty, err = e.ledger.ApplyDelta(ctx, 1, -8)
	require.NoError(t, err)
	assert.Equal(t, 0, qty)

	_, err = e.ledger.CurrentStock(ctx, 99)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	total, err := e.ledger.WarehouseTotal(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 7, total)

	total, err = e.ledger.WarehouseTotal(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, total)
}

func TestCapacityOracle(t *testing.T) {
	e := newEngine(t, false)
	ctx := context.Background()
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 10})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 4, WarehouseID: 1})

	space, err := e.capacity.AvailableSpace(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 6, space)

	// Manual adjustments are not capacity-checked, so space can go negative.
	_, err = e.ledger.ApplyDelta(ctx, 1, 10)
	require.NoError(t, err)
	space, err = e.capacity.AvailableSpace(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, -4, space)

	_, err = e.capacity.AvailableSpace(ctx, 42)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

// ── Reorder ───────────────────────────────────────────────────────────────────

func TestAdjustStock_RejectsNegativeResult(t *testing.T) {
	e := newEngine(t, false)
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 100})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 5, ReorderThreshold: 2, WarehouseID: 1})

	_, err := e.inventory.AdjustStock(context.Background(), 1, -10, "sale")
	assert.True(t, errors.Is(err, core.ErrInvalidState), "got %v", err)
	assert.Equal(t, 5, stockOf(t, e, 1))
	assert.Empty(t, pendingOrders(t, e, 1))
}

func TestAdjustStock_CreatesReorderBelowThreshold(t *testing.T) {
	e := newEngine(t, false)
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 60})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 14, ReorderThreshold: 10, DefaultSupplierID: supplierID(2), WarehouseID: 1})

	res, err := e.inventory.AdjustStock(context.Background(), 1, -10, "")
	require.NoError(t, err)
	assert.Equal(t, 4, res.Product.QuantityInStock)
	require.NotNil(t, res.Reorder)
	assert.True(t, res.Reorder.Created)
	assert.Equal(t, 16, res.Reorder.QuantityOrdered)
	assert.False(t, res.Reorder.CapacityIssue)

	pending := pendingOrders(t, e, 1)
	require.Len(t, pending, 1)
	assert.Equal(t, 2, pending[0].SupplierID)
	assert.Equal(t, []events.Type{events.OrderCreated}, e.pub.types())
}

func TestAdjustStock_AboveThresholdNoReorder(t *testing.T) {
	e := newEngine(t, false)
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 60})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 14, ReorderThreshold: 10, WarehouseID: 1})

	res, err := e.inventory.AdjustStock(context.Background(), 1, -4, "count")
	require.NoError(t, err)
	assert.Nil(t, res.Reorder)
	assert.Empty(t, e.pub.types())
}

func TestEvaluateAndReorder_ClipsToCapacity(t *testing.T) {
	tests := []struct {
		name         string
		capacity     int
		wantQty      int
		wantCapIssue bool
	}{
		{"plenty of space", 54, 16, false},
		{"partial space", 9, 5, true},
		{"no space", 4, 0, true},
		{"over capacity", 2, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEngine(t, false)
			e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: tt.capacity})
			e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 4, ReorderThreshold: 10, WarehouseID: 1})

			res, err := e.reorder.EvaluateAndReorder(context.Background(), 1)
			require.NoError(t, err)
			require.NotNil(t, res)
			assert.Equal(t, tt.wantQty, res.QuantityOrdered)
			assert.Equal(t, tt.wantCapIssue, res.CapacityIssue)

			po, err := e.orders.GetOrder(context.Background(), res.OrderID)
			require.NoError(t, err)
			assert.Equal(t, core.StatusPending, po.Status)
			assert.Equal(t, 1, po.SupplierID, "fallback supplier")
		})
	}
}

func TestEvaluateAndReorder_OrderDates(t *testing.T) {
	e := newEngine(t, false)
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 100})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 0, ReorderThreshold: 5, WarehouseID: 1})

	res, err := e.reorder.EvaluateAndReorder(context.Background(), 1)
	require.NoError(t, err)
	require.NotNil(t, res)

	po, err := e.orders.GetOrder(context.Background(), res.OrderID)
	require.NoError(t, err)
	ordered, err := time.Parse("2006-01-02", po.OrderDate)
	require.NoError(t, err)
	expected, err := time.Parse("2006-01-02", po.ExpectedArrivalDate)
	require.NoError(t, err)
	assert.Equal(t, 72*time.Hour, expected.Sub(ordered))
}

func TestEvaluateAndReorder_SkipsWhenPendingOrAboveThreshold(t *testing.T) {
	e := newEngine(t, false)
	ctx := context.Background()
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 100})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 4, ReorderThreshold: 10, WarehouseID: 1})
	e.store.AddProduct(core.Product{ID: 2, SKU: "B", QuantityInStock: 10, ReorderThreshold: 10, WarehouseID: 1})

	first, err := e.reorder.EvaluateAndReorder(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, first)

	second, err := e.reorder.EvaluateAndReorder(ctx, 1)
	require.NoError(t, err)
	assert.Nil(t, second)
	assert.Len(t, pendingOrders(t, e, 1), 1)

	none, err := e.reorder.EvaluateAndReorder(ctx, 2)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = e.reorder.EvaluateAndReorder(ctx, 99)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestEvaluateAndReorder_ConcurrentCallsCreateOneOrder(t *testing.T) {
	e := newEngine(t, false)
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 100})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 1, ReorderThreshold: 10, WarehouseID: 1})

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.reorder.EvaluateAndReorder(context.Background(), 1)
			assert.NoError(t, err)
			if res != nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Len(t, pendingOrders(t, e, 1), 1)
}

func TestListProducts_LazyReorder(t *testing.T) {
	for _, auto := range []bool{true, false} {
		e := newEngine(t, auto)
		ctx := context.Background()
		e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 100})
		e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 1, ReorderThreshold: 5, WarehouseID: 1})
		e.store.AddProduct(core.Product{ID: 2, SKU: "B", QuantityInStock: 50, ReorderThreshold: 5, WarehouseID: 1})

		products, err := e.inventory.ListProducts(ctx)
		require.NoError(t, err)
		require.Len(t, products, 2)
		require.NotNil(t, products[0].WarehouseName)
		assert.Equal(t, "Main", *products[0].WarehouseName)

		_, err = e.inventory.ListProducts(ctx)
		require.NoError(t, err)

		if auto {
			assert.Len(t, pendingOrders(t, e, 1), 1, "one order despite repeated reads")
		} else {
			assert.Empty(t, pendingOrders(t, e, 1))
		}
		assert.Empty(t, pendingOrders(t, e, 2))
	}
}

func TestGetProduct_LazyReorder(t *testing.T) {
	e := newEngine(t, true)
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 100})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 1, ReorderThreshold: 5, WarehouseID: 1})

	p, err := e.inventory.GetProduct(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "A", p.SKU)
	assert.Len(t, pendingOrders(t, e, 1), 1)

	_, err = e.inventory.GetProduct(context.Background(), 2)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

// ── Purchase orders ───────────────────────────────────────────────────────────

func TestCreate_Validation(t *testing.T) {
	e := newEngine(t, false)
	ctx := context.Background()
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 100})
	e.store.AddWarehouse(core.Warehouse{ID: 2, Name: "Other", Capacity: 100})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 20, ReorderThreshold: 5, WarehouseID: 1})

	_, err := e.orders.Create(ctx, core.CreateOrderInput{ProductID: 1, SupplierID: 1, WarehouseID: 1, QuantityOrdered: -1})
	assert.True(t, errors.Is(err, core.ErrInvalidInput))

	_, err = e.orders.Create(ctx, core.CreateOrderInput{ProductID: 1, SupplierID: 1, WarehouseID: 2, QuantityOrdered: 5})
	assert.True(t, errors.Is(err, core.ErrInvalidInput))

	_, err = e.orders.Create(ctx, core.CreateOrderInput{ProductID: 1, SupplierID: 77, WarehouseID: 1, QuantityOrdered: 5})
	assert.True(t, errors.Is(err, core.ErrNotFound))

	po, err := e.orders.Create(ctx, core.CreateOrderInput{ProductID: 1, SupplierID: 2, WarehouseID: 1, QuantityOrdered: 5, CapacityIssue: true})
	require.NoError(t, err)
	assert.Equal(t, 5, po.QuantityOrdered)
	assert.True(t, po.CapacityIssue)

	_, err = e.orders.Create(ctx, core.CreateOrderInput{ProductID: 1, SupplierID: 2, WarehouseID: 1, QuantityOrdered: 3})
	assert.True(t, errors.Is(err, core.ErrConflict), "got %v", err)
}

func TestCreateManual(t *testing.T) {
	e := newEngine(t, false)
	ctx := context.Background()
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 30})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 20, ReorderThreshold: 5, DefaultSupplierID: supplierID(2), WarehouseID: 1})
	e.store.AddProduct(core.Product{ID: 2, SKU: "B", QuantityInStock: 0, ReorderThreshold: 0, WarehouseID: 1})

	po, err := e.orders.CreateManual(ctx, core.ManualOrderInput{ProductID: 1, RequestedQuantity: 25})
	require.NoError(t, err)
	assert.Equal(t, 10, po.QuantityOrdered)
	assert.True(t, po.CapacityIssue)
	assert.Equal(t, 2, po.SupplierID)
	assert.Equal(t, 1, po.WarehouseID)

	po, err = e.orders.CreateManual(ctx, core.ManualOrderInput{ProductID: 2, RequestedQuantity: 4})
	require.NoError(t, err)
	assert.Equal(t, 4, po.QuantityOrdered)
	assert.False(t, po.CapacityIssue)
	assert.Equal(t, 1, po.SupplierID, "fallback supplier")

	_, err = e.orders.CreateManual(ctx, core.ManualOrderInput{ProductID: 1, RequestedQuantity: 1})
	assert.True(t, errors.Is(err, core.ErrConflict))

	_, err = e.orders.CreateManual(ctx, core.ManualOrderInput{ProductID: 9, RequestedQuantity: 1})
	assert.True(t, errors.Is(err, core.ErrNotFound))

	_, err = e.orders.CreateManual(ctx, core.ManualOrderInput{ProductID: 2, WarehouseID: 5, RequestedQuantity: 1})
	assert.True(t, errors.Is(err, core.ErrInvalidInput))
}

func TestReceive_LimitedByCapacityDrift(t *testing.T) {
	e := newEngine(t, false)
	ctx := context.Background()
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 20})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 7, WarehouseID: 1})
	e.store.AddProduct(core.Product{ID: 2, SKU: "B", QuantityInStock: 0, WarehouseID: 1})

	po, err := e.orders.Create(ctx, core.CreateOrderInput{ProductID: 1, SupplierID: 1, WarehouseID: 1, QuantityOrdered: 10})
	require.NoError(t, err)

	// Space shrinks to 3 between ordering and receipt.
	_, err = e.inventory.AdjustStock(ctx, 2, 10, "transfer in")
	require.NoError(t, err)

	res, err := e.inventory.ReceiveOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, res.AddedQuantity)
	assert.True(t, res.CapacityLimited)
	assert.Equal(t, 10, stockOf(t, e, 1))

	got, err := e.orders.GetOrder(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, core.StatusReceived, got.Status)

	_, err = e.inventory.ReceiveOrder(ctx, po.ID)
	assert.True(t, errors.Is(err, core.ErrAlreadyReceived))
	assert.Equal(t, 10, stockOf(t, e, 1))

	_, err = e.orders.Receive(ctx, 404)
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestReceive_FullWarehouseStillMarksReceived(t *testing.T) {
	e := newEngine(t, false)
	ctx := context.Background()
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 10})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 10, WarehouseID: 1})

	po, err := e.orders.Create(ctx, core.CreateOrderInput{ProductID: 1, SupplierID: 1, WarehouseID: 1, QuantityOrdered: 6})
	require.NoError(t, err)

	res, err := e.orders.Receive(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.AddedQuantity)
	assert.True(t, res.CapacityLimited)
	assert.Equal(t, 10, stockOf(t, e, 1))
	assert.Empty(t, pendingOrders(t, e, 1))
}

func TestReceiveOrder_ReordersWhenStillBelowThreshold(t *testing.T) {
	e := newEngine(t, false)
	ctx := context.Background()
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 30})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 0, ReorderThreshold: 50, WarehouseID: 1})

	first, err := e.reorder.EvaluateAndReorder(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, 30, first.QuantityOrdered)
	assert.True(t, first.CapacityIssue)

	res, err := e.inventory.ReceiveOrder(ctx, first.OrderID)
	require.NoError(t, err)
	assert.Equal(t, 30, res.AddedQuantity)
	require.NotNil(t, res.Reorder, "30 in stock is still below 50")
	assert.Equal(t, 0, res.Reorder.QuantityOrdered)
	assert.True(t, res.Reorder.CapacityIssue)

	assert.Equal(t, []events.Type{events.OrderCreated, events.OrderReceived, events.OrderCreated}, e.pub.types())
}

func TestPublishFailureDoesNotFailOperation(t *testing.T) {
	e := newEngine(t, false)
	e.pub.err = errors.New("broker down")
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 30})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 0, ReorderThreshold: 0, WarehouseID: 1})

	po, err := e.orders.Create(context.Background(), core.CreateOrderInput{ProductID: 1, SupplierID: 1, WarehouseID: 1, QuantityOrdered: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, po.QuantityOrdered)
}

func TestListWarehouses(t *testing.T) {
	e := newEngine(t, false)
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 200})
	e.store.AddWarehouse(core.Warehouse{ID: 2, Name: "Empty", Capacity: 50})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 30, WarehouseID: 1})
	e.store.AddProduct(core.Product{ID: 2, SKU: "B", QuantityInStock: 20, WarehouseID: 1})

	views, err := e.inventory.ListWarehouses(context.Background())
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, 50, views[0].CurrentStock)
	assert.Equal(t, 150, views[0].AvailableSpace)
	assert.Equal(t, "25", views[0].UtilizationPct.String())
	assert.Equal(t, 50, views[1].AvailableSpace)
}

func TestAdjustStock_RejectsOutOfRangeQuantities(t *testing.T) {
	e := newEngine(t, false)
	ctx := context.Background()
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 100})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 0, WarehouseID: 1})
	e.store.AddProduct(core.Product{ID: 2, SKU: "B", QuantityInStock: 0, WarehouseID: 1})
	e.store.AddProduct(core.Product{ID: 3, SKU: "C", QuantityInStock: 2, WarehouseID: 1})

	_, err := e.inventory.AdjustStock(ctx, 1, math.MaxInt64, "bulk")
	assert.True(t, errors.Is(err, core.ErrInvalidInput), "got %v", err)
	_, err = e.inventory.AdjustStock(ctx, 2, math.MinInt64, "bulk")
	assert.True(t, errors.Is(err, core.ErrInvalidInput), "got %v", err)
	_, err = e.ledger.ApplyDelta(ctx, 2, core.MaxQuantity+1)
	assert.True(t, errors.Is(err, core.ErrInvalidInput), "got %v", err)

	// In range on its own, but the resulting stock would not fit.
	_, err = e.inventory.AdjustStock(ctx, 3, core.MaxQuantity, "bulk")
	assert.True(t, errors.Is(err, core.ErrInvalidState), "got %v", err)

	space, err := e.capacity.AvailableSpace(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 98, space)

	_, err = e.orders.Create(ctx, core.CreateOrderInput{ProductID: 1, SupplierID: 1, WarehouseID: 1, QuantityOrdered: math.MaxInt64})
	assert.True(t, errors.Is(err, core.ErrInvalidInput), "got %v", err)
	_, err = e.orders.CreateManual(ctx, core.ManualOrderInput{ProductID: 1, RequestedQuantity: core.MaxQuantity + 1})
	assert.True(t, errors.Is(err, core.ErrInvalidInput), "got %v", err)
}

func TestReceive_NeverExceedsCapacityAfterLargeAdjustments(t *testing.T) {
	e := newEngine(t, false)
	ctx := context.Background()
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 100})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 0, WarehouseID: 1})
	e.store.AddProduct(core.Product{ID: 2, SKU: "B", QuantityInStock: 0, WarehouseID: 1})

	po, err := e.orders.Create(ctx, core.CreateOrderInput{ProductID: 1, SupplierID: 1, WarehouseID: 1, QuantityOrdered: 50})
	require.NoError(t, err)

	_, err = e.inventory.AdjustStock(ctx, 1, core.MaxQuantity, "bulk")
	require.NoError(t, err)
	_, err = e.inventory.AdjustStock(ctx, 2, core.MaxQuantity, "bulk")
	require.NoError(t, err)

	space, err := e.capacity.AvailableSpace(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, 100-2*core.MaxQuantity, space)

	res, err := e.orders.Receive(ctx, po.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.AddedQuantity)
	assert.True(t, res.CapacityLimited)
	assert.Equal(t, core.MaxQuantity, stockOf(t, e, 1))
}

func TestAdjustStock_ConcurrentDeltasNeverGoNegative(t *testing.T) {
	e := newEngine(t, false)
	e.store.AddWarehouse(core.Warehouse{ID: 1, Name: "Main", Capacity: 1000})
	e.store.AddProduct(core.Product{ID: 1, SKU: "A", QuantityInStock: 50, WarehouseID: 1})

	const workers = 40
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded, rejected := 0, 0
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := e.inventory.AdjustStock(context.Background(), 1, -3, "sale")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
				assert.GreaterOrEqual(t, res.Product.QuantityInStock, 0)
			case errors.Is(err, core.ErrInvalidState):
				rejected++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	// 50 units cover 16 sales of 3; every other sale must be rejected.
	assert.Equal(t, 16, succeeded)
	assert.Equal(t, workers-16, rejected)
	assert.Equal(t, 50-3*succeeded, stockOf(t, e, 1))
}
