// Package memstore is an in-process core.Store. Transactions run one at a time
// against a copy of the data that replaces the live copy only on commit.
package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"souk-inventory/internal/core"
)

type state struct {
	warehouses  map[int]core.Warehouse
	suppliers   map[int]core.Supplier
	products    map[int]core.Product
	orders      map[int]core.PurchaseOrder
	nextOrderID int
}

func (s *state) clone() *state {
	c := &state{
		warehouses:  make(map[int]core.Warehouse, len(s.warehouses)),
		suppliers:   make(map[int]core.Supplier, len(s.suppliers)),
		products:    make(map[int]core.Product, len(s.products)),
		orders:      make(map[int]core.PurchaseOrder, len(s.orders)),
		nextOrderID: s.nextOrderID,
	}
	for k, v := range s.warehouses {
		c.warehouses[k] = v
	}
	for k, v := range s.suppliers {
		c.suppliers[k] = v
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	return c
}

// Store is a mutex-guarded in-memory core.Store.
type Store struct {
	mu   sync.Mutex
	data *state
}

var _ core.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{data: &state{
		warehouses:  make(map[int]core.Warehouse),
		suppliers:   make(map[int]core.Supplier),
		products:    make(map[int]core.Product),
		orders:      make(map[int]core.PurchaseOrder),
		nextOrderID: 1,
	}}
}

// AddWarehouse inserts or replaces a warehouse.
func (s *Store) AddWarehouse(w core.Warehouse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.warehouses[w.ID] = w
}

// AddSupplier inserts or replaces a supplier.
func (s *Store) AddSupplier(sup core.Supplier) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data.suppliers[sup.ID] = sup
}

// AddProduct inserts or replaces a product. Joined name fields are ignored.
func (s *Store) AddProduct(p core.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.SupplierName, p.WarehouseName = nil, nil
	s.data.products[p.ID] = p
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// WithinTx runs fn against a private copy of the data and publishes the copy if fn succeeds.
func (s *Store) WithinTx(ctx context.Context, fn func(repo core.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &repo{data: s.data.clone()}
	if err := fn(tx); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%w: commit: %w", core.ErrStorage, err)
	}
	s.data = tx.data
	return nil
}

// locked runs fn against the live data under the store mutex.
func (s *Store) locked(fn func(r *repo) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&repo{data: s.data})
}

func (s *Store) GetProduct(ctx context.Context, id int) (p *core.Product, err error) {
	err = s.locked(func(r *repo) error { p, err = r.GetProduct(ctx, id); return err })
	return p, err
}

func (s *Store) GetProductWithJoins(ctx context.Context, id int) (p *core.Product, err error) {
	err = s.locked(func(r *repo) error { p, err = r.GetProductWithJoins(ctx, id); return err })
	return p, err
}

func (s *Store) ListProductsWithJoins(ctx context.Context) (ps []core.Product, err error) {
	err = s.locked(func(r *repo) error { ps, err = r.ListProductsWithJoins(ctx); return err })
	return ps, err
}

func (s *Store) ApplyStockDelta(ctx context.Context, productID, delta int) (q int, err error) {
	err = s.locked(func(r *repo) error { q, err = r.ApplyStockDelta(ctx, productID, delta); return err })
	return q, err
}

func (s *Store) GetWarehouse(ctx context.Context, id int) (w *core.Warehouse, err error) {
	err = s.locked(func(r *repo) error { w, err = r.GetWarehouse(ctx, id); return err })
	return w, err
}

func (s *Store) LockWarehouse(ctx context.Context, id int) (*core.Warehouse, error) {
	return s.GetWarehouse(ctx, id)
}

func (s *Store) ListWarehouses(ctx context.Context) (ws []core.Warehouse, err error) {
	err = s.locked(func(r *repo) error { ws, err = r.ListWarehouses(ctx); return err })
	return ws, err
}

func (s *Store) SumStockByWarehouse(ctx context.Context, warehouseID int) (total int, err error) {
	err = s.locked(func(r *repo) error { total, err = r.SumStockByWarehouse(ctx, warehouseID); return err })
	return total, err
}

func (s *Store) GetSupplier(ctx context.Context, id int) (sup *core.Supplier, err error) {
	err = s.locked(func(r *repo) error { sup, err = r.GetSupplier(ctx, id); return err })
	return sup, err
}

func (s *Store) FindPendingOrder(ctx context.Context, productID, warehouseID int) (po *core.PurchaseOrder, err error) {
	err = s.locked(func(r *repo) error { po, err = r.FindPendingOrder(ctx, productID, warehouseID); return err })
	return po, err
}

func (s *Store) InsertOrder(ctx context.Context, o core.NewPurchaseOrder) (id int, err error) {
	err = s.locked(func(r *repo) error { id, err = r.InsertOrder(ctx, o); return err })
	return id, err
}

func (s *Store) GetOrder(ctx context.Context, id int) (po *core.PurchaseOrder, err error) {
	err = s.locked(func(r *repo) error { po, err = r.GetOrder(ctx, id); return err })
	return po, err
}

func (s *Store) UpdateOrderStatus(ctx context.Context, id int, status core.OrderStatus) error {
	return s.locked(func(r *repo) error { return r.UpdateOrderStatus(ctx, id, status) })
}

func (s *Store) ListOrdersWithJoins(ctx context.Context) (pos []core.PurchaseOrder, err error) {
	err = s.locked(func(r *repo) error { pos, err = r.ListOrdersWithJoins(ctx); return err })
	return pos, err
}

// repo implements core.Repository over a state snapshot. It does no locking;
// Store serializes access to it.
type repo struct {
	data *state
}

func (r *repo) GetProduct(_ context.Context, id int) (*core.Product, error) {
	p, ok := r.data.products[id]
	if !ok {
		return nil, fmt.Errorf("product %d: %w", id, core.ErrNotFound)
	}
	return &p, nil
}

func (r *repo) joinProduct(p core.Product) core.Product {
	if p.DefaultSupplierID != nil {
		if sup, ok := r.data.suppliers[*p.DefaultSupplierID]; ok {
			name := sup.Name
			p.SupplierName = &name
		}
	}
	if w, ok := r.data.warehouses[p.WarehouseID]; ok {
		name := w.Name
		p.WarehouseName = &name
	}
	return p
}

func (r *repo) GetProductWithJoins(ctx context.Context, id int) (*core.Product, error) {
	p, err := r.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	joined := r.joinProduct(*p)
	return &joined, nil
}

func (r *repo) ListProductsWithJoins(_ context.Context) ([]core.Product, error) {
	products := make([]core.Product, 0, len(r.data.products))
	for _, p := range r.data.products {
		products = append(products, r.joinProduct(p))
	}
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	return products, nil
}

func (r *repo) ApplyStockDelta(_ context.Context, productID, delta int) (int, error) {
	p, ok := r.data.products[productID]
	if !ok {
		return 0, fmt.Errorf("product %d: %w", productID, core.ErrNotFound)
	}
	newQty := p.QuantityInStock + delta
	if newQty < 0 || newQty > core.MaxQuantity {
		return 0, fmt.Errorf("%w: stock of product %d would become %d", core.ErrInvalidState, productID, newQty)
	}
	p.QuantityInStock = newQty
	r.data.products[productID] = p
	return newQty, nil
}

func (r *repo) GetWarehouse(_ context.Context, id int) (*core.Warehouse, error) {
	w, ok := r.data.warehouses[id]
	if !ok {
		return nil, fmt.Errorf("warehouse %d: %w", id, core.ErrNotFound)
	}
	return &w, nil
}

// LockWarehouse is a plain read: the store mutex already serializes transactions.
func (r *repo) LockWarehouse(ctx context.Context, id int) (*core.Warehouse, error) {
	return r.GetWarehouse(ctx, id)
}

func (r *repo) ListWarehouses(_ context.Context) ([]core.Warehouse, error) {
	warehouses := make([]core.Warehouse, 0, len(r.data.warehouses))
	for _, w := range r.data.warehouses {
		warehouses = append(warehouses, w)
	}
	sort.Slice(warehouses, func(i, j int) bool { return warehouses[i].ID < warehouses[j].ID })
	return warehouses, nil
}

func (r *repo) SumStockByWarehouse(_ context.Context, warehouseID int) (int, error) {
	total := 0
	for _, p := range r.data.products {
		if p.WarehouseID == warehouseID {
			total += p.QuantityInStock
		}
	}
	return total, nil
}

func (r *repo) GetSupplier(_ context.Context, id int) (*core.Supplier, error) {
	sup, ok := r.data.suppliers[id]
	if !ok {
		return nil, fmt.Errorf("supplier %d: %w", id, core.ErrNotFound)
	}
	return &sup, nil
}

func (r *repo) FindPendingOrder(_ context.Context, productID, warehouseID int) (*core.PurchaseOrder, error) {
	var found *core.PurchaseOrder
	for _, po := range r.data.orders {
		if po.ProductID == productID && po.WarehouseID == warehouseID && po.Status == core.StatusPending {
			if found == nil || po.ID < found.ID {
				po := po
				found = &po
			}
		}
	}
	return found, nil
}

func (r *repo) InsertOrder(ctx context.Context, o core.NewPurchaseOrder) (int, error) {
	if _, ok := r.data.products[o.ProductID]; !ok {
		return 0, fmt.Errorf("%w: insert order: product %d does not exist", core.ErrStorage, o.ProductID)
	}
	if _, ok := r.data.suppliers[o.SupplierID]; !ok {
		return 0, fmt.Errorf("%w: insert order: supplier %d does not exist", core.ErrStorage, o.SupplierID)
	}
	if _, ok := r.data.warehouses[o.WarehouseID]; !ok {
		return 0, fmt.Errorf("%w: insert order: warehouse %d does not exist", core.ErrStorage, o.WarehouseID)
	}
	if pending, _ := r.FindPendingOrder(ctx, o.ProductID, o.WarehouseID); pending != nil {
		return 0, fmt.Errorf("%w: pending order %d exists for product %d in warehouse %d",
			core.ErrConflict, pending.ID, o.ProductID, o.WarehouseID)
	}

	id := r.data.nextOrderID
	r.data.nextOrderID++
	r.data.orders[id] = core.PurchaseOrder{
		ID:                  id,
		ProductID:           o.ProductID,
		SupplierID:          o.SupplierID,
		WarehouseID:         o.WarehouseID,
		QuantityOrdered:     o.QuantityOrdered,
		OrderDate:           o.OrderDate,
		ExpectedArrivalDate: o.ExpectedArrivalDate,
		Status:              core.StatusPending,
		CapacityIssue:       o.CapacityIssue,
	}
	return id, nil
}

func (r *repo) GetOrder(_ context.Context, id int) (*core.PurchaseOrder, error) {
	po, ok := r.data.orders[id]
	if !ok {
		return nil, fmt.Errorf("purchase order %d: %w", id, core.ErrNotFound)
	}
	return &po, nil
}

func (r *repo) UpdateOrderStatus(_ context.Context, id int, status core.OrderStatus) error {
	po, ok := r.data.orders[id]
	if !ok {
		return fmt.Errorf("purchase order %d: %w", id, core.ErrNotFound)
	}
	po.Status = status
	r.data.orders[id] = po
	return nil
}

func (r *repo) ListOrdersWithJoins(_ context.Context) ([]core.PurchaseOrder, error) {
	orders := make([]core.PurchaseOrder, 0, len(r.data.orders))
	for _, po := range r.data.orders {
		if p, ok := r.data.products[po.ProductID]; ok {
			sku, name := p.SKU, p.Name
			po.ProductSKU, po.ProductName = &sku, &name
		}
		if sup, ok := r.data.suppliers[po.SupplierID]; ok {
			name := sup.Name
			po.SupplierName = &name
		}
		if w, ok := r.data.warehouses[po.WarehouseID]; ok {
			name := w.Name
			po.WarehouseName = &name
		}
		orders = append(orders, po)
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].ID > orders[j].ID })
	return orders, nil
}
