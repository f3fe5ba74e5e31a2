package db

import (
	"context"
	"errors"
	"fmt"

	"souk-inventory/internal/core"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type queries struct {
	db DBTX
}

// Store is the PostgreSQL core.Store.
type Store struct {
	*queries
	pool *pgxpool.Pool
}

var _ core.Store = (*Store)(nil)

// NewStore returns a Store backed by pool.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{queries: &queries{db: pool}, pool: pool}
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		return mapErr(err, "ping")
	}
	return nil
}

// WithinTx runs fn in a database transaction, committing only if fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(repo core.Repository) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return mapErr(err, "begin transaction")
	}
	defer tx.Rollback(ctx)

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return mapErr(err, "commit transaction")
	}
	return nil
}

// mapErr translates driver errors into the core sentinel errors.
func mapErr(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, core.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%s: %w: %s", op, core.ErrConflict, pgErr.Message)
		case "23514", "22003":
			return fmt.Errorf("%s: %w: %s", op, core.ErrInvalidState, pgErr.Message)
		}
	}
	return fmt.Errorf("%w: %s: %w", core.ErrStorage, op, err)
}

const productJoinSelect = `
	SELECT p.id, p.sku, p.name, p.quantity_in_stock, p.reorder_threshold,
	       p.default_supplier_id, p.warehouse_id, s.name, w.name
	FROM products p
	LEFT JOIN suppliers s ON s.id = p.default_supplier_id
	LEFT JOIN warehouses w ON w.id = p.warehouse_id`

const orderSelect = `
	SELECT id, product_id, supplier_id, warehouse_id, quantity_ordered,
	       order_date::text, COALESCE(expected_arrival_date::text, ''), status, capacity_issue
	FROM purchase_orders`

func scanProductJoined(row pgx.Row) (*core.Product, error) {
	p := &core.Product{}
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.QuantityInStock, &p.ReorderThreshold,
		&p.DefaultSupplierID, &p.WarehouseID, &p.SupplierName, &p.WarehouseName)
	return p, err
}

func scanOrder(row pgx.Row) (*core.PurchaseOrder, error) {
	po := &core.PurchaseOrder{}
	var status string
	err := row.Scan(&po.ID, &po.ProductID, &po.SupplierID, &po.WarehouseID, &po.QuantityOrdered,
		&po.OrderDate, &po.ExpectedArrivalDate, &status, &po.CapacityIssue)
	po.Status = core.OrderStatus(status)
	return po, err
}

func (q *queries) GetProduct(ctx context.Context, id int) (*core.Product, error) {
	p := &core.Product{}
	err := q.db.QueryRow(ctx, `
		SELECT id, sku, name, quantity_in_stock, reorder_threshold, default_supplier_id, warehouse_id
		FROM products WHERE id = $1`, id,
	).Scan(&p.ID, &p.SKU, &p.Name, &p.QuantityInStock, &p.ReorderThreshold, &p.DefaultSupplierID, &p.WarehouseID)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("get product %d", id))
	}
	return p, nil
}

func (q *queries) GetProductWithJoins(ctx context.Context, id int) (*core.Product, error) {
	p, err := scanProductJoined(q.db.QueryRow(ctx, productJoinSelect+` WHERE p.id = $1`, id))
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("get product %d", id))
	}
	return p, nil
}

func (q *queries) ListProductsWithJoins(ctx context.Context) ([]core.Product, error) {
	rows, err := q.db.Query(ctx, productJoinSelect+` ORDER BY p.id`)
	if err != nil {
		return nil, mapErr(err, "list products")
	}
	defer rows.Close()

	var products []core.Product
	for rows.Next() {
		p, err := scanProductJoined(rows)
		if err != nil {
			return nil, mapErr(err, "scan product")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err, "list products")
	}
	return products, nil
}

// ApplyStockDelta adds delta to the product's stock in a single statement. The
// non-negative guard lives in the WHERE clause so concurrent deltas cannot
// drive stock below zero.
func (q *queries) ApplyStockDelta(ctx context.Context, productID, delta int) (int, error) {
	var qty int
	err := q.db.QueryRow(ctx, `
		UPDATE products
		SET quantity_in_stock = quantity_in_stock + $2
		WHERE id = $1 AND quantity_in_stock + $2 >= 0
		RETURNING quantity_in_stock`, productID, delta,
	).Scan(&qty)
	if err == nil {
		return qty, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, mapErr(err, fmt.Sprintf("apply stock delta to product %d", productID))
	}

	var current int
	if err := q.db.QueryRow(ctx, `SELECT quantity_in_stock FROM products WHERE id = $1`, productID).Scan(&current); err != nil {
		return 0, mapErr(err, fmt.Sprintf("get product %d", productID))
	}
	return 0, fmt.Errorf("%w: stock of product %d would become %d", core.ErrInvalidState, productID, current+delta)
}

func (q *queries) GetWarehouse(ctx context.Context, id int) (*core.Warehouse, error) {
	w := &core.Warehouse{}
	err := q.db.QueryRow(ctx, `SELECT id, name, capacity FROM warehouses WHERE id = $1`, id).
		Scan(&w.ID, &w.Name, &w.Capacity)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("get warehouse %d", id))
	}
	return w, nil
}

// LockWarehouse takes a row lock on the warehouse that is held until the
// enclosing transaction ends. Outside a transaction it is a plain read.
func (q *queries) LockWarehouse(ctx context.Context, id int) (*core.Warehouse, error) {
	w := &core.Warehouse{}
	err := q.db.QueryRow(ctx, `SELECT id, name, capacity FROM warehouses WHERE id = $1 FOR UPDATE`, id).
		Scan(&w.ID, &w.Name, &w.Capacity)
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("lock warehouse %d", id))
	}
	return w, nil
}

func (q *queries) ListWarehouses(ctx context.Context) ([]core.Warehouse, error) {
	rows, err := q.db.Query(ctx, `SELECT id, name, capacity FROM warehouses ORDER BY id`)
	if err != nil {
		return nil, mapErr(err, "list warehouses")
	}
	defer rows.Close()

	var warehouses []core.Warehouse
	for rows.Next() {
		var w core.Warehouse
		if err := rows.Scan(&w.ID, &w.Name, &w.Capacity); err != nil {
			return nil, mapErr(err, "scan warehouse")
		}
		warehouses = append(warehouses, w)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err, "list warehouses")
	}
	return warehouses, nil
}

func (q *queries) SumStockByWarehouse(ctx context.Context, warehouseID int) (int, error) {
	var total int
	err := q.db.QueryRow(ctx,
		`SELECT COALESCE(SUM(quantity_in_stock), 0)::int FROM products WHERE warehouse_id = $1`, warehouseID,
	).Scan(&total)
	if err != nil {
		return 0, mapErr(err, fmt.Sprintf("sum stock in warehouse %d", warehouseID))
	}
	return total, nil
}

func (q *queries) GetSupplier(ctx context.Context, id int) (*core.Supplier, error) {
	s := &core.Supplier{}
	if err := q.db.QueryRow(ctx, `SELECT id, name FROM suppliers WHERE id = $1`, id).Scan(&s.ID, &s.Name); err != nil {
		return nil, mapErr(err, fmt.Sprintf("get supplier %d", id))
	}
	return s, nil
}

func (q *queries) FindPendingOrder(ctx context.Context, productID, warehouseID int) (*core.PurchaseOrder, error) {
	po, err := scanOrder(q.db.QueryRow(ctx, orderSelect+`
		WHERE product_id = $1 AND warehouse_id = $2 AND status = 'pending'
		ORDER BY id LIMIT 1`, productID, warehouseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("find pending order for product %d", productID))
	}
	return po, nil
}

func (q *queries) InsertOrder(ctx context.Context, o core.NewPurchaseOrder) (int, error) {
	var expected *string
	if o.ExpectedArrivalDate != "" {
		expected = &o.ExpectedArrivalDate
	}
	var id int
	err := q.db.QueryRow(ctx, `
		INSERT INTO purchase_orders (product_id, supplier_id, warehouse_id, quantity_ordered,
		                             order_date, expected_arrival_date, status, capacity_issue)
		VALUES ($1, $2, $3, $4, $5::date, $6::date, 'pending', $7)
		RETURNING id`,
		o.ProductID, o.SupplierID, o.WarehouseID, o.QuantityOrdered,
		o.OrderDate, expected, o.CapacityIssue,
	).Scan(&id)
	if err != nil {
		return 0, mapErr(err, fmt.Sprintf("insert order for product %d", o.ProductID))
	}
	return id, nil
}

func (q *queries) GetOrder(ctx context.Context, id int) (*core.PurchaseOrder, error) {
	po, err := scanOrder(q.db.QueryRow(ctx, orderSelect+` WHERE id = $1`, id))
	if err != nil {
		return nil, mapErr(err, fmt.Sprintf("get purchase order %d", id))
	}
	return po, nil
}

func (q *queries) UpdateOrderStatus(ctx context.Context, id int, status core.OrderStatus) error {
	tag, err := q.db.Exec(ctx, `UPDATE purchase_orders SET status = $2 WHERE id = $1`, id, string(status))
	if err != nil {
		return mapErr(err, fmt.Sprintf("update purchase order %d", id))
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("purchase order %d: %w", id, core.ErrNotFound)
	}
	return nil
}

func (q *queries) ListOrdersWithJoins(ctx context.Context) ([]core.PurchaseOrder, error) {
	rows, err := q.db.Query(ctx, `
		SELECT po.id, po.product_id, po.supplier_id, po.warehouse_id, po.quantity_ordered,
		       po.order_date::text, COALESCE(po.expected_arrival_date::text, ''), po.status, po.capacity_issue,
		       p.sku, p.name, s.name, w.name
		FROM purchase_orders po
		LEFT JOIN products p ON p.id = po.product_id
		LEFT JOIN suppliers s ON s.id = po.supplier_id
		LEFT JOIN warehouses w ON w.id = po.warehouse_id
		ORDER BY po.id DESC`)
	if err != nil {
		return nil, mapErr(err, "list purchase orders")
	}
	defer rows.Close()

	var orders []core.PurchaseOrder
	for rows.Next() {
		var po core.PurchaseOrder
		var status string
		if err := rows.Scan(&po.ID, &po.ProductID, &po.SupplierID, &po.WarehouseID, &po.QuantityOrdered,
			&po.OrderDate, &po.ExpectedArrivalDate, &status, &po.CapacityIssue,
			&po.ProductSKU, &po.ProductName, &po.SupplierName, &po.WarehouseName); err != nil {
			return nil, mapErr(err, "scan purchase order")
		}
		po.Status = core.OrderStatus(status)
		orders = append(orders, po)
	}
	if err := rows.Err(); err != nil {
		return nil, mapErr(err, "list purchase orders")
	}
	return orders, nil
}
