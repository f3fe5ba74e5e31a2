// Package seed holds the demo catalogue loaded by cmd/seed and by the
// in-memory store at startup.
package seed

import (
	"context"
	"fmt"

	"souk-inventory/internal/core"
	"souk-inventory/internal/memstore"

	"github.com/jackc/pgx/v5/pgxpool"
)

func ptr(v int) *int { return &v }

// Warehouses, Suppliers and Products make up the demo dataset. Supplier 1 is
// the default fallback supplier.
var (
	Warehouses = []core.Warehouse{
		{ID: 1, Name: "Casablanca Central", Capacity: 500},
		{ID: 2, Name: "Marrakech Medina", Capacity: 150},
	}

	Suppliers = []core.Supplier{
		{ID: 1, Name: "Atlas General Supply"},
		{ID: 2, Name: "Fes Leather Cooperative"},
		{ID: 3, Name: "Essaouira Argan Collective"},
	}

	Products = []core.Product{
		{ID: 1, SKU: "TEA-MINT-250", Name: "Gunpowder Mint Tea 250g", QuantityInStock: 120, ReorderThreshold: 40, DefaultSupplierID: ptr(1), WarehouseID: 1},
		{ID: 2, SKU: "OIL-ARGAN-100", Name: "Cosmetic Argan Oil 100ml", QuantityInStock: 8, ReorderThreshold: 25, DefaultSupplierID: ptr(3), WarehouseID: 1},
		{ID: 3, SKU: "BAB-LEATHER-42", Name: "Leather Babouche Size 42", QuantityInStock: 30, ReorderThreshold: 10, DefaultSupplierID: ptr(2), WarehouseID: 2},
		{ID: 4, SKU: "LAMP-BRASS-M", Name: "Brass Lantern Medium", QuantityInStock: 3, ReorderThreshold: 6, WarehouseID: 2},
		{ID: 5, SKU: "SPICE-RAS-200", Name: "Ras el Hanout 200g", QuantityInStock: 200, ReorderThreshold: 50, DefaultSupplierID: ptr(1), WarehouseID: 1},
	}
)

// Memory loads the demo dataset into an in-memory store.
func Memory(store *memstore.Store) {
	for _, w := range Warehouses {
		store.AddWarehouse(w)
	}
	for _, s := range Suppliers {
		store.AddSupplier(s)
	}
	for _, p := range Products {
		store.AddProduct(p)
	}
}

// Postgres replaces the contents of every inventory table with the demo
// dataset in one transaction. Existing purchase orders are removed.
func Postgres(ctx context.Context, pool *pgxpool.Pool) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `TRUNCATE TABLE purchase_orders, products, suppliers, warehouses RESTART IDENTITY CASCADE`); err != nil {
		return fmt.Errorf("clear inventory tables: %w", err)
	}
	for _, w := range Warehouses {
		if _, err := tx.Exec(ctx, `INSERT INTO warehouses (id, name, capacity) VALUES ($1, $2, $3)`,
			w.ID, w.Name, w.Capacity); err != nil {
			return fmt.Errorf("insert warehouse %q: %w", w.Name, err)
		}
	}
	for _, s := range Suppliers {
		if _, err := tx.Exec(ctx, `INSERT INTO suppliers (id, name) VALUES ($1, $2)`, s.ID, s.Name); err != nil {
			return fmt.Errorf("insert supplier %q: %w", s.Name, err)
		}
	}
	for _, p := range Products {
		if _, err := tx.Exec(ctx, `
			INSERT INTO products (id, sku, name, quantity_in_stock, reorder_threshold, default_supplier_id, warehouse_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			p.ID, p.SKU, p.Name, p.QuantityInStock, p.ReorderThreshold, p.DefaultSupplierID, p.WarehouseID); err != nil {
			return fmt.Errorf("insert product %q: %w", p.SKU, err)
		}
	}

	// Explicit ids leave the sequences behind.
	for _, table := range []string{"warehouses", "suppliers", "products"} {
		if _, err := tx.Exec(ctx, fmt.Sprintf(
			`SELECT setval(pg_get_serial_sequence('%s', 'id'), (SELECT MAX(id) FROM %s))`, table, table)); err != nil {
			return fmt.Errorf("reset %s sequence: %w", table, err)
		}
	}

	return tx.Commit(ctx)
}
