package core

import "context"

// Repository is the set of persistence operations the engine consumes.
//
// Lookups of a missing row return an error wrapping ErrNotFound, except
// FindPendingOrder which returns (nil, nil). Any other failure wraps ErrStorage.
type Repository interface {
	GetProduct(ctx context.Context, id int) (*Product, error)
	GetProductWithJoins(ctx context.Context, id int) (*Product, error)
	ListProductsWithJoins(ctx context.Context) ([]Product, error)
	// ApplyStockDelta atomically adds delta to a product's stock and returns the
	// new quantity. It fails with ErrInvalidState, leaving stock untouched, if the
	// result would be negative.
	ApplyStockDelta(ctx context.Context, productID, delta int) (int, error)

	GetWarehouse(ctx context.Context, id int) (*Warehouse, error)
	// LockWarehouse reads a warehouse and, inside a transaction, holds an
	// exclusive lock on it until commit. Calling it twice in one transaction is allowed.
	LockWarehouse(ctx context.Context, id int) (*Warehouse, error)
	ListWarehouses(ctx context.Context) ([]Warehouse, error)
	SumStockByWarehouse(ctx context.Context, warehouseID int) (int, error)

	GetSupplier(ctx context.Context, id int) (*Supplier, error)

	FindPendingOrder(ctx context.Context, productID, warehouseID int) (*PurchaseOrder, error)
	// InsertOrder inserts a pending order. It fails with ErrConflict if a pending
	// order already exists for the same (product, warehouse).
	InsertOrder(ctx context.Context, o NewPurchaseOrder) (int, error)
	GetOrder(ctx context.Context, id int) (*PurchaseOrder, error)
	UpdateOrderStatus(ctx context.Context, id int, status OrderStatus) error
	ListOrdersWithJoins(ctx context.Context) ([]PurchaseOrder, error)
}

// Store is a Repository that can run a function inside a transaction.
// fn must use only the Repository it is given; if fn returns an error nothing it
// did is persisted.
type Store interface {
	Repository
	WithinTx(ctx context.Context, fn func(repo Repository) error) error
}
