package core

import "context"

// CapacityOracle computes the free space left in a warehouse.
//
// The result is capacity minus the stock of every product in the warehouse and
// can be negative when stock was pushed over capacity by manual adjustments.
// Callers must treat a negative value as no space, never as extra space.
type CapacityOracle interface {
	AvailableSpace(ctx context.Context, warehouseID int) (int, error)
	// AvailableSpaceTx reads within a caller-provided transaction, normally one
	// holding the warehouse lock so the figure cannot drift before it is used.
	AvailableSpaceTx(ctx context.Context, repo Repository, warehouseID int) (int, error)
}

type capacityOracle struct {
	store Store
}

// NewCapacityOracle constructs a CapacityOracle over store.
func NewCapacityOracle(store Store) CapacityOracle {
	return &capacityOracle{store: store}
}

func (c *capacityOracle) AvailableSpace(ctx context.Context, warehouseID int) (int, error) {
	return c.AvailableSpaceTx(ctx, c.store, warehouseID)
}

func (c *capacityOracle) AvailableSpaceTx(ctx context.Context, repo Repository, warehouseID int) (int, error) {
	w, err := repo.GetWarehouse(ctx, warehouseID)
	if err != nil {
		return 0, err
	}
	total, err := repo.SumStockByWarehouse(ctx, warehouseID)
	if err != nil {
		return 0, err
	}
	return w.Capacity - total, nil
}
