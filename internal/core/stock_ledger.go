package core

import (
	"context"
	"fmt"
)

// StockLedger is the authoritative per-product stock quantity.
type StockLedger interface {
	// CurrentStock returns a product's quantity in stock.
	CurrentStock(ctx context.Context, productID int) (int, error)
	// ApplyDelta adds delta (negative for consumption) to a product's stock and
	// returns the new quantity. Fails with ErrInvalidState, changing nothing, if
	// the result would be negative or above MaxQuantity. A delta outside
	// ±MaxQuantity fails with ErrInvalidInput.
	ApplyDelta(ctx context.Context, productID, delta int) (int, error)
	// WarehouseTotal sums stock over every product assigned to the warehouse.
	WarehouseTotal(ctx context.Context, warehouseID int) (int, error)

	// ApplyDeltaTx is ApplyDelta within a caller-provided transaction. The caller
	// must already hold the product's warehouse lock.
	ApplyDeltaTx(ctx context.Context, repo Repository, productID, delta int) (int, error)
}

type stockLedger struct {
	store Store
}

// NewStockLedger constructs a StockLedger over store.
func NewStockLedger(store Store) StockLedger {
	return &stockLedger{store: store}
}

func (l *stockLedger) CurrentStock(ctx context.Context, productID int) (int, error) {
	p, err := l.store.GetProduct(ctx, productID)
	if err != nil {
		return 0, err
	}
	return p.QuantityInStock, nil
}

func (l *stockLedger) ApplyDelta(ctx context.Context, productID, delta int) (int, error) {
	var newQty int
	err := l.store.WithinTx(ctx, func(repo Repository) error {
		p, err := repo.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if _, err := repo.LockWarehouse(ctx, p.WarehouseID); err != nil {
			return err
		}
		newQty, err = l.ApplyDeltaTx(ctx, repo, productID, delta)
		return err
	})
	if err != nil {
		return 0, err
	}
	return newQty, nil
}

func (l *stockLedger) ApplyDeltaTx(ctx context.Context, repo Repository, productID, delta int) (int, error) {
	if delta > MaxQuantity || delta < -MaxQuantity {
		return 0, fmt.Errorf("%w: delta %d is outside [-%d, %d]", ErrInvalidInput, delta, MaxQuantity, MaxQuantity)
	}
	newQty, err := repo.ApplyStockDelta(ctx, productID, delta)
	if err != nil {
		return 0, fmt.Errorf("apply delta %+d to product %d: %w", delta, productID, err)
	}
	return newQty, nil
}

func (l *stockLedger) WarehouseTotal(ctx context.Context, warehouseID int) (int, error) {
	return l.store.SumStockByWarehouse(ctx, warehouseID)
}
