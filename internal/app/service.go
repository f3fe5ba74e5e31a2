package app

import (
	"context"

	"souk-inventory/internal/core"
)

// ApplicationService is the single interface the UI adapters (CLI, Web) call.
// Implementations contain no presentation logic.
type ApplicationService interface {
	// ListProducts returns all products. Products below their threshold without a
	// pending order get one first when auto-reorder on read is enabled.
	ListProducts(ctx context.Context) (*ProductListResult, error)

	// GetProduct returns one product, with the same lazy reorder as ListProducts.
	GetProduct(ctx context.Context, productID int) (*core.Product, error)

	// AdjustStock applies a signed stock change and reports any reorder it caused.
	AdjustStock(ctx context.Context, req AdjustStockRequest) (*AdjustStockResult, error)

	// ListOrders returns all purchase orders, newest first.
	ListOrders(ctx context.Context) (*OrderListResult, error)

	// CreateManualOrder creates a user-entered purchase order, clipped to warehouse space.
	CreateManualOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error)

	// ReceiveOrder credits a pending purchase order to stock.
	ReceiveOrder(ctx context.Context, orderID int) (*ReceiveOrderResult, error)

	// ListWarehouses returns every warehouse with current stock and available space.
	ListWarehouses(ctx context.Context) (*WarehouseListResult, error)

	// Health reports whether the backing store is reachable.
	Health(ctx context.Context) (*HealthResult, error)
}

// Pinger is implemented by stores that can check their connection.
type Pinger interface {
	Ping(ctx context.Context) error
}
