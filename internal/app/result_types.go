package app

import "souk-inventory/internal/core"

// ProductListResult is returned by ListProducts.
type ProductListResult struct {
	Products []core.Product `json:"products"`
}

// AdjustStockResult is returned by AdjustStock. Reorder is nil when no order was created.
type AdjustStockResult struct {
	Success bool                `json:"success"`
	Product *core.Product       `json:"product"`
	Reorder *core.ReorderResult `json:"reorder"`
}

// OrderListResult is returned by ListOrders.
type OrderListResult struct {
	Orders []core.PurchaseOrder `json:"orders"`
}

// CreateOrderResult is returned by CreateManualOrder.
type CreateOrderResult struct {
	Created         bool `json:"created"`
	ID              int  `json:"id"`
	QuantityOrdered int  `json:"quantity_ordered"`
	CapacityIssue   bool `json:"capacity_issue"`
}

// ReceiveOrderResult is returned by ReceiveOrder.
type ReceiveOrderResult struct {
	Received bool `json:"received"`
	core.ReceiveResult
}

// WarehouseListResult is returned by ListWarehouses.
type WarehouseListResult struct {
	Warehouses []core.WarehouseView `json:"warehouses"`
}

// HealthResult is returned by Health.
type HealthResult struct {
	Status string `json:"status"`
	Store  string `json:"store"`
}
