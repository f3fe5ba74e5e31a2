package core

import "github.com/shopspring/decimal"

// Product is a stocked item. Each product lives in exactly one warehouse.
type Product struct {
	ID                int     `json:"id"`
	SKU               string  `json:"sku"`
	Name              string  `json:"name"`
	QuantityInStock   int     `json:"quantity_in_stock"`
	ReorderThreshold  int     `json:"reorder_threshold"`
	DefaultSupplierID *int    `json:"default_supplier_id"`
	WarehouseID       int     `json:"warehouse_id"`
	SupplierName      *string `json:"supplier_name,omitempty"`
	WarehouseName     *string `json:"warehouse_name,omitempty"`
}

// Warehouse is a storage location with a fixed capacity in stock units.
type Warehouse struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Capacity int    `json:"capacity"`
}

// WarehouseView is a warehouse with its derived occupancy figures.
// AvailableSpace may be negative if stock was forced above capacity.
type WarehouseView struct {
	Warehouse
	CurrentStock   int             `json:"current_stock"`
	AvailableSpace int             `json:"available_space"`
	UtilizationPct decimal.Decimal `json:"utilization_pct"`
}

// NewWarehouseView derives occupancy figures from capacity and the current stock total.
func NewWarehouseView(w Warehouse, currentStock int) WarehouseView {
	v := WarehouseView{
		Warehouse:      w,
		CurrentStock:   currentStock,
		AvailableSpace: w.Capacity - currentStock,
		UtilizationPct: decimal.Zero,
	}
	if w.Capacity > 0 {
		v.UtilizationPct = decimal.NewFromInt(int64(currentStock)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(w.Capacity))).
			Round(2)
	}
	return v
}

// AdjustResult is returned by InventoryService.AdjustStock.
type AdjustResult struct {
	Product *Product       `json:"product"`
	Reorder *ReorderResult `json:"reorder"`
}
