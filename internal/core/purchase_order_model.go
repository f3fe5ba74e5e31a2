package core

// PurchaseOrder is a replenishment order for a single product into a single warehouse.
// Dates are ISO calendar dates (YYYY-MM-DD).
type PurchaseOrder struct {
	ID                  int         `json:"id"`
	ProductID           int         `json:"product_id"`
	SupplierID          int         `json:"supplier_id"`
	WarehouseID         int         `json:"warehouse_id"`
	QuantityOrdered     int         `json:"quantity_ordered"`
	OrderDate           string      `json:"order_date"`
	ExpectedArrivalDate string      `json:"expected_arrival_date"`
	Status              OrderStatus `json:"status"`
	CapacityIssue       bool        `json:"capacity_issue"`
	// Populated by joined listings only.
	ProductSKU    *string `json:"product_sku,omitempty"`
	ProductName   *string `json:"product_name,omitempty"`
	SupplierName  *string `json:"supplier_name,omitempty"`
	WarehouseName *string `json:"warehouse_name,omitempty"`
}

// NewPurchaseOrder holds the fields required to insert a purchase order.
// Status is always pending on insert.
type NewPurchaseOrder struct {
	ProductID           int
	SupplierID          int
	WarehouseID         int
	QuantityOrdered     int
	OrderDate           string
	ExpectedArrivalDate string
	CapacityIssue       bool
}

// CreateOrderInput is the input to PurchaseOrderService.Create. The quantity
// is taken as-is; capacity clipping is the caller's responsibility.
type CreateOrderInput struct {
	ProductID       int
	SupplierID      int
	WarehouseID     int
	QuantityOrdered int
	CapacityIssue   bool
}

// ManualOrderInput is a user-entered order. SupplierID and WarehouseID are
// optional (zero means "use the product's default").
type ManualOrderInput struct {
	ProductID         int
	SupplierID        int
	WarehouseID       int
	RequestedQuantity int
}

// ReceiveResult reports how much of a purchase order was credited to stock.
type ReceiveResult struct {
	OrderID         int            `json:"order_id"`
	ProductID       int            `json:"product_id"`
	WarehouseID     int            `json:"warehouse_id"`
	AddedQuantity   int            `json:"added_quantity"`
	CapacityLimited bool           `json:"capacity_limited"`
	Reorder         *ReorderResult `json:"reorder,omitempty"`
}

// ReorderResult describes a purchase order created by the reorder engine.
type ReorderResult struct {
	Created         bool           `json:"created"`
	OrderID         int            `json:"order_id"`
	QuantityOrdered int            `json:"quantity_ordered"`
	CapacityIssue   bool           `json:"capacity_issue"`
	Order           *PurchaseOrder `json:"-"`
}
