package app

// AdjustStockRequest is the input for a manual stock adjustment.
type AdjustStockRequest struct {
	ProductID int
	Delta     int
	Reason    string // optional, logged only
}

// CreateOrderRequest is the input for a manual purchase order.
type CreateOrderRequest struct {
	ProductID   int
	Quantity    int
	SupplierID  int // 0 means the product's default supplier
	WarehouseID int // 0 means the product's warehouse
}
