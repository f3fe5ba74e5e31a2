package core

import "math"

// Supplier is a vendor that purchase orders are placed with.
type Supplier struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// OrderStatus is the lifecycle state of a purchase order.
type OrderStatus string

const (
	StatusPending  OrderStatus = "pending"
	StatusReceived OrderStatus = "received"
)

// MaxQuantity is the largest stock level, delta or order quantity the schema
// can store (a PostgreSQL INTEGER column).
const MaxQuantity = math.MaxInt32

// Order triggers, used as log fields and metric labels.
const (
	TriggerAuto   = "auto"
	TriggerManual = "manual"
)
