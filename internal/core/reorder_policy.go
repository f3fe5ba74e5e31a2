package core

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// ReorderPolicy holds the tunable constants of the reorder decision.
type ReorderPolicy struct {
	// LeadTime is added to the order date to get the expected arrival date.
	LeadTime time.Duration
	// TargetMultiplier sets the restock target as a multiple of the reorder threshold.
	TargetMultiplier int
	// FallbackSupplierID is used for products without a default supplier.
	FallbackSupplierID int
}

// DefaultReorderPolicy returns a 3-day lead time, a 2x threshold target and supplier 1 as fallback.
func DefaultReorderPolicy() ReorderPolicy {
	return ReorderPolicy{
		LeadTime:           72 * time.Hour,
		TargetMultiplier:   2,
		FallbackSupplierID: 1,
	}
}

// Validate rejects policies that could produce a non-positive order quantity
// or an arrival date before the order date.
func (p ReorderPolicy) Validate() error {
	if p.LeadTime < 0 {
		return fmt.Errorf("%w: lead time must not be negative, got %s", ErrInvalidInput, p.LeadTime)
	}
	if p.TargetMultiplier < 1 {
		return fmt.Errorf("%w: target multiplier must be at least 1, got %d", ErrInvalidInput, p.TargetMultiplier)
	}
	if p.FallbackSupplierID <= 0 {
		return fmt.Errorf("%w: fallback supplier id must be positive, got %d", ErrInvalidInput, p.FallbackSupplierID)
	}
	return nil
}

// OrderRequest is a fully decided purchase order, ready to insert.
type OrderRequest struct {
	ProductID           int
	SupplierID          int
	WarehouseID         int
	DesiredQuantity     int
	QuantityOrdered     int
	CapacityIssue       bool
	OrderDate           string
	ExpectedArrivalDate string
}

func (r OrderRequest) toNew() NewPurchaseOrder {
	return NewPurchaseOrder{
		ProductID:           r.ProductID,
		SupplierID:          r.SupplierID,
		WarehouseID:         r.WarehouseID,
		QuantityOrdered:     r.QuantityOrdered,
		OrderDate:           r.OrderDate,
		ExpectedArrivalDate: r.ExpectedArrivalDate,
		CapacityIssue:       r.CapacityIssue,
	}
}

// NeedsReorder reports whether p's stock is below its reorder threshold.
func (p ReorderPolicy) NeedsReorder(prod Product) bool {
	return prod.QuantityInStock < prod.ReorderThreshold
}

// DesiredQuantity is the amount needed to bring prod up to the target level.
func (p ReorderPolicy) DesiredQuantity(prod Product) int {
	return prod.ReorderThreshold*p.TargetMultiplier - prod.QuantityInStock
}

// SupplierFor returns the product's default supplier or the fallback.
func (p ReorderPolicy) SupplierFor(prod Product) int {
	if prod.DefaultSupplierID != nil && *prod.DefaultSupplierID > 0 {
		return *prod.DefaultSupplierID
	}
	return p.FallbackSupplierID
}

// Dates returns the order date and expected arrival date for an order placed at now.
// The lead time is added to now's wall clock as if it were UTC, so a 72h lead
// time is always three calendar days regardless of daylight saving changes.
func (p ReorderPolicy) Dates(now time.Time) (orderDate, expectedArrival string) {
	y, m, d := now.Date()
	hh, mm, ss := now.Clock()
	wall := time.Date(y, m, d, hh, mm, ss, now.Nanosecond(), time.UTC)
	return wall.Format(dateLayout), wall.Add(p.LeadTime).Format(dateLayout)
}

// ClipToCapacity limits requested to the free space. A non-positive
// availableSpace yields zero. capacityIssue is set whenever the result is
// below requested, or the warehouse has no room at all.
func ClipToCapacity(requested, availableSpace int) (quantity int, capacityIssue bool) {
	switch {
	case availableSpace <= 0:
		return 0, true
	case requested > availableSpace:
		return availableSpace, true
	default:
		return requested, false
	}
}

// Decide returns the purchase order to create for prod given the warehouse's
// available space, or false if prod is not below its threshold. It has no side
// effects; the caller must already have checked that no order is pending.
func (p ReorderPolicy) Decide(prod Product, availableSpace int, now time.Time) (OrderRequest, bool) {
	if !p.NeedsReorder(prod) {
		return OrderRequest{}, false
	}
	desired := p.DesiredQuantity(prod)
	qty, capacityIssue := ClipToCapacity(desired, availableSpace)
	orderDate, expected := p.Dates(now)
	return OrderRequest{
		ProductID:           prod.ID,
		SupplierID:          p.SupplierFor(prod),
		WarehouseID:         prod.WarehouseID,
		DesiredQuantity:     desired,
		QuantityOrdered:     qty,
		CapacityIssue:       capacityIssue,
		OrderDate:           orderDate,
		ExpectedArrivalDate: expected,
	}, true
}
