package core

import (
	"context"
	"fmt"
	"time"

	"souk-inventory/internal/events"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// PurchaseOrderService owns the purchase order lifecycle: pending → received.
type PurchaseOrderService interface {
	// Create inserts a pending order with exactly the given quantity and flag.
	// Fails with ErrConflict if the product already has a pending order in the
	// warehouse; the check and the insert are atomic.
	Create(ctx context.Context, in CreateOrderInput) (*PurchaseOrder, error)

	// CreateManual creates a user-entered order. The requested quantity is clipped
	// to the warehouse's available space with the same rule as automatic reorders,
	// and the single-pending-order rule applies.
	CreateManual(ctx context.Context, in ManualOrderInput) (*PurchaseOrder, error)

	// Receive credits a pending order to stock, limited by the warehouse's space
	// at receipt time, and marks it received. A partial or zero receipt is not an
	// error; it is reported through the result.
	Receive(ctx context.Context, orderID int) (*ReceiveResult, error)

	GetOrder(ctx context.Context, orderID int) (*PurchaseOrder, error)
	// ListOrders returns all orders joined with product, supplier and warehouse names, newest first.
	ListOrders(ctx context.Context) ([]PurchaseOrder, error)

	// TX-scoped operations: work within a caller-provided transaction.

	// CreateTx inserts req after checking no order is pending for its product and warehouse.
	CreateTx(ctx context.Context, repo Repository, req OrderRequest) (*PurchaseOrder, error)
	// ReceiveTx performs Receive within the caller's transaction.
	ReceiveTx(ctx context.Context, repo Repository, orderID int) (*ReceiveResult, error)
}

type purchaseOrderService struct {
	store    Store
	policy   ReorderPolicy
	ledger   StockLedger
	capacity CapacityOracle
	notify   notifier
}

// NewPurchaseOrderService constructs a PurchaseOrderService.
func NewPurchaseOrderService(store Store, policy ReorderPolicy, ledger StockLedger, capacity CapacityOracle,
	publisher events.Publisher, logger *zap.Logger) PurchaseOrderService {
	return &purchaseOrderService{
		store:    store,
		policy:   policy,
		ledger:   ledger,
		capacity: capacity,
		notify:   newNotifier(publisher, logger),
	}
}

func (s *purchaseOrderService) Create(ctx context.Context, in CreateOrderInput) (po *PurchaseOrder, err error) {
	ctx, span := startSpan(ctx, "PurchaseOrderService.Create",
		attribute.Int("product.id", in.ProductID),
		attribute.Int("warehouse.id", in.WarehouseID),
	)
	defer func() { endSpan(span, err) }()

	if in.ProductID <= 0 || in.SupplierID <= 0 || in.WarehouseID <= 0 {
		return nil, fmt.Errorf("%w: product, supplier and warehouse are required", ErrInvalidInput)
	}
	if in.QuantityOrdered < 0 || in.QuantityOrdered > MaxQuantity {
		return nil, fmt.Errorf("%w: quantity ordered must be between 0 and %d, got %d", ErrInvalidInput, MaxQuantity, in.QuantityOrdered)
	}

	err = s.store.WithinTx(ctx, func(repo Repository) error {
		p, err := repo.GetProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if p.WarehouseID != in.WarehouseID {
			return fmt.Errorf("%w: product %d is stocked in warehouse %d, not %d",
				ErrInvalidInput, p.ID, p.WarehouseID, in.WarehouseID)
		}
		orderDate, expected := s.policy.Dates(time.Now())
		po, err = s.CreateTx(ctx, repo, OrderRequest{
			ProductID:           in.ProductID,
			SupplierID:          in.SupplierID,
			WarehouseID:         in.WarehouseID,
			DesiredQuantity:     in.QuantityOrdered,
			QuantityOrdered:     in.QuantityOrdered,
			CapacityIssue:       in.CapacityIssue,
			OrderDate:           orderDate,
			ExpectedArrivalDate: expected,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify.orderCreated(ctx, po, TriggerManual)
	return po, nil
}

func (s *purchaseOrderService) CreateManual(ctx context.Context, in ManualOrderInput) (po *PurchaseOrder, err error) {
	ctx, span := startSpan(ctx, "PurchaseOrderService.CreateManual",
		attribute.Int("product.id", in.ProductID),
		attribute.Int("order.requested_quantity", in.RequestedQuantity),
	)
	defer func() { endSpan(span, err) }()

	if in.ProductID <= 0 {
		return nil, fmt.Errorf("%w: product_id is required", ErrInvalidInput)
	}
	if in.RequestedQuantity < 0 || in.RequestedQuantity > MaxQuantity {
		return nil, fmt.Errorf("%w: quantity ordered must be between 0 and %d, got %d", ErrInvalidInput, MaxQuantity, in.RequestedQuantity)
	}
	if in.SupplierID < 0 || in.WarehouseID < 0 {
		return nil, fmt.Errorf("%w: supplier and warehouse ids must be positive", ErrInvalidInput)
	}

	err = s.store.WithinTx(ctx, func(repo Repository) error {
		p, err := repo.GetProduct(ctx, in.ProductID)
		if err != nil {
			return err
		}

		warehouseID := in.WarehouseID
		if warehouseID == 0 {
			warehouseID = p.WarehouseID
		}
		if warehouseID != p.WarehouseID {
			return fmt.Errorf("%w: product %d is stocked in warehouse %d, not %d",
				ErrInvalidInput, p.ID, p.WarehouseID, warehouseID)
		}
		supplierID := in.SupplierID
		if supplierID == 0 {
			supplierID = s.policy.SupplierFor(*p)
		}

		if _, err := repo.LockWarehouse(ctx, warehouseID); err != nil {
			return err
		}
		available, err := s.capacity.AvailableSpaceTx(ctx, repo, warehouseID)
		if err != nil {
			return err
		}
		qty, capacityIssue := ClipToCapacity(in.RequestedQuantity, available)
		orderDate, expected := s.policy.Dates(time.Now())

		po, err = s.CreateTx(ctx, repo, OrderRequest{
			ProductID:           p.ID,
			SupplierID:          supplierID,
			WarehouseID:         warehouseID,
			DesiredQuantity:     in.RequestedQuantity,
			QuantityOrdered:     qty,
			CapacityIssue:       capacityIssue,
			OrderDate:           orderDate,
			ExpectedArrivalDate: expected,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.notify.orderCreated(ctx, po, TriggerManual)
	return po, nil
}

func (s *purchaseOrderService) CreateTx(ctx context.Context, repo Repository, req OrderRequest) (*PurchaseOrder, error) {
	if _, err := repo.LockWarehouse(ctx, req.WarehouseID); err != nil {
		return nil, err
	}
	if _, err := repo.GetSupplier(ctx, req.SupplierID); err != nil {
		return nil, err
	}

	pending, err := repo.FindPendingOrder(ctx, req.ProductID, req.WarehouseID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, fmt.Errorf("%w: purchase order %d is already pending for product %d in warehouse %d",
			ErrConflict, pending.ID, req.ProductID, req.WarehouseID)
	}

	id, err := repo.InsertOrder(ctx, req.toNew())
	if err != nil {
		return nil, err
	}
	return repo.GetOrder(ctx, id)
}

func (s *purchaseOrderService) Receive(ctx context.Context, orderID int) (res *ReceiveResult, err error) {
	ctx, span := startSpan(ctx, "PurchaseOrderService.Receive", attribute.Int("order.id", orderID))
	defer func() { endSpan(span, err) }()

	err = s.store.WithinTx(ctx, func(repo Repository) error {
		res, err = s.ReceiveTx(ctx, repo, orderID)
		return err
	})
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Int("order.added_quantity", res.AddedQuantity),
		attribute.Bool("order.capacity_limited", res.CapacityLimited),
	)
	s.notify.orderReceived(ctx, res)
	return res, nil
}

func (s *purchaseOrderService) ReceiveTx(ctx context.Context, repo Repository, orderID int) (*ReceiveResult, error) {
	po, err := repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if po.Status != StatusPending {
		return nil, fmt.Errorf("purchase order %d: %w", orderID, ErrAlreadyReceived)
	}

	if _, err := repo.LockWarehouse(ctx, po.WarehouseID); err != nil {
		return nil, err
	}
	// Re-read under the lock: a concurrent receipt may have committed meanwhile.
	po, err = repo.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if po.Status != StatusPending {
		return nil, fmt.Errorf("purchase order %d: %w", orderID, ErrAlreadyReceived)
	}

	available, err := s.capacity.AvailableSpaceTx(ctx, repo, po.WarehouseID)
	if err != nil {
		return nil, err
	}
	qtyToAdd := min(po.QuantityOrdered, max(0, available))
	if qtyToAdd > 0 {
		if _, err := s.ledger.ApplyDeltaTx(ctx, repo, po.ProductID, qtyToAdd); err != nil {
			return nil, err
		}
	}
	if err := repo.UpdateOrderStatus(ctx, po.ID, StatusReceived); err != nil {
		return nil, err
	}

	return &ReceiveResult{
		OrderID:         po.ID,
		ProductID:       po.ProductID,
		WarehouseID:     po.WarehouseID,
		AddedQuantity:   qtyToAdd,
		CapacityLimited: qtyToAdd < po.QuantityOrdered,
	}, nil
}

func (s *purchaseOrderService) GetOrder(ctx context.Context, orderID int) (*PurchaseOrder, error) {
	return s.store.GetOrder(ctx, orderID)
}

func (s *purchaseOrderService) ListOrders(ctx context.Context) ([]PurchaseOrder, error) {
	return s.store.ListOrdersWithJoins(ctx)
}
