package core

import (
	"context"
	"errors"
	"time"

	"souk-inventory/internal/events"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// ReorderService applies the reorder policy to stored products and creates
// purchase orders for the ones that need restocking.
type ReorderService interface {
	// EvaluateAndReorder creates a purchase order for the product if it is below
	// its threshold and has no pending order. Returns nil when nothing was created.
	// Concurrent calls for the same product create at most one order.
	EvaluateAndReorder(ctx context.Context, productID int) (*ReorderResult, error)

	// EvaluateAll runs EvaluateAndReorder for every product currently below its
	// threshold and returns the orders created.
	EvaluateAll(ctx context.Context) ([]ReorderResult, error)

	// EvaluateTx runs the evaluation within the caller's transaction. The caller
	// is responsible for reporting the created order after commit.
	EvaluateTx(ctx context.Context, repo Repository, productID int) (*ReorderResult, error)
}

type reorderService struct {
	store    Store
	policy   ReorderPolicy
	capacity CapacityOracle
	orders   PurchaseOrderService
	notify   notifier
	logger   *zap.Logger
}

// NewReorderService constructs a ReorderService.
func NewReorderService(store Store, policy ReorderPolicy, capacity CapacityOracle, orders PurchaseOrderService,
	publisher events.Publisher, logger *zap.Logger) ReorderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &reorderService{
		store:    store,
		policy:   policy,
		capacity: capacity,
		orders:   orders,
		notify:   newNotifier(publisher, logger),
		logger:   logger,
	}
}

func (s *reorderService) EvaluateAndReorder(ctx context.Context, productID int) (result *ReorderResult, err error) {
	ctx, span := startSpan(ctx, "ReorderService.EvaluateAndReorder", attribute.Int("product.id", productID))
	defer func() { endSpan(span, err) }()

	err = s.store.WithinTx(ctx, func(repo Repository) error {
		result, err = s.EvaluateTx(ctx, repo, productID)
		return err
	})
	if errors.Is(err, ErrConflict) {
		// Another writer got the pending order in first.
		s.logger.Debug("reorder skipped, order already pending", zap.Int("product_id", productID))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	span.SetAttributes(attribute.Bool("reorder.created", result != nil))
	if result != nil {
		s.notify.orderCreated(ctx, result.Order, TriggerAuto)
	}
	return result, nil
}

func (s *reorderService) EvaluateTx(ctx context.Context, repo Repository, productID int) (*ReorderResult, error) {
	p, err := repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !s.policy.NeedsReorder(*p) {
		return nil, nil
	}

	if _, err := repo.LockWarehouse(ctx, p.WarehouseID); err != nil {
		return nil, err
	}
	// Stock may have moved while waiting for the lock.
	p, err = repo.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	if !s.policy.NeedsReorder(*p) {
		return nil, nil
	}

	pending, err := repo.FindPendingOrder(ctx, p.ID, p.WarehouseID)
	if err != nil {
		return nil, err
	}
	if pending != nil {
		return nil, nil
	}

	available, err := s.capacity.AvailableSpaceTx(ctx, repo, p.WarehouseID)
	if err != nil {
		return nil, err
	}
	req, ok := s.policy.Decide(*p, available, time.Now())
	if !ok {
		return nil, nil
	}

	po, err := s.orders.CreateTx(ctx, repo, req)
	if err != nil {
		return nil, err
	}
	return &ReorderResult{
		Created:         true,
		OrderID:         po.ID,
		QuantityOrdered: po.QuantityOrdered,
		CapacityIssue:   po.CapacityIssue,
		Order:           po,
	}, nil
}

func (s *reorderService) EvaluateAll(ctx context.Context) ([]ReorderResult, error) {
	products, err := s.store.ListProductsWithJoins(ctx)
	if err != nil {
		return nil, err
	}

	var created []ReorderResult
	for _, p := range products {
		if !s.policy.NeedsReorder(p) {
			continue
		}
		result, err := s.EvaluateAndReorder(ctx, p.ID)
		if err != nil {
			return created, err
		}
		if result != nil {
			created = append(created, *result)
		}
	}
	return created, nil
}
