package core

import (
	"context"
	"fmt"

	"souk-inventory/internal/events"
	"souk-inventory/internal/metrics"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// InventoryService is the stock-facing entry point: reads that lazily trigger
// reorders, stock adjustments and receipts, each followed by a reorder evaluation.
type InventoryService interface {
	// ListProducts returns all products with supplier and warehouse names. When
	// auto-reorder on read is enabled, every product below its threshold without a
	// pending order gets one first.
	ListProducts(ctx context.Context) ([]Product, error)
	// GetProduct returns one product, with the same lazy reorder as ListProducts.
	GetProduct(ctx context.Context, productID int) (*Product, error)
	// AdjustStock applies a signed delta and evaluates the product for reorder,
	// atomically. reason is recorded in the log only.
	AdjustStock(ctx context.Context, productID, delta int, reason string) (*AdjustResult, error)
	// ReceiveOrder receives a purchase order and re-evaluates the product for reorder.
	ReceiveOrder(ctx context.Context, orderID int) (*ReceiveResult, error)
	// ListWarehouses returns every warehouse with its current stock and available space.
	ListWarehouses(ctx context.Context) ([]WarehouseView, error)
}

type inventoryService struct {
	store             Store
	ledger            StockLedger
	orders            PurchaseOrderService
	reorder           ReorderService
	autoReorderOnRead bool
	notify            notifier
	logger            *zap.Logger
}

// NewInventoryService wires an InventoryService from the engine components.
func NewInventoryService(store Store, ledger StockLedger, orders PurchaseOrderService,
	reorder ReorderService, autoReorderOnRead bool, publisher events.Publisher, logger *zap.Logger) InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &inventoryService{
		store:             store,
		ledger:            ledger,
		orders:            orders,
		reorder:           reorder,
		autoReorderOnRead: autoReorderOnRead,
		notify:            newNotifier(publisher, logger),
		logger:            logger,
	}
}

func (s *inventoryService) ListProducts(ctx context.Context) ([]Product, error) {
	if s.autoReorderOnRead {
		if _, err := s.reorder.EvaluateAll(ctx); err != nil {
			return nil, err
		}
	}
	return s.store.ListProductsWithJoins(ctx)
}

func (s *inventoryService) GetProduct(ctx context.Context, productID int) (*Product, error) {
	p, err := s.store.GetProductWithJoins(ctx, productID)
	if err != nil {
		return nil, err
	}
	if s.autoReorderOnRead && p.QuantityInStock < p.ReorderThreshold {
		if _, err := s.reorder.EvaluateAndReorder(ctx, productID); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func (s *inventoryService) AdjustStock(ctx context.Context, productID, delta int, reason string) (result *AdjustResult, err error) {
	ctx, span := startSpan(ctx, "InventoryService.AdjustStock",
		attribute.Int("product.id", productID),
		attribute.Int("stock.delta", delta),
	)
	defer func() {
		if err != nil {
			metrics.RecordError("adjust_stock")
		}
		endSpan(span, err)
	}()

	result = &AdjustResult{}
	err = s.store.WithinTx(ctx, func(repo Repository) error {
		p, err := repo.GetProduct(ctx, productID)
		if err != nil {
			return err
		}
		if _, err := repo.LockWarehouse(ctx, p.WarehouseID); err != nil {
			return err
		}
		if _, err := s.ledger.ApplyDeltaTx(ctx, repo, productID, delta); err != nil {
			return err
		}
		if result.Reorder, err = s.reorder.EvaluateTx(ctx, repo, productID); err != nil {
			return err
		}
		result.Product, err = repo.GetProductWithJoins(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = "N/A"
	}
	metrics.RecordAdjustment(delta)
	s.logger.Info("stock adjusted",
		zap.String("sku", result.Product.SKU),
		zap.Int("delta", delta),
		zap.String("reason", reason),
		zap.Int("quantity_in_stock", result.Product.QuantityInStock),
	)
	if result.Reorder != nil {
		s.notify.orderCreated(ctx, result.Reorder.Order, TriggerAuto)
	}
	return result, nil
}

func (s *inventoryService) ReceiveOrder(ctx context.Context, orderID int) (result *ReceiveResult, err error) {
	ctx, span := startSpan(ctx, "InventoryService.ReceiveOrder", attribute.Int("order.id", orderID))
	defer func() {
		if err != nil {
			metrics.RecordError("receive_order")
		}
		endSpan(span, err)
	}()

	err = s.store.WithinTx(ctx, func(repo Repository) error {
		result, err = s.orders.ReceiveTx(ctx, repo, orderID)
		if err != nil {
			return err
		}
		result.Reorder, err = s.reorder.EvaluateTx(ctx, repo, result.ProductID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.notify.orderReceived(ctx, result)
	if result.Reorder != nil {
		s.notify.orderCreated(ctx, result.Reorder.Order, TriggerAuto)
	}
	return result, nil
}

func (s *inventoryService) ListWarehouses(ctx context.Context) ([]WarehouseView, error) {
	warehouses, err := s.store.ListWarehouses(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]WarehouseView, 0, len(warehouses))
	for _, w := range warehouses {
		total, err := s.ledger.WarehouseTotal(ctx, w.ID)
		if err != nil {
			return nil, fmt.Errorf("warehouse %d stock total: %w", w.ID, err)
		}
		views = append(views, NewWarehouseView(w, total))
	}
	return views, nil
}
