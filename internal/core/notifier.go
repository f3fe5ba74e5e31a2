package core

import (
	"context"
	"time"

	"souk-inventory/internal/events"
	"souk-inventory/internal/metrics"

	"go.uber.org/zap"
)

// notifier reports committed lifecycle changes: metrics, a log line and an event.
// Publishing failures are logged and never undo the committed change.
type notifier struct {
	publisher events.Publisher
	logger    *zap.Logger
}

func newNotifier(publisher events.Publisher, logger *zap.Logger) notifier {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return notifier{publisher: publisher, logger: logger}
}

func (n notifier) orderCreated(ctx context.Context, po *PurchaseOrder, trigger string) {
	if po == nil {
		return
	}
	metrics.RecordOrderCreated(trigger, po.CapacityIssue)
	n.logger.Info("purchase order created",
		zap.Int("order_id", po.ID),
		zap.Int("product_id", po.ProductID),
		zap.Int("warehouse_id", po.WarehouseID),
		zap.Int("quantity_ordered", po.QuantityOrdered),
		zap.Bool("capacity_issue", po.CapacityIssue),
		zap.String("trigger", trigger),
	)
	n.publish(ctx, events.Event{
		Type:          events.OrderCreated,
		OrderID:       po.ID,
		ProductID:     po.ProductID,
		WarehouseID:   po.WarehouseID,
		Quantity:      po.QuantityOrdered,
		CapacityIssue: po.CapacityIssue,
		Trigger:       trigger,
		OccurredAt:    time.Now().UTC(),
	})
}

func (n notifier) orderReceived(ctx context.Context, res *ReceiveResult) {
	metrics.RecordOrderReceived(res.AddedQuantity, res.CapacityLimited)
	n.logger.Info("purchase order received",
		zap.Int("order_id", res.OrderID),
		zap.Int("product_id", res.ProductID),
		zap.Int("added_quantity", res.AddedQuantity),
		zap.Bool("capacity_limited", res.CapacityLimited),
	)
	n.publish(ctx, events.Event{
		Type:          events.OrderReceived,
		OrderID:       res.OrderID,
		ProductID:     res.ProductID,
		WarehouseID:   res.WarehouseID,
		Quantity:      res.AddedQuantity,
		CapacityIssue: res.CapacityLimited,
		OccurredAt:    time.Now().UTC(),
	})
}

func (n notifier) publish(ctx context.Context, e events.Event) {
	if err := n.publisher.Publish(ctx, e); err != nil {
		n.logger.Warn("failed to publish event",
			zap.String("type", string(e.Type)),
			zap.Int("order_id", e.OrderID),
			zap.Error(err),
		)
	}
}
