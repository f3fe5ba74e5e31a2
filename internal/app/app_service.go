package app

import (
	"context"

	"souk-inventory/internal/core"
)

type appService struct {
	inventory core.InventoryService
	orders    core.PurchaseOrderService
	pinger    Pinger
}

// NewAppService constructs an appService that satisfies ApplicationService.
// pinger may be nil, in which case Health always reports ok.
func NewAppService(inventory core.InventoryService, orders core.PurchaseOrderService, pinger Pinger) ApplicationService {
	return &appService{
		inventory: inventory,
		orders:    orders,
		pinger:    pinger,
	}
}

func (s *appService) ListProducts(ctx context.Context) (*ProductListResult, error) {
	products, err := s.inventory.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if products == nil {
		products = []core.Product{}
	}
	return &ProductListResult{Products: products}, nil
}

func (s *appService) GetProduct(ctx context.Context, productID int) (*core.Product, error) {
	return s.inventory.GetProduct(ctx, productID)
}

func (s *appService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*AdjustStockResult, error) {
	res, err := s.inventory.AdjustStock(ctx, req.ProductID, req.Delta, req.Reason)
	if err != nil {
		return nil, err
	}
	return &AdjustStockResult{Success: true, Product: res.Product, Reorder: res.Reorder}, nil
}

func (s *appService) ListOrders(ctx context.Context) (*OrderListResult, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		return nil, err
	}
	if orders == nil {
		orders = []core.PurchaseOrder{}
	}
	return &OrderListResult{Orders: orders}, nil
}

func (s *appService) CreateManualOrder(ctx context.Context, req CreateOrderRequest) (*CreateOrderResult, error) {
	po, err := s.orders.CreateManual(ctx, core.ManualOrderInput{
		ProductID:         req.ProductID,
		SupplierID:        req.SupplierID,
		WarehouseID:       req.WarehouseID,
		RequestedQuantity: req.Quantity,
	})
	if err != nil {
		return nil, err
	}
	return &CreateOrderResult{
		Created:         true,
		ID:              po.ID,
		QuantityOrdered: po.QuantityOrdered,
		CapacityIssue:   po.CapacityIssue,
	}, nil
}

func (s *appService) ReceiveOrder(ctx context.Context, orderID int) (*ReceiveOrderResult, error) {
	res, err := s.inventory.ReceiveOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &ReceiveOrderResult{Received: true, ReceiveResult: *res}, nil
}

func (s *appService) ListWarehouses(ctx context.Context) (*WarehouseListResult, error) {
	views, err := s.inventory.ListWarehouses(ctx)
	if err != nil {
		return nil, err
	}
	if views == nil {
		views = []core.WarehouseView{}
	}
	return &WarehouseListResult{Warehouses: views}, nil
}

func (s *appService) Health(ctx context.Context) (*HealthResult, error) {
	if s.pinger != nil {
		if err := s.pinger.Ping(ctx); err != nil {
			return &HealthResult{Status: "degraded", Store: "unreachable"}, err
		}
	}
	return &HealthResult{Status: "ok", Store: "ok"}, nil
}
