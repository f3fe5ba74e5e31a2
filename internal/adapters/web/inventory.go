package web

import (
	"net/http"

	"souk-inventory/internal/app"
)

// listProducts handles GET /api/products.
func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListProducts(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res.Products)
}

// getProduct handles GET /api/products/{id}.
func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.svc.GetProduct(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, p)
}

// adjustStock handles POST /api/products/{id}/adjust-stock.
func (h *Handler) adjustStock(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req struct {
		Delta  *int   `json:"delta"`
		Reason string `json:"reason"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Delta == nil {
		writeError(w, r, "delta must be a number", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	res, err := h.svc.AdjustStock(r.Context(), app.AdjustStockRequest{
		ProductID: id,
		Delta:     *req.Delta,
		Reason:    req.Reason,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// listOrders handles GET /api/orders.
func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListOrders(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res.Orders)
}

// createOrder handles POST /api/orders.
func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID       int  `json:"product_id"`
		SupplierID      int  `json:"supplier_id"`
		WarehouseID     int  `json:"warehouse_id"`
		QuantityOrdered *int `json:"quantity_ordered"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.ProductID <= 0 || req.QuantityOrdered == nil {
		writeError(w, r, "product_id and quantity_ordered required", "BAD_REQUEST", http.StatusBadRequest)
		return
	}

	res, err := h.svc.CreateManualOrder(r.Context(), app.CreateOrderRequest{
		ProductID:   req.ProductID,
		Quantity:    *req.QuantityOrdered,
		SupplierID:  req.SupplierID,
		WarehouseID: req.WarehouseID,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res)
}

// receiveOrder handles POST /api/orders/{id}/receive.
func (h *Handler) receiveOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	res, err := h.svc.ReceiveOrder(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// listWarehouses handles GET /api/warehouses.
func (h *Handler) listWarehouses(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListWarehouses(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, res.Warehouses)
}
