package http

import (
	"net/http"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/service"
	"github.com/inventorypro/inventorypro/pkg/httpx"
	"github.com/inventorypro/inventorypro/pkg/idx"
	"github.com/inventorypro/inventorypro/pkg/slogx"
)

// InventoryHandler exposes the on-hand quantity view. Quantities only change
// through stock moves and adjustments, so this surface is read-only.
type InventoryHandler struct {
	InventoryService *service.InventoryService
}

type inventoryItemResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	WarehouseID string    `json:"warehouse_id"`
	BinID       *string   `json:"bin_id,omitempty"`
	Quantity    float64   `json:"quantity"`
	LastUpdated time.Time `json:"last_updated"`
}

func newInventoryItemResponse(item domain.InventoryItem) inventoryItemResponse {
	out := inventoryItemResponse{
		ID:          item.ID.String(),
		ProductID:   item.ProductID.String(),
		WarehouseID: item.WarehouseID.String(),
		Quantity:    item.Quantity,
		LastUpdated: item.LastUpdated,
	}
	if item.BinID != nil {
		s := item.BinID.String()
		out.BinID = &s
	}
	return out
}

// HandleList handles GET /api/inventory, optionally narrowed with product_id
// and warehouse_id query parameters.
func (h *InventoryHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	q := r.URL.Query()

	productID := idx.Zero
	if raw := q.Get("product_id"); raw != "" {
		id, err := idx.Parse(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed product_id")
			return
		}
		productID = id
	}
	warehouseID := idx.Zero
	if raw := q.Get("warehouse_id"); raw != "" {
		id, err := idx.Parse(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed warehouse_id")
			return
		}
		warehouseID = id
	}

	items, err := h.InventoryService.ListItems(ctx, productID, warehouseID)
	if err != nil {
		log.Error("failed to list inventory", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	out := make([]inventoryItemResponse, 0, len(items))
	for _, item := range items {
		out = append(out, newInventoryItemResponse(item))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
