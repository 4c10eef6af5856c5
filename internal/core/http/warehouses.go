package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/service"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/httpx"
	"github.com/inventorypro/inventorypro/pkg/idx"
	"github.com/inventorypro/inventorypro/pkg/slogx"
)

// WarehousesHandler exposes warehouses and their bins.
type WarehousesHandler struct {
	InventoryService *service.InventoryService
}

type warehouseRequest struct {
	Code     string  `json:"code"`
	Name     string  `json:"name"`
	Location *string `json:"location,omitempty"`
}

type warehouseResponse struct {
	ID        string    `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Location  *string   `json:"location,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

func newWarehouseResponse(wh domain.Warehouse) warehouseResponse {
	return warehouseResponse{
		ID:        wh.ID.String(),
		Code:      wh.Code,
		Name:      wh.Name,
		Location:  wh.Location,
		CreatedAt: wh.CreatedAt,
	}
}

type binRequest struct {
	WarehouseID string `json:"warehouse_id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
}

type binResponse struct {
	ID          string    `json:"id"`
	WarehouseID string    `json:"warehouse_id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	CreatedAt   time.Time `json:"created_at"`
}

func newBinResponse(b domain.Bin) binResponse {
	return binResponse{
		ID:          b.ID.String(),
		WarehouseID: b.WarehouseID.String(),
		Code:        b.Code,
		Name:        b.Name,
		CreatedAt:   b.CreatedAt,
	}
}

// HandleCreate handles POST /api/warehouses.
func (h *WarehousesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := userFrom(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "A valid session is required")
		return
	}

	var req warehouseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Code == "" || req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code and name are required")
		return
	}

	warehouse, err := h.InventoryService.CreateWarehouse(ctx, actor, domain.Warehouse{
		Code:     req.Code,
		Name:     req.Name,
		Location: req.Location,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateCode) {
			httpx.WriteError(w, http.StatusBadRequest, "duplicate_code", "A warehouse with this code already exists")
			return
		}
		log.Error("failed to create warehouse", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newWarehouseResponse(warehouse))
}

// HandleList handles GET /api/warehouses.
func (h *WarehousesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	warehouses, err := h.InventoryService.ListWarehouses(ctx)
	if err != nil {
		log.Error("failed to list warehouses", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	out := make([]warehouseResponse, 0, len(warehouses))
	for _, wh := range warehouses {
		out = append(out, newWarehouseResponse(wh))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreateBin handles POST /api/bins. The referenced warehouse must
// exist.
func (h *WarehousesHandler) HandleCreateBin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := userFrom(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "A valid session is required")
		return
	}

	var req binRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	warehouseID, err := idx.Parse(req.WarehouseID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed warehouse_id")
		return
	}
	if req.Code == "" || req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code and name are required")
		return
	}

	bin, err := h.InventoryService.CreateBin(ctx, actor, domain.Bin{
		WarehouseID: warehouseID,
		Code:        req.Code,
		Name:        req.Name,
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "No such warehouse")
			return
		}
		log.Error("failed to create bin", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newBinResponse(bin))
}

// HandleListBins handles GET /api/bins, optionally narrowed with the
// warehouse_id query parameter.
func (h *WarehousesHandler) HandleListBins(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	warehouseID := idx.Zero
	if raw := r.URL.Query().Get("warehouse_id"); raw != "" {
		id, err := idx.Parse(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed warehouse_id")
			return
		}
		warehouseID = id
	}

	bins, err := h.InventoryService.ListBins(ctx, warehouseID)
	if err != nil {
		log.Error("failed to list bins", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	out := make([]binResponse, 0, len(bins))
	for _, b := range bins {
		out = append(out, newBinResponse(b))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
