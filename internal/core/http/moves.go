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

// MovesHandler exposes stock moves and adjustments. These are the only two
// ways quantities change.
type MovesHandler struct {
	InventoryService *service.InventoryService
}

type stockMoveRequest struct {
	ProductID       string  `json:"product_id"`
	MoveType        string  `json:"move_type"`
	FromWarehouseID *string `json:"from_warehouse_id,omitempty"`
	FromBinID       *string `json:"from_bin_id,omitempty"`
	ToWarehouseID   *string `json:"to_warehouse_id,omitempty"`
	ToBinID         *string `json:"to_bin_id,omitempty"`
	Quantity        float64 `json:"quantity"`
	Reference       *string `json:"reference,omitempty"`
	Notes           *string `json:"notes,omitempty"`
}

type stockMoveResponse struct {
	ID              string    `json:"id"`
	ProductID       string    `json:"product_id"`
	MoveType        string    `json:"move_type"`
	FromWarehouseID *string   `json:"from_warehouse_id,omitempty"`
	FromBinID       *string   `json:"from_bin_id,omitempty"`
	ToWarehouseID   *string   `json:"to_warehouse_id,omitempty"`
	ToBinID         *string   `json:"to_bin_id,omitempty"`
	Quantity        float64   `json:"quantity"`
	Reference       *string   `json:"reference,omitempty"`
	Notes           *string   `json:"notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

func newStockMoveResponse(m domain.StockMove) stockMoveResponse {
	return stockMoveResponse{
		ID:              m.ID.String(),
		ProductID:       m.ProductID.String(),
		MoveType:        string(m.MoveType),
		FromWarehouseID: optionalIDString(m.FromWarehouseID),
		FromBinID:       optionalIDString(m.FromBinID),
		ToWarehouseID:   optionalIDString(m.ToWarehouseID),
		ToBinID:         optionalIDString(m.ToBinID),
		Quantity:        m.Quantity,
		Reference:       m.Reference,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
	}
}

type adjustmentRequest struct {
	ProductID      string  `json:"product_id"`
	WarehouseID    string  `json:"warehouse_id"`
	BinID          *string `json:"bin_id,omitempty"`
	QuantityChange float64 `json:"quantity_change"`
	Reason         string  `json:"reason"`
}

type adjustmentResponse struct {
	ID             string    `json:"id"`
	ProductID      string    `json:"product_id"`
	WarehouseID    string    `json:"warehouse_id"`
	BinID          *string   `json:"bin_id,omitempty"`
	QuantityChange float64   `json:"quantity_change"`
	Reason         string    `json:"reason"`
	CreatedAt      time.Time `json:"created_at"`
}

func newAdjustmentResponse(a domain.Adjustment) adjustmentResponse {
	return adjustmentResponse{
		ID:             a.ID.String(),
		ProductID:      a.ProductID.String(),
		WarehouseID:    a.WarehouseID.String(),
		BinID:          optionalIDString(a.BinID),
		QuantityChange: a.QuantityChange,
		Reason:         a.Reason,
		CreatedAt:      a.CreatedAt,
	}
}

func optionalIDString(id *idx.ID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func parseOptionalID(raw *string) (*idx.ID, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	id, err := idx.Parse(*raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

// HandleCreate handles POST /api/stock-moves. Adjustment-typed moves cannot
// be created here; they are emitted by the adjustments endpoint.
func (h *MovesHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := userFrom(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "A valid session is required")
		return
	}

	var req stockMoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	productID, err := idx.Parse(req.ProductID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed product_id")
		return
	}
	fromWarehouseID, err := parseOptionalID(req.FromWarehouseID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed from_warehouse_id")
		return
	}
	fromBinID, err := parseOptionalID(req.FromBinID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed from_bin_id")
		return
	}
	toWarehouseID, err := parseOptionalID(req.ToWarehouseID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed to_warehouse_id")
		return
	}
	toBinID, err := parseOptionalID(req.ToBinID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed to_bin_id")
		return
	}

	move, err := h.InventoryService.CreateStockMove(ctx, actor, domain.StockMove{
		ProductID:       productID,
		MoveType:        domain.MoveType(req.MoveType),
		FromWarehouseID: fromWarehouseID,
		FromBinID:       fromBinID,
		ToWarehouseID:   toWarehouseID,
		ToBinID:         toBinID,
		Quantity:        req.Quantity,
		Reference:       req.Reference,
		Notes:           req.Notes,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidMoveType):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_move_type", "Unknown or disallowed move type")
		case errors.Is(err, service.ErrInvalidQuantity):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_quantity", "Quantity must be positive")
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "No such product")
		default:
			log.Error("failed to create stock move", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newStockMoveResponse(move))
}

// HandleList handles GET /api/stock-moves, optionally narrowed with the
// product_id query parameter.
func (h *MovesHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	productID := idx.Zero
	if raw := r.URL.Query().Get("product_id"); raw != "" {
		id, err := idx.Parse(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed product_id")
			return
		}
		productID = id
	}

	moves, err := h.InventoryService.ListStockMoves(ctx, productID)
	if err != nil {
		log.Error("failed to list stock moves", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	out := make([]stockMoveResponse, 0, len(moves))
	for _, m := range moves {
		out = append(out, newStockMoveResponse(m))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleCreateAdjustment handles POST /api/adjustments.
func (h *MovesHandler) HandleCreateAdjustment(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := userFrom(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "A valid session is required")
		return
	}

	var req adjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}

	productID, err := idx.Parse(req.ProductID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed product_id")
		return
	}
	warehouseID, err := idx.Parse(req.WarehouseID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed warehouse_id")
		return
	}
	binID, err := parseOptionalID(req.BinID)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed bin_id")
		return
	}
	if req.Reason == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "reason is required")
		return
	}

	adjustment, err := h.InventoryService.CreateAdjustment(ctx, actor, domain.Adjustment{
		ProductID:      productID,
		WarehouseID:    warehouseID,
		BinID:          binID,
		QuantityChange: req.QuantityChange,
		Reason:         req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidQuantity):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_quantity", "Quantity change must be non-zero")
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "No such product or warehouse")
		default:
			log.Error("failed to create adjustment", "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newAdjustmentResponse(adjustment))
}

// HandleListAdjustments handles GET /api/adjustments.
func (h *MovesHandler) HandleListAdjustments(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	adjustments, err := h.InventoryService.ListAdjustments(ctx)
	if err != nil {
		log.Error("failed to list adjustments", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	out := make([]adjustmentResponse, 0, len(adjustments))
	for _, a := range adjustments {
		out = append(out, newAdjustmentResponse(a))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
