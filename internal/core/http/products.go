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

// ProductsHandler exposes the product catalogue.
type ProductsHandler struct {
	InventoryService *service.InventoryService
}

type productRequest struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Unit        string  `json:"unit,omitempty"`
}

type productResponse struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Unit        string    `json:"unit"`
	CreatedAt   time.Time `json:"created_at"`
}

func newProductResponse(p domain.Product) productResponse {
	return productResponse{
		ID:          p.ID.String(),
		Code:        p.Code,
		Name:        p.Name,
		Description: p.Description,
		Unit:        p.Unit,
		CreatedAt:   p.CreatedAt,
	}
}

// HandleCreate handles POST /api/products.
func (h *ProductsHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := userFrom(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "A valid session is required")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Warn("failed to parse request", "err", err)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if req.Code == "" || req.Name == "" {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "code and name are required")
		return
	}

	product, err := h.InventoryService.CreateProduct(ctx, actor, domain.Product{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		Unit:        req.Unit,
	})
	if err != nil {
		if errors.Is(err, service.ErrDuplicateCode) {
			httpx.WriteError(w, http.StatusBadRequest, "duplicate_code", "A product with this code already exists")
			return
		}
		log.Error("failed to create product", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusCreated, newProductResponse(product))
}

// HandleList handles GET /api/products.
func (h *ProductsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	products, err := h.InventoryService.ListProducts(ctx)
	if err != nil {
		log.Error("failed to list products", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	out := make([]productResponse, 0, len(products))
	for _, p := range products {
		out = append(out, newProductResponse(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleGet handles GET /api/products/{id}.
func (h *ProductsHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	id, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed product id")
		return
	}

	product, err := h.InventoryService.GetProduct(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.WriteError(w, http.StatusNotFound, "not_found", "No such product")
			return
		}
		log.Error("failed to load product", "product_id", id.String(), "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	httpx.WriteJSON(w, http.StatusOK, newProductResponse(product))
}
