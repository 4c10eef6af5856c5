package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/service"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/httpx"
	"github.com/inventorypro/inventorypro/pkg/idx"
	"github.com/inventorypro/inventorypro/pkg/slogx"
)

// AuditHandler exposes the read side of the audit trail. Entries are
// immutable; there is no write endpoint.
type AuditHandler struct {
	AuditService *service.AuditService
}

type auditEntryResponse struct {
	ID           string          `json:"id"`
	UserID       string          `json:"user_id"`
	UserEmail    string          `json:"user_email"`
	Action       string          `json:"action"`
	ResourceType string          `json:"resource_type"`
	ResourceID   string          `json:"resource_id"`
	Before       json.RawMessage `json:"before,omitempty"`
	After        json.RawMessage `json:"after,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
}

func newAuditEntryResponse(e domain.AuditLogEntry) auditEntryResponse {
	return auditEntryResponse{
		ID:           e.ID.String(),
		UserID:       e.UserID.String(),
		UserEmail:    e.UserEmail,
		Action:       string(e.Action),
		ResourceType: e.ResourceType,
		ResourceID:   e.ResourceID,
		Before:       e.Before,
		After:        e.After,
		CreatedAt:    e.CreatedAt,
	}
}

// HandleList handles GET /api/audit-logs. Entries come back newest first and
// can be narrowed with user_id, resource_type, resource_id and action query
// parameters.
func (h *AuditHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)
	q := r.URL.Query()

	filter := store.AuditFilter{
		ResourceType: q.Get("resource_type"),
		ResourceID:   q.Get("resource_id"),
		Action:       domain.AuditAction(q.Get("action")),
	}
	if raw := q.Get("user_id"); raw != "" {
		id, err := idx.Parse(raw)
		if err != nil {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed user_id")
			return
		}
		filter.UserID = id
	}
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed limit")
			return
		}
		filter.Limit = n
	}
	if raw := q.Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed offset")
			return
		}
		filter.Offset = n
	}

	entries, err := h.AuditService.Query(ctx, filter)
	if err != nil {
		log.Error("failed to query audit log", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	out := make([]auditEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, newAuditEntryResponse(e))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}
