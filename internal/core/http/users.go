package http

import (
	"errors"
	"net/http"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/service"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/httpx"
	"github.com/inventorypro/inventorypro/pkg/idx"
	"github.com/inventorypro/inventorypro/pkg/slogx"
)

// UsersHandler exposes user administration. All routes require the Admin
// role; the router enforces that before these handlers run.
type UsersHandler struct {
	UserService *service.UserService
}

// HandleList handles GET /api/users.
func (h *UsersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	users, err := h.UserService.List(ctx)
	if err != nil {
		log.Error("failed to list users", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	out := make([]service.UserSnapshot, 0, len(users))
	for _, u := range users {
		out = append(out, service.NewUserSnapshot(u))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

// HandleUpdateRole handles PATCH /api/users/{id}/role. The new role comes
// from the role query parameter.
func (h *UsersHandler) HandleUpdateRole(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	actor, ok := userFrom(ctx)
	if !ok {
		httpx.WriteError(w, http.StatusUnauthorized, "unauthenticated", "A valid session is required")
		return
	}

	targetID, err := idx.Parse(r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", "Malformed user id")
		return
	}
	role := domain.Role(r.URL.Query().Get("role"))

	updated, err := h.UserService.UpdateRole(ctx, actor, targetID, role)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRole):
			httpx.WriteError(w, http.StatusBadRequest, "invalid_role", "Unknown role")
		case errors.Is(err, service.ErrSelfRoleChange):
			httpx.WriteError(w, http.StatusBadRequest, "self_role_change", "You cannot change your own role")
		case errors.Is(err, store.ErrNotFound):
			httpx.WriteError(w, http.StatusNotFound, "not_found", "No such user")
		default:
			log.Error("failed to update role", "target_id", targetID.String(), "err", err)
			httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		}
		return
	}

	httpx.WriteJSON(w, http.StatusOK, service.NewUserSnapshot(updated))
}
