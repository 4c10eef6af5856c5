package http

import (
	"errors"
	"net/http"

	"github.com/inventorypro/inventorypro/internal/core/service"
	"github.com/inventorypro/inventorypro/pkg/httpx"
	"github.com/inventorypro/inventorypro/pkg/slogx"
)

// ExchangeHandler trades an opaque external session identifier for a
// first-party session. The external identifier arrives in the X-Session-ID
// header and is consumed on success; replaying it fails.
type ExchangeHandler struct {
	ExchangeService *service.ExchangeService
	Cookies         CookieConfig
}

// HandleExchange handles GET /api/auth/session.
func (h *ExchangeHandler) HandleExchange(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	user, token, err := h.ExchangeService.Exchange(ctx, r.Header.Get("X-Session-ID"))
	if err != nil {
		if errors.Is(err, service.ErrExternalAuthFailed) {
			httpx.WriteError(w, http.StatusUnauthorized,
				"external_auth_failed", "The external session could not be exchanged")
			return
		}
		log.Error("session exchange failed", "err", err)
		httpx.WriteError(w, http.StatusInternalServerError, "server_error", "Internal server error")
		return
	}

	snapshot := service.NewUserSnapshot(user)
	http.SetCookie(w, h.Cookies.Session(token))
	httpx.WriteJSON(w, http.StatusOK, loginResponse{User: &snapshot})
}
