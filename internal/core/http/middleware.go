package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/service"
	"github.com/inventorypro/inventorypro/pkg/httpx"
	"github.com/inventorypro/inventorypro/pkg/slogx"
)

type ctxUserKey struct{}

type ctxTokenKey struct{}

// userFrom returns the authenticated user injected by requireRoles.
func userFrom(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(ctxUserKey{}).(domain.User)
	return user, ok
}

// tokenFrom returns the raw session token injected by requireRoles. Logout
// needs it to revoke the session.
func tokenFrom(ctx context.Context) string {
	token, _ := ctx.Value(ctxTokenKey{}).(string)
	return token
}

// requireRoles resolves the session cookie and enforces role membership. An
// empty role set admits any authenticated user. Missing or invalid sessions
// get 401; valid sessions with a disallowed role get 403.
func (r *Router) requireRoles(roles ...domain.Role) httpx.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := req.Context()
			log := slogx.FromContext(ctx)

			token := sessionToken(req, r.cookies.Name)
			user, err := r.AuthorizeService.Authorize(ctx, token, roles...)
			if err != nil {
				switch {
				case errors.Is(err, service.ErrUnauthenticated):
					httpx.WriteError(w, http.StatusUnauthorized,
						"unauthenticated", "A valid session is required")
				case errors.Is(err, service.ErrForbidden):
					httpx.WriteError(w, http.StatusForbidden,
						"forbidden", "Your role does not permit this operation")
				default:
					log.Error("authorization check failed", "err", err)
					httpx.WriteError(w, http.StatusInternalServerError,
						"server_error", "Internal server error")
				}
				return
			}

			ctx = context.WithValue(ctx, ctxUserKey{}, user)
			ctx = context.WithValue(ctx, ctxTokenKey{}, token)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	}
}
