package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/service"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/httpx"
	"github.com/inventorypro/inventorypro/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	cookies      CookieConfig
	buildVersion string
	startTime    time.Time
	logger       *slog.Logger

	store            store.Store
	AuthService      *service.AuthService
	AuthorizeService *service.AuthorizeService
	ExchangeService  *service.ExchangeService
	UserService      *service.UserService
	AuditService     *service.AuditService
	InventoryService *service.InventoryService
}

func NewRouter(
	cookies CookieConfig,
	buildVersion string,
	st store.Store,
	logger *slog.Logger,
) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		cookies:      cookies,
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Set default middleware chain
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.WithMetrics,
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerExchange()
	r.registerUsers()
	r.registerAudit()
	r.registerInventory()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

// mutateInventory is the role set allowed to change catalogue and stock
// state. Reads are open to any authenticated user.
var mutateInventory = []domain.Role{
	domain.RoleAdmin,
	domain.RoleProductionManager,
	domain.RoleInventoryOfficer,
}

// readAudit is the role set allowed to inspect the audit trail.
var readAudit = []domain.Role{
	domain.RoleAdmin,
	domain.RoleAccountant,
	domain.RoleViewer,
}

func (r *Router) registerAuth() {
	h := &AuthHandler{AuthService: r.AuthService, Cookies: r.cookies}

	// POST /login - strict rate limit (authentication attempts)
	// Note: Rate limited by IP + email body field to prevent brute force
	r.Mux.Handle("POST /api/auth/login",
		httpx.Chain(http.HandlerFunc(h.HandleLogin),
			httpx.RateLimitByIPAndJSONField(httpx.StrictLimit, "email"),
		),
	)

	// POST /verify-otp - strict rate limit (prevent brute force of codes)
	r.Mux.Handle("POST /api/auth/verify-otp",
		httpx.Chain(http.HandlerFunc(h.HandleVerifyOTP),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /register - strict rate limit (public signup endpoint)
	r.Mux.Handle("POST /api/auth/register",
		httpx.Chain(http.HandlerFunc(h.HandleRegister),
			httpx.RateLimitByIP(httpx.StrictLimit),
		),
	)

	// POST /logout - moderate rate limit
	r.Mux.Handle("POST /api/auth/logout",
		httpx.Chain(http.HandlerFunc(h.HandleLogout),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)

	// GET /me - any authenticated user, lenient rate limit
	r.Mux.Handle("GET /api/auth/me",
		httpx.Chain(http.HandlerFunc(h.HandleMe),
			r.requireRoles(),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}

func (r *Router) registerExchange() {
	// No identity provider configured means no exchange endpoint.
	if r.ExchangeService == nil {
		return
	}
	h := &ExchangeHandler{ExchangeService: r.ExchangeService, Cookies: r.cookies}

	// GET /session - strict rate limit keyed by IP and the external session
	// header so one client cannot starve others behind the same proxy.
	r.Mux.Handle("GET /api/auth/session",
		httpx.Chain(http.HandlerFunc(h.HandleExchange),
			httpx.RateLimitByIPAndHeader(httpx.StrictLimit, "X-Session-ID"),
		),
	)
}

func (r *Router) registerUsers() {
	h := &UsersHandler{UserService: r.UserService}

	r.Mux.Handle("GET /api/users",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.requireRoles(domain.RoleAdmin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
	r.Mux.Handle("PATCH /api/users/{id}/role",
		httpx.Chain(http.HandlerFunc(h.HandleUpdateRole),
			r.requireRoles(domain.RoleAdmin),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerAudit() {
	h := &AuditHandler{AuditService: r.AuditService}

	r.Mux.Handle("GET /api/audit-logs",
		httpx.Chain(http.HandlerFunc(h.HandleList),
			r.requireRoles(readAudit...),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		),
	)
}

func (r *Router) registerInventory() {
	products := &ProductsHandler{InventoryService: r.InventoryService}
	warehouses := &WarehousesHandler{InventoryService: r.InventoryService}
	inventory := &InventoryHandler{InventoryService: r.InventoryService}
	moves := &MovesHandler{InventoryService: r.InventoryService}

	mutate := func(h http.HandlerFunc) http.Handler {
		return httpx.Chain(h,
			r.requireRoles(mutateInventory...),
			httpx.RateLimitByIP(httpx.ModerateLimit),
		)
	}
	read := func(h http.HandlerFunc) http.Handler {
		return httpx.Chain(h,
			r.requireRoles(),
			httpx.RateLimitByIP(httpx.LenientLimit),
		)
	}

	r.Mux.Handle("POST /api/products", mutate(products.HandleCreate))
	r.Mux.Handle("GET /api/products", read(products.HandleList))
	r.Mux.Handle("GET /api/products/{id}", read(products.HandleGet))

	r.Mux.Handle("POST /api/warehouses", mutate(warehouses.HandleCreate))
	r.Mux.Handle("GET /api/warehouses", read(warehouses.HandleList))

	r.Mux.Handle("POST /api/bins", mutate(warehouses.HandleCreateBin))
	r.Mux.Handle("GET /api/bins", read(warehouses.HandleListBins))

	r.Mux.Handle("GET /api/inventory", read(inventory.HandleList))

	r.Mux.Handle("POST /api/stock-moves", mutate(moves.HandleCreate))
	r.Mux.Handle("GET /api/stock-moves", read(moves.HandleList))

	r.Mux.Handle("POST /api/adjustments", mutate(moves.HandleCreateAdjustment))
	r.Mux.Handle("GET /api/adjustments", read(moves.HandleListAdjustments))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may
	// poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)

	if metrics, err := httpx.RegisterMetrics(nil); err == nil {
		r.Mux.Handle("GET /metrics", metrics)
	} else {
		r.logger.Warn("metrics registration failed", "err", err)
	}
}
