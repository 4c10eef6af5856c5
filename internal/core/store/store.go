package store

import (
	"context"
	"errors"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite for now)
// implement this. It exposes sub-repositories to keep concerns tidy and
// testable, and transaction helpers for multi-step operations that must be
// atomic (every mutation plus its audit entry).
type Store interface {
	Users() Users
	Sessions() Sessions
	OTPChallenges() OTPChallenges
	ExternalGrants() ExternalGrants
	AuditLogs() AuditLogs
	Products() Products
	Warehouses() Warehouses
	Bins() Bins
	InventoryItems() InventoryItems
	StockMoves() StockMoves
	Adjustments() Adjustments

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back, otherwise it is committed.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	GetUserByID(ctx context.Context, id idx.ID) (domain.User, error)

	// GetUserByEmail matches case-insensitively.
	GetUserByEmail(ctx context.Context, email string) (domain.User, error)

	// CreateUser inserts a new user (id is provided by app via ULID).
	CreateUser(ctx context.Context, u domain.User) error

	// UpdateRole sets the role and bumps updated_at.
	UpdateRole(ctx context.Context, userID idx.ID, role domain.Role) error

	UpdatePasswordHash(ctx context.Context, userID idx.ID, newHash string) error

	// SetActive flips the is_active flag.
	SetActive(ctx context.Context, userID idx.ID, active bool) error

	// ListUsers returns all users ordered by creation date (newest first).
	ListUsers(ctx context.Context) ([]domain.User, error)
}

type Sessions interface {
	CreateSession(ctx context.Context, s domain.Session) error

	// GetSessionByTokenHash returns the session by its token fingerprint.
	GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error)

	// RevokeSession flips revoked=1 for the session with the given fingerprint.
	RevokeSession(ctx context.Context, hash string) error

	// RevokeAllUserSessions bulk revocation for a user (e.g. deactivation).
	RevokeAllUserSessions(ctx context.Context, userID idx.ID) error

	// DeleteExpiredSessions is housekeeping.
	DeleteExpiredSessions(ctx context.Context, now time.Time) error
}

type OTPChallenges interface {
	// UpsertChallenge replaces any existing challenge for the user. At most
	// one live challenge per user.
	UpsertChallenge(ctx context.Context, c domain.OTPChallenge) error

	GetChallenge(ctx context.Context, userID idx.ID) (domain.OTPChallenge, error)

	// IncrementAttempts bumps the failed attempt counter and returns the
	// updated challenge.
	IncrementAttempts(ctx context.Context, userID idx.ID) (domain.OTPChallenge, error)

	DeleteChallenge(ctx context.Context, userID idx.ID) error

	// DeleteExpiredChallenges is housekeeping.
	DeleteExpiredChallenges(ctx context.Context, now time.Time) error
}

type ExternalGrants interface {
	CreateGrant(ctx context.Context, g domain.ExternalGrant) error

	GetGrantByExternalHash(ctx context.Context, hash string) (domain.ExternalGrant, error)

	// MarkExchanged transitions a pending grant to exchanged and records the
	// user it resolved to. Returns ErrNotFound if the grant is not pending,
	// which callers treat as a replay.
	MarkExchanged(ctx context.Context, id idx.ID, userID idx.ID) error

	// ExpireStaleGrants marks pending grants older than cutoff as expired.
	ExpireStaleGrants(ctx context.Context, cutoff time.Time) error
}

type AuditLogs interface {
	// AppendEntry inserts an audit record. There is no update or delete.
	AppendEntry(ctx context.Context, e domain.AuditLogEntry) error

	// ListEntries returns entries newest first, filtered and paginated.
	ListEntries(ctx context.Context, f AuditFilter) ([]domain.AuditLogEntry, error)
}

// AuditFilter narrows audit queries. Zero values mean no filtering.
type AuditFilter struct {
	UserID       idx.ID
	ResourceType string
	ResourceID   string
	Action       domain.AuditAction
	Limit        int
	Offset       int
}

type Products interface {
	CreateProduct(ctx context.Context, p domain.Product) error
	GetProductByID(ctx context.Context, id idx.ID) (domain.Product, error)
	GetProductByCode(ctx context.Context, code string) (domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type Warehouses interface {
	CreateWarehouse(ctx context.Context, w domain.Warehouse) error
	GetWarehouseByID(ctx context.Context, id idx.ID) (domain.Warehouse, error)
	ListWarehouses(ctx context.Context) ([]domain.Warehouse, error)
}

type Bins interface {
	CreateBin(ctx context.Context, b domain.Bin) error
	GetBinByID(ctx context.Context, id idx.ID) (domain.Bin, error)

	// ListBins optionally filters by warehouse; pass idx.Zero for all.
	ListBins(ctx context.Context, warehouseID idx.ID) ([]domain.Bin, error)
}

type InventoryItems interface {
	// GetItemAt returns the item row for a (product, warehouse, bin) triple.
	GetItemAt(ctx context.Context, productID, warehouseID idx.ID, binID *idx.ID) (domain.InventoryItem, error)

	CreateItem(ctx context.Context, it domain.InventoryItem) error

	// UpdateItemQuantity sets the quantity and bumps last_updated.
	UpdateItemQuantity(ctx context.Context, id idx.ID, quantity float64, updatedAt time.Time) error

	// ListItems returns items, optionally filtered by product and/or
	// warehouse (idx.Zero means no filter).
	ListItems(ctx context.Context, productID, warehouseID idx.ID) ([]domain.InventoryItem, error)
}

type StockMoves interface {
	CreateStockMove(ctx context.Context, m domain.StockMove) error

	// ListStockMoves returns moves newest first, optionally filtered by
	// product (idx.Zero means no filter).
	ListStockMoves(ctx context.Context, productID idx.ID) ([]domain.StockMove, error)
}

type Adjustments interface {
	CreateAdjustment(ctx context.Context, a domain.Adjustment) error

	// ListAdjustments returns adjustments newest first.
	ListAdjustments(ctx context.Context) ([]domain.Adjustment, error)
}
