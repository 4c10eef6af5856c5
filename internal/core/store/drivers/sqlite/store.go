package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/idx"
	_ "modernc.org/sqlite"
)

// querier is satisfied by both *sql.DB and *sql.Tx, letting the repos run
// against the pool or inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type Store struct {
	db  *sql.DB
	dsn string
}

func NewStore(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}

	// Enforce FKs
	if _, err := db.ExecContext(context.Background(), `PRAGMA foreign_keys = ON;`); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{
		db:  db,
		dsn: dsn,
	}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Ping verifies the database connection is still alive.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Tx starts a read/write transaction and returns a Tx-scoped Store.
func (s *Store) Tx(ctx context.Context) (store.Tx, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return newTx(tx), nil
}

// WithTx executes fn within a transaction, automatically handling commit/rollback.
func (s *Store) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	tx, err := s.Tx(ctx)
	if err != nil {
		return err
	}

	// Ensure rollback is called if we panic or return early with error
	defer func() {
		_ = tx.Rollback() // safe to call even after commit
	}()

	if err := fn(tx); err != nil {
		return err // rollback happens in defer
	}

	return tx.Commit()
}

func (s *Store) Users() store.Users                   { return &usersRepo{q: s.db} }
func (s *Store) Sessions() store.Sessions             { return &sessionsRepo{q: s.db} }
func (s *Store) OTPChallenges() store.OTPChallenges   { return &otpChallengesRepo{q: s.db} }
func (s *Store) ExternalGrants() store.ExternalGrants { return &externalGrantsRepo{q: s.db} }
func (s *Store) AuditLogs() store.AuditLogs           { return &auditLogsRepo{q: s.db} }
func (s *Store) Products() store.Products             { return &productsRepo{q: s.db} }
func (s *Store) Warehouses() store.Warehouses         { return &warehousesRepo{q: s.db} }
func (s *Store) Bins() store.Bins                     { return &binsRepo{q: s.db} }
func (s *Store) InventoryItems() store.InventoryItems { return &inventoryItemsRepo{q: s.db} }
func (s *Store) StockMoves() store.StockMoves         { return &stockMovesRepo{q: s.db} }
func (s *Store) Adjustments() store.Adjustments       { return &adjustmentsRepo{q: s.db} }

func mapNotFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return store.ErrNotFound
	}
	return err
}

// mapConstraint converts sqlite unique constraint violations to
// store.ErrAlreadyExists.
func mapConstraint(err error) error {
	if err == nil {
		return nil
	}
	if strings.Contains(err.Error(), "UNIQUE constraint failed") ||
		strings.Contains(err.Error(), "constraint failed: UNIQUE") {
		return store.ErrAlreadyExists
	}
	return err
}

func mapNullStringPtr(ns sql.NullString) *string {
	if ns.Valid {
		val := ns.String
		return &val
	}
	return nil
}

func mapOptionalString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: *s, Valid: true}
}

func mapNullIDPtr(ns sql.NullString) *idx.ID {
	if ns.Valid {
		val := idx.ID(ns.String)
		return &val
	}
	return nil
}

func mapOptionalID(id *idx.ID) sql.NullString {
	if id == nil {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: id.String(), Valid: true}
}
