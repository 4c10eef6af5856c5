package sqlite

import (
	"context"
	"database/sql"

	"github.com/inventorypro/inventorypro/internal/core/store"
)

type txStore struct {
	tx *sql.Tx
}

func newTx(tx *sql.Tx) *txStore {
	return &txStore{tx: tx}
}

func (t *txStore) Commit() error   { return t.tx.Commit() }
func (t *txStore) Rollback() error { return t.tx.Rollback() }

func (t *txStore) Close() error { return nil } // nothing to close; caller will commit/rollback and outer DB stays open

// Ping is a no-op for transactions. The connection is already established
// when the transaction is created, so we just return nil.
func (t *txStore) Ping(ctx context.Context) error {
	return nil
}

func (t *txStore) Tx(ctx context.Context) (store.Tx, error) {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return nil, sql.ErrTxDone
}

func (t *txStore) WithTx(ctx context.Context, fn func(tx store.Tx) error) error {
	// Nested tx not supported; could emulate with SAVEPOINT if needed
	return sql.ErrTxDone
}

func (t *txStore) Users() store.Users                   { return &usersRepo{q: t.tx} }
func (t *txStore) Sessions() store.Sessions             { return &sessionsRepo{q: t.tx} }
func (t *txStore) OTPChallenges() store.OTPChallenges   { return &otpChallengesRepo{q: t.tx} }
func (t *txStore) ExternalGrants() store.ExternalGrants { return &externalGrantsRepo{q: t.tx} }
func (t *txStore) AuditLogs() store.AuditLogs           { return &auditLogsRepo{q: t.tx} }
func (t *txStore) Products() store.Products             { return &productsRepo{q: t.tx} }
func (t *txStore) Warehouses() store.Warehouses         { return &warehousesRepo{q: t.tx} }
func (t *txStore) Bins() store.Bins                     { return &binsRepo{q: t.tx} }
func (t *txStore) InventoryItems() store.InventoryItems { return &inventoryItemsRepo{q: t.tx} }
func (t *txStore) StockMoves() store.StockMoves         { return &stockMovesRepo{q: t.tx} }
func (t *txStore) Adjustments() store.Adjustments       { return &adjustmentsRepo{q: t.tx} }

func (t *txStore) ApplyMigrations() error { return nil } // no-op; migrations should be applied before starting a tx
