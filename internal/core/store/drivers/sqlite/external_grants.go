package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

type externalGrantsRepo struct {
	q querier
}

const grantColumns = `id, external_hash, provider, user_id, status, created_at, updated_at`

func scanGrant(row interface{ Scan(...any) error }) (domain.ExternalGrant, error) {
	var (
		g      domain.ExternalGrant
		id     string
		userID sql.NullString
		status string
	)
	err := row.Scan(&id, &g.ExternalHash, &g.Provider, &userID, &status, &g.CreatedAt, &g.UpdatedAt)
	if err != nil {
		return domain.ExternalGrant{}, err
	}
	g.ID = idx.ID(id)
	g.UserID = mapNullIDPtr(userID)
	g.Status = domain.GrantStatus(status)
	return g, nil
}

func (r *externalGrantsRepo) CreateGrant(ctx context.Context, g domain.ExternalGrant) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO external_grants (id, external_hash, provider, user_id, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		g.ID.String(), g.ExternalHash, g.Provider,
		mapOptionalID(g.UserID), string(g.Status), g.CreatedAt, g.UpdatedAt)
	return mapConstraint(err)
}

func (r *externalGrantsRepo) GetGrantByExternalHash(ctx context.Context, hash string) (domain.ExternalGrant, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+grantColumns+` FROM external_grants WHERE external_hash = ?`, hash)
	g, err := scanGrant(row)
	return g, mapNotFound(err)
}

// MarkExchanged only transitions pending grants. A grant that was already
// exchanged stays exchanged, and the caller sees ErrNotFound.
func (r *externalGrantsRepo) MarkExchanged(ctx context.Context, id idx.ID, userID idx.ID) error {
	res, err := r.q.ExecContext(ctx, `
		UPDATE external_grants SET status = 'exchanged', user_id = ?, updated_at = ?
		WHERE id = ? AND status = 'pending'`,
		userID.String(), time.Now().UTC(), id.String())
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *externalGrantsRepo) ExpireStaleGrants(ctx context.Context, cutoff time.Time) error {
	_, err := r.q.ExecContext(ctx, `
		UPDATE external_grants SET status = 'expired', updated_at = ?
		WHERE status = 'pending' AND created_at < ?`,
		time.Now().UTC(), cutoff)
	return err
}
