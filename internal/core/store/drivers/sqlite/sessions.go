package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

type sessionsRepo struct {
	q querier
}

const sessionColumns = `id, user_id, token_hash, provider, revoked, created_at, expires_at`

func scanSession(row interface{ Scan(...any) error }) (domain.Session, error) {
	var (
		s        domain.Session
		id       string
		userID   string
		provider sql.NullString
	)
	err := row.Scan(&id, &userID, &s.TokenHash, &provider, &s.Revoked, &s.CreatedAt, &s.ExpiresAt)
	if err != nil {
		return domain.Session{}, err
	}
	s.ID = idx.ID(id)
	s.UserID = idx.ID(userID)
	s.Provider = mapNullStringPtr(provider)
	return s, nil
}

func (r *sessionsRepo) CreateSession(ctx context.Context, s domain.Session) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO sessions (id, user_id, token_hash, provider, revoked, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		s.ID.String(), s.UserID.String(), s.TokenHash,
		mapOptionalString(s.Provider), s.Revoked, s.CreatedAt, s.ExpiresAt)
	return mapConstraint(err)
}

func (r *sessionsRepo) GetSessionByTokenHash(ctx context.Context, hash string) (domain.Session, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE token_hash = ?`, hash)
	s, err := scanSession(row)
	return s, mapNotFound(err)
}

func (r *sessionsRepo) RevokeSession(ctx context.Context, hash string) error {
	res, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET revoked = 1 WHERE token_hash = ?`, hash)
	if err != nil {
		return err
	}
	return requireRowChanged(res)
}

func (r *sessionsRepo) RevokeAllUserSessions(ctx context.Context, userID idx.ID) error {
	_, err := r.q.ExecContext(ctx,
		`UPDATE sessions SET revoked = 1 WHERE user_id = ?`, userID.String())
	return err
}

func (r *sessionsRepo) DeleteExpiredSessions(ctx context.Context, now time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM sessions WHERE expires_at < ?`, now)
	return err
}
