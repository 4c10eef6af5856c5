package sqlite

import (
	"context"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

type otpChallengesRepo struct {
	q querier
}

const challengeColumns = `user_id, secret, counter, attempts, created_at, expires_at`

func scanChallenge(row interface{ Scan(...any) error }) (domain.OTPChallenge, error) {
	var (
		c      domain.OTPChallenge
		userID string
	)
	err := row.Scan(&userID, &c.Secret, &c.Counter, &c.Attempts, &c.CreatedAt, &c.ExpiresAt)
	if err != nil {
		return domain.OTPChallenge{}, err
	}
	c.UserID = idx.ID(userID)
	return c, nil
}

func (r *otpChallengesRepo) UpsertChallenge(ctx context.Context, c domain.OTPChallenge) error {
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO otp_challenges (user_id, secret, counter, attempts, created_at, expires_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			secret = excluded.secret,
			counter = excluded.counter,
			attempts = excluded.attempts,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at`,
		c.UserID.String(), c.Secret, c.Counter, c.Attempts, c.CreatedAt, c.ExpiresAt)
	return err
}

func (r *otpChallengesRepo) GetChallenge(ctx context.Context, userID idx.ID) (domain.OTPChallenge, error) {
	row := r.q.QueryRowContext(ctx,
		`SELECT `+challengeColumns+` FROM otp_challenges WHERE user_id = ?`, userID.String())
	c, err := scanChallenge(row)
	return c, mapNotFound(err)
}

func (r *otpChallengesRepo) IncrementAttempts(ctx context.Context, userID idx.ID) (domain.OTPChallenge, error) {
	res, err := r.q.ExecContext(ctx,
		`UPDATE otp_challenges SET attempts = attempts + 1 WHERE user_id = ?`, userID.String())
	if err != nil {
		return domain.OTPChallenge{}, err
	}
	if err := requireRowChanged(res); err != nil {
		return domain.OTPChallenge{}, err
	}
	return r.GetChallenge(ctx, userID)
}

func (r *otpChallengesRepo) DeleteChallenge(ctx context.Context, userID idx.ID) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM otp_challenges WHERE user_id = ?`, userID.String())
	return err
}

func (r *otpChallengesRepo) DeleteExpiredChallenges(ctx context.Context, now time.Time) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM otp_challenges WHERE expires_at < ?`, now)
	return err
}
