package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/cryptox"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

var (
	ErrSessionInvalid = errors.New("session_invalid")
	ErrSessionExpired = errors.New("session_expired")
)

type SessionService struct {
	Store      store.Store
	SessionTTL time.Duration
}

// Issue creates a session for the user and returns the opaque token. Only
// the token's fingerprint is persisted.
func (s *SessionService) Issue(ctx context.Context, userID idx.ID, provider *string) (string, error) {
	return s.IssueIn(ctx, s.Store, userID, provider)
}

// IssueIn creates the session against the given store, which may be a
// transaction. Login, OTP verification and exchange all issue sessions
// inside their own transactions.
func (s *SessionService) IssueIn(ctx context.Context, st store.Store, userID idx.ID, provider *string) (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}

	now := time.Now().UTC()
	session := domain.Session{
		ID:        idx.New(),
		UserID:    userID,
		TokenHash: cryptox.FingerprintToken(token),
		Provider:  provider,
		CreatedAt: now,
		ExpiresAt: now.Add(s.SessionTTL),
	}
	if err := st.Sessions().CreateSession(ctx, session); err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}

	return token, nil
}

// Validate resolves an opaque token to its user. Expiry is checked lazily
// here, so correctness never depends on the housekeeping sweep.
func (s *SessionService) Validate(ctx context.Context, token string) (domain.User, domain.Session, error) {
	if token == "" {
		return domain.User{}, domain.Session{}, ErrSessionInvalid
	}

	session, err := s.Store.Sessions().GetSessionByTokenHash(ctx, cryptox.FingerprintToken(token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Session{}, ErrSessionInvalid
		}
		return domain.User{}, domain.Session{}, err
	}

	if session.Revoked {
		return domain.User{}, domain.Session{}, ErrSessionInvalid
	}
	if session.Expired(time.Now().UTC()) {
		return domain.User{}, domain.Session{}, ErrSessionExpired
	}

	user, err := s.Store.Users().GetUserByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, domain.Session{}, ErrSessionInvalid
		}
		return domain.User{}, domain.Session{}, err
	}
	if !user.IsActive {
		return domain.User{}, domain.Session{}, ErrSessionInvalid
	}

	return user, session, nil
}

// Revoke invalidates the session behind the token. Revoking an unknown or
// already-revoked token is not an error; logout is idempotent.
func (s *SessionService) Revoke(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	err := s.Store.Sessions().RevokeSession(ctx, cryptox.FingerprintToken(token))
	if errors.Is(err, store.ErrNotFound) {
		return nil
	}
	return err
}
