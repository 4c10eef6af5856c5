package service

import (
	"context"
	"errors"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/identity"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/cryptox"
	"github.com/inventorypro/inventorypro/pkg/idx"
	"github.com/inventorypro/inventorypro/pkg/slogx"
)

var ErrExternalAuthFailed = errors.New("external_auth_failed")

// ExchangeService turns an opaque external session id into a first-party
// session. Each external id is single-use: the grant row's unique
// fingerprint makes a replay of an exchanged id fail.
type ExchangeService struct {
	Store    store.Store
	Provider identity.Provider
	// ProviderName tags sessions and grants created through this exchanger.
	ProviderName string
	Sessions     *SessionService
	Audit        *AuditService
}

// Exchange validates the external session id with the provider, provisions
// the local user if needed, and issues a session. The second factor is
// bypassed: the provider already authenticated the user.
func (s *ExchangeService) Exchange(ctx context.Context, externalSessionID string) (domain.User, string, error) {
	l := slogx.FromContext(ctx)

	if externalSessionID == "" {
		return domain.User{}, "", ErrExternalAuthFailed
	}
	externalHash := cryptox.FingerprintToken(externalSessionID)

	// Claim the id before calling out. If a grant already exists and is not
	// pending, this exchange id was used before.
	grant, err := s.claimGrant(ctx, externalHash)
	if err != nil {
		return domain.User{}, "", err
	}

	ident, err := s.Provider.Resolve(ctx, externalSessionID)
	if err != nil {
		l.Info("external identity resolution failed", "provider", s.ProviderName, "err", err)
		return domain.User{}, "", ErrExternalAuthFailed
	}

	var (
		user  domain.User
		token string
	)
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		var err error
		user, err = s.upsertUser(ctx, tx, ident)
		if err != nil {
			return err
		}

		// Guarded transition: only a still-pending grant can be exchanged,
		// so two concurrent exchanges of the same id cannot both succeed.
		if err := tx.ExternalGrants().MarkExchanged(ctx, grant.ID, user.ID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrExternalAuthFailed
			}
			return err
		}

		provider := s.ProviderName
		token, err = s.Sessions.IssueIn(ctx, tx, user.ID, &provider)
		return err
	})
	if err != nil {
		return domain.User{}, "", err
	}

	return user, token, nil
}

// claimGrant finds or creates the grant row for this external id. Pending
// grants may be retried (a previous attempt failed before completing);
// anything else is a replay.
func (s *ExchangeService) claimGrant(ctx context.Context, externalHash string) (domain.ExternalGrant, error) {
	now := time.Now().UTC()
	grant := domain.ExternalGrant{
		ID:           idx.New(),
		ExternalHash: externalHash,
		Provider:     s.ProviderName,
		Status:       domain.GrantPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err := s.Store.ExternalGrants().CreateGrant(ctx, grant)
	if err == nil {
		return grant, nil
	}
	if !errors.Is(err, store.ErrAlreadyExists) {
		return domain.ExternalGrant{}, err
	}

	existing, err := s.Store.ExternalGrants().GetGrantByExternalHash(ctx, externalHash)
	if err != nil {
		return domain.ExternalGrant{}, err
	}
	if existing.Status != domain.GrantPending {
		return domain.ExternalGrant{}, ErrExternalAuthFailed
	}
	return existing, nil
}

// upsertUser finds the account by email or provisions one with the
// least-privileged role, no password, and the second factor off. New
// accounts are audited as self-creations.
func (s *ExchangeService) upsertUser(ctx context.Context, tx store.Tx, ident identity.Identity) (domain.User, error) {
	user, err := tx.Users().GetUserByEmail(ctx, ident.Email)
	if err == nil {
		if !user.IsActive {
			return domain.User{}, ErrExternalAuthFailed
		}
		return user, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	user = domain.User{
		ID:        idx.New(),
		Email:     ident.Email,
		Name:      ident.Name,
		Role:      domain.DefaultRole,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if ident.Picture != "" {
		picture := ident.Picture
		user.PictureURL = &picture
	}

	if err := tx.Users().CreateUser(ctx, user); err != nil {
		return domain.User{}, err
	}
	if err := s.Audit.Record(ctx, tx, user, domain.AuditCreate, "user", user.ID.String(),
		nil, NewUserSnapshot(user)); err != nil {
		return domain.User{}, err
	}

	return user, nil
}
