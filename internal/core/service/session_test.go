package service

import (
	"context"
	"testing"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/stretchr/testify/require"
)

func TestSessionValidate(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		st := newTestStore(t)
		sessions := &SessionService{Store: st, SessionTTL: time.Hour}
		user := createTestUser(t, st, "alice@example.com", "pw", domain.RoleAdmin, false)

		token, err := sessions.Issue(ctx, user.ID, nil)
		require.NoError(t, err)

		got, session, err := sessions.Validate(ctx, token)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
		require.Nil(t, session.Provider)
	})

	t.Run("garbage and empty tokens are invalid", func(t *testing.T) {
		st := newTestStore(t)
		sessions := &SessionService{Store: st, SessionTTL: time.Hour}

		_, _, err := sessions.Validate(ctx, "")
		require.ErrorIs(t, err, ErrSessionInvalid)

		_, _, err = sessions.Validate(ctx, "not-a-real-token")
		require.ErrorIs(t, err, ErrSessionInvalid)
	})

	t.Run("expired session rejected lazily", func(t *testing.T) {
		st := newTestStore(t)
		sessions := &SessionService{Store: st, SessionTTL: -time.Minute}
		user := createTestUser(t, st, "alice@example.com", "pw", domain.RoleViewer, false)

		token, err := sessions.Issue(ctx, user.ID, nil)
		require.NoError(t, err)

		_, _, err = sessions.Validate(ctx, token)
		require.ErrorIs(t, err, ErrSessionExpired)
	})

	t.Run("revoked session rejected", func(t *testing.T) {
		st := newTestStore(t)
		sessions := &SessionService{Store: st, SessionTTL: time.Hour}
		user := createTestUser(t, st, "alice@example.com", "pw", domain.RoleViewer, false)

		token, err := sessions.Issue(ctx, user.ID, nil)
		require.NoError(t, err)
		require.NoError(t, sessions.Revoke(ctx, token))

		_, _, err = sessions.Validate(ctx, token)
		require.ErrorIs(t, err, ErrSessionInvalid)
	})

	t.Run("deactivated user invalidates live sessions", func(t *testing.T) {
		st := newTestStore(t)
		sessions := &SessionService{Store: st, SessionTTL: time.Hour}
		user := createTestUser(t, st, "alice@example.com", "pw", domain.RoleViewer, false)

		token, err := sessions.Issue(ctx, user.ID, nil)
		require.NoError(t, err)
		require.NoError(t, st.Users().SetActive(ctx, user.ID, false))

		_, _, err = sessions.Validate(ctx, token)
		require.ErrorIs(t, err, ErrSessionInvalid)
	})

	t.Run("concurrent sessions stay independent", func(t *testing.T) {
		st := newTestStore(t)
		sessions := &SessionService{Store: st, SessionTTL: time.Hour}
		user := createTestUser(t, st, "alice@example.com", "pw", domain.RoleViewer, false)

		token1, err := sessions.Issue(ctx, user.ID, nil)
		require.NoError(t, err)
		token2, err := sessions.Issue(ctx, user.ID, nil)
		require.NoError(t, err)
		require.NotEqual(t, token1, token2)

		require.NoError(t, sessions.Revoke(ctx, token1))

		_, _, err = sessions.Validate(ctx, token2)
		require.NoError(t, err)
	})
}

func TestAuthorize(t *testing.T) {
	ctx := context.Background()

	setup := func(t *testing.T) (*AuthorizeService, string, domain.User) {
		st := newTestStore(t)
		sessions := &SessionService{Store: st, SessionTTL: time.Hour}
		user := createTestUser(t, st, "officer@example.com", "pw", domain.RoleInventoryOfficer, false)
		token, err := sessions.Issue(ctx, user.ID, nil)
		require.NoError(t, err)
		return &AuthorizeService{Sessions: sessions}, token, user
	}

	t.Run("missing session is unauthenticated", func(t *testing.T) {
		authz, _, _ := setup(t)
		_, err := authz.Authorize(ctx, "", domain.RoleAdmin)
		require.ErrorIs(t, err, ErrUnauthenticated)
	})

	t.Run("valid session with wrong role is forbidden", func(t *testing.T) {
		authz, token, _ := setup(t)
		_, err := authz.Authorize(ctx, token, domain.RoleAdmin)
		require.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("role in allowed set passes", func(t *testing.T) {
		authz, token, user := setup(t)
		got, err := authz.Authorize(ctx, token, domain.RoleAdmin, domain.RoleInventoryOfficer)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("empty allowed set admits any authenticated user", func(t *testing.T) {
		authz, token, user := setup(t)
		got, err := authz.Authorize(ctx, token)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})
}
