package service

import (
	"context"
	"testing"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/stretchr/testify/require"
)

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("issues session for valid credentials", func(t *testing.T) {
		st := newTestStore(t)
		auth, sessions, _, _, _ := newTestServices(st)
		user := createTestUser(t, st, "alice@example.com", "secret-password", domain.RoleAdmin, false)

		result, err := auth.Login(ctx, "alice@example.com", "secret-password")
		require.NoError(t, err)
		require.False(t, result.RequiresOTP)
		require.NotEmpty(t, result.Token)
		require.Equal(t, user.ID, result.User.ID)

		got, _, err := sessions.Validate(ctx, result.Token)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("email match is case-insensitive", func(t *testing.T) {
		st := newTestStore(t)
		auth, _, _, _, _ := newTestServices(st)
		createTestUser(t, st, "alice@example.com", "secret-password", domain.RoleViewer, false)

		result, err := auth.Login(ctx, "Alice@Example.COM", "secret-password")
		require.NoError(t, err)
		require.NotEmpty(t, result.Token)
	})

	t.Run("wrong password and unknown email look the same", func(t *testing.T) {
		st := newTestStore(t)
		auth, _, _, _, _ := newTestServices(st)
		createTestUser(t, st, "alice@example.com", "secret-password", domain.RoleViewer, false)

		_, err := auth.Login(ctx, "alice@example.com", "wrong-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)

		_, err = auth.Login(ctx, "nobody@example.com", "secret-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("inactive user cannot log in", func(t *testing.T) {
		st := newTestStore(t)
		auth, _, _, _, _ := newTestServices(st)
		user := createTestUser(t, st, "alice@example.com", "secret-password", domain.RoleViewer, false)
		require.NoError(t, st.Users().SetActive(ctx, user.ID, false))

		_, err := auth.Login(ctx, "alice@example.com", "secret-password")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("passwordless external user cannot log in with credentials", func(t *testing.T) {
		st := newTestStore(t)
		auth, _, _, _, _ := newTestServices(st)
		createTestUser(t, st, "ext@example.com", "", domain.RoleViewer, false)

		_, err := auth.Login(ctx, "ext@example.com", "")
		require.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("otp-enabled account interrupts login without a token", func(t *testing.T) {
		st := newTestStore(t)
		auth, _, _, _, sender := newTestServices(st)
		user := createTestUser(t, st, "bob@example.com", "secret-password", domain.RoleAccountant, true)

		result, err := auth.Login(ctx, "bob@example.com", "secret-password")
		require.NoError(t, err)
		require.True(t, result.RequiresOTP)
		require.Empty(t, result.Token)
		require.Len(t, sender.codes, 1)

		// A live challenge exists for the user.
		_, err = st.OTPChallenges().GetChallenge(ctx, user.ID)
		require.NoError(t, err)
	})
}

func TestVerifyOTPLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("correct code completes login", func(t *testing.T) {
		st := newTestStore(t)
		auth, sessions, _, _, sender := newTestServices(st)
		user := createTestUser(t, st, "bob@example.com", "secret-password", domain.RoleViewer, true)

		_, err := auth.Login(ctx, "bob@example.com", "secret-password")
		require.NoError(t, err)

		result, err := auth.VerifyOTP(ctx, user.ID, sender.last())
		require.NoError(t, err)
		require.NotEmpty(t, result.Token)

		got, _, err := sessions.Validate(ctx, result.Token)
		require.NoError(t, err)
		require.Equal(t, user.ID, got.ID)
	})

	t.Run("consumed code cannot be replayed", func(t *testing.T) {
		st := newTestStore(t)
		auth, _, _, _, sender := newTestServices(st)
		user := createTestUser(t, st, "bob@example.com", "secret-password", domain.RoleViewer, true)

		_, err := auth.Login(ctx, "bob@example.com", "secret-password")
		require.NoError(t, err)
		code := sender.last()

		_, err = auth.VerifyOTP(ctx, user.ID, code)
		require.NoError(t, err)

		_, err = auth.VerifyOTP(ctx, user.ID, code)
		require.ErrorIs(t, err, ErrOTPInvalid)
	})

	t.Run("unknown user id fails like a bad code", func(t *testing.T) {
		st := newTestStore(t)
		auth, _, _, _, _ := newTestServices(st)

		_, err := auth.VerifyOTP(ctx, "01JEXAMPLEEXAMPLEEXAMPLE00", "123456")
		require.ErrorIs(t, err, ErrOTPInvalid)
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates user with least-privileged role and audits it", func(t *testing.T) {
		st := newTestStore(t)
		auth, _, _, audit, _ := newTestServices(st)

		user, err := auth.Register(ctx, RegisterParams{
			Email:    "carol@example.com",
			Name:     "Carol",
			Password: "secret-password",
		})
		require.NoError(t, err)
		require.Equal(t, domain.DefaultRole, user.Role)
		require.True(t, user.HasPassword())

		entries, err := audit.Query(ctx, store.AuditFilter{ResourceType: "user"})
		require.NoError(t, err)
		require.Len(t, entries, 1)
		require.Equal(t, domain.AuditCreate, entries[0].Action)
		require.Equal(t, user.ID, entries[0].UserID)
		require.Nil(t, entries[0].Before)
		require.NotContains(t, string(entries[0].After), "password")
	})

	t.Run("duplicate email rolls back user and audit entry", func(t *testing.T) {
		st := newTestStore(t)
		auth, _, _, audit, _ := newTestServices(st)
		createTestUser(t, st, "carol@example.com", "secret-password", domain.RoleViewer, false)

		_, err := auth.Register(ctx, RegisterParams{
			Email:    "CAROL@example.com",
			Name:     "Carol Again",
			Password: "other-password",
		})
		require.ErrorIs(t, err, ErrDuplicateEmail)

		entries, err := audit.Query(ctx, store.AuditFilter{ResourceType: "user"})
		require.NoError(t, err)
		require.Empty(t, entries)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	st := newTestStore(t)
	auth, sessions, _, _, _ := newTestServices(st)
	createTestUser(t, st, "alice@example.com", "secret-password", domain.RoleViewer, false)

	result, err := auth.Login(ctx, "alice@example.com", "secret-password")
	require.NoError(t, err)

	require.NoError(t, auth.Logout(ctx, result.Token))

	_, _, err = sessions.Validate(ctx, result.Token)
	require.ErrorIs(t, err, ErrSessionInvalid)

	// Idempotent: repeated and unknown-token logouts succeed.
	require.NoError(t, auth.Logout(ctx, result.Token))
	require.NoError(t, auth.Logout(ctx, "no-such-token"))
}
