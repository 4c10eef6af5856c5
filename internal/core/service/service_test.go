package service

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/internal/core/store/drivers/sqlite"
	"github.com/inventorypro/inventorypro/pkg/cryptox"
	"github.com/inventorypro/inventorypro/pkg/idx"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	dir, err := os.MkdirTemp("", "service-test-*")
	if err != nil {
		panic(err)
	}
	cryptox.SetPepperPath(filepath.Join(dir, "pepper.key"))

	code := m.Run()
	os.RemoveAll(dir)
	os.Exit(code)
}

// newTestStore opens a file-backed database. The sqlite memory DSN breaks
// under database/sql pooling (each connection gets its own database), and
// WithTx opens fresh connections.
func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()

	st, err := sqlite.NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	require.NoError(t, st.ApplyMigrations())
	return st
}

func createTestUser(t *testing.T, st store.Store, email, password string, role domain.Role, otpEnabled bool) domain.User {
	t.Helper()

	now := time.Now().UTC()
	user := domain.User{
		ID:         idx.New(),
		Email:      email,
		Name:       "Test User",
		Role:       role,
		OTPEnabled: otpEnabled,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if password != "" {
		hash, err := cryptox.HashPassword(password)
		require.NoError(t, err)
		user.PasswordHash = &hash
	}
	require.NoError(t, st.Users().CreateUser(context.Background(), user))
	return user
}

// captureSender records issued codes instead of delivering them.
type captureSender struct {
	codes []string
}

func (c *captureSender) SendCode(ctx context.Context, user domain.User, code string) error {
	c.codes = append(c.codes, code)
	return nil
}

func (c *captureSender) last() string {
	if len(c.codes) == 0 {
		return ""
	}
	return c.codes[len(c.codes)-1]
}

func newTestServices(st store.Store) (*AuthService, *SessionService, *OTPService, *AuditService, *captureSender) {
	sender := &captureSender{}
	sessions := &SessionService{Store: st, SessionTTL: time.Hour}
	otp := &OTPService{Store: st, Sender: sender, Digits: 6, TTL: 5 * time.Minute, MaxAttempts: 5}
	audit := &AuditService{Store: st}
	auth := &AuthService{Store: st, Sessions: sessions, OTP: otp, Audit: audit}
	return auth, sessions, otp, audit, sender
}
