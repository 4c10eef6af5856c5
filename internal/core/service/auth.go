package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/cryptox"
	"github.com/inventorypro/inventorypro/pkg/idx"
	"github.com/inventorypro/inventorypro/pkg/slogx"
)

var (
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrDuplicateEmail     = errors.New("duplicate_email")
)

// LoginResult carries the outcome of a credential check. When the account
// has the second factor enabled, no token is issued until the code is
// verified.
type LoginResult struct {
	User        domain.User
	RequiresOTP bool
	Token       string
}

type AuthService struct {
	Store    store.Store
	Sessions *SessionService
	OTP      *OTPService
	Audit    *AuditService
}

// Login checks credentials. A wrong email and a wrong password produce the
// same error so the response does not leak which accounts exist.
func (s *AuthService) Login(ctx context.Context, email, password string) (LoginResult, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, err
	}

	if !user.IsActive || !user.HasPassword() {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := cryptox.VerifyPassword(password, *user.PasswordHash); err != nil {
		l.Info("login failed", slog.String("user_id", user.ID.String()))
		return LoginResult{}, ErrInvalidCredentials
	}

	if user.OTPEnabled {
		if err := s.OTP.Issue(ctx, user); err != nil {
			return LoginResult{}, fmt.Errorf("issue otp challenge: %w", err)
		}
		return LoginResult{User: user, RequiresOTP: true}, nil
	}

	token, err := s.Sessions.Issue(ctx, user.ID, nil)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: user, Token: token}, nil
}

// VerifyOTP completes a login interrupted by the second factor. The
// challenge is consumed and a session issued only if the code is right.
func (s *AuthService) VerifyOTP(ctx context.Context, userID idx.ID, code string) (LoginResult, error) {
	user, err := s.Store.Users().GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return LoginResult{}, ErrOTPInvalid
		}
		return LoginResult{}, err
	}
	if !user.IsActive {
		return LoginResult{}, ErrOTPInvalid
	}

	if err := s.OTP.Verify(ctx, userID, code); err != nil {
		return LoginResult{}, err
	}

	token, err := s.Sessions.Issue(ctx, user.ID, nil)
	if err != nil {
		return LoginResult{}, err
	}

	return LoginResult{User: user, Token: token}, nil
}

// RegisterParams are the self-registration inputs.
type RegisterParams struct {
	Email      string
	Name       string
	Password   string
	Phone      *string
	OTPEnabled bool
}

// Register creates an account with the least-privileged role and writes the
// creation to the audit trail in the same transaction.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (domain.User, error) {
	hash, err := cryptox.HashPassword(p.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		ID:           idx.New(),
		Email:        strings.TrimSpace(p.Email),
		Name:         strings.TrimSpace(p.Name),
		PasswordHash: &hash,
		Phone:        p.Phone,
		Role:         domain.DefaultRole,
		OTPEnabled:   p.OTPEnabled,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, user); err != nil {
			if errors.Is(err, store.ErrAlreadyExists) {
				return ErrDuplicateEmail
			}
			return err
		}
		return s.Audit.Record(ctx, tx, user, domain.AuditCreate, "user", user.ID.String(),
			nil, NewUserSnapshot(user))
	})
	if err != nil {
		return domain.User{}, err
	}

	return user, nil
}

// Logout revokes the session behind the token. Idempotent.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	return s.Sessions.Revoke(ctx, token)
}
