package service

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/idx"
	"github.com/inventorypro/inventorypro/pkg/slogx"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/hotp"
)

var (
	ErrOTPInvalid          = errors.New("otp_invalid")
	ErrOTPExpired          = errors.New("otp_expired")
	ErrOTPAttemptsExceeded = errors.New("otp_attempts_exceeded")
)

// CodeSender delivers a one-time code to the user. Delivery transport (SMS,
// email) lives outside this service.
type CodeSender interface {
	SendCode(ctx context.Context, user domain.User, code string) error
}

// LogSender writes codes to the debug log. Development default.
type LogSender struct{}

func (LogSender) SendCode(ctx context.Context, user domain.User, code string) error {
	slogx.FromContext(ctx).Debug("otp code issued",
		slog.String("user_id", user.ID.String()),
		slog.String("code", code),
	)
	return nil
}

type OTPService struct {
	Store       store.Store
	Sender      CodeSender
	Digits      int
	TTL         time.Duration
	MaxAttempts int
}

func (s *OTPService) validateOpts() hotp.ValidateOpts {
	return hotp.ValidateOpts{
		Digits:    otp.Digits(s.Digits),
		Algorithm: otp.AlgorithmSHA1,
	}
}

// Issue creates a fresh challenge for the user, replacing any prior one, and
// hands the derived code to the sender. The code itself is never stored.
func (s *OTPService) Issue(ctx context.Context, user domain.User) error {
	// 20 random bytes encode to 32 base32 chars with no padding.
	raw := make([]byte, 20)
	if _, err := rand.Read(raw); err != nil {
		return fmt.Errorf("generate otp secret: %w", err)
	}
	secret := base32.StdEncoding.WithPadding(base32.NoPadding).EncodeToString(raw)

	now := time.Now().UTC()
	challenge := domain.OTPChallenge{
		UserID:    user.ID,
		Secret:    secret,
		Counter:   uint64(now.UnixNano()),
		CreatedAt: now,
		ExpiresAt: now.Add(s.TTL),
	}
	if err := s.Store.OTPChallenges().UpsertChallenge(ctx, challenge); err != nil {
		return fmt.Errorf("store otp challenge: %w", err)
	}

	code, err := hotp.GenerateCodeCustom(secret, challenge.Counter, s.validateOpts())
	if err != nil {
		return fmt.Errorf("derive otp code: %w", err)
	}

	return s.Sender.SendCode(ctx, user, code)
}

// Verify consumes the user's challenge. The attempt bookkeeping and the
// consume-on-success all happen in one transaction so two concurrent
// verifications cannot both succeed.
func (s *OTPService) Verify(ctx context.Context, userID idx.ID, code string) error {
	now := time.Now().UTC()

	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		challenge, err := tx.OTPChallenges().GetChallenge(ctx, userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				// No live challenge: either never issued or already consumed.
				return ErrOTPInvalid
			}
			return err
		}

		if challenge.Expired(now) {
			if err := tx.OTPChallenges().DeleteChallenge(ctx, userID); err != nil {
				return err
			}
			return ErrOTPExpired
		}

		if challenge.Attempts >= s.MaxAttempts {
			if err := tx.OTPChallenges().DeleteChallenge(ctx, userID); err != nil {
				return err
			}
			return ErrOTPAttemptsExceeded
		}

		valid, err := hotp.ValidateCustom(code, challenge.Counter, challenge.Secret, s.validateOpts())
		if err != nil || !valid {
			updated, incErr := tx.OTPChallenges().IncrementAttempts(ctx, userID)
			if incErr != nil {
				return incErr
			}
			if updated.Attempts >= s.MaxAttempts {
				if err := tx.OTPChallenges().DeleteChallenge(ctx, userID); err != nil {
					return err
				}
				return ErrOTPAttemptsExceeded
			}
			return ErrOTPInvalid
		}

		// Consume on success so the code cannot be replayed.
		return tx.OTPChallenges().DeleteChallenge(ctx, userID)
	})
}
