package domain

import (
	"time"

	"github.com/inventorypro/inventorypro/pkg/idx"
)

// OTPChallenge is a pending second-factor challenge. At most one live
// challenge exists per user; issuing a new one replaces any prior challenge.
// The numeric code is never stored: it is derived from Secret and Counter
// with HOTP at send and verify time.
type OTPChallenge struct {
	UserID    idx.ID
	Secret    string // base32 encoded, per-challenge random
	Counter   uint64
	Attempts  int // failed verification attempts so far
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (c OTPChallenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
