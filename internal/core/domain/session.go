package domain

import (
	"time"

	"github.com/inventorypro/inventorypro/pkg/idx"
)

type Session struct {
	ID        idx.ID
	UserID    idx.ID
	TokenHash string  // SHA-256 fingerprint of the opaque token
	Provider  *string // identity provider name when issued via exchange, nil for first-party logins
	Revoked   bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
