package domain

import (
	"time"

	"github.com/inventorypro/inventorypro/pkg/idx"
)

type GrantStatus string

const (
	GrantPending   GrantStatus = "pending"
	GrantExchanged GrantStatus = "exchanged"
	GrantExpired   GrantStatus = "expired"
)

// ExternalGrant records an external session id presented for exchange.
// The unique fingerprint makes replay of an already-exchanged id fail.
type ExternalGrant struct {
	ID           idx.ID
	ExternalHash string // SHA-256 fingerprint of the external session id
	Provider     string
	UserID       *idx.ID // set once the grant is exchanged
	Status       GrantStatus
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
