package domain

import (
	"time"

	"github.com/inventorypro/inventorypro/pkg/idx"
)

type User struct {
	ID           idx.ID
	Email        string  // case-insensitive unique
	Name         string
	PasswordHash *string // argon2 encoded; nil for externally provisioned users
	Phone        *string
	PictureURL   *string
	Role         Role
	OTPEnabled   bool
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// HasPassword reports whether the user can authenticate with credentials.
// Users provisioned through the external identity exchange have no password.
func (u User) HasPassword() bool {
	return u.PasswordHash != nil && *u.PasswordHash != ""
}
