package service

import (
	"context"
	"errors"

	"github.com/inventorypro/inventorypro/internal/core/domain"
	"github.com/inventorypro/inventorypro/internal/core/store"
	"github.com/inventorypro/inventorypro/pkg/idx"
)

var (
	ErrInvalidRole    = errors.New("invalid_role")
	ErrSelfRoleChange = errors.New("self_role_change")
)

// UserSnapshot is the audit-safe projection of a user. Password hashes never
// appear in audit entries or API responses.
type UserSnapshot struct {
	ID         string  `json:"id"`
	Email      string  `json:"email"`
	Name       string  `json:"name"`
	Phone      *string `json:"phone,omitempty"`
	PictureURL *string `json:"picture_url,omitempty"`
	Role       string  `json:"role"`
	OTPEnabled bool    `json:"otp_enabled"`
	IsActive   bool    `json:"is_active"`
}

func NewUserSnapshot(u domain.User) UserSnapshot {
	return UserSnapshot{
		ID:         u.ID.String(),
		Email:      u.Email,
		Name:       u.Name,
		Phone:      u.Phone,
		PictureURL: u.PictureURL,
		Role:       u.Role.String(),
		OTPEnabled: u.OTPEnabled,
		IsActive:   u.IsActive,
	}
}

type UserService struct {
	Store store.Store
	Audit *AuditService
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.Store.Users().ListUsers(ctx)
}

func (s *UserService) GetByID(ctx context.Context, id idx.ID) (domain.User, error) {
	return s.Store.Users().GetUserByID(ctx, id)
}

// UpdateRole changes a user's role and audits the change atomically. Admins
// cannot change their own role; demoting the last admin by accident would
// lock everyone out of user management.
func (s *UserService) UpdateRole(ctx context.Context, actor domain.User, targetID idx.ID, role domain.Role) (domain.User, error) {
	if !role.Valid() {
		return domain.User{}, ErrInvalidRole
	}
	if actor.ID == targetID {
		return domain.User{}, ErrSelfRoleChange
	}

	var updated domain.User
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		target, err := tx.Users().GetUserByID(ctx, targetID)
		if err != nil {
			return err
		}

		before := NewUserSnapshot(target)
		if err := tx.Users().UpdateRole(ctx, targetID, role); err != nil {
			return err
		}

		updated = target
		updated.Role = role

		return s.Audit.Record(ctx, tx, actor, domain.AuditUpdate, "user", targetID.String(),
			before, NewUserSnapshot(updated))
	})
	if err != nil {
		return domain.User{}, err
	}

	return updated, nil
}
