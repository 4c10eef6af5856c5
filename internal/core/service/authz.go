package service

import (
	"context"
	"errors"
	"slices"

	"github.com/inventorypro/inventorypro/internal/core/domain"
)

var (
	// ErrUnauthenticated means there is no valid session behind the request.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrForbidden means the session is valid but the role is not allowed.
	ErrForbidden = errors.New("forbidden")
)

// AuthorizeService gates operations on the caller's role. Handlers never
// inspect roles directly; they declare an allowed set and let Authorize
// distinguish "who are you" failures from "you may not" failures.
type AuthorizeService struct {
	Sessions *SessionService
}

// Authorize resolves the token to a user and checks role membership. An
// empty allowed set admits any authenticated user.
func (s *AuthorizeService) Authorize(ctx context.Context, token string, allowed ...domain.Role) (domain.User, error) {
	user, _, err := s.Sessions.Validate(ctx, token)
	if err != nil {
		if errors.Is(err, ErrSessionInvalid) || errors.Is(err, ErrSessionExpired) {
			return domain.User{}, ErrUnauthenticated
		}
		return domain.User{}, err
	}

	if len(allowed) == 0 {
		return user, nil
	}
	if !slices.Contains(allowed, user.Role) {
		return domain.User{}, ErrForbidden
	}

	return user, nil
}
