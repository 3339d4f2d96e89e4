package auth

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/fleetsight/fleetsight/internal/shared"
	"github.com/fleetsight/fleetsight/internal/users"
)

// ProfileStore is the slice of the profile repository login needs.
type ProfileStore interface {
	GetUserByEmail(ctx context.Context, email string) (users.User, error)
}

// Service verifies credentials against the profile store. Identity
// issuance itself is delegated to the external provider; this is only the
// session boundary of the host application.
type Service struct {
	store ProfileStore
}

// NewService builds Service instance.
func NewService(store ProfileStore) *Service {
	return &Service{store: store}
}

// Login authenticates an email/password pair and returns the profile row.
// Any failure maps to shared.ErrInvalidCredentials so responses cannot be
// used to probe which accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (users.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return users.User{}, shared.ErrInvalidCredentials
	}
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return users.User{}, shared.ErrInvalidCredentials
		}
		return users.User{}, err
	}
	if !user.IsActive {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}
