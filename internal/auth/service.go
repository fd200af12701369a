package auth

import (
	"context"

	"golang.org/x/crypto/bcrypt"

	"github.com/bodega-ims/bodega-ims/internal/shared"
	"github.com/bodega-ims/bodega-ims/internal/users"
)

// UserPort looks up accounts for credential checks.
type UserPort interface {
	FindByEmail(ctx context.Context, email string) (users.User, error)
}

// Service wraps authentication business rules.
type Service struct {
	users UserPort
}

// NewService constructs a new Service.
func NewService(userPort UserPort) *Service {
	return &Service{users: userPort}
}

// Authenticate validates email/password credentials. Unknown accounts,
// disabled accounts and wrong passwords all collapse into the same error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (users.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if !user.IsActive {
		return users.User{}, shared.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return users.User{}, shared.ErrInvalidCredentials
	}
	return user, nil
}
