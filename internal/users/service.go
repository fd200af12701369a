package users

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/bodega-ims/bodega-ims/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service handles user business logic.
type Service struct {
	repo  RepositoryPort
	audit AuditPort
}

// NewService builds Service instance. audit may be nil.
func NewService(repo RepositoryPort, audit AuditPort) *Service {
	return &Service{repo: repo, audit: audit}
}

// CreateUser registers an account with a bcrypt password hash.
func (s *Service) CreateUser(ctx context.Context, input UserInput, actor string) (User, error) {
	if input.Email == "" || input.Password == "" {
		return User{}, fmt.Errorf("%w: email and password are required", shared.ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return User{}, err
	}
	now := time.Now().UTC()
	user := User{
		ID:           uuid.NewString(),
		Email:        input.Email,
		Name:         input.Name,
		Role:         defaultRole(input.Role),
		IsActive:     input.IsActive,
		PasswordHash: string(hash),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Insert(ctx, user); err != nil {
		return User{}, err
	}
	s.recordAudit(ctx, actor, "user:create", user.ID, map[string]any{"email": user.Email})
	return user, nil
}

// UpdateUser replaces the writable fields. An empty password keeps the
// current hash.
func (s *Service) UpdateUser(ctx context.Context, id string, input UserInput, actor string) (User, error) {
	if input.Email == "" {
		return User{}, fmt.Errorf("%w: email is required", shared.ErrValidation)
	}
	user, err := s.repo.ByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	user.Email = input.Email
	user.Name = input.Name
	user.Role = defaultRole(input.Role)
	user.IsActive = input.IsActive
	if input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			return User{}, err
		}
		user.PasswordHash = string(hash)
	}
	user.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, user); err != nil {
		return User{}, err
	}
	s.recordAudit(ctx, actor, "user:update", user.ID, map[string]any{"email": user.Email})
	return user, nil
}

// DeleteUser removes an account.
func (s *Service) DeleteUser(ctx context.Context, id, actor string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.recordAudit(ctx, actor, "user:delete", id, nil)
	return nil
}

// GetUser fetches one account by ID.
func (s *Service) GetUser(ctx context.Context, id string) (User, error) {
	return s.repo.ByID(ctx, id)
}

// FindByEmail fetches one account by email.
func (s *Service) FindByEmail(ctx context.Context, email string) (User, error) {
	return s.repo.ByEmail(ctx, email)
}

// ListUsers returns all accounts.
func (s *Service) ListUsers(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

func defaultRole(role Role) Role {
	if role == "" {
		return RoleStaff
	}
	return role
}

func (s *Service) recordAudit(ctx context.Context, actor, action, entityID string, meta map[string]any) {
	if s.audit == nil {
		return
	}
	_ = s.audit.Record(ctx, shared.AuditLog{Actor: actor, Action: action, Entity: "user", EntityID: entityID, Meta: meta})
}
