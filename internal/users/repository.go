package users

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/bodega-ims/bodega-ims/internal/shared"
)

// RepositoryPort defines data access methods for users.
type RepositoryPort interface {
	Insert(ctx context.Context, u User) error
	Update(ctx context.Context, u User) error
	Delete(ctx context.Context, id string) error
	ByID(ctx context.Context, id string) (User, error)
	ByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context) ([]User, error)
}

// Repository is the authoritative in-memory user store.
type Repository struct {
	mu         sync.RWMutex
	users      map[string]User
	emailIndex map[string]string
}

// NewRepository constructs an empty Repository.
func NewRepository() *Repository {
	return &Repository{users: make(map[string]User), emailIndex: make(map[string]string)}
}

func (r *Repository) Insert(_ context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := normalizeEmail(u.Email)
	if _, exists := r.emailIndex[key]; exists {
		return fmt.Errorf("email %s: %w", u.Email, shared.ErrDuplicate)
	}
	r.users[u.ID] = u
	r.emailIndex[key] = u.ID
	return nil
}

func (r *Repository) Update(_ context.Context, u User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.users[u.ID]
	if !ok {
		return fmt.Errorf("user %s: %w", u.ID, shared.ErrNotFound)
	}
	newKey := normalizeEmail(u.Email)
	oldKey := normalizeEmail(existing.Email)
	if newKey != oldKey {
		if _, taken := r.emailIndex[newKey]; taken {
			return fmt.Errorf("email %s: %w", u.Email, shared.ErrDuplicate)
		}
		delete(r.emailIndex, oldKey)
		r.emailIndex[newKey] = u.ID
	}
	r.users[u.ID] = u
	return nil
}

func (r *Repository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return fmt.Errorf("user %s: %w", id, shared.ErrNotFound)
	}
	delete(r.emailIndex, normalizeEmail(u.Email))
	delete(r.users, id)
	return nil
}

func (r *Repository) ByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return User{}, fmt.Errorf("user %s: %w", id, shared.ErrNotFound)
	}
	return u, nil
}

func (r *Repository) ByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.emailIndex[normalizeEmail(email)]
	if !ok {
		return User{}, fmt.Errorf("email %s: %w", email, shared.ErrNotFound)
	}
	return r.users[id], nil
}

func (r *Repository) List(_ context.Context) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
