package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"pet-adoption-market/internal/domain/identity"
)

type userRepo struct {
	mu      sync.RWMutex
	byID    map[string]identity.User
	byEmail map[string]string // email -> id
}

func NewUserRepo() identity.Repository {
	return &userRepo{
		byID:    make(map[string]identity.User),
		byEmail: make(map[string]string),
	}
}

func (r *userRepo) Create(ctx context.Context, u identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if _, exists := r.byID[u.ID]; exists {
		return errors.New("user already exists")
	}
	if _, exists := r.byEmail[u.Email]; exists {
		return errors.New("email already exists")
	}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return nil
}

func (r *userRepo) Update(ctx context.Context, u identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, exists := r.byID[u.ID]
	if !exists {
		return ErrNotFound
	}
	if prev.Email != u.Email {
		delete(r.byEmail, prev.Email)
		r.byEmail[u.Email] = u.ID
	}
	r.byID[u.ID] = u
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byID[id]
	if !ok {
		return identity.User{}, ErrNotFound
	}
	return u, nil
}

func (r *userRepo) GetByEmail(ctx context.Context, email string) (identity.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.byEmail[email]
	if !ok {
		return identity.User{}, ErrNotFound
	}
	return r.byID[id], nil
}
