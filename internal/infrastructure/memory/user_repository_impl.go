// Package memory is a process-local credential store for tests and local runs.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/elysian/registration-service/internal/domain/entity"
	"github.com/elysian/registration-service/internal/domain/repository"
)

type UserRepository struct {
	mu      sync.RWMutex
	byEmail map[string]*entity.User
	byID    map[string]*entity.User
	now     func() time.Time
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		byEmail: make(map[string]*entity.User),
		byID:    make(map[string]*entity.User),
		now:     time.Now,
	}
}

func (r *UserRepository) Insert(ctx context.Context, u *entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byEmail[u.Email]; exists {
		return repository.ErrAlreadyExists
	}
	now := r.now().UTC()
	u.ID = uuid.NewString()
	u.CreatedAt, u.UpdatedAt = now, now
	stored := clone(u)
	r.byEmail[u.Email] = stored
	r.byID[u.ID] = stored
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(u), nil
}

// clone keeps callers from mutating stored credentials.
func clone(u *entity.User) *entity.User {
	c := *u
	c.Credential = entity.HashedCredential{
		Hash: append([]byte(nil), u.Credential.Hash...),
		Salt: append([]byte(nil), u.Credential.Salt...),
	}
	return &c
}

var _ repository.UserRepository = (*UserRepository)(nil)
