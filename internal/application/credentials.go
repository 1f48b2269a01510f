package application

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/elysian/registration-service/internal/domain/entity"
	repo "github.com/elysian/registration-service/internal/domain/repository"
	"github.com/elysian/registration-service/pkg/helpers"
)

const DefaultStoreTimeout = 5 * time.Second

// CredentialStore owns user records. Passwords are hashed before they reach
// the repository.
type CredentialStore struct {
	Repo    repo.UserRepository
	Hasher  *helpers.PasswordHasher
	Timeout time.Duration

	dummyOnce sync.Once
	dummy     entity.HashedCredential
}

func NewCredentialStore(r repo.UserRepository, hasher *helpers.PasswordHasher, timeout time.Duration) *CredentialStore {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}
	return &CredentialStore{Repo: r, Hasher: hasher, Timeout: timeout}
}

// Create hashes the password and inserts the record. It returns
// repo.ErrAlreadyExists when the email is taken and ErrStoreUnavailable for
// any other repository failure.
func (s *CredentialStore) Create(ctx context.Context, email, name, plaintext string) (*entity.User, error) {
	cred, err := s.Hasher.Hash(plaintext)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Email: email, Name: name, Credential: cred}

	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	if err := s.Repo.Insert(ctx, u); err != nil {
		if errors.Is(err, repo.ErrAlreadyExists) {
			return nil, repo.ErrAlreadyExists
		}
		return nil, storeUnavailable("insert user", err)
	}
	return u, nil
}

// FindByEmail returns repo.ErrNotFound when no record exists.
func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	return s.get(ctx, "find user", func(ctx context.Context) (*entity.User, error) {
		return s.Repo.GetByEmail(ctx, email)
	})
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*entity.User, error) {
	return s.get(ctx, "find user", func(ctx context.Context) (*entity.User, error) {
		return s.Repo.GetByID(ctx, id)
	})
}

func (s *CredentialStore) get(ctx context.Context, op string, fn func(context.Context) (*entity.User, error)) (*entity.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()
	u, err := fn(ctx)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, repo.ErrNotFound
		}
		return nil, storeUnavailable(op, err)
	}
	return u, nil
}

// VerifyAbsent burns the same hashing work as a real verification so an
// unknown email takes about as long as a wrong password.
func (s *CredentialStore) VerifyAbsent(plaintext string) {
	s.dummyOnce.Do(func() {
		cred, err := s.Hasher.Hash("not-a-real-password")
		if err == nil {
			s.dummy = cred
		}
	})
	_ = s.Hasher.Verify(plaintext, s.dummy)
}
