package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elysian/registration-service/internal/domain/entity"
	"github.com/elysian/registration-service/internal/domain/repository"
)

func newUser(email string) *entity.User {
	return &entity.User{
		Email:      email,
		Name:       "A",
		Credential: entity.HashedCredential{Hash: []byte("hash"), Salt: []byte("salt")},
	}
}

func TestInsertAndGet(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	u := newUser("a@x.com")
	require.NoError(t, repo.Insert(ctx, u))
	require.NotEmpty(t, u.ID)

	got, err := repo.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	got, err = repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", got.Email)

	// returned values are copies
	got.Credential.Hash[0] = 'X'
	again, err := repo.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("hash"), again.Credential.Hash)
}

func TestInsert_Duplicate(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	require.NoError(t, repo.Insert(ctx, newUser("a@x.com")))
	assert.ErrorIs(t, repo.Insert(ctx, newUser("a@x.com")), repository.ErrAlreadyExists)
}

func TestGet_NotFound(t *testing.T) {
	repo := NewUserRepository()
	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestInsert_CanceledContext(t *testing.T) {
	repo := NewUserRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, repo.Insert(ctx, newUser("a@x.com")), context.Canceled)
}

func TestInsert_ConcurrentSameEmail(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	const n = 64
	var ok, dup atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := repo.Insert(ctx, newUser("race@x.com"))
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, repository.ErrAlreadyExists):
				dup.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, ok.Load())
	assert.EqualValues(t, n-1, dup.Load())
	assert.Len(t, repo.byID, 1)
}

func TestInsert_ConcurrentDistinctEmails(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, repo.Insert(ctx, newUser(fmt.Sprintf("u%d@x.com", i))))
		}(i)
	}
	wg.Wait()
	assert.Len(t, repo.byEmail, n)
}
