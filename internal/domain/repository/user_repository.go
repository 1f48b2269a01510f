package repository

import (
	"context"
	"errors"

	"github.com/elysian/registration-service/internal/domain/entity"
)

var (
	// ErrNotFound is returned when no record matches the lookup key.
	ErrNotFound = errors.New("user not found")
	// ErrAlreadyExists is returned by Insert when the email is already taken.
	ErrAlreadyExists = errors.New("user already exists")
)

// UserRepository defines the persistence contract for user records.
//
// Insert must be an atomic create-if-absent keyed by email: two concurrent
// inserts for the same email produce exactly one success and one ErrAlreadyExists.
type UserRepository interface {
	Insert(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
}
