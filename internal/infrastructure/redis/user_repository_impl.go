package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/elysian/registration-service/internal/domain/entity"
	"github.com/elysian/registration-service/internal/domain/repository"
	"github.com/elysian/registration-service/pkg/helpers"
)

func keyByEmail(email string) string { return "user:email:" + email }
func keyByID(id string) string       { return "user:id:" + id }

// Lua script: create the email record only if absent, then the id pointer, in one step
var insertScript = goredis.NewScript(`
if redis.call("SETNX", KEYS[1], ARGV[1]) == 0 then
  return 0
end
redis.call("SET", KEYS[2], ARGV[2])
return 1
`)

type userRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash []byte    `json:"password_hash"`
	PasswordSalt []byte    `json:"password_salt"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// UserRepository keeps one JSON record per email plus an id -> email pointer.
type UserRepository struct {
	rdb *goredis.Client
	now func() time.Time
}

func NewUserRepository(rdb *goredis.Client) *UserRepository {
	return &UserRepository{rdb: rdb, now: time.Now}
}

func (r *UserRepository) Insert(ctx context.Context, u *entity.User) error {
	now := r.now().UTC()
	rec := userRecord{
		ID:           uuid.NewString(),
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.Credential.Hash,
		PasswordSalt: u.Credential.Salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	b, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	created, err := insertScript.Run(ctx, r.rdb, []string{keyByEmail(rec.Email), keyByID(rec.ID)}, b, rec.Email).Int()
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	if created == 0 {
		return repository.ErrAlreadyExists
	}
	u.ID, u.CreatedAt, u.UpdatedAt = rec.ID, rec.CreatedAt, rec.UpdatedAt
	return nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var rec userRecord
	ok, err := helpers.RedisGetJSON(ctx, r.rdb, keyByEmail(email), &rec)
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &entity.User{
		ID:         rec.ID,
		Email:      rec.Email,
		Name:       rec.Name,
		Credential: entity.HashedCredential{Hash: rec.PasswordHash, Salt: rec.PasswordSalt},
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	email, err := r.rdb.Get(ctx, keyByID(id)).Result()
	if errors.Is(err, goredis.Nil) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return r.GetByEmail(ctx, email)
}

var _ repository.UserRepository = (*UserRepository)(nil)
