package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elysian/registration-service/internal/domain/entity"
	"github.com/elysian/registration-service/internal/domain/repository"
)

type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.values) {
		return errors.New("column count mismatch")
	}
	for i, v := range r.values {
		switch d := dest[i].(type) {
		case *string:
			*d = v.(string)
		case *[]byte:
			*d = v.([]byte)
		case *time.Time:
			*d = v.(time.Time)
		default:
			return errors.New("unsupported scan target")
		}
	}
	return nil
}

type fakeQuerier struct {
	sql  string
	args []any
	row  fakeRow
}

func (q *fakeQuerier) QueryRow(_ context.Context, sql string, args ...any) pgx.Row {
	q.sql = sql
	q.args = args
	return q.row
}

func TestInsert_Success(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := &fakeQuerier{row: fakeRow{values: []any{"0b5c7a52-5b0c-4a43-9d57-3f6a8f0ad001", now, now}}}
	repo := NewUserRepository(q)

	u := &entity.User{
		Email:      "a@x.com",
		Name:       "A",
		Credential: entity.HashedCredential{Hash: []byte("hash"), Salt: []byte("salt")},
	}
	require.NoError(t, repo.Insert(context.Background(), u))

	assert.Equal(t, "0b5c7a52-5b0c-4a43-9d57-3f6a8f0ad001", u.ID)
	assert.Equal(t, now, u.CreatedAt)
	assert.Contains(t, q.sql, "ON CONFLICT (email) DO NOTHING")
	assert.Equal(t, []any{"a@x.com", "A", []byte("hash"), []byte("salt")}, q.args)
}

func TestInsert_ConflictNoRows(t *testing.T) {
	repo := NewUserRepository(&fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}})
	err := repo.Insert(context.Background(), &entity.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestInsert_UniqueViolation(t *testing.T) {
	repo := NewUserRepository(&fakeQuerier{row: fakeRow{err: &pgconn.PgError{Code: "23505"}}})
	err := repo.Insert(context.Background(), &entity.User{Email: "a@x.com"})
	assert.ErrorIs(t, err, repository.ErrAlreadyExists)
}

func TestInsert_DBError(t *testing.T) {
	repo := NewUserRepository(&fakeQuerier{row: fakeRow{err: errors.New("db down")}})
	err := repo.Insert(context.Background(), &entity.User{Email: "a@x.com"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrAlreadyExists)
	assert.True(t, strings.HasPrefix(err.Error(), "insert user: "))
}

func TestGetByEmail_Found(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	q := &fakeQuerier{row: fakeRow{values: []any{"u-1", "a@x.com", "A", []byte("hash"), []byte("salt"), now, now}}}
	repo := NewUserRepository(q)

	u, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "A", u.Name)
	assert.Equal(t, []byte("hash"), u.Credential.Hash)
	assert.Equal(t, []byte("salt"), u.Credential.Salt)
	assert.Equal(t, []any{"a@x.com"}, q.args)
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo := NewUserRepository(&fakeQuerier{row: fakeRow{err: pgx.ErrNoRows}})
	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetByID_InvalidUUID(t *testing.T) {
	repo := NewUserRepository(&fakeQuerier{row: fakeRow{err: &pgconn.PgError{Code: "22P02"}}})
	_, err := repo.GetByID(context.Background(), "not-a-uuid")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo := NewUserRepository(&fakeQuerier{row: fakeRow{err: context.DeadlineExceeded}})
	_, err := repo.GetByID(context.Background(), "u-1")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}
