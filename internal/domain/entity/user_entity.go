package entity

import (
	"time"
)

// HashedCredential is the salted one-way derivative of a password.
// It is never logged and never leaves the service.
type HashedCredential struct {
	Hash []byte
	Salt []byte
}

// User is the aggregate root for the credential domain.
// Records are created once at registration and not mutated afterwards.
type User struct {
	ID         string
	Email      string
	Name       string
	Credential HashedCredential
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
