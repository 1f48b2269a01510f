package helpers

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/elysian/registration-service/internal/domain/entity"
)

// Argon2id defaults (OWASP recommended minimum).
const (
	DefaultHashTime     uint32 = 3
	DefaultHashMemoryKB uint32 = 64 * 1024
	DefaultHashThreads  uint8  = 4

	hashKeyLen  = 32
	hashSaltLen = 16
)

// PasswordHasher derives and checks argon2id credentials.
// The zero value is not usable; construct with NewPasswordHasher.
type PasswordHasher struct {
	Time     uint32
	MemoryKB uint32
	Threads  uint8
}

// NewPasswordHasher returns a hasher with the given cost parameters.
// Zero values fall back to the defaults.
func NewPasswordHasher(time, memoryKB uint32, threads uint8) *PasswordHasher {
	h := &PasswordHasher{Time: time, MemoryKB: memoryKB, Threads: threads}
	if h.Time == 0 {
		h.Time = DefaultHashTime
	}
	if h.MemoryKB == 0 {
		h.MemoryKB = DefaultHashMemoryKB
	}
	if h.Threads == 0 {
		h.Threads = DefaultHashThreads
	}
	return h
}

// Hash generates a fresh random salt and derives the credential for plain.
func (h *PasswordHasher) Hash(plain string) (entity.HashedCredential, error) {
	salt := make([]byte, hashSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return entity.HashedCredential{}, fmt.Errorf("generate salt: %w", err)
	}
	return entity.HashedCredential{
		Hash: h.derive(plain, salt, hashKeyLen),
		Salt: salt,
	}, nil
}

// Verify recomputes the hash with the stored salt and compares in constant time.
// A malformed stored credential never matches.
func (h *PasswordHasher) Verify(plain string, stored entity.HashedCredential) bool {
	if len(stored.Salt) < hashSaltLen || len(stored.Hash) == 0 {
		return false
	}
	computed := h.derive(plain, stored.Salt, uint32(len(stored.Hash)))
	return subtle.ConstantTimeCompare(computed, stored.Hash) == 1
}

func (h *PasswordHasher) derive(plain string, salt []byte, keyLen uint32) []byte {
	return argon2.IDKey([]byte(plain), salt, h.Time, h.MemoryKB, h.Threads, keyLen)
}
