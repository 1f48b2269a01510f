package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/elysian/registration-service/internal/domain/entity"
)

// cheap parameters keep the suite fast; the algorithm is the same
func testHasher() *PasswordHasher {
	return NewPasswordHasher(1, 8*1024, 1)
}

func TestPasswordHasher_Defaults(t *testing.T) {
	h := NewPasswordHasher(0, 0, 0)
	assert.Equal(t, DefaultHashTime, h.Time)
	assert.Equal(t, DefaultHashMemoryKB, h.MemoryKB)
	assert.Equal(t, DefaultHashThreads, h.Threads)
}

func TestPasswordHasher_HashIsSalted(t *testing.T) {
	h := testHasher()

	first, err := h.Hash("Secret1!")
	require.NoError(t, err)
	second, err := h.Hash("Secret1!")
	require.NoError(t, err)

	assert.Len(t, first.Salt, 16)
	assert.Len(t, first.Hash, 32)
	assert.NotEqual(t, first.Salt, second.Salt)
	assert.NotEqual(t, first.Hash, second.Hash)
	assert.NotContains(t, string(first.Hash), "Secret1!")

	assert.True(t, h.Verify("Secret1!", first))
	assert.True(t, h.Verify("Secret1!", second))
}

func TestPasswordHasher_VerifyRejectsWrongPassword(t *testing.T) {
	h := testHasher()
	cred, err := h.Hash("Secret1!")
	require.NoError(t, err)

	assert.False(t, h.Verify("WrongPass", cred))
	assert.False(t, h.Verify("", cred))
	assert.False(t, h.Verify("secret1!", cred))
}

func TestPasswordHasher_VerifyMalformedCredential(t *testing.T) {
	h := testHasher()
	good, err := h.Hash("Secret1!")
	require.NoError(t, err)

	tests := []struct {
		name string
		cred entity.HashedCredential
	}{
		{"empty", entity.HashedCredential{}},
		{"missing salt", entity.HashedCredential{Hash: good.Hash}},
		{"missing hash", entity.HashedCredential{Salt: good.Salt}},
		{"short salt", entity.HashedCredential{Hash: good.Hash, Salt: good.Salt[:4]}},
		{"truncated hash", entity.HashedCredential{Hash: good.Hash[:8], Salt: good.Salt}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				assert.False(t, h.Verify("Secret1!", tt.cred))
			})
		})
	}
}

func TestPasswordHasher_ParametersMustMatch(t *testing.T) {
	cred, err := testHasher().Hash("Secret1!")
	require.NoError(t, err)

	other := NewPasswordHasher(2, 8*1024, 1)
	assert.False(t, other.Verify("Secret1!", cred))
}
