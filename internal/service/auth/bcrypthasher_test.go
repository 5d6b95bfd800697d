package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func Test_BcryptHasher(t *testing.T) {
	t.Parallel()

	// Minimal cost keeps the test fast; the default cost checked separately
	h := BcryptHasher{Cost: bcrypt.MinCost}

	t.Run("hash password", func(t *testing.T) {
		got, err := h.Hash("abcdef")
		require.NoError(t, err)

		require.Len(t, got, 60, "bcrypt hash is 60 letters long")
		require.Equal(t, "$2a$", got[:4], "bcrypt hash should have prefix '$2a$'")
	})

	t.Run("default cost is 12", func(t *testing.T) {
		got, err := DefaultHasher.Hash("abcdef")
		require.NoError(t, err)

		cost, err := bcrypt.Cost([]byte(got))
		require.NoError(t, err)
		require.Equal(t, 12, cost)
	})

	t.Run("verify ok", func(t *testing.T) {
		hash, err := h.Hash("abcdef")
		require.NoError(t, err)

		require.True(t, h.Verify("abcdef", hash))
	})

	t.Run("verify wrong password", func(t *testing.T) {
		hash, err := h.Hash("abcdef")
		require.NoError(t, err)

		require.False(t, h.Verify("wrong", hash))
	})

	t.Run("verify malformed hash", func(t *testing.T) {
		require.False(t, h.Verify("abcdef", "not-a-bcrypt-hash"))
		require.False(t, h.Verify("abcdef", ""))
	})

	t.Run("long password cut to 72 bytes", func(t *testing.T) {
		long := strings.Repeat("é", 40) // 80 bytes

		hash, err := h.Hash(long)
		require.NoError(t, err, "password over 72 bytes must be hashed")

		require.True(t, h.Verify(long, hash))
		require.True(t, h.Verify(strings.Repeat("é", 36), hash), "only first 72 bytes are significant")
		require.False(t, h.Verify(strings.Repeat("é", 35), hash))
	})

	t.Run("salted", func(t *testing.T) {
		first, err := h.Hash("abcdef")
		require.NoError(t, err)
		second, err := h.Hash("abcdef")
		require.NoError(t, err)

		require.NotEqual(t, first, second, "same password must produce different hashes")
	})
}
