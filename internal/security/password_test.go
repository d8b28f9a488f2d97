package security

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasherHashProducesFreshSalt(t *testing.T) {
	t.Parallel()

	h := NewHasher()

	hash1, salt1, err := h.Hash("Secr3t!")
	require.NoError(t, err)
	hash2, salt2, err := h.Hash("Secr3t!")
	require.NoError(t, err)

	require.Len(t, hash1, HashSize)
	require.Len(t, salt1, SaltSize)
	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)

	assert.True(t, h.Verify("Secr3t!", hash1, salt1))
	assert.True(t, h.Verify("Secr3t!", hash2, salt2))
}

func TestHasherVerify(t *testing.T) {
	t.Parallel()

	h := NewHasher()
	hash, salt, err := h.Hash("Secr3t!")
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		assert.False(t, h.Verify("wrong", hash, salt))
		assert.False(t, h.Verify("", hash, salt))
	})

	t.Run("salt from another credential", func(t *testing.T) {
		_, otherSalt, err := h.Hash("Secr3t!")
		require.NoError(t, err)
		assert.False(t, h.Verify("Secr3t!", hash, otherSalt))
	})

	t.Run("truncated stored hash", func(t *testing.T) {
		assert.False(t, h.Verify("Secr3t!", hash[:HashSize-1], salt))
		assert.False(t, h.Verify("Secr3t!", nil, salt))
	})

	t.Run("single flipped byte at either end", func(t *testing.T) {
		first := bytes.Clone(hash)
		first[0] ^= 0xFF
		last := bytes.Clone(hash)
		last[HashSize-1] ^= 0xFF

		assert.False(t, h.Verify("Secr3t!", first, salt))
		assert.False(t, h.Verify("Secr3t!", last, salt))
	})
}

func TestHasherMatchesKnownVector(t *testing.T) {
	t.Parallel()

	// Derivation is deterministic for a fixed salt, independent of the hasher instance.
	salt := bytes.Repeat([]byte{0x01}, SaltSize)
	a := derive("password", salt)
	b := derive("password", salt)

	require.Equal(t, a, b)
	require.True(t, NewHasher().Verify("password", a, salt))
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) {
	return 0, errors.New("entropy exhausted")
}

func TestHasherHashRandomFailure(t *testing.T) {
	t.Parallel()

	h := &Hasher{random: failingReader{}}
	_, _, err := h.Hash("Secr3t!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "entropy exhausted")
}
