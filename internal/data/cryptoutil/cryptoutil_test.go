package cryptoutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2Hasher_HashAndVerify(t *testing.T) {
	t.Parallel()
	h := NewArgon2Hasher(DefaultArgon2Params())

	encoded, err := h.Hash("correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	ok, err := h.Verify(encoded, "correct horse battery staple")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(encoded, "wrong password")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestArgon2Hasher_UniqueSalts(t *testing.T) {
	t.Parallel()
	h := NewArgon2Hasher(DefaultArgon2Params())

	first, err := h.Hash("12345678")
	require.NoError(t, err)
	second, err := h.Hash("12345678")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestArgon2Hasher_VerifyMalformed(t *testing.T) {
	t.Parallel()
	h := NewArgon2Hasher(DefaultArgon2Params())

	_, err := h.Verify("not-a-hash", "password")
	require.ErrorIs(t, err, ErrMalformedHash)

	_, err = h.Verify("$bcrypt$something", "password")
	require.ErrorIs(t, err, ErrMalformedHash)
}

func TestArgon2Hasher_ParamsEncodedInHash(t *testing.T) {
	t.Parallel()

	// Hashes produced with older parameters must still verify after the
	// default parameters change, since params travel with the hash.
	old := NewArgon2Hasher(Argon2Params{
		Memory: 16 * 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	encoded, err := old.Hash("12345678")
	require.NoError(t, err)

	current := NewArgon2Hasher(DefaultArgon2Params())
	ok, err := current.Verify(encoded, "12345678")
	require.NoError(t, err)
	assert.True(t, ok)
}
