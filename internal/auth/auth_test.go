package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cheap keeps tests fast; production uses DefaultParams.
var cheap = Params{Memory: 1024, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32}

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPasswordWith("s3cret!", cheap)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

	ok, err := VerifyPassword("s3cret!", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = VerifyPassword("wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPassword_SaltsDiffer(t *testing.T) {
	a, err := HashPasswordWith("same", cheap)
	require.NoError(t, err)
	b, err := HashPasswordWith("same", cheap)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHashPassword_DefaultParams(t *testing.T) {
	hash, err := HashPassword("pw")
	require.NoError(t, err)
	assert.Contains(t, hash, "m=65536,t=3,p=2")
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	for _, encoded := range []string{
		"",
		"plaintext",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=1,t=1,p=1$c2FsdA$aGFzaA",
	} {
		_, err := VerifyPassword("pw", encoded)
		assert.ErrorIs(t, err, ErrInvalidHash, encoded)
	}

	_, err := VerifyPassword("pw", "$argon2id$v=19$m=1024,t=1,p=1$!!!$aGFzaA")
	assert.Error(t, err)
}

func TestGenerateToken(t *testing.T) {
	a, err := GenerateToken()
	require.NoError(t, err)
	b, err := GenerateToken()
	require.NoError(t, err)

	assert.Len(t, a, 43)
	assert.NotEqual(t, a, b)
	assert.Equal(t, HashToken(a), HashToken(a))
	assert.NotEqual(t, a, HashToken(a))
}

func TestGenerateResetToken(t *testing.T) {
	tok, err := GenerateResetToken()
	require.NoError(t, err)
	assert.Len(t, tok, 32)
	assert.Regexp(t, "^[0-9a-f]{32}$", tok)
}
