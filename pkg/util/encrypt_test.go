package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArgon2RoundTrip(t *testing.T) {
	password := "my_secure_password"

	hash, err := CreateArgon2Hash(password)
	require.NoError(t, err)
	assert.True(t, IsArgon2Hash(hash), "encoded hash should carry the argon2id prefix")

	ok, err := ComparePasswordAndHash(password, hash)
	require.NoError(t, err)
	assert.True(t, ok, "password should match the hash")

	ok, err = ComparePasswordAndHash("wrong_password", hash)
	require.NoError(t, err)
	assert.False(t, ok, "wrong password should not match the hash")
}

func TestComparePasswordAndHashInvalidFormat(t *testing.T) {
	_, err := ComparePasswordAndHash("password", "not-a-hash")
	assert.Error(t, err)
}
