package helpers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword_RoundTrip(t *testing.T) {
	hash, err := HashPasswordCost("secret5", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, "secret5", hash)

	assert.True(t, CompareHashAndPassword(hash, "secret5"))
	assert.False(t, CompareHashAndPassword(hash, "Secret5"))
	assert.False(t, CompareHashAndPassword(hash, ""))
}

func TestHashPassword_DistinctSalts(t *testing.T) {
	h1, err := HashPasswordCost("secret5", bcrypt.MinCost)
	require.NoError(t, err)
	h2, err := HashPasswordCost("secret5", bcrypt.MinCost)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestHashPassword_OversizedInput(t *testing.T) {
	// bcrypt only keys on the first 72 bytes, and GenerateFromPassword
	// rejects longer input outright. Hashing must not fail for long
	// passwords, and logging in with the full string must still work.
	long := strings.Repeat("p", 100)

	hash, err := HashPasswordCost(long, bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CompareHashAndPassword(hash, long))
	assert.True(t, CompareHashAndPassword(hash, long[:72]))
	assert.False(t, CompareHashAndPassword(hash, long[:71]))
}

func TestHashPasswordCost_ClampsRange(t *testing.T) {
	// out-of-range costs fall back to the default instead of failing
	hash, err := HashPasswordCost("secret5", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
