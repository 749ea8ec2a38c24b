package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPassword("s3cret!", bcrypt.MinCost)
	require.NoError(t, err)

	assert.True(t, CheckPassword("s3cret!", hash))
	assert.False(t, CheckPassword("wrong", hash))
	assert.False(t, CheckPassword("s3cret!", "not-a-hash"))
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("pw", 99)
	require.NoError(t, err)

	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
