package services

import (
	"testing"
	"time"

	"github.com/songhub/backend/internal/pkg/logger"
	"github.com/songhub/backend/pkg/crypto"
	jwtpkg "github.com/songhub/backend/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService(t *testing.T) {
	cfg := testConfig()
	cfg.AdminPassword = "hunter2"

	svc, err := NewAuthService(cfg, logger.Discard())
	require.NoError(t, err)

	t.Run("login and authenticate", func(t *testing.T) {
		token, exp, err := svc.Login("admin", "hunter2")
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(time.Hour), exp, time.Minute)

		user, err := svc.Authenticate(token)
		require.NoError(t, err)
		assert.Equal(t, "admin", user)
	})

	t.Run("wrong credentials", func(t *testing.T) {
		_, _, err := svc.Login("admin", "nope")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, _, err = svc.Login("root", "hunter2")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("token for someone else", func(t *testing.T) {
		token, err := jwtpkg.GenerateToken("mallory", jwtpkg.AccessToken, cfg.JWTSecret, time.Hour)
		require.NoError(t, err)
		_, err = svc.Authenticate(token)
		assert.Error(t, err)
	})

	t.Run("precomputed hash", func(t *testing.T) {
		hash, err := crypto.HashPassword("s3cret", 4)
		require.NoError(t, err)
		c := testConfig()
		c.AdminPasswordHash = hash

		svc, err := NewAuthService(c, logger.Discard())
		require.NoError(t, err)
		_, _, err = svc.Login("admin", "s3cret")
		assert.NoError(t, err)
	})

	t.Run("no password configured", func(t *testing.T) {
		svc, err := NewAuthService(testConfig(), logger.Discard())
		require.NoError(t, err)
		_, _, err = svc.Login("admin", "")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}
