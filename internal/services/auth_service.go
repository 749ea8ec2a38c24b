package services

import (
	"crypto/subtle"
	"errors"
	"time"

	"github.com/charmbracelet/log"
	"github.com/songhub/backend/internal/config"
	"github.com/songhub/backend/pkg/crypto"
	jwtpkg "github.com/songhub/backend/pkg/jwt"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService authenticates the single configured administrator.
type AuthService struct {
	cfg          *config.Config
	username     string
	passwordHash string
	log          *log.Logger
}

// NewAuthService prefers ADMIN_PASSWORD_HASH; a plain ADMIN_PASSWORD is hashed once here.
func NewAuthService(cfg *config.Config, l *log.Logger) (*AuthService, error) {
	hash := cfg.AdminPasswordHash
	if hash == "" && cfg.AdminPassword != "" {
		var err error
		hash, err = crypto.HashPassword(cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			return nil, err
		}
	}
	if hash == "" {
		l.Warn("no admin password configured, admin login disabled")
	}
	return &AuthService{cfg: cfg, username: cfg.AdminUsername, passwordHash: hash, log: l}, nil
}

// Login checks the credentials and returns an access token with its expiry.
func (s *AuthService) Login(username, password string) (string, time.Time, error) {
	if s.passwordHash == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	passOK := crypto.CheckPassword(password, s.passwordHash)
	if !userOK || !passOK {
		s.log.Warn("admin login rejected", "username", username)
		return "", time.Time{}, ErrInvalidCredentials
	}

	token, err := jwtpkg.GenerateToken(s.username, jwtpkg.AccessToken, s.cfg.JWTSecret, s.cfg.JWTAccessTokenDuration)
	if err != nil {
		return "", time.Time{}, err
	}
	s.log.Info("admin logged in", "username", username)
	return token, time.Now().Add(s.cfg.JWTAccessTokenDuration), nil
}

// Authenticate validates an access token and returns the admin username.
func (s *AuthService) Authenticate(token string) (string, error) {
	claims, err := jwtpkg.ValidateTyped(token, s.cfg.JWTSecret, jwtpkg.AccessToken)
	if err != nil {
		return "", err
	}
	if claims.Subject != s.username {
		return "", jwtpkg.ErrInvalidToken
	}
	return claims.Subject, nil
}
