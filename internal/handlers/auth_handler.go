package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/songhub/backend/internal/services"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Login exchanges the admin credentials for a bearer token
// POST /auth/login
// Body: {"username": "...", "password": "..."}
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username" form:"username" binding:"required"`
		Password string `json:"password" form:"password" binding:"required"`
	}

	if err := c.ShouldBind(&req); err != nil {
		respondError(c, http.StatusBadRequest, "Username and password are required.", nil)
		return
	}

	token, expiresAt, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "Invalid credentials.", nil)
			return
		}
		respondError(c, http.StatusInternalServerError, "Login failed.", nil)
		return
	}

	respondSuccess(c, http.StatusOK, "Logged in.", gin.H{
		"access_token": token,
		"token_type":   "Bearer",
		"expires_at":   expiresAt,
	})
}
