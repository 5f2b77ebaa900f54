package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chaintab/chaintab/internal/auth"
	"github.com/chaintab/chaintab/internal/models"
)

// AuthHandlers serves registration and login.
type AuthHandlers struct {
	authenticator auth.Authenticator
	jwt           *auth.JWTManager
}

// NewAuthHandlers creates the auth handlers.
func NewAuthHandlers(authenticator auth.Authenticator, jwt *auth.JWTManager) AuthHandlers {
	return AuthHandlers{authenticator: authenticator, jwt: jwt}
}

// Register handles POST /v1/auth/register.
func (h AuthHandlers) Register(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		DisplayName string `json:"display_name" binding:"required"`
		Password    string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authenticator.Register(c.Request.Context(), req.Email, req.DisplayName, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrEmailExists):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, auth.ErrWeakPassword):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "registration failed"})
		}
		return
	}

	h.issueToken(c, user)
}

// Login handles POST /v1/auth/login.
func (h AuthHandlers) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authenticator.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": auth.ErrInvalidCredentials.Error()})
		return
	}

	h.issueToken(c, user)
}

func (h AuthHandlers) issueToken(c *gin.Context, user *models.User) {
	token, err := h.jwt.Generate(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to issue token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"user": gin.H{
			"id":           user.ID,
			"email":        user.Email,
			"display_name": user.DisplayName,
		},
	})
}
