package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/your-org/firewatch/internal/models"
	"github.com/your-org/firewatch/internal/users"
	"github.com/your-org/firewatch/pkg/dto"
)

type AuthHandler struct {
	users *users.Manager
}

func NewAuthHandler(mgr *users.Manager) *AuthHandler {
	return &AuthHandler{users: mgr}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.Login(c.Request.Context(), req.UserID, req.DisplayName, models.Role(req.Role))
	if err != nil {
		switch {
		case errors.Is(err, users.ErrMissingField), errors.Is(err, users.ErrInvalidRole):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not save"})
		}
		return
	}

	c.JSON(http.StatusOK, userToResponse(user))
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.users.Logout(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not save"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "logged out"})
}

func (h *AuthHandler) Me(c *gin.Context) {
	user, ok, err := h.users.Current(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not logged in"})
		return
	}
	c.JSON(http.StatusOK, userToResponse(user))
}

func userToResponse(u models.User) dto.UserResponse {
	return dto.UserResponse{
		UserID:          u.UserID,
		DisplayName:     u.DisplayName,
		Role:            string(u.Role),
		AuthenticatedAt: u.AuthenticatedAt.Format(time.RFC3339),
	}
}
