package handlers

import (
	"context"
	"net/http"

	"github.com/farellandr/tixflow/internal/helpers"
	"github.com/farellandr/tixflow/internal/models"
	"github.com/farellandr/tixflow/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthService interface {
	Register(ctx context.Context, req services.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.LoginResult, error)
	Profile(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type AuthHandler struct {
	auth AuthService
}

func NewAuthHandler(auth AuthService) *AuthHandler {
	return &AuthHandler{auth: auth}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, invalidInput)
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully.",
		"user_id": user.ID,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, invalidInput)
		return
	}

	result, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": result.Token,
		"user": gin.H{
			"id":    result.User.ID,
			"email": result.User.Email,
			"role":  result.User.Role.Name,
		},
	})
}

func (h *AuthHandler) Profile(c *gin.Context) {
	caller, ok := requester(c)
	if !ok {
		return
	}

	user, err := h.auth.Profile(c.Request.Context(), caller.ID)
	if err != nil {
		helpers.RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
