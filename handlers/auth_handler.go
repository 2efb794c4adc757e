package handlers

import (
	"errors"
	"net/http"

	"voiceoflaw-backend/service"

	"github.com/gin-gonic/gin"
)

// AuthHandler handles HTTP requests for registration, login and profiles
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest represents the request body for registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.authService.Register(c.Request.Context(), service.RegisterRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			respondError(c, http.StatusConflict, "EMAIL_TAKEN", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "REGISTER_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data": gin.H{
			"user":  result.User,
			"token": result.Token,
		},
	})
}

// LoginRequest represents the request body for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), service.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "LOGIN_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"user":  result.User,
			"token": result.Token,
		},
	})
}

// Profile handles GET /api/auth/profile
func (h *AuthHandler) Profile(c *gin.Context) {
	identity := identityFrom(c)

	user, err := h.authService.GetProfile(c.Request.Context(), identity.UserID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "PROFILE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// CompleteProfileRequest represents the request body for onboarding
type CompleteProfileRequest struct {
	FullName         string `json:"full_name"`
	PhoneNumber      string `json:"phone_number"`
	Province         string `json:"province"`
	City             string `json:"city"`
	CourtName        string `json:"court_name"`
	BarCouncilNumber string `json:"bar_council_number"`
	ProfilePicture   string `json:"profile_picture"`
}

// CompleteProfile handles PUT /api/auth/complete-profile
func (h *AuthHandler) CompleteProfile(c *gin.Context) {
	identity := identityFrom(c)

	var req CompleteProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	user, err := h.authService.CompleteProfile(c.Request.Context(), service.CompleteProfileRequest{
		UserID:           identity.UserID,
		FullName:         req.FullName,
		PhoneNumber:      req.PhoneNumber,
		Province:         req.Province,
		City:             req.City,
		CourtName:        req.CourtName,
		BarCouncilNumber: req.BarCouncilNumber,
		ProfilePicture:   req.ProfilePicture,
	})
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			respondError(c, http.StatusNotFound, "USER_NOT_FOUND", err.Error())
			return
		}
		respondError(c, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
