package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	identityapp "github.com/storefront/backend/internal/application/identity"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// AuthHandler serves registration, login and profile endpoints
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid registration payload")
		return
	}

	user, err := h.authService.Register(c.Request.Context(), middleware.ResolvedTenant(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, user)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid login payload")
		return
	}

	result, err := h.authService.Login(c.Request.Context(), middleware.ResolvedTenant(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.authService.Logout(c.Request.Context(), middleware.GetClaims(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Logged out"})
}

// UserAuth handles GET /api/v1/auth/user-auth. The route guard on the
// client matches this body byte for byte.
func (h *AuthHandler) UserAuth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// AdminAuth handles GET /api/v1/auth/admin-auth, same contract as UserAuth
func (h *AuthHandler) AdminAuth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// CurrentUser handles GET /api/v1/auth/me
func (h *AuthHandler) CurrentUser(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	user, err := h.authService.CurrentUser(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// UpdateProfile handles PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	var req identityapp.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid profile payload")
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, user)
}

// ForgotPassword handles POST /api/v1/auth/forgot-password
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req identityapp.ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid reset payload")
		return
	}

	if err := h.authService.ForgotPassword(c.Request.Context(), middleware.ResolvedTenant(c), req); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"message": "Password has been reset"})
}
