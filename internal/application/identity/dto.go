package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/identity"
)

// RegisterRequest represents a request to create a new account
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=100"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=6,max=72"`
	Phone    string `json:"phone" binding:"max=50"`
	Address  string `json:"address" binding:"max=500"`
	Answer   string `json:"answer" binding:"required,min=1,max=200"`
}

// LoginRequest represents a login attempt
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UpdateProfileRequest represents a profile update; nil fields are left unchanged
type UpdateProfileRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=100"`
	Password *string `json:"password" binding:"omitempty,min=6,max=72"`
	Phone    *string `json:"phone" binding:"omitempty,max=50"`
	Address  *string `json:"address" binding:"omitempty,max=500"`
}

// ForgotPasswordRequest resets a password using the security answer
type ForgotPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Answer      string `json:"answer" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=72"`
}

// UserInfo represents an account in API responses
type UserInfo struct {
	ID          uuid.UUID  `json:"id"`
	Name        string     `json:"name"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	Address     string     `json:"address"`
	Role        int        `json:"role"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// LoginResult contains the authenticated user and the issued token
type LoginResult struct {
	User      UserInfo  `json:"user"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ToUserInfo converts a domain User to UserInfo
func ToUserInfo(u *identity.User) UserInfo {
	return UserInfo{
		ID:          u.ID,
		Name:        u.Name,
		Email:       u.Email,
		Phone:       u.Phone,
		Address:     u.Address,
		Role:        int(u.Role),
		LastLoginAt: u.LastLoginAt,
		CreatedAt:   u.CreatedAt,
	}
}
