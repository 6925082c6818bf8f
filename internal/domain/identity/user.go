package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role is the integer-coded authorization level of a user.
// There are exactly two roles; enforcement always re-reads the
// persisted record, never a client-supplied value.
type Role int

const (
	RoleBuyer Role = 0 // regular storefront user
	RoleAdmin Role = 1 // administrator
)

// IsValid reports whether the role is one of the defined codes
func (r Role) IsValid() bool {
	return r == RoleBuyer || r == RoleAdmin
}

// String returns a human-readable role name
func (r Role) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "buyer"
}

// Password cost for bcrypt
const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents a storefront account.
// It is the aggregate root for identity operations.
type User struct {
	shared.TenantAggregateRoot
	Name         string
	Email        string
	Phone        string
	Address      string
	PasswordHash string
	AnswerHash   string // security answer used by the password reset flow
	Role         Role
	LastLoginAt  *time.Time
}

// NewUser creates a new buyer account with required fields
func NewUser(tenantID uuid.UUID, name, email, password, answer string) (*User, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(password); err != nil {
		return nil, err
	}
	if strings.TrimSpace(answer) == "" {
		return nil, shared.NewDomainError("INVALID_ANSWER", "Security answer is required")
	}

	passwordHash, err := hashSecret(password)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	answerHash, err := hashSecret(normalizeAnswer(answer))
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash security answer")
	}

	return &User{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Email:               strings.ToLower(strings.TrimSpace(email)),
		PasswordHash:        passwordHash,
		AnswerHash:          answerHash,
		Role:                RoleBuyer,
	}, nil
}

// IsAdmin reports whether the user holds the administrator role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Promote grants the administrator role
func (u *User) Promote() {
	u.Role = RoleAdmin
	u.Touch()
}

// Demote revokes the administrator role
func (u *User) Demote() {
	u.Role = RoleBuyer
	u.Touch()
}

// SetName sets the user's display name
func (u *User) SetName(name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	u.Name = strings.TrimSpace(name)
	u.Touch()
	return nil
}

// SetPhone sets the user's phone number
func (u *User) SetPhone(phone string) error {
	if phone != "" && len(phone) > 50 {
		return shared.NewDomainError("INVALID_PHONE", "Phone cannot exceed 50 characters")
	}
	u.Phone = strings.TrimSpace(phone)
	u.Touch()
	return nil
}

// SetAddress sets the user's shipping address
func (u *User) SetAddress(address string) error {
	if address != "" && len(address) > 500 {
		return shared.NewDomainError("INVALID_ADDRESS", "Address cannot exceed 500 characters")
	}
	u.Address = strings.TrimSpace(address)
	u.Touch()
	return nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// VerifyAnswer checks a plaintext security answer against the stored hash
func (u *User) VerifyAnswer(answer string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.AnswerHash), []byte(normalizeAnswer(answer))) == nil
}

// SetPassword sets a new password without checking the old one
// (used by the password reset flow after the answer is verified)
func (u *User) SetPassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	passwordHash, err := hashSecret(newPassword)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = passwordHash
	u.Touch()
	return nil
}

// ChangePassword changes the password after verifying the current one
func (u *User) ChangePassword(oldPassword, newPassword string) error {
	if !u.VerifyPassword(oldPassword) {
		return shared.NewDomainError("INVALID_PASSWORD", "Current password is incorrect")
	}
	return u.SetPassword(newPassword)
}

// RecordLogin stores the timestamp of a successful login
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Name cannot exceed 200 characters")
	}
	return nil
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if len(email) > 200 || !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < 6 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 6 characters")
	}
	if len(password) > 128 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password cannot exceed 128 characters")
	}
	return nil
}

func normalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

func hashSecret(secret string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
