package models

import (
	"time"

	"github.com/storefront/backend/internal/domain/identity"
)

// UserModel is the persistence model for the User domain entity.
type UserModel struct {
	TenantAggregateModel
	Name         string `gorm:"type:varchar(100);not null"`
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex:idx_user_tenant_email,priority:2"`
	Phone        string `gorm:"type:varchar(50)"`
	Address      string `gorm:"type:varchar(500)"`
	PasswordHash string `gorm:"type:varchar(255);not null"`
	AnswerHash   string `gorm:"type:varchar(255);not null"`
	Role         int    `gorm:"not null;default:0;index"`
	LastLoginAt  *time.Time
}

// TableName returns the table name for GORM
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts the persistence model to a domain User entity
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		TenantAggregateRoot: m.toTenantAggregateRoot(),
		Name:                m.Name,
		Email:               m.Email,
		Phone:               m.Phone,
		Address:             m.Address,
		PasswordHash:        m.PasswordHash,
		AnswerHash:          m.AnswerHash,
		Role:                identity.Role(m.Role),
		LastLoginAt:         m.LastLoginAt,
	}
}

// FromDomain populates the persistence model from a domain User entity
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainTenantAggregateRoot(u.TenantAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.Phone = u.Phone
	m.Address = u.Address
	m.PasswordHash = u.PasswordHash
	m.AnswerHash = u.AnswerHash
	m.Role = int(u.Role)
	m.LastLoginAt = u.LastLoginAt
}

// UserModelFromDomain creates a new persistence model from a domain User entity
func UserModelFromDomain(u *identity.User) *UserModel {
	m := &UserModel{}
	m.FromDomain(u)
	return m
}
