package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseAggregateRoot adds an optimistic-lock version to BaseEntity.
// Mutators call Touch after changing state; a save that observes a
// different version than it read has lost the race.
type BaseAggregateRoot struct {
	BaseEntity
	Version int `gorm:"not null;default:1"`
}

// NewBaseAggregateRoot creates an aggregate root at version 1
func NewBaseAggregateRoot() BaseAggregateRoot {
	return BaseAggregateRoot{
		BaseEntity: NewBaseEntity(),
		Version:    1,
	}
}

// GetVersion returns the optimistic-lock version
func (a *BaseAggregateRoot) GetVersion() int {
	return a.Version
}

// IncrementVersion bumps the version without refreshing UpdatedAt.
// Most mutators want Touch instead.
func (a *BaseAggregateRoot) IncrementVersion() {
	a.Version++
}

// Touch stamps the modification time and bumps the version in one step
func (a *BaseAggregateRoot) Touch() {
	a.UpdatedAt = time.Now()
	a.Version++
}

// TenantAggregateRoot scopes an aggregate to one storefront tenant.
// Repositories filter on TenantID for every query; an aggregate never
// moves between tenants.
type TenantAggregateRoot struct {
	BaseAggregateRoot
	TenantID uuid.UUID `gorm:"type:uuid;not null;index"`
}

// NewTenantAggregateRoot creates an aggregate root owned by tenantID
func NewTenantAggregateRoot(tenantID uuid.UUID) TenantAggregateRoot {
	return TenantAggregateRoot{
		BaseAggregateRoot: NewBaseAggregateRoot(),
		TenantID:          tenantID,
	}
}
