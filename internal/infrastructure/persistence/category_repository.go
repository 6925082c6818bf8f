package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// Create creates a new category
func (r *GormCategoryRepository) Create(ctx context.Context, category *catalog.Category) error {
	return r.db.WithContext(ctx).Create(category).Error
}

// Update updates an existing category
func (r *GormCategoryRepository) Update(ctx context.Context, category *catalog.Category) error {
	result := r.db.WithContext(ctx).Save(category)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Delete deletes a category by ID
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&catalog.Category{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// FindByID finds a category by ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// FindBySlug finds a category by slug within the tenant
func (r *GormCategoryRepository) FindBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*catalog.Category, error) {
	var category catalog.Category
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &category, nil
}

// ExistsBySlug checks if a slug is already taken within the tenant
func (r *GormCategoryRepository) ExistsBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&catalog.Category{}).
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		Count(&count).Error
	return count > 0, err
}

// FindAll returns all categories for the tenant ordered by name
func (r *GormCategoryRepository) FindAll(ctx context.Context, tenantID uuid.UUID) ([]*catalog.Category, error) {
	var categories []*catalog.Category
	err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Find(&categories).Error
	return categories, err
}

var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
