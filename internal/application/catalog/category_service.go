package catalog

import (
	"context"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// CategoryService handles category management operations
type CategoryService struct {
	categoryRepo catalog.CategoryRepository
	productRepo  catalog.ProductRepository
}

// NewCategoryService creates a new CategoryService
func NewCategoryService(
	categoryRepo catalog.CategoryRepository,
	productRepo catalog.ProductRepository,
) *CategoryService {
	return &CategoryService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
	}
}

// Create creates a new category
func (s *CategoryService) Create(ctx context.Context, tenantID uuid.UUID, req CreateCategoryRequest) (*CategoryResponse, error) {
	slug := catalog.Slugify(req.Name)
	exists, err := s.categoryRepo.ExistsBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Category already exists")
	}

	category, err := catalog.NewCategory(tenantID, req.Name)
	if err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Update renames a category; the slug is re-derived from the new name
func (s *CategoryService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateCategoryRequest) (*CategoryResponse, error) {
	category, err := s.findForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	newSlug := catalog.Slugify(req.Name)
	if newSlug != category.Slug {
		exists, err := s.categoryRepo.ExistsBySlug(ctx, tenantID, newSlug)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Category already exists")
		}
	}

	if err := category.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, err
	}

	resp := ToCategoryResponse(category)
	return &resp, nil
}

// Delete removes a category. Categories with products cannot be deleted.
func (s *CategoryService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	category, err := s.findForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}

	count, err := s.productRepo.CountByCategory(ctx, category.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("INVALID_STATE", "Category still has products")
	}

	return s.categoryRepo.Delete(ctx, category.ID)
}

// List returns all categories for the tenant
func (s *CategoryService) List(ctx context.Context, tenantID uuid.UUID) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.FindAll(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	responses := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		responses = append(responses, ToCategoryResponse(c))
	}
	return responses, nil
}

// GetBySlug retrieves a category by its slug
func (s *CategoryService) GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*CategoryResponse, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	resp := ToCategoryResponse(category)
	return &resp, nil
}

func (s *CategoryService) findForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Category, error) {
	category, err := s.categoryRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if category.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return category, nil
}
