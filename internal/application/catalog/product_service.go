package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ProductService handles product management and storefront browsing
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
) *ProductService {
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
	}
}

// Create creates a new product under an existing category
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, req CreateProductRequest) (*ProductResponse, error) {
	if err := s.checkCategory(ctx, tenantID, req.CategoryID); err != nil {
		return nil, err
	}

	slug := catalog.Slugify(req.Name)
	if _, err := s.productRepo.FindBySlug(ctx, tenantID, slug); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	product, err := catalog.NewProduct(tenantID, req.CategoryID, req.Name, req.Description,
		valueobject.NewMoneyUSD(req.Price), req.Quantity)
	if err != nil {
		return nil, err
	}
	if req.PhotoURL != "" {
		if err := product.SetPhotoURL(req.PhotoURL); err != nil {
			return nil, err
		}
	}
	product.SetShipping(req.Shipping)

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Update replaces a product's attributes
func (s *ProductService) Update(ctx context.Context, tenantID, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.findForTenant(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}
	if err := s.checkCategory(ctx, tenantID, req.CategoryID); err != nil {
		return nil, err
	}

	newSlug := catalog.Slugify(req.Name)
	if newSlug != product.Slug {
		if _, err := s.productRepo.FindBySlug(ctx, tenantID, newSlug); err == nil {
			return nil, shared.NewDomainError("ALREADY_EXISTS", "Product already exists")
		} else if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	if err := product.Update(req.Name, req.Description,
		valueobject.NewMoneyUSD(req.Price), req.CategoryID, req.Quantity); err != nil {
		return nil, err
	}
	if err := product.SetPhotoURL(req.PhotoURL); err != nil {
		return nil, err
	}
	product.SetShipping(req.Shipping)

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	resp := ToProductResponse(product)
	return &resp, nil
}

// Delete removes a product
func (s *ProductService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	product, err := s.findForTenant(ctx, tenantID, id)
	if err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, product.ID)
}

// List returns a page of products matching the filter
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ProductListFilter) (*ProductListResult, error) {
	domainFilter := catalog.NewProductFilter()
	domainFilter.Keyword = filter.Keyword
	domainFilter.PriceMin = filter.PriceMin
	domainFilter.PriceMax = filter.PriceMax
	if filter.CategoryID != nil {
		domainFilter.CategoryIDs = []uuid.UUID{*filter.CategoryID}
	}
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}

	products, total, err := s.productRepo.FindAll(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, err
	}

	return &ProductListResult{
		Products: toProductResponses(products),
		Total:    total,
		Page:     domainFilter.Page,
		PageSize: domainFilter.Limit(),
	}, nil
}

// GetBySlug retrieves a product by its slug
func (s *ProductService) GetBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (*ProductResponse, error) {
	product, err := s.productRepo.FindBySlug(ctx, tenantID, slug)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// Related returns products sharing a category with the given product
func (s *ProductService) Related(ctx context.Context, tenantID, productID, categoryID uuid.UUID) ([]ProductResponse, error) {
	products, err := s.productRepo.FindRelated(ctx, tenantID, productID, categoryID, 0)
	if err != nil {
		return nil, err
	}
	return toProductResponses(products), nil
}

// ListByCategory returns products belonging to the category with the given slug
func (s *ProductService) ListByCategory(ctx context.Context, tenantID uuid.UUID, categorySlug string, page, pageSize int) (*CategoryProductsResult, error) {
	category, err := s.categoryRepo.FindBySlug(ctx, tenantID, categorySlug)
	if err != nil {
		return nil, err
	}

	filter := catalog.NewProductFilter()
	filter.CategoryIDs = []uuid.UUID{category.ID}
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}

	products, total, err := s.productRepo.FindAll(ctx, tenantID, filter)
	if err != nil {
		return nil, err
	}

	return &CategoryProductsResult{
		Category: ToCategoryResponse(category),
		Products: toProductResponses(products),
		Total:    total,
	}, nil
}

// CategoryProductsResult bundles a category with its products
type CategoryProductsResult struct {
	Category CategoryResponse  `json:"category"`
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
}

func (s *ProductService) findForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product.TenantID != tenantID {
		return nil, shared.ErrNotFound
	}
	return product, nil
}

func (s *ProductService) checkCategory(ctx context.Context, tenantID, categoryID uuid.UUID) error {
	category, err := s.categoryRepo.FindByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_INPUT", "Category not found")
		}
		return err
	}
	if category.TenantID != tenantID {
		return shared.NewDomainError("INVALID_INPUT", "Category not found")
	}
	return nil
}

func toProductResponses(products []*catalog.Product) []ProductResponse {
	responses := make([]ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, ToProductResponse(p))
	}
	return responses
}
