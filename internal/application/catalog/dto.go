package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/storefront/backend/internal/domain/catalog"
)

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// UpdateCategoryRequest represents a request to rename a category
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=1,max=100"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:        c.ID,
		Name:      c.Name,
		Slug:      c.Slug,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// CreateProductRequest represents a request to create a product
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	CategoryID  uuid.UUID       `json:"category_id" binding:"required"`
	Quantity    int             `json:"quantity" binding:"min=0"`
	PhotoURL    string          `json:"photo_url" binding:"max=500"`
	Shipping    bool            `json:"shipping"`
}

// UpdateProductRequest carries the full replacement state of a product
type UpdateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Description string          `json:"description" binding:"max=2000"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	CategoryID  uuid.UUID       `json:"category_id" binding:"required"`
	Quantity    int             `json:"quantity" binding:"min=0"`
	PhotoURL    string          `json:"photo_url" binding:"max=500"`
	Shipping    bool            `json:"shipping"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Slug        string          `json:"slug"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency"`
	CategoryID  uuid.UUID       `json:"category_id"`
	Quantity    int             `json:"quantity"`
	PhotoURL    string          `json:"photo_url"`
	Shipping    bool            `json:"shipping"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Price:       p.Price,
		Currency:    p.Currency,
		CategoryID:  p.CategoryID,
		Quantity:    p.Quantity,
		PhotoURL:    p.PhotoURL,
		Shipping:    p.Shipping,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProductListFilter represents filter options for the product list
type ProductListFilter struct {
	Keyword    string           `form:"keyword" binding:"max=200"`
	CategoryID *uuid.UUID       `form:"category_id"`
	PriceMin   *decimal.Decimal `form:"price_min"`
	PriceMax   *decimal.Decimal `form:"price_max"`
	Page       int              `form:"page" binding:"omitempty,min=1"`
	PageSize   int              `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ProductListResult is a page of products with the total match count
type ProductListResult struct {
	Products []ProductResponse `json:"products"`
	Total    int64             `json:"total"`
	Page     int               `json:"page"`
	PageSize int               `json:"page_size"`
}
