package catalog

import (
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// Product represents a sellable item in the storefront catalog.
// It is the aggregate root for product-related operations.
type Product struct {
	shared.TenantAggregateRoot
	Name        string          `gorm:"type:varchar(200);not null"`
	Slug        string          `gorm:"type:varchar(220);not null;uniqueIndex:idx_product_tenant_slug,priority:2"`
	Description string          `gorm:"type:text"`
	Price       decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0"`
	Currency    string          `gorm:"type:varchar(3);not null;default:'USD'"`
	CategoryID  uuid.UUID       `gorm:"type:uuid;not null;index"`
	Quantity    int             `gorm:"not null;default:0"`
	PhotoURL    string          `gorm:"type:varchar(500)"`
	Shipping    bool            `gorm:"not null;default:false"`
}

// TableName returns the table name for GORM
func (Product) TableName() string {
	return "products"
}

// NewProduct creates a new product
func NewProduct(tenantID, categoryID uuid.UUID, name, description string, price valueobject.Money, quantity int) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if categoryID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if price.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if quantity < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	return &Product{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Name:                strings.TrimSpace(name),
		Slug:                Slugify(name),
		Description:         description,
		Price:               price.Amount(),
		Currency:            string(price.Currency()),
		CategoryID:          categoryID,
		Quantity:            quantity,
	}, nil
}

// Update updates the product's basic information
func (p *Product) Update(name, description string, price valueobject.Money, categoryID uuid.UUID, quantity int) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	if categoryID == uuid.Nil {
		return shared.NewDomainError("INVALID_CATEGORY", "Category is required")
	}
	if price.IsNegative() {
		return shared.NewDomainError("INVALID_PRICE", "Price cannot be negative")
	}
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}

	p.Name = strings.TrimSpace(name)
	p.Slug = Slugify(name)
	p.Description = description
	p.Price = price.Amount()
	p.Currency = string(price.Currency())
	p.CategoryID = categoryID
	p.Quantity = quantity
	p.Touch()

	return nil
}

// SetPhotoURL sets the location of the product photo
func (p *Product) SetPhotoURL(url string) error {
	if len(url) > 500 {
		return shared.NewDomainError("INVALID_PHOTO", "Photo URL cannot exceed 500 characters")
	}
	p.PhotoURL = url
	p.Touch()
	return nil
}

// SetShipping toggles whether the product is shippable
func (p *Product) SetShipping(shipping bool) {
	p.Shipping = shipping
	p.Touch()
}

// InStock reports whether at least wanted units are available
func (p *Product) InStock(wanted int) bool {
	return wanted > 0 && p.Quantity >= wanted
}

// Reserve reduces stock by the purchased quantity
func (p *Product) Reserve(quantity int) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if p.Quantity < quantity {
		return shared.ErrInsufficientStock
	}
	p.Quantity -= quantity
	p.Touch()
	return nil
}

// UnitPrice returns the product price as a Money value object
func (p *Product) UnitPrice() valueobject.Money {
	m, err := valueobject.NewMoney(p.Price, valueobject.Currency(p.Currency))
	if err != nil {
		return valueobject.ZeroUSD()
	}
	return m
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name is required")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}
