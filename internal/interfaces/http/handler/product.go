package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// ProductHandler serves product management and browsing endpoints
type ProductHandler struct {
	BaseHandler
	productService *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

// Create handles POST /api/v1/products
func (h *ProductHandler) Create(c *gin.Context) {
	var req catalogapp.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid product payload")
		return
	}

	product, err := h.productService.Create(c.Request.Context(), middleware.ResolvedTenant(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, product)
}

// Update handles PUT /api/v1/products/:id
func (h *ProductHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	var req catalogapp.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid product payload")
		return
	}

	product, err := h.productService.Update(c.Request.Context(), middleware.ResolvedTenant(c), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Delete handles DELETE /api/v1/products/:id
func (h *ProductHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.productService.Delete(c.Request.Context(), middleware.ResolvedTenant(c), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// List handles GET /api/v1/products with keyword, category, price range
// and pagination query parameters.
func (h *ProductHandler) List(c *gin.Context) {
	var filter catalogapp.ProductListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, "Invalid product filter")
		return
	}

	result, err := h.productService.List(c.Request.Context(), middleware.ResolvedTenant(c), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Products, result.Total, result.Page, result.PageSize)
}

// GetBySlug handles GET /api/v1/products/:slug
func (h *ProductHandler) GetBySlug(c *gin.Context) {
	product, err := h.productService.GetBySlug(c.Request.Context(), middleware.ResolvedTenant(c), c.Param("slug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, product)
}

// Related handles GET /api/v1/products/related/:pid/:cid
func (h *ProductHandler) Related(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("pid"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	categoryID, err := uuid.Parse(c.Param("cid"))
	if err != nil {
		h.BadRequest(c, "Invalid category ID")
		return
	}

	products, err := h.productService.Related(c.Request.Context(), middleware.ResolvedTenant(c), productID, categoryID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// ListByCategory handles GET /api/v1/products/category/:slug
func (h *ProductHandler) ListByCategory(c *gin.Context) {
	page := queryInt(c, "page", 1)
	pageSize := queryInt(c, "page_size", 12)

	result, err := h.productService.ListByCategory(c.Request.Context(), middleware.ResolvedTenant(c), c.Param("slug"), page, pageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func queryInt(c *gin.Context, key string, fallback int) int {
	raw := c.Query(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return fallback
	}
	return v
}
