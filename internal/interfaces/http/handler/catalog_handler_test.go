package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	catalogapp "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
)

type catalogFixture struct {
	router       *gin.Engine
	categoryRepo *memCategoryRepo
	productRepo  *memProductRepo
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	categoryRepo := newMemCategoryRepo()
	productRepo := newMemProductRepo()
	categoryHandler := NewCategoryHandler(catalogapp.NewCategoryService(categoryRepo, productRepo))
	productHandler := NewProductHandler(catalogapp.NewProductService(productRepo, categoryRepo))

	r := gin.New()
	r.Use(withTenant(testTenant))
	r.POST("/categories", categoryHandler.Create)
	r.PUT("/categories/:id", categoryHandler.Update)
	r.DELETE("/categories/:id", categoryHandler.Delete)
	r.GET("/categories", categoryHandler.List)
	r.GET("/categories/:slug", categoryHandler.GetBySlug)
	r.POST("/products", productHandler.Create)
	r.GET("/products", productHandler.List)
	r.GET("/products/:slug", productHandler.GetBySlug)
	r.GET("/products/related/:pid/:cid", productHandler.Related)
	r.GET("/products/category/:slug", productHandler.ListByCategory)

	return &catalogFixture{router: r, categoryRepo: categoryRepo, productRepo: productRepo}
}

func (f *catalogFixture) seedCategory(t *testing.T, name string) *catalog.Category {
	t.Helper()
	c, err := catalog.NewCategory(testTenant, name)
	require.NoError(t, err)
	require.NoError(t, f.categoryRepo.Create(context.Background(), c))
	return c
}

func (f *catalogFixture) seedProduct(t *testing.T, category *catalog.Category, name string, price string, quantity int) *catalog.Product {
	t.Helper()
	money := valueobject.NewMoneyUSD(decimal.RequireFromString(price))
	p, err := catalog.NewProduct(testTenant, category.ID, name, "", money, quantity)
	require.NoError(t, err)
	require.NoError(t, f.productRepo.Create(context.Background(), p))
	return p
}

func TestCategoryHandler_Create(t *testing.T) {
	f := newCatalogFixture(t)

	w := postJSON(t, f.router, "/categories", map[string]string{"name": "Node JS"})
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp struct {
		Data struct {
			Slug string `json:"slug"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "node-js", resp.Data.Slug)

	w = postJSON(t, f.router, "/categories", map[string]string{"name": "Node JS"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCategoryHandler_Delete(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.seedCategory(t, "Books")
	f.seedProduct(t, category, "Go in Action", "39.99", 5)

	t.Run("refused while products remain", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/categories/"+category.ID.String(), nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ERR_INVALID_STATE", resp.Error.Code)
	})

	t.Run("allowed once empty", func(t *testing.T) {
		empty := f.seedCategory(t, "Music")
		req := httptest.NewRequest(http.MethodDelete, "/categories/"+empty.ID.String(), nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNoContent, w.Code)
	})
}

func TestProductHandler_List(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.seedCategory(t, "Books")
	for i := 0; i < 15; i++ {
		f.seedProduct(t, category, fmt.Sprintf("Book %02d", i), "10.00", 3)
	}

	req := httptest.NewRequest(http.MethodGet, "/products?page=1&page_size=10", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []json.RawMessage `json:"data"`
		Meta struct {
			Total      int64 `json:"total"`
			Page       int   `json:"page"`
			TotalPages int   `json:"total_pages"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 10)
	assert.Equal(t, int64(15), resp.Meta.Total)
	assert.Equal(t, 2, resp.Meta.TotalPages)
}

func TestProductHandler_GetBySlug(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.seedCategory(t, "Books")
	f.seedProduct(t, category, "Go in Action", "39.99", 5)

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/products/go-in-action", nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("unknown slug", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/products/missing", nil)
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)

		var resp struct {
			Error struct {
				Code string `json:"code"`
			} `json:"error"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "ERR_NOT_FOUND", resp.Error.Code)
	})
}

func TestProductHandler_Related(t *testing.T) {
	f := newCatalogFixture(t)
	category := f.seedCategory(t, "Books")
	anchor := f.seedProduct(t, category, "Go in Action", "39.99", 5)
	f.seedProduct(t, category, "The Go Programming Language", "44.99", 5)
	f.seedProduct(t, category, "Learning Go", "29.99", 5)

	path := fmt.Sprintf("/products/related/%s/%s", anchor.ID, category.ID)
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
	for _, p := range resp.Data {
		assert.NotEqual(t, anchor.ID.String(), p.ID)
	}
}

func TestProductHandler_ListByCategory(t *testing.T) {
	f := newCatalogFixture(t)
	books := f.seedCategory(t, "Books")
	music := f.seedCategory(t, "Music")
	f.seedProduct(t, books, "Go in Action", "39.99", 5)
	f.seedProduct(t, music, "Blue Train", "19.99", 5)

	req := httptest.NewRequest(http.MethodGet, "/products/category/books", nil)
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Category struct {
				Slug string `json:"slug"`
			} `json:"category"`
			Products []struct {
				Name string `json:"name"`
			} `json:"products"`
			Total int64 `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "books", resp.Data.Category.Slug)
	require.Len(t, resp.Data.Products, 1)
	assert.Equal(t, "Go in Action", resp.Data.Products[0].Name)
	assert.Equal(t, int64(1), resp.Data.Total)
}
