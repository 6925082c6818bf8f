package handler

import (
	"context"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/domain/order"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/infrastructure/auth"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

var testTenant = uuid.MustParse("11111111-2222-3333-4444-555555555555")

// withTenant pins the resolved tenant without running the full
// resolution middleware.
func withTenant(tenantID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ResolvedTenantKey, tenantID)
		c.Next()
	}
}

// asUser injects verified claims the way RequireAuth would
func asUser(tenantID, userID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(middleware.ClaimsKey, &auth.Claims{
			TenantID: tenantID.String(),
			UserID:   userID.String(),
		})
		c.Set(middleware.ResolvedTenantKey, tenantID)
		c.Next()
	}
}

type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*identity.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*identity.User)}
}

func (r *memUserRepo) Create(_ context.Context, u *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) Update(_ context.Context, u *identity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = u
	return nil
}

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
	return nil
}

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, shared.ErrNotFound
}

func (r *memUserRepo) FindByEmail(_ context.Context, tenantID uuid.UUID, email string) (*identity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	email = strings.ToLower(email)
	for _, u := range r.users {
		if u.TenantID == tenantID && u.Email == email {
			return u, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memUserRepo) ExistsByEmail(ctx context.Context, tenantID uuid.UUID, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, tenantID, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

func (r *memUserRepo) FindAll(_ context.Context, tenantID uuid.UUID, _ identity.UserFilter) ([]*identity.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*identity.User
	for _, u := range r.users {
		if u.TenantID == tenantID {
			out = append(out, u)
		}
	}
	return out, int64(len(out)), nil
}

func (r *memUserRepo) Count(ctx context.Context, tenantID uuid.UUID) (int64, error) {
	_, n, err := r.FindAll(ctx, tenantID, identity.UserFilter{})
	return n, err
}

type memCategoryRepo struct {
	mu         sync.Mutex
	categories []*catalog.Category
}

func newMemCategoryRepo() *memCategoryRepo { return &memCategoryRepo{} }

func (r *memCategoryRepo) Create(_ context.Context, c *catalog.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.categories = append(r.categories, c)
	return nil
}

func (r *memCategoryRepo) Update(_ context.Context, c *catalog.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.categories {
		if existing.ID == c.ID {
			r.categories[i] = c
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memCategoryRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, c := range r.categories {
		if c.ID == id {
			r.categories = append(r.categories[:i], r.categories[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCategoryRepo) FindBySlug(_ context.Context, tenantID uuid.UUID, slug string) (*catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.categories {
		if c.TenantID == tenantID && c.Slug == slug {
			return c, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memCategoryRepo) ExistsBySlug(ctx context.Context, tenantID uuid.UUID, slug string) (bool, error) {
	_, err := r.FindBySlug(ctx, tenantID, slug)
	return err == nil, nil
}

func (r *memCategoryRepo) FindAll(_ context.Context, tenantID uuid.UUID) ([]*catalog.Category, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*catalog.Category
	for _, c := range r.categories {
		if c.TenantID == tenantID {
			out = append(out, c)
		}
	}
	return out, nil
}

type memProductRepo struct {
	mu       sync.Mutex
	products []*catalog.Product
}

func newMemProductRepo() *memProductRepo { return &memProductRepo{} }

func (r *memProductRepo) Create(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = append(r.products, p)
	return nil
}

func (r *memProductRepo) Update(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.products {
		if existing.ID == p.ID {
			r.products[i] = p
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memProductRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, p := range r.products {
		if p.ID == id {
			r.products = append(r.products[:i], r.products[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindBySlug(_ context.Context, tenantID uuid.UUID, slug string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.TenantID == tenantID && p.Slug == slug {
			return p, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*catalog.Product
	for _, id := range ids {
		for _, p := range r.products {
			if p.ID == id {
				out = append(out, p)
				break
			}
		}
	}
	return out, nil
}

func (r *memProductRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter catalog.ProductFilter) ([]*catalog.Product, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*catalog.Product
	for _, p := range r.products {
		if p.TenantID != tenantID {
			continue
		}
		if filter.Keyword != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(filter.Keyword)) {
			continue
		}
		if len(filter.CategoryIDs) > 0 && !containsUUID(filter.CategoryIDs, p.CategoryID) {
			continue
		}
		matched = append(matched, p)
	}
	total := int64(len(matched))
	offset := filter.Offset()
	if offset > len(matched) {
		return nil, total, nil
	}
	end := offset + filter.Limit()
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (r *memProductRepo) FindRelated(_ context.Context, tenantID, productID, categoryID uuid.UUID, limit int) ([]*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 {
		limit = 4
	}
	var out []*catalog.Product
	for _, p := range r.products {
		if len(out) == limit {
			break
		}
		if p.TenantID == tenantID && p.CategoryID == categoryID && p.ID != productID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) CountByCategory(_ context.Context, categoryID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.products {
		if p.CategoryID == categoryID {
			n++
		}
	}
	return n, nil
}

func containsUUID(ids []uuid.UUID, id uuid.UUID) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}

type memOrderRepo struct {
	mu     sync.Mutex
	orders []*order.Order
}

func newMemOrderRepo() *memOrderRepo { return &memOrderRepo{} }

func (r *memOrderRepo) Create(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders = append(r.orders, o)
	return nil
}

func (r *memOrderRepo) Update(_ context.Context, o *order.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.orders {
		if existing.ID == o.ID {
			r.orders[i] = o
			return nil
		}
	}
	return shared.ErrNotFound
}

func (r *memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, o := range r.orders {
		if o.ID == id {
			return o, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memOrderRepo) FindByBuyer(_ context.Context, tenantID, buyerID uuid.UUID) ([]*order.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*order.Order
	for _, o := range r.orders {
		if o.TenantID == tenantID && o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r *memOrderRepo) FindAll(_ context.Context, tenantID uuid.UUID, filter order.OrderFilter) ([]*order.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*order.Order
	for _, o := range r.orders {
		if o.TenantID != tenantID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		out = append(out, o)
	}
	return out, int64(len(out)), nil
}
