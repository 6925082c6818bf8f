package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// Tenant resolution keys
const (
	ResolvedTenantKey = "resolved_tenant_id"
	TenantHeaderKey   = "X-Tenant-ID"
)

// ResolveTenant determines the tenant for the request. Authenticated
// requests carry the tenant in their token claims; unauthenticated
// catalog reads may send an X-Tenant-ID header; everything else falls
// back to the configured default tenant.
func ResolveTenant(defaultTenantID uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := GetClaims(c); claims != nil {
			if id, err := claims.GetTenantUUID(); err == nil {
				c.Set(ResolvedTenantKey, id)
				c.Next()
				return
			}
		}

		if header := c.GetHeader(TenantHeaderKey); header != "" {
			id, err := uuid.Parse(header)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusBadRequest,
					dto.NewErrorResponse(dto.ErrCodeBadRequest, "Invalid tenant identifier"))
				return
			}
			c.Set(ResolvedTenantKey, id)
			c.Next()
			return
		}

		c.Set(ResolvedTenantKey, defaultTenantID)
		c.Next()
	}
}

// ResolvedTenant returns the tenant ID placed by ResolveTenant
func ResolvedTenant(c *gin.Context) uuid.UUID {
	if v, exists := c.Get(ResolvedTenantKey); exists {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
