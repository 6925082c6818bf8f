package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/identity"
	"github.com/storefront/backend/internal/infrastructure/auth"
)

// Context keys for authenticated request state
const (
	ClaimsKey     = "auth_claims"
	UserIDKey     = "auth_user_id"
	TenantIDKey   = "auth_tenant_id"
	AuthHeaderKey = "Authorization"
)

// Fixed response bodies of the authorization boundary. Clients match on
// these exact messages, so they are not routed through the error mapper.
const (
	msgInvalidToken = "Invalid or expired token"
	msgUnauthorized = "UnAuthorized Access"
	msgInternal     = "Internal server error"
)

// AuthConfig holds dependencies for the authorization middleware
type AuthConfig struct {
	JWTService *auth.JWTService
	// Blacklist is optional; revocation checks fail open when lookups error
	Blacklist auth.TokenBlacklist
	// UserRepo is required for RequireAdmin, which never trusts the
	// role claim and re-reads the persisted record
	UserRepo identity.UserRepository
	Logger   *zap.Logger
}

// RequireAuth validates the Authorization header and attaches the
// verified claims to the request context. The header value is the raw
// token; a Bearer prefix is tolerated and stripped. Every failure mode
// produces the same 401 body.
func RequireAuth(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader(AuthHeaderKey)
		if header == "" {
			abortInvalidToken(c)
			return
		}

		claims, err := cfg.JWTService.ValidateToken(header)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Token validation failed",
					zap.Error(err),
					zap.String("path", c.Request.URL.Path))
			}
			abortInvalidToken(c)
			return
		}

		if revoked := checkRevocation(c, cfg, claims); revoked {
			abortInvalidToken(c)
			return
		}

		c.Set(ClaimsKey, claims)
		c.Set(UserIDKey, claims.UserID)
		c.Set(TenantIDKey, claims.TenantID)
		c.Next()
	}
}

// checkRevocation consults the blacklist. Lookup errors fail open with
// a logged warning so an unavailable Redis does not lock everyone out.
func checkRevocation(c *gin.Context, cfg AuthConfig, claims *auth.Claims) bool {
	if cfg.Blacklist == nil {
		return false
	}
	ctx := c.Request.Context()

	if claims.ID != "" {
		revoked, err := cfg.Blacklist.IsRevoked(ctx, claims.ID)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Token blacklist lookup failed",
					zap.Error(err), zap.String("jti", claims.ID))
			}
		} else if revoked {
			return true
		}
	}

	if claims.UserID != "" && claims.IssuedAt != nil {
		revoked, err := cfg.Blacklist.IsUserRevoked(ctx, claims.UserID, claims.IssuedAt.Time)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("User revocation lookup failed",
					zap.Error(err), zap.String("user_id", claims.UserID))
			}
		} else if revoked {
			return true
		}
	}
	return false
}

// RequireAdmin authorizes administrators. It assumes RequireAuth ran
// earlier on the chain and re-reads the user's role from the store; a
// stale or forged role claim in the token carries no weight.
func RequireAdmin(cfg AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := GetUserID(c)
		if err != nil {
			// A missing or malformed subject means the role cannot be
			// looked up at all, the same failure class as a repository
			// error below.
			if cfg.Logger != nil {
				cfg.Logger.Error("Admin subject unreadable", zap.Error(err))
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": msgInternal,
			})
			return
		}

		user, err := cfg.UserRepo.FindByID(c.Request.Context(), userID)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Error("Admin role lookup failed",
					zap.Error(err), zap.String("user_id", userID.String()))
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": msgInternal,
			})
			return
		}

		if !user.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": msgUnauthorized,
			})
			return
		}

		c.Next()
	}
}

func abortInvalidToken(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": msgInvalidToken,
	})
}

// GetClaims retrieves the verified claims from the gin context
func GetClaims(c *gin.Context) *auth.Claims {
	if v, exists := c.Get(ClaimsKey); exists {
		if claims, ok := v.(*auth.Claims); ok {
			return claims
		}
	}
	return nil
}

// GetUserID returns the authenticated subject's ID
func GetUserID(c *gin.Context) (uuid.UUID, error) {
	claims := GetClaims(c)
	if claims == nil {
		return uuid.Nil, auth.ErrMissingUserID
	}
	return claims.GetUserUUID()
}

// GetTenantID returns the tenant ID from the verified claims
func GetTenantID(c *gin.Context) (uuid.UUID, error) {
	claims := GetClaims(c)
	if claims == nil {
		return uuid.Nil, auth.ErrMissingTenantID
	}
	return claims.GetTenantUUID()
}
