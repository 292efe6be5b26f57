package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/retailops/backend/internal/infrastructure/logger"
	"github.com/retailops/backend/internal/interfaces/http/dto"
)

// Context keys and headers for tenant and actor identification. The
// upstream gateway authenticates the caller and forwards both headers;
// this service only validates their shape.
const (
	TenantIDKey = "tenant_id"
	ActorIDKey  = "actor_id"

	TenantHeader = "X-Tenant-ID"
	ActorHeader  = "X-Actor-ID"
)

// TenantConfig configures tenant extraction.
type TenantConfig struct {
	// SkipPaths bypass tenant resolution entirely, such as health checks.
	SkipPaths []string
}

// DefaultTenantConfig skips the operational endpoints.
func DefaultTenantConfig() TenantConfig {
	return TenantConfig{
		SkipPaths: []string{"/health", "/ready"},
	}
}

// Tenant extracts the tenant and actor IDs from the request headers.
// The tenant header is mandatory on every non-skipped route; the actor
// header is optional and defaults to the nil UUID for system calls.
func Tenant() gin.HandlerFunc {
	return TenantWithConfig(DefaultTenantConfig())
}

// TenantWithConfig returns the tenant middleware with custom configuration.
func TenantWithConfig(cfg TenantConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skip := range cfg.SkipPaths {
			if path == skip || strings.HasPrefix(path, skip+"/") {
				c.Next()
				return
			}
		}

		tenantID, err := uuid.Parse(c.GetHeader(TenantHeader))
		if err != nil || tenantID == uuid.Nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
				dto.ErrCodeUnauthorized,
				"Missing or invalid "+TenantHeader+" header",
			))
			return
		}

		actorID := uuid.Nil
		if raw := c.GetHeader(ActorHeader); raw != "" {
			actorID, err = uuid.Parse(raw)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponse(
					dto.ErrCodeUnauthorized,
					"Invalid "+ActorHeader+" header",
				))
				return
			}
		}

		c.Set(TenantIDKey, tenantID)
		c.Set(ActorIDKey, actorID)

		ctx := logger.WithTenantID(c.Request.Context(), tenantID.String())
		if actorID != uuid.Nil {
			ctx = logger.WithActorID(ctx, actorID.String())
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// TenantID returns the tenant bound to the request, or uuid.Nil when the
// middleware did not run.
func TenantID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(TenantIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// ActorID returns the actor bound to the request, or uuid.Nil.
func ActorID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ActorIDKey); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}
