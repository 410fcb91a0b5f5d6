// Package router registers the HTTP routes and the middleware each group
// needs.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/handler"
	"github.com/iliyamo/food-ordering/internal/middleware"
	"github.com/iliyamo/food-ordering/internal/model"
)

// Guards groups the middleware shared by the route files.
type Guards struct {
	Auth   echo.MiddlewareFunc
	Seller echo.MiddlewareFunc
	Owner  echo.MiddlewareFunc

	// Limit must run after Auth so the bucket key can include the caller.
	// PublicLimit guards routes that have no bearer token.
	Limit       echo.MiddlewareFunc
	PublicLimit echo.MiddlewareFunc

	Cache echo.MiddlewareFunc
	Purge echo.MiddlewareFunc
}

// Shared holds the Redis-backed middleware. Nil entries and disabled
// configs both pass requests through.
type Shared struct {
	Limit       echo.MiddlewareFunc
	PublicLimit echo.MiddlewareFunc
	Cache       echo.MiddlewareFunc
	Purge       echo.MiddlewareFunc
}

// NewGuards builds the auth and ownership middleware around shared.
func NewGuards(jwtSecret string, owners middleware.OwnerLookup, shared Shared) Guards {
	return Guards{
		Auth:        middleware.JWTAuth(jwtSecret),
		Seller:      middleware.RequireRole(model.RoleSeller, model.RoleAdmin),
		Owner:       middleware.RestaurantOwner(owners),
		Limit:       orPass(shared.Limit),
		PublicLimit: orPass(shared.PublicLimit),
		Cache:       orPass(shared.Cache),
		Purge:       orPass(shared.Purge),
	}
}

func orPass(m echo.MiddlewareFunc) echo.MiddlewareFunc {
	if m == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc { return next }
	}
	return m
}

// RegisterRoutes registers endpoints that need no authentication.
func RegisterRoutes(e *echo.Echo, h *handler.HealthHandler, uploadDir string) {
	e.GET("/healthz", h.Health)
	e.Static("/uploads", uploadDir)
}
