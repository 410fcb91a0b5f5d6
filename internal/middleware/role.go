package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/apperror"
)

// RequireRole allows only callers whose role is in roles. It must run
// after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok {
				return apperror.Unauthorized("Access denied, no token provided or incorrect format")
			}
			if _, ok := allowed[actor.Role]; !ok {
				return apperror.Forbidden("Access denied, role %s is not allowed", actor.Role)
			}
			return next(c)
		}
	}
}
