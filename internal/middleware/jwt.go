package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/apperror"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/utils"
)

const actorKey = "actor"

// JWTAuth validates the bearer access token and stores the resolved
// model.Actor in the echo context. Refresh tokens are opaque strings and
// never pass this check.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get(echo.HeaderAuthorization)
			raw, ok := strings.CutPrefix(auth, "Bearer ")
			raw = strings.TrimSpace(raw)
			if !ok || raw == "" {
				return apperror.Unauthorized("Access denied, no token provided or incorrect format")
			}
			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return apperror.Unauthorized("Invalid token")
			}
			actor, err := claims.Actor()
			if err != nil {
				return apperror.Unauthorized("Invalid token")
			}
			c.Set(actorKey, actor)
			return next(c)
		}
	}
}

// ActorFrom returns the caller stored by JWTAuth.
func ActorFrom(c echo.Context) (model.Actor, bool) {
	a, ok := c.Get(actorKey).(model.Actor)
	return a, ok
}
