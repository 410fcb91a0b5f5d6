package middleware

import (
	"context"
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/apperror"
	"github.com/iliyamo/food-ordering/internal/repository"
)

// OwnerLookup resolves the owner of a restaurant.
type OwnerLookup interface {
	OwnerOf(ctx context.Context, restaurantID uint64) (uint64, error)
}

// RestaurantOwner rejects callers that do not own the restaurant named by
// the :id path parameter.
func RestaurantOwner(restaurants OwnerLookup) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			actor, ok := ActorFrom(c)
			if !ok {
				return apperror.Unauthorized("Access denied, no token provided or incorrect format")
			}
			id, err := strconv.ParseUint(c.Param("id"), 10, 64)
			if err != nil || id == 0 {
				return apperror.Validation("Validation Error", []apperror.FieldError{
					{Path: "id", Message: "id must be a positive integer"},
				})
			}
			owner, err := restaurants.OwnerOf(c.Request().Context(), id)
			if errors.Is(err, repository.ErrRestaurantNotFound) {
				return apperror.NotFound("Restaurant not found")
			}
			if err != nil {
				return apperror.Internal("failed to load restaurant", err)
			}
			if owner != actor.ID {
				return apperror.Unauthorized("Access denied, you are not the owner of this restaurant")
			}
			return next(c)
		}
	}
}
