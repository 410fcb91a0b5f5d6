package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/handler"
)

// RegisterRestaurant mounts /api/restaurant. Writes require the seller role
// and, below /:id, ownership of that restaurant. Writes purge the cached
// restaurant page.
func RegisterRestaurant(e *echo.Echo, r *handler.RestaurantHandler, b *handler.BuyerHandler, g Guards) {
	grp := e.Group("/api/restaurant", g.Auth, g.Limit)

	grp.GET("/:id", r.Detail, g.Cache)
	grp.GET("/:id/menu/:menu_id", r.GetMenu)
	grp.POST("/:id/menu/:menu_id/buy", b.PlaceOrder)

	grp.POST("/create", r.Create, g.Seller)

	owned := []echo.MiddlewareFunc{g.Seller, g.Owner, g.Purge}
	grp.PUT("/:id", r.Update, owned...)
	grp.POST("/:id/menu", r.CreateMenu, owned...)
	grp.PUT("/:id/menu/:menu_id", r.UpdateMenu, owned...)
	grp.DELETE("/:id/menu/:menu_id", r.DeleteMenu, owned...)
}
