package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/handler"
)

// RegisterBuyer mounts /api/buyer. Every route is scoped to the caller.
func RegisterBuyer(e *echo.Echo, b *handler.BuyerHandler, g Guards) {
	grp := e.Group("/api/buyer", g.Auth, g.Limit)
	grp.GET("/order", b.Orders)
	grp.GET("/order/:id", b.Order)
	grp.PATCH("/order/:id/confirm", b.Confirm)
	grp.PATCH("/order/:id/cancel", b.Cancel)
	grp.GET("/history", b.Histories)
	grp.GET("/history/:id", b.History)
}

// RegisterSeller mounts /api/seller/:id/order for the owner of restaurant :id.
func RegisterSeller(e *echo.Echo, s *handler.SellerHandler, g Guards) {
	grp := e.Group("/api/seller/:id/order", g.Auth, g.Limit, g.Seller, g.Owner)
	grp.GET("", s.Orders)
	grp.GET("/:order_id", s.Order)
	grp.PATCH("/:order_id/confirm", s.Confirm())
	grp.PATCH("/:order_id/deliver", s.Deliver())
	grp.PATCH("/:order_id/cancel", s.Cancel())
}
