package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/service"
)

// SellerHandler serves /api/seller/:id/order. The routes also run the
// owner-match middleware; the service re-checks ownership.
type SellerHandler struct {
	Sellers *service.SellerService
}

func NewSellerHandler(sellers *service.SellerService) *SellerHandler {
	return &SellerHandler{Sellers: sellers}
}

type sellerAction func(ctx context.Context, actor model.Actor, restaurantID, orderID uint64) (*model.Order, error)

// transition builds a handler for one seller action. verb is used in the
// success message.
func (h *SellerHandler) transition(act sellerAction, verb string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := getActor(c)
		if err != nil {
			return err
		}
		restaurantID, err := pathID(c, "id")
		if err != nil {
			return err
		}
		orderID, err := pathID(c, "order_id")
		if err != nil {
			return err
		}
		o, err := act(c.Request().Context(), actor, restaurantID, orderID)
		if err != nil {
			return err
		}
		return respond(c, http.StatusOK, fmt.Sprintf("Success %s order_id %d", verb, o.ID), o)
	}
}

func (h *SellerHandler) Confirm() echo.HandlerFunc { return h.transition(h.Sellers.Confirm, "confirm") }
func (h *SellerHandler) Deliver() echo.HandlerFunc { return h.transition(h.Sellers.Deliver, "delivered") }
func (h *SellerHandler) Cancel() echo.HandlerFunc { return h.transition(h.Sellers.Cancel, "cancel") }

func (h *SellerHandler) Orders(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	restaurantID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	list, meta, err := h.Sellers.Orders(c.Request().Context(), actor, restaurantID, pageParams(c))
	if err != nil {
		return err
	}
	return respondPage(c, "Orders found", list, meta)
}

func (h *SellerHandler) Order(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	restaurantID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	orderID, err := pathID(c, "order_id")
	if err != nil {
		return err
	}
	o, err := h.Sellers.Order(c.Request().Context(), actor, restaurantID, orderID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Order found", o)
}
