package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/pagination"
	"github.com/iliyamo/food-ordering/internal/service"
)

// BuyerHandler serves order placement and the /api/buyer routes. Every
// query is scoped to the caller.
type BuyerHandler struct {
	Buyers *service.BuyerService
}

func NewBuyerHandler(buyers *service.BuyerService) *BuyerHandler { return &BuyerHandler{Buyers: buyers} }

func pageParams(c echo.Context) pagination.Params {
	return pagination.Parse(c.QueryParam("page"), c.QueryParam("limit"))
}

// PlaceOrder handles POST /api/restaurant/:id/menu/:menu_id/buy.
func (h *BuyerHandler) PlaceOrder(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	restaurantID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	menuID, err := pathID(c, "menu_id")
	if err != nil {
		return err
	}
	var in service.PlaceOrderInput
	if err := bind(c, &in); err != nil {
		return err
	}
	placed, err := h.Buyers.PlaceOrder(c.Request().Context(), actor, restaurantID, menuID, in)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Success to create order", placed)
}

func (h *BuyerHandler) Orders(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	list, meta, err := h.Buyers.Orders(c.Request().Context(), actor, pageParams(c))
	if err != nil {
		return err
	}
	return respondPage(c, "Success get orders", list, meta)
}

func (h *BuyerHandler) Order(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.Buyers.Order(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success get order", o)
}

func (h *BuyerHandler) Cancel(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.Buyers.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success for canceling this order", o)
}

func (h *BuyerHandler) Confirm(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	o, err := h.Buyers.Confirm(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success for confirmed this order", o)
}

func (h *BuyerHandler) Histories(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	list, meta, err := h.Buyers.Histories(c.Request().Context(), actor, pageParams(c))
	if err != nil {
		return err
	}
	return respondPage(c, "Success for get histories", list, meta)
}

func (h *BuyerHandler) History(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.Buyers.History(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success for get history", d)
}
