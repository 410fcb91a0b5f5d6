package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/food-ordering/internal/service"
)

// RestaurantHandler serves restaurant and menu maintenance under
// /api/restaurant.
type RestaurantHandler struct {
	Restaurants *service.RestaurantService
}

func NewRestaurantHandler(restaurants *service.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{Restaurants: restaurants}
}

func (h *RestaurantHandler) Create(c echo.Context) error {
	actor, err := getActor(c)
	if err != nil {
		return err
	}
	var in service.CreateRestaurantInput
	if err := bind(c, &in); err != nil {
		return err
	}
	up, closeUp, err := formUpload(c, "banner")
	if err != nil {
		return err
	}
	defer closeUp()

	r, err := h.Restaurants.Create(c.Request().Context(), actor, in, up)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Success to create restaurant", r)
}

func (h *RestaurantHandler) Update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.UpdateRestaurantInput
	if isMultipart(c) {
		in = service.UpdateRestaurantInput{
			Name:      formString(c, "name"),
			Location:  formString(c, "location"),
			OpenTime:  formString(c, "open_time"),
			CloseTime: formString(c, "close_time"),
		}
	} else if err := bind(c, &in); err != nil {
		return err
	}
	up, closeUp, err := formUpload(c, "banner")
	if err != nil {
		return err
	}
	defer closeUp()

	r, err := h.Restaurants.Update(c.Request().Context(), id, in, up)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success to update restaurant", r)
}

func (h *RestaurantHandler) Detail(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	d, err := h.Restaurants.Detail(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success to get restaurant", d)
}

func (h *RestaurantHandler) CreateMenu(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	var in service.CreateMenuInput
	if err := bind(c, &in); err != nil {
		return err
	}
	up, closeUp, err := formUpload(c, "image")
	if err != nil {
		return err
	}
	defer closeUp()

	m, err := h.Restaurants.CreateMenu(c.Request().Context(), id, in, up)
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Success to create menu", m)
}

func (h *RestaurantHandler) GetMenu(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	menuID, err := pathID(c, "menu_id")
	if err != nil {
		return err
	}
	m, err := h.Restaurants.GetMenu(c.Request().Context(), id, menuID)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success to get menu", m)
}

func (h *RestaurantHandler) UpdateMenu(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	menuID, err := pathID(c, "menu_id")
	if err != nil {
		return err
	}
	var in service.UpdateMenuInput
	if isMultipart(c) {
		if in, err = menuForm(c); err != nil {
			return err
		}
	} else if err := bind(c, &in); err != nil {
		return err
	}
	up, closeUp, err := formUpload(c, "image")
	if err != nil {
		return err
	}
	defer closeUp()

	m, err := h.Restaurants.UpdateMenu(c.Request().Context(), id, menuID, in, up)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success to update menu", m)
}

func menuForm(c echo.Context) (service.UpdateMenuInput, error) {
	in := service.UpdateMenuInput{
		Name:        formString(c, "name"),
		Description: formString(c, "description"),
	}
	price, err := formInt64(c, "price")
	if err != nil {
		return in, err
	}
	in.Price = price
	amount, err := formInt64(c, "amount")
	if err != nil {
		return in, err
	}
	if amount != nil {
		n := int(*amount)
		in.Amount = &n
	}
	return in, nil
}

func (h *RestaurantHandler) DeleteMenu(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	menuID, err := pathID(c, "menu_id")
	if err != nil {
		return err
	}
	if err := h.Restaurants.DeleteMenu(c.Request().Context(), id, menuID); err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Success to delete menu", nil)
}
