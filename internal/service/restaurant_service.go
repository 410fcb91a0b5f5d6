package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/food-ordering/internal/apperror"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/repository"
	"github.com/iliyamo/food-ordering/internal/storage"
)

const (
	bannerFolder = "banner-restaurant"
	menuFolder   = "menu"
)

type CreateRestaurantInput struct {
	Name      string `json:"name" form:"name" validate:"required,min=3,max=255"`
	Location  string `json:"location" form:"location" validate:"required,min=3,max=255"`
	OpenTime  string `json:"open_time" form:"open_time" validate:"required,min=3,max=255"`
	CloseTime string `json:"close_time" form:"close_time" validate:"required,min=3,max=255"`
}

// UpdateRestaurantInput is a partial update; nil fields keep their value.
type UpdateRestaurantInput struct {
	Name      *string `json:"name" form:"name" validate:"omitempty,min=3,max=255"`
	Location  *string `json:"location" form:"location" validate:"omitempty,min=3,max=255"`
	OpenTime  *string `json:"open_time" form:"open_time" validate:"omitempty,min=3,max=255"`
	CloseTime *string `json:"close_time" form:"close_time" validate:"omitempty,min=3,max=255"`
}

type CreateMenuInput struct {
	Name        string `json:"name" form:"name" validate:"required,min=3,max=255"`
	Price       int64  `json:"price" form:"price" validate:"gte=0"`
	Description string `json:"description" form:"description" validate:"required,min=3,max=255"`
	Amount      int    `json:"amount" form:"amount" validate:"gte=0"`
}

// UpdateMenuInput is a partial update; nil fields keep their value.
type UpdateMenuInput struct {
	Name        *string `json:"name" form:"name" validate:"omitempty,min=3,max=255"`
	Price       *int64  `json:"price" form:"price" validate:"omitempty,gte=0"`
	Description *string `json:"description" form:"description" validate:"omitempty,min=3,max=255"`
	Amount      *int    `json:"amount" form:"amount" validate:"omitempty,gte=0"`
}

// RestaurantService manages restaurants and their menus.
type RestaurantService struct {
	restaurants   RestaurantStore
	menus         MenuStore
	images        images
	validate      Validator
	defaultBanner string
	defaultMenu   string
}

func NewRestaurantService(restaurants RestaurantStore, menus MenuStore, store storage.ImageStore, v Validator,
	log logrus.FieldLogger, defaultBanner, defaultMenu string) *RestaurantService {
	return &RestaurantService{
		restaurants:   restaurants,
		menus:         menus,
		images:        images{store: store, log: log},
		validate:      v,
		defaultBanner: defaultBanner,
		defaultMenu:   defaultMenu,
	}
}

// Create opens the actor's restaurant. Name and owner uniqueness are
// checked before the banner upload; the unique indexes catch the races
// that slip past the checks.
func (s *RestaurantService) Create(ctx context.Context, actor model.Actor, in CreateRestaurantInput, banner *Upload) (*model.Restaurant, error) {
	if err := s.validate.Validate(&in); err != nil {
		return nil, err
	}
	if _, err := s.restaurants.GetByName(ctx, in.Name); err == nil {
		return nil, apperror.Conflict("Restaurant name already exists")
	} else if !errors.Is(err, repository.ErrRestaurantNotFound) {
		return nil, apperror.Internal("failed to create restaurant", err)
	}
	if _, err := s.restaurants.GetByOwner(ctx, actor.ID); err == nil {
		return nil, apperror.Conflict("Owner only can create one restaurant")
	} else if !errors.Is(err, repository.ErrRestaurantNotFound) {
		return nil, apperror.Internal("failed to create restaurant", err)
	}

	url, uploaded, err := s.images.put(ctx, bannerFolder, banner, s.defaultBanner)
	if err != nil {
		return nil, apperror.Internal("failed to upload banner", err)
	}
	rest := &model.Restaurant{
		OwnerID:   actor.ID,
		Name:      in.Name,
		Location:  in.Location,
		Banner:    url,
		OpenTime:  in.OpenTime,
		CloseTime: in.CloseTime,
	}
	if err := s.restaurants.Create(ctx, rest); err != nil {
		if uploaded {
			s.images.discard(ctx, url)
		}
		return nil, restaurantError(err, "failed to create restaurant")
	}
	return rest, nil
}

// Update applies a partial update. A new banner is uploaded before the old
// one is deleted.
func (s *RestaurantService) Update(ctx context.Context, restaurantID uint64, in UpdateRestaurantInput, banner *Upload) (*model.Restaurant, error) {
	if err := s.validate.Validate(&in); err != nil {
		return nil, err
	}
	rest, err := s.restaurants.GetByID(ctx, restaurantID)
	if err != nil {
		return nil, restaurantError(err, "failed to update restaurant")
	}
	if in.Name != nil && *in.Name != rest.Name {
		other, err := s.restaurants.GetByName(ctx, *in.Name)
		switch {
		case err == nil && other.ID != rest.ID:
			return nil, apperror.Conflict("Restaurant name already exists")
		case err != nil && !errors.Is(err, repository.ErrRestaurantNotFound):
			return nil, apperror.Internal("failed to update restaurant", err)
		}
		rest.Name = *in.Name
	}
	if in.Location != nil {
		rest.Location = *in.Location
	}
	if in.OpenTime != nil {
		rest.OpenTime = *in.OpenTime
	}
	if in.CloseTime != nil {
		rest.CloseTime = *in.CloseTime
	}

	oldBanner := rest.Banner
	url, uploaded, err := s.images.put(ctx, bannerFolder, banner, oldBanner)
	if err != nil {
		return nil, apperror.Internal("failed to upload banner", err)
	}
	rest.Banner = url
	if err := s.restaurants.Update(ctx, rest); err != nil {
		if uploaded {
			s.images.discard(ctx, url)
		}
		return nil, restaurantError(err, "failed to update restaurant")
	}
	if uploaded {
		s.images.discard(ctx, oldBanner)
	}
	return rest, nil
}

// Detail returns the restaurant with its menu summary.
func (s *RestaurantService) Detail(ctx context.Context, restaurantID uint64) (*model.RestaurantDetail, error) {
	d, err := s.restaurants.Detail(ctx, restaurantID)
	if err != nil {
		return nil, restaurantError(err, "failed to get restaurant")
	}
	return d, nil
}

// CreateMenu adds an item to the restaurant's menu.
func (s *RestaurantService) CreateMenu(ctx context.Context, restaurantID uint64, in CreateMenuInput, picture *Upload) (*model.MenuItem, error) {
	if err := s.validate.Validate(&in); err != nil {
		return nil, err
	}
	if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
		return nil, restaurantError(err, "failed to create menu")
	}
	url, uploaded, err := s.images.put(ctx, menuFolder, picture, s.defaultMenu)
	if err != nil {
		return nil, apperror.Internal("failed to upload picture", err)
	}
	m := &model.MenuItem{
		RestaurantID: restaurantID,
		Name:         in.Name,
		Price:        in.Price,
		Description:  in.Description,
		Amount:       in.Amount,
		Picture:      url,
	}
	if err := s.menus.Create(ctx, m); err != nil {
		if uploaded {
			s.images.discard(ctx, url)
		}
		return nil, menuError(err, "Failed to create menu")
	}
	return m, nil
}

// GetMenu returns one item of the restaurant.
func (s *RestaurantService) GetMenu(ctx context.Context, restaurantID, menuID uint64) (*model.MenuItem, error) {
	m, err := s.menus.Get(ctx, restaurantID, menuID)
	if err != nil {
		return nil, menuError(err, "failed to get menu")
	}
	return m, nil
}

// UpdateMenu applies a partial update. Renaming an item to its own name is
// allowed; taking the name of a sibling item is a conflict.
func (s *RestaurantService) UpdateMenu(ctx context.Context, restaurantID, menuID uint64, in UpdateMenuInput, picture *Upload) (*model.MenuItem, error) {
	if err := s.validate.Validate(&in); err != nil {
		return nil, err
	}
	m, err := s.menus.Get(ctx, restaurantID, menuID)
	if err != nil {
		return nil, menuError(err, "Failed to update menu")
	}
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Price != nil {
		m.Price = *in.Price
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.Amount != nil {
		m.Amount = *in.Amount
	}

	oldPicture := m.Picture
	url, uploaded, err := s.images.put(ctx, menuFolder, picture, oldPicture)
	if err != nil {
		return nil, apperror.Internal("failed to upload picture", err)
	}
	m.Picture = url
	if err := s.menus.Update(ctx, m); err != nil {
		if uploaded {
			s.images.discard(ctx, url)
		}
		return nil, menuError(err, "Failed to update menu")
	}
	if uploaded {
		s.images.discard(ctx, oldPicture)
	}
	return m, nil
}

// DeleteMenu removes an item and its picture. The id stays in the
// restaurant's menu list.
func (s *RestaurantService) DeleteMenu(ctx context.Context, restaurantID, menuID uint64) error {
	m, err := s.menus.Delete(ctx, restaurantID, menuID)
	if err != nil {
		return menuError(err, "failed to delete menu")
	}
	if m.Picture != s.defaultMenu {
		s.images.discard(ctx, m.Picture)
	}
	return nil
}

func restaurantError(err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrRestaurantNotFound):
		return apperror.NotFound("Restaurant not found")
	case errors.Is(err, repository.ErrRestaurantNameTaken):
		return apperror.Conflict("Restaurant name already exists")
	case errors.Is(err, repository.ErrOwnerHasRestaurant):
		return apperror.Conflict("Owner only can create one restaurant")
	default:
		return apperror.Internal(fallback, err)
	}
}

func menuError(err error, fallback string) error {
	switch {
	case errors.Is(err, repository.ErrMenuNotFound):
		return apperror.NotFound("Menu not found")
	case errors.Is(err, repository.ErrRestaurantNotFound):
		return apperror.NotFound("Restaurant not found")
	case errors.Is(err, repository.ErrMenuNameTaken):
		return apperror.Conflict("Menu name already exists")
	default:
		return apperror.Internal(fallback, err)
	}
}
