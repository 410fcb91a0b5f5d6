package service

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/food-ordering/internal/apperror"
	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/pagination"
	"github.com/iliyamo/food-ordering/internal/repository"
)

// SellerService runs seller-side transitions on a restaurant's orders.
// Orders are always addressed through (order id, restaurant id), so an
// order of another restaurant looks exactly like a missing one.
type SellerService struct {
	orderFlow
	restaurants RestaurantStore
}

func NewSellerService(restaurants RestaurantStore, orders OrderLedger, events EventPublisher, log logrus.FieldLogger) *SellerService {
	return &SellerService{
		orderFlow:   orderFlow{orders: orders, events: events, log: log},
		restaurants: restaurants,
	}
}

// authorize checks that actor owns the restaurant.
func (s *SellerService) authorize(ctx context.Context, actor model.Actor, restaurantID uint64) error {
	owner, err := s.restaurants.OwnerOf(ctx, restaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return apperror.NotFound("Restaurant not found")
		}
		return apperror.Internal("failed to load restaurant", err)
	}
	if owner != actor.ID {
		return apperror.Unauthorized("Access denied, you are not the owner of this restaurant")
	}
	return nil
}

func (s *SellerService) act(ctx context.Context, actor model.Actor, a model.Action, restaurantID, orderID uint64) (*model.Order, error) {
	if err := s.authorize(ctx, actor, restaurantID); err != nil {
		return nil, err
	}
	return s.transition(ctx, model.PartySeller, a, orderID, restaurantID)
}

// Confirm accepts a waiting order.
func (s *SellerService) Confirm(ctx context.Context, actor model.Actor, restaurantID, orderID uint64) (*model.Order, error) {
	return s.act(ctx, actor, model.ActionConfirm, restaurantID, orderID)
}

// Deliver marks an order as handed over.
func (s *SellerService) Deliver(ctx context.Context, actor model.Actor, restaurantID, orderID uint64) (*model.Order, error) {
	return s.act(ctx, actor, model.ActionDeliver, restaurantID, orderID)
}

// Cancel rejects an order that is not finished yet.
func (s *SellerService) Cancel(ctx context.Context, actor model.Actor, restaurantID, orderID uint64) (*model.Order, error) {
	return s.act(ctx, actor, model.ActionCancel, restaurantID, orderID)
}

// Orders lists the restaurant's orders.
func (s *SellerService) Orders(ctx context.Context, actor model.Actor, restaurantID uint64, p pagination.Params) ([]model.OrderSummary, pagination.Meta, error) {
	if err := s.authorize(ctx, actor, restaurantID); err != nil {
		return nil, pagination.Meta{}, err
	}
	total, err := s.orders.Count(ctx, repository.ScopeRestaurant, restaurantID)
	if err != nil {
		return nil, pagination.Meta{}, apperror.Internal("failed to count orders", err)
	}
	meta, err := pagination.Resolve(p, total, "Order not found")
	if err != nil {
		return nil, meta, err
	}
	items, err := s.orders.List(ctx, repository.ScopeRestaurant, restaurantID, p.Skip(), p.Limit)
	if err != nil {
		return nil, meta, apperror.Internal("failed to list orders", err)
	}
	return items, meta, nil
}

// Order returns one order of the restaurant.
func (s *SellerService) Order(ctx context.Context, actor model.Actor, restaurantID, orderID uint64) (*model.Order, error) {
	if err := s.authorize(ctx, actor, restaurantID); err != nil {
		return nil, err
	}
	o, err := s.orders.Get(ctx, repository.ScopeRestaurant, orderID, restaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.NotFound("Order not found")
		}
		return nil, apperror.Internal("failed to load order", err)
	}
	return o, nil
}
