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

// PlaceOrderInput is the buyer's purchase request. TotalPrice is what the
// buyer pays; the amount due is computed from the menu price.
type PlaceOrderInput struct {
	Quantity   int   `json:"quantity" validate:"gt=0"`
	TotalPrice int64 `json:"total_price" validate:"gt=0"`
}

// PlacedOrder is the saved order plus the change owed to the buyer.
type PlacedOrder struct {
	Order  *model.Order `json:"order"`
	Change int64        `json:"change"`
}

// BuyerService places orders and runs buyer-side transitions.
type BuyerService struct {
	orderFlow
	restaurants RestaurantStore
	menus       MenuStore
	histories   HistoryStore
	validate    Validator
}

func NewBuyerService(restaurants RestaurantStore, menus MenuStore, orders OrderLedger, histories HistoryStore,
	events EventPublisher, v Validator, log logrus.FieldLogger) *BuyerService {
	return &BuyerService{
		orderFlow:   orderFlow{orders: orders, events: events, log: log},
		restaurants: restaurants,
		menus:       menus,
		histories:   histories,
		validate:    v,
	}
}

// PlaceOrder buys in.Quantity of a menu item. Stock is decremented in the
// same transaction that stores the order, conditional on enough stock
// remaining, so concurrent buyers can never oversell an item.
func (s *BuyerService) PlaceOrder(ctx context.Context, actor model.Actor, restaurantID, menuID uint64, in PlaceOrderInput) (*PlacedOrder, error) {
	if err := s.validate.Validate(&in); err != nil {
		return nil, err
	}
	if _, err := s.restaurants.GetByID(ctx, restaurantID); err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return nil, apperror.NotFound("Restaurant not found")
		}
		return nil, apperror.Internal("failed to load restaurant", err)
	}
	menu, err := s.menus.Get(ctx, restaurantID, menuID)
	if err != nil {
		if errors.Is(err, repository.ErrMenuNotFound) {
			return nil, apperror.NotFound("Menu not found")
		}
		return nil, apperror.Internal("failed to load menu", err)
	}
	if menu.Amount <= 0 {
		return nil, apperror.OutOfStock("sorry %s is empty", menu.Name)
	}

	due := menu.Price * int64(in.Quantity)
	if due > in.TotalPrice {
		return nil, apperror.InsufficientFunds("sorry not enough money, total is %d", due)
	}

	o := &model.Order{
		RestaurantID: restaurantID,
		MenuID:       menuID,
		UserID:       actor.ID,
		Quantity:     in.Quantity,
		TotalPrice:   due,
	}
	if err := s.orders.Place(ctx, o); err != nil {
		if errors.Is(err, repository.ErrInsufficientStock) {
			return nil, apperror.OutOfStock("sorry %s stock is not enough", menu.Name)
		}
		return nil, apperror.Internal("failed for create order", err)
	}
	s.publish(ctx, "buyer.order", o)
	return &PlacedOrder{Order: o, Change: in.TotalPrice - due}, nil
}

// Cancel withdraws a waiting order.
func (s *BuyerService) Cancel(ctx context.Context, actor model.Actor, orderID uint64) (*model.Order, error) {
	return s.transition(ctx, model.PartyBuyer, model.ActionCancel, orderID, actor.ID)
}

// Confirm acknowledges receipt and finishes the order.
func (s *BuyerService) Confirm(ctx context.Context, actor model.Actor, orderID uint64) (*model.Order, error) {
	return s.transition(ctx, model.PartyBuyer, model.ActionConfirm, orderID, actor.ID)
}

// Orders lists the buyer's orders.
func (s *BuyerService) Orders(ctx context.Context, actor model.Actor, p pagination.Params) ([]model.OrderSummary, pagination.Meta, error) {
	total, err := s.orders.Count(ctx, repository.ScopeUser, actor.ID)
	if err != nil {
		return nil, pagination.Meta{}, apperror.Internal("failed to count orders", err)
	}
	meta, err := pagination.Resolve(p, total, "sorry, you are not order yet")
	if err != nil {
		return nil, meta, err
	}
	items, err := s.orders.List(ctx, repository.ScopeUser, actor.ID, p.Skip(), p.Limit)
	if err != nil {
		return nil, meta, apperror.Internal("failed to list orders", err)
	}
	return items, meta, nil
}

// Order returns one of the buyer's orders.
func (s *BuyerService) Order(ctx context.Context, actor model.Actor, orderID uint64) (*model.Order, error) {
	o, err := s.orders.Get(ctx, repository.ScopeUser, orderID, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			return nil, apperror.NotFound("order not found")
		}
		return nil, apperror.Internal("failed to load order", err)
	}
	return o, nil
}

// Histories lists the buyer's history rows.
func (s *BuyerService) Histories(ctx context.Context, actor model.Actor, p pagination.Params) ([]model.HistorySummary, pagination.Meta, error) {
	total, err := s.histories.CountByUser(ctx, actor.ID)
	if err != nil {
		return nil, pagination.Meta{}, apperror.Internal("failed to count histories", err)
	}
	meta, err := pagination.Resolve(p, total, "histories not found")
	if err != nil {
		return nil, meta, err
	}
	items, err := s.histories.ListByUser(ctx, actor.ID, p.Skip(), p.Limit)
	if err != nil {
		return nil, meta, apperror.Internal("failed to list histories", err)
	}
	return items, meta, nil
}

// History returns one history row with its order.
func (s *BuyerService) History(ctx context.Context, actor model.Actor, historyID uint64) (*model.HistoryDetail, error) {
	h, err := s.histories.GetForUser(ctx, historyID, actor.ID)
	if err != nil {
		if errors.Is(err, repository.ErrHistoryNotFound) {
			return nil, apperror.NotFound("History not found")
		}
		return nil, apperror.Internal("failed to load history", err)
	}
	return h, nil
}
