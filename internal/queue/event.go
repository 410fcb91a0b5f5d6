// Package queue defines the order event payload and the background
// consumer that records events delivered over RabbitMQ.
package queue

import (
	"time"

	"github.com/iliyamo/food-ordering/internal/model"
)

// OrderEventsQueue is the durable queue carrying OrderEvent messages.
const OrderEventsQueue = "order.events"

// OrderEvent is published after an order is placed or changes status. It
// carries enough for downstream consumers to log or notify without
// querying the primary database.
type OrderEvent struct {
	Action       string            `json:"action"` // e.g. buyer.order, seller.confirm
	OrderID      uint64            `json:"order_id"`
	RestaurantID uint64            `json:"restaurant_id"`
	UserID       uint64            `json:"user_id"`
	MenuID       uint64            `json:"menu_id"`
	Status       model.OrderStatus `json:"status"`
	Quantity     int               `json:"quantity"`
	TotalPrice   int64             `json:"total_price"`
	OccurredAt   string            `json:"occurred_at"`
}

// NewOrderEvent snapshots o for action.
func NewOrderEvent(action string, o *model.Order) OrderEvent {
	return OrderEvent{
		Action:       action,
		OrderID:      o.ID,
		RestaurantID: o.RestaurantID,
		UserID:       o.UserID,
		MenuID:       o.MenuID,
		Status:       o.Status,
		Quantity:     o.Quantity,
		TotalPrice:   o.TotalPrice,
		OccurredAt:   time.Now().UTC().Format(time.RFC3339),
	}
}
