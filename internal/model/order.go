package model

import "time"

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderWaiting   OrderStatus = "waiting"
	OrderConfirmed OrderStatus = "confirmed"
	OrderDelivered OrderStatus = "delivered"
	OrderCanceled  OrderStatus = "canceled"
	OrderFinished  OrderStatus = "finished"
)

// Terminal reports whether no further transition is permitted.
func (s OrderStatus) Terminal() bool {
	return s == OrderCanceled || s == OrderFinished
}

// Order is a buyer's purchase of one menu item. TotalPrice is computed
// server side as price * quantity at placement time.
type Order struct {
	ID           uint64      `json:"id"`            // orders.id
	RestaurantID uint64      `json:"restaurant_id"` // orders.restaurant_id
	MenuID       uint64      `json:"menu_id"`       // orders.menu_id
	UserID       uint64      `json:"user_id"`       // orders.user_id
	Quantity     int         `json:"quantity"`      // orders.quantity
	TotalPrice   int64       `json:"total_price"`   // orders.total_price
	Status       OrderStatus `json:"status"`        // orders.status
	OrderAt      time.Time   `json:"order_at"`      // orders.order_at
	UpdatedAt    time.Time   `json:"updated_at"`    // orders.updated_at
}

// OrderSummary is the list projection of an order.
type OrderSummary struct {
	ID     uint64      `json:"id"`
	Status OrderStatus `json:"status"`
}
