package model

import "time"

// MenuItem is a dish sold by a restaurant. Amount is the remaining
// stock and never drops below zero; only a successful order placement
// decrements it.
type MenuItem struct {
	ID           uint64    `json:"id"`            // menus.id
	RestaurantID uint64    `json:"restaurant_id"` // menus.restaurant_id
	Name         string    `json:"name"`          // menus.name (unique per restaurant)
	Price        int64     `json:"price"`         // menus.price
	Description  string    `json:"description"`   // menus.description
	Amount       int       `json:"amount"`        // menus.amount
	Picture      string    `json:"picture"`       // menus.picture
	CreatedAt    time.Time `json:"created_at"`    // menus.created_at
	UpdatedAt    time.Time `json:"updated_at"`    // menus.updated_at
}
