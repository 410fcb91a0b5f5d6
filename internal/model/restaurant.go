package model

import "time"

// Restaurant is a venue owned by exactly one seller. Names are unique
// across the whole catalog and an owner may hold at most one restaurant.
//
// Fields:
//  ID        – primary key identifier.
//  OwnerID   – user ID of the seller who owns the restaurant (unique).
//  Name      – globally unique restaurant name.
//  Location  – free-form address.
//  Banner    – URL of the banner image.
//  OpenTime  – opening time such as "08:00".
//  CloseTime – closing time such as "22:00".
//  MenuIDs   – ids appended whenever a menu item is created.
type Restaurant struct {
	ID        uint64    `json:"id"`         // restaurants.id
	OwnerID   uint64    `json:"owner_id"`   // restaurants.owner_id
	Name      string    `json:"name"`       // restaurants.name
	Location  string    `json:"location"`   // restaurants.location
	Banner    string    `json:"banner"`     // restaurants.banner
	OpenTime  string    `json:"open_time"`  // restaurants.open_time
	CloseTime string    `json:"close_time"` // restaurants.close_time
	MenuIDs   []uint64  `json:"menus"`      // restaurant_menus.menu_id
	CreatedAt time.Time `json:"created_at"` // restaurants.created_at
	UpdatedAt time.Time `json:"updated_at"` // restaurants.updated_at
}

// MenuSummary is the compact menu projection shown on a restaurant page.
type MenuSummary struct {
	ID      uint64 `json:"id"`
	Name    string `json:"name"`
	Price   int64  `json:"price"`
	Picture string `json:"picture"`
}

// RestaurantDetail is a restaurant together with its menu summaries.
type RestaurantDetail struct {
	ID        uint64        `json:"id"`
	Name      string        `json:"name"`
	Location  string        `json:"location"`
	Banner    string        `json:"banner"`
	OpenTime  string        `json:"open_time"`
	CloseTime string        `json:"close_time"`
	Menus     []MenuSummary `json:"menus"`
}
