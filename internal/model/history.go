package model

import "time"

// HistoryStatus is the coarse buyer-facing status of an order.
type HistoryStatus string

const (
	HistoryWaited   HistoryStatus = "waited"
	HistoryCanceled HistoryStatus = "canceled"
	HistoryFinished HistoryStatus = "finished"
)

// History mirrors one order for buyer history views. There is at most
// one row per order id.
type History struct {
	ID        uint64        `json:"id"`         // histories.id
	UserID    uint64        `json:"user_id"`    // histories.user_id
	OrderID   uint64        `json:"order_id"`   // histories.order_id (unique)
	Status    HistoryStatus `json:"status"`     // histories.status
	CreatedAt time.Time     `json:"created_at"` // histories.created_at
	UpdatedAt time.Time     `json:"updated_at"` // histories.updated_at
}

// HistorySummary is the list projection of a history row.
type HistorySummary struct {
	ID     uint64        `json:"id"`
	Status HistoryStatus `json:"status"`
}

// HistoryDetail is a history row with the order it mirrors.
type HistoryDetail struct {
	History
	Order Order `json:"order"`
}
