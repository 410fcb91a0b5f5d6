package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/food-ordering/internal/model"
)

// HistoryRepo persists the buyer-facing history projection. The unique
// index on order_id guarantees one row per order.
type HistoryRepo struct {
	db *sql.DB
}

func NewHistoryRepo(db *sql.DB) *HistoryRepo { return &HistoryRepo{db: db} }

// EnsureTx creates the history row for an order if none exists. An
// existing row keeps its status.
func (r *HistoryRepo) EnsureTx(ctx context.Context, tx DBTX, userID, orderID uint64, status model.HistoryStatus) error {
	_, err := tx.ExecContext(ctx,
		"INSERT IGNORE INTO histories (user_id, order_id, status) VALUES (?, ?, ?)", userID, orderID, status)
	return err
}

// UpsertTx creates the history row or overwrites the status of the
// existing one.
func (r *HistoryRepo) UpsertTx(ctx context.Context, tx DBTX, userID, orderID uint64, status model.HistoryStatus) error {
	const q = `INSERT INTO histories (user_id, order_id, status) VALUES (?, ?, ?)
	           ON DUPLICATE KEY UPDATE status = VALUES(status), updated_at = CURRENT_TIMESTAMP`
	_, err := tx.ExecContext(ctx, q, userID, orderID, status)
	return err
}

// CountByUser returns the number of history rows of a buyer.
func (r *HistoryRepo) CountByUser(ctx context.Context, userID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM histories WHERE user_id = ?", userID).Scan(&n)
	return n, err
}

// ListByUser returns one page of a buyer's history, newest first.
func (r *HistoryRepo) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.HistorySummary, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, status FROM histories WHERE user_id = ? ORDER BY id DESC LIMIT ? OFFSET ?", userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.HistorySummary{}
	for rows.Next() {
		var h model.HistorySummary
		if err := rows.Scan(&h.ID, &h.Status); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// GetForUser returns one history row of the buyer along with its order.
func (r *HistoryRepo) GetForUser(ctx context.Context, historyID, userID uint64) (*model.HistoryDetail, error) {
	const q = `SELECT h.id, h.user_id, h.order_id, h.status, h.created_at, h.updated_at,
	                  o.id, o.restaurant_id, o.menu_id, o.user_id, o.quantity, o.total_price, o.status, o.order_at, o.updated_at
	           FROM histories h
	           JOIN orders o ON o.id = h.order_id
	           WHERE h.id = ? AND h.user_id = ?`
	var d model.HistoryDetail
	err := r.db.QueryRowContext(ctx, q, historyID, userID).Scan(
		&d.ID, &d.UserID, &d.OrderID, &d.Status, &d.CreatedAt, &d.UpdatedAt,
		&d.Order.ID, &d.Order.RestaurantID, &d.Order.MenuID, &d.Order.UserID, &d.Order.Quantity,
		&d.Order.TotalPrice, &d.Order.Status, &d.Order.OrderAt, &d.Order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHistoryNotFound
		}
		return nil, err
	}
	return &d, nil
}
