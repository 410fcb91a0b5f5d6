package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/food-ordering/internal/model"
)

// OrderScope selects which party's id filters an order write. Buyers are
// matched on user_id, sellers on restaurant_id.
type OrderScope string

const (
	ScopeUser       OrderScope = "user_id"
	ScopeRestaurant OrderScope = "restaurant_id"
)

// ScopeFor returns the scope column used by a party.
func ScopeFor(p model.Party) OrderScope {
	if p == model.PartySeller {
		return ScopeRestaurant
	}
	return ScopeUser
}

// OrderRepo owns the order ledger: atomic placement with stock decrement
// and status transitions that keep the history projection in step.
type OrderRepo struct {
	db        *sql.DB
	menus     *MenuRepo
	histories *HistoryRepo
}

func NewOrderRepo(db *sql.DB, menus *MenuRepo, histories *HistoryRepo) *OrderRepo {
	return &OrderRepo{db: db, menus: menus, histories: histories}
}

const orderColumns = "id, restaurant_id, menu_id, user_id, quantity, total_price, status, order_at, updated_at"

func scanOrder(row interface{ Scan(...any) error }, o *model.Order) error {
	return row.Scan(&o.ID, &o.RestaurantID, &o.MenuID, &o.UserID, &o.Quantity, &o.TotalPrice, &o.Status, &o.OrderAt, &o.UpdatedAt)
}

// Place decrements stock and inserts the order in a single transaction.
// The decrement runs first and is conditional on enough stock remaining;
// if it or the insert fails nothing is committed.
func (r *OrderRepo) Place(ctx context.Context, o *model.Order) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := r.menus.DecrementStockTx(ctx, tx, o.RestaurantID, o.MenuID, o.Quantity); err != nil {
			return err
		}
		const q = `INSERT INTO orders (restaurant_id, menu_id, user_id, quantity, total_price, status) VALUES (?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, q, o.RestaurantID, o.MenuID, o.UserID, o.Quantity, o.TotalPrice, model.OrderWaiting)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		return scanOrder(tx.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", id), o)
	})
}

// Transition applies t to the order identified by (orderID, scope = scopeID).
// The row is locked for the duration of the transaction. When the current
// status does not allow t, the order is returned unchanged with applied=false.
// A missing row, or one owned by another party, yields ErrOrderNotFound.
func (r *OrderRepo) Transition(ctx context.Context, t model.Transition, scope OrderScope, orderID, scopeID uint64) (order *model.Order, applied bool, err error) {
	err = withTx(ctx, r.db, func(tx *sql.Tx) error {
		var o model.Order
		q := "SELECT " + orderColumns + " FROM orders WHERE id = ? AND " + string(scope) + " = ? FOR UPDATE"
		if err := scanOrder(tx.QueryRowContext(ctx, q, orderID, scopeID), &o); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrOrderNotFound
			}
			return err
		}
		order = &o
		if !t.Allows(o.Status) {
			return nil
		}
		upd := "UPDATE orders SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND " + string(scope) + " = ? AND status IN (" + placeholders(len(t.From)) + ")"
		args := []any{t.To, orderID, scopeID}
		for _, s := range t.From {
			args = append(args, s)
		}
		res, err := tx.ExecContext(ctx, upd, args...)
		if err != nil {
			return err
		}
		if n, err := res.RowsAffected(); err != nil || n == 0 {
			if err == nil {
				err = ErrOrderNotFound
			}
			return err
		}
		switch t.History {
		case model.HistoryEnsure:
			err = r.histories.EnsureTx(ctx, tx, o.UserID, o.ID, t.HistoryStatus)
		case model.HistoryUpsert:
			err = r.histories.UpsertTx(ctx, tx, o.UserID, o.ID, t.HistoryStatus)
		}
		if err != nil {
			return err
		}
		applied = true
		return scanOrder(tx.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM orders WHERE id = ?", orderID), order)
	})
	if err != nil {
		return nil, false, err
	}
	return order, applied, nil
}

// Get returns an order scoped to a party.
func (r *OrderRepo) Get(ctx context.Context, scope OrderScope, orderID, scopeID uint64) (*model.Order, error) {
	var o model.Order
	q := "SELECT " + orderColumns + " FROM orders WHERE id = ? AND " + string(scope) + " = ?"
	if err := scanOrder(r.db.QueryRowContext(ctx, q, orderID, scopeID), &o); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// Count returns the number of orders of a party.
func (r *OrderRepo) Count(ctx context.Context, scope OrderScope, scopeID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM orders WHERE "+string(scope)+" = ?", scopeID).Scan(&n)
	return n, err
}

// List returns one page of a party's orders, newest first.
func (r *OrderRepo) List(ctx context.Context, scope OrderScope, scopeID uint64, offset, limit int) ([]model.OrderSummary, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, status FROM orders WHERE "+string(scope)+" = ? ORDER BY id DESC LIMIT ? OFFSET ?", scopeID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.OrderSummary{}
	for rows.Next() {
		var s model.OrderSummary
		if err := rows.Scan(&s.ID, &s.Status); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
