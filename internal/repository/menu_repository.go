package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/food-ordering/internal/model"
)

// MenuRepo encapsulates database operations for menu items.
type MenuRepo struct {
	db          *sql.DB
	restaurants *RestaurantRepo
}

// NewMenuRepo constructs a MenuRepo. The restaurant repo is used to keep
// the restaurant's menu id list in step with inserts.
func NewMenuRepo(db *sql.DB, restaurants *RestaurantRepo) *MenuRepo {
	return &MenuRepo{db: db, restaurants: restaurants}
}

const menuColumns = "id, restaurant_id, name, price, description, amount, picture, created_at, updated_at"

func scanMenu(row interface{ Scan(...any) error }, m *model.MenuItem) error {
	return row.Scan(&m.ID, &m.RestaurantID, &m.Name, &m.Price, &m.Description, &m.Amount, &m.Picture, &m.CreatedAt, &m.UpdatedAt)
}

// Create inserts the menu item and appends its id to the restaurant in one
// transaction. A duplicate name within the restaurant yields ErrMenuNameTaken.
func (r *MenuRepo) Create(ctx context.Context, m *model.MenuItem) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		const q = `INSERT INTO menus (restaurant_id, name, price, description, amount, picture) VALUES (?, ?, ?, ?, ?, ?)`
		res, err := tx.ExecContext(ctx, q, m.RestaurantID, m.Name, m.Price, m.Description, m.Amount, m.Picture)
		if err != nil {
			if _, dup := duplicateKey(err); dup {
				return ErrMenuNameTaken
			}
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if err := r.restaurants.AppendMenuTx(ctx, tx, m.RestaurantID, uint64(id)); err != nil {
			return err
		}
		return scanMenu(tx.QueryRowContext(ctx, "SELECT "+menuColumns+" FROM menus WHERE id = ?", id), m)
	})
}

// Get fetches a menu item scoped to its restaurant.
func (r *MenuRepo) Get(ctx context.Context, restaurantID, menuID uint64) (*model.MenuItem, error) {
	var m model.MenuItem
	err := scanMenu(r.db.QueryRowContext(ctx,
		"SELECT "+menuColumns+" FROM menus WHERE id = ? AND restaurant_id = ?", menuID, restaurantID), &m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMenuNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Update writes every mutable column of the item.
func (r *MenuRepo) Update(ctx context.Context, m *model.MenuItem) error {
	const q = `UPDATE menus
	           SET name = ?, price = ?, description = ?, amount = ?, picture = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND restaurant_id = ?`
	if _, err := r.db.ExecContext(ctx, q, m.Name, m.Price, m.Description, m.Amount, m.Picture, m.ID, m.RestaurantID); err != nil {
		if _, dup := duplicateKey(err); dup {
			return ErrMenuNameTaken
		}
		return err
	}
	updated, err := r.Get(ctx, m.RestaurantID, m.ID)
	if err != nil {
		return err
	}
	*m = *updated
	return nil
}

// Delete removes the item and returns it so the caller can clean up its
// picture. The restaurant's menu id list is left untouched.
func (r *MenuRepo) Delete(ctx context.Context, restaurantID, menuID uint64) (*model.MenuItem, error) {
	var deleted *model.MenuItem
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		var m model.MenuItem
		err := scanMenu(tx.QueryRowContext(ctx,
			"SELECT "+menuColumns+" FROM menus WHERE id = ? AND restaurant_id = ? FOR UPDATE", menuID, restaurantID), &m)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrMenuNotFound
			}
			return err
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM menus WHERE id = ? AND restaurant_id = ?", menuID, restaurantID); err != nil {
			return err
		}
		deleted = &m
		return nil
	})
	return deleted, err
}

// DecrementStockTx subtracts qty only when enough stock remains. It returns
// ErrInsufficientStock when no row matched, leaving the amount unchanged.
func (r *MenuRepo) DecrementStockTx(ctx context.Context, tx DBTX, restaurantID, menuID uint64, qty int) error {
	const q = `UPDATE menus SET amount = amount - ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ? AND restaurant_id = ? AND amount >= ?`
	res, err := tx.ExecContext(ctx, q, qty, menuID, restaurantID, qty)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrInsufficientStock
	}
	return nil
}
