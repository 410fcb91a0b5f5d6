package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/food-ordering/internal/model"
)

// RestaurantRepo encapsulates all database queries related to restaurants
// and their menu id list.
type RestaurantRepo struct {
	db *sql.DB
}

// NewRestaurantRepo constructs a RestaurantRepo with the provided DB handle.
func NewRestaurantRepo(db *sql.DB) *RestaurantRepo {
	return &RestaurantRepo{db: db}
}

const restaurantColumns = "id, owner_id, name, location, banner, open_time, close_time, created_at, updated_at"

func scanRestaurant(row interface{ Scan(...any) error }, r *model.Restaurant) error {
	return row.Scan(&r.ID, &r.OwnerID, &r.Name, &r.Location, &r.Banner, &r.OpenTime, &r.CloseTime, &r.CreatedAt, &r.UpdatedAt)
}

// restaurantConflict maps a unique-index violation to the matching sentinel.
func restaurantConflict(err error) error {
	key, ok := duplicateKey(err)
	if !ok {
		return err
	}
	if key == "uq_restaurants_owner" {
		return ErrOwnerHasRestaurant
	}
	return ErrRestaurantNameTaken
}

// Create inserts a restaurant and reads back the stored row. Name and owner
// uniqueness are enforced by the table's unique indexes.
func (r *RestaurantRepo) Create(ctx context.Context, rest *model.Restaurant) error {
	const q = `INSERT INTO restaurants (owner_id, name, location, banner, open_time, close_time) VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, rest.OwnerID, rest.Name, rest.Location, rest.Banner, rest.OpenTime, rest.CloseTime)
	if err != nil {
		return restaurantConflict(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rest = *created
	return nil
}

// GetByID fetches a restaurant and its menu id list.
func (r *RestaurantRepo) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	return r.getOne(ctx, "SELECT "+restaurantColumns+" FROM restaurants WHERE id = ?", id)
}

// GetByOwner fetches the single restaurant of an owner.
func (r *RestaurantRepo) GetByOwner(ctx context.Context, ownerID uint64) (*model.Restaurant, error) {
	return r.getOne(ctx, "SELECT "+restaurantColumns+" FROM restaurants WHERE owner_id = ?", ownerID)
}

// GetByName fetches a restaurant by exact (case-sensitive) name.
func (r *RestaurantRepo) GetByName(ctx context.Context, name string) (*model.Restaurant, error) {
	return r.getOne(ctx, "SELECT "+restaurantColumns+" FROM restaurants WHERE name = ?", name)
}

func (r *RestaurantRepo) getOne(ctx context.Context, q string, arg any) (*model.Restaurant, error) {
	var rest model.Restaurant
	if err := scanRestaurant(r.db.QueryRowContext(ctx, q, arg), &rest); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	ids, err := r.menuIDs(ctx, rest.ID)
	if err != nil {
		return nil, err
	}
	rest.MenuIDs = ids
	return &rest, nil
}

func (r *RestaurantRepo) menuIDs(ctx context.Context, restaurantID uint64) ([]uint64, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT menu_id FROM restaurant_menus WHERE restaurant_id = ? ORDER BY created_at, menu_id", restaurantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	ids := []uint64{}
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// OwnerOf returns the owner id of a restaurant.
func (r *RestaurantRepo) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	var owner uint64
	err := r.db.QueryRowContext(ctx, "SELECT owner_id FROM restaurants WHERE id = ?", id).Scan(&owner)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrRestaurantNotFound
	}
	return owner, err
}

// Update writes every mutable column. A rename that collides with another
// restaurant surfaces as ErrRestaurantNameTaken.
func (r *RestaurantRepo) Update(ctx context.Context, rest *model.Restaurant) error {
	const q = `UPDATE restaurants
	           SET name = ?, location = ?, banner = ?, open_time = ?, close_time = ?, updated_at = CURRENT_TIMESTAMP
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, rest.Name, rest.Location, rest.Banner, rest.OpenTime, rest.CloseTime, rest.ID)
	if err != nil {
		return restaurantConflict(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// MySQL reports 0 when nothing changed; confirm the row exists.
		if _, err := r.OwnerOf(ctx, rest.ID); err != nil {
			return err
		}
	}
	updated, err := r.GetByID(ctx, rest.ID)
	if err != nil {
		return err
	}
	*rest = *updated
	return nil
}

// AppendMenuTx records a new menu id on the restaurant.
func (r *RestaurantRepo) AppendMenuTx(ctx context.Context, tx DBTX, restaurantID, menuID uint64) error {
	_, err := tx.ExecContext(ctx, "INSERT INTO restaurant_menus (restaurant_id, menu_id) VALUES (?, ?)", restaurantID, menuID)
	return err
}

// Detail returns the restaurant page: its fields plus a summary of every
// listed menu that still exists.
func (r *RestaurantRepo) Detail(ctx context.Context, id uint64) (*model.RestaurantDetail, error) {
	var d model.RestaurantDetail
	err := r.db.QueryRowContext(ctx,
		"SELECT id, name, location, banner, open_time, close_time FROM restaurants WHERE id = ?", id).
		Scan(&d.ID, &d.Name, &d.Location, &d.Banner, &d.OpenTime, &d.CloseTime)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRestaurantNotFound
		}
		return nil, err
	}
	const q = `SELECT m.id, m.name, m.price, m.picture
	           FROM restaurant_menus rm
	           JOIN menus m ON m.id = rm.menu_id AND m.restaurant_id = rm.restaurant_id
	           WHERE rm.restaurant_id = ?
	           ORDER BY rm.created_at, rm.menu_id`
	rows, err := r.db.QueryContext(ctx, q, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	d.Menus = []model.MenuSummary{}
	for rows.Next() {
		var m model.MenuSummary
		if err := rows.Scan(&m.ID, &m.Name, &m.Price, &m.Picture); err != nil {
			return nil, err
		}
		d.Menus = append(d.Menus, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &d, nil
}
