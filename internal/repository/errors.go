// Package repository defines the data access layer. Every query is plain
// SQL over database/sql. Sentinel errors let the workflows distinguish
// failure scenarios without inspecting driver errors.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
)

var (
	ErrRestaurantNotFound = errors.New("restaurant not found")
	ErrMenuNotFound       = errors.New("menu not found")
	ErrOrderNotFound      = errors.New("order not found")
	ErrHistoryNotFound    = errors.New("history not found")
	ErrUserNotFound       = errors.New("user not found")

	// ErrRestaurantNameTaken and ErrOwnerHasRestaurant come from the unique
	// indexes on restaurants, not from a pre-check.
	ErrRestaurantNameTaken = errors.New("restaurant name already exists")
	ErrOwnerHasRestaurant  = errors.New("owner already has a restaurant")
	ErrMenuNameTaken       = errors.New("menu name already exists")
	ErrUserExists          = errors.New("username or email already exists")
	ErrUsernameTaken       = errors.New("username already exists")

	// ErrInsufficientStock is returned when the conditional decrement
	// matched no row.
	ErrInsufficientStock = errors.New("insufficient stock")

	ErrRefreshInvalid = errors.New("refresh token invalid")
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const errDuplicateEntry = 1062

// duplicateKey returns the violated index name when err is a MySQL
// duplicate-key error.
func duplicateKey(err error) (string, bool) {
	var me *mysql.MySQLError
	if !errors.As(err, &me) || me.Number != errDuplicateEntry {
		return "", false
	}
	// message: Duplicate entry 'x' for key 'table.uq_name'
	msg := me.Message
	if i := strings.LastIndex(msg, "for key '"); i >= 0 {
		key := strings.TrimSuffix(msg[i+len("for key '"):], "'")
		if j := strings.LastIndex(key, "."); j >= 0 {
			key = key[j+1:]
		}
		return key, true
	}
	return "", true
}

// withTx runs fn inside a transaction, committing only when fn succeeds.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}
