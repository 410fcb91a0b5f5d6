// Package service holds the buyer, seller, catalog and account workflows.
// Every workflow receives the acting model.Actor explicitly and returns
// *apperror.Error values that the HTTP layer renders as they are.
package service

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/queue"
	"github.com/iliyamo/food-ordering/internal/repository"
	"github.com/iliyamo/food-ordering/internal/storage"
)

// Validator checks a request struct and reports every failing field.
type Validator interface {
	Validate(i any) error
}

type RestaurantStore interface {
	Create(ctx context.Context, r *model.Restaurant) error
	GetByID(ctx context.Context, id uint64) (*model.Restaurant, error)
	GetByOwner(ctx context.Context, ownerID uint64) (*model.Restaurant, error)
	GetByName(ctx context.Context, name string) (*model.Restaurant, error)
	OwnerOf(ctx context.Context, id uint64) (uint64, error)
	Update(ctx context.Context, r *model.Restaurant) error
	Detail(ctx context.Context, id uint64) (*model.RestaurantDetail, error)
}

type MenuStore interface {
	Create(ctx context.Context, m *model.MenuItem) error
	Get(ctx context.Context, restaurantID, menuID uint64) (*model.MenuItem, error)
	Update(ctx context.Context, m *model.MenuItem) error
	Delete(ctx context.Context, restaurantID, menuID uint64) (*model.MenuItem, error)
}

// OrderLedger persists orders. Place and Transition are atomic with
// respect to stock and history.
type OrderLedger interface {
	Place(ctx context.Context, o *model.Order) error
	Transition(ctx context.Context, t model.Transition, scope repository.OrderScope, orderID, scopeID uint64) (*model.Order, bool, error)
	Get(ctx context.Context, scope repository.OrderScope, orderID, scopeID uint64) (*model.Order, error)
	Count(ctx context.Context, scope repository.OrderScope, scopeID uint64) (int, error)
	List(ctx context.Context, scope repository.OrderScope, scopeID uint64, offset, limit int) ([]model.OrderSummary, error)
}

type HistoryStore interface {
	CountByUser(ctx context.Context, userID uint64) (int, error)
	ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.HistorySummary, error)
	GetForUser(ctx context.Context, historyID, userID uint64) (*model.HistoryDetail, error)
}

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id uint64) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	SetVerificationToken(ctx context.Context, email, token string, exp time.Time) error
	Verify(ctx context.Context, email, token string, now time.Time) (bool, error)
	SetResetToken(ctx context.Context, email, token string, exp time.Time) error
	ResetPassword(ctx context.Context, email, token, hash string, now time.Time) (bool, error)
	UpdateProfile(ctx context.Context, id uint64, username, picture string) (*model.User, error)
}

type TokenStore interface {
	StoreRefresh(ctx context.Context, userID uint64, tokenHash string, ttl time.Duration) error
	ValidateRefresh(ctx context.Context, userID uint64, tokenHash string) error
	Revoke(ctx context.Context, userID uint64) error
}

// EventPublisher delivers order events. Failures never fail a workflow.
type EventPublisher interface {
	PublishOrderEvent(ctx context.Context, ev queue.OrderEvent) error
}

// Upload is an optional image attached to a request.
type Upload struct {
	Filename string
	Body     io.Reader
}

// images wraps an ImageStore with the compensation rules shared by the
// catalog and account workflows.
type images struct {
	store storage.ImageStore
	log   logrus.FieldLogger
}

// put uploads up when present and returns fallback otherwise.
func (im images) put(ctx context.Context, folder string, up *Upload, fallback string) (url string, uploaded bool, err error) {
	if up == nil || up.Body == nil {
		return fallback, false, nil
	}
	url, err = im.store.Upload(ctx, folder, up.Filename, up.Body)
	if err != nil {
		return "", false, err
	}
	return url, true, nil
}

// discard removes an image best-effort. A failure is logged and never
// replaces the error the caller is about to return.
func (im images) discard(ctx context.Context, url string) {
	if url == "" {
		return
	}
	if err := im.store.Delete(context.WithoutCancel(ctx), url); err != nil {
		im.log.WithError(err).WithField("url", url).Warn("image cleanup failed")
	}
}
