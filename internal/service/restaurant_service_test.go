package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/food-ordering/internal/apperror"
	"github.com/iliyamo/food-ordering/internal/model"
)

func newRestaurantSvc(st *memStore, img *fakeImages) *RestaurantService {
	log, _ := testLogger()
	return NewRestaurantService(st, menuStore{st}, img, newValidator(), log, "/static/banner.png", "/static/menu.png")
}

func strp(s string) *string { return &s }

func upload() *Upload { return &Upload{Filename: "x.png", Body: strings.NewReader("img")} }

var createInput = CreateRestaurantInput{Name: "Warung", Location: "Jakarta", OpenTime: "08:00", CloseTime: "22:00"}

func TestCreateRestaurant(t *testing.T) {
	st := newMemStore()
	img := &fakeImages{}
	svc := newRestaurantSvc(st, img)
	ctx := context.Background()
	seller := model.Actor{ID: 1, Role: model.RoleSeller}

	r, err := svc.Create(ctx, seller, createInput, nil)
	require.NoError(t, err)
	assert.Equal(t, "/static/banner.png", r.Banner)
	assert.Equal(t, seller.ID, r.OwnerID)

	// same owner again
	in := createInput
	in.Name = "Depot"
	_, err = svc.Create(ctx, seller, in, nil)
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, "Owner only can create one restaurant", err.Error())

	// same name, other owner; case matters
	_, err = svc.Create(ctx, model.Actor{ID: 2}, createInput, nil)
	assert.Equal(t, "Restaurant name already exists", err.Error())
	_, err = svc.Create(ctx, model.Actor{ID: 2}, CreateRestaurantInput{Name: "warung", Location: "Bogor", OpenTime: "08:00", CloseTime: "20:00"}, nil)
	assert.NoError(t, err)

	assert.Empty(t, img.uploaded, "checks run before any upload")
}

func TestCreateRestaurantValidation(t *testing.T) {
	svc := newRestaurantSvc(newMemStore(), &fakeImages{})
	_, err := svc.Create(context.Background(), model.Actor{ID: 1}, CreateRestaurantInput{Name: "ab"}, nil)
	var ae *apperror.Error
	require.ErrorAs(t, err, &ae)
	assert.Equal(t, apperror.KindValidation, ae.Kind)
	assert.Len(t, ae.Fields, 4)
}

func TestCreateRestaurantCompensatesUpload(t *testing.T) {
	st := newMemStore()
	st.failCreate = errBoom
	img := &fakeImages{failDel: errBoom}
	log, hook := testLogger()
	svc := NewRestaurantService(st, menuStore{st}, img, newValidator(), log, "/static/banner.png", "/static/menu.png")

	_, err := svc.Create(context.Background(), model.Actor{ID: 1}, createInput, upload())
	require.Error(t, err)
	// cleanup failure is logged, the original error survives
	assert.ErrorIs(t, err, errBoom)
	assert.True(t, apperror.Is(err, apperror.KindInternal))
	assert.Equal(t, img.uploaded, img.deleted)
	assert.Equal(t, "image cleanup failed", hook.LastEntry().Message)
}

func TestUpdateRestaurant(t *testing.T) {
	st := newMemStore()
	mine := st.seedRestaurant(1, "Warung")
	st.seedRestaurant(2, "Depot")
	img := &fakeImages{}
	svc := newRestaurantSvc(st, img)
	ctx := context.Background()

	// renaming to its own name is not a conflict
	r, err := svc.Update(ctx, mine.ID, UpdateRestaurantInput{Name: strp("Warung")}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Warung", r.Name)

	_, err = svc.Update(ctx, mine.ID, UpdateRestaurantInput{Name: strp("Depot")}, nil)
	assert.True(t, apperror.Is(err, apperror.KindConflict))

	r, err = svc.Update(ctx, mine.ID, UpdateRestaurantInput{Location: strp("Bandung")}, upload())
	require.NoError(t, err)
	assert.Equal(t, "Bandung", r.Location)
	assert.Equal(t, "Warung", r.Name)
	assert.Equal(t, img.uploaded[0], r.Banner)
	assert.Equal(t, []string{"/uploads/banner-restaurant/old.png"}, img.deleted)

	_, err = svc.Update(ctx, 999, UpdateRestaurantInput{}, nil)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestMenuLifecycle(t *testing.T) {
	st := newMemStore()
	r := st.seedRestaurant(1, "Warung")
	img := &fakeImages{}
	svc := newRestaurantSvc(st, img)
	ctx := context.Background()

	m, err := svc.CreateMenu(ctx, r.ID, CreateMenuInput{Name: "Nasi Goreng", Price: 15000, Description: "fried rice", Amount: 4}, upload())
	require.NoError(t, err)
	assert.Equal(t, img.uploaded[0], m.Picture)

	d, err := svc.Detail(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, d.Menus, 1)
	assert.Equal(t, "Nasi Goreng", d.Menus[0].Name)

	// duplicate name within the restaurant; the fresh upload is removed
	_, err = svc.CreateMenu(ctx, r.ID, CreateMenuInput{Name: "Nasi Goreng", Price: 1, Description: "again", Amount: 1}, upload())
	assert.True(t, apperror.Is(err, apperror.KindConflict))
	assert.Equal(t, []string{img.uploaded[1]}, img.deleted)

	other, err := svc.CreateMenu(ctx, r.ID, CreateMenuInput{Name: "Mie Goreng", Price: 12000, Description: "noodles", Amount: 2}, nil)
	require.NoError(t, err)
	assert.Equal(t, "/static/menu.png", other.Picture)

	// own name is fine, a sibling's name is not
	_, err = svc.UpdateMenu(ctx, r.ID, m.ID, UpdateMenuInput{Name: strp("Nasi Goreng")}, nil)
	require.NoError(t, err)
	_, err = svc.UpdateMenu(ctx, r.ID, m.ID, UpdateMenuInput{Name: strp("Mie Goreng")}, nil)
	assert.Equal(t, "Menu name already exists", err.Error())

	amount := 0
	upd, err := svc.UpdateMenu(ctx, r.ID, m.ID, UpdateMenuInput{Amount: &amount}, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, upd.Amount)
	assert.Equal(t, int64(15000), upd.Price)

	require.NoError(t, svc.DeleteMenu(ctx, r.ID, m.ID))
	assert.Contains(t, img.deleted, m.Picture)
	_, err = svc.GetMenu(ctx, r.ID, m.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))

	// the id stays listed on the restaurant
	rest, err := st.GetByID(ctx, r.ID)
	require.NoError(t, err)
	assert.Contains(t, rest.MenuIDs, m.ID)

	err = svc.DeleteMenu(ctx, r.ID, m.ID)
	assert.Equal(t, "Menu not found", err.Error())
}
