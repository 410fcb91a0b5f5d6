package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/iliyamo/food-ordering/internal/model"
	"github.com/iliyamo/food-ordering/internal/queue"
	"github.com/iliyamo/food-ordering/internal/repository"
	"github.com/iliyamo/food-ordering/internal/validation"
)

// memStore is an in-memory catalog and ledger with the same atomicity
// guarantees as the SQL repositories: one mutex stands in for the
// transaction.
type memStore struct {
	mu          sync.Mutex
	restaurants map[uint64]*model.Restaurant
	menus       map[uint64]*model.MenuItem
	orders      map[uint64]*model.Order
	histories   map[uint64]*model.History // by order id
	nextID      uint64

	failPlace     error // returned by Place after the stock check
	failCreate    error // returned by restaurant/menu writes
	ensureCalls   int
	historyWrites int
}

func newMemStore() *memStore {
	return &memStore{
		restaurants: map[uint64]*model.Restaurant{},
		menus:       map[uint64]*model.MenuItem{},
		orders:      map[uint64]*model.Order{},
		histories:   map[uint64]*model.History{},
	}
}

func (m *memStore) id() uint64 { m.nextID++; return m.nextID }

func (m *memStore) seedRestaurant(owner uint64, name string) *model.Restaurant {
	m.mu.Lock()
	defer m.mu.Unlock()
	r := &model.Restaurant{ID: m.id(), OwnerID: owner, Name: name, Banner: "/uploads/banner-restaurant/old.png"}
	m.restaurants[r.ID] = r
	return r
}

func (m *memStore) seedMenu(restaurantID uint64, name string, price int64, amount int) *model.MenuItem {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := &model.MenuItem{ID: m.id(), RestaurantID: restaurantID, Name: name, Price: price, Amount: amount, Picture: "/uploads/menu/old.png"}
	m.menus[it.ID] = it
	r := m.restaurants[restaurantID]
	r.MenuIDs = append(r.MenuIDs, it.ID)
	return it
}

func (m *memStore) seedOrder(restaurantID, menuID, userID uint64, status model.OrderStatus) *model.Order {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := &model.Order{ID: m.id(), RestaurantID: restaurantID, MenuID: menuID, UserID: userID, Quantity: 1, TotalPrice: 100, Status: status}
	m.orders[o.ID] = o
	return o
}

func (m *memStore) amount(menuID uint64) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.menus[menuID].Amount
}

func (m *memStore) orderCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.orders)
}

// RestaurantStore

func (m *memStore) Create(ctx context.Context, r *model.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	for _, x := range m.restaurants {
		if x.OwnerID == r.OwnerID {
			return repository.ErrOwnerHasRestaurant
		}
		if x.Name == r.Name {
			return repository.ErrRestaurantNameTaken
		}
	}
	r.ID = m.id()
	cp := *r
	m.restaurants[r.ID] = &cp
	return nil
}

func (m *memStore) GetByID(ctx context.Context, id uint64) (*model.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.restaurants[id]
	if !ok {
		return nil, repository.ErrRestaurantNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *memStore) find(pred func(*model.Restaurant) bool) (*model.Restaurant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.restaurants {
		if pred(r) {
			cp := *r
			return &cp, nil
		}
	}
	return nil, repository.ErrRestaurantNotFound
}

func (m *memStore) GetByOwner(ctx context.Context, ownerID uint64) (*model.Restaurant, error) {
	return m.find(func(r *model.Restaurant) bool { return r.OwnerID == ownerID })
}

func (m *memStore) GetByName(ctx context.Context, name string) (*model.Restaurant, error) {
	return m.find(func(r *model.Restaurant) bool { return r.Name == name })
}

func (m *memStore) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	r, err := m.GetByID(ctx, id)
	if err != nil {
		return 0, err
	}
	return r.OwnerID, nil
}

func (m *memStore) Update(ctx context.Context, r *model.Restaurant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	if _, ok := m.restaurants[r.ID]; !ok {
		return repository.ErrRestaurantNotFound
	}
	for _, x := range m.restaurants {
		if x.ID != r.ID && x.Name == r.Name {
			return repository.ErrRestaurantNameTaken
		}
	}
	cp := *r
	m.restaurants[r.ID] = &cp
	return nil
}

func (m *memStore) Detail(ctx context.Context, id uint64) (*model.RestaurantDetail, error) {
	r, err := m.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	d := &model.RestaurantDetail{ID: r.ID, Name: r.Name, Menus: []model.MenuSummary{}}
	for _, mid := range r.MenuIDs {
		if it, ok := m.menus[mid]; ok {
			d.Menus = append(d.Menus, model.MenuSummary{ID: it.ID, Name: it.Name, Price: it.Price, Picture: it.Picture})
		}
	}
	return d, nil
}

// menuStore adapts memStore to MenuStore; the method names collide with
// the restaurant ones.
type menuStore struct{ *memStore }

func (s menuStore) Create(ctx context.Context, it *model.MenuItem) error {
	m := s.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failCreate != nil {
		return m.failCreate
	}
	for _, x := range m.menus {
		if x.RestaurantID == it.RestaurantID && x.Name == it.Name {
			return repository.ErrMenuNameTaken
		}
	}
	it.ID = m.id()
	cp := *it
	m.menus[it.ID] = &cp
	r := m.restaurants[it.RestaurantID]
	r.MenuIDs = append(r.MenuIDs, it.ID)
	return nil
}

func (s menuStore) Get(ctx context.Context, restaurantID, menuID uint64) (*model.MenuItem, error) {
	m := s.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.menus[menuID]
	if !ok || it.RestaurantID != restaurantID {
		return nil, repository.ErrMenuNotFound
	}
	cp := *it
	return &cp, nil
}

func (s menuStore) Update(ctx context.Context, it *model.MenuItem) error {
	m := s.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, x := range m.menus {
		if x.ID != it.ID && x.RestaurantID == it.RestaurantID && x.Name == it.Name {
			return repository.ErrMenuNameTaken
		}
	}
	cp := *it
	m.menus[it.ID] = &cp
	return nil
}

func (s menuStore) Delete(ctx context.Context, restaurantID, menuID uint64) (*model.MenuItem, error) {
	m := s.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.menus[menuID]
	if !ok || it.RestaurantID != restaurantID {
		return nil, repository.ErrMenuNotFound
	}
	delete(m.menus, menuID)
	return it, nil
}

// OrderLedger

func (m *memStore) Place(ctx context.Context, o *model.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.menus[o.MenuID]
	if !ok || it.RestaurantID != o.RestaurantID || it.Amount < o.Quantity {
		return repository.ErrInsufficientStock
	}
	if m.failPlace != nil {
		return m.failPlace // nothing applied, like a rolled back transaction
	}
	it.Amount -= o.Quantity
	o.ID = m.id()
	o.Status = model.OrderWaiting
	o.OrderAt = time.Now()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func scoped(o *model.Order, scope repository.OrderScope, scopeID uint64) bool {
	if scope == repository.ScopeRestaurant {
		return o.RestaurantID == scopeID
	}
	return o.UserID == scopeID
}

func (m *memStore) Transition(ctx context.Context, t model.Transition, scope repository.OrderScope, orderID, scopeID uint64) (*model.Order, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || !scoped(o, scope, scopeID) {
		return nil, false, repository.ErrOrderNotFound
	}
	if !t.Allows(o.Status) {
		cp := *o
		return &cp, false, nil
	}
	o.Status = t.To
	switch t.History {
	case model.HistoryEnsure:
		m.ensureCalls++
		if _, ok := m.histories[o.ID]; !ok {
			m.historyWrites++
			m.histories[o.ID] = &model.History{ID: m.id(), UserID: o.UserID, OrderID: o.ID, Status: t.HistoryStatus}
		}
	case model.HistoryUpsert:
		m.historyWrites++
		if h, ok := m.histories[o.ID]; ok {
			h.Status = t.HistoryStatus
		} else {
			m.histories[o.ID] = &model.History{ID: m.id(), UserID: o.UserID, OrderID: o.ID, Status: t.HistoryStatus}
		}
	}
	cp := *o
	return &cp, true, nil
}

func (m *memStore) Get(ctx context.Context, scope repository.OrderScope, orderID, scopeID uint64) (*model.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[orderID]
	if !ok || !scoped(o, scope, scopeID) {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *memStore) scopedIDs(scope repository.OrderScope, scopeID uint64) []uint64 {
	var ids []uint64
	for id, o := range m.orders {
		if scoped(o, scope, scopeID) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] > ids[j] })
	return ids
}

func (m *memStore) Count(ctx context.Context, scope repository.OrderScope, scopeID uint64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scopedIDs(scope, scopeID)), nil
}

func (m *memStore) List(ctx context.Context, scope repository.OrderScope, scopeID uint64, offset, limit int) ([]model.OrderSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.scopedIDs(scope, scopeID)
	out := []model.OrderSummary{}
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		out = append(out, model.OrderSummary{ID: ids[i], Status: m.orders[ids[i]].Status})
	}
	return out, nil
}

// HistoryStore

func (m *memStore) CountByUser(ctx context.Context, userID uint64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, h := range m.histories {
		if h.UserID == userID {
			n++
		}
	}
	return n, nil
}

func (m *memStore) ListByUser(ctx context.Context, userID uint64, offset, limit int) ([]model.HistorySummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.HistorySummary{}
	for _, h := range m.histories {
		if h.UserID == userID {
			out = append(out, model.HistorySummary{ID: h.ID, Status: h.Status})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if offset >= len(out) {
		return []model.HistorySummary{}, nil
	}
	end := offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[offset:end], nil
}

func (m *memStore) GetForUser(ctx context.Context, historyID, userID uint64) (*model.HistoryDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, h := range m.histories {
		if h.ID == historyID && h.UserID == userID {
			return &model.HistoryDetail{History: *h, Order: *m.orders[h.OrderID]}, nil
		}
	}
	return nil, repository.ErrHistoryNotFound
}

func (m *memStore) historyOf(orderID uint64) *model.History {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.histories[orderID]
}

// fakeImages records uploads and deletes.
type fakeImages struct {
	mu         sync.Mutex
	n          int
	uploaded   []string
	deleted    []string
	failDel    error
	failUpload error
}

func (f *fakeImages) Upload(ctx context.Context, folder, filename string, r io.Reader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload != nil {
		return "", f.failUpload
	}
	f.n++
	url := "/uploads/" + folder + "/" + string(rune('a'+f.n)) + ".png"
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeImages) Delete(ctx context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, url)
	return f.failDel
}

type fakePublisher struct {
	mu     sync.Mutex
	events []queue.OrderEvent
	err    error
}

func (p *fakePublisher) PublishOrderEvent(ctx context.Context, ev queue.OrderEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *fakePublisher) actions() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Action)
	}
	return out
}

var errBoom = errors.New("boom")

func testLogger() (*logrus.Logger, *test.Hook) {
	return test.NewNullLogger()
}

func newValidator() Validator { return validation.New() }
