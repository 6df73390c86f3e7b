package order

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stitchline/backend/internal/domain/cart"
	"github.com/stitchline/backend/internal/domain/catalog"
	"github.com/stitchline/backend/internal/domain/order"
	"github.com/stitchline/backend/internal/domain/shared"
)

// memStore is an in-memory stand-in for the database. Its transaction scope
// snapshots every table and restores the snapshot when fn fails.
type memStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product
	cart     map[uuid.UUID]cart.CartItem
	orders   map[uuid.UUID]order.Order
	history  []order.StatusEntry
	events   []shared.DomainEvent

	failHistoryAppend error
	beforeDecrement   func(s *memStore, productID uuid.UUID)
}

func newMemStore() *memStore {
	return &memStore{
		products: make(map[uuid.UUID]catalog.Product),
		cart:     make(map[uuid.UUID]cart.CartItem),
		orders:   make(map[uuid.UUID]order.Order),
	}
}

func (s *memStore) addProduct(name string, price int64, stock int) uuid.UUID {
	p := catalog.Product{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Price:      decimal.NewFromInt(price),
		Stock:      stock,
		Category:   "Machines",
	}
	s.products[p.ID] = p
	return p.ID
}

func (s *memStore) addCartItem(userID, productID uuid.UUID, qty int) uuid.UUID {
	item, err := cart.NewCartItem(userID, productID, qty)
	if err != nil {
		panic(err)
	}
	s.cart[item.ID] = *item
	return item.ID
}

func (s *memStore) stock(id uuid.UUID) int { return s.products[id].Stock }

func (s *memStore) cartCount(userID uuid.UUID) int {
	n := 0
	for _, it := range s.cart {
		if it.UserID == userID {
			n++
		}
	}
	return n
}

type memSnapshot struct {
	products map[uuid.UUID]catalog.Product
	cart     map[uuid.UUID]cart.CartItem
	orders   map[uuid.UUID]order.Order
	history  []order.StatusEntry
	events   []shared.DomainEvent
}

func (s *memStore) snapshot() memSnapshot {
	snap := memSnapshot{
		products: make(map[uuid.UUID]catalog.Product, len(s.products)),
		cart:     make(map[uuid.UUID]cart.CartItem, len(s.cart)),
		orders:   make(map[uuid.UUID]order.Order, len(s.orders)),
		history:  append([]order.StatusEntry(nil), s.history...),
		events:   append([]shared.DomainEvent(nil), s.events...),
	}
	for k, v := range s.products {
		snap.products[k] = v
	}
	for k, v := range s.cart {
		snap.cart[k] = v
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	return snap
}

func (s *memStore) restore(snap memSnapshot) {
	s.products = snap.products
	s.cart = snap.cart
	s.orders = snap.orders
	s.history = snap.history
	s.events = snap.events
}

// memTxScope implements TransactionScope over memStore
type memTxScope struct {
	store *memStore
	err   error
}

func (t *memTxScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	if t.err != nil {
		return t.err
	}
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	snap := t.store.snapshot()
	if err := fn(memRepos{t.store}); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

type memRepos struct{ s *memStore }

func (r memRepos) OrderRepo() order.Repository          { return memOrderRepo{r.s} }
func (r memRepos) HistoryRepo() order.HistoryRepository { return memHistoryRepo{r.s} }
func (r memRepos) CartRepo() cart.Repository            { return memCartRepo{r.s} }
func (r memRepos) StockRepo() catalog.StockRepository   { return memStockRepo{r.s} }
func (r memRepos) Events() shared.EventRecorder         { return memEvents{r.s} }

type memOrderRepo struct{ s *memStore }

func (r memOrderRepo) Create(_ context.Context, o *order.Order) error {
	cp := *o
	cp.BaseAggregateRoot = shared.BaseAggregateRoot{BaseEntity: o.BaseEntity}
	r.s.orders[o.ID] = cp
	return nil
}

func (r memOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := r.s.orders[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	return &o, nil
}

func (r memOrderRepo) FindAllWithCustomer(_ context.Context) ([]order.CustomerOrder, error) {
	out := make([]order.CustomerOrder, 0, len(r.s.orders))
	for _, o := range r.s.orders {
		out = append(out, order.CustomerOrder{Order: o, CustomerName: "Customer"})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memOrderRepo) FindByUser(_ context.Context, userID uuid.UUID) ([]order.Order, error) {
	var out []order.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status order.Status, at time.Time) error {
	o, ok := r.s.orders[id]
	if !ok {
		return shared.ErrNotFound
	}
	o.Status = status
	o.UpdatedAt = at
	r.s.orders[id] = o
	return nil
}

func (r memOrderRepo) TrackingNumberExists(_ context.Context, tn string) (bool, error) {
	for _, o := range r.s.orders {
		if o.TrackingNumber == tn {
			return true, nil
		}
	}
	return false, nil
}

func (r memOrderRepo) CountByUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for _, o := range r.s.orders {
		if o.UserID == userID {
			n++
		}
	}
	return n, nil
}

type memHistoryRepo struct{ s *memStore }

func (r memHistoryRepo) Append(_ context.Context, entries ...order.StatusEntry) error {
	if r.s.failHistoryAppend != nil {
		return r.s.failHistoryAppend
	}
	r.s.history = append(r.s.history, entries...)
	return nil
}

func (r memHistoryRepo) FindByOrder(_ context.Context, orderID uuid.UUID) ([]order.StatusEntry, error) {
	var out []order.StatusEntry
	for _, e := range r.s.history {
		if e.OrderID == orderID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

type memCartRepo struct{ s *memStore }

func (r memCartRepo) AddOrMerge(_ context.Context, item *cart.CartItem) error {
	for id, existing := range r.s.cart {
		if existing.UserID == item.UserID && existing.ProductID == item.ProductID {
			existing.Quantity += item.Quantity
			r.s.cart[id] = existing
			return nil
		}
	}
	r.s.cart[item.ID] = *item
	return nil
}

func (r memCartRepo) FindByIDForUser(_ context.Context, id, userID uuid.UUID) (*cart.CartItem, error) {
	it, ok := r.s.cart[id]
	if !ok || it.UserID != userID {
		return nil, shared.ErrNotFound
	}
	return &it, nil
}

func (r memCartRepo) FindLines(_ context.Context, userID uuid.UUID) ([]cart.Line, error) {
	var lines []cart.Line
	for _, it := range r.s.cart {
		if it.UserID != userID {
			continue
		}
		p := r.s.products[it.ProductID]
		lines = append(lines, cart.Line{
			CartItemID: it.ID,
			ProductID:  p.ID,
			Name:       p.Name,
			Price:      p.Price,
			Stock:      p.Stock,
			Quantity:   it.Quantity,
			AddedAt:    it.CreatedAt,
		})
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].Name < lines[j].Name })
	return lines, nil
}

func (r memCartRepo) UpdateQuantity(_ context.Context, id, userID uuid.UUID, qty int) error {
	it, ok := r.s.cart[id]
	if !ok || it.UserID != userID {
		return shared.ErrNotFound
	}
	it.Quantity = qty
	r.s.cart[id] = it
	return nil
}

func (r memCartRepo) DeleteForUser(_ context.Context, id, userID uuid.UUID) error {
	it, ok := r.s.cart[id]
	if !ok || it.UserID != userID {
		return shared.ErrNotFound
	}
	delete(r.s.cart, id)
	return nil
}

func (r memCartRepo) ClearForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	var n int64
	for id, it := range r.s.cart {
		if it.UserID == userID {
			delete(r.s.cart, id)
			n++
		}
	}
	return n, nil
}

func (r memCartRepo) CountForUser(_ context.Context, userID uuid.UUID) (int64, error) {
	return int64(r.s.cartCount(userID)), nil
}

type memStockRepo struct{ s *memStore }

func (r memStockRepo) DecrementStock(_ context.Context, productID uuid.UUID, qty int) error {
	if r.s.beforeDecrement != nil {
		r.s.beforeDecrement(r.s, productID)
	}
	p, ok := r.s.products[productID]
	if !ok {
		return shared.ErrNotFound
	}
	if p.Stock < qty {
		return shared.NewInsufficientStockError(p.ID, p.Name, p.Stock, qty)
	}
	p.Stock -= qty
	r.s.products[productID] = p
	return nil
}

func (r memStockRepo) IncrementStock(_ context.Context, productID uuid.UUID, qty int) error {
	p, ok := r.s.products[productID]
	if !ok {
		return shared.ErrNotFound
	}
	p.Stock += qty
	r.s.products[productID] = p
	return nil
}

type memEvents struct{ s *memStore }

func (r memEvents) Record(_ context.Context, events ...shared.DomainEvent) error {
	r.s.events = append(r.s.events, events...)
	return nil
}

var errInjected = errors.New("injected failure")

var (
	_ TransactionScope        = (*memTxScope)(nil)
	_ order.Repository        = memOrderRepo{}
	_ cart.Repository         = memCartRepo{}
	_ catalog.StockRepository = memStockRepo{}
)
