package orderitemsvc

import (
	"cmp"
	"context"
	"slices"
	"sync"
	"time"

	"github.com/corray333/backend-labs/orderitems/internal/dal/interfaces/iorderitemrepo"
	"github.com/corray333/backend-labs/orderitems/internal/dal/interfaces/iorderrepo"
	"github.com/corray333/backend-labs/orderitems/internal/dal/interfaces/iproductrepo"
	"github.com/corray333/backend-labs/orderitems/internal/dal/uow"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/order"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/orderitem"
	"github.com/corray333/backend-labs/orderitems/internal/service/models/product"
	"github.com/shopspring/decimal"
)

type itemKey struct {
	orderID   int64
	productID int64
}

// memStore is an in-memory unit of work. Writes of a scope are staged and
// applied on commit; GetProductForUpdate holds a per-product mutex until the
// scope ends.
type memStore struct {
	mu       sync.Mutex
	orders   map[int64]order.Order
	products map[int64]product.Product
	items    map[itemKey]orderitem.OrderItem
	locks    map[int64]*sync.Mutex
	clock    time.Time

	commits   int
	rollbacks int

	failItemInsert  bool
	failItemUpdate  bool
	failStockUpdate bool
	getOrderErr     error
}

func newMemStore() *memStore {
	return &memStore{
		orders:   make(map[int64]order.Order),
		products: make(map[int64]product.Product),
		items:    make(map[itemKey]orderitem.OrderItem),
		locks:    make(map[int64]*sync.Mutex),
		clock:    time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (s *memStore) addOrder(id int64, closed bool) {
	o := order.Order{ID: id, CreatedAt: s.clock}
	if closed {
		closedAt := s.clock.Add(time.Hour)
		o.ClosedAt = &closedAt
	}
	s.orders[id] = o
}

func (s *memStore) addProduct(id int64, name, price string, quantity int) {
	s.products[id] = product.Product{
		ID:       id,
		Name:     name,
		Price:    decimal.RequireFromString(price),
		Quantity: quantity,
	}
}

func (s *memStore) productQuantity(id int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.products[id].Quantity
}

func (s *memStore) item(orderID, productID int64) (orderitem.OrderItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.items[itemKey{orderID, productID}]

	return it, ok
}

func (s *memStore) scopes() (commits, rollbacks int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.commits, s.rollbacks
}

func (s *memStore) productLock(id int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}

	return l
}

func (s *memStore) RunAtomic(ctx context.Context, work uow.WorkFunc) error {
	tx := &memTx{
		store:    s,
		products: make(map[int64]product.Product),
		items:    make(map[itemKey]orderitem.OrderItem),
	}
	defer tx.release()

	if err := work(ctx, tx); err != nil {
		s.mu.Lock()
		s.rollbacks++
		s.mu.Unlock()

		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range tx.products {
		s.products[id] = p
	}
	for k, it := range tx.items {
		s.items[k] = it
	}
	s.commits++

	return nil
}

func (s *memStore) Repositories() uow.Repositories {
	return &memTx{store: s}
}

// memTx implements all three repositories over one scope.
type memTx struct {
	store    *memStore
	held     []*sync.Mutex
	products map[int64]product.Product
	items    map[itemKey]orderitem.OrderItem
}

func (t *memTx) release() {
	for i := len(t.held) - 1; i >= 0; i-- {
		t.held[i].Unlock()
	}
	t.held = nil
}

func (t *memTx) OrderRepository() iorderrepo.IOrderRepository {
	return t
}

func (t *memTx) ProductRepository() iproductrepo.IProductRepository {
	return t
}

func (t *memTx) OrderItemRepository() iorderitemrepo.IOrderItemRepository {
	return t
}

func (t *memTx) GetOrder(_ context.Context, orderID int64) (*order.Order, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	if t.store.getOrderErr != nil {
		return nil, t.store.getOrderErr
	}

	o, ok := t.store.orders[orderID]
	if !ok {
		return nil, nil
	}

	return &o, nil
}

func (t *memTx) getProduct(_ context.Context, productID int64) (*product.Product, error) {
	if p, ok := t.products[productID]; ok {
		return &p, nil
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	p, ok := t.store.products[productID]
	if !ok {
		return nil, nil
	}

	return &p, nil
}

func (t *memTx) GetProductForUpdate(ctx context.Context, productID int64) (*product.Product, error) {
	l := t.store.productLock(productID)
	l.Lock()
	t.held = append(t.held, l)

	return t.getProduct(ctx, productID)
}

func (t *memTx) SetProductQuantity(ctx context.Context, productID int64, quantity int) (bool, error) {
	if t.store.failStockUpdate {
		return false, nil
	}

	p, err := t.getProduct(ctx, productID)
	if err != nil || p == nil {
		return false, err
	}
	p.Quantity = quantity
	t.products[productID] = *p

	return true, nil
}

func (t *memTx) GetOrderItem(_ context.Context, orderID, productID int64) (*orderitem.OrderItem, error) {
	key := itemKey{orderID, productID}
	if it, ok := t.items[key]; ok {
		return &it, nil
	}

	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	it, ok := t.store.items[key]
	if !ok {
		return nil, nil
	}

	return &it, nil
}

func (t *memTx) InsertOrderItem(ctx context.Context, orderID, productID int64, quantity int) (bool, error) {
	if t.store.failItemInsert {
		return false, nil
	}

	existing, err := t.GetOrderItem(ctx, orderID, productID)
	if err != nil || existing != nil {
		return false, err
	}

	t.store.mu.Lock()
	t.store.clock = t.store.clock.Add(time.Second)
	createdAt := t.store.clock
	t.store.mu.Unlock()

	t.items[itemKey{orderID, productID}] = orderitem.OrderItem{
		OrderID:   orderID,
		ProductID: productID,
		Quantity:  quantity,
		CreatedAt: createdAt,
	}

	return true, nil
}

func (t *memTx) UpdateOrderItemQuantity(ctx context.Context, orderID, productID int64, quantity int) (bool, error) {
	if t.store.failItemUpdate {
		return false, nil
	}

	existing, err := t.GetOrderItem(ctx, orderID, productID)
	if err != nil || existing == nil {
		return false, err
	}
	existing.Quantity = quantity
	t.items[itemKey{orderID, productID}] = *existing

	return true, nil
}

func (t *memTx) ListOrderItemsWithProductInfo(_ context.Context, orderID int64) ([]orderitem.Details, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	result := make([]orderitem.Details, 0)
	for k, it := range t.store.items {
		if k.orderID != orderID {
			continue
		}
		p := t.store.products[k.productID]
		result = append(result, orderitem.Details{
			OrderItem:   it,
			ProductName: p.Name,
			Price:       p.Price,
		})
	}

	slices.SortFunc(result, func(a, b orderitem.Details) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}

		return cmp.Compare(a.ProductID, b.ProductID)
	})

	return result, nil
}
