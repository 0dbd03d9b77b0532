package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"order-service/internal/model"
)

type memoryData struct {
	products  map[uint]model.Product
	customers map[uint]model.Customer
	orders    map[uint]model.Order

	lastProductID  uint
	lastCustomerID uint
	lastOrderID    uint
	lastItemID     uint
}

func newMemoryData() *memoryData {
	return &memoryData{
		products:  make(map[uint]model.Product),
		customers: make(map[uint]model.Customer),
		orders:    make(map[uint]model.Order),
	}
}

func (d *memoryData) clone() *memoryData {
	c := *d
	c.products = make(map[uint]model.Product, len(d.products))
	for id, p := range d.products {
		c.products[id] = p
	}
	c.customers = make(map[uint]model.Customer, len(d.customers))
	for id, cu := range d.customers {
		c.customers[id] = cu
	}
	c.orders = make(map[uint]model.Order, len(d.orders))
	for id, o := range d.orders {
		c.orders[id] = cloneOrder(o)
	}
	return &c
}

func cloneOrder(o model.Order) model.Order {
	o.Items = append([]model.OrderItem(nil), o.Items...)
	return o
}

// MemoryStore is a Store kept in process memory. Units of work run one at a
// time against a private copy of the data that replaces the shared copy only
// when the unit of work succeeds.
type MemoryStore struct {
	mu   sync.RWMutex
	data *memoryData
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: newMemoryData(), now: time.Now}
}

func (s *MemoryStore) view() *memoryView {
	return &memoryView{store: s, shared: true}
}

func (s *MemoryStore) Products() ProductRepository { return memoryProducts{s.view()} }
func (s *MemoryStore) Customers() CustomerRepository { return memoryCustomers{s.view()} }
func (s *MemoryStore) Orders() OrderRepository { return memoryOrders{s.view()} }

// Transact holds the writer lock for the whole of fn
func (s *MemoryStore) Transact(ctx context.Context, fn func(tx Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	working := s.data.clone()
	if err := fn(&memoryTx{view: &memoryView{store: s, data: working}}); err != nil {
		return err
	}
	s.data = working
	return nil
}

// Ping always succeeds
func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// memoryTx is the Store handed to a unit of work
type memoryTx struct {
	view *memoryView
}

func (t *memoryTx) Products() ProductRepository { return memoryProducts{t.view} }
func (t *memoryTx) Customers() CustomerRepository { return memoryCustomers{t.view} }
func (t *memoryTx) Orders() OrderRepository { return memoryOrders{t.view} }

// Transact joins the unit of work already in progress
func (t *memoryTx) Transact(ctx context.Context, fn func(tx Store) error) error {
	return fn(t)
}

func (t *memoryTx) Ping(ctx context.Context) error {
	return ctx.Err()
}

// memoryView reads and writes either the shared data, taking the store lock
// per call, or the private copy of a unit of work that already holds it.
type memoryView struct {
	store  *MemoryStore
	shared bool
	data   *memoryData
}

func (v *memoryView) read(fn func(d *memoryData)) {
	if v.shared {
		v.store.mu.RLock()
		defer v.store.mu.RUnlock()
		fn(v.store.data)
		return
	}
	fn(v.data)
}

func (v *memoryView) write(fn func(d *memoryData) error) error {
	if v.shared {
		v.store.mu.Lock()
		defer v.store.mu.Unlock()
		return fn(v.store.data)
	}
	return fn(v.data)
}

type memoryProducts struct {
	*memoryView
}

func (r memoryProducts) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var (
		product model.Product
		ok      bool
	)
	r.read(func(d *memoryData) { product, ok = d.products[id] })
	if !ok {
		return nil, ErrNotFound
	}
	return &product, nil
}

// FindByIDForUpdate needs no extra locking: units of work are already serialized
func (r memoryProducts) FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	return r.FindByID(ctx, id)
}

func (r memoryProducts) LockByIDs(ctx context.Context, ids []uint) (map[uint]*model.Product, error) {
	locked := make(map[uint]*model.Product, len(ids))
	r.read(func(d *memoryData) {
		for _, id := range ids {
			if p, ok := d.products[id]; ok {
				product := p
				locked[id] = &product
			}
		}
	})
	return locked, nil
}

func (r memoryProducts) Save(ctx context.Context, product *model.Product) error {
	return r.write(func(d *memoryData) error {
		for id, p := range d.products {
			if id != product.ID && p.Name == product.Name {
				return ErrDuplicate
			}
		}
		now := r.store.now()
		if product.ID == 0 {
			d.lastProductID++
			product.ID = d.lastProductID
			product.CreatedAt = now
		}
		product.UpdatedAt = now
		d.products[product.ID] = *product
		return nil
	})
}

func (r memoryProducts) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	exists := false
	r.read(func(d *memoryData) {
		for id, p := range d.products {
			if id != excludeID && p.Name == name {
				exists = true
				return
			}
		}
	})
	return exists, nil
}

func (r memoryProducts) ListActive(ctx context.Context, offset, limit int) ([]model.Product, int64, error) {
	active := make([]model.Product, 0)
	r.read(func(d *memoryData) {
		for _, p := range d.products {
			if p.Active {
				active = append(active, p)
			}
		}
	})
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })

	total := int64(len(active))
	if offset >= len(active) {
		return []model.Product{}, total, nil
	}
	end := offset + limit
	if end > len(active) {
		end = len(active)
	}
	return active[offset:end], total, nil
}

type memoryCustomers struct {
	*memoryView
}

func (r memoryCustomers) FindByID(ctx context.Context, id uint) (*model.Customer, error) {
	var (
		customer model.Customer
		ok       bool
	)
	r.read(func(d *memoryData) { customer, ok = d.customers[id] })
	if !ok {
		return nil, ErrNotFound
	}
	return &customer, nil
}

func (r memoryCustomers) FindByIDForUpdate(ctx context.Context, id uint) (*model.Customer, error) {
	return r.FindByID(ctx, id)
}

func (r memoryCustomers) Save(ctx context.Context, customer *model.Customer) error {
	return r.write(func(d *memoryData) error {
		for id, c := range d.customers {
			if id != customer.ID && c.Email == customer.Email {
				return ErrDuplicate
			}
		}
		now := r.store.now()
		if customer.ID == 0 {
			d.lastCustomerID++
			customer.ID = d.lastCustomerID
			customer.CreatedAt = now
		}
		customer.UpdatedAt = now
		d.customers[customer.ID] = *customer
		return nil
	})
}

func (r memoryCustomers) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	exists := false
	r.read(func(d *memoryData) {
		for _, c := range d.customers {
			if c.Email == email {
				exists = true
				return
			}
		}
	})
	return exists, nil
}

type memoryOrders struct {
	*memoryView
}

func (r memoryOrders) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var (
		order model.Order
		ok    bool
	)
	r.read(func(d *memoryData) {
		order, ok = d.orders[id]
		order = cloneOrder(order)
	})
	if !ok {
		return nil, ErrNotFound
	}
	return &order, nil
}

func (r memoryOrders) FindByIDForUpdate(ctx context.Context, id uint) (*model.Order, error) {
	return r.FindByID(ctx, id)
}

func (r memoryOrders) Save(ctx context.Context, order *model.Order) error {
	return r.write(func(d *memoryData) error {
		now := r.store.now()
		if order.ID == 0 {
			d.lastOrderID++
			order.ID = d.lastOrderID
			order.CreatedAt = now
			for i := range order.Items {
				d.lastItemID++
				order.Items[i].ID = d.lastItemID
				order.Items[i].OrderID = order.ID
			}
		} else if existing, ok := d.orders[order.ID]; ok {
			// items are written once, with the order
			order.Items = cloneOrder(existing).Items
		} else {
			return ErrNotFound
		}
		order.UpdatedAt = now
		d.orders[order.ID] = cloneOrder(*order)
		return nil
	})
}

func (r memoryOrders) ExistsWithProductAndStatus(ctx context.Context, productID uint, status model.OrderStatus) (bool, error) {
	exists := false
	r.read(func(d *memoryData) {
		for _, o := range d.orders {
			if o.Status != status {
				continue
			}
			for _, item := range o.Items {
				if item.ProductID == productID {
					exists = true
					return
				}
			}
		}
	})
	return exists, nil
}
