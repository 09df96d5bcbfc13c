package storefront

import (
	"context"
	"sort"
	"sync"

	"github.com/ariefcatur/go-catalog-orders/internal/catalog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

// memDB mirrors the repository semantics in memory for service tests.
type memDB struct {
	mu         sync.Mutex
	nextID     int64
	categories map[int64]catalog.Category
	products   map[int64]catalog.Product
	orders     map[int64]catalog.Order
	items      map[int64]catalog.OrderItem
}

func newMemDB() *memDB {
	return &memDB{
		categories: map[int64]catalog.Category{},
		products:   map[int64]catalog.Product{},
		orders:     map[int64]catalog.Order{},
		items:      map[int64]catalog.OrderItem{},
	}
}

func (db *memDB) id() int64 { db.nextID++; return db.nextID }

func (db *memDB) recompute(orderID int64) {
	o, ok := db.orders[orderID]
	if !ok {
		return
	}
	total := decimal.Zero
	for _, it := range db.items {
		if it.OrderID == orderID {
			total = total.Add(it.TotalPrice)
		}
	}
	o.TotalAmount = total
	db.orders[orderID] = o
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

type memCategories struct{ db *memDB }

func (m memCategories) ListActive(context.Context) ([]catalog.Category, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []catalog.Category
	for _, id := range sortedKeys(m.db.categories) {
		if c := m.db.categories[id]; c.IsActive {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m memCategories) GetByID(_ context.Context, id int64) (*catalog.Category, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (m memCategories) GetByIDWithProducts(_ context.Context, id int64) (*catalog.Category, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.categories[id]
	if !ok || !c.IsActive {
		return nil, nil
	}
	for _, pid := range sortedKeys(m.db.products) {
		if p := m.db.products[pid]; p.CategoryID == id {
			c.Products = append(c.Products, p)
		}
	}
	return &c, nil
}

func (m memCategories) Create(_ context.Context, c *catalog.Category) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c.ID = m.db.id()
	m.db.categories[c.ID] = *c
	return c.ID, nil
}

func (m memCategories) Update(_ context.Context, c *catalog.Category) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.categories[c.ID]; !ok {
		return false, nil
	}
	m.db.categories[c.ID] = *c
	return true, nil
}

func (m memCategories) Delete(_ context.Context, id int64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	c, ok := m.db.categories[id]
	if !ok {
		return false, nil
	}
	for pid, p := range m.db.products {
		if p.CategoryID == id {
			p.IsActive = false
			m.db.products[pid] = p
		}
	}
	c.IsActive = false
	m.db.categories[id] = c
	return true, nil
}

type memProducts struct{ db *memDB }

func (m memProducts) active() []catalog.Product {
	var out []catalog.Product
	for _, id := range sortedKeys(m.db.products) {
		if p := m.db.products[id]; p.IsActive {
			out = append(out, p)
		}
	}
	return out
}

func (m memProducts) ListActive(context.Context) ([]catalog.Product, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	out := m.active()
	sort.SliceStable(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m memProducts) GetByID(_ context.Context, id int64) (*catalog.Product, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p, ok := m.db.products[id]
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (m memProducts) GetByIDWithCategory(ctx context.Context, id int64) (*catalog.Product, error) {
	p, err := m.GetByID(ctx, id)
	if p == nil || err != nil {
		return p, err
	}
	c, _ := memCategories(m).GetByID(ctx, p.CategoryID)
	p.Category = c
	return p, nil
}

func (m memProducts) ListByCategory(_ context.Context, categoryID int64) ([]catalog.Product, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []catalog.Product
	for _, p := range m.active() {
		if p.CategoryID == categoryID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m memProducts) ListPaged(_ context.Context, page, pageSize int) ([]catalog.Product, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	all := m.active()
	start := (page - 1) * pageSize
	if start >= len(all) {
		return nil, nil
	}
	end := min(start+pageSize, len(all))
	return all[start:end], nil
}

func (m memProducts) CountActive(context.Context) (int, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	return len(m.active()), nil
}

func (m memProducts) Create(_ context.Context, p *catalog.Product) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p.ID = m.db.id()
	m.db.products[p.ID] = *p
	return p.ID, nil
}

func (m memProducts) Update(_ context.Context, p *catalog.Product) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.products[p.ID]; !ok {
		return false, nil
	}
	m.db.products[p.ID] = *p
	return true, nil
}

func (m memProducts) Delete(_ context.Context, id int64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	p, ok := m.db.products[id]
	if !ok {
		return false, nil
	}
	p.IsActive = false
	m.db.products[id] = p
	return true, nil
}

type memOrders struct {
	db *memDB
	// failUpdate makes Update fail, to observe the non-atomic assembly.
	failUpdate error
}

func (m *memOrders) List(context.Context) ([]catalog.Order, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []catalog.Order
	for _, id := range sortedKeys(m.db.orders) {
		out = append(out, m.db.orders[id])
	}
	return out, nil
}

func (m *memOrders) GetByID(_ context.Context, id int64) (*catalog.Order, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	o, ok := m.db.orders[id]
	if !ok {
		return nil, nil
	}
	return &o, nil
}

func (m *memOrders) GetByIDWithItems(_ context.Context, id int64) (*catalog.Order, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	o, ok := m.db.orders[id]
	if !ok {
		return nil, nil
	}
	o.Items = []catalog.OrderItem{}
	for _, iid := range sortedKeys(m.db.items) {
		if it := m.db.items[iid]; it.OrderID == id {
			o.Items = append(o.Items, it)
		}
	}
	return &o, nil
}

func (m *memOrders) ListByStatus(_ context.Context, status catalog.OrderStatus) ([]catalog.Order, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []catalog.Order
	for _, id := range sortedKeys(m.db.orders) {
		if o := m.db.orders[id]; o.Status == status {
			out = append(out, o)
		}
	}
	return out, nil
}

func (m *memOrders) Create(_ context.Context, o *catalog.Order) (int64, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	o.ID = m.db.id()
	stored := *o
	stored.Items = nil
	m.db.orders[o.ID] = stored
	return o.ID, nil
}

func (m *memOrders) Update(_ context.Context, o *catalog.Order) (bool, error) {
	if m.failUpdate != nil {
		return false, m.failUpdate
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cur, ok := m.db.orders[o.ID]
	if !ok {
		return false, nil
	}
	cur.CustomerName = o.CustomerName
	cur.ContactEmail = o.ContactEmail
	cur.TotalAmount = o.TotalAmount
	cur.Status = o.Status
	m.db.orders[o.ID] = cur
	return true, nil
}

func (m *memOrders) UpdateStatus(_ context.Context, id int64, status catalog.OrderStatus) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	o, ok := m.db.orders[id]
	if !ok {
		return false, nil
	}
	o.Status = status
	m.db.orders[id] = o
	return true, nil
}

func (m *memOrders) Delete(_ context.Context, id int64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	if _, ok := m.db.orders[id]; !ok {
		return false, nil
	}
	for iid, it := range m.db.items {
		if it.OrderID == id {
			delete(m.db.items, iid)
		}
	}
	delete(m.db.orders, id)
	return true, nil
}

func (m *memOrders) TotalSales(_ context.Context, f catalog.SalesFilter) (decimal.Decimal, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	from, to := f.Bounds()
	total := decimal.Zero
	for _, o := range m.db.orders {
		if from != nil && o.OrderDate.Before(*from) {
			continue
		}
		if to != nil && !o.OrderDate.Before(*to) {
			continue
		}
		total = total.Add(o.TotalAmount)
	}
	return total, nil
}

type memItems struct{ db *memDB }

func (m memItems) ListByOrder(_ context.Context, orderID int64) ([]catalog.OrderItem, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	var out []catalog.OrderItem
	for _, id := range sortedKeys(m.db.items) {
		if it := m.db.items[id]; it.OrderID == orderID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (m memItems) GetByID(_ context.Context, id int64) (*catalog.OrderItem, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	it, ok := m.db.items[id]
	if !ok {
		return nil, nil
	}
	return &it, nil
}

func (m memItems) Create(_ context.Context, it *catalog.OrderItem) (int64, error) {
	if err := it.RecomputeTotal(); err != nil {
		return 0, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	it.ID = m.db.id()
	m.db.items[it.ID] = *it
	return it.ID, nil
}

func (m memItems) Update(_ context.Context, it *catalog.OrderItem) (bool, error) {
	if err := it.RecomputeTotal(); err != nil {
		return false, err
	}
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	cur, ok := m.db.items[it.ID]
	if !ok {
		return false, nil
	}
	cur.Quantity, cur.UnitPrice, cur.TotalPrice = it.Quantity, it.UnitPrice, it.TotalPrice
	m.db.items[it.ID] = cur
	it.OrderID = cur.OrderID
	m.db.recompute(cur.OrderID)
	return true, nil
}

func (m memItems) Delete(_ context.Context, id int64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	it, ok := m.db.items[id]
	if !ok {
		return false, nil
	}
	delete(m.db.items, id)
	m.db.recompute(it.OrderID)
	return true, nil
}

func (m memItems) DeleteAllByOrder(_ context.Context, orderID int64) (bool, error) {
	m.db.mu.Lock()
	defer m.db.mu.Unlock()
	n := 0
	for id, it := range m.db.items {
		if it.OrderID == orderID {
			delete(m.db.items, id)
			n++
		}
	}
	if o, ok := m.db.orders[orderID]; ok {
		o.TotalAmount = decimal.Zero
		m.db.orders[orderID] = o
	}
	return n > 0, nil
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []kafkago.Message
}

func (p *recordingPublisher) Publish(key, value []byte, headers ...kafkago.Header) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, kafkago.Message{Key: key, Value: value, Headers: headers})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, m := range p.msgs {
		for _, h := range m.Headers {
			if h.Key == "x-event-type" {
				out = append(out, string(h.Value))
			}
		}
	}
	return out
}
