// Package storefront is the facade the HTTP layer talks to. It assembles
// orders from catalog prices, does page math and emits domain events after
// successful writes.
package storefront

import (
	"context"
	"time"

	"github.com/ariefcatur/go-catalog-orders/internal/catalog"
	kafkax "github.com/ariefcatur/go-catalog-orders/internal/kafka"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 10

type Service struct {
	Categories CategoryStore
	Products   ProductStore
	Orders     OrderStore
	Items      OrderItemStore
	Events     Publisher
	Log        zerolog.Logger
	// Producer is stamped on every event envelope.
	Producer string
	Now      func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) publish(eventType string, aggregateID int64, payload any) {
	if s.Events == nil {
		return
	}
	ev := catalog.Envelope{
		EventID:       uuid.NewString(),
		EventType:     eventType,
		EventVersion:  catalog.EventVersion,
		OccurredAt:    s.now().UTC(),
		Producer:      s.Producer,
		CorrelationID: catalog.PartitionKeyString(aggregateID),
		Payload:       kafkax.MustMarshal(payload),
	}
	s.Events.Publish(catalog.PartitionKey(aggregateID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(eventType)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

// ---- categories ----

func (s *Service) ListCategories(ctx context.Context) ([]catalog.Category, error) {
	return s.Categories.ListActive(ctx)
}

func (s *Service) GetCategory(ctx context.Context, id int64) (*catalog.Category, error) {
	return s.Categories.GetByID(ctx, id)
}

func (s *Service) GetCategoryWithProducts(ctx context.Context, id int64) (*catalog.Category, error) {
	return s.Categories.GetByIDWithProducts(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, c *catalog.Category) (int64, error) {
	c.IsActive = true
	return s.Categories.Create(ctx, c)
}

func (s *Service) UpdateCategory(ctx context.Context, c *catalog.Category) (bool, error) {
	return s.Categories.Update(ctx, c)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) (bool, error) {
	ok, err := s.Categories.Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.publish(catalog.EventCategoryDeactivated, id, catalog.CategoryDeactivatedPayload{CategoryID: id})
	return true, nil
}

// ---- products ----

type Page[T any] struct {
	Items      []T `json:"items"`
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
	TotalPages int `json:"total_pages"`
}

// ClampPage maps page < 1 to 1 and pageSize < 1 to the default size.
func ClampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	return page, pageSize
}

func TotalPages(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

func (s *Service) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	return s.Products.ListActive(ctx)
}

// GetProduct returns the product with its category attached.
func (s *Service) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	return s.Products.GetByIDWithCategory(ctx, id)
}

func (s *Service) ProductsByCategory(ctx context.Context, categoryID int64) ([]catalog.Product, error) {
	return s.Products.ListByCategory(ctx, categoryID)
}

func (s *Service) PagedProducts(ctx context.Context, page, pageSize int) (Page[catalog.Product], error) {
	page, pageSize = ClampPage(page, pageSize)
	total, err := s.Products.CountActive(ctx)
	if err != nil {
		return Page[catalog.Product]{}, err
	}
	items, err := s.Products.ListPaged(ctx, page, pageSize)
	if err != nil {
		return Page[catalog.Product]{}, err
	}
	if items == nil {
		items = []catalog.Product{}
	}
	return Page[catalog.Product]{
		Items:      items,
		Page:       page,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: TotalPages(total, pageSize),
	}, nil
}

func (s *Service) CreateProduct(ctx context.Context, p *catalog.Product) (int64, error) {
	p.IsActive = true
	return s.Products.Create(ctx, p)
}

func (s *Service) UpdateProduct(ctx context.Context, p *catalog.Product) (bool, error) {
	return s.Products.Update(ctx, p)
}

func (s *Service) DeleteProduct(ctx context.Context, id int64) (bool, error) {
	return s.Products.Delete(ctx, id)
}

// ---- orders ----

type OrderLineInput struct {
	ProductID int64
	Quantity  int
}

type CreateOrderInput struct {
	CustomerName string
	ContactEmail string
	Items        []OrderLineInput
}

// CreateOrder writes the header, then one item per known product priced from
// the catalog, then the summed total. The steps are separate statements: a
// failure halfway leaves the header with a stale total. Unknown products are
// skipped.
func (s *Service) CreateOrder(ctx context.Context, in CreateOrderInput) (*catalog.Order, error) {
	for _, line := range in.Items {
		if line.Quantity <= 0 {
			return nil, catalog.ErrInvalidQuantity
		}
	}

	o := &catalog.Order{
		CustomerName: in.CustomerName,
		ContactEmail: in.ContactEmail,
		TotalAmount:  decimal.Zero,
		OrderDate:    s.now(),
		Status:       catalog.StatusPending,
	}
	if _, err := s.Orders.Create(ctx, o); err != nil {
		return nil, err
	}

	var (
		lines   []catalog.OrderLine
		skipped []int64
	)
	for _, line := range in.Items {
		p, err := s.Products.GetByID(ctx, line.ProductID)
		if err != nil {
			return nil, err
		}
		if p == nil {
			skipped = append(skipped, line.ProductID)
			continue
		}
		it := catalog.OrderItem{
			OrderID:     o.ID,
			ProductID:   p.ID,
			Quantity:    line.Quantity,
			UnitPrice:   p.Price,
			ProductName: p.Name,
		}
		if _, err := s.Items.Create(ctx, &it); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
		lines = append(lines, catalog.OrderLine{ProductID: p.ID, Quantity: it.Quantity, UnitPrice: it.UnitPrice})
	}

	if len(o.Items) > 0 {
		o.TotalAmount = catalog.SumItems(o.Items)
		if _, err := s.Orders.Update(ctx, o); err != nil {
			return nil, err
		}
	}

	if len(skipped) > 0 {
		s.Log.Warn().Int64("order_id", o.ID).Ints64("skipped_products", skipped).Msg("unknown products left out of order")
	}
	s.publish(catalog.EventOrderCreated, o.ID, catalog.OrderCreatedPayload{
		OrderID:      o.ID,
		CustomerName: o.CustomerName,
		Items:        lines,
		TotalAmount:  o.TotalAmount,
		Skipped:      skipped,
	})
	return o, nil
}

func (s *Service) ListOrders(ctx context.Context) ([]catalog.Order, error) {
	return s.Orders.List(ctx)
}

func (s *Service) GetOrder(ctx context.Context, id int64) (*catalog.Order, error) {
	return s.Orders.GetByIDWithItems(ctx, id)
}

func (s *Service) OrdersByStatus(ctx context.Context, status catalog.OrderStatus) ([]catalog.Order, error) {
	return s.Orders.ListByStatus(ctx, status)
}

type UpdateOrderInput struct {
	ID           int64
	CustomerName string
	ContactEmail string
	Status       catalog.OrderStatus
}

// UpdateOrder changes customer data and status; the stored total is kept.
func (s *Service) UpdateOrder(ctx context.Context, in UpdateOrderInput) (bool, error) {
	o, err := s.Orders.GetByID(ctx, in.ID)
	if err != nil || o == nil {
		return false, err
	}
	prev := o.Status
	o.CustomerName = in.CustomerName
	o.ContactEmail = in.ContactEmail
	o.Status = in.Status
	ok, err := s.Orders.Update(ctx, o)
	if err != nil || !ok {
		return ok, err
	}
	if prev != o.Status {
		s.publish(catalog.EventOrderStatusChanged, o.ID, catalog.OrderStatusChangedPayload{OrderID: o.ID, Status: o.Status})
	}
	return true, nil
}

func (s *Service) UpdateOrderStatus(ctx context.Context, id int64, status catalog.OrderStatus) (bool, error) {
	ok, err := s.Orders.UpdateStatus(ctx, id, status)
	if err != nil || !ok {
		return ok, err
	}
	s.publish(catalog.EventOrderStatusChanged, id, catalog.OrderStatusChangedPayload{OrderID: id, Status: status})
	return true, nil
}

func (s *Service) DeleteOrder(ctx context.Context, id int64) (bool, error) {
	ok, err := s.Orders.Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.publish(catalog.EventOrderDeleted, id, catalog.OrderDeletedPayload{OrderID: id})
	return true, nil
}

func (s *Service) TotalSales(ctx context.Context, f catalog.SalesFilter) (decimal.Decimal, error) {
	return s.Orders.TotalSales(ctx, f)
}

// ---- order items ----

func (s *Service) ListOrderItems(ctx context.Context, orderID int64) ([]catalog.OrderItem, error) {
	return s.Items.ListByOrder(ctx, orderID)
}

func (s *Service) GetOrderItem(ctx context.Context, id int64) (*catalog.OrderItem, error) {
	return s.Items.GetByID(ctx, id)
}

func (s *Service) UpdateOrderItem(ctx context.Context, it *catalog.OrderItem) (bool, error) {
	ok, err := s.Items.Update(ctx, it)
	if err != nil || !ok {
		return ok, err
	}
	s.totalChanged(ctx, it.OrderID, "item_updated")
	return true, nil
}

func (s *Service) DeleteOrderItem(ctx context.Context, id int64) (bool, error) {
	it, err := s.Items.GetByID(ctx, id)
	if err != nil || it == nil {
		return false, err
	}
	ok, err := s.Items.Delete(ctx, id)
	if err != nil || !ok {
		return ok, err
	}
	s.totalChanged(ctx, it.OrderID, "item_deleted")
	return true, nil
}

// ClearOrderItems empties the order and zeroes its total. It reports false
// only for an unknown order; an order that had no items still counts.
func (s *Service) ClearOrderItems(ctx context.Context, orderID int64) (bool, error) {
	o, err := s.Orders.GetByID(ctx, orderID)
	if err != nil {
		return false, err
	}
	if o == nil {
		return false, nil
	}
	if _, err := s.Items.DeleteAllByOrder(ctx, orderID); err != nil {
		return false, err
	}
	s.totalChanged(ctx, orderID, "items_cleared")
	return true, nil
}

// totalChanged announces the stored total after an item write. A failed
// read only costs the event.
func (s *Service) totalChanged(ctx context.Context, orderID int64, reason string) {
	o, err := s.Orders.GetByID(ctx, orderID)
	if err != nil || o == nil {
		s.Log.Warn().Err(err).Int64("order_id", orderID).Msg("order total not announced")
		return
	}
	s.publish(catalog.EventOrderTotalRecalculated, orderID, catalog.OrderTotalRecalculatedPayload{
		OrderID:     orderID,
		TotalAmount: o.TotalAmount,
		Reason:      reason,
	})
}
