package storefront

import (
	"context"

	"github.com/ariefcatur/go-catalog-orders/internal/catalog"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"
)

type CategoryStore interface {
	ListActive(ctx context.Context) ([]catalog.Category, error)
	GetByID(ctx context.Context, id int64) (*catalog.Category, error)
	GetByIDWithProducts(ctx context.Context, id int64) (*catalog.Category, error)
	Create(ctx context.Context, c *catalog.Category) (int64, error)
	Update(ctx context.Context, c *catalog.Category) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type ProductStore interface {
	ListActive(ctx context.Context) ([]catalog.Product, error)
	GetByID(ctx context.Context, id int64) (*catalog.Product, error)
	GetByIDWithCategory(ctx context.Context, id int64) (*catalog.Product, error)
	ListByCategory(ctx context.Context, categoryID int64) ([]catalog.Product, error)
	ListPaged(ctx context.Context, page, pageSize int) ([]catalog.Product, error)
	CountActive(ctx context.Context) (int, error)
	Create(ctx context.Context, p *catalog.Product) (int64, error)
	Update(ctx context.Context, p *catalog.Product) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type OrderStore interface {
	List(ctx context.Context) ([]catalog.Order, error)
	GetByID(ctx context.Context, id int64) (*catalog.Order, error)
	GetByIDWithItems(ctx context.Context, id int64) (*catalog.Order, error)
	ListByStatus(ctx context.Context, status catalog.OrderStatus) ([]catalog.Order, error)
	Create(ctx context.Context, o *catalog.Order) (int64, error)
	Update(ctx context.Context, o *catalog.Order) (bool, error)
	UpdateStatus(ctx context.Context, id int64, status catalog.OrderStatus) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	TotalSales(ctx context.Context, f catalog.SalesFilter) (decimal.Decimal, error)
}

type OrderItemStore interface {
	ListByOrder(ctx context.Context, orderID int64) ([]catalog.OrderItem, error)
	GetByID(ctx context.Context, id int64) (*catalog.OrderItem, error)
	Create(ctx context.Context, it *catalog.OrderItem) (int64, error)
	Update(ctx context.Context, it *catalog.OrderItem) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	DeleteAllByOrder(ctx context.Context, orderID int64) (bool, error)
}

// Publisher is satisfied by *kafka.Producer.
type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// NopPublisher drops every event. Used when Kafka is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish([]byte, []byte, ...kafkago.Header) {}

var (
	_ CategoryStore  = (*catalog.CategoryRepo)(nil)
	_ ProductStore   = (*catalog.ProductRepo)(nil)
	_ OrderStore     = (*catalog.OrderRepo)(nil)
	_ OrderItemStore = (*catalog.OrderItemRepo)(nil)
)
