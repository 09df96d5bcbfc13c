package catalog

import (
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

const (
	categoryColumns = `id, name, description, is_active`
	productColumns  = `id, name, price, description, category_id, created_date, is_active`
	orderColumns    = `id, customer_name, contact_email, total_amount, order_date, status`
	itemColumns     = `id, order_id, product_id, quantity, unit_price, total_price`
)

func scanCategory(row pgx.Row) (Category, error) {
	var c Category
	err := row.Scan(&c.ID, &c.Name, &c.Description, &c.IsActive)
	return c, err
}

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Description, &p.CategoryID, &p.CreatedAt, &p.IsActive)
	return p, err
}

func scanOrder(row pgx.Row) (Order, error) {
	var (
		o      Order
		status int32
	)
	if err := row.Scan(&o.ID, &o.CustomerName, &o.ContactEmail, &o.TotalAmount, &o.OrderDate, &status); err != nil {
		return o, err
	}
	o.Status = OrderStatus(status)
	return o, nil
}

// scanItem reads itemColumns, plus the product name when withName is set.
func scanItem(row pgx.Row, withName bool) (OrderItem, error) {
	var (
		it  OrderItem
		qty int32
	)
	dest := []any{&it.ID, &it.OrderID, &it.ProductID, &qty, &it.UnitPrice, &it.TotalPrice}
	if withName {
		dest = append(dest, &it.ProductName)
	}
	if err := row.Scan(dest...); err != nil {
		return it, err
	}
	it.Quantity = int(qty)
	return it, nil
}

// nullableProduct receives the product half of a categories LEFT JOIN products row.
type nullableProduct struct {
	ID          *int64
	Name        *string
	Price       decimal.NullDecimal
	Description *string
	CategoryID  *int64
	CreatedAt   *time.Time
	IsActive    *bool
}

func (n *nullableProduct) dest() []any {
	return []any{&n.ID, &n.Name, &n.Price, &n.Description, &n.CategoryID, &n.CreatedAt, &n.IsActive}
}

// product returns nil for the all-NULL row a category without products yields.
func (n *nullableProduct) product() *Product {
	if n.ID == nil {
		return nil
	}
	p := &Product{ID: *n.ID, Price: n.Price.Decimal}
	if n.Name != nil {
		p.Name = *n.Name
	}
	if n.Description != nil {
		p.Description = *n.Description
	}
	if n.CategoryID != nil {
		p.CategoryID = *n.CategoryID
	}
	if n.CreatedAt != nil {
		p.CreatedAt = *n.CreatedAt
	}
	if n.IsActive != nil {
		p.IsActive = *n.IsActive
	}
	return p
}
