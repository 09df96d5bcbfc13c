// Package catalog holds the category, product and order entities and the
// Postgres repositories that keep them consistent.
package catalog

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

var ErrInvalidQuantity = errors.New("quantity must be positive")

// MoneyScale is the number of decimal places money columns are stored with.
const MoneyScale = 2

type Category struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	Products    []Product `json:"products,omitempty"`
}

type Product struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Description string          `json:"description"`
	CategoryID  int64           `json:"category_id"`
	CreatedAt   time.Time       `json:"created_date"`
	IsActive    bool            `json:"is_active"`
	// Category is only filled by lookups that load it explicitly.
	Category *Category `json:"category,omitempty"`
}

type Order struct {
	ID           int64           `json:"id"`
	CustomerName string          `json:"customer_name"`
	ContactEmail string          `json:"contact_email"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	OrderDate    time.Time       `json:"order_date"`
	Status       OrderStatus     `json:"status"`
	Items        []OrderItem     `json:"items,omitempty"`
}

// OrderItem keeps the unit price the product had when the item was written,
// so later catalog price changes never touch it.
type OrderItem struct {
	ID          int64           `json:"id"`
	OrderID     int64           `json:"order_id"`
	ProductID   int64           `json:"product_id"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	TotalPrice  decimal.Decimal `json:"total_price"`
	ProductName string          `json:"product_name,omitempty"`
}

// RecomputeTotal rounds UnitPrice to MoneyScale and sets TotalPrice to
// Quantity * UnitPrice, so the item matches the row the store keeps.
func (it *OrderItem) RecomputeTotal() error {
	if it.Quantity <= 0 {
		return ErrInvalidQuantity
	}
	it.UnitPrice = it.UnitPrice.Round(MoneyScale)
	it.TotalPrice = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
	return nil
}

// SumItems adds up the item totals, zero for no items.
func SumItems(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, it := range items {
		total = total.Add(it.TotalPrice)
	}
	return total
}
