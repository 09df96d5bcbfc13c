package postgres

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type seedProduct struct {
	name, price, description, category string
}

var (
	seedCategories = []struct{ name, description string }{
		{"Electronics", "Electronic devices"},
		{"Home Appliances", "Large household appliances"},
		{"Furniture", "Home and office furniture"},
	}
	seedProducts = []seedProduct{
		{"Laptop", "9999.99", "High performance", "Electronics"},
		{"Smartphone", "5999.99", "Latest model", "Electronics"},
		{"Tablet", "2999.99", "10 inch display", "Electronics"},
		{"Refrigerator", "7999.99", "No-frost", "Home Appliances"},
		{"Washing Machine", "4999.99", "8 kg", "Home Appliances"},
		{"Sofa Set", "8999.99", "3+2+1", "Furniture"},
		{"Dining Table", "2499.99", "Seats six", "Furniture"},
	}
)

// Seed loads the demo catalog and one sample order. It does nothing when
// categories already exist, so running it twice is harmless.
func Seed(ctx context.Context, p Provider, log zerolog.Logger) error {
	return p.WithTx(ctx, func(q Querier) error {
		var n int
		if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM categories`).Scan(&n); err != nil {
			return err
		}
		if n > 0 {
			log.Info().Int("categories", n).Msg("seed skipped, catalog not empty")
			return nil
		}

		categoryIDs := make(map[string]int64, len(seedCategories))
		for _, c := range seedCategories {
			var id int64
			if err := q.QueryRow(ctx,
				`INSERT INTO categories (name, description, is_active) VALUES ($1, $2, true) RETURNING id`,
				c.name, c.description,
			).Scan(&id); err != nil {
				return fmt.Errorf("seed category %s: %w", c.name, err)
			}
			categoryIDs[c.name] = id
		}

		productIDs := make(map[string]int64, len(seedProducts))
		for _, sp := range seedProducts {
			var id int64
			if err := q.QueryRow(ctx,
				`INSERT INTO products (name, price, description, category_id, is_active)
				 VALUES ($1, $2, $3, $4, true) RETURNING id`,
				sp.name, decimal.RequireFromString(sp.price), sp.description, categoryIDs[sp.category],
			).Scan(&id); err != nil {
				return fmt.Errorf("seed product %s: %w", sp.name, err)
			}
			productIDs[sp.name] = id
		}

		var orderID int64
		if err := q.QueryRow(ctx,
			`SELECT order_id FROM create_order($1, $2, 0, now()::timestamp, 0)`,
			"Jane Doe", "jane@example.com",
		).Scan(&orderID); err != nil {
			return fmt.Errorf("seed order: %w", err)
		}

		items := []struct {
			product string
			qty     int
		}{{"Laptop", 1}, {"Smartphone", 2}}
		for _, it := range items {
			if _, err := q.Exec(ctx, `
				INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price)
				SELECT $1::bigint, p.id, $3::integer, p.price, p.price * $3::integer FROM products p WHERE p.id = $2`,
				orderID, productIDs[it.product], it.qty,
			); err != nil {
				return fmt.Errorf("seed order item %s: %w", it.product, err)
			}
		}
		if _, err := q.Exec(ctx, recomputeOrderTotalSQL, orderID); err != nil {
			return err
		}

		log.Info().
			Int("categories", len(seedCategories)).
			Int("products", len(seedProducts)).
			Int64("order_id", orderID).
			Msg("demo data seeded")
		return nil
	})
}

// recomputeOrderTotalSQL rewrites orders.total_amount from the current items of order $1.
const recomputeOrderTotalSQL = `
	UPDATE orders
	   SET total_amount = (SELECT COALESCE(SUM(total_price), 0) FROM order_items WHERE order_id = $1)
	 WHERE id = $1`
