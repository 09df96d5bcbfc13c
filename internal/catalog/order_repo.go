package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/ariefcatur/go-catalog-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type OrderRepo struct{ DB postgres.Provider }

// List returns every order, newest first.
func (r *OrderRepo) List(ctx context.Context) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY order_date DESC, id DESC`)
}

func (r *OrderRepo) ListByStatus(ctx context.Context, status OrderStatus) ([]Order, error) {
	return r.list(ctx, `SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY order_date DESC, id DESC`, int32(status))
}

func (r *OrderRepo) list(ctx context.Context, sql string, args ...any) ([]Order, error) {
	var out []Order
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		rows, err := q.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			o, err := scanOrder(rows)
			if err != nil {
				return err
			}
			out = append(out, o)
		}
		return rows.Err()
	})
	return out, err
}

// GetByID returns the order header without items, nil when absent.
func (r *OrderRepo) GetByID(ctx context.Context, id int64) (*Order, error) {
	var o *Order
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		got, err := scanOrder(q.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		o = &got
		return nil
	})
	return o, err
}

// GetByIDWithItems reads the header and its items (with product names) in
// one batch.
func (r *OrderRepo) GetByIDWithItems(ctx context.Context, id int64) (*Order, error) {
	var o *Order
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		b := &pgx.Batch{}
		b.Queue(`SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
		b.Queue(itemsWithProductNameSQL, id)
		br := q.SendBatch(ctx, b)
		defer func() { _ = br.Close() }()

		got, err := scanOrder(br.QueryRow())
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		rows, err := br.Query()
		if err != nil {
			return err
		}
		defer rows.Close()
		got.Items = []OrderItem{}
		for rows.Next() {
			it, err := scanItem(rows, true)
			if err != nil {
				return err
			}
			got.Items = append(got.Items, it)
		}
		if err := rows.Err(); err != nil {
			return err
		}
		o = &got
		return nil
	})
	return o, err
}

// Create inserts the header through create_order and returns the new id.
// The total is stored as supplied; items are not touched.
func (r *OrderRepo) Create(ctx context.Context, o *Order) (int64, error) {
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Now()
	}
	var id int64
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		return q.QueryRow(ctx,
			`SELECT order_id FROM create_order($1, $2, $3, $4, $5)`,
			o.CustomerName, o.ContactEmail, o.TotalAmount, o.OrderDate, int32(o.Status),
		).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	o.ID = id
	return id, nil
}

// Update overwrites customer data, total and status. The order date is kept.
func (r *OrderRepo) Update(ctx context.Context, o *Order) (bool, error) {
	var ok bool
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		ct, err := q.Exec(ctx, `
			UPDATE orders
			   SET customer_name = $2, contact_email = $3, total_amount = $4, status = $5
			 WHERE id = $1`,
			o.ID, o.CustomerName, o.ContactEmail, o.TotalAmount, int32(o.Status),
		)
		if err != nil {
			return err
		}
		ok = ct.RowsAffected() > 0
		return nil
	})
	return ok, err
}

// UpdateStatus sets any status from any status; transitions are not checked.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id int64, status OrderStatus) (bool, error) {
	var ok bool
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		ct, err := q.Exec(ctx, `UPDATE orders SET status = $2 WHERE id = $1`, id, int32(status))
		if err != nil {
			return err
		}
		ok = ct.RowsAffected() > 0
		return nil
	})
	return ok, err
}

// Delete removes the order and its items in one transaction.
func (r *OrderRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.DB.WithTx(ctx, func(q postgres.Querier) error {
		if _, err := q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, id); err != nil {
			return err
		}
		ct, err := q.Exec(ctx, `DELETE FROM orders WHERE id = $1`, id)
		if err != nil {
			return err
		}
		ok = ct.RowsAffected() > 0
		return nil
	})
	return ok, err
}

// TotalSales sums order totals inside the filter's day range. It returns
// zero when nothing matches.
func (r *OrderRepo) TotalSales(ctx context.Context, f SalesFilter) (decimal.Decimal, error) {
	from, to := f.Bounds()
	total := decimal.Zero
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		return q.QueryRow(ctx, totalSalesSQL, from, to).Scan(&total)
	})
	return total, err
}
