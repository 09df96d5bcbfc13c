package catalog

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-catalog-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
)

const itemsWithProductNameSQL = `
	SELECT oi.id, oi.order_id, oi.product_id, oi.quantity, oi.unit_price, oi.total_price, p.name
	  FROM order_items oi
	  JOIN products p ON p.id = oi.product_id
	 WHERE oi.order_id = $1
	 ORDER BY oi.id`

// recomputeTotalSQL rewrites orders.total_amount from the items currently
// attached to order $1.
const recomputeTotalSQL = `
	UPDATE orders
	   SET total_amount = COALESCE((SELECT SUM(total_price) FROM order_items WHERE order_id = $1), 0)
	 WHERE id = $1`

// errItemNotFound aborts the delete transaction; it never leaves the repo.
var errItemNotFound = errors.New("order item not found")

type OrderItemRepo struct{ DB postgres.Provider }

func (r *OrderItemRepo) ListByOrder(ctx context.Context, orderID int64) ([]OrderItem, error) {
	var out []OrderItem
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		rows, err := q.Query(ctx, itemsWithProductNameSQL, orderID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			it, err := scanItem(rows, true)
			if err != nil {
				return err
			}
			out = append(out, it)
		}
		return rows.Err()
	})
	return out, err
}

func (r *OrderItemRepo) GetByID(ctx context.Context, id int64) (*OrderItem, error) {
	var it *OrderItem
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		got, err := scanItem(q.QueryRow(ctx, `SELECT `+itemColumns+` FROM order_items WHERE id = $1`, id), false)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		it = &got
		return nil
	})
	return it, err
}

// Create stores the item with TotalPrice recomputed. The parent order total
// is left for the caller to refresh.
func (r *OrderItemRepo) Create(ctx context.Context, it *OrderItem) (int64, error) {
	if err := it.RecomputeTotal(); err != nil {
		return 0, err
	}
	var id int64
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		return q.QueryRow(ctx, `
			INSERT INTO order_items (order_id, product_id, quantity, unit_price, total_price)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id`,
			it.OrderID, it.ProductID, int32(it.Quantity), it.UnitPrice, it.TotalPrice,
		).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	it.ID = id
	return id, nil
}

// Update rewrites quantity and prices, then refreshes the parent order total
// in the same transaction. The item's order is taken from the stored row.
func (r *OrderItemRepo) Update(ctx context.Context, it *OrderItem) (bool, error) {
	if err := it.RecomputeTotal(); err != nil {
		return false, err
	}
	var ok bool
	err := r.DB.WithTx(ctx, func(q postgres.Querier) error {
		var orderID int64
		err := q.QueryRow(ctx, `
			UPDATE order_items
			   SET quantity = $2, unit_price = $3, total_price = $4
			 WHERE id = $1
			RETURNING order_id`,
			it.ID, int32(it.Quantity), it.UnitPrice, it.TotalPrice,
		).Scan(&orderID)
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, recomputeTotalSQL, orderID); err != nil {
			return err
		}
		it.OrderID = orderID
		ok = true
		return nil
	})
	return ok, err
}

// Delete removes one item and refreshes its order total atomically. A
// missing item rolls back and reports false.
func (r *OrderItemRepo) Delete(ctx context.Context, id int64) (bool, error) {
	err := r.DB.WithTx(ctx, func(q postgres.Querier) error {
		var orderID int64
		err := q.QueryRow(ctx, `SELECT order_id FROM order_items WHERE id = $1`, id).Scan(&orderID)
		if errors.Is(err, pgx.ErrNoRows) {
			return errItemNotFound
		}
		if err != nil {
			return err
		}
		ct, err := q.Exec(ctx, `DELETE FROM order_items WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return errItemNotFound
		}
		_, err = q.Exec(ctx, recomputeTotalSQL, orderID)
		return err
	})
	if errors.Is(err, errItemNotFound) {
		return false, nil
	}
	return err == nil, err
}

// DeleteAllByOrder drops every item of the order and zeroes its total, even
// when there were no items. It reports whether any item was removed.
func (r *OrderItemRepo) DeleteAllByOrder(ctx context.Context, orderID int64) (bool, error) {
	var ok bool
	err := r.DB.WithTx(ctx, func(q postgres.Querier) error {
		ct, err := q.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID)
		if err != nil {
			return err
		}
		if _, err := q.Exec(ctx, `UPDATE orders SET total_amount = 0 WHERE id = $1`, orderID); err != nil {
			return err
		}
		ok = ct.RowsAffected() > 0
		return nil
	})
	return ok, err
}
