package catalog

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-catalog-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
)

type CategoryRepo struct{ DB postgres.Provider }

func (r *CategoryRepo) ListActive(ctx context.Context) ([]Category, error) {
	var out []Category
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		rows, err := q.Query(ctx, `SELECT `+categoryColumns+` FROM categories WHERE is_active ORDER BY id`)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			c, err := scanCategory(rows)
			if err != nil {
				return err
			}
			out = append(out, c)
		}
		return rows.Err()
	})
	return out, err
}

// GetByID returns nil when no category has the id, active or not.
func (r *CategoryRepo) GetByID(ctx context.Context, id int64) (*Category, error) {
	var c *Category
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		got, err := scanCategory(q.QueryRow(ctx, `SELECT `+categoryColumns+` FROM categories WHERE id = $1`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		c = &got
		return nil
	})
	return c, err
}

// GetByIDWithProducts loads an active category with every product that
// references it in a single join.
func (r *CategoryRepo) GetByIDWithProducts(ctx context.Context, id int64) (*Category, error) {
	var joined []Joined[Category, Product]
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		rows, err := q.Query(ctx, `
			SELECT c.id, c.name, c.description, c.is_active,
			       p.id, p.name, p.price, p.description, p.category_id, p.created_date, p.is_active
			  FROM categories c
			  LEFT JOIN products p ON p.category_id = c.id
			 WHERE c.id = $1 AND c.is_active
			 ORDER BY p.id`, id)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var (
				c  Category
				np nullableProduct
			)
			dest := append([]any{&c.ID, &c.Name, &c.Description, &c.IsActive}, np.dest()...)
			if err := rows.Scan(dest...); err != nil {
				return err
			}
			joined = append(joined, Joined[Category, Product]{Parent: c, Child: np.product()})
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}

	grouped := GroupJoined(joined,
		func(c Category) int64 { return c.ID },
		func(c *Category, p Product) { c.Products = append(c.Products, p) },
	)
	if len(grouped) == 0 {
		return nil, nil
	}
	return &grouped[0], nil
}

func (r *CategoryRepo) Create(ctx context.Context, c *Category) (int64, error) {
	var id int64
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		return q.QueryRow(ctx,
			`INSERT INTO categories (name, description, is_active) VALUES ($1, $2, $3) RETURNING id`,
			c.Name, c.Description, c.IsActive,
		).Scan(&id)
	})
	if err != nil {
		return 0, err
	}
	c.ID = id
	return id, nil
}

func (r *CategoryRepo) Update(ctx context.Context, c *Category) (bool, error) {
	var ok bool
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		ct, err := q.Exec(ctx,
			`UPDATE categories SET name = $2, description = $3, is_active = $4 WHERE id = $1`,
			c.ID, c.Name, c.Description, c.IsActive,
		)
		if err != nil {
			return err
		}
		ok = ct.RowsAffected() > 0
		return nil
	})
	return ok, err
}

// Delete deactivates the category together with all of its products. Either
// both updates commit or neither does.
func (r *CategoryRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.DB.WithTx(ctx, func(q postgres.Querier) error {
		if _, err := q.Exec(ctx, `UPDATE products SET is_active = false WHERE category_id = $1`, id); err != nil {
			return err
		}
		ct, err := q.Exec(ctx, `UPDATE categories SET is_active = false WHERE id = $1`, id)
		if err != nil {
			return err
		}
		ok = ct.RowsAffected() > 0
		return nil
	})
	return ok, err
}
