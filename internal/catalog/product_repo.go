package catalog

import (
	"context"
	"errors"

	"github.com/ariefcatur/go-catalog-orders/internal/postgres"
	"github.com/jackc/pgx/v5"
)

type ProductRepo struct{ DB postgres.Provider }

func (r *ProductRepo) ListActive(ctx context.Context) ([]Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY name`)
}

// ListByCategory returns the active products of one category.
func (r *ProductRepo) ListByCategory(ctx context.Context, categoryID int64) ([]Product, error) {
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE category_id = $1 AND is_active ORDER BY id`, categoryID)
}

// ListPaged returns one page of active products ordered by id. page and
// pageSize are used as given; callers clamp them.
func (r *ProductRepo) ListPaged(ctx context.Context, page, pageSize int) ([]Product, error) {
	offset := (page - 1) * pageSize
	return r.list(ctx, `SELECT `+productColumns+` FROM products WHERE is_active ORDER BY id OFFSET $1 LIMIT $2`, offset, pageSize)
}

func (r *ProductRepo) CountActive(ctx context.Context) (int, error) {
	var n int
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		return q.QueryRow(ctx, `SELECT COUNT(*) FROM products WHERE is_active`).Scan(&n)
	})
	return n, err
}

func (r *ProductRepo) list(ctx context.Context, sql string, args ...any) ([]Product, error) {
	var out []Product
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		rows, err := q.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			p, err := scanProduct(rows)
			if err != nil {
				return err
			}
			out = append(out, p)
		}
		return rows.Err()
	})
	return out, err
}

func (r *ProductRepo) GetByID(ctx context.Context, id int64) (*Product, error) {
	var p *Product
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		got, err := scanProduct(q.QueryRow(ctx, `SELECT `+productColumns+` FROM products WHERE id = $1`, id))
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		p = &got
		return nil
	})
	return p, err
}

// GetByIDWithCategory reads the product and then its category in one batch.
// The category is resolved through the product's stored category_id.
func (r *ProductRepo) GetByIDWithCategory(ctx context.Context, id int64) (*Product, error) {
	var p *Product
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		b := &pgx.Batch{}
		b.Queue(`SELECT `+productColumns+` FROM products WHERE id = $1`, id)
		b.Queue(`SELECT `+categoryColumns+` FROM categories
		          WHERE id = (SELECT category_id FROM products WHERE id = $1)`, id)
		br := q.SendBatch(ctx, b)
		defer func() { _ = br.Close() }()

		got, err := scanProduct(br.QueryRow())
		if errors.Is(err, pgx.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		c, err := scanCategory(br.QueryRow())
		switch {
		case err == nil:
			got.Category = &c
		case !errors.Is(err, pgx.ErrNoRows):
			return err
		}
		p = &got
		return nil
	})
	return p, err
}

// Create stores the product with its price rounded to MoneyScale.
func (r *ProductRepo) Create(ctx context.Context, p *Product) (int64, error) {
	p.Price = p.Price.Round(MoneyScale)
	var id int64
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		return q.QueryRow(ctx, `
			INSERT INTO products (name, price, description, category_id, is_active)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING id, created_date`,
			p.Name, p.Price, p.Description, p.CategoryID, p.IsActive,
		).Scan(&id, &p.CreatedAt)
	})
	if err != nil {
		return 0, err
	}
	p.ID = id
	return id, nil
}

func (r *ProductRepo) Update(ctx context.Context, p *Product) (bool, error) {
	p.Price = p.Price.Round(MoneyScale)
	var ok bool
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		ct, err := q.Exec(ctx, `
			UPDATE products
			   SET name = $2, price = $3, description = $4, category_id = $5, is_active = $6
			 WHERE id = $1`,
			p.ID, p.Name, p.Price, p.Description, p.CategoryID, p.IsActive,
		)
		if err != nil {
			return err
		}
		ok = ct.RowsAffected() > 0
		return nil
	})
	return ok, err
}

// Delete only deactivates the product; the row is kept for order history.
func (r *ProductRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var ok bool
	err := r.DB.WithConn(ctx, func(q postgres.Querier) error {
		ct, err := q.Exec(ctx, `UPDATE products SET is_active = false WHERE id = $1`, id)
		if err != nil {
			return err
		}
		ok = ct.RowsAffected() > 0
		return nil
	})
	return ok, err
}
