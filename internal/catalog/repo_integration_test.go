package catalog

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/ariefcatur/go-catalog-orders/internal/config"
	"github.com/ariefcatur/go-catalog-orders/internal/postgres"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestDB migrates and truncates the database named by
// CATALOG_TEST_DATABASE_DSN, skipping the test when it is unset.
func openTestDB(t *testing.T) *postgres.DB {
	t.Helper()
	dsn := os.Getenv("CATALOG_TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("CATALOG_TEST_DATABASE_DSN not set")
	}
	ctx := context.Background()
	log := zerolog.Nop()

	require.NoError(t, postgres.Migrate(ctx, dsn, log))

	cfg := config.Default().Database
	cfg.DSN = dsn
	db, err := postgres.Connect(ctx, cfg, log)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Pool.Exec(ctx, `TRUNCATE order_items, orders, products, categories RESTART IDENTITY CASCADE`)
	require.NoError(t, err)
	return db
}

type fixture struct {
	categories *CategoryRepo
	products   *ProductRepo
	orders     *OrderRepo
	items      *OrderItemRepo
}

func newFixture(t *testing.T) fixture {
	db := openTestDB(t)
	return fixture{
		categories: &CategoryRepo{DB: db},
		products:   &ProductRepo{DB: db},
		orders:     &OrderRepo{DB: db},
		items:      &OrderItemRepo{DB: db},
	}
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func (f fixture) category(t *testing.T, name string) int64 {
	id, err := f.categories.Create(context.Background(), &Category{Name: name, IsActive: true})
	require.NoError(t, err)
	return id
}

func (f fixture) product(t *testing.T, name, price string, categoryID int64) int64 {
	id, err := f.products.Create(context.Background(), &Product{
		Name: name, Price: dec(price), CategoryID: categoryID, IsActive: true,
	})
	require.NoError(t, err)
	return id
}

func (f fixture) order(t *testing.T, at time.Time, total string) int64 {
	id, err := f.orders.Create(context.Background(), &Order{
		CustomerName: "Jane", ContactEmail: "jane@example.com", TotalAmount: dec(total), OrderDate: at,
	})
	require.NoError(t, err)
	return id
}

func (f fixture) item(t *testing.T, orderID, productID int64, qty int, unit string) int64 {
	id, err := f.items.Create(context.Background(), &OrderItem{
		OrderID: orderID, ProductID: productID, Quantity: qty, UnitPrice: dec(unit),
	})
	require.NoError(t, err)
	return id
}

func TestCategoryRepo_Integration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	elec := f.category(t, "Electronics")
	empty := f.category(t, "Empty")
	f.product(t, "Laptop", "999.00", elec)
	f.product(t, "Phone", "599.00", elec)

	t.Run("with products groups join rows", func(t *testing.T) {
		c, err := f.categories.GetByIDWithProducts(ctx, elec)
		require.NoError(t, err)
		require.NotNil(t, c)
		require.Len(t, c.Products, 2)
		assert.Equal(t, "Laptop", c.Products[0].Name)
		assert.True(t, c.Products[0].Price.Equal(dec("999.00")))
	})

	t.Run("category without products has none", func(t *testing.T) {
		c, err := f.categories.GetByIDWithProducts(ctx, empty)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Empty(t, c.Products)
	})

	t.Run("missing ids are absent", func(t *testing.T) {
		c, err := f.categories.GetByID(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, c)
		ok, err := f.categories.Update(ctx, &Category{ID: 9999, Name: "x"})
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete deactivates category and its products", func(t *testing.T) {
		ok, err := f.categories.Delete(ctx, elec)
		require.NoError(t, err)
		assert.True(t, ok)

		c, err := f.categories.GetByID(ctx, elec)
		require.NoError(t, err)
		assert.False(t, c.IsActive)

		ps, err := f.products.ListByCategory(ctx, elec)
		require.NoError(t, err)
		assert.Empty(t, ps)

		active, err := f.categories.ListActive(ctx)
		require.NoError(t, err)
		for _, c := range active {
			assert.NotEqual(t, elec, c.ID)
		}

		gone, err := f.categories.GetByIDWithProducts(ctx, elec)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})
}

func TestProductRepo_Integration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat := f.category(t, "Books")
	var ids []int64
	for _, n := range []string{"C", "A", "E", "B", "D"} {
		ids = append(ids, f.product(t, n, "10.00", cat))
	}
	ok, err := f.products.Delete(ctx, ids[2])
	require.NoError(t, err)
	require.True(t, ok)

	t.Run("list active ordered by name", func(t *testing.T) {
		ps, err := f.products.ListActive(ctx)
		require.NoError(t, err)
		var names []string
		for _, p := range ps {
			names = append(names, p.Name)
		}
		assert.Equal(t, []string{"A", "B", "C", "D"}, names)
	})

	t.Run("pages cover active set once", func(t *testing.T) {
		n, err := f.products.CountActive(ctx)
		require.NoError(t, err)
		require.Equal(t, 4, n)

		seen := map[int64]bool{}
		for page := 1; page <= 2; page++ {
			ps, err := f.products.ListPaged(ctx, page, 3)
			require.NoError(t, err)
			for _, p := range ps {
				assert.False(t, seen[p.ID], "duplicate %d", p.ID)
				seen[p.ID] = true
			}
		}
		assert.Len(t, seen, 4)
	})

	t.Run("with category attaches snapshot", func(t *testing.T) {
		p, err := f.products.GetByIDWithCategory(ctx, ids[0])
		require.NoError(t, err)
		require.NotNil(t, p)
		require.NotNil(t, p.Category)
		assert.Equal(t, "Books", p.Category.Name)

		missing, err := f.products.GetByIDWithCategory(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("soft delete keeps the row", func(t *testing.T) {
		p, err := f.products.GetByID(ctx, ids[2])
		require.NoError(t, err)
		require.NotNil(t, p)
		assert.False(t, p.IsActive)
	})
}

func TestOrderItemRepo_TotalsFollowItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat := f.category(t, "Electronics")
	laptop := f.product(t, "Laptop", "100.00", cat)
	mouse := f.product(t, "Mouse", "50.00", cat)
	orderID := f.order(t, time.Now(), "0")

	first := f.item(t, orderID, laptop, 1, "100.00")
	f.item(t, orderID, mouse, 1, "50.00")
	_, err := f.orders.Update(ctx, &Order{ID: orderID, CustomerName: "Jane", TotalAmount: dec("150.00")})
	require.NoError(t, err)

	t.Run("with items returns header and names", func(t *testing.T) {
		o, err := f.orders.GetByIDWithItems(ctx, orderID)
		require.NoError(t, err)
		require.NotNil(t, o)
		require.Len(t, o.Items, 2)
		assert.Equal(t, "Laptop", o.Items[0].ProductName)
		assert.True(t, o.TotalAmount.Equal(dec("150.00")))
	})

	t.Run("price snapshot survives catalog change", func(t *testing.T) {
		p, err := f.products.GetByID(ctx, laptop)
		require.NoError(t, err)
		p.Price = dec("500.00")
		_, err = f.products.Update(ctx, p)
		require.NoError(t, err)

		it, err := f.items.GetByID(ctx, first)
		require.NoError(t, err)
		assert.True(t, it.UnitPrice.Equal(dec("100.00")))
	})

	t.Run("update recomputes item and order", func(t *testing.T) {
		ok, err := f.items.Update(ctx, &OrderItem{ID: first, Quantity: 3, UnitPrice: dec("100.00")})
		require.NoError(t, err)
		require.True(t, ok)

		o, err := f.orders.GetByID(ctx, orderID)
		require.NoError(t, err)
		assert.True(t, o.TotalAmount.Equal(dec("350.00")), o.TotalAmount.String())
	})

	t.Run("delete one item leaves the rest", func(t *testing.T) {
		ok, err := f.items.Delete(ctx, first)
		require.NoError(t, err)
		require.True(t, ok)

		o, err := f.orders.GetByID(ctx, orderID)
		require.NoError(t, err)
		assert.True(t, o.TotalAmount.Equal(dec("50.00")), o.TotalAmount.String())

		ok, err = f.items.Delete(ctx, first)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("delete all resets total", func(t *testing.T) {
		ok, err := f.items.DeleteAllByOrder(ctx, orderID)
		require.NoError(t, err)
		assert.True(t, ok)

		o, err := f.orders.GetByIDWithItems(ctx, orderID)
		require.NoError(t, err)
		assert.Empty(t, o.Items)
		assert.True(t, o.TotalAmount.IsZero())
	})

	t.Run("non-positive quantity rejected before writing", func(t *testing.T) {
		_, err := f.items.Create(ctx, &OrderItem{OrderID: orderID, ProductID: mouse, Quantity: 0})
		assert.ErrorIs(t, err, ErrInvalidQuantity)
	})
}

func TestOrderRepo_Integration(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	cat := f.category(t, "Electronics")
	laptop := f.product(t, "Laptop", "10.00", cat)

	jan31 := f.order(t, time.Date(2024, 1, 31, 23, 59, 0, 0, time.UTC), "100.00")
	f.order(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), "40.00")
	f.item(t, jan31, laptop, 1, "10.00")

	t.Run("total sales honours day bounds", func(t *testing.T) {
		start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
		got, err := f.orders.TotalSales(ctx, SalesFilter{Start: &start, End: &end})
		require.NoError(t, err)
		assert.True(t, got.Equal(dec("100.00")), got.String())

		all, err := f.orders.TotalSales(ctx, SalesFilter{})
		require.NoError(t, err)
		assert.True(t, all.Equal(dec("140.00")), all.String())

		far := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
		none, err := f.orders.TotalSales(ctx, SalesFilter{Start: &far})
		require.NoError(t, err)
		assert.True(t, none.IsZero())
	})

	t.Run("status overwrite is unrestricted", func(t *testing.T) {
		ok, err := f.orders.UpdateStatus(ctx, jan31, StatusDelivered)
		require.NoError(t, err)
		require.True(t, ok)
		ok, err = f.orders.UpdateStatus(ctx, jan31, StatusPending)
		require.NoError(t, err)
		require.True(t, ok)

		pending, err := f.orders.ListByStatus(ctx, StatusPending)
		require.NoError(t, err)
		require.Len(t, pending, 2)
		assert.True(t, pending[0].OrderDate.After(pending[1].OrderDate))
	})

	t.Run("delete cascades to items", func(t *testing.T) {
		ok, err := f.orders.Delete(ctx, jan31)
		require.NoError(t, err)
		require.True(t, ok)

		o, err := f.orders.GetByIDWithItems(ctx, jan31)
		require.NoError(t, err)
		assert.Nil(t, o)
		items, err := f.items.ListByOrder(ctx, jan31)
		require.NoError(t, err)
		assert.Empty(t, items)

		ok, err = f.orders.Delete(ctx, jan31)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestOrderItemRepo_SubCentPriceMatchesStoredRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cat := f.category(t, "Stationery")
	p := f.product(t, "Pencil", "0.10", cat)
	orderID := f.order(t, time.Now(), "0")

	it := &OrderItem{OrderID: orderID, ProductID: p, Quantity: 3, UnitPrice: dec("0.335")}
	_, err := f.items.Create(ctx, it)
	require.NoError(t, err)

	stored, err := f.items.GetByID(ctx, it.ID)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.True(t, stored.UnitPrice.Equal(it.UnitPrice), stored.UnitPrice.String())
	assert.True(t, stored.TotalPrice.Equal(it.TotalPrice), stored.TotalPrice.String())
	assert.True(t, stored.TotalPrice.Equal(stored.UnitPrice.Mul(decimal.NewFromInt(3))))
}
