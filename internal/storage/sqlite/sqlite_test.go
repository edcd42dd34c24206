package sqlite

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xenking/orderdesk/internal/domain/order"
	"github.com/xenking/orderdesk/internal/domain/product"
)

// --- Helpers ---

func openTestDB(t *testing.T) (*sql.DB, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "order_system.db")

	conn, err := Open(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, Bootstrap(context.Background(), conn, product.Defaults()))
	return conn, path
}

func newDraft(t *testing.T, number string, date time.Time, lines ...order.Line) order.Draft {
	t.Helper()
	return order.Draft{
		Header: order.Header{OrderNumber: number, CustomerRef: "CUST-1", OrderDate: order.DateOf(date)},
		Lines:  lines,
	}
}

func newLine(t *testing.T, p product.Product, qty int, discount string) order.Line {
	t.Helper()
	l, err := order.NewLine(p, qty, decimal.RequireFromString(discount))
	require.NoError(t, err)
	return l
}

func countRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, conn.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

var (
	battery = product.Product{ID: 1, Name: "BATTERY", Price: decimal.NewFromInt(50000)}
	charger = product.Product{ID: 2, Name: "CHARGER", Price: decimal.NewFromInt(100000)}
)

// --- Tests ---

func TestBootstrap_SeedsEmptyCatalog(t *testing.T) {
	conn, _ := openTestDB(t)

	products, err := NewProductRepository(conn).List(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "BATTERY", products[0].Name)
	assert.True(t, decimal.NewFromInt(50000).Equal(products[0].Price))
	assert.Equal(t, "CHARGER", products[1].Name)
}

func TestBootstrap_IsIdempotent(t *testing.T) {
	ctx := context.Background()
	conn, path := openTestDB(t)

	orders := NewOrderRepository(conn)
	_, err := orders.Save(ctx, newDraft(t, "ORD-1", time.Now(), newLine(t, battery, 1, "0")))
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	for range 2 {
		conn, err = Open(ctx, path)
		require.NoError(t, err)
		require.NoError(t, Bootstrap(ctx, conn, product.Defaults()))

		assert.Equal(t, 2, countRows(t, conn, "products"))
		assert.Equal(t, 1, countRows(t, conn, "order_header"))
		assert.Equal(t, 1, countRows(t, conn, "order_detail"))
		require.NoError(t, conn.Close())
	}
}

func TestSeedIfEmpty_SkipsPopulatedCatalog(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "custom.db")
	conn, err := Open(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, RunMigrations(conn))
	repo := NewProductRepository(conn)
	require.NoError(t, repo.Upsert(ctx, product.Product{ID: 10, Name: "CABLE", Price: decimal.RequireFromString("2500.50")}))

	seeded, err := repo.SeedIfEmpty(ctx, product.Defaults())
	require.NoError(t, err)
	assert.False(t, seeded)

	products, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "CABLE", products[0].Name)
	assert.True(t, decimal.RequireFromString("2500.5").Equal(products[0].Price))
}

func TestProductRepository_GetByID(t *testing.T) {
	conn, _ := openTestDB(t)
	repo := NewProductRepository(conn)

	p, err := repo.GetByID(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "CHARGER", p.Name)

	_, err = repo.GetByID(context.Background(), 42)
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestOrderRepository_BatteryAndChargerOrder(t *testing.T) {
	ctx := context.Background()
	conn, _ := openTestDB(t)
	orders := NewOrderRepository(conn)

	d := newDraft(t, "ORD-1", time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC),
		newLine(t, battery, 2, "10"),
		newLine(t, charger, 1, "0"),
	)

	id, err := orders.Save(ctx, d)
	require.NoError(t, err)
	assert.Positive(t, id)

	list, err := orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, id, list[0].ID)
	assert.Equal(t, "ORD-1", list[0].Number)
	assert.Equal(t, "CUST-1", list[0].CustomerRef)
	assert.Equal(t, time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC), list[0].Date)
	assert.True(t, decimal.NewFromInt(190000).Equal(list[0].TotalAmount))
	assert.Nil(t, list[0].Lines)

	details, err := orders.Details(ctx, "ORD-1")
	require.NoError(t, err)
	require.Len(t, details, 2)

	assert.Equal(t, "BATTERY", details[0].ProductName)
	assert.Equal(t, 2, details[0].Quantity)
	assert.True(t, decimal.NewFromInt(50000).Equal(details[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(10).Equal(details[0].DiscountPercent))
	assert.True(t, decimal.NewFromInt(90000).Equal(details[0].Subtotal))
	assert.Equal(t, id, details[0].OrderID)

	assert.Equal(t, "CHARGER", details[1].ProductName)
	assert.True(t, decimal.NewFromInt(100000).Equal(details[1].Subtotal))

	sum := details[0].Subtotal.Add(details[1].Subtotal)
	assert.True(t, sum.Equal(list[0].TotalAmount))
}

func TestOrderRepository_SaveIsAtomic(t *testing.T) {
	ctx := context.Background()
	conn, _ := openTestDB(t)
	orders := NewOrderRepository(conn)

	// The header and first detail insert succeed; the second detail violates
	// the product foreign key.
	ghost := product.Product{ID: 999, Name: "GHOST", Price: decimal.NewFromInt(1)}
	d := newDraft(t, "ORD-FAIL", time.Now(),
		newLine(t, battery, 1, "0"),
		newLine(t, ghost, 1, "0"),
	)

	_, err := orders.Save(ctx, d)

	var sErr *order.StorageError
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "save order", sErr.Op)
	assert.Contains(t, err.Error(), "product 999")

	assert.Zero(t, countRows(t, conn, "order_header"))
	assert.Zero(t, countRows(t, conn, "order_detail"))

	list, err := orders.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	// The connection is usable again after the rollback.
	_, err = orders.Save(ctx, newDraft(t, "ORD-OK", time.Now(), newLine(t, battery, 1, "0")))
	require.NoError(t, err)
	assert.Equal(t, 1, countRows(t, conn, "order_header"))
}

func TestOrderRepository_SaveRejectsInvalidDraft(t *testing.T) {
	ctx := context.Background()
	conn, _ := openTestDB(t)
	orders := NewOrderRepository(conn)

	_, err := orders.Save(ctx, newDraft(t, "ORD-EMPTY", time.Now()))
	require.ErrorIs(t, err, order.ErrEmptyOrder)

	_, err = orders.Save(ctx, newDraft(t, "  ", time.Now(), newLine(t, battery, 1, "0")))
	var vErr *order.ValidationError
	require.ErrorAs(t, err, &vErr)

	assert.Zero(t, countRows(t, conn, "order_header"))
	assert.Zero(t, countRows(t, conn, "order_detail"))
}

func TestOrderRepository_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	conn, _ := openTestDB(t)
	orders := NewOrderRepository(conn)

	dates := map[string]time.Time{
		"ORD-A": time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		"ORD-B": time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC),
		"ORD-C": time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
	}
	for _, number := range []string{"ORD-A", "ORD-B", "ORD-C"} {
		_, err := orders.Save(ctx, newDraft(t, number, dates[number], newLine(t, charger, 1, "0")))
		require.NoError(t, err)
	}

	list, err := orders.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, "ORD-B", list[0].Number)
	assert.Equal(t, "ORD-C", list[1].Number)
	assert.Equal(t, "ORD-A", list[2].Number)
}

func TestOrderRepository_DetailsUseCurrentProductName(t *testing.T) {
	ctx := context.Background()
	conn, _ := openTestDB(t)
	orders := NewOrderRepository(conn)

	_, err := orders.Save(ctx, newDraft(t, "ORD-1", time.Now(), newLine(t, battery, 1, "5")))
	require.NoError(t, err)

	renamed := product.Product{ID: 1, Name: "LI-ION BATTERY", Price: decimal.NewFromInt(65000)}
	require.NoError(t, NewProductRepository(conn).Upsert(ctx, renamed))

	details, err := orders.Details(ctx, "ORD-1")
	require.NoError(t, err)
	require.Len(t, details, 1)
	assert.Equal(t, "LI-ION BATTERY", details[0].ProductName)
	// Price and discount stay as they were at order time.
	assert.True(t, decimal.NewFromInt(50000).Equal(details[0].UnitPrice))
	assert.True(t, decimal.NewFromInt(47500).Equal(details[0].Subtotal))
}

func TestOrderRepository_DetailsUnknownNumber(t *testing.T) {
	conn, _ := openTestDB(t)

	details, err := NewOrderRepository(conn).Details(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestOrderRepository_StorageErrors(t *testing.T) {
	ctx := context.Background()
	conn, _ := openTestDB(t)
	orders := NewOrderRepository(conn)
	require.NoError(t, conn.Close())

	var sErr *order.StorageError

	_, err := orders.Save(ctx, newDraft(t, "ORD-1", time.Now(), newLine(t, battery, 1, "0")))
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "save order", sErr.Op)

	_, err = orders.List(ctx)
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "list orders", sErr.Op)

	_, err = orders.Details(ctx, "ORD-1")
	require.ErrorAs(t, err, &sErr)
	assert.Equal(t, "get details", sErr.Op)
}
