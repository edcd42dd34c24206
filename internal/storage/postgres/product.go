package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/orderdesk/internal/domain/product"
)

const (
	listProductsSQL   = `SELECT id, name, price FROM products ORDER BY id`
	getProductByIDSQL = `SELECT id, name, price FROM products WHERE id = $1`
	countProductsSQL  = `SELECT COUNT(*) FROM products`

	upsertProductSQL = `INSERT INTO products (id, name, price) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, price = EXCLUDED.price`

	// Explicit ids bypass the serial sequence; move it past them.
	syncProductSequenceSQL = `SELECT setval(pg_get_serial_sequence('products', 'id'),
		GREATEST((SELECT MAX(id) FROM products), 1))`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by PostgreSQL.
type ProductRepository struct {
	pool *pgxpool.Pool
}

// NewProductRepository returns a ProductRepository that uses the given pool.
func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// List returns all products from the catalog ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	rows, err := r.pool.Query(ctx, getProductByIDSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// Upsert inserts p or overwrites the name and price of the product with the same ID.
func (r *ProductRepository) Upsert(ctx context.Context, p product.Product) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, upsertProductSQL, p.ID, p.Name, p.Price); err != nil {
			return fmt.Errorf("upserting product %d: %w", p.ID, err)
		}
		if _, err := tx.Exec(ctx, syncProductSequenceSQL); err != nil {
			return fmt.Errorf("syncing product sequence: %w", err)
		}
		return nil
	})
}

// SeedIfEmpty inserts seed when the catalog has no rows and reports whether
// it did. Check and insert share one transaction.
func (r *ProductRepository) SeedIfEmpty(ctx context.Context, seed []product.Product) (bool, error) {
	seeded := false
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		var n int64
		if err := tx.QueryRow(ctx, countProductsSQL).Scan(&n); err != nil {
			return fmt.Errorf("counting products: %w", err)
		}
		if n > 0 || len(seed) == 0 {
			return nil
		}

		for _, p := range seed {
			if _, err := tx.Exec(ctx, upsertProductSQL, p.ID, p.Name, p.Price); err != nil {
				return fmt.Errorf("seeding product %q: %w", p.Name, err)
			}
		}
		if _, err := tx.Exec(ctx, syncProductSequenceSQL); err != nil {
			return fmt.Errorf("syncing product sequence: %w", err)
		}
		seeded = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return seeded, nil
}

func scanProduct(row pgx.CollectableRow) (product.Product, error) {
	var p product.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price)
	return p, err
}
