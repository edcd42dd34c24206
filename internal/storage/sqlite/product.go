package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/xenking/orderdesk/internal/domain/product"
)

const (
	listProductsSQL   = `SELECT id, name, price FROM products ORDER BY id`
	getProductByIDSQL = `SELECT id, name, price FROM products WHERE id = ?`
	countProductsSQL  = `SELECT COUNT(*) FROM products`

	upsertProductSQL = `INSERT INTO products (id, name, price) VALUES (?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET name = excluded.name, price = excluded.price`
)

var _ product.Repository = (*ProductRepository)(nil)

// ProductRepository implements product.Repository backed by SQLite.
type ProductRepository struct {
	db *sql.DB
}

// NewProductRepository returns a ProductRepository that uses conn.
func NewProductRepository(conn *sql.DB) *ProductRepository {
	return &ProductRepository{db: conn}
}

// List returns all products ordered by ID.
func (r *ProductRepository) List(ctx context.Context) ([]product.Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var products []product.Product
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price); err != nil {
			return nil, fmt.Errorf("scanning product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return products, nil
}

// GetByID returns a single product by its identifier.
func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	var p product.Product
	err := r.db.QueryRowContext(ctx, getProductByIDSQL, id).Scan(&p.ID, &p.Name, &p.Price)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, product.ErrNotFound
		}
		return nil, fmt.Errorf("getting product %d: %w", id, err)
	}
	return &p, nil
}

// Upsert inserts p or overwrites the name and price of the product with the same ID.
func (r *ProductRepository) Upsert(ctx context.Context, p product.Product) error {
	if _, err := r.db.ExecContext(ctx, upsertProductSQL, p.ID, p.Name, p.Price); err != nil {
		return fmt.Errorf("upserting product %d: %w", p.ID, err)
	}
	return nil
}

// SeedIfEmpty inserts seed when the catalog has no rows and reports whether
// it did. Check and insert share one transaction.
func (r *ProductRepository) SeedIfEmpty(ctx context.Context, seed []product.Product) (bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("beginning seed transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var n int
	if err := tx.QueryRowContext(ctx, countProductsSQL).Scan(&n); err != nil {
		return false, fmt.Errorf("counting products: %w", err)
	}
	if n > 0 {
		return false, nil
	}

	for _, p := range seed {
		if _, err := tx.ExecContext(ctx, upsertProductSQL, p.ID, p.Name, p.Price); err != nil {
			return false, fmt.Errorf("seeding product %q: %w", p.Name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("committing seed: %w", err)
	}
	return len(seed) > 0, nil
}
