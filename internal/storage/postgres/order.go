package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/orderdesk/internal/domain/order"
)

const (
	insertHeaderSQL = `INSERT INTO order_header (order_number, customer_ref, order_date, total_amount)
		VALUES ($1, $2, $3, $4) RETURNING order_id`

	insertDetailSQL = `INSERT INTO order_detail (order_id, product_id, quantity, price, discount, subtotal)
		VALUES ($1, $2, $3, $4, $5, $6)`

	listOrdersSQL = `SELECT order_id, order_number, customer_ref, order_date, total_amount
		FROM order_header ORDER BY order_date DESC, order_id DESC`

	// Product names come from the current catalog; a deleted product yields
	// an empty name.
	orderDetailsSQL = `SELECT d.detail_id, d.order_id, d.product_id, COALESCE(p.name, ''),
		d.quantity, d.price, d.discount, d.subtotal
		FROM order_detail d
		JOIN order_header h ON h.order_id = d.order_id
		LEFT JOIN products p ON p.id = d.product_id
		WHERE h.order_number = $1
		ORDER BY d.order_id, d.detail_id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by PostgreSQL.
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository returns an OrderRepository that uses the given pool.
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Save writes the order header and its details in one transaction.
func (r *OrderRepository) Save(ctx context.Context, d order.Draft) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}

	var id int64
	err := pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, insertHeaderSQL,
			d.OrderNumber, d.CustomerRef, d.OrderDate, d.TotalAmount(),
		).Scan(&id)
		if err != nil {
			return fmt.Errorf("inserting header %q: %w", d.OrderNumber, err)
		}

		for i, det := range d.Details() {
			_, err := tx.Exec(ctx, insertDetailSQL,
				id, det.ProductID, det.Quantity, det.UnitPrice, det.DiscountPercent, det.Subtotal,
			)
			if err != nil {
				return fmt.Errorf("inserting line %d (product %d): %w", i, det.ProductID, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, &order.StorageError{Op: "save order", Err: err}
	}
	return id, nil
}

// List returns all order headers, newest order date first.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.pool.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, &order.StorageError{Op: "list orders", Err: err}
	}

	orders, err := pgx.CollectRows(rows, scanOrder)
	if err != nil {
		return nil, &order.StorageError{Op: "list orders", Err: err}
	}
	return orders, nil
}

// Details returns the lines stored under orderNumber joined with current
// product names. An unknown number yields an empty slice.
func (r *OrderRepository) Details(ctx context.Context, orderNumber string) ([]order.Detail, error) {
	rows, err := r.pool.Query(ctx, orderDetailsSQL, orderNumber)
	if err != nil {
		return nil, &order.StorageError{Op: "get details", Err: err}
	}

	details, err := pgx.CollectRows(rows, scanDetail)
	if err != nil {
		return nil, &order.StorageError{Op: "get details", Err: err}
	}
	if details == nil {
		details = []order.Detail{}
	}
	return details, nil
}

func scanOrder(row pgx.CollectableRow) (order.Order, error) {
	var o order.Order
	err := row.Scan(&o.ID, &o.Number, &o.CustomerRef, &o.Date, &o.TotalAmount)
	return o, err
}

func scanDetail(row pgx.CollectableRow) (order.Detail, error) {
	var (
		det      order.Detail
		quantity int32
	)
	err := row.Scan(
		&det.ID, &det.OrderID, &det.ProductID, &det.ProductName,
		&quantity, &det.UnitPrice, &det.DiscountPercent, &det.Subtotal,
	)
	det.Quantity = int(quantity)
	return det, err
}
