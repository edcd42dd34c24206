package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/xenking/orderdesk/internal/domain/order"
)

const (
	insertHeaderSQL = `INSERT INTO order_header (order_number, customer_ref, order_date, total_amount)
		VALUES (?, ?, ?, ?)`

	insertDetailSQL = `INSERT INTO order_detail (order_id, product_id, quantity, price, discount, subtotal)
		VALUES (?, ?, ?, ?, ?, ?)`

	listOrdersSQL = `SELECT order_id, order_number, customer_ref, order_date, total_amount
		FROM order_header ORDER BY order_date DESC, order_id DESC`

	// Product names come from the catalog as it is now, not as it was when
	// the order was placed. A deleted product yields an empty name.
	orderDetailsSQL = `SELECT d.detail_id, d.order_id, d.product_id, COALESCE(p.name, ''),
		d.quantity, d.price, d.discount, d.subtotal
		FROM order_detail d
		JOIN order_header h ON h.order_id = d.order_id
		LEFT JOIN products p ON p.id = d.product_id
		WHERE h.order_number = ?
		ORDER BY d.order_id, d.detail_id`
)

var _ order.Repository = (*OrderRepository)(nil)

// OrderRepository implements order.Repository backed by SQLite.
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository returns an OrderRepository that uses conn.
func NewOrderRepository(conn *sql.DB) *OrderRepository {
	return &OrderRepository{db: conn}
}

// Save writes the order header and one detail row per line in a single
// transaction. Nothing is visible to readers unless every row was written.
func (r *OrderRepository) Save(ctx context.Context, d order.Draft) (int64, error) {
	if err := d.Validate(); err != nil {
		return 0, err
	}
	id, err := r.save(ctx, d)
	if err != nil {
		return 0, &order.StorageError{Op: "save order", Err: err}
	}
	return id, nil
}

func (r *OrderRepository) save(ctx context.Context, d order.Draft) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, insertHeaderSQL,
		d.OrderNumber, d.CustomerRef, d.OrderDate.Format(order.DateLayout), d.TotalAmount(),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting header %q: %w", d.OrderNumber, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading order id: %w", err)
	}

	for i, det := range d.Details() {
		_, err := tx.ExecContext(ctx, insertDetailSQL,
			id, det.ProductID, det.Quantity, det.UnitPrice, det.DiscountPercent, det.Subtotal,
		)
		if err != nil {
			return 0, fmt.Errorf("inserting line %d (product %d): %w", i, det.ProductID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing order %q: %w", d.OrderNumber, err)
	}
	return id, nil
}

// List returns all order headers, newest order date first. Details are not loaded.
func (r *OrderRepository) List(ctx context.Context) ([]order.Order, error) {
	rows, err := r.db.QueryContext(ctx, listOrdersSQL)
	if err != nil {
		return nil, &order.StorageError{Op: "list orders", Err: err}
	}
	defer func() { _ = rows.Close() }()

	var orders []order.Order
	for rows.Next() {
		var (
			o    order.Order
			date string
		)
		if err := rows.Scan(&o.ID, &o.Number, &o.CustomerRef, &date, &o.TotalAmount); err != nil {
			return nil, &order.StorageError{Op: "list orders", Err: fmt.Errorf("scanning header: %w", err)}
		}
		if o.Date, err = time.Parse(order.DateLayout, date); err != nil {
			return nil, &order.StorageError{Op: "list orders", Err: fmt.Errorf("parsing date of order %d: %w", o.ID, err)}
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, &order.StorageError{Op: "list orders", Err: err}
	}
	return orders, nil
}

// Details returns the lines stored under orderNumber joined with current
// product names. An unknown number yields an empty slice.
func (r *OrderRepository) Details(ctx context.Context, orderNumber string) ([]order.Detail, error) {
	rows, err := r.db.QueryContext(ctx, orderDetailsSQL, orderNumber)
	if err != nil {
		return nil, &order.StorageError{Op: "get details", Err: err}
	}
	defer func() { _ = rows.Close() }()

	details := []order.Detail{}
	for rows.Next() {
		var det order.Detail
		if err := rows.Scan(
			&det.ID, &det.OrderID, &det.ProductID, &det.ProductName,
			&det.Quantity, &det.UnitPrice, &det.DiscountPercent, &det.Subtotal,
		); err != nil {
			return nil, &order.StorageError{Op: "get details", Err: fmt.Errorf("scanning detail: %w", err)}
		}
		details = append(details, det)
	}
	if err := rows.Err(); err != nil {
		return nil, &order.StorageError{Op: "get details", Err: err}
	}
	return details, nil
}
