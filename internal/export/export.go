// Package export writes order history as gzip-compressed JSON lines, one
// order with its details per line.
package export

import (
	"context"
	"io"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"

	"github.com/xenking/orderdesk/internal/domain/order"
)

// Source provides the orders to export.
type Source interface {
	ListOrders(ctx context.Context) ([]order.Order, error)
	Details(ctx context.Context, orderNumber string) ([]order.Detail, error)
}

// Write streams every order from src into w and returns how many were written.
func Write(ctx context.Context, w io.Writer, src Source) (int, error) {
	orders, err := src.ListOrders(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "list orders")
	}

	gz := pgzip.NewWriter(w)

	// Details are fetched per order number; cache them because one number
	// may cover several saved orders.
	byNumber := make(map[string][]order.Detail)

	var e jx.Encoder
	for i := range orders {
		if err := ctx.Err(); err != nil {
			_ = gz.Close()
			return i, err
		}

		o := orders[i]
		details, ok := byNumber[o.Number]
		if !ok {
			details, err = src.Details(ctx, o.Number)
			if err != nil {
				_ = gz.Close()
				return i, errors.Wrapf(err, "details for %q", o.Number)
			}
			byNumber[o.Number] = details
		}

		e.Reset()
		encodeOrder(&e, o, details)
		if _, err := gz.Write(append(e.Bytes(), '\n')); err != nil {
			_ = gz.Close()
			return i, errors.Wrap(err, "write order")
		}
	}

	if err := gz.Close(); err != nil {
		return len(orders), errors.Wrap(err, "close gzip")
	}
	return len(orders), nil
}

func encodeOrder(e *jx.Encoder, o order.Order, details []order.Detail) {
	e.ObjStart()
	e.FieldStart("order_id")
	e.Int64(o.ID)
	e.FieldStart("order_number")
	e.Str(o.Number)
	e.FieldStart("customer_ref")
	e.Str(o.CustomerRef)
	e.FieldStart("order_date")
	e.Str(o.Date.Format(order.DateLayout))
	e.FieldStart("total_amount")
	e.Str(o.TotalAmount.StringFixed(2))
	e.FieldStart("lines")
	e.ArrStart()
	for _, d := range details {
		if d.OrderID != o.ID {
			continue
		}
		e.ObjStart()
		e.FieldStart("product_id")
		e.Int64(d.ProductID)
		e.FieldStart("product_name")
		e.Str(d.ProductName)
		e.FieldStart("quantity")
		e.Int(d.Quantity)
		e.FieldStart("unit_price")
		e.Str(d.UnitPrice.StringFixed(2))
		e.FieldStart("discount")
		e.Str(d.DiscountPercent.String())
		e.FieldStart("subtotal")
		e.Str(d.Subtotal.StringFixed(2))
		e.ObjEnd()
	}
	e.ArrEnd()
	e.ObjEnd()
}
