package order

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"
)

// Service submits built orders and serves order history.
type Service struct {
	orders Repository
}

// NewService creates an order Service backed by orders.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// Submit validates and saves the builder's order, then clears the builder.
// On failure the builder is left untouched.
func (s *Service) Submit(ctx context.Context, b *Builder) (int64, error) {
	d := b.Draft()
	if err := d.Validate(); err != nil {
		return 0, err
	}

	id, err := s.orders.Save(ctx, d)
	if err != nil {
		return 0, errors.Wrapf(err, "save order %q", d.OrderNumber)
	}

	zctx.From(ctx).Info("Order saved",
		zap.Int64("order_id", id),
		zap.String("order_number", d.OrderNumber),
		zap.Int("lines", len(d.Lines)),
		zap.Stringer("total", d.TotalAmount()),
	)

	b.Clear()
	return id, nil
}

// ListOrders returns all order headers, newest first.
func (s *Service) ListOrders(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// Details returns the lines saved under orderNumber.
func (s *Service) Details(ctx context.Context, orderNumber string) ([]Detail, error) {
	details, err := s.orders.Details(ctx, orderNumber)
	if err != nil {
		return nil, errors.Wrapf(err, "get details for %q", orderNumber)
	}
	return details, nil
}
