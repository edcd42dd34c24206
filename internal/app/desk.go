package app

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/orderdesk/internal/domain/order"
	"github.com/xenking/orderdesk/internal/domain/product"
)

// Desk is the core-facing API consumed by a presentation layer: catalog
// lookups, order building and order history.
type Desk struct {
	store   *Store
	catalog *product.Catalog
	orders  *order.Service
}

// NewDesk wires a Desk on top of store and loads the catalog snapshot.
func NewDesk(ctx context.Context, store *Store) (*Desk, error) {
	d := &Desk{
		store:   store,
		catalog: product.NewCatalog(store.Products),
		orders:  order.NewService(store.Orders),
	}
	if err := d.RefreshCatalog(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// RefreshCatalog reloads product names and prices from storage.
func (d *Desk) RefreshCatalog(ctx context.Context) error {
	if err := d.catalog.Refresh(ctx); err != nil {
		return errors.Wrap(err, "refresh catalog")
	}
	return nil
}

// Products returns the current catalog snapshot.
func (d *Desk) Products() []product.Product { return d.catalog.Products() }

// ResolveProduct looks a product up by exact name or id.
func (d *Desk) ResolveProduct(ref string) (product.Product, error) {
	return d.catalog.Resolve(ref)
}

// NewBuilder refreshes the catalog and returns an empty order dated today.
func (d *Desk) NewBuilder(ctx context.Context) (*order.Builder, error) {
	if err := d.RefreshCatalog(ctx); err != nil {
		return nil, err
	}
	return order.NewBuilder(d.catalog), nil
}

// Submit saves the builder's order and clears the builder on success.
func (d *Desk) Submit(ctx context.Context, b *order.Builder) (int64, error) {
	return d.orders.Submit(ctx, b)
}

// ListOrders returns all order headers, newest first.
func (d *Desk) ListOrders(ctx context.Context) ([]order.Order, error) {
	return d.orders.ListOrders(ctx)
}

// Details returns the lines saved under orderNumber.
func (d *Desk) Details(ctx context.Context, orderNumber string) ([]order.Detail, error) {
	return d.orders.Details(ctx, orderNumber)
}

// OrderInput is an order as raw field input, e.g. decoded from a file.
type OrderInput struct {
	OrderNumber string            `json:"order_number"`
	CustomerRef string            `json:"customer_ref"`
	OrderDate   string            `json:"order_date"`
	Lines       []order.LineInput `json:"lines"`
}

// Place builds an order from raw input and submits it. Validation stops at
// the first bad field and nothing is saved.
func (d *Desk) Place(ctx context.Context, in OrderInput) (int64, error) {
	b, err := d.NewBuilder(ctx)
	if err != nil {
		return 0, err
	}

	b.SetOrderNumber(in.OrderNumber)
	b.SetCustomerRef(in.CustomerRef)
	if in.OrderDate != "" {
		if err := b.ParseOrderDate(in.OrderDate); err != nil {
			return 0, err
		}
	}
	for i, li := range in.Lines {
		if _, err := b.AddLineInput(li); err != nil {
			return 0, errors.Wrapf(err, "line %d", i+1)
		}
	}
	return d.Submit(ctx, b)
}
