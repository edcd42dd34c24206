package product

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item that can be put on an order line.
type Product struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}

// Repository defines read operations for the product catalog.
type Repository interface {
	List(ctx context.Context) ([]Product, error)
	GetByID(ctx context.Context, id int64) (*Product, error)
}

// Defaults returns the catalog seeded into an empty store.
func Defaults() []Product {
	return []Product{
		{ID: 1, Name: "BATTERY", Price: decimal.NewFromInt(50000)},
		{ID: 2, Name: "CHARGER", Price: decimal.NewFromInt(100000)},
	}
}
