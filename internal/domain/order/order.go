package order

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a persisted, immutable order header. Lines is only populated by
// lookups that fetch details.
type Order struct {
	ID          int64
	Number      string
	CustomerRef string
	Date        time.Time
	TotalAmount decimal.Decimal
	Lines       []Detail
}

// Detail is a persisted order line. ProductName is resolved against the
// catalog at read time, so a renamed product shows its current name.
type Detail struct {
	ID              int64
	OrderID         int64
	ProductID       int64
	ProductName     string
	Quantity        int
	UnitPrice       decimal.Decimal
	DiscountPercent decimal.Decimal
	Subtotal        decimal.Decimal
}

// Draft is a snapshot of a Builder handed to a Repository for saving.
type Draft struct {
	Header
	Lines []Line
}

// Validate checks the preconditions for saving.
func (d Draft) Validate() error {
	if len(d.Lines) == 0 {
		return ErrEmptyOrder
	}
	if strings.TrimSpace(d.OrderNumber) == "" {
		return &ValidationError{Field: "order number", Reason: "required"}
	}
	return nil
}

// Details returns the rows to persist, with subtotals rounded to cents.
func (d Draft) Details() []Detail {
	out := make([]Detail, len(d.Lines))
	for i, l := range d.Lines {
		out[i] = Detail{
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			UnitPrice:       l.UnitPrice,
			DiscountPercent: l.DiscountPercent,
			Subtotal:        l.Subtotal.Round(2),
		}
	}
	return out
}

// TotalAmount is the sum of the persisted detail subtotals.
func (d Draft) TotalAmount() decimal.Decimal {
	total := decimal.Zero
	for _, det := range d.Details() {
		total = total.Add(det.Subtotal)
	}
	return total
}

// Repository defines persistence operations for orders.
type Repository interface {
	// Save writes the header and all details in one transaction and returns
	// the assigned order id.
	Save(ctx context.Context, d Draft) (int64, error)
	// List returns order headers, newest order date first.
	List(ctx context.Context) ([]Order, error)
	// Details returns the lines of every order with the given number. An
	// unknown number yields an empty result.
	Details(ctx context.Context, orderNumber string) ([]Detail, error)
}
