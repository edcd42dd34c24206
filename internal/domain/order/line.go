package order

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/orderdesk/internal/domain/product"
)

var hundred = decimal.NewFromInt(100)

// Line is a pending order line inside a Builder. Lines are never mutated;
// editing is remove and re-add.
type Line struct {
	ID              uuid.UUID
	ProductID       int64
	ProductName     string
	Quantity        int
	DiscountPercent decimal.Decimal
	UnitPrice       decimal.Decimal
	// Subtotal is kept at full precision; rounding happens on display and persist.
	Subtotal decimal.Decimal
}

// LineInput is raw, unparsed field input for a new line.
type LineInput struct {
	Product  string `json:"product"`
	Quantity string `json:"quantity"`
	Discount string `json:"discount"`
}

// ComputeSubtotal returns quantity * unitPrice * (1 - discountPercent/100)
// without rounding.
func ComputeSubtotal(quantity int, unitPrice, discountPercent decimal.Decimal) (decimal.Decimal, error) {
	if err := validateQuantity(quantity); err != nil {
		return decimal.Zero, err
	}
	if err := validateDiscount(discountPercent); err != nil {
		return decimal.Zero, err
	}
	if !unitPrice.IsPositive() {
		return decimal.Zero, &ValidationError{Field: "price", Reason: "must be greater than 0"}
	}

	// Shift(-2) divides by 100 exactly.
	return decimal.NewFromInt(int64(quantity)).
		Mul(unitPrice).
		Mul(hundred.Sub(discountPercent)).
		Shift(-2), nil
}

// ParseQuantity parses a raw quantity field.
func ParseQuantity(raw string) (int, error) {
	q, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ValidationError{Field: "quantity", Reason: "must be a whole number"}
	}
	return q, validateQuantity(q)
}

// ParseDiscount parses a raw discount percentage field.
func ParseDiscount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, &ValidationError{Field: "discount", Reason: "must be a number"}
	}
	return d, validateDiscount(d)
}

// NewLine prices a line for p. The unit price is captured from p and not
// re-read later.
func NewLine(p product.Product, quantity int, discountPercent decimal.Decimal) (Line, error) {
	subtotal, err := ComputeSubtotal(quantity, p.Price, discountPercent)
	if err != nil {
		return Line{}, err
	}
	return Line{
		ID:              uuid.New(),
		ProductID:       p.ID,
		ProductName:     p.Name,
		Quantity:        quantity,
		DiscountPercent: discountPercent,
		UnitPrice:       p.Price,
		Subtotal:        subtotal,
	}, nil
}

func validateQuantity(q int) error {
	if q <= 0 {
		return &ValidationError{Field: "quantity", Reason: "must be greater than 0"}
	}
	return nil
}

func validateDiscount(d decimal.Decimal) error {
	if d.IsNegative() || d.GreaterThan(hundred) {
		return &ValidationError{Field: "discount", Reason: "must be between 0 and 100"}
	}
	return nil
}
