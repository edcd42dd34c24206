package order

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/xenking/orderdesk/internal/domain/product"
)

// DateLayout is the calendar date format used for order dates.
const DateLayout = "2006-01-02"

// Resolver resolves a product reference (name or id) to a catalog entry.
type Resolver interface {
	Resolve(ref string) (product.Product, error)
}

// Header holds order metadata collected alongside the lines.
type Header struct {
	OrderNumber string
	CustomerRef string
	OrderDate   time.Time
}

// Builder is the in-progress, mutable order. Every failing call leaves the
// builder unchanged.
type Builder struct {
	resolver Resolver
	now      func() time.Time

	header Header
	lines  []Line
}

// NewBuilder returns an empty Builder dated today.
func NewBuilder(resolver Resolver) *Builder {
	b := &Builder{resolver: resolver, now: time.Now}
	b.Clear()
	return b
}

// Header returns the current header fields.
func (b *Builder) Header() Header { return b.header }

// SetOrderNumber sets the order number.
func (b *Builder) SetOrderNumber(number string) { b.header.OrderNumber = number }

// SetCustomerRef sets the customer reference.
func (b *Builder) SetCustomerRef(ref string) { b.header.CustomerRef = ref }

// SetOrderDate sets the order date, truncated to a calendar day.
func (b *Builder) SetOrderDate(t time.Time) { b.header.OrderDate = DateOf(t) }

// ParseOrderDate sets the order date from raw YYYY-MM-DD input.
func (b *Builder) ParseOrderDate(raw string) error {
	t, err := time.Parse(DateLayout, strings.TrimSpace(raw))
	if err != nil {
		return &ValidationError{Field: "order date", Reason: "must be formatted as " + DateLayout}
	}
	b.SetOrderDate(t)
	return nil
}

// AddLine resolves ref, prices a new line and appends it.
func (b *Builder) AddLine(ref string, quantity int, discountPercent decimal.Decimal) (Line, error) {
	if strings.TrimSpace(ref) == "" {
		return Line{}, &ValidationError{Field: "product", Reason: "please select a product"}
	}
	if err := validateQuantity(quantity); err != nil {
		return Line{}, err
	}
	if err := validateDiscount(discountPercent); err != nil {
		return Line{}, err
	}

	p, err := b.resolver.Resolve(ref)
	if err != nil {
		return Line{}, resolveError(ref, err)
	}

	line, err := NewLine(p, quantity, discountPercent)
	if err != nil {
		return Line{}, err
	}
	b.lines = append(b.lines, line)
	return line, nil
}

// AddLineInput parses raw field input and adds the resulting line.
func (b *Builder) AddLineInput(in LineInput) (Line, error) {
	if strings.TrimSpace(in.Product) == "" {
		return Line{}, &ValidationError{Field: "product", Reason: "please select a product"}
	}
	quantity, err := ParseQuantity(in.Quantity)
	if err != nil {
		return Line{}, err
	}
	discount, err := ParseDiscount(in.Discount)
	if err != nil {
		return Line{}, err
	}
	return b.AddLine(in.Product, quantity, discount)
}

// RemoveLine removes whichever line currently occupies position index.
func (b *Builder) RemoveLine(index int) (Line, error) {
	if index < 0 || index >= len(b.lines) {
		return Line{}, &NotFoundError{Kind: "line", Ref: strconv.Itoa(index), Err: ErrNoSelection}
	}
	removed := b.lines[index]
	b.lines = slices.Delete(b.lines, index, index+1)
	return removed, nil
}

// RemoveLineByID removes the line with the given id regardless of its position.
func (b *Builder) RemoveLineByID(id uuid.UUID) (Line, error) {
	idx := slices.IndexFunc(b.lines, func(l Line) bool { return l.ID == id })
	if idx < 0 {
		return Line{}, &NotFoundError{Kind: "line", Ref: id.String(), Err: ErrNoSelection}
	}
	return b.RemoveLine(idx)
}

// Lines returns a copy of the lines in insertion order.
func (b *Builder) Lines() []Line { return slices.Clone(b.lines) }

// Len returns the number of lines.
func (b *Builder) Len() int { return len(b.lines) }

// Total returns the full-precision sum of the current line subtotals.
func (b *Builder) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range b.lines {
		total = total.Add(l.Subtotal)
	}
	return total
}

// Clear drops all lines and resets the header, dating the order today.
func (b *Builder) Clear() {
	b.lines = nil
	b.header = Header{OrderDate: DateOf(b.now())}
}

// Draft snapshots the builder for persistence.
func (b *Builder) Draft() Draft {
	return Draft{Header: b.header, Lines: b.Lines()}
}

// DateOf truncates t to its calendar day in UTC.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func resolveError(ref string, err error) error {
	switch {
	case errors.Is(err, product.ErrEmptyRef):
		return &ValidationError{Field: "product", Reason: "please select a product"}
	case errors.Is(err, product.ErrNotFound):
		return &NotFoundError{Kind: "product", Ref: ref, Err: err}
	default:
		return errors.Wrapf(err, "resolve product %q", ref)
	}
}
