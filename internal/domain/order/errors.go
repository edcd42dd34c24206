package order

import (
	"fmt"

	"github.com/go-faster/errors"
)

var (
	// ErrEmptyOrder is returned when an order without lines is submitted.
	ErrEmptyOrder = errors.New("order has no lines")
	// ErrNoSelection is wrapped by NotFoundError when a line to remove does not exist.
	ErrNoSelection = errors.New("no line selected")
)

// ValidationError indicates bad or missing user input.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError indicates an unresolvable reference: a product, a line or an order.
type NotFoundError struct {
	Kind string
	Ref  string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.Ref)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// StorageError wraps any failure of the durable storage layer together with
// the operation that was running.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
