package product

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/go-faster/errors"
)

// Catalog is an in-memory snapshot of the product catalog. The snapshot only
// changes when Refresh is called; callers that need fresh prices refresh first.
type Catalog struct {
	repo Repository

	mu     sync.RWMutex
	byID   map[int64]Product
	byName map[string]Product
	order  []int64
}

// NewCatalog returns an empty Catalog backed by repo.
func NewCatalog(repo Repository) *Catalog {
	return &Catalog{
		repo:   repo,
		byID:   map[int64]Product{},
		byName: map[string]Product{},
	}
}

// Refresh reloads the snapshot from the repository. On error the previous
// snapshot is kept.
func (c *Catalog) Refresh(ctx context.Context) error {
	products, err := c.repo.List(ctx)
	if err != nil {
		return errors.Wrap(err, "list products")
	}

	byID := make(map[int64]Product, len(products))
	byName := make(map[string]Product, len(products))
	order := make([]int64, 0, len(products))
	for _, p := range products {
		byID[p.ID] = p
		byName[p.Name] = p
		order = append(order, p.ID)
	}

	c.mu.Lock()
	c.byID, c.byName, c.order = byID, byName, order
	c.mu.Unlock()
	return nil
}

// Products returns the snapshot in repository order.
func (c *Catalog) Products() []Product {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make([]Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Resolve finds a product by exact, case-sensitive name. When no name matches
// and ref is a positive integer it is tried as a product id.
func (c *Catalog) Resolve(ref string) (Product, error) {
	if strings.TrimSpace(ref) == "" {
		return Product{}, ErrEmptyRef
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	if p, ok := c.byName[ref]; ok {
		return p, nil
	}
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		if p, ok := c.byID[id]; ok {
			return p, nil
		}
	}
	return Product{}, &RefNotFoundError{Ref: ref}
}

// ErrEmptyRef is returned by Resolve when no product was selected.
var ErrEmptyRef = errors.New("product selection required")

// RefNotFoundError indicates no catalog entry matches a product reference.
type RefNotFoundError struct {
	Ref string
}

func (e *RefNotFoundError) Error() string {
	return "product " + strconv.Quote(e.Ref) + " not found"
}

// Is reports ErrNotFound equivalence so callers can match on the sentinel.
func (e *RefNotFoundError) Is(target error) bool {
	return target == ErrNotFound
}
