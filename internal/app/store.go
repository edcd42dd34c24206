package app

import (
	"context"

	"github.com/go-faster/errors"

	"github.com/xenking/orderdesk/internal/domain/order"
	"github.com/xenking/orderdesk/internal/domain/product"
	"github.com/xenking/orderdesk/internal/storage/postgres"
	"github.com/xenking/orderdesk/internal/storage/sqlite"
)

// ProductStore is the catalog side of a Store.
type ProductStore interface {
	product.Repository
	Upsert(ctx context.Context, p product.Product) error
}

// Store bundles the repositories of one storage backend.
type Store struct {
	Products ProductStore
	Orders   order.Repository

	close func()
}

// Close releases the underlying connections.
func (s *Store) Close() {
	if s.close != nil {
		s.close()
	}
}

// OpenStore connects to the configured backend and bootstraps its schema.
// The default catalog is seeded into an empty store when SeedCatalog is set.
func OpenStore(ctx context.Context, cfg StorageConfig) (*Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var seed []product.Product
	if cfg.SeedCatalog {
		seed = product.Defaults()
	}

	switch cfg.Driver {
	case DriverPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, errors.Wrap(err, "create db pool")
		}
		if err := postgres.Bootstrap(ctx, pool, seed); err != nil {
			pool.Close()
			return nil, errors.Wrap(err, "bootstrap postgres")
		}
		return &Store{
			Products: postgres.NewProductRepository(pool),
			Orders:   postgres.NewOrderRepository(pool),
			close:    pool.Close,
		}, nil
	default:
		conn, err := sqlite.Open(ctx, cfg.Path)
		if err != nil {
			return nil, errors.Wrap(err, "open sqlite")
		}
		if err := sqlite.Bootstrap(ctx, conn, seed); err != nil {
			_ = conn.Close()
			return nil, errors.Wrap(err, "bootstrap sqlite")
		}
		return &Store{
			Products: sqlite.NewProductRepository(conn),
			Orders:   sqlite.NewOrderRepository(conn),
			close:    func() { _ = conn.Close() },
		}, nil
	}
}
