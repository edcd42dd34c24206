package app

import (
	"os"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Storage drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds the complete application configuration, loadable from
// environment variables (ORDERDESK_ prefix), flags, or YAML config files.
type Config struct {
	Storage StorageConfig
}

// StorageConfig selects and configures the durable store.
type StorageConfig struct {
	Driver      string `default:"sqlite" usage:"Storage backend: sqlite or postgres"`
	Path        string `default:"order_system.db" usage:"SQLite database file"`
	DatabaseURL string `usage:"PostgreSQL connection URL (ORDERDESK_STORAGE_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	SeedCatalog bool   `default:"true" usage:"Seed the default products into an empty catalog" flag:"seed-catalog"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files and the flags in args. It returns the positional arguments left
// after flag parsing.
func LoadConfig(args []string) (*Config, []string, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "ORDERDESK",
		Args:      args,
		Files:     []string{"orderdesk.yaml", "/etc/orderdesk/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if err := cfg.Storage.Validate(); err != nil {
		return nil, nil, err
	}
	return &cfg, loader.Flags().Args(), nil
}

// Validate checks that the selected driver has what it needs.
func (c StorageConfig) Validate() error {
	switch c.Driver {
	case DriverSQLite:
		if c.Path == "" {
			return errors.New("sqlite path is required")
		}
	case DriverPostgres:
		if c.DatabaseURL == "" {
			return errors.New("database URL is required for postgres: set ORDERDESK_STORAGE_DATABASE_URL or DATABASE_URL")
		}
	default:
		return errors.Errorf("unknown storage driver %q", c.Driver)
	}
	return nil
}

// applyPlatformDefaults maps the conventional DATABASE_URL variable onto the
// storage configuration.
func (c *Config) applyPlatformDefaults() {
	if c.Storage.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.Storage.DatabaseURL = v
		}
	}
}
