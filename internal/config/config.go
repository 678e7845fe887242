package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Catalog source kinds accepted in CATALOG_SOURCE.
const (
	CatalogSourceStatic   = "static"
	CatalogSourceREST     = "rest"
	CatalogSourceSheet    = "sheet"
	CatalogSourcePostgres = "postgres"
)

// Cart store kinds accepted in CART_STORE.
const (
	CartStoreMemory   = "memory"
	CartStorePostgres = "postgres"
)

// Config holds the application's configuration values.
// Tags like `envconfig:"HTTP_SERVER_PORT"` specify the environment variable name.
// `default:""` provides a default value if the env var is not set.
type Config struct {
	AppEnv     string `envconfig:"APP_ENV" default:"development"` // e.g., development, staging, production
	LogLevel   string `envconfig:"LOG_LEVEL" default:"info"`      // e.g., debug, info, warn, error
	HttpServer ServerConfig
	GrpcServer GrpcServerConfig
	Postgres   PostgresConfig
	Pricing    PricingConfig
	Catalog    CatalogConfig
	Order      OrderConfig
	CartStore  string `envconfig:"CART_STORE" default:"memory"`
}

// ServerConfig holds HTTP server-specific configurations.
type ServerConfig struct {
	Port         string        `envconfig:"HTTP_SERVER_PORT" default:"8080"`
	TimeoutRead  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_READ" default:"15s"`
	TimeoutWrite time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_WRITE" default:"15s"`
	TimeoutIdle  time.Duration `envconfig:"HTTP_SERVER_TIMEOUT_IDLE" default:"60s"`
}

// GrpcServerConfig holds gRPC server-specific configurations.
type GrpcServerConfig struct {
	Port string `envconfig:"GRPC_SERVER_PORT" default:"9090"`
}

// PostgresConfig holds PostgreSQL database connection details. The database is
// optional: an empty Host runs the service without one.
type PostgresConfig struct {
	Host     string `envconfig:"POSTGRES_HOST"`
	Port     string `envconfig:"POSTGRES_PORT" default:"5432"`
	User     string `envconfig:"POSTGRES_USER"`
	Password string `envconfig:"POSTGRES_PASSWORD"`
	DBName   string `envconfig:"POSTGRES_DBNAME"`
	SSLMode  string `envconfig:"POSTGRES_SSLMODE" default:"disable"`
}

// Enabled reports whether a database is configured.
func (pc *PostgresConfig) Enabled() bool {
	return strings.TrimSpace(pc.Host) != ""
}

// DSN constructs the Data Source Name string for connecting to PostgreSQL.
func (pc *PostgresConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		pc.Host, pc.Port, pc.User, pc.Password, pc.DBName, pc.SSLMode)
}

// PricingConfig holds the shipping policy. Shipping is free when the subtotal
// is strictly above the threshold.
type PricingConfig struct {
	FreeShippingThreshold float64 `envconfig:"PRICING_FREE_SHIPPING_THRESHOLD" default:"5000"`
	FlatShippingFee       float64 `envconfig:"PRICING_FLAT_SHIPPING_FEE" default:"250"`
	Currency              string  `envconfig:"PRICING_CURRENCY" default:"RS"`
}

// CatalogConfig selects and tunes the catalog source.
type CatalogConfig struct {
	Source   string        `envconfig:"CATALOG_SOURCE" default:"static"`
	URL      string        `envconfig:"CATALOG_URL"`
	Timeout  time.Duration `envconfig:"CATALOG_TIMEOUT" default:"10s"`
	RetryMax int           `envconfig:"CATALOG_RETRY_MAX" default:"3"`
	TTL      time.Duration `envconfig:"CATALOG_TTL" default:"5m"`
}

// OrderConfig points checkout at an order endpoint. Without one, orders are
// accepted locally.
type OrderConfig struct {
	Endpoint string        `envconfig:"ORDER_ENDPOINT"`
	Timeout  time.Duration `envconfig:"ORDER_TIMEOUT" default:"10s"`
	RetryMax int           `envconfig:"ORDER_RETRY_MAX" default:"1"`
}

// Load initializes the configuration from environment variables and validates it.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil { // The first argument is a prefix for env vars, empty means no prefix
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}
	cfg.Catalog.Source = strings.ToLower(strings.TrimSpace(cfg.Catalog.Source))
	cfg.CartStore = strings.ToLower(strings.TrimSpace(cfg.CartStore))

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	var errs []error

	if c.Pricing.FreeShippingThreshold < 0 {
		errs = append(errs, errors.New("PRICING_FREE_SHIPPING_THRESHOLD must not be negative"))
	}
	if c.Pricing.FlatShippingFee < 0 {
		errs = append(errs, errors.New("PRICING_FLAT_SHIPPING_FEE must not be negative"))
	}

	switch c.Catalog.Source {
	case CatalogSourceStatic:
	case CatalogSourceREST, CatalogSourceSheet:
		if strings.TrimSpace(c.Catalog.URL) == "" {
			errs = append(errs, fmt.Errorf("CATALOG_URL is required for CATALOG_SOURCE=%s", c.Catalog.Source))
		}
	case CatalogSourcePostgres:
		if !c.Postgres.Enabled() {
			errs = append(errs, errors.New("CATALOG_SOURCE=postgres requires POSTGRES_HOST"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CATALOG_SOURCE %q", c.Catalog.Source))
	}
	if c.Catalog.RetryMax < 0 {
		errs = append(errs, errors.New("CATALOG_RETRY_MAX must not be negative"))
	}

	switch c.CartStore {
	case CartStoreMemory:
	case CartStorePostgres:
		if !c.Postgres.Enabled() {
			errs = append(errs, errors.New("CART_STORE=postgres requires POSTGRES_HOST"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown CART_STORE %q", c.CartStore))
	}

	if c.Postgres.Enabled() && (c.Postgres.User == "" || c.Postgres.DBName == "") {
		errs = append(errs, errors.New("POSTGRES_USER and POSTGRES_DBNAME are required when POSTGRES_HOST is set"))
	}

	return errors.Join(errs...)
}
