package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "8080", cfg.HttpServer.Port)
	assert.Equal(t, "9090", cfg.GrpcServer.Port)
	assert.Equal(t, 15*time.Second, cfg.HttpServer.TimeoutRead)
	assert.Equal(t, 5000.0, cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, 250.0, cfg.Pricing.FlatShippingFee)
	assert.Equal(t, "RS", cfg.Pricing.Currency)
	assert.Equal(t, CatalogSourceStatic, cfg.Catalog.Source)
	assert.Equal(t, 5*time.Minute, cfg.Catalog.TTL)
	assert.Equal(t, CartStoreMemory, cfg.CartStore)
	assert.False(t, cfg.Postgres.Enabled())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("CATALOG_SOURCE", "REST")
	t.Setenv("CATALOG_URL", "https://api.example.com/api/products")
	t.Setenv("CATALOG_TTL", "30s")
	t.Setenv("PRICING_FREE_SHIPPING_THRESHOLD", "50")
	t.Setenv("PRICING_FLAT_SHIPPING_FEE", "9.99")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_USER", "storefront")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DBNAME", "storefront")
	t.Setenv("CART_STORE", "postgres")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, CatalogSourceREST, cfg.Catalog.Source)
	assert.Equal(t, 30*time.Second, cfg.Catalog.TTL)
	assert.Equal(t, 50.0, cfg.Pricing.FreeShippingThreshold)
	assert.Equal(t, 9.99, cfg.Pricing.FlatShippingFee)
	assert.Equal(t, CartStorePostgres, cfg.CartStore)
	assert.True(t, cfg.Postgres.Enabled())
	assert.Equal(t, "host=db port=5432 user=storefront password=secret dbname=storefront sslmode=disable", cfg.Postgres.DSN())
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		msg  string
	}{
		{"negative fee", map[string]string{"PRICING_FLAT_SHIPPING_FEE": "-1"}, "PRICING_FLAT_SHIPPING_FEE"},
		{"negative threshold", map[string]string{"PRICING_FREE_SHIPPING_THRESHOLD": "-5"}, "PRICING_FREE_SHIPPING_THRESHOLD"},
		{"unknown source", map[string]string{"CATALOG_SOURCE": "ftp"}, "unknown CATALOG_SOURCE"},
		{"sheet without url", map[string]string{"CATALOG_SOURCE": "sheet"}, "CATALOG_URL is required"},
		{"postgres source without db", map[string]string{"CATALOG_SOURCE": "postgres"}, "requires POSTGRES_HOST"},
		{"postgres carts without db", map[string]string{"CART_STORE": "postgres"}, "requires POSTGRES_HOST"},
		{"unknown cart store", map[string]string{"CART_STORE": "redis"}, "unknown CART_STORE"},
		{"db without user", map[string]string{"POSTGRES_HOST": "db"}, "POSTGRES_USER"},
		{"bad duration", map[string]string{"CATALOG_TTL": "soon"}, "failed to process configuration"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}
}
