package store

import (
	"context"

	"storefront-service/internal/cart"
	"storefront-service/internal/domain"
)

// ListProductsParams holds parameters for listing product records in the
// catalog management API.
type ListProductsParams struct {
	Limit       int
	Offset      int
	SearchQuery *string // matched against name and descriptions
	Category    *string
	InStock     *bool
	OnSale      *bool
	SortBy      string // "name", "price", "created_at" or "updated_at"
	SortOrder   string // "asc" or "desc"
}

// ProductStorer defines the database operations for product records.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.ProductRecord) (*domain.ProductRecord, error)
	GetProductByID(ctx context.Context, id string) (*domain.ProductRecord, error)
	ListProducts(ctx context.Context, params ListProductsParams) ([]domain.ProductRecord, int, error) // Returns records and total count
	UpdateProduct(ctx context.Context, product *domain.ProductRecord) (*domain.ProductRecord, error)
	DeleteProduct(ctx context.Context, id string) error
}

// CatalogLister exposes stored records as raw catalog input, in insertion order.
type CatalogLister interface {
	ListRawRecords(ctx context.Context) ([]domain.RawRecord, error)
}

// CartStorer persists cart sessions. Implementations return ErrCartNotFound,
// which is cart.ErrSessionNotFound, for unknown sessions.
type CartStorer interface {
	cart.Store
}

var (
	_ ProductStorer = (*PostgresStore)(nil)
	_ CatalogLister = (*PostgresStore)(nil)
	_ CartStorer    = (*PostgresStore)(nil)
	_ CartStorer    = (*MemoryCartStore)(nil)
)
