package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// UncategorizedCategory is assigned to products whose source omits a category.
const UncategorizedCategory = "Uncategorized"

// DefaultRating is used when a source record carries no usable rating.
const DefaultRating = 4.5

// PlaceholderImage is the single image of a product whose source lists none.
const PlaceholderImage = "/images/placeholder.jpg"

// RawRecord is one loosely-typed product record as delivered by a catalog source
// (REST API, spreadsheet-backed API, static list or database rows).
type RawRecord map[string]any

// Product is the canonical, normalized product. It is immutable for the lifetime
// of the catalog snapshot it belongs to.
type Product struct {
	ID               string              `json:"id"`
	Name             string              `json:"name"`
	Category         string              `json:"category"`
	BasePrice        decimal.Decimal     `json:"basePrice"`
	SalePrice        decimal.NullDecimal `json:"salePrice"`
	OnSale           bool                `json:"onSale"`
	EffectivePrice   decimal.Decimal     `json:"effectivePrice"`
	DiscountPercent  int                 `json:"discountPercent"`
	InStock          bool                `json:"inStock"`
	Rating           float64             `json:"rating"`
	Images           []string            `json:"images"`
	ShortDescription string              `json:"shortDescription"`
	LongDescription  string              `json:"longDescription"`
}

// PrimaryImage returns the first image; normalized products always have one.
func (p Product) PrimaryImage() string {
	if len(p.Images) == 0 {
		return PlaceholderImage
	}
	return p.Images[0]
}

// ProductRecord is the persisted, admin-editable shape of a product.
// The json tags correspond to the fields expected in catalog management requests/responses.
type ProductRecord struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Category         *string          `json:"category,omitempty"`
	Description      *string          `json:"description,omitempty"`
	ShortDescription *string          `json:"shortDescription,omitempty"`
	LongDescription  *string          `json:"longDescription,omitempty"`
	Price            decimal.Decimal  `json:"price"`
	SalePrice        *decimal.Decimal `json:"salePrice,omitempty"`
	OnSale           bool             `json:"onSale"`
	InStock          bool             `json:"inStock"`
	Rating           *float64         `json:"rating,omitempty"`
	Images           []string         `json:"images"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Raw converts a stored record into the loosely-typed shape consumed by the
// catalog normalizer, using the column-style keys of the database source.
func (r ProductRecord) Raw() RawRecord {
	raw := RawRecord{
		"id":       r.ID,
		"name":     r.Name,
		"price":    r.Price,
		"on_sale":  r.OnSale,
		"in_stock": r.InStock,
		"images":   r.Images,
	}
	if r.Category != nil {
		raw["category"] = *r.Category
	}
	if r.Description != nil {
		raw["description"] = *r.Description
	}
	if r.ShortDescription != nil {
		raw["short_description"] = *r.ShortDescription
	}
	if r.LongDescription != nil {
		raw["long_description"] = *r.LongDescription
	}
	if r.SalePrice != nil {
		raw["sale_price"] = *r.SalePrice
	}
	if r.Rating != nil {
		raw["rating"] = *r.Rating
	}
	return raw
}
