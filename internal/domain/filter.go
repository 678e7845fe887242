package domain

import "github.com/shopspring/decimal"

// AllCategories disables the category filter.
const AllCategories = "all"

// SortKey selects the ordering applied after filtering.
type SortKey string

const (
	SortDefault   SortKey = "default"
	SortPriceAsc  SortKey = "price-asc"
	SortPriceDesc SortKey = "price-desc"
	SortNameAsc   SortKey = "name-asc"
)

// Valid reports whether k is one of the known sort keys.
func (k SortKey) Valid() bool {
	switch k {
	case SortDefault, SortPriceAsc, SortPriceDesc, SortNameAsc:
		return true
	}
	return false
}

// FilterState is the set of active storefront filters. MaxPrice is inclusive;
// an invalid (unset) MaxPrice means no ceiling.
type FilterState struct {
	Category    string              `json:"category"`
	MaxPrice    decimal.NullDecimal `json:"maxPrice"`
	InStockOnly bool                `json:"inStockOnly"`
	SortKey     SortKey             `json:"sortKey"`
}

// DefaultFilterState shows the whole catalog in catalog order.
func DefaultFilterState() FilterState {
	return FilterState{Category: AllCategories, SortKey: SortDefault}
}
