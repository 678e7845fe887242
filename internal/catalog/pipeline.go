package catalog

import (
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"storefront-service/internal/domain"
)

// Apply runs the filter/sort pipeline: category, price ceiling, in-stock, then
// a stable sort. The input slice is never modified.
func Apply(products []domain.Product, state domain.FilterState) []domain.Product {
	out := slices.Clone(products)
	if out == nil {
		out = []domain.Product{}
	}

	if state.Category != "" && state.Category != domain.AllCategories {
		out = lo.Filter(out, func(p domain.Product, _ int) bool {
			return p.Category == state.Category
		})
	}
	if state.MaxPrice.Valid {
		ceiling := state.MaxPrice.Decimal
		out = lo.Filter(out, func(p domain.Product, _ int) bool {
			return p.EffectivePrice.LessThanOrEqual(ceiling)
		})
	}
	if state.InStockOnly {
		out = lo.Filter(out, func(p domain.Product, _ int) bool {
			return p.InStock
		})
	}

	sortProducts(out, state.SortKey)
	return out
}

func sortProducts(products []domain.Product, key domain.SortKey) {
	switch key {
	case domain.SortPriceAsc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return a.EffectivePrice.Cmp(b.EffectivePrice)
		})
	case domain.SortPriceDesc:
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return b.EffectivePrice.Cmp(a.EffectivePrice)
		})
	case domain.SortNameAsc:
		// Collators keep internal buffers and are not safe for concurrent use.
		c := collate.New(language.English)
		slices.SortStableFunc(products, func(a, b domain.Product) int {
			return c.CompareString(a.Name, b.Name)
		})
	}
}

// ParseFilterState builds a FilterState from query-string values.
func ParseFilterState(category, maxPrice, inStockOnly, sortKey string) (domain.FilterState, error) {
	const op = "catalog.ParseFilterState"
	state := domain.DefaultFilterState()

	if c := strings.TrimSpace(category); c != "" {
		state.Category = c
	}

	if m := strings.TrimSpace(maxPrice); m != "" {
		ceiling, err := decimal.NewFromString(m)
		if err != nil {
			return state, domain.NewValidation(op, "invalid max price: "+m)
		}
		if ceiling.IsNegative() {
			return state, domain.NewValidation(op, "max price cannot be negative")
		}
		state.MaxPrice = decimal.NewNullDecimal(ceiling)
	}

	if s := strings.TrimSpace(inStockOnly); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return state, domain.NewValidation(op, "invalid in-stock flag: "+s)
		}
		state.InStockOnly = b
	}

	if k := strings.TrimSpace(sortKey); k != "" {
		key := domain.SortKey(k)
		if !key.Valid() {
			return state, domain.NewValidation(op, "unknown sort key: "+k)
		}
		state.SortKey = key
	}
	return state, nil
}
