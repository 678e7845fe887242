package catalog

import (
	"strings"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"storefront-service/internal/domain"
)

// MinSearchQueryLength is the shortest query Search answers.
const MinSearchQueryLength = 2

// Find returns the product with the given id.
func Find(products []domain.Product, id string) (domain.Product, error) {
	p, ok := lo.Find(products, func(p domain.Product) bool { return p.ID == id })
	if !ok {
		return domain.Product{}, domain.NewNotFound("catalog.Find", domain.ErrMsgProductNotFound)
	}
	return p, nil
}

// Search matches the query case-insensitively against name, category and short
// description, keeping catalog order.
func Search(products []domain.Product, query string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if len([]rune(q)) < MinSearchQueryLength {
		return []domain.Product{}
	}
	return lo.Filter(products, func(p domain.Product, _ int) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q) ||
			strings.Contains(strings.ToLower(p.ShortDescription), q)
	})
}

// Similar returns up to limit products from the same category as id, then
// tops up with products from other categories, both in catalog order.
func Similar(products []domain.Product, id string, limit int) ([]domain.Product, error) {
	current, err := Find(products, id)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		return []domain.Product{}, nil
	}

	others := lo.Reject(products, func(p domain.Product, _ int) bool { return p.ID == current.ID })
	same, rest := lo.FilterReject(others, func(p domain.Product, _ int) bool {
		return p.Category == current.Category
	})
	out := append(same, rest...)
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// CategoryCount is one entry of Facets.Categories.
type CategoryCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Facets summarizes a catalog for the filter sidebar.
type Facets struct {
	Categories   []CategoryCount `json:"categories"`
	InStock      int             `json:"inStock"`
	OutOfStock   int             `json:"outOfStock"`
	MinPrice     decimal.Decimal `json:"minPrice"`
	MaxPrice     decimal.Decimal `json:"maxPrice"`
	PriceCeiling decimal.Decimal `json:"priceCeiling"`
}

// BuildFacets computes category counts (first-seen order), stock counts and the
// effective price range. PriceCeiling is the max price rounded up to a whole
// unit and is the default ceiling of the price slider.
func BuildFacets(products []domain.Product) Facets {
	f := Facets{
		Categories:   []CategoryCount{},
		MinPrice:     decimal.Zero,
		MaxPrice:     decimal.Zero,
		PriceCeiling: decimal.Zero,
	}
	if len(products) == 0 {
		return f
	}

	counts := lo.CountValuesBy(products, func(p domain.Product) string { return p.Category })
	for _, name := range lo.Uniq(lo.Map(products, func(p domain.Product, _ int) string { return p.Category })) {
		f.Categories = append(f.Categories, CategoryCount{Name: name, Count: counts[name]})
	}

	f.InStock = lo.CountBy(products, func(p domain.Product) bool { return p.InStock })
	f.OutOfStock = len(products) - f.InStock

	f.MinPrice = products[0].EffectivePrice
	f.MaxPrice = products[0].EffectivePrice
	for _, p := range products[1:] {
		f.MinPrice = decimal.Min(f.MinPrice, p.EffectivePrice)
		f.MaxPrice = decimal.Max(f.MaxPrice, p.EffectivePrice)
	}
	f.PriceCeiling = f.MaxPrice.Ceil()
	return f
}
