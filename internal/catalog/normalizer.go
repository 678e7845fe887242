package catalog

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"storefront-service/internal/domain"
)

// Canonical field names, used as alias-table keys and in Issue.Field.
const (
	FieldID               = "id"
	FieldName             = "name"
	FieldCategory         = "category"
	FieldBasePrice        = "basePrice"
	FieldSalePrice        = "salePrice"
	FieldOnSale           = "onSale"
	FieldInStock          = "inStock"
	FieldRating           = "rating"
	FieldImages           = "images"
	FieldShortDescription = "shortDescription"
	FieldLongDescription  = "longDescription"
	FieldDescription      = "description"
)

// fieldAliases lists, per canonical field, the source keys tried in order.
// Adding a new source spelling is a one-line change here. Keys are matched
// exactly first and case-insensitively second.
var fieldAliases = map[string][]string{
	FieldID:               {"id", "_id", "productId", "product_id", "sku"},
	FieldName:             {"name", "title", "productName", "product_name"},
	FieldCategory:         {"category", "categoryName", "category_name", "type"},
	FieldBasePrice:        {"price", "basePrice", "base_price", "originalPrice", "original_price", "regularPrice"},
	FieldSalePrice:        {"salePrice", "sale_price", "discountPrice", "discount_price", "offerPrice"},
	FieldOnSale:           {"onSale", "on_sale", "isSale", "is_sale", "sale"},
	FieldInStock:          {"inStock", "in_stock", "instock", "available"},
	FieldRating:           {"rating", "stars"},
	FieldImages:           {"images", "image", "imageUrl", "image_url", "imageUrls", "photos"},
	FieldShortDescription: {"shortDescription", "short_description", "summary"},
	FieldLongDescription:  {"longDescription", "long_description", "details"},
	FieldDescription:      {"description", "desc"},
}

// Issue is a non-fatal normalization finding for one source record.
type Issue struct {
	Index     int    `json:"index"`
	ProductID string `json:"productId,omitempty"`
	Field     string `json:"field"`
	Message   string `json:"message"`
}

// Result is the output of Normalize. Dropped counts records discarded for a
// missing id or name; each of them also has an Issue.
type Result struct {
	Products []domain.Product `json:"products"`
	Issues   []Issue          `json:"issues"`
	Dropped  int              `json:"dropped"`
}

// Normalize converts raw source records into canonical products, preserving
// input order. It never fails: bad fields degrade to defaults and are reported
// as issues. Duplicate ids are passed through untouched.
func Normalize(records []domain.RawRecord) Result {
	res := Result{
		Products: make([]domain.Product, 0, len(records)),
		Issues:   []Issue{},
	}
	for i, raw := range records {
		p, issues, ok := normalizeRecord(i, raw)
		res.Issues = append(res.Issues, issues...)
		if !ok {
			res.Dropped++
			continue
		}
		res.Products = append(res.Products, p)
	}
	return res
}

type record struct {
	raw  domain.RawRecord
	keys []string
}

func newRecord(raw domain.RawRecord) record {
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return record{raw: raw, keys: keys}
}

// lookup returns the first present, non-null value among the field's aliases.
func (r record) lookup(field string) (any, bool) {
	aliases := fieldAliases[field]
	for _, alias := range aliases {
		if v, ok := r.raw[alias]; ok && v != nil {
			return v, true
		}
	}
	for _, alias := range aliases {
		for _, k := range r.keys {
			if strings.EqualFold(k, alias) {
				if v := r.raw[k]; v != nil {
					return v, true
				}
			}
		}
	}
	return nil, false
}

func (r record) text(field string) (string, bool) {
	v, ok := r.lookup(field)
	if !ok {
		return "", false
	}
	return asString(v)
}

func normalizeRecord(index int, raw domain.RawRecord) (domain.Product, []Issue, bool) {
	rec := newRecord(raw)
	var issues []Issue
	report := func(id, field, msg string) {
		issues = append(issues, Issue{Index: index, ProductID: id, Field: field, Message: msg})
	}

	id, okID := rec.text(FieldID)
	name, okName := rec.text(FieldName)
	if !okID {
		report("", FieldID, "missing id, record dropped")
	}
	if !okName {
		report(id, FieldName, "missing name, record dropped")
	}
	if !okID || !okName {
		return domain.Product{}, issues, false
	}

	p := domain.Product{
		ID:       id,
		Name:     name,
		Category: domain.UncategorizedCategory,
		InStock:  true,
		Rating:   domain.DefaultRating,
	}

	if category, ok := rec.text(FieldCategory); ok {
		p.Category = category
	}

	p.BasePrice = decimal.Zero
	if v, ok := rec.lookup(FieldBasePrice); !ok {
		report(id, FieldBasePrice, "missing price, defaulting to 0")
	} else if price, ok := asDecimal(v); !ok {
		report(id, FieldBasePrice, "unparsable price, defaulting to 0")
	} else if price.IsNegative() {
		report(id, FieldBasePrice, "negative price, defaulting to 0")
	} else {
		p.BasePrice = price
	}

	var sale decimal.NullDecimal
	if v, ok := rec.lookup(FieldSalePrice); ok {
		if d, ok := asDecimal(v); ok {
			sale = decimal.NewNullDecimal(d)
		} else {
			report(id, FieldSalePrice, "unparsable sale price ignored")
		}
	}
	flagged := false
	if v, ok := rec.lookup(FieldOnSale); ok {
		flagged = asBool(v)
	}
	applyPricing(&p, flagged, sale)
	if flagged && !p.OnSale {
		report(id, FieldOnSale, "sale flag ignored: sale price missing or not below base price")
	}

	if v, ok := rec.lookup(FieldInStock); ok {
		p.InStock = asBool(v)
	}

	if v, ok := rec.lookup(FieldRating); ok {
		if r, ok := asFloat(v); !ok {
			report(id, FieldRating, "unparsable rating, defaulting to 4.5")
		} else if r < 0 || r > 5 {
			report(id, FieldRating, "rating outside 0-5, defaulting to 4.5")
		} else {
			p.Rating = r
		}
	}

	if v, ok := rec.lookup(FieldImages); ok {
		p.Images = asStringList(v)
	}
	if len(p.Images) == 0 {
		p.Images = []string{domain.PlaceholderImage}
	}

	description, _ := rec.text(FieldDescription)
	p.ShortDescription = description
	if s, ok := rec.text(FieldShortDescription); ok {
		p.ShortDescription = s
	}
	p.LongDescription = description
	if s, ok := rec.text(FieldLongDescription); ok {
		p.LongDescription = s
	}

	return p, issues, true
}

// applyPricing derives OnSale, EffectivePrice and DiscountPercent. A product is
// on sale only when flagged and its sale price is strictly positive and
// strictly below the base price; otherwise it sells at base price.
func applyPricing(p *domain.Product, flagged bool, sale decimal.NullDecimal) {
	p.OnSale = flagged && sale.Valid && sale.Decimal.IsPositive() && sale.Decimal.LessThan(p.BasePrice)
	if !p.OnSale {
		p.SalePrice = decimal.NullDecimal{}
		p.EffectivePrice = p.BasePrice
		p.DiscountPercent = 0
		return
	}
	p.SalePrice = sale
	p.EffectivePrice = sale.Decimal
	p.DiscountPercent = discountPercent(p.BasePrice, sale.Decimal)
}

// discountPercent is round((base - sale) / base * 100), clamped to 0..100.
func discountPercent(base, sale decimal.Decimal) int {
	if !base.IsPositive() {
		return 0
	}
	pct := base.Sub(sale).Div(base).Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return int(pct)
}
