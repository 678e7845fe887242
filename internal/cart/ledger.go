package cart

import (
	"slices"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"storefront-service/internal/domain"
)

// MaxLineQuantity is the largest quantity a single line can hold.
const MaxLineQuantity = 999

// Line is one product selection. The price fields are a quote taken when the
// product was first added; later catalog changes do not alter them.
type Line struct {
	ProductID     string          `json:"productId"`
	Name          string          `json:"name"`
	Image         string          `json:"image"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	OriginalPrice decimal.Decimal `json:"originalPrice"`
	OnSale        bool            `json:"onSale"`
	Quantity      int             `json:"quantity"`
}

// Cart is an ordered list of lines, unique by product id.
type Cart struct {
	Lines []Line `json:"lines"`
}

// Totals are derived from a cart and a shipping policy; they are never stored.
type Totals struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	Shipping decimal.Decimal `json:"shipping"`
	Tax      decimal.Decimal `json:"tax"`
	Total    decimal.Decimal `json:"total"`
	Savings  decimal.Decimal `json:"savings"`
}

// New returns an empty cart.
func New() Cart {
	return Cart{Lines: []Line{}}
}

func (c Cart) clone() Cart {
	lines := slices.Clone(c.Lines)
	if lines == nil {
		lines = []Line{}
	}
	return Cart{Lines: lines}
}

func (c Cart) index(productID string) int {
	_, i, ok := lo.FindIndexOf(c.Lines, func(l Line) bool { return l.ProductID == productID })
	if !ok {
		return -1
	}
	return i
}

// AddItem adds quantity units of product. An existing line keeps its quoted
// price and only grows in quantity.
func AddItem(c Cart, product domain.Product, quantity int) (Cart, error) {
	const op = "cart.AddItem"
	if quantity < 1 {
		return c, domain.NewValidation(op, domain.ErrMsgQuantityPositive)
	}
	if quantity > MaxLineQuantity {
		return c, domain.NewValidation(op, domain.ErrMsgQuantityTooLarge)
	}
	if product.ID == "" {
		return c, domain.NewValidation(op, domain.ErrMsgProductIDMissing)
	}
	if !product.InStock {
		return c, domain.NewInvalidOperation(op, domain.ErrMsgOutOfStock)
	}

	out := c.clone()
	if i := out.index(product.ID); i >= 0 {
		if out.Lines[i].Quantity > MaxLineQuantity-quantity {
			return c, domain.NewValidation(op, domain.ErrMsgQuantityTooLarge)
		}
		out.Lines[i].Quantity += quantity
		return out, nil
	}
	out.Lines = append(out.Lines, Line{
		ProductID:     product.ID,
		Name:          product.Name,
		Image:         product.PrimaryImage(),
		UnitPrice:     product.EffectivePrice,
		OriginalPrice: product.BasePrice,
		OnSale:        product.OnSale,
		Quantity:      quantity,
	})
	return out, nil
}

// UpdateQuantity adds delta to the line's quantity, staying within
// 1..MaxLineQuantity. An unknown product id leaves the cart unchanged.
func UpdateQuantity(c Cart, productID string, delta int) Cart {
	out := c.clone()
	i := out.index(productID)
	if i < 0 {
		return out
	}
	cur := out.Lines[i].Quantity
	var q int
	switch {
	case delta > 0 && delta > MaxLineQuantity-cur:
		q = MaxLineQuantity
	case delta < 0 && delta < 1-cur:
		q = 1
	default:
		q = cur + delta
	}
	out.Lines[i].Quantity = q
	return out
}

// RemoveItem drops the line for productID if present.
func RemoveItem(c Cart, productID string) Cart {
	out := c.clone()
	out.Lines = lo.Reject(out.Lines, func(l Line, _ int) bool { return l.ProductID == productID })
	return out
}

// Clear empties the cart.
func Clear(Cart) Cart {
	return New()
}

// ComputeTotals prices the cart under policy. Tax is always zero. An empty cart
// totals zero, shipping included.
func ComputeTotals(c Cart, policy ShippingPolicy) Totals {
	t := Totals{
		Subtotal: decimal.Zero,
		Shipping: decimal.Zero,
		Tax:      decimal.Zero,
		Total:    decimal.Zero,
		Savings:  decimal.Zero,
	}
	if len(c.Lines) == 0 {
		return t
	}

	for _, l := range c.Lines {
		qty := decimal.NewFromInt(int64(l.Quantity))
		t.Subtotal = t.Subtotal.Add(l.UnitPrice.Mul(qty))
		if l.OnSale && l.OriginalPrice.GreaterThan(l.UnitPrice) {
			t.Savings = t.Savings.Add(l.OriginalPrice.Sub(l.UnitPrice).Mul(qty))
		}
	}
	t.Shipping = policy.ShippingFor(t.Subtotal)
	t.Total = t.Subtotal.Add(t.Shipping).Add(t.Tax)
	return t
}

// ItemCount is the total number of units in the cart.
func ItemCount(c Cart) int {
	return lo.SumBy(c.Lines, func(l Line) int { return l.Quantity })
}

// FindLine returns the line for productID.
func FindLine(c Cart, productID string) (Line, error) {
	i := c.index(productID)
	if i < 0 {
		return Line{}, domain.NewNotFound("cart.FindLine", domain.ErrMsgLineNotInCart)
	}
	return c.Lines[i], nil
}

// ResolvedLine is a cart line checked against the current catalog.
type ResolvedLine struct {
	Line
	Product      *domain.Product `json:"product,omitempty"`
	Available    bool            `json:"available"`
	PriceChanged bool            `json:"priceChanged"`
	LineTotal    decimal.Decimal `json:"lineTotal"`
}

// Resolve re-reads each line's product from products. Lines whose product is
// gone are kept and reported as unavailable.
func Resolve(c Cart, products []domain.Product) []ResolvedLine {
	byID := lo.KeyBy(products, func(p domain.Product) string { return p.ID })
	out := make([]ResolvedLine, 0, len(c.Lines))
	for _, l := range c.Lines {
		rl := ResolvedLine{
			Line:      l,
			LineTotal: l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))),
		}
		if p, ok := byID[l.ProductID]; ok {
			rl.Product = &p
			rl.Available = p.InStock
			rl.PriceChanged = !p.EffectivePrice.Equal(l.UnitPrice)
		}
		out = append(out, rl)
	}
	return out
}
