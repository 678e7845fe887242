package cart

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-service/internal/domain"
)

func testProduct(id string, price int64, inStock bool) domain.Product {
	p := decimal.NewFromInt(price)
	return domain.Product{
		ID:             id,
		Name:           "Product " + id,
		Category:       "Rings",
		BasePrice:      p,
		EffectivePrice: p,
		InStock:        inStock,
		Rating:         domain.DefaultRating,
		Images:         []string{"/images/" + id + ".jpg"},
	}
}

func saleProduct(id string, base, sale int64) domain.Product {
	p := testProduct(id, base, true)
	p.OnSale = true
	p.SalePrice = decimal.NewNullDecimal(decimal.NewFromInt(sale))
	p.EffectivePrice = decimal.NewFromInt(sale)
	p.DiscountPercent = 25
	return p
}

func mustAdd(t *testing.T, c Cart, p domain.Product, qty int) Cart {
	t.Helper()
	next, err := AddItem(c, p, qty)
	require.NoError(t, err)
	return next
}

func TestAddItem_SnapshotsProduct(t *testing.T) {
	c := mustAdd(t, New(), saleProduct("9", 1000, 750), 2)

	require.Len(t, c.Lines, 1)
	line := c.Lines[0]
	assert.Equal(t, "9", line.ProductID)
	assert.Equal(t, "Product 9", line.Name)
	assert.Equal(t, "/images/9.jpg", line.Image)
	assert.True(t, line.UnitPrice.Equal(decimal.NewFromInt(750)))
	assert.True(t, line.OriginalPrice.Equal(decimal.NewFromInt(1000)))
	assert.True(t, line.OnSale)
	assert.Equal(t, 2, line.Quantity)
}

func TestAddItem_DoesNotMutateInput(t *testing.T) {
	original := mustAdd(t, New(), testProduct("1", 900, true), 1)

	next := mustAdd(t, original, testProduct("1", 900, true), 4)
	next = mustAdd(t, next, testProduct("2", 1530, true), 1)

	assert.Equal(t, 1, original.Lines[0].Quantity)
	assert.Len(t, original.Lines, 1)
	assert.Equal(t, 5, next.Lines[0].Quantity)
	assert.Len(t, next.Lines, 2)
}

func TestAddItem_Rejections(t *testing.T) {
	tests := []struct {
		name     string
		product  domain.Product
		quantity int
		kind     domain.Kind
		message  string
	}{
		{"zero quantity", testProduct("1", 900, true), 0, domain.KindValidation, domain.ErrMsgQuantityPositive},
		{"negative quantity", testProduct("1", 900, true), -2, domain.KindValidation, domain.ErrMsgQuantityPositive},
		{"missing id", testProduct("", 900, true), 1, domain.KindValidation, domain.ErrMsgProductIDMissing},
		{"out of stock", testProduct("4", 830, false), 1, domain.KindInvalidOperation, domain.ErrMsgOutOfStock},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			start := New()
			got, err := AddItem(start, tc.product, tc.quantity)
			require.Error(t, err)
			assert.True(t, domain.IsKind(err, tc.kind), "unexpected error kind: %v", err)
			assert.Contains(t, err.Error(), tc.message)
			assert.Empty(t, got.Lines)
		})
	}
}

func TestUpdateQuantity(t *testing.T) {
	base := mustAdd(t, New(), testProduct("1", 900, true), 3)

	tests := []struct {
		name   string
		id     string
		delta  int
		expect int
	}{
		{"increment", "1", 2, 5},
		{"decrement", "1", -1, 2},
		{"floor at one", "1", -100, 1},
		{"exactly to zero clamps", "1", -3, 1},
		{"unknown id is a no-op", "missing", 10, 3},
		{"saturates at the line limit", "1", MaxLineQuantity, MaxLineQuantity},
		{"huge delta saturates instead of wrapping", "1", math.MaxInt, MaxLineQuantity},
		{"huge negative delta floors at one", "1", math.MinInt, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := UpdateQuantity(base, tc.id, tc.delta)
			require.Len(t, got.Lines, 1)
			assert.Equal(t, tc.expect, got.Lines[0].Quantity)
			assert.Equal(t, 3, base.Lines[0].Quantity)
		})
	}
}

func TestAddItem_LineQuantityLimit(t *testing.T) {
	p := testProduct("1", 900, true)

	_, err := AddItem(New(), p, math.MaxInt)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	full := mustAdd(t, New(), p, MaxLineQuantity)
	got, err := AddItem(full, p, 1)
	require.Error(t, err)
	assert.True(t, domain.IsKind(err, domain.KindValidation))
	assert.Equal(t, full, got)

	nearly := mustAdd(t, New(), p, MaxLineQuantity-2)
	_, err = AddItem(nearly, p, math.MaxInt-1)
	assert.True(t, domain.IsKind(err, domain.KindValidation))

	nearly = mustAdd(t, nearly, p, 2)
	assert.Equal(t, MaxLineQuantity, nearly.Lines[0].Quantity)
	assert.True(t, ComputeTotals(nearly, DefaultShippingPolicy()).Subtotal.IsPositive())
}

func TestRemoveItem_Idempotent(t *testing.T) {
	c := mustAdd(t, New(), testProduct("1", 900, true), 1)
	c = mustAdd(t, c, testProduct("x", 100, true), 1)

	once := RemoveItem(c, "x")
	twice := RemoveItem(RemoveItem(c, "x"), "x")

	assert.Equal(t, once, twice)
	require.Len(t, once.Lines, 1)
	assert.Equal(t, "1", once.Lines[0].ProductID)
	assert.Len(t, c.Lines, 2)
}

func TestClear_Idempotent(t *testing.T) {
	c := mustAdd(t, New(), testProduct("1", 900, true), 1)

	assert.Equal(t, New(), Clear(c))
	assert.Equal(t, Clear(c), Clear(Clear(c)))
	assert.Len(t, c.Lines, 1)
}

func TestComputeTotals_MixedCart(t *testing.T) {
	c := mustAdd(t, New(), testProduct("1", 900, true), 2)
	c = mustAdd(t, c, testProduct("2", 1530, true), 1)

	totals := ComputeTotals(c, DefaultShippingPolicy())

	assert.Equal(t, "3330", totals.Subtotal.String())
	assert.Equal(t, "250", totals.Shipping.String())
	assert.Equal(t, "0", totals.Tax.String())
	assert.Equal(t, "3580", totals.Total.String())
	assert.Equal(t, "0", totals.Savings.String())
}

func TestComputeTotals_ShippingBoundary(t *testing.T) {
	policy := ShippingPolicy{
		FreeShippingThreshold: decimal.NewFromInt(5000),
		FlatShippingFee:       decimal.NewFromInt(250),
	}
	line := func(price string) Cart {
		return Cart{Lines: []Line{{ProductID: "t", UnitPrice: decimal.RequireFromString(price), OriginalPrice: decimal.RequireFromString(price), Quantity: 1}}}
	}

	assert.Equal(t, "250", ComputeTotals(line("5000"), policy).Shipping.String())
	assert.Equal(t, "0", ComputeTotals(line("5000.01"), policy).Shipping.String())
	assert.Equal(t, "5000.01", ComputeTotals(line("5000.01"), policy).Total.String())
}

func TestComputeTotals_Savings(t *testing.T) {
	c := mustAdd(t, New(), saleProduct("9", 1000, 750), 2)
	c = mustAdd(t, c, testProduct("1", 900, true), 1)

	totals := ComputeTotals(c, DefaultShippingPolicy())

	assert.Equal(t, "2400", totals.Subtotal.String())
	assert.Equal(t, "500", totals.Savings.String())
}

func TestComputeTotals_EmptyCart(t *testing.T) {
	totals := ComputeTotals(New(), DefaultShippingPolicy())

	assert.True(t, totals.Subtotal.IsZero())
	assert.True(t, totals.Shipping.IsZero())
	assert.True(t, totals.Total.IsZero())
}

func TestItemCountAndFindLine(t *testing.T) {
	c := mustAdd(t, New(), testProduct("1", 900, true), 2)
	c = mustAdd(t, c, testProduct("2", 1530, true), 3)

	assert.Equal(t, 5, ItemCount(c))
	assert.Equal(t, 0, ItemCount(New()))

	line, err := FindLine(c, "2")
	require.NoError(t, err)
	assert.Equal(t, 3, line.Quantity)

	_, err = FindLine(c, "missing")
	assert.True(t, domain.IsKind(err, domain.KindNotFound))
}

func TestResolve(t *testing.T) {
	c := mustAdd(t, New(), testProduct("1", 900, true), 2)
	c = mustAdd(t, c, testProduct("2", 1530, true), 1)
	c = mustAdd(t, c, testProduct("3", 400, true), 1)

	current := []domain.Product{
		testProduct("1", 900, true),
		testProduct("2", 1600, false),
	}

	resolved := Resolve(c, current)
	require.Len(t, resolved, 3)

	assert.True(t, resolved[0].Available)
	assert.False(t, resolved[0].PriceChanged)
	assert.Equal(t, "1800", resolved[0].LineTotal.String())

	assert.False(t, resolved[1].Available)
	assert.True(t, resolved[1].PriceChanged)
	require.NotNil(t, resolved[1].Product)
	assert.Equal(t, "1530", resolved[1].UnitPrice.String())

	assert.Nil(t, resolved[2].Product)
	assert.False(t, resolved[2].Available)
}

func TestNewShippingPolicy(t *testing.T) {
	p, err := NewShippingPolicy(50, 9.99)
	require.NoError(t, err)
	assert.Equal(t, "50", p.FreeShippingThreshold.String())
	assert.Equal(t, "9.99", p.FlatShippingFee.String())

	_, err = NewShippingPolicy(-1, 250)
	assert.Error(t, err)
}
