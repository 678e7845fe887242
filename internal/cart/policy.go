package cart

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Defaults of the storefront's rupee pricing.
var (
	DefaultFreeShippingThreshold = decimal.NewFromInt(5000)
	DefaultFlatShippingFee       = decimal.NewFromInt(250)
)

// ShippingPolicy charges FlatShippingFee unless the subtotal is strictly above
// FreeShippingThreshold.
type ShippingPolicy struct {
	FreeShippingThreshold decimal.Decimal `json:"freeShippingThreshold"`
	FlatShippingFee       decimal.Decimal `json:"flatShippingFee"`
}

func DefaultShippingPolicy() ShippingPolicy {
	return ShippingPolicy{
		FreeShippingThreshold: DefaultFreeShippingThreshold,
		FlatShippingFee:       DefaultFlatShippingFee,
	}
}

// NewShippingPolicy builds a policy from configured float values. Both must be
// non-negative.
func NewShippingPolicy(threshold, fee float64) (ShippingPolicy, error) {
	if threshold < 0 || fee < 0 {
		return ShippingPolicy{}, errors.New("cart: shipping threshold and fee must be non-negative")
	}
	return ShippingPolicy{
		FreeShippingThreshold: decimal.NewFromFloat(threshold),
		FlatShippingFee:       decimal.NewFromFloat(fee),
	}, nil
}

// ShippingFor returns the shipping charge for subtotal.
func (p ShippingPolicy) ShippingFor(subtotal decimal.Decimal) decimal.Decimal {
	if subtotal.GreaterThan(p.FreeShippingThreshold) {
		return decimal.Zero
	}
	return p.FlatShippingFee
}
