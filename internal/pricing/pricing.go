// Package pricing combines the independently computed cart components into a
// final payable total.
package pricing

import (
	"github.com/freshkart/backend-cart/internal/money"
)

// Inputs are the components of the final total. Each is already expressed in
// minor units, so no per-field rounding can drift here.
type Inputs struct {
	Subtotal       money.Money
	ShippingFee    money.Money
	Tax            money.Money
	Tip            money.Money
	DiscountAmount money.Money
}

// Summary is the customer-facing totals block.
type Summary struct {
	Subtotal       money.Money `json:"subtotal"`
	ShippingFee    money.Money `json:"shippingFee"`
	Tax            money.Money `json:"tax"`
	Tip            money.Money `json:"tip"`
	DiscountAmount money.Money `json:"discountAmount"`
	TotalAmount    money.Money `json:"totalAmount"`
}

// Compute returns the final total, floored at zero. Negative component
// inputs are clamped before summation so a bad upstream value can never
// produce a negative or inflated total.
func Compute(in Inputs) Summary {
	s := Summary{
		Subtotal:       money.ClampNonNegative(in.Subtotal),
		ShippingFee:    money.ClampNonNegative(in.ShippingFee),
		Tax:            money.ClampNonNegative(in.Tax),
		Tip:            money.ClampNonNegative(in.Tip),
		DiscountAmount: money.ClampNonNegative(in.DiscountAmount),
	}
	s.TotalAmount = money.ClampNonNegative(s.Subtotal + s.ShippingFee + s.Tax + s.Tip - s.DiscountAmount)
	return s
}

// TaxFor computes tax on the net order value at the given basis-point rate.
func TaxFor(net money.Money, rateBps int32) money.Money {
	if net <= 0 || rateBps <= 0 {
		return 0
	}
	return money.PercentBps(net, rateBps)
}
