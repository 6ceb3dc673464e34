// Package delivery computes delivery fees from per-pincode service rules.
package delivery

import (
	"github.com/freshkart/backend-cart/internal/money"
)

// Rule is a serviceability rule for one pincode. Nil money fields mean the
// platform default applies.
type Rule struct {
	Pincode                 string       `json:"pincode"`
	IsActive                bool         `json:"isActive"`
	DeliveryCharge          *money.Money `json:"deliveryCharge,omitempty"`
	MinOrderForFreeDelivery *money.Money `json:"minOrderForFreeDelivery,omitempty"`
}

// Quote is the delivery outcome for a cart at its current net value.
type Quote struct {
	Fee               money.Money `json:"fee"`
	StandardFee       money.Money `json:"standardFee"`
	DistanceSurcharge money.Money `json:"distanceSurcharge"`
	FreeThreshold     money.Money `json:"freeThreshold"`
	AmountToFree      money.Money `json:"amountToFree"`
}

// Tier names the bucket a quote falls into, for metrics.
func (q Quote) Tier() string {
	switch {
	case q.Fee == 0:
		return "free"
	case q.DistanceSurcharge > 0:
		return "surcharged"
	default:
		return "standard"
	}
}

// Engine resolves quotes against a rule, falling back to platform defaults
// when the pincode has no rule of its own.
type Engine struct {
	DefaultFee     money.Money
	FreeThreshold  money.Money
	StandardFeeCap money.Money
}

// Resolve computes the delivery quote. An empty cart is never charged. The
// net value is the cart subtotal after discounts; crossing the free-delivery
// threshold zeroes the fee.
func (e Engine) Resolve(rule *Rule, net money.Money, cartEmpty bool) Quote {
	fee := e.DefaultFee
	threshold := e.FreeThreshold
	if rule != nil && rule.IsActive {
		if rule.DeliveryCharge != nil {
			fee = money.ClampNonNegative(*rule.DeliveryCharge)
		}
		if rule.MinOrderForFreeDelivery != nil {
			threshold = money.ClampNonNegative(*rule.MinOrderForFreeDelivery)
		}
	}

	q := Quote{FreeThreshold: threshold}
	if cartEmpty {
		return q
	}
	if threshold > 0 && net >= threshold {
		return q
	}
	if threshold > net {
		q.AmountToFree = threshold - net
	}
	q.Fee = fee
	q.StandardFee = money.Min(fee, e.StandardFeeCap)
	q.DistanceSurcharge = fee - q.StandardFee
	return q
}
