// Package customization computes the surcharge for made-to-order items
// (e.g. cleaned and cut fish or marinated meat) from a product's tiered
// charge table and the total weight ordered.
package customization

import (
	"sort"

	"github.com/freshkart/backend-cart/internal/money"
)

// Tier maps a weight band to its preparation charge.
type Tier struct {
	WeightGrams int         `json:"weightGrams"`
	Charge      money.Money `json:"charge"`
}

// Compute resolves the total charge for the given weight by greedily
// consuming the largest configured band first. Tiers are evaluated in
// descending weight order; weight smaller than the smallest band is
// charged at the smallest band's rate.
func Compute(tiers []Tier, totalWeightGrams int) money.Money {
	if totalWeightGrams <= 0 || len(tiers) == 0 {
		return 0
	}
	sorted := make([]Tier, 0, len(tiers))
	for _, t := range tiers {
		if t.WeightGrams > 0 && t.Charge >= 0 {
			sorted = append(sorted, t)
		}
	}
	if len(sorted) == 0 {
		return 0
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].WeightGrams > sorted[j].WeightGrams })

	var charge money.Money
	remaining := totalWeightGrams
	for remaining > 0 {
		matched := false
		for _, t := range sorted {
			if remaining >= t.WeightGrams {
				charge += t.Charge
				remaining -= t.WeightGrams
				matched = true
				break
			}
		}
		if !matched {
			// Leftover weight below the smallest band still needs preparation.
			charge += sorted[len(sorted)-1].Charge
			break
		}
	}
	return charge
}
