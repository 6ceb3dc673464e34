// Package cart converts cart contents into priced line items.
package cart

import (
	"github.com/freshkart/backend-cart/internal/catalog"
	"github.com/freshkart/backend-cart/internal/money"
)

// Line is a raw cart entry before pricing.
type Line struct {
	Key          ItemKey `json:"key"`
	Qty          int     `json:"qty"`
	Customized   bool    `json:"customized,omitempty"`
	Instructions string  `json:"instructions,omitempty"`
}

// LineItem is a priced cart line derived from the catalog snapshot.
type LineItem struct {
	Key                 ItemKey     `json:"key"`
	Name                string      `json:"name"`
	WeightLabel         string      `json:"weightLabel"`
	UnitPrice           money.Money `json:"unitPrice"`
	BasePrice           money.Money `json:"basePrice"`
	OfferPrice          money.Money `json:"offerPrice,omitempty"`
	Qty                 int         `json:"qty"`
	CustomizationCharge money.Money `json:"customizationCharge,omitempty"`
	InStock             bool        `json:"inStock"`
	LineTotal           money.Money `json:"lineTotal"`
}

// Totals aggregates the monetary outcome of line-item pricing.
type Totals struct {
	Subtotal     money.Money `json:"subtotal"`
	TotalMRP     money.Money `json:"totalMrp"`
	TotalSavings money.Money `json:"totalSavings"`
}

// Aggregate prices the given lines against a catalog snapshot. The charge map
// holds externally computed customization surcharges per line; absent keys
// mean no surcharge. Lines whose product or variant no longer exists are
// dropped silently rather than failing the whole computation.
func Aggregate(lines []Line, snap catalog.Snapshot, charges map[ItemKey]money.Money) ([]LineItem, Totals) {
	items := make([]LineItem, 0, len(lines))
	var totals Totals
	for _, line := range lines {
		if line.Qty <= 0 {
			continue
		}
		product, variant, ok := snap.Variant(line.Key.ProductID, line.Key.VariantIndex)
		if !ok {
			continue
		}
		unit := variant.Price
		if variant.OfferPrice > 0 {
			unit = variant.OfferPrice
		}
		charge := money.ClampNonNegative(charges[line.Key])
		item := LineItem{
			Key:                 line.Key,
			Name:                product.Name,
			WeightLabel:         variant.WeightLabel,
			UnitPrice:           unit,
			BasePrice:           variant.Price,
			OfferPrice:          variant.OfferPrice,
			Qty:                 line.Qty,
			CustomizationCharge: charge,
			InStock:             variant.Stock > 0,
			LineTotal:           unit*money.Money(line.Qty) + charge,
		}
		items = append(items, item)
		totals.Subtotal += item.LineTotal
		totals.TotalMRP += variant.Price*money.Money(line.Qty) + charge
	}
	totals.TotalSavings = totals.TotalMRP - totals.Subtotal
	return items, totals
}
