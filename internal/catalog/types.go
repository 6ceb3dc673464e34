package catalog

import (
	"strings"

	"github.com/google/uuid"

	"github.com/freshkart/backend-cart/internal/customization"
	"github.com/freshkart/backend-cart/internal/money"
)

// Variant is a sellable weight option of a product.
type Variant struct {
	WeightLabel string      `json:"weightLabel"`
	WeightGrams int         `json:"weightGrams"`
	Price       money.Money `json:"price"`
	OfferPrice  money.Money `json:"offerPrice"`
	Stock       int         `json:"stock"`
}

// Product is a catalog entry with its variant price list.
type Product struct {
	ID           uuid.UUID            `json:"id"`
	Name         string               `json:"name"`
	Customizable bool                 `json:"customizable"`
	ChargeTiers  []customization.Tier `json:"chargeTiers,omitempty"`
	Variants     []Variant            `json:"variants"`
}

// Snapshot is a point-in-time view of the catalog used for pricing. The
// aggregator only ever reads from a snapshot, never from storage.
type Snapshot map[uuid.UUID]Product

// Variant returns the variant at the given index, reporting whether both the
// product and the index exist.
func (s Snapshot) Variant(productID uuid.UUID, index int) (Product, Variant, bool) {
	p, ok := s[productID]
	if !ok {
		return Product{}, Variant{}, false
	}
	if index < 0 || index >= len(p.Variants) {
		return Product{}, Variant{}, false
	}
	return p, p.Variants[index], true
}

// VariantIndexByWeight resolves a legacy weight-label cart key to a variant
// index.
func (s Snapshot) VariantIndexByWeight(productID uuid.UUID, weightLabel string) (int, bool) {
	p, ok := s[productID]
	if !ok {
		return 0, false
	}
	needle := strings.TrimSpace(strings.ToLower(weightLabel))
	for i, v := range p.Variants {
		if strings.TrimSpace(strings.ToLower(v.WeightLabel)) == needle {
			return i, true
		}
	}
	return 0, false
}
