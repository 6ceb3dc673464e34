package cart

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// ErrBadKey indicates a cart item key that cannot be parsed.
var ErrBadKey = errors.New("invalid cart item key")

// ItemKey identifies a cart line by product and variant index.
type ItemKey struct {
	ProductID    uuid.UUID `json:"productId"`
	VariantIndex int       `json:"variantIndex"`
}

// String renders the wire form of the key.
func (k ItemKey) String() string {
	return fmt.Sprintf("%s_%d", k.ProductID, k.VariantIndex)
}

// WeightResolver maps a legacy weight-label key segment to a variant index.
type WeightResolver func(productID uuid.UUID, weightLabel string) (int, bool)

// ParseKey decodes a wire-form item key. The canonical form is
// "productId_variantIndex"; older clients sent "productId_weightLabel"
// (e.g. "..._500g"), which is migrated here so the label form never reaches
// the pricing core.
func ParseKey(raw string, resolve WeightResolver) (ItemKey, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "_", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ItemKey{}, fmt.Errorf("%w: %q", ErrBadKey, raw)
	}
	productID, err := uuid.Parse(parts[0])
	if err != nil {
		return ItemKey{}, fmt.Errorf("%w: %q", ErrBadKey, raw)
	}
	if idx, err := strconv.Atoi(parts[1]); err == nil {
		if idx < 0 {
			return ItemKey{}, fmt.Errorf("%w: %q", ErrBadKey, raw)
		}
		return ItemKey{ProductID: productID, VariantIndex: idx}, nil
	}
	if resolve != nil {
		if idx, ok := resolve(productID, parts[1]); ok {
			return ItemKey{ProductID: productID, VariantIndex: idx}, nil
		}
	}
	return ItemKey{}, fmt.Errorf("%w: %q", ErrBadKey, raw)
}
