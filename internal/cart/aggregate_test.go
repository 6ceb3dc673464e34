package cart

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/freshkart/backend-cart/internal/catalog"
	"github.com/freshkart/backend-cart/internal/money"
)

var (
	testProductA = uuid.MustParse("6f1d0f3e-9a42-4c83-9f2e-0b8f8e8b1a01")
	testProductB = uuid.MustParse("2c9a6d11-41ce-4d0d-8db2-55a4f9c2be02")
)

func testSnapshot() catalog.Snapshot {
	return catalog.Snapshot{
		testProductA: {
			ID:   testProductA,
			Name: "Alphonso Mango",
			Variants: []catalog.Variant{
				{WeightLabel: "500g", WeightGrams: 500, Price: 25000, OfferPrice: 19900, Stock: 10},
				{WeightLabel: "1kg", WeightGrams: 1000, Price: 48000, Stock: 0},
			},
		},
		testProductB: {
			ID:   testProductB,
			Name: "Basmati Rice",
			Variants: []catalog.Variant{
				{WeightLabel: "5kg", WeightGrams: 5000, Price: 65000, Stock: 3},
			},
		},
	}
}

func TestAggregateUsesOfferPriceAndSavings(t *testing.T) {
	lines := []Line{
		{Key: ItemKey{ProductID: testProductA, VariantIndex: 0}, Qty: 2},
		{Key: ItemKey{ProductID: testProductB, VariantIndex: 0}, Qty: 1},
	}

	items, totals := Aggregate(lines, testSnapshot(), nil)
	require.Len(t, items, 2)

	require.Equal(t, money.Money(19900), items[0].UnitPrice)
	require.Equal(t, money.Money(25000), items[0].BasePrice)
	require.Equal(t, money.Money(39800), items[0].LineTotal)
	require.True(t, items[0].InStock)

	require.Equal(t, money.Money(65000), items[1].UnitPrice)

	require.Equal(t, money.Money(104800), totals.Subtotal)
	require.Equal(t, money.Money(115000), totals.TotalMRP)
	require.Equal(t, money.Money(10200), totals.TotalSavings)
}

func TestAggregateDropsOrphanedLines(t *testing.T) {
	lines := []Line{
		{Key: ItemKey{ProductID: uuid.New(), VariantIndex: 0}, Qty: 1},
		{Key: ItemKey{ProductID: testProductA, VariantIndex: 9}, Qty: 1},
		{Key: ItemKey{ProductID: testProductA, VariantIndex: 0}, Qty: 0},
		{Key: ItemKey{ProductID: testProductA, VariantIndex: 1}, Qty: 1},
	}

	items, totals := Aggregate(lines, testSnapshot(), nil)
	require.Len(t, items, 1)
	require.Equal(t, "1kg", items[0].WeightLabel)
	require.False(t, items[0].InStock)
	require.Equal(t, money.Money(48000), totals.Subtotal)
	require.Equal(t, money.Money(0), totals.TotalSavings)
}

func TestAggregateAddsCustomizationCharge(t *testing.T) {
	key := ItemKey{ProductID: testProductB, VariantIndex: 0}
	lines := []Line{{Key: key, Qty: 1, Customized: true, Instructions: "fine grind"}}
	charges := map[ItemKey]money.Money{key: 2500}

	items, totals := Aggregate(lines, testSnapshot(), charges)
	require.Len(t, items, 1)
	require.Equal(t, money.Money(2500), items[0].CustomizationCharge)
	require.Equal(t, money.Money(67500), items[0].LineTotal)
	require.Equal(t, money.Money(67500), totals.Subtotal)
	// the surcharge counts into both columns, so it never inflates savings
	require.Equal(t, money.Money(0), totals.TotalSavings)
}

func TestParseKey(t *testing.T) {
	snap := testSnapshot()
	resolve := snap.VariantIndexByWeight

	key, err := ParseKey(testProductA.String()+"_1", resolve)
	require.NoError(t, err)
	require.Equal(t, ItemKey{ProductID: testProductA, VariantIndex: 1}, key)

	// legacy weight-label form
	key, err = ParseKey(testProductA.String()+"_500g", resolve)
	require.NoError(t, err)
	require.Equal(t, 0, key.VariantIndex)

	_, err = ParseKey(testProductA.String()+"_750g", resolve)
	require.ErrorIs(t, err, ErrBadKey)

	_, err = ParseKey("not-a-uuid_0", resolve)
	require.ErrorIs(t, err, ErrBadKey)

	_, err = ParseKey(testProductA.String(), resolve)
	require.ErrorIs(t, err, ErrBadKey)
}
