package customization

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freshkart/backend-cart/internal/money"
)

func TestComputeGreedyBands(t *testing.T) {
	tiers := []Tier{
		{WeightGrams: 250, Charge: 1000},
		{WeightGrams: 1000, Charge: 3000},
		{WeightGrams: 500, Charge: 1800},
	}

	// 1750g = 1000 + 500 + 250
	require.Equal(t, money.Money(5800), Compute(tiers, 1750))
	// exactly one band
	require.Equal(t, money.Money(3000), Compute(tiers, 1000))
	// leftover below smallest band charged at smallest rate
	require.Equal(t, money.Money(1000), Compute(tiers, 100))
	require.Equal(t, money.Money(4000), Compute(tiers, 1100))
}

func TestComputeEmptyInputs(t *testing.T) {
	require.Equal(t, money.Money(0), Compute(nil, 500))
	require.Equal(t, money.Money(0), Compute([]Tier{{WeightGrams: 250, Charge: 1000}}, 0))
	require.Equal(t, money.Money(0), Compute([]Tier{{WeightGrams: 0, Charge: 1000}}, 500))
}
