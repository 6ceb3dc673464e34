package delivery

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freshkart/backend-cart/internal/money"
)

func defaultEngine() Engine {
	return Engine{
		DefaultFee:     2900,
		FreeThreshold:  29900,
		StandardFeeCap: 2900,
	}
}

func TestResolveDefaults(t *testing.T) {
	e := defaultEngine()

	q := e.Resolve(nil, 15000, false)
	require.Equal(t, money.Money(2900), q.Fee)
	require.Equal(t, money.Money(2900), q.StandardFee)
	require.Equal(t, money.Money(0), q.DistanceSurcharge)
	require.Equal(t, money.Money(14900), q.AmountToFree)
	require.Equal(t, "standard", q.Tier())

	q = e.Resolve(nil, 29900, false)
	require.Equal(t, money.Money(0), q.Fee)
	require.Equal(t, "free", q.Tier())
}

func TestResolveEmptyCartNeverCharged(t *testing.T) {
	e := defaultEngine()
	q := e.Resolve(nil, 0, true)
	require.Equal(t, money.Money(0), q.Fee)
	require.Equal(t, money.Money(0), q.AmountToFree)
}

func TestResolveRuleOverrides(t *testing.T) {
	e := defaultEngine()
	charge := money.Money(4900)
	threshold := money.Money(49900)
	rule := &Rule{Pincode: "400001", IsActive: true, DeliveryCharge: &charge, MinOrderForFreeDelivery: &threshold}

	q := e.Resolve(rule, 30000, false)
	require.Equal(t, money.Money(4900), q.Fee)
	require.Equal(t, money.Money(2900), q.StandardFee)
	require.Equal(t, money.Money(2000), q.DistanceSurcharge)
	require.Equal(t, "surcharged", q.Tier())

	q = e.Resolve(rule, 50000, false)
	require.Equal(t, money.Money(0), q.Fee)
}

func TestResolveInactiveRuleFallsBack(t *testing.T) {
	e := defaultEngine()
	charge := money.Money(9900)
	rule := &Rule{Pincode: "110011", IsActive: false, DeliveryCharge: &charge}

	q := e.Resolve(rule, 10000, false)
	require.Equal(t, money.Money(2900), q.Fee)
}

func TestResolveFeeMonotoneInNet(t *testing.T) {
	e := defaultEngine()
	prev := money.Money(1 << 30)
	for net := money.Money(0); net <= 40000; net += 500 {
		q := e.Resolve(nil, net, false)
		require.LessOrEqual(t, q.Fee, prev, "fee must never rise as the cart grows")
		prev = q.Fee
	}
}
