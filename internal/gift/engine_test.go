package gift

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/freshkart/backend-cart/internal/money"
)

func testThresholds() []Threshold {
	return []Threshold{
		{MinOrderValue: 10000, Options: []string{"Keychain"}, IsActive: true},
		{MinOrderValue: 50000, Options: []string{"Tote Bag", "Mug"}, IsActive: true},
		{MinOrderValue: 100000, Options: []string{"Steel Bottle"}, IsActive: true},
	}
}

func TestBestEligiblePicksHighest(t *testing.T) {
	best := BestEligible(testThresholds(), 60000)
	require.NotNil(t, best)
	require.Equal(t, money.Money(50000), best.MinOrderValue)

	require.Nil(t, BestEligible(testThresholds(), 5000))

	best = BestEligible(testThresholds(), 100000)
	require.Equal(t, money.Money(100000), best.MinOrderValue)
}

func TestBestEligibleSkipsInactive(t *testing.T) {
	ths := testThresholds()
	ths[2].IsActive = false
	best := BestEligible(ths, 200000)
	require.Equal(t, money.Money(50000), best.MinOrderValue)
}

func TestReconcileSurfacesModalOnce(t *testing.T) {
	st, notices := Reconcile(State{}, testThresholds(), 60000, false)
	require.Empty(t, notices)
	require.True(t, st.ModalOpen)
	require.False(t, st.Minimized)

	// modal keeps re-opening until the user acts on it
	st, _ = Reconcile(st, testThresholds(), 61000, false)
	require.True(t, st.ModalOpen)

	st = Dismiss(st)
	require.False(t, st.ModalOpen)
	require.True(t, st.Minimized)
	require.NotNil(t, st.Current)

	st, _ = Reconcile(st, testThresholds(), 62000, false)
	require.False(t, st.ModalOpen)
	require.True(t, st.Minimized)
}

func TestReconcileNoModalWhilePromoActive(t *testing.T) {
	st, _ := Reconcile(State{}, testThresholds(), 60000, true)
	require.False(t, st.ModalOpen)
	require.True(t, st.Minimized)
}

func TestReconcileDowngradeDeselects(t *testing.T) {
	st, _ := Reconcile(State{}, testThresholds(), 120000, false)
	st, err := Select(st, "Steel Bottle")
	require.NoError(t, err)
	require.Equal(t, money.Money(100000), st.AppliedThreshold)

	st, notices := Reconcile(st, testThresholds(), 60000, false)
	require.False(t, st.Selected())
	require.Equal(t, money.Money(0), st.AppliedThreshold)
	require.Len(t, notices, 1)
	require.Equal(t, NoticeUpdated, notices[0].Kind)
	require.False(t, st.ModalOpen)
	require.True(t, st.Minimized)
}

func TestReconcileUpgradeReopensModal(t *testing.T) {
	st, _ := Reconcile(State{}, testThresholds(), 60000, false)
	st, err := Select(st, "Mug")
	require.NoError(t, err)

	// user also saw and dismissed the top tier earlier this session
	st.markShown(100000)

	st, notices := Reconcile(st, testThresholds(), 120000, false)
	require.False(t, st.Selected())
	require.Len(t, notices, 1)
	require.Equal(t, NoticeUpgraded, notices[0].Kind)
	require.True(t, st.ModalOpen)
	require.False(t, st.Minimized)
	require.False(t, st.shown(100000))
	require.Equal(t, money.Money(100000), st.Current.MinOrderValue)
}

func TestReconcileDropBelowAllThresholds(t *testing.T) {
	st, _ := Reconcile(State{}, testThresholds(), 60000, false)
	st, err := Select(st, "Tote Bag")
	require.NoError(t, err)

	st, notices := Reconcile(st, testThresholds(), 5000, false)
	require.False(t, st.Selected())
	require.Nil(t, st.Current)
	require.Len(t, notices, 1)
	require.Equal(t, NoticeRemoved, notices[0].Kind)
}

func TestReconcileStableSelection(t *testing.T) {
	st, _ := Reconcile(State{}, testThresholds(), 60000, false)
	st, err := Select(st, "Tote Bag")
	require.NoError(t, err)

	next, notices := Reconcile(st, testThresholds(), 70000, false)
	require.Empty(t, notices)
	require.Equal(t, "Tote Bag", next.SelectedGift)
	require.False(t, next.ModalOpen)
}

func TestSelectValidation(t *testing.T) {
	_, err := Select(State{}, "Mug")
	require.ErrorIs(t, err, ErrNoOffer)

	st, _ := Reconcile(State{}, testThresholds(), 60000, false)
	_, err = Select(st, "Yacht")
	require.ErrorIs(t, err, ErrUnknownGift)
}

func TestRemoveIdempotent(t *testing.T) {
	st, _ := Reconcile(State{}, testThresholds(), 60000, false)
	st, err := Select(st, "Mug")
	require.NoError(t, err)

	once := Remove(st)
	twice := Remove(once)
	require.Equal(t, once, twice)
	require.False(t, once.Selected())
	require.Equal(t, money.Money(0), once.AppliedThreshold)
}
