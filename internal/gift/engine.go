// Package gift evaluates gift-offer thresholds against the net order value
// and manages the per-session offer presentation state.
package gift

import (
	"errors"
	"sort"

	"github.com/freshkart/backend-cart/internal/money"
)

// ErrNoOffer is returned when a gift is selected without an eligible offer.
var ErrNoOffer = errors.New("no eligible gift offer")

// ErrUnknownGift is returned when the selected gift is not among the current
// offer's options.
var ErrUnknownGift = errors.New("gift not offered at this threshold")

// Threshold is a reference-data row: spend at least MinOrderValue, pick one
// of Options.
type Threshold struct {
	MinOrderValue money.Money `json:"minOrderValue"`
	Options       []string    `json:"options"`
	IsActive      bool        `json:"isActive"`
}

// State is the gift portion of a cart session. Shown records which threshold
// values the user has already acted on (selected or dismissed) this session,
// so their modal is not forced open again.
type State struct {
	SelectedGift     string               `json:"selectedGift,omitempty"`
	AppliedThreshold money.Money          `json:"appliedThreshold"`
	Shown            map[money.Money]bool `json:"shown,omitempty"`
	ModalOpen        bool                 `json:"modalOpen"`
	Minimized        bool                 `json:"minimized"`
	Current          *Threshold           `json:"current,omitempty"`
}

// Selected reports whether a gift is currently chosen.
func (s State) Selected() bool { return s.SelectedGift != "" }

func (s State) shown(v money.Money) bool { return s.Shown[v] }

func (s *State) markShown(v money.Money) {
	if s.Shown == nil {
		s.Shown = map[money.Money]bool{}
	}
	s.Shown[v] = true
}

// Notice is a user-facing message produced by a reconcile pass.
type Notice struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	NoticeRemoved  = "gift_removed"
	NoticeUpgraded = "gift_upgraded"
	NoticeUpdated  = "gift_updated"
)

// BestEligible returns the highest threshold the net order value qualifies
// for, or nil. Inactive thresholds never qualify.
func BestEligible(thresholds []Threshold, net money.Money) *Threshold {
	var best *Threshold
	for i := range thresholds {
		t := &thresholds[i]
		if !t.IsActive || net < t.MinOrderValue {
			continue
		}
		if best == nil || t.MinOrderValue > best.MinOrderValue {
			best = t
		}
	}
	if best == nil {
		return nil
	}
	cp := *best
	return &cp
}

// SortThresholds orders thresholds descending by minimum order value, the
// order eligibility resolution expects.
func SortThresholds(thresholds []Threshold) {
	sort.SliceStable(thresholds, func(i, j int) bool {
		return thresholds[i].MinOrderValue > thresholds[j].MinOrderValue
	})
}

// Reconcile re-evaluates the offer state after the net order value, the
// promo, or the threshold set changed. It returns the next state and any
// notices to surface.
func Reconcile(st State, thresholds []Threshold, net money.Money, promoActive bool) (State, []Notice) {
	best := BestEligible(thresholds, net)
	var notices []Notice

	if best == nil {
		st.Current = nil
		st.ModalOpen = false
		st.Minimized = false
		if st.Selected() {
			st.SelectedGift = ""
			st.AppliedThreshold = 0
			notices = append(notices, Notice{
				Kind:    NoticeRemoved,
				Message: "Your free gift was removed because the order value dropped below the offer minimum.",
			})
		}
		return st, notices
	}

	st.Current = best

	if !st.Selected() {
		if !st.shown(best.MinOrderValue) && !promoActive {
			st.ModalOpen = true
			st.Minimized = false
		} else {
			st.ModalOpen = false
			st.Minimized = true
		}
		return st, notices
	}

	if st.AppliedThreshold == best.MinOrderValue {
		// selection still valid, nothing to do
		return st, notices
	}

	upgraded := best.MinOrderValue > st.AppliedThreshold
	st.SelectedGift = ""
	st.AppliedThreshold = 0
	if upgraded {
		delete(st.Shown, best.MinOrderValue)
		st.ModalOpen = true
		st.Minimized = false
		notices = append(notices, Notice{
			Kind:    NoticeUpgraded,
			Message: "You unlocked a better free gift. Pick your new gift.",
		})
	} else {
		st.ModalOpen = false
		st.Minimized = true
		notices = append(notices, Notice{
			Kind:    NoticeUpdated,
			Message: "Your gift offer was updated because the order value changed.",
		})
	}
	return st, notices
}

// Select chooses a gift from the current offer. The threshold is marked shown
// so the modal does not pop again this session.
func Select(st State, giftText string) (State, error) {
	if st.Current == nil {
		return st, ErrNoOffer
	}
	found := false
	for _, opt := range st.Current.Options {
		if opt == giftText {
			found = true
			break
		}
	}
	if !found {
		return st, ErrUnknownGift
	}
	st.SelectedGift = giftText
	st.AppliedThreshold = st.Current.MinOrderValue
	st.ModalOpen = false
	st.Minimized = false
	st.markShown(st.Current.MinOrderValue)
	return st, nil
}

// Dismiss closes the modal without choosing. The offer stays available as a
// minimized bubble.
func Dismiss(st State) State {
	if st.Current != nil {
		st.markShown(st.Current.MinOrderValue)
		st.Minimized = true
	}
	st.ModalOpen = false
	return st
}

// Remove clears the selected gift. Always permitted, idempotent.
func Remove(st State) State {
	st.SelectedGift = ""
	st.AppliedThreshold = 0
	st.ModalOpen = false
	if st.Current != nil {
		st.Minimized = true
	}
	return st
}
