// Package session owns the per-cart-session state and orchestrates the
// pricing, promo, gift, and delivery engines behind the HTTP surface.
package session

import (
	"github.com/freshkart/backend-cart/internal/cart"
	"github.com/freshkart/backend-cart/internal/delivery"
	"github.com/freshkart/backend-cart/internal/gift"
	"github.com/freshkart/backend-cart/internal/money"
	"github.com/freshkart/backend-cart/internal/pricing"
	"github.com/freshkart/backend-cart/internal/promo"
)

// CartState is the durable portion of a session: it survives the browsing
// session so a returning user finds their cart intact.
type CartState struct {
	Lines            []cart.Line `json:"lines"`
	Pincode          string      `json:"pincode,omitempty"`
	Tip              money.Money `json:"tip"`
	Promo            promo.State `json:"promo"`
	SelectedGift     string      `json:"selectedGift,omitempty"`
	AppliedThreshold money.Money `json:"appliedThreshold"`
}

// EphemeralState is the short-lived portion: which gift thresholds the user
// already acted on. It expires with the browsing session, so a returning
// user sees offer modals afresh.
type EphemeralState struct {
	ShownThresholds map[money.Money]bool `json:"shownThresholds,omitempty"`
}

// ConflictKind names which side of the promo/gift exclusivity rule is
// pending confirmation.
type ConflictKind string

const (
	ConflictPromo ConflictKind = "promo"
	ConflictGift  ConflictKind = "gift"
)

// Conflict is a pending exclusivity switch awaiting user confirmation.
type Conflict struct {
	Kind             ConflictKind `json:"kind"`
	PendingPromoCode string       `json:"pendingPromoCode,omitempty"`
	PendingGift      string       `json:"pendingGift,omitempty"`
}

// View is the full session snapshot returned to clients after every
// operation.
type View struct {
	SessionID string          `json:"sessionId"`
	Items     []cart.LineItem `json:"items"`
	Totals    pricing.Summary `json:"totals"`
	TotalMRP  money.Money     `json:"totalMrp"`
	Savings   money.Money     `json:"totalSavings"`
	Delivery  delivery.Quote  `json:"delivery"`
	Pincode   string          `json:"pincode,omitempty"`
	Promo     promo.State     `json:"promo"`
	Gift      GiftView        `json:"gift"`
	Conflict  *Conflict       `json:"conflict,omitempty"`
	Notices   []gift.Notice   `json:"notices,omitempty"`
}

// GiftView is the client-facing gift state.
type GiftView struct {
	SelectedGift     string          `json:"selectedGift,omitempty"`
	AppliedThreshold money.Money     `json:"appliedThreshold"`
	CurrentOffer     *gift.Threshold `json:"currentOffer,omitempty"`
	ModalOpen        bool            `json:"modalOpen"`
	Minimized        bool            `json:"minimized"`
}
