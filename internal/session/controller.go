package session

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/freshkart/backend-cart/internal/cart"
	"github.com/freshkart/backend-cart/internal/catalog"
	"github.com/freshkart/backend-cart/internal/delivery"
	"github.com/freshkart/backend-cart/internal/events"
	"github.com/freshkart/backend-cart/internal/gift"
	"github.com/freshkart/backend-cart/internal/money"
	"github.com/freshkart/backend-cart/internal/obs"
	"github.com/freshkart/backend-cart/internal/pricing"
	"github.com/freshkart/backend-cart/internal/promo"
)

// ErrConflict signals that the operation would violate the promo/gift
// exclusivity rule and needs explicit user confirmation.
var ErrConflict = errors.New("promo and gift offers are mutually exclusive")

// ErrNoConflict is returned when a switch confirmation arrives with nothing
// pending.
var ErrNoConflict = errors.New("no pending offer switch")

// Controller owns one cart session. All state transitions run under its
// mutex and end with a full recompute, so every response reflects a
// consistent pricing pass.
type Controller struct {
	ID uuid.UUID

	Catalog    catalog.Source
	Rules      delivery.Source
	Delivery   delivery.Engine
	Promo      *promo.Engine
	Debounce   *promo.Debouncer
	Thresholds []gift.Threshold
	Store      *Store
	Bus        *events.Bus
	Logger     zerolog.Logger
	TaxRateBps int32
	Now        func() time.Time

	mu       sync.Mutex
	cart     CartState
	gift     gift.State
	conflict *Conflict
	notices  []gift.Notice

	lastSubtotal          money.Money
	lastValidatedSubtotal money.Money
	scheduledSubtotal     money.Money
	lastAccess            time.Time
}

func (c *Controller) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// ItemInput is one cart line as sent by the client. Key is the wire-form
// item key, including the legacy weight-label form.
type ItemInput struct {
	Key          string `json:"key" validate:"required"`
	Qty          int    `json:"qty" validate:"gte=0"`
	Customized   bool   `json:"customized"`
	Instructions string `json:"instructions" validate:"max=500"`
}

// View recomputes and returns the current session snapshot.
func (c *Controller) View(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finishLocked(ctx)
}

// SetItems replaces the cart contents. Lines with zero quantity are removed.
func (c *Controller) SetItems(ctx context.Context, inputs []ItemInput) (View, error) {
	snap, err := c.Catalog.Snapshot(ctx)
	if err != nil {
		return View{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lines := make([]cart.Line, 0, len(inputs))
	for _, in := range inputs {
		if in.Qty <= 0 {
			continue
		}
		key, err := cart.ParseKey(in.Key, snap.VariantIndexByWeight)
		if err != nil {
			return View{}, err
		}
		lines = append(lines, cart.Line{
			Key:          key,
			Qty:          in.Qty,
			Customized:   in.Customized,
			Instructions: in.Instructions,
		})
	}
	c.cart.Lines = lines
	return c.finishLocked(ctx)
}

// SetPincode changes the delivery address pincode.
func (c *Controller) SetPincode(ctx context.Context, pincode string) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.Pincode = pincode
	return c.finishLocked(ctx)
}

// SetTip sets the rider tip.
func (c *Controller) SetTip(ctx context.Context, tip money.Money) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cart.Tip = money.ClampNonNegative(tip)
	return c.finishLocked(ctx)
}

// ApplyPromo validates and applies a promo code. If a gift is selected the
// call raises a conflict instead and returns ErrConflict alongside the view.
func (c *Controller) ApplyPromo(ctx context.Context, code string) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gift.Selected() {
		c.conflict = &Conflict{Kind: ConflictPromo, PendingPromoCode: code}
		view, err := c.finishLocked(ctx)
		if err != nil {
			return view, err
		}
		return view, ErrConflict
	}
	return c.applyPromoLocked(ctx, code)
}

func (c *Controller) applyPromoLocked(ctx context.Context, code string) (View, error) {
	// refresh the subtotal first; a rehydrated controller may not have
	// recomputed since this process loaded it
	if _, err := c.recomputeLocked(ctx); err != nil {
		return View{}, err
	}
	next, err := c.Promo.Apply(ctx, c.cart.Promo, code, c.lastSubtotal, c.ID.String())
	c.cart.Promo = next
	if err != nil {
		result := "rejected"
		if errors.Is(err, promo.ErrUnavailable) {
			result = "unavailable"
		}
		c.countPromoApply(result)
		view, ferr := c.finishLocked(ctx)
		if ferr != nil {
			return view, ferr
		}
		return view, err
	}
	c.countPromoApply("applied")
	c.lastValidatedSubtotal = c.lastSubtotal
	c.emit(ctx, events.TopicPromoApplied, map[string]any{
		"code":     next.Code,
		"discount": next.Discount,
	})
	return c.finishLocked(ctx)
}

// RemovePromo clears the applied promo code. Idempotent.
func (c *Controller) RemovePromo(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cart.Promo.Applied() {
		c.emit(ctx, events.TopicPromoRemoved, map[string]any{"code": c.cart.Promo.Code, "reason": "user"})
	}
	c.cart.Promo = c.Promo.Remove(c.cart.Promo)
	return c.finishLocked(ctx)
}

// SelectGift picks a gift from the current offer. If a promo is applied the
// call raises a conflict instead and returns ErrConflict alongside the view.
func (c *Controller) SelectGift(ctx context.Context, giftText string) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cart.Promo.Applied() {
		c.conflict = &Conflict{Kind: ConflictGift, PendingGift: giftText}
		view, err := c.finishLocked(ctx)
		if err != nil {
			return view, err
		}
		return view, ErrConflict
	}
	return c.selectGiftLocked(ctx, giftText)
}

func (c *Controller) selectGiftLocked(ctx context.Context, giftText string) (View, error) {
	// reconcile first; a rehydrated controller has no current offer until a
	// recompute runs in this process
	if _, err := c.recomputeLocked(ctx); err != nil {
		return View{}, err
	}
	next, err := gift.Select(c.gift, giftText)
	if err != nil {
		view, ferr := c.finishLocked(ctx)
		if ferr != nil {
			return view, ferr
		}
		return view, err
	}
	c.gift = next
	c.emit(ctx, events.TopicGiftSelected, map[string]any{
		"gift":      next.SelectedGift,
		"threshold": next.AppliedThreshold,
	})
	return c.finishLocked(ctx)
}

// DismissGift closes the offer modal without choosing; the offer stays
// available as a minimized bubble.
func (c *Controller) DismissGift(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// reconcile so a rehydrated controller marks the right threshold shown
	if _, err := c.recomputeLocked(ctx); err != nil {
		return View{}, err
	}
	c.gift = gift.Dismiss(c.gift)
	return c.finishLocked(ctx)
}

// RemoveGift deselects the gift. Idempotent.
func (c *Controller) RemoveGift(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gift.Selected() {
		c.emit(ctx, events.TopicGiftRemoved, map[string]any{"gift": c.gift.SelectedGift, "reason": "user"})
	}
	c.gift = gift.Remove(c.gift)
	return c.finishLocked(ctx)
}

// ConfirmSwitch resolves a pending exclusivity conflict in favour of the
// pending offer. The conflict is cleared regardless of the outcome.
func (c *Controller) ConfirmSwitch(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conflict == nil {
		view, err := c.finishLocked(ctx)
		if err != nil {
			return view, err
		}
		return view, ErrNoConflict
	}
	pending := *c.conflict
	c.conflict = nil

	switch pending.Kind {
	case ConflictPromo:
		if c.gift.Selected() {
			c.emit(ctx, events.TopicGiftRemoved, map[string]any{"gift": c.gift.SelectedGift, "reason": "switch"})
		}
		c.gift = gift.Remove(c.gift)
		c.countSwitch("gift_to_promo")
		return c.applyPromoLocked(ctx, pending.PendingPromoCode)
	case ConflictGift:
		if c.cart.Promo.Applied() {
			c.emit(ctx, events.TopicPromoRemoved, map[string]any{"code": c.cart.Promo.Code, "reason": "switch"})
		}
		c.cart.Promo = c.Promo.Remove(c.cart.Promo)
		c.countSwitch("promo_to_gift")
		// selectGiftLocked reconciles, so the offer tier already reflects
		// the restored net value by the time the gift is picked
		return c.selectGiftLocked(ctx, pending.PendingGift)
	default:
		return c.finishLocked(ctx)
	}
}

// CancelSwitch discards the pending switch without touching promo or gift
// state.
func (c *Controller) CancelSwitch(ctx context.Context) (View, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.conflict = nil
	return c.finishLocked(ctx)
}

// finishLocked recomputes and drains pending notices into the response.
// Must be called with the mutex held.
func (c *Controller) finishLocked(ctx context.Context) (View, error) {
	view, err := c.recomputeLocked(ctx)
	if err != nil {
		return view, err
	}
	view.Notices = c.notices
	c.notices = nil
	return view, nil
}

// recomputeLocked runs a full pricing pass, persists both state scopes, and
// builds the response view. Notices accumulate until a client-facing call
// drains them. Must be called with the mutex held.
func (c *Controller) recomputeLocked(ctx context.Context) (View, error) {
	started := c.now()
	c.lastAccess = started

	snap, err := c.Catalog.Snapshot(ctx)
	if err != nil {
		return View{}, err
	}

	charges := map[cart.ItemKey]money.Money{}
	for _, line := range c.cart.Lines {
		if !line.Customized {
			continue
		}
		if _, variant, ok := snap.Variant(line.Key.ProductID, line.Key.VariantIndex); ok {
			charges[line.Key] = snap.ChargeFor(line.Key.ProductID, variant.WeightGrams*line.Qty)
		}
	}
	items, totals := cart.Aggregate(c.cart.Lines, snap, charges)

	discount := money.Money(0)
	if c.cart.Promo.Applied() {
		discount = money.Min(c.cart.Promo.Discount, totals.Subtotal)
	}
	net := totals.Subtotal - discount

	rule, err := c.Rules.RuleFor(ctx, c.cart.Pincode)
	if err != nil {
		c.Logger.Warn().Err(err).Str("pincode", c.cart.Pincode).Msg("fee rule lookup failed, using defaults")
		rule = nil
	}
	quote := c.Delivery.Resolve(rule, net, len(items) == 0)

	wasModalOpen := c.gift.ModalOpen
	nextGift, notices := gift.Reconcile(c.gift, c.Thresholds, net, c.cart.Promo.Applied())
	c.gift = nextGift
	if c.gift.ModalOpen && !wasModalOpen && obs.GiftOfferSurfacedTotal != nil {
		obs.GiftOfferSurfacedTotal.Inc()
	}
	for _, n := range notices {
		switch n.Kind {
		case gift.NoticeRemoved:
			c.emit(ctx, events.TopicGiftRemoved, map[string]any{"reason": "ineligible"})
		case gift.NoticeUpgraded:
			c.emit(ctx, events.TopicGiftUnlocked, map[string]any{"threshold": c.gift.Current.MinOrderValue})
		case gift.NoticeUpdated:
			c.emit(ctx, events.TopicGiftUpdated, map[string]any{"threshold": c.gift.Current.MinOrderValue})
		}
	}
	c.notices = append(c.notices, notices...)

	summary := pricing.Compute(pricing.Inputs{
		Subtotal:       totals.Subtotal,
		ShippingFee:    quote.Fee,
		Tax:            pricing.TaxFor(net, c.TaxRateBps),
		Tip:            c.cart.Tip,
		DiscountAmount: discount,
	})

	c.lastSubtotal = totals.Subtotal
	// re-check the promo when the subtotal drifts, but do not push the timer
	// out again for a subtotal that is already scheduled
	if c.cart.Promo.Applied() && totals.Subtotal != c.lastValidatedSubtotal &&
		totals.Subtotal != c.scheduledSubtotal && c.Debounce != nil {
		c.scheduledSubtotal = totals.Subtotal
		c.Debounce.Schedule(c.revalidate)
	}

	c.cart.SelectedGift = c.gift.SelectedGift
	c.cart.AppliedThreshold = c.gift.AppliedThreshold
	if err := c.persistLocked(ctx); err != nil {
		return View{}, err
	}

	if obs.DeliveryQuoteTotal != nil {
		obs.DeliveryQuoteTotal.WithLabelValues(quote.Tier()).Inc()
	}
	if obs.RecomputeLatency != nil {
		obs.RecomputeLatency.Observe(obs.DurationMillis(time.Since(started)))
	}

	view := View{
		SessionID: c.ID.String(),
		Items:     items,
		Totals:    summary,
		TotalMRP:  totals.TotalMRP,
		Savings:   totals.TotalSavings,
		Delivery:  quote,
		Pincode:   c.cart.Pincode,
		Promo:     c.cart.Promo,
		Gift: GiftView{
			SelectedGift:     c.gift.SelectedGift,
			AppliedThreshold: c.gift.AppliedThreshold,
			CurrentOffer:     c.gift.Current,
			ModalOpen:        c.gift.ModalOpen,
			Minimized:        c.gift.Minimized,
		},
		Conflict: c.conflict,
	}
	return view, nil
}

func (c *Controller) persistLocked(ctx context.Context) error {
	if c.Store == nil {
		return nil
	}
	if err := c.Store.SaveCart(ctx, c.ID, c.cart); err != nil {
		return err
	}
	return c.Store.SaveEphemeral(ctx, c.ID, EphemeralState{ShownThresholds: c.gift.Shown})
}

// revalidate is the debounced silent promo re-check. The sequence number
// guards against results computed for an outdated subtotal.
func (c *Controller) revalidate(seq uint64) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c.mu.Lock()
	if c.Debounce.Stale(seq) || !c.cart.Promo.Applied() {
		c.mu.Unlock()
		return
	}
	st := c.cart.Promo
	subtotal := c.lastSubtotal
	c.mu.Unlock()

	next, outcome := c.Promo.Revalidate(ctx, st, subtotal, c.ID.String())

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Debounce.Stale(seq) || subtotal != c.lastSubtotal {
		// a newer recompute superseded this check
		return
	}
	c.cart.Promo = next
	c.lastValidatedSubtotal = subtotal
	c.countRevalidate(string(outcome))
	if outcome == promo.OutcomeDropped {
		c.emit(ctx, events.TopicPromoRemoved, map[string]any{"code": st.Code, "reason": "revalidation"})
	}
	if _, err := c.recomputeLocked(ctx); err != nil {
		c.Logger.Error().Err(err).Stringer("session_id", c.ID).Msg("recompute after revalidation failed")
	}
}

func (c *Controller) emit(ctx context.Context, topic string, payload map[string]any) {
	if c.Bus == nil {
		return
	}
	if _, err := c.Bus.Emit(ctx, topic, c.ID, payload); err != nil {
		c.Logger.Warn().Err(err).Str("topic", topic).Msg("event emit failed")
	}
}

func (c *Controller) countPromoApply(result string) {
	if obs.PromoApplyTotal != nil {
		obs.PromoApplyTotal.WithLabelValues(result).Inc()
	}
}

func (c *Controller) countRevalidate(result string) {
	if obs.PromoRevalidateTotal != nil {
		obs.PromoRevalidateTotal.WithLabelValues(result).Inc()
	}
}

func (c *Controller) countSwitch(direction string) {
	if obs.GiftOfferSwitchTotal != nil {
		obs.GiftOfferSwitchTotal.WithLabelValues(direction).Inc()
	}
}
