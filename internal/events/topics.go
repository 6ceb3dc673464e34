package events

// Topics emitted by the cart session controller.
const (
	// TopicPromoApplied fires when a promo code is applied to a session.
	TopicPromoApplied = "promo.applied"
	// TopicPromoRemoved fires when a promo code is removed, explicitly or silently.
	TopicPromoRemoved = "promo.removed"
	// TopicGiftUnlocked fires when a higher gift tier becomes eligible.
	TopicGiftUnlocked = "gift.unlocked"
	// TopicGiftUpdated fires when eligibility drops into a lower gift tier.
	TopicGiftUpdated = "gift.updated"
	// TopicGiftSelected fires when the user picks a free gift.
	TopicGiftSelected = "gift.selected"
	// TopicGiftRemoved fires when a gift is deselected or the offer is lost.
	TopicGiftRemoved = "gift.removed"
)
