package cache

import "fmt"

// FeeRuleKey names the cached service-area fee rule for a pincode.
func FeeRuleKey(pincode string) string {
	return fmt.Sprintf("feerule:%s", pincode)
}

// CatalogKey names the cached catalog snapshot.
func CatalogKey() string {
	return "catalog:snapshot"
}

// CartKey names the durable cart state for a session. Carts survive the
// browsing session, so this lives under the long TTL.
func CartKey(sessionID string) string {
	return fmt.Sprintf("cart:%s", sessionID)
}

// SessionKey names the ephemeral per-session presentation state, such as
// which gift thresholds were already surfaced.
func SessionKey(sessionID string) string {
	return fmt.Sprintf("session:%s", sessionID)
}
