package delivery

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshkart/backend-cart/internal/cache"
)

// Source supplies serviceability rules by pincode.
type Source interface {
	RuleFor(ctx context.Context, pincode string) (*Rule, error)
}

// Repo reads rules from Postgres with a short-lived Redis cache in front,
// since fee rules change rarely but are read on every recompute.
type Repo struct {
	Pool  *pgxpool.Pool
	Cache *cache.Cache
}

type cachedRule struct {
	Found bool `json:"found"`
	Rule  Rule `json:"rule"`
}

// RuleFor returns the active rule for a pincode, or nil when the pincode has
// no rule and defaults apply. Misses are cached too.
func (r *Repo) RuleFor(ctx context.Context, pincode string) (*Rule, error) {
	if r == nil || r.Pool == nil {
		return nil, errors.New("delivery repo not configured")
	}
	if pincode == "" {
		return nil, nil
	}

	var cached cachedRule
	if ok, err := r.Cache.GetJSON(ctx, cache.FeeRuleKey(pincode), &cached); err == nil && ok {
		if !cached.Found {
			return nil, nil
		}
		rule := cached.Rule
		return &rule, nil
	}

	rule := Rule{Pincode: pincode}
	err := r.Pool.QueryRow(ctx, `
		SELECT is_active, delivery_charge_paise, min_order_free_delivery_paise
		FROM service_area_rules
		WHERE pincode = $1`, pincode).
		Scan(&rule.IsActive, &rule.DeliveryCharge, &rule.MinOrderForFreeDelivery)
	if errors.Is(err, pgx.ErrNoRows) {
		_ = r.Cache.SetJSON(ctx, cache.FeeRuleKey(pincode), cachedRule{})
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query service area rule: %w", err)
	}

	_ = r.Cache.SetJSON(ctx, cache.FeeRuleKey(pincode), cachedRule{Found: true, Rule: rule})
	return &rule, nil
}
