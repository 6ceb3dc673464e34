package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshkart/backend-cart/internal/cache"
	"github.com/freshkart/backend-cart/internal/customization"
	"github.com/freshkart/backend-cart/internal/money"
)

// Source supplies catalog snapshots for pricing.
type Source interface {
	Snapshot(ctx context.Context) (Snapshot, error)
}

// Service loads catalog snapshots from Postgres with a Redis cache in front.
type Service struct {
	Pool  *pgxpool.Pool
	Cache *cache.Cache
}

// Snapshot returns the current catalog keyed by product id.
func (s *Service) Snapshot(ctx context.Context) (Snapshot, error) {
	if s == nil || s.Pool == nil {
		return nil, errors.New("catalog service not configured")
	}
	var cached map[string]Product
	if ok, err := s.Cache.GetJSON(ctx, cache.CatalogKey(), &cached); err == nil && ok {
		return fromCacheKeys(cached)
	}

	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	_ = s.Cache.SetJSON(ctx, cache.CatalogKey(), toCacheKeys(snap))
	return snap, nil
}

func (s *Service) load(ctx context.Context) (Snapshot, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, name, customizable, COALESCE(charge_tiers, '[]'::jsonb)
		FROM products
		WHERE active`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	snap := Snapshot{}
	for rows.Next() {
		var (
			p        Product
			rawTiers []byte
		)
		if err := rows.Scan(&p.ID, &p.Name, &p.Customizable, &rawTiers); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		if len(rawTiers) > 0 {
			if err := json.Unmarshal(rawTiers, &p.ChargeTiers); err != nil {
				return nil, fmt.Errorf("decode charge tiers: %w", err)
			}
		}
		snap[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	vrows, err := s.Pool.Query(ctx, `
		SELECT product_id, weight_label, weight_grams, price_paise, offer_price_paise, stock
		FROM product_variants
		ORDER BY product_id, position`)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer vrows.Close()

	for vrows.Next() {
		var (
			productID uuid.UUID
			v         Variant
			offer     *int64
		)
		if err := vrows.Scan(&productID, &v.WeightLabel, &v.WeightGrams, &v.Price, &offer, &v.Stock); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		if offer != nil {
			v.OfferPrice = money.Money(*offer)
		}
		p, ok := snap[productID]
		if !ok {
			continue
		}
		p.Variants = append(p.Variants, v)
		snap[productID] = p
	}
	if err := vrows.Err(); err != nil {
		return nil, err
	}
	return snap, nil
}

// ChargeFor exposes the customization charge table lookup for a product.
func (s Snapshot) ChargeFor(productID uuid.UUID, totalWeightGrams int) money.Money {
	p, ok := s[productID]
	if !ok || !p.Customizable {
		return 0
	}
	return customization.Compute(p.ChargeTiers, totalWeightGrams)
}

func toCacheKeys(snap Snapshot) map[string]Product {
	out := make(map[string]Product, len(snap))
	for id, p := range snap {
		out[id.String()] = p
	}
	return out
}

func fromCacheKeys(cached map[string]Product) (Snapshot, error) {
	snap := make(Snapshot, len(cached))
	for raw, p := range cached {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse cached product id: %w", err)
		}
		snap[id] = p
	}
	return snap, nil
}
