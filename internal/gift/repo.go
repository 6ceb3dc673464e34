package gift

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/freshkart/backend-cart/internal/money"
)

// Source supplies the active gift-offer thresholds. Fetched once per session
// at cart entry.
type Source interface {
	ActiveThresholds(ctx context.Context) ([]Threshold, error)
}

// Repo reads gift-offer thresholds from Postgres.
type Repo struct {
	Pool *pgxpool.Pool
}

// ActiveThresholds returns active thresholds sorted descending by minimum
// order value.
func (r *Repo) ActiveThresholds(ctx context.Context) ([]Threshold, error) {
	if r == nil || r.Pool == nil {
		return nil, errors.New("gift repo not configured")
	}
	rows, err := r.Pool.Query(ctx, `
		SELECT min_order_value_paise, options
		FROM gift_offer_thresholds
		WHERE is_active
		ORDER BY min_order_value_paise DESC`)
	if err != nil {
		return nil, fmt.Errorf("query gift thresholds: %w", err)
	}
	defer rows.Close()

	var out []Threshold
	for rows.Next() {
		var (
			minOrder   int64
			rawOptions []byte
		)
		if err := rows.Scan(&minOrder, &rawOptions); err != nil {
			return nil, fmt.Errorf("scan gift threshold: %w", err)
		}
		t := Threshold{MinOrderValue: money.Money(minOrder), IsActive: true}
		if len(rawOptions) > 0 {
			if err := json.Unmarshal(rawOptions, &t.Options); err != nil {
				return nil, fmt.Errorf("decode gift options: %w", err)
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
