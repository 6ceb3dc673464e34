// Command seeder creates the cart service tables and loads a small demo
// dataset for local development.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/freshkart/backend-cart/internal/config"
	"github.com/freshkart/backend-cart/internal/obs"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS products (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		customizable BOOLEAN NOT NULL DEFAULT FALSE,
		charge_tiers JSONB,
		active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
	`CREATE TABLE IF NOT EXISTS product_variants (
		product_id UUID NOT NULL REFERENCES products(id) ON DELETE CASCADE,
		position INT NOT NULL,
		weight_label TEXT NOT NULL,
		weight_grams INT NOT NULL,
		price_paise BIGINT NOT NULL,
		offer_price_paise BIGINT,
		stock INT NOT NULL DEFAULT 0,
		PRIMARY KEY (product_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS service_area_rules (
		pincode TEXT PRIMARY KEY,
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		delivery_charge_paise BIGINT,
		min_order_free_delivery_paise BIGINT
	)`,
	`CREATE TABLE IF NOT EXISTS gift_offer_thresholds (
		id SERIAL PRIMARY KEY,
		min_order_value_paise BIGINT NOT NULL,
		options JSONB NOT NULL,
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	)`,
}

func main() {
	withDemoData := flag.Bool("demo", true, "load demo rows after creating the schema")
	flag.Parse()

	logger := obs.NewLogger("console", "info").With().Str("tool", "seeder").Logger()
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer conn.Close(ctx)

	for _, stmt := range schema {
		if _, err := conn.Exec(ctx, stmt); err != nil {
			logger.Fatal().Err(err).Msg("create schema")
		}
	}
	logger.Info().Msg("schema ready")

	if !*withDemoData {
		return
	}
	if err := seedDemo(ctx, conn); err != nil {
		logger.Fatal().Err(err).Msg("seed demo data")
	}
	logger.Info().Msg("demo data loaded")
}

func seedDemo(ctx context.Context, conn *pgx.Conn) error {
	mango := uuid.MustParse("6f1d0f3e-9a42-4c83-9f2e-0b8f8e8b1a01")
	rice := uuid.MustParse("2c9a6d11-41ce-4d0d-8db2-55a4f9c2be02")
	chicken := uuid.MustParse("9a0c4f7d-7a31-4a88-9a51-6c1f2f6d3c03")

	tx, err := conn.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	type product struct {
		id           uuid.UUID
		name         string
		customizable bool
		tiers        string
	}
	for _, p := range []product{
		{mango, "Alphonso Mango", false, ""},
		{rice, "Basmati Rice", false, ""},
		{chicken, "Fresh Chicken Curry Cut", true, `[{"weightGrams":1000,"charge":3000},{"weightGrams":500,"charge":1800},{"weightGrams":250,"charge":1000}]`},
	} {
		var tiers any
		if p.tiers != "" {
			tiers = p.tiers
		}
		if _, err := tx.Exec(ctx, `
			INSERT INTO products (id, name, customizable, charge_tiers)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, customizable = EXCLUDED.customizable, charge_tiers = EXCLUDED.charge_tiers`,
			p.id, p.name, p.customizable, tiers); err != nil {
			return err
		}
	}

	type variant struct {
		product    uuid.UUID
		position   int
		label      string
		grams      int
		price      int64
		offerPrice any
		stock      int
	}
	for _, v := range []variant{
		{mango, 0, "500g", 500, 25000, int64(19900), 40},
		{mango, 1, "1kg", 1000, 48000, nil, 12},
		{rice, 0, "5kg", 5000, 65000, nil, 25},
		{chicken, 0, "500g", 500, 22000, int64(19900), 30},
		{chicken, 1, "1kg", 1000, 42000, nil, 18},
	} {
		if _, err := tx.Exec(ctx, `
			INSERT INTO product_variants (product_id, position, weight_label, weight_grams, price_paise, offer_price_paise, stock)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (product_id, position) DO UPDATE SET
				weight_label = EXCLUDED.weight_label,
				weight_grams = EXCLUDED.weight_grams,
				price_paise = EXCLUDED.price_paise,
				offer_price_paise = EXCLUDED.offer_price_paise,
				stock = EXCLUDED.stock`,
			v.product, v.position, v.label, v.grams, v.price, v.offerPrice, v.stock); err != nil {
			return err
		}
	}

	type rule struct {
		pincode   string
		active    bool
		charge    any
		freeAbove any
	}
	for _, r := range []rule{
		{"400001", true, nil, nil},
		{"400709", true, int64(4900), int64(49900)},
		{"421301", false, nil, nil},
	} {
		if _, err := tx.Exec(ctx, `
			INSERT INTO service_area_rules (pincode, is_active, delivery_charge_paise, min_order_free_delivery_paise)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (pincode) DO UPDATE SET
				is_active = EXCLUDED.is_active,
				delivery_charge_paise = EXCLUDED.delivery_charge_paise,
				min_order_free_delivery_paise = EXCLUDED.min_order_free_delivery_paise`,
			r.pincode, r.active, r.charge, r.freeAbove); err != nil {
			return err
		}
	}

	if _, err := tx.Exec(ctx, `TRUNCATE gift_offer_thresholds`); err != nil {
		return err
	}
	for _, g := range []struct {
		minOrder int64
		options  string
	}{
		{50000, `["Jute Tote Bag","Ceramic Mug"]`},
		{100000, `["Steel Water Bottle","Spice Box Set"]`},
	} {
		if _, err := tx.Exec(ctx, `
			INSERT INTO gift_offer_thresholds (min_order_value_paise, options, is_active)
			VALUES ($1, $2, TRUE)`, g.minOrder, g.options); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}
