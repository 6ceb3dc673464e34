package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/freshkart/backend-cart/internal/cache"
	"github.com/freshkart/backend-cart/internal/catalog"
	"github.com/freshkart/backend-cart/internal/config"
	"github.com/freshkart/backend-cart/internal/delivery"
	"github.com/freshkart/backend-cart/internal/events"
	"github.com/freshkart/backend-cart/internal/gift"
	"github.com/freshkart/backend-cart/internal/health"
	"github.com/freshkart/backend-cart/internal/obs"
	"github.com/freshkart/backend-cart/internal/promo"
	"github.com/freshkart/backend-cart/internal/ratelimit"
	"github.com/freshkart/backend-cart/internal/resilience"
	"github.com/freshkart/backend-cart/internal/session"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := obs.NewLogger("json", "info")
		boot.Fatal().Err(err).Msg("load config")
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("service", "cart-api").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	httpMetrics := obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.HTTPMetricsBuckets), prometheus.DefaultRegisterer)
	obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)
	resilience.MustRegisterMetrics(cfg.MetricsNamespace, prometheus.DefaultRegisterer)

	if cfg.TracingEnabled {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			ServiceName:   "freshkart-cart-api",
			Endpoint:      cfg.TracingEndpoint,
			SamplingRatio: cfg.TracingSampleRatio,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("init tracer")
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("tracer shutdown")
			}
		}()
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse database url")
	}
	poolCfg.ConnConfig.Tracer = obs.PGXTracer{}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("connect postgres")
	}
	defer pool.Close()

	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("parse redis url")
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()
	if cfg.TracingEnabled {
		if err := redisotel.InstrumentTracing(redisClient); err != nil {
			logger.Warn().Err(err).Msg("instrument redis tracing")
		}
	}

	catalogSvc := &catalog.Service{
		Pool:  pool,
		Cache: cache.New(redisClient, cfg.CatalogTTL),
	}
	feeRules := &delivery.Repo{
		Pool:  pool,
		Cache: cache.New(redisClient, cfg.FeeRuleTTL),
	}
	promoEngine := &promo.Engine{
		Validator: &promo.HTTPValidator{
			BaseURL: cfg.PromoServiceURL,
			Client: &http.Client{
				Timeout:   cfg.PromoRequestTimeout,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			},
			Breaker: resilience.NewBreaker("promo-service", 10, 0.5, 30*time.Second, logger),
		},
	}
	bus := &events.Bus{Notifiers: []events.Notifier{
		events.LogNotifier{Logger: logger},
		events.MetricsNotifier{},
	}}

	manager := &session.Manager{
		Catalog: catalogSvc,
		Rules:   feeRules,
		Delivery: delivery.Engine{
			DefaultFee:     cfg.DefaultDeliveryCharge,
			FreeThreshold:  cfg.FreeDeliveryThreshold,
			StandardFeeCap: cfg.StandardFeeCap,
		},
		Promo:           promoEngine,
		Gifts:           &gift.Repo{Pool: pool},
		Store:           &session.Store{Cart: cache.New(redisClient, cfg.CartTTL), Ephemeral: cache.New(redisClient, cfg.SessionTTL)},
		Bus:             bus,
		Logger:          logger,
		TaxRateBps:      cfg.TaxRateBps,
		RevalidateDelay: cfg.PromoRevalidateDelay,
	}

	promoLimit := ratelimit.Handler{
		Limiter: ratelimit.Limiter{Client: redisClient, Prefix: "ratelimit:promo:"},
		Config: ratelimit.Config{
			Key:    func(r *http.Request) string { return chi.URLParam(r, "sessionID") },
			Window: time.Minute,
			Max:    cfg.PromoApplyPerMinute,
		},
		OnError: func(err error) { logger.Warn().Err(err).Msg("promo rate limit check failed") },
	}

	sessions := &session.Handler{
		Manager:    manager,
		Logger:     logger,
		PromoLimit: promoLimit.Middleware,
	}
	checker := &health.Checker{
		PingDB:    pool.Ping,
		PingRedis: func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		Logger:    logger,
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(obs.RoutePatternMiddleware)
	if cfg.TracingEnabled {
		r.Use(obs.TracingMiddleware)
	}
	r.Use(obs.HTTPObs{Metrics: httpMetrics}.Middleware)
	r.Use(obs.RequestLogger{Logger: logger}.Middleware)

	r.Get("/health/live", checker.Live)
	r.Get("/health/ready", checker.Ready)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	r.Route("/api/v1", sessions.RegisterRoutes)

	// drop controllers for browsing sessions that went quiet; Redis keeps the
	// durable cart state until its TTL expires
	go func() {
		ticker := time.NewTicker(cfg.SessionTTL / 2)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := manager.Sweep(cfg.SessionTTL); n > 0 {
					logger.Debug().Int("sessions", n).Msg("swept idle sessions")
				}
			}
		}
	}()

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", srv.Addr).Str("env", cfg.AppEnv).Msg("cart api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
