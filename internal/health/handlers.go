// Package health exposes liveness and readiness probes.
package health

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/freshkart/backend-cart/internal/common"
)

// Checker verifies the process can serve traffic.
type Checker struct {
	PingDB    func(ctx context.Context) error
	PingRedis func(ctx context.Context) error
	Logger    zerolog.Logger
}

// Live reports that the process is up.
func (c *Checker) Live(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready reports whether the backing stores are reachable.
func (c *Checker) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if c.PingDB != nil {
		if err := c.PingDB(ctx); err != nil {
			c.Logger.Warn().Err(err).Msg("postgres readiness check failed")
			checks["postgres"] = "down"
			healthy = false
		} else {
			checks["postgres"] = "up"
		}
	}
	if c.PingRedis != nil {
		if err := c.PingRedis(ctx); err != nil {
			c.Logger.Warn().Err(err).Msg("redis readiness check failed")
			checks["redis"] = "down"
			healthy = false
		} else {
			checks["redis"] = "up"
		}
	}

	status := http.StatusOK
	label := "ok"
	if !healthy {
		status = http.StatusServiceUnavailable
		label = "degraded"
	}
	common.JSON(w, status, map[string]any{"status": label, "checks": checks})
}
