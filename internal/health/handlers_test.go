package health

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func TestLive(t *testing.T) {
	c := &Checker{Logger: zerolog.Nop()}
	rec := httptest.NewRecorder()
	c.Live(rec, httptest.NewRequest("GET", "/health/live", nil))
	require.Equal(t, 200, rec.Code)
}

func TestReady(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("dial tcp: refused") }

	c := &Checker{PingDB: ok, PingRedis: ok, Logger: zerolog.Nop()}
	rec := httptest.NewRecorder()
	c.Ready(rec, httptest.NewRequest("GET", "/health/ready", nil))
	require.Equal(t, 200, rec.Code)
	require.Contains(t, rec.Body.String(), `"postgres":"up"`)

	c = &Checker{PingDB: ok, PingRedis: down, Logger: zerolog.Nop()}
	rec = httptest.NewRecorder()
	c.Ready(rec, httptest.NewRequest("GET", "/health/ready", nil))
	require.Equal(t, 503, rec.Code)
	require.Contains(t, rec.Body.String(), `"redis":"down"`)
}
