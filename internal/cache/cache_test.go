package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestCacheRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	c := New(client, time.Minute)
	ctx := context.Background()

	type payload struct {
		Name  string `json:"name"`
		Paise int64  `json:"paise"`
	}

	ok, err := c.GetJSON(ctx, "k", &payload{})
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, c.SetJSON(ctx, "k", payload{Name: "mango", Paise: 19900}))

	var got payload
	ok, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, payload{Name: "mango", Paise: 19900}, got)

	mr.FastForward(2 * time.Minute)
	ok, err = c.GetJSON(ctx, "k", &got)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCacheNilClientNoops(t *testing.T) {
	var c *Cache
	ctx := context.Background()
	ok, err := c.GetJSON(ctx, "k", nil)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.SetJSON(ctx, "k", 1))
	require.NoError(t, c.Delete(ctx, "k"))
}
