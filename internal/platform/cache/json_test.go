package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) *JSONCache {
	t.Helper()
	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewJSONCache(client, "test:version", time.Minute)
}

func TestFetchJSONPopulatesOnce(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return map[string]int{"value": 42}, nil
	}

	key, err := c.BuildKey(ctx, "widget", "metrics")
	require.NoError(t, err)

	var first map[string]int
	require.NoError(t, c.FetchJSON(ctx, key, &first, loader))
	require.Equal(t, 42, first["value"])

	var second map[string]int
	require.NoError(t, c.FetchJSON(ctx, key, &second, loader))
	require.Equal(t, 42, second["value"])
	require.Equal(t, 1, calls)
}

func TestBumpInvalidatesKeys(t *testing.T) {
	c := newTestCache(t)
	ctx := context.Background()

	before, err := c.BuildKey(ctx, "widget")
	require.NoError(t, err)

	require.NoError(t, c.Bump(ctx))

	after, err := c.BuildKey(ctx, "widget")
	require.NoError(t, err)
	require.NotEqual(t, before, after)
}

func TestNilClientFallsThroughToLoader(t *testing.T) {
	var c *JSONCache
	ctx := context.Background()

	var out map[string]string
	err := c.FetchJSON(ctx, "any", &out, func(context.Context) (interface{}, error) {
		return map[string]string{"ok": "yes"}, nil
	})
	require.NoError(t, err)
	require.Equal(t, "yes", out["ok"])
}
