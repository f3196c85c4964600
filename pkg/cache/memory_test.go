package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestCache(clk *fakeClock, opts ...MemoryOption) *MemoryCache {
	opts = append([]MemoryOption{WithMemoryCleanup(0), WithMemoryClock(clk.Now)}, opts...)
	return NewMemoryCache(opts...)
}

type payload struct {
	Name   string    `json:"name"`
	Values []float64 `json:"values"`
}

func TestMemoryCacheRoundTripAndExpiry(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	mc := newTestCache(clk)
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "series:WALCL", payload{Name: "WALCL", Values: []float64{1, 2}}, time.Minute))

	got, err := GetTyped[payload](ctx, mc, "series:WALCL")
	require.NoError(t, err)
	assert.Equal(t, "WALCL", got.Name)
	assert.Equal(t, []float64{1, 2}, got.Values)

	clk.Advance(59 * time.Second)
	ok, err := mc.Exists(ctx, "series:WALCL")
	require.NoError(t, err)
	assert.True(t, ok)

	clk.Advance(time.Second)
	_, err = GetTyped[payload](ctx, mc, "series:WALCL")
	assert.True(t, errors.Is(err, ErrCacheMiss))
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCacheDefaultTTL(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Unix(0, 0)}
	mc := newTestCache(clk, WithMemoryDefaultTTL(10*time.Second))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "k", 1, 0))
	clk.Advance(10 * time.Second)
	var v int
	assert.ErrorIs(t, mc.Get(ctx, "k", &v), ErrCacheMiss)
}

func TestMemoryCacheDeleteByPattern(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Unix(0, 0)}
	mc := newTestCache(clk)
	defer mc.Close()

	for _, k := range []string{"series:A", "series:B", "frame:x:2015-01-01"} {
		require.NoError(t, mc.Set(ctx, k, k, time.Hour))
	}

	require.NoError(t, mc.DeleteByPattern(ctx, Pattern("series")))
	ok, _ := mc.Exists(ctx, "series:A", "series:B")
	assert.False(t, ok)
	ok, _ = mc.Exists(ctx, "frame:x:2015-01-01")
	assert.True(t, ok)

	require.NoError(t, mc.DeleteByPattern(ctx, "*"))
	assert.Equal(t, 0, mc.Len())
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Unix(0, 0)}
	mc := newTestCache(clk, WithMemoryMaxSize(2))
	defer mc.Close()

	require.NoError(t, mc.Set(ctx, "a", 1, time.Hour))
	clk.Advance(time.Second)
	require.NoError(t, mc.Set(ctx, "b", 2, time.Hour))
	clk.Advance(time.Second)
	var v int
	require.NoError(t, mc.Get(ctx, "a", &v))
	clk.Advance(time.Second)
	require.NoError(t, mc.Set(ctx, "c", 3, time.Hour))

	ok, _ := mc.Exists(ctx, "b")
	assert.False(t, ok, "b was least recently used")
	ok, _ = mc.Exists(ctx, "a", "c")
	assert.True(t, ok)
}

func TestLayeredCacheFallsBackToL2(t *testing.T) {
	ctx := context.Background()
	clk := &fakeClock{t: time.Unix(0, 0)}
	l2 := newTestCache(clk)
	lc := NewLayeredCache(l2, WithLayeredMemoryTTL(time.Second))
	defer lc.Close()

	require.NoError(t, l2.Set(ctx, "only-l2", "v", time.Hour))
	var s string
	require.NoError(t, lc.Get(ctx, "only-l2", &s))
	assert.Equal(t, "v", s)

	require.NoError(t, lc.DeleteByPattern(ctx, "*"))
	assert.ErrorIs(t, lc.Get(ctx, "only-l2", &s), ErrCacheMiss)
}
