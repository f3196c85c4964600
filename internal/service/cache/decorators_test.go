package cache

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"FinLiquidity/internal/domain/models"
	pkgcache "FinLiquidity/pkg/cache"
	"FinLiquidity/pkg/util"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newStore(clk *clock) *pkgcache.MemoryCache {
	return pkgcache.NewMemoryCache(pkgcache.WithMemoryCleanup(0), pkgcache.WithMemoryClock(clk.now))
}

type countingSource struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (s *countingSource) Fetch(_ context.Context, id string) (models.TimeSeries, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return models.TimeSeries{}, s.err
	}
	return models.NewTimeSeries(id, []models.Observation{
		{Date: util.MustDate("2024-01-01"), Value: 1},
		{Date: util.MustDate("2024-01-08"), Value: 2},
	}), nil
}

func TestSeriesSourceCachesUntilTTL(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	store := newStore(clk)
	next := &countingSource{}
	src := NewSeriesSource(next, store, time.Hour, nil, nil)

	first, err := src.Fetch(ctx, "WALCL")
	require.NoError(t, err)
	second, err := src.Fetch(ctx, "WALCL")
	require.NoError(t, err)
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, first, second)

	clk.advance(time.Hour)
	_, err = src.Fetch(ctx, "WALCL")
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls, "expired entry refetched")
}

func TestSeriesSourceDoesNotCacheErrors(t *testing.T) {
	ctx := context.Background()
	store := newStore(&clock{t: time.Unix(0, 0)})
	next := &countingSource{err: models.Unavailable("WALCL", errors.New("down"))}
	src := NewSeriesSource(next, store, time.Hour, nil, nil)

	_, err := src.Fetch(ctx, "WALCL")
	assert.ErrorIs(t, err, models.ErrSourceUnavailable)
	_, err = src.Fetch(ctx, "WALCL")
	assert.Error(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestInvalidatorClearsOwnNamespaces(t *testing.T) {
	ctx := context.Background()
	store := newStore(&clock{t: time.Unix(0, 0)})
	next := &countingSource{}
	src := NewSeriesSource(next, store, time.Hour, nil, nil)

	_, _ = src.Fetch(ctx, "A")
	_, _ = src.Fetch(ctx, "B")
	require.Equal(t, 2, store.Len())

	require.NoError(t, store.Set(ctx, "session:x", 1, time.Hour))
	require.NoError(t, NewInvalidator(store, nil).Clear(ctx))
	assert.Equal(t, 1, store.Len())

	_, _ = src.Fetch(ctx, "A")
	assert.Equal(t, 3, next.calls)
}

type fixedPrice struct{ calls int }

func (p *fixedPrice) Price(_ context.Context, coin, currency string) (models.Price, error) {
	p.calls++
	return models.Price{Coin: coin, Currency: currency, Value: 100, At: time.Unix(0, 0).UTC()}, nil
}

func TestPriceSourceShortTTL(t *testing.T) {
	ctx := context.Background()
	clk := &clock{t: time.Unix(0, 0)}
	next := &fixedPrice{}
	ps := NewPriceSource(next, newStore(clk), 60*time.Second, nil, nil)

	p, err := ps.Price(ctx, "bitcoin", "usd")
	require.NoError(t, err)
	assert.Equal(t, 100.0, p.Value)

	clk.advance(59 * time.Second)
	_, _ = ps.Price(ctx, "bitcoin", "usd")
	assert.Equal(t, 1, next.calls)

	clk.advance(time.Second)
	_, _ = ps.Price(ctx, "bitcoin", "usd")
	assert.Equal(t, 2, next.calls)
}

func TestPriceSourceNormalizesCoin(t *testing.T) {
	ctx := context.Background()
	next := &fixedPrice{}
	ps := NewPriceSource(next, newStore(&clock{t: time.Unix(0, 0)}), 60*time.Second, nil, nil)

	for _, coin := range []string{"bitcoin", "Bitcoin", "BITCOIN", " bitcoin "} {
		p, err := ps.Price(ctx, coin, "USD")
		require.NoError(t, err, coin)
		assert.Equal(t, "bitcoin", p.Coin)
		assert.Equal(t, "usd", p.Currency)
	}
	assert.Equal(t, 1, next.calls)
	assert.Equal(t, PriceKey("bitcoin", "usd"), PriceKey(" BitCoin", "USD"))
}

// gatedSource blocks every fetch until release is closed, honouring its ctx.
type gatedSource struct {
	mu      sync.Mutex
	calls   int
	started chan struct{}
	release chan struct{}
}

func (s *gatedSource) Fetch(ctx context.Context, id string) (models.TimeSeries, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	s.started <- struct{}{}
	select {
	case <-s.release:
	case <-ctx.Done():
		return models.TimeSeries{}, &models.SourceError{SeriesID: id, Kind: models.ErrSourceUnavailable, Err: ctx.Err()}
	}
	return models.NewTimeSeries(id, []models.Observation{{Date: util.MustDate("2024-01-01"), Value: 1}}), nil
}

func TestSharedFetchSurvivesFirstCallerCancel(t *testing.T) {
	next := &gatedSource{started: make(chan struct{}, 1), release: make(chan struct{})}
	src := NewSeriesSource(next, newStore(&clock{t: time.Unix(0, 0)}), time.Hour, nil, nil)

	ctxA, cancelA := context.WithCancel(context.Background())
	errA := make(chan error, 1)
	go func() {
		_, err := src.Fetch(ctxA, "WALCL")
		errA <- err
	}()
	<-next.started

	type result struct {
		ts  models.TimeSeries
		err error
	}
	resB := make(chan result, 1)
	go func() {
		ts, err := src.Fetch(context.Background(), "WALCL")
		resB <- result{ts, err}
	}()
	time.Sleep(50 * time.Millisecond)

	cancelA()
	select {
	case err := <-errA:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("cancelled caller kept waiting")
	}

	close(next.release)
	select {
	case r := <-resB:
		require.NoError(t, r.err)
		assert.Equal(t, 1, r.ts.Len())
	case <-time.After(2 * time.Second):
		t.Fatal("second caller never returned")
	}
	assert.Equal(t, 1, next.calls)
}

type stubEngine struct{ calls int }

func (e *stubEngine) Build(_ context.Context, start civil.Date) (*models.MergedFrame, error) {
	e.calls++
	return &models.MergedFrame{
		Start:  start,
		Labels: []string{"A"},
		Rows: []models.FrameRow{
			{Date: start, Values: []float64{1}, Z: []float64{0}, LiquidityZ: 0, LiquidityIndex: 100},
		},
	}, nil
}

func TestEngineCachesPerStart(t *testing.T) {
	ctx := context.Background()
	next := &stubEngine{}
	eng := NewEngine(next, models.DefaultCatalog(), newStore(&clock{t: time.Unix(0, 0)}), time.Hour, nil, nil)

	a := util.MustDate("2020-01-01")
	b := util.MustDate("2021-01-01")

	f1, err := eng.Build(ctx, a)
	require.NoError(t, err)
	f2, err := eng.Build(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, f1, f2)
	assert.Equal(t, 1, next.calls)

	_, err = eng.Build(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}

func TestFrameKeyDependsOnCatalog(t *testing.T) {
	start := util.MustDate("2015-01-01")
	other := models.MustCatalog(models.CatalogEntry{Label: "A", SeriesID: "WALCL"})
	assert.NotEqual(t, FrameKey(models.DefaultCatalog().Fingerprint(), start), FrameKey(other.Fingerprint(), start))
	assert.Equal(t, "series:WALCL", SeriesKey("WALCL"))
	assert.Equal(t, "price:bitcoin:usd", PriceKey("bitcoin", "usd"))
}
