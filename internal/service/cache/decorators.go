package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinLiquidity/internal/domain/models"
	"FinLiquidity/internal/domain/repository"
	"FinLiquidity/internal/domain/service"
	pkgcache "FinLiquidity/pkg/cache"
	"FinLiquidity/pkg/logger"

	"cloud.google.com/go/civil"
	"golang.org/x/sync/singleflight"
)

const (
	kindSeries = "series"
	kindPrice  = "price"
	kindFrame  = "frame"
)

// SeriesKey is the cache key of a raw series.
func SeriesKey(seriesID string) string { return pkgcache.Key(kindSeries, seriesID) }

// PriceKey is the cache key of a live price.
func PriceKey(coin, currency string) string {
	return pkgcache.Key(kindPrice, normalizeSymbol(coin), normalizeSymbol(currency))
}

// FrameKey is the cache key of a computed frame. The catalog fingerprint is hashed to keep keys short.
func FrameKey(catalogFingerprint string, start civil.Date) string {
	return pkgcache.Key(kindFrame, pkgcache.Fingerprint(catalogFingerprint), start.String())
}

// sharedComputeTimeout bounds an upstream call that outlives the caller which started it.
const sharedComputeTimeout = 2 * time.Minute

// readThrough is the shared lookup/compute/store path of the decorators.
// Concurrent misses on one key share a single upstream call. That call runs
// detached from any one caller's cancellation; each caller only stops waiting
// when its own ctx ends.
type readThrough struct {
	store   pkgcache.Service
	log     *logger.Logger
	metrics repository.Metrics
	group   singleflight.Group
}

func (r *readThrough) do(ctx context.Context, kind, key string, ttl time.Duration, dest interface{}, compute func(context.Context) (interface{}, error)) (interface{}, bool, error) {
	err := r.store.Get(ctx, key, dest)
	if err == nil {
		r.record(kind, true)
		r.log.Debug("cache hit", logger.String("key", key))
		return nil, true, nil
	}
	if !errors.Is(err, pkgcache.ErrCacheMiss) {
		r.log.Warn("cache read failed", logger.String("key", key), logger.Error(err))
	}
	r.record(kind, false)

	ch := r.group.DoChan(key, func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedComputeTimeout)
		defer cancel()
		v, err := compute(sctx)
		if err != nil {
			return nil, err
		}
		if serr := r.store.Set(sctx, key, v, ttl); serr != nil {
			r.log.Warn("cache write failed", logger.String("key", key), logger.Error(serr))
		}
		return v, nil
	})
	select {
	case res := <-ch:
		return res.Val, false, res.Err
	case <-ctx.Done():
		return nil, false, ctx.Err()
	}
}

func (r *readThrough) record(kind string, hit bool) {
	if r.metrics != nil {
		r.metrics.RecordCache(kind, hit)
	}
}

// SeriesSource caches raw series fetched from next.
type SeriesSource struct {
	next repository.SeriesSource
	ttl  time.Duration
	rt   *readThrough
}

var _ repository.SeriesSource = (*SeriesSource)(nil)

func NewSeriesSource(next repository.SeriesSource, store pkgcache.Service, ttl time.Duration, log *logger.Logger, m repository.Metrics) *SeriesSource {
	return &SeriesSource{next: next, ttl: ttl, rt: newReadThrough(store, log, m)}
}

func (s *SeriesSource) Fetch(ctx context.Context, seriesID string) (models.TimeSeries, error) {
	var cached models.TimeSeries
	v, hit, err := s.rt.do(ctx, kindSeries, SeriesKey(seriesID), s.ttl, &cached, func(ctx context.Context) (interface{}, error) {
		return s.next.Fetch(ctx, seriesID)
	})
	if err != nil {
		return models.TimeSeries{}, err
	}
	if hit {
		return cached, nil
	}
	return v.(models.TimeSeries), nil
}

// PriceSource caches live prices for a short TTL.
type PriceSource struct {
	next repository.PriceSource
	ttl  time.Duration
	rt   *readThrough
}

var _ repository.PriceSource = (*PriceSource)(nil)

func NewPriceSource(next repository.PriceSource, store pkgcache.Service, ttl time.Duration, log *logger.Logger, m repository.Metrics) *PriceSource {
	return &PriceSource{next: next, ttl: ttl, rt: newReadThrough(store, log, m)}
}

// Price normalizes coin and currency before the lookup so case and spacing
// variants share one entry and one upstream poll per TTL window.
func (p *PriceSource) Price(ctx context.Context, coin, currency string) (models.Price, error) {
	coin, currency = normalizeSymbol(coin), normalizeSymbol(currency)
	var cached models.Price
	v, hit, err := p.rt.do(ctx, kindPrice, PriceKey(coin, currency), p.ttl, &cached, func(ctx context.Context) (interface{}, error) {
		return p.next.Price(ctx, coin, currency)
	})
	if err != nil {
		return models.Price{}, err
	}
	if hit {
		return cached, nil
	}
	return v.(models.Price), nil
}

func normalizeSymbol(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Engine caches whole frames per catalog and start date.
type Engine struct {
	next        service.IndexEngine
	fingerprint string
	ttl         time.Duration
	rt          *readThrough
}

var _ service.IndexEngine = (*Engine)(nil)

func NewEngine(next service.IndexEngine, catalog models.Catalog, store pkgcache.Service, ttl time.Duration, log *logger.Logger, m repository.Metrics) *Engine {
	return &Engine{next: next, fingerprint: catalog.Fingerprint(), ttl: ttl, rt: newReadThrough(store, log, m)}
}

func (e *Engine) Build(ctx context.Context, start civil.Date) (*models.MergedFrame, error) {
	cached := new(models.MergedFrame)
	v, hit, err := e.rt.do(ctx, kindFrame, FrameKey(e.fingerprint, start), e.ttl, cached, func(ctx context.Context) (interface{}, error) {
		return e.next.Build(ctx, start)
	})
	if err != nil {
		return nil, err
	}
	if hit {
		return cached, nil
	}
	return v.(*models.MergedFrame), nil
}

// Invalidator clears every cached entry (Force Refresh).
type Invalidator struct {
	store pkgcache.Service
	log   *logger.Logger
}

var _ repository.Invalidator = (*Invalidator)(nil)

func NewInvalidator(store pkgcache.Service, log *logger.Logger) *Invalidator {
	if log == nil {
		log = logger.Nop()
	}
	return &Invalidator{store: store, log: log}
}

// Clear drops every series, price and frame entry. Other keys sharing the store survive.
func (i *Invalidator) Clear(ctx context.Context) error {
	for _, kind := range []string{kindSeries, kindPrice, kindFrame} {
		if err := i.store.DeleteByPattern(ctx, pkgcache.Pattern(kind)); err != nil {
			return fmt.Errorf("clear %s cache: %w", kind, err)
		}
	}
	i.log.Info("cache cleared")
	return nil
}

func newReadThrough(store pkgcache.Service, log *logger.Logger, m repository.Metrics) *readThrough {
	if log == nil {
		log = logger.Nop()
	}
	return &readThrough{store: store, log: log, metrics: m}
}
