package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"FinLiquidity/internal/domain/models"
	"FinLiquidity/internal/domain/repository"
	"FinLiquidity/internal/service/upstream"
	"FinLiquidity/pkg/logger"

	"golang.org/x/time/rate"
)

const simplePricePath = "/simple/price"

// Client reads spot prices from the CoinGecko simple price endpoint.
type Client struct {
	base    *upstream.HTTPServiceBase
	limiter *rate.Limiter
	log     *logger.Logger
	metrics repository.Metrics
	now     func() time.Time
}

var _ repository.PriceSource = (*Client)(nil)

// New builds a client that waits on a token bucket of rps/burst before every request.
// A non-positive rps disables throttling.
func New(baseURL string, timeout time.Duration, rps float64, burst int, log *logger.Logger, m repository.Metrics) *Client {
	lim := rate.NewLimiter(rate.Inf, 1)
	if rps > 0 {
		if burst < 1 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(rps), burst)
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		base:    upstream.NewHTTPServiceBase(baseURL, timeout),
		limiter: lim,
		log:     log.With(logger.String("source", "coingecko")),
		metrics: m,
		now:     time.Now,
	}
}

// Price returns the latest price of coin quoted in currency.
func (c *Client) Price(ctx context.Context, coin, currency string) (models.Price, error) {
	coin = strings.ToLower(strings.TrimSpace(coin))
	currency = strings.ToLower(strings.TrimSpace(currency))
	id := coin + "/" + currency

	if err := c.limiter.Wait(ctx); err != nil {
		return models.Price{}, models.Unavailable(id, fmt.Errorf("rate limit: %w", err))
	}

	start := time.Now()
	p, err := c.price(ctx, coin, currency, id)
	if c.metrics != nil {
		c.metrics.RecordFetch("coingecko", coin, time.Since(start).Seconds(), err)
	}
	return p, err
}

func (c *Client) price(ctx context.Context, coin, currency, id string) (models.Price, error) {
	body, err := c.base.Get(ctx, simplePricePath, url.Values{
		"ids":           {coin},
		"vs_currencies": {currency},
	})
	if err != nil {
		c.log.Error("price fetch failed", logger.String("coin", coin), logger.Error(err))
		return models.Price{}, models.Unavailable(id, err)
	}

	var payload map[string]map[string]float64
	if err := json.Unmarshal(body, &payload); err != nil {
		return models.Price{}, models.Malformed(id, fmt.Errorf("decode: %w", err))
	}
	v, ok := payload[coin][currency]
	if !ok {
		return models.Price{}, models.Malformed(id, fmt.Errorf("no %s price for %s", currency, coin))
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return models.Price{}, models.Malformed(id, fmt.Errorf("invalid price %v", v))
	}

	return models.Price{Coin: coin, Currency: currency, Value: v, At: c.now().UTC()}, nil
}
