package fred

import (
	"context"
	"net/url"
	"time"

	"FinLiquidity/internal/domain/models"
	"FinLiquidity/internal/domain/repository"
	"FinLiquidity/internal/service/upstream"
	"FinLiquidity/pkg/logger"
)

const graphPath = "/graph/fredgraph.csv"

// Client fetches FRED series as CSV through the public graph endpoint.
type Client struct {
	base    *upstream.HTTPServiceBase
	rules   ColumnRules
	log     *logger.Logger
	metrics repository.Metrics
}

var _ repository.SeriesSource = (*Client)(nil)

// New builds a FRED client. Zero-value rules fall back to DefaultColumnRules.
func New(baseURL string, timeout time.Duration, rules ColumnRules, log *logger.Logger, m repository.Metrics) *Client {
	def := DefaultColumnRules()
	if len(rules.DateColumns) == 0 {
		rules.DateColumns = def.DateColumns
	}
	if rules.ValueFallbacks == nil {
		rules.ValueFallbacks = def.ValueFallbacks
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Client{
		base:    upstream.NewHTTPServiceBase(baseURL, timeout),
		rules:   rules,
		log:     log.With(logger.String("source", "fred")),
		metrics: m,
	}
}

// Fetch downloads and parses one series. No retries are attempted.
func (c *Client) Fetch(ctx context.Context, seriesID string) (models.TimeSeries, error) {
	start := time.Now()
	ts, err := c.fetch(ctx, seriesID)
	if c.metrics != nil {
		c.metrics.RecordFetch("fred", seriesID, time.Since(start).Seconds(), err)
	}
	return ts, err
}

func (c *Client) fetch(ctx context.Context, seriesID string) (models.TimeSeries, error) {
	body, err := c.base.Get(ctx, graphPath, url.Values{"id": {seriesID}})
	if err != nil {
		c.log.Error("fred fetch failed", logger.String("series", seriesID), logger.Error(err))
		return models.TimeSeries{}, models.Unavailable(seriesID, err)
	}

	res, err := ParseCSV(body, seriesID, c.rules)
	if err != nil {
		c.log.Error("fred parse failed", logger.String("series", seriesID), logger.Error(err))
		return models.TimeSeries{}, models.Malformed(seriesID, err)
	}

	c.log.Debug("fred series loaded",
		logger.String("series", seriesID),
		logger.Int("rows", res.Series.Len()),
		logger.Int("dropped", res.Dropped),
	)
	return res.Series, nil
}
