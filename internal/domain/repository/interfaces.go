package repository

import (
	"context"

	"FinLiquidity/internal/domain/models"
)

// SeriesSource retrieves one named time series.
// Failures are *models.SourceError classified as ErrSourceUnavailable or ErrMalformedData.
type SeriesSource interface {
	Fetch(ctx context.Context, seriesID string) (models.TimeSeries, error)
}

// PriceSource retrieves the current price of a coin in a quote currency.
type PriceSource interface {
	Price(ctx context.Context, coin, currency string) (models.Price, error)
}

// Publisher emits index snapshots and refresh broadcasts.
type Publisher interface {
	PublishSnapshot(ctx context.Context, s models.IndexSnapshot) error
	PublishRefresh(ctx context.Context, e models.RefreshEvent) error
	Close() error
}

// Invalidator drops every cached entry.
type Invalidator interface {
	Clear(ctx context.Context) error
}

type Metrics interface {
	RecordFetch(source, seriesID string, seconds float64, err error)
	RecordCache(kind string, hit bool)
	RecordIndex(liquidityZ, liquidityIndex float64, rows int)
	RecordError(kind string)
}
