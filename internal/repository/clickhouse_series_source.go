package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"time"

	"FinLiquidity/internal/domain/models"
	domrepo "FinLiquidity/internal/domain/repository"
	pkgch "FinLiquidity/pkg/clickhouse"
	applogger "FinLiquidity/pkg/logger"

	"cloud.google.com/go/civil"
)

const chSource = "clickhouse"

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// CHSeriesSource implements SeriesSource over a ClickHouse observations table
// with columns (series_id String, date Date, value Nullable(Float64)).
type CHSeriesSource struct {
	db      *sql.DB
	table   string
	l       *applogger.Logger
	metrics domrepo.Metrics
}

var _ domrepo.SeriesSource = (*CHSeriesSource)(nil)

func NewCHSeriesSource(ch *pkgch.Client, table string, l *applogger.Logger, m domrepo.Metrics) (*CHSeriesSource, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("clickhouse: invalid table name %q", table)
	}
	if l == nil {
		l = applogger.Nop()
	}
	return &CHSeriesSource{db: ch.DB(), table: table, l: l, metrics: m}, nil
}

func (s *CHSeriesSource) Fetch(ctx context.Context, seriesID string) (models.TimeSeries, error) {
	start := time.Now()
	ts, err := s.fetch(ctx, seriesID)
	if s.metrics != nil {
		s.metrics.RecordFetch(chSource, seriesID, time.Since(start).Seconds(), err)
	}
	if err != nil {
		s.l.Error("clickhouse fetch_series error",
			applogger.String("table", s.table),
			applogger.String("series", seriesID),
			applogger.Error(err),
		)
		return models.TimeSeries{}, err
	}
	s.l.Debug("clickhouse fetch_series ok",
		applogger.String("table", s.table),
		applogger.String("series", seriesID),
		applogger.Int("rows", ts.Len()),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return ts, nil
}

func (s *CHSeriesSource) fetch(ctx context.Context, seriesID string) (models.TimeSeries, error) {
	q := fmt.Sprintf(`
        SELECT date, value
        FROM %s
        WHERE series_id = ?
        ORDER BY date ASC
    `, s.table)
	rows, err := s.db.QueryContext(ctx, q, seriesID)
	if err != nil {
		return models.TimeSeries{}, models.Unavailable(seriesID, fmt.Errorf("query: %w", err))
	}
	defer rows.Close()

	pts := make([]models.Observation, 0, 1024)
	for rows.Next() {
		var (
			at  time.Time
			val sql.NullFloat64
		)
		if err := rows.Scan(&at, &val); err != nil {
			return models.TimeSeries{}, models.Malformed(seriesID, fmt.Errorf("scan: %w", err))
		}
		if !val.Valid {
			continue
		}
		pts = append(pts, models.Observation{Date: civil.DateOf(at), Value: val.Float64})
	}
	if err := rows.Err(); err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return models.TimeSeries{}, models.Unavailable(seriesID, err)
		}
		return models.TimeSeries{}, models.Malformed(seriesID, fmt.Errorf("rows: %w", err))
	}
	if len(pts) == 0 {
		return models.TimeSeries{}, models.Malformed(seriesID, errors.New("no observations"))
	}
	return models.NewTimeSeries(seriesID, pts), nil
}
