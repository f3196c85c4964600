package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"FinLiquidity/internal/domain/models"
	"FinLiquidity/internal/domain/repository"
	"FinLiquidity/internal/domain/service"
	"FinLiquidity/internal/services/features"
	"FinLiquidity/pkg/logger"

	"cloud.google.com/go/civil"
	"golang.org/x/sync/errgroup"
)

// LiquidityEngine merges the catalog series into a scored frame.
type LiquidityEngine struct {
	source    repository.SeriesSource
	catalog   models.Catalog
	eps       float64
	parallel  bool
	log       *logger.Logger
	metrics   repository.Metrics
	publisher repository.Publisher
	now       func() time.Time
}

var _ service.IndexEngine = (*LiquidityEngine)(nil)

// EngineOption configures LiquidityEngine.
type EngineOption func(*LiquidityEngine)

// WithParallelFetch fetches catalog series concurrently.
func WithParallelFetch(on bool) EngineOption {
	return func(e *LiquidityEngine) { e.parallel = on }
}

// WithEpsilon sets the floor substituted for degenerate standard deviations.
func WithEpsilon(eps float64) EngineOption {
	return func(e *LiquidityEngine) {
		if eps > 0 {
			e.eps = eps
		}
	}
}

func WithEngineLogger(l *logger.Logger) EngineOption {
	return func(e *LiquidityEngine) {
		if l != nil {
			e.log = l
		}
	}
}

func WithEngineMetrics(m repository.Metrics) EngineOption {
	return func(e *LiquidityEngine) { e.metrics = m }
}

// WithSnapshotPublisher publishes the latest row of every computed frame.
func WithSnapshotPublisher(p repository.Publisher) EngineOption {
	return func(e *LiquidityEngine) { e.publisher = p }
}

func NewLiquidityEngine(source repository.SeriesSource, catalog models.Catalog, opts ...EngineOption) *LiquidityEngine {
	e := &LiquidityEngine{
		source:  source,
		catalog: catalog,
		eps:     features.DefaultEpsilon,
		log:     logger.Nop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Catalog returns the catalog the engine scores.
func (e *LiquidityEngine) Catalog() models.Catalog { return e.catalog }

// Build fetches every catalog series, keeps dates on or after start where all series are observed,
// and scores each row. Any fetch failure aborts the build.
func (e *LiquidityEngine) Build(ctx context.Context, start civil.Date) (*models.MergedFrame, error) {
	series, err := e.fetchAll(ctx)
	if err != nil {
		if e.metrics != nil {
			e.metrics.RecordError("build")
		}
		return nil, err
	}

	dates, values := mergeComplete(series, start)
	frame := ScoreFrame(e.catalog, start, dates, values, e.eps)

	e.log.Info("liquidity frame built",
		logger.String("start", start.String()),
		logger.Int("rows", frame.Len()),
	)
	if frame.Len() > 0 {
		last := frame.Rows[frame.Len()-1]
		if e.metrics != nil {
			e.metrics.RecordIndex(last.LiquidityZ, last.LiquidityIndex, frame.Len())
		}
		e.publish(ctx, frame, last)
	}
	return frame, nil
}

func (e *LiquidityEngine) fetchAll(ctx context.Context) ([]models.TimeSeries, error) {
	entries := e.catalog.Entries()
	out := make([]models.TimeSeries, len(entries))

	fetch := func(ctx context.Context, i int) error {
		ts, err := e.source.Fetch(ctx, entries[i].SeriesID)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", entries[i].Label, err)
		}
		out[i] = ts
		return nil
	}

	if !e.parallel {
		for i := range entries {
			if err := fetch(ctx, i); err != nil {
				return nil, err
			}
		}
		return out, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := range entries {
		i := i
		g.Go(func() error { return fetch(gctx, i) })
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (e *LiquidityEngine) publish(ctx context.Context, frame *models.MergedFrame, last models.FrameRow) {
	if e.publisher == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	err := e.publisher.PublishSnapshot(pctx, models.IndexSnapshot{
		Start:          frame.Start,
		Date:           last.Date,
		Rows:           frame.Len(),
		LiquidityZ:     last.LiquidityZ,
		LiquidityIndex: last.LiquidityIndex,
		ComputedAt:     e.now().UTC(),
	})
	if err != nil {
		e.log.Warn("snapshot publish failed", logger.Error(err))
	}
}

// mergeComplete outer-joins the series on date, restricted to dates >= start, and keeps only
// dates observed in every series. Values are aligned with the input order.
func mergeComplete(series []models.TimeSeries, start civil.Date) ([]civil.Date, [][]float64) {
	k := len(series)
	type cell struct {
		vals []float64
		seen int
	}
	byDate := make(map[civil.Date]*cell)
	for col, s := range series {
		for _, p := range s.Since(start).Points {
			c, ok := byDate[p.Date]
			if !ok {
				c = &cell{vals: make([]float64, k)}
				byDate[p.Date] = c
			}
			c.vals[col] = p.Value
			c.seen++
		}
	}

	dates := make([]civil.Date, 0, len(byDate))
	for d, c := range byDate {
		if c.seen == k {
			dates = append(dates, d)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	values := make([][]float64, len(dates))
	for i, d := range dates {
		values[i] = byDate[d].vals
	}
	return dates, values
}

// ScoreFrame standardizes each column over the given rows, negates subtractive columns,
// sums them into liquidity_z and ranks that into liquidity_index.
func ScoreFrame(catalog models.Catalog, start civil.Date, dates []civil.Date, values [][]float64, eps float64) *models.MergedFrame {
	frame := &models.MergedFrame{
		Start:  start,
		Labels: catalog.Labels(),
		Rows:   make([]models.FrameRow, len(dates)),
	}
	if len(dates) == 0 {
		return frame
	}

	scorer := NewScorer(catalog, values, eps)
	composite := make([]float64, len(dates))
	for i, d := range dates {
		z, lz := scorer.Score(values[i])
		frame.Rows[i] = models.FrameRow{Date: d, Values: values[i], Z: z, LiquidityZ: lz}
		composite[i] = lz
	}
	for i, p := range features.PercentileRank(composite) {
		frame.Rows[i].LiquidityIndex = p
	}
	return frame
}

// ColumnStats are the standardization parameters of one catalog column.
type ColumnStats struct {
	Label       string  `json:"label"`
	Mean        float64 `json:"mean"`
	Std         float64 `json:"std"`
	Subtractive bool    `json:"subtractive"`
}

// Scorer turns raw catalog values into sign-adjusted z-scores.
type Scorer struct {
	Columns []ColumnStats
}

// NewScorer computes per-column mean and epsilon-guarded sample std over rows.
func NewScorer(catalog models.Catalog, rows [][]float64, eps float64) Scorer {
	entries := catalog.Entries()
	cols := make([]ColumnStats, len(entries))
	col := make([]float64, len(rows))
	for j, entry := range entries {
		for i, r := range rows {
			col[i] = r[j]
		}
		mean := features.Mean(col)
		cols[j] = ColumnStats{
			Label:       entry.Label,
			Mean:        mean,
			Std:         features.SafeStd(features.SampleStd(col, mean), eps),
			Subtractive: entry.Subtractive,
		}
	}
	return Scorer{Columns: cols}
}

// Score returns the sign-adjusted z of each value and their sum.
func (s Scorer) Score(values []float64) (z []float64, liquidityZ float64) {
	z = make([]float64, len(s.Columns))
	for j, c := range s.Columns {
		v := features.ZScore(values[j], c.Mean, c.Std)
		if c.Subtractive {
			v = -v
		}
		z[j] = v
		liquidityZ += v
	}
	return z, liquidityZ
}
