package usecase

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"FinLiquidity/internal/domain/models"
	"FinLiquidity/internal/domain/repository"
	"FinLiquidity/internal/domain/service"
	"FinLiquidity/pkg/logger"
	"FinLiquidity/pkg/util"

	"cloud.google.com/go/civil"
)

// OverlayResult is an overlay plus the asset it was built for.
type OverlayResult struct {
	Asset       string         `json:"asset"`
	SeriesID    string         `json:"series_id"`
	Overlay     models.Overlay `json:"overlay"`
	LatestPrice *float64       `json:"latest_price,omitempty"`
}

// DashboardConfig holds the presentation defaults.
type DashboardConfig struct {
	DefaultStart civil.Date
	MinStart     civil.Date
	Assets       map[string]string
	VsCurrency   string
	// Coins restricts Price to these CoinGecko ids. Empty allows any coin.
	Coins []string
}

// Dashboard serves the views of the liquidity dashboard on top of the engine.
type Dashboard struct {
	engine      service.IndexEngine
	catalog     models.Catalog
	reference   repository.SeriesSource
	prices      repository.PriceSource
	invalidator repository.Invalidator
	publisher   repository.Publisher
	cfg         DashboardConfig
	log         *logger.Logger
	now         func() time.Time
}

func NewDashboard(
	engine service.IndexEngine,
	catalog models.Catalog,
	reference repository.SeriesSource,
	prices repository.PriceSource,
	invalidator repository.Invalidator,
	publisher repository.Publisher,
	cfg DashboardConfig,
	log *logger.Logger,
) *Dashboard {
	if log == nil {
		log = logger.Nop()
	}
	if cfg.VsCurrency == "" {
		cfg.VsCurrency = "usd"
	}
	assets := make(map[string]string, len(cfg.Assets))
	for k, v := range cfg.Assets {
		assets[strings.ToUpper(k)] = v
	}
	cfg.Assets = assets
	coins := make([]string, 0, len(cfg.Coins))
	for _, c := range cfg.Coins {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			coins = append(coins, c)
		}
	}
	cfg.Coins = coins
	return &Dashboard{
		engine:      engine,
		catalog:     catalog,
		reference:   reference,
		prices:      prices,
		invalidator: invalidator,
		publisher:   publisher,
		cfg:         cfg,
		log:         log,
		now:         time.Now,
	}
}

// ResolveStart parses a YYYY-MM-DD start date. Empty input selects the default start.
func (d *Dashboard) ResolveStart(s string) (civil.Date, error) {
	if strings.TrimSpace(s) == "" {
		return d.cfg.DefaultStart, nil
	}
	start, ok := util.ParseDate(s)
	if !ok {
		return civil.Date{}, fmt.Errorf("%w: %q is not a date", ErrInvalidInput, s)
	}
	if start.Before(d.cfg.MinStart) {
		return civil.Date{}, fmt.Errorf("%w: %s precedes %s", models.ErrStartOutOfRange, start, d.cfg.MinStart)
	}
	return start, nil
}

// Frame returns the full scored frame from start.
func (d *Dashboard) Frame(ctx context.Context, start civil.Date) (*models.MergedFrame, error) {
	return d.engine.Build(ctx, start)
}

// Summary reports the latest values and their change against the previous row.
func (d *Dashboard) Summary(ctx context.Context, start civil.Date) (models.Summary, error) {
	frame, err := d.engine.Build(ctx, start)
	if err != nil {
		return models.Summary{}, err
	}
	return Summarize(frame)
}

// Summarize derives the overview metrics from a frame with at least two rows.
func Summarize(frame *models.MergedFrame) (models.Summary, error) {
	latest, prev, err := frame.LatestPair()
	if err != nil {
		return models.Summary{}, err
	}
	comps := make([]models.ComponentSummary, len(frame.Labels))
	for i, label := range frame.Labels {
		comps[i] = models.ComponentSummary{
			Label:  label,
			Latest: latest.Values[i],
			Delta:  latest.Values[i] - prev.Values[i],
		}
	}
	return models.Summary{
		Start:           frame.Start,
		Date:            latest.Date,
		Rows:            frame.Len(),
		Components:      comps,
		LiquidityZ:      latest.LiquidityZ,
		LiquidityZDelta: latest.LiquidityZ - prev.LiquidityZ,
		LiquidityIndex:  latest.LiquidityIndex,
	}, nil
}

// Component returns one raw catalog column of the frame.
func (d *Dashboard) Component(ctx context.Context, start civil.Date, label string) (models.TimeSeries, error) {
	if _, ok := d.catalog.Lookup(label); !ok {
		return models.TimeSeries{}, fmt.Errorf("%w: %q", models.ErrUnknownComponent, label)
	}
	frame, err := d.engine.Build(ctx, start)
	if err != nil {
		return models.TimeSeries{}, err
	}
	ts, _ := frame.Component(label)
	return ts, nil
}

// Assets lists the configured overlay assets in name order.
func (d *Dashboard) Assets() []string {
	out := make([]string, 0, len(d.cfg.Assets))
	for k := range d.cfg.Assets {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Overlay rebases the liquidity index against a configured asset series.
// A failing reference fetch fails only the overlay.
func (d *Dashboard) Overlay(ctx context.Context, start civil.Date, asset string, anchor models.Anchor) (OverlayResult, error) {
	name := strings.ToUpper(strings.TrimSpace(asset))
	seriesID, ok := d.cfg.Assets[name]
	if !ok {
		return OverlayResult{}, fmt.Errorf("%w: %q", models.ErrUnknownAsset, asset)
	}
	if anchor == models.AnchorUnspecified {
		return OverlayResult{}, models.ErrAnchorUnspecified
	}

	frame, err := d.engine.Build(ctx, start)
	if err != nil {
		return OverlayResult{}, err
	}
	ref, err := d.reference.Fetch(ctx, seriesID)
	if err != nil {
		return OverlayResult{}, fmt.Errorf("overlay %s: %w", name, err)
	}

	ov, err := BuildOverlay(frame.IndexSeries(), ref, anchor)
	if err != nil {
		return OverlayResult{}, err
	}
	res := OverlayResult{Asset: name, SeriesID: seriesID, Overlay: ov}
	if n := ov.Len(); n > 0 {
		p := ov.Rows[n-1].Price
		res.LatestPrice = &p
	}
	return res, nil
}

// Price returns the live price of coin in the configured quote currency.
func (d *Dashboard) Price(ctx context.Context, coin string) (models.Price, error) {
	if d.prices == nil {
		return models.Price{}, models.ErrPricesDisabled
	}
	coin = strings.ToLower(strings.TrimSpace(coin))
	if len(d.cfg.Coins) > 0 && !slices.Contains(d.cfg.Coins, coin) {
		return models.Price{}, fmt.Errorf("%w: coin %q (allowed: %s)", models.ErrUnknownAsset, coin, strings.Join(d.cfg.Coins, ", "))
	}
	return d.prices.Price(ctx, coin, d.cfg.VsCurrency)
}

// Refresh drops every cached series, price and frame, then tells other instances to do the same.
func (d *Dashboard) Refresh(ctx context.Context, reason string) error {
	if err := d.invalidator.Clear(ctx); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	if d.publisher != nil {
		ev := models.RefreshEvent{Reason: reason, At: d.now().UTC()}
		if err := d.publisher.PublishRefresh(ctx, ev); err != nil {
			d.log.Warn("refresh broadcast failed", logger.Error(err))
		}
	}
	d.log.Info("force refresh", logger.String("reason", reason))
	return nil
}
