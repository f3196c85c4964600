package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"FinLiquidity/internal/domain/models"
	"FinLiquidity/pkg/util"

	"cloud.google.com/go/civil"
)

type mapSource struct {
	mu     sync.Mutex
	series map[string]models.TimeSeries
	errs   map[string]error
	calls  map[string]int
}

func newMapSource() *mapSource {
	return &mapSource{series: map[string]models.TimeSeries{}, errs: map[string]error{}, calls: map[string]int{}}
}

func (s *mapSource) add(id string, start civil.Date, values ...float64) *mapSource {
	pts := make([]models.Observation, len(values))
	for i, v := range values {
		pts[i] = models.Observation{Date: start.AddDays(i), Value: v}
	}
	s.series[id] = models.NewTimeSeries(id, pts)
	return s
}

func (s *mapSource) Fetch(_ context.Context, id string) (models.TimeSeries, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls[id]++
	if err, ok := s.errs[id]; ok {
		return models.TimeSeries{}, err
	}
	ts, ok := s.series[id]
	if !ok {
		return models.TimeSeries{}, models.Malformed(id, fmt.Errorf("unknown series"))
	}
	return ts, nil
}

type recordingPublisher struct {
	mu        sync.Mutex
	snapshots []models.IndexSnapshot
	refreshes []models.RefreshEvent
	err       error
}

func (p *recordingPublisher) PublishSnapshot(_ context.Context, s models.IndexSnapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.snapshots = append(p.snapshots, s)
	return p.err
}

func (p *recordingPublisher) PublishRefresh(_ context.Context, e models.RefreshEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.refreshes = append(p.refreshes, e)
	return p.err
}

func (p *recordingPublisher) Close() error { return nil }

type countingInvalidator struct {
	clears int
	err    error
}

func (c *countingInvalidator) Clear(context.Context) error {
	c.clears++
	return c.err
}

type fixedPrices struct{ value float64 }

func (f fixedPrices) Price(_ context.Context, coin, currency string) (models.Price, error) {
	return models.Price{Coin: coin, Currency: currency, Value: f.value, At: time.Unix(0, 0).UTC()}, nil
}

type recordingMetrics struct {
	index  []float64
	errors []string
}

func (m *recordingMetrics) RecordFetch(string, string, float64, error) {}
func (m *recordingMetrics) RecordCache(string, bool)                   {}
func (m *recordingMetrics) RecordIndex(_ float64, idx float64, _ int)  { m.index = append(m.index, idx) }
func (m *recordingMetrics) RecordError(kind string)                    { m.errors = append(m.errors, kind) }

func day(s string) civil.Date { return util.MustDate(s) }
