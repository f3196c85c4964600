package usecase

import (
	"testing"

	"FinLiquidity/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func series(id string, start string, values ...float64) models.TimeSeries {
	pts := make([]models.Observation, len(values))
	for i, v := range values {
		pts[i] = models.Observation{Date: day(start).AddDays(i), Value: v}
	}
	return models.NewTimeSeries(id, pts)
}

func TestOverlayLastAnchorOverTenRows(t *testing.T) {
	idx := series("liquidity_index", "2024-01-01", 10, 20, 30, 40, 50, 60, 70, 80, 90, 100)
	px := series("SP500", "2024-01-01", 4000, 4100, 4200, 4300, 4400, 4500, 4600, 4700, 4800, 5000)

	ov, err := BuildOverlay(idx, px, models.AnchorLast)
	require.NoError(t, err)
	require.Equal(t, 10, ov.Len())
	assert.Equal(t, "SP500", ov.Reference)

	last := ov.Rows[9]
	assert.Equal(t, 1.0, last.LiquidityRebased)
	assert.Equal(t, 1.0, last.PriceRebased)
	assert.InDelta(t, 0.1, ov.Rows[0].LiquidityRebased, 1e-12)
	assert.InDelta(t, 0.8, ov.Rows[0].PriceRebased, 1e-12)
}

func TestOverlayFirstAnchor(t *testing.T) {
	idx := series("liquidity_index", "2024-01-01", 50, 75, 100)
	px := series("CBBTCUSD", "2024-01-02", 20000, 40000, 80000)

	ov, err := BuildOverlay(idx, px, models.AnchorFirst)
	require.NoError(t, err)
	require.Equal(t, 2, ov.Len(), "inner join keeps shared dates only")
	assert.Equal(t, day("2024-01-02"), ov.Rows[0].Date)
	assert.Equal(t, 1.0, ov.Rows[0].LiquidityRebased)
	assert.Equal(t, 1.0, ov.Rows[0].PriceRebased)
	assert.InDelta(t, 100.0/75.0, ov.Rows[1].LiquidityRebased, 1e-12)
	assert.Equal(t, 2.0, ov.Rows[1].PriceRebased)
}

func TestOverlayDisjointIsEmpty(t *testing.T) {
	idx := series("liquidity_index", "2015-01-01", 10, 20)
	px := series("CBETHUSD", "2016-05-18", 12, 13)

	ov, err := BuildOverlay(idx, px, models.AnchorFirst)
	require.NoError(t, err)
	assert.True(t, ov.IsEmpty())
	_, ok := ov.AnchorRow()
	assert.False(t, ok)
}

func TestOverlayRequiresAnchor(t *testing.T) {
	idx := series("liquidity_index", "2024-01-01", 1)
	_, err := BuildOverlay(idx, idx, models.AnchorUnspecified)
	assert.ErrorIs(t, err, models.ErrAnchorUnspecified)
}

func TestOverlayZeroAnchor(t *testing.T) {
	idx := series("liquidity_index", "2024-01-01", 10, 20)
	px := series("SP500", "2024-01-01", 0, 4000)

	_, err := BuildOverlay(idx, px, models.AnchorFirst)
	assert.ErrorIs(t, err, models.ErrZeroAnchor)

	ov, err := BuildOverlay(idx, px, models.AnchorLast)
	require.NoError(t, err)
	assert.Equal(t, 0.0, ov.Rows[0].PriceRebased)
}
