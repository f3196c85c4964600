package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeanAndSampleStd(t *testing.T) {
	xs := []float64{2, 4, 4, 4, 5, 5, 7, 9}
	m := Mean(xs)
	assert.Equal(t, 5.0, m)
	// sample variance = 32/7
	assert.InDelta(t, math.Sqrt(32.0/7.0), SampleStd(xs, m), 1e-12)
}

func TestSampleStdSingleValueIsNaN(t *testing.T) {
	assert.True(t, math.IsNaN(SampleStd([]float64{3}, 3)))
}

func TestSafeStd(t *testing.T) {
	assert.Equal(t, DefaultEpsilon, SafeStd(0, DefaultEpsilon))
	assert.Equal(t, DefaultEpsilon, SafeStd(math.NaN(), DefaultEpsilon))
	assert.Equal(t, DefaultEpsilon, SafeStd(1e-12, 0))
	assert.Equal(t, 2.5, SafeStd(2.5, DefaultEpsilon))
}

func TestZScoresZeroVarianceCollapsesToZero(t *testing.T) {
	zs, mean, std := ZScores([]float64{5, 5, 5, 5}, DefaultEpsilon)
	assert.Equal(t, 5.0, mean)
	assert.Equal(t, DefaultEpsilon, std)
	for _, z := range zs {
		assert.Equal(t, 0.0, z)
		assert.False(t, math.IsInf(z, 0))
	}
}

func TestZScoresStandardize(t *testing.T) {
	zs, _, _ := ZScores([]float64{1, 2, 3}, DefaultEpsilon)
	require.Len(t, zs, 3)
	assert.InDelta(t, -1.0, zs[0], 1e-12)
	assert.InDelta(t, 0.0, zs[1], 1e-12)
	assert.InDelta(t, 1.0, zs[2], 1e-12)
}

func TestPercentileRankAverageTies(t *testing.T) {
	got := PercentileRank([]float64{10, 30, 20, 20})
	// ranks: 10->1, 20->2.5, 20->2.5, 30->4 ; n=4
	assert.Equal(t, []float64{25, 100, 62.5, 62.5}, got)
}

func TestPercentileRankBoundsAndMonotonic(t *testing.T) {
	xs := []float64{3.2, -1, 0, 7, 7, 2.5, -4, 10, 0}
	ranks := PercentileRank(xs)
	for i := range xs {
		assert.Greater(t, ranks[i], 0.0)
		assert.LessOrEqual(t, ranks[i], 100.0)
		for j := range xs {
			if xs[i] < xs[j] {
				assert.Less(t, ranks[i], ranks[j])
			}
			if xs[i] == xs[j] {
				assert.Equal(t, ranks[i], ranks[j])
			}
		}
	}
}

func TestPercentileRankEmpty(t *testing.T) {
	assert.Empty(t, PercentileRank(nil))
}
