package exporter

import (
	"bytes"
	"encoding/csv"
	"testing"

	"FinLiquidity/internal/domain/models"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func frame() *models.MergedFrame {
	return &models.MergedFrame{
		Labels: []string{"TGA (WTREGEN)", "WALCL"},
		Rows: []models.FrameRow{
			{Date: civil.Date{Year: 2024, Month: 1, Day: 3}, Values: []float64{700, 7000}, Z: []float64{1, -1}, LiquidityZ: 0, LiquidityIndex: 50},
			{Date: civil.Date{Year: 2024, Month: 1, Day: 10}, Values: []float64{650, 7100}, Z: []float64{-1, 1}, LiquidityZ: 0, LiquidityIndex: 100},
		},
	}
}

func TestCSV(t *testing.T) {
	b, err := CSV(frame())
	require.NoError(t, err)

	recs, err := csv.NewReader(bytes.NewReader(b)).ReadAll()
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"date", "TGA (WTREGEN)", "WALCL", "TGA (WTREGEN)_z", "WALCL_z", "liquidity_z", "liquidity_index"}, recs[0])
	assert.Equal(t, []string{"2024-01-10", "650", "7100", "-1", "1", "0", "100"}, recs[2])
}

func TestCSVEmptyFrameHasHeader(t *testing.T) {
	b, err := CSV(&models.MergedFrame{Labels: []string{"A"}})
	require.NoError(t, err)
	assert.Equal(t, "date,A,A_z,liquidity_z,liquidity_index\n", string(b))
}

func TestXLSX(t *testing.T) {
	b, err := XLSX(frame())
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(b))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, frame().Columns(), rows[0])
	assert.Equal(t, "2024-01-03", rows[1][0])
	assert.Equal(t, "7000", rows[1][2])
	assert.Equal(t, "100", rows[2][6])
}
