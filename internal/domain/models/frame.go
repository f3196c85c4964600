package models

import (
	"strconv"

	"cloud.google.com/go/civil"
)

const (
	ColumnDate           = "date"
	ColumnLiquidityZ     = "liquidity_z"
	ColumnLiquidityIndex = "liquidity_index"
	zSuffix              = "_z"
)

// FrameRow is one fully observed date of the merged frame.
// Values and Z are aligned with MergedFrame.Labels.
type FrameRow struct {
	Date           civil.Date `json:"date"`
	Values         []float64  `json:"values"`
	Z              []float64  `json:"z"`
	LiquidityZ     float64    `json:"liquidity_z"`
	LiquidityIndex float64    `json:"liquidity_index"`
}

// MergedFrame is the date-keyed table of catalog values and derived scores.
// Every row carries a value for every label.
type MergedFrame struct {
	Start  civil.Date `json:"start"`
	Labels []string   `json:"labels"`
	Rows   []FrameRow `json:"rows"`
}

// Len returns the number of rows.
func (f *MergedFrame) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Rows)
}

// Columns returns the export column order:
// date, raw labels, label z-scores, liquidity_z, liquidity_index.
func (f *MergedFrame) Columns() []string {
	cols := make([]string, 0, 2*len(f.Labels)+3)
	cols = append(cols, ColumnDate)
	cols = append(cols, f.Labels...)
	for _, l := range f.Labels {
		cols = append(cols, l+zSuffix)
	}
	return append(cols, ColumnLiquidityZ, ColumnLiquidityIndex)
}

// Records renders rows as strings in Columns order.
func (f *MergedFrame) Records() [][]string {
	out := make([][]string, 0, len(f.Rows))
	for _, r := range f.Rows {
		rec := make([]string, 0, 2*len(f.Labels)+3)
		rec = append(rec, r.Date.String())
		for _, v := range r.Values {
			rec = append(rec, formatFloat(v))
		}
		for _, z := range r.Z {
			rec = append(rec, formatFloat(z))
		}
		rec = append(rec, formatFloat(r.LiquidityZ), formatFloat(r.LiquidityIndex))
		out = append(out, rec)
	}
	return out
}

// LabelIndex returns the column position of label, or -1.
func (f *MergedFrame) LabelIndex(label string) int {
	for i, l := range f.Labels {
		if l == label {
			return i
		}
	}
	return -1
}

// IndexSeries projects liquidity_index as a time series.
func (f *MergedFrame) IndexSeries() TimeSeries {
	pts := make([]Observation, len(f.Rows))
	for i, r := range f.Rows {
		pts[i] = Observation{Date: r.Date, Value: r.LiquidityIndex}
	}
	return TimeSeries{ID: ColumnLiquidityIndex, Points: pts}
}

// ZSeries projects liquidity_z as a time series.
func (f *MergedFrame) ZSeries() TimeSeries {
	pts := make([]Observation, len(f.Rows))
	for i, r := range f.Rows {
		pts[i] = Observation{Date: r.Date, Value: r.LiquidityZ}
	}
	return TimeSeries{ID: ColumnLiquidityZ, Points: pts}
}

// Component projects one raw catalog column as a time series.
func (f *MergedFrame) Component(label string) (TimeSeries, bool) {
	idx := f.LabelIndex(label)
	if idx < 0 {
		return TimeSeries{}, false
	}
	pts := make([]Observation, len(f.Rows))
	for i, r := range f.Rows {
		pts[i] = Observation{Date: r.Date, Value: r.Values[idx]}
	}
	return TimeSeries{ID: label, Points: pts}, true
}

// LatestPair returns the last two rows. Deltas need at least two observations,
// so shorter frames report ErrInsufficientRange.
func (f *MergedFrame) LatestPair() (latest, previous FrameRow, err error) {
	if f.Len() < 2 {
		return FrameRow{}, FrameRow{}, ErrInsufficientRange
	}
	n := len(f.Rows)
	return f.Rows[n-1], f.Rows[n-2], nil
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
