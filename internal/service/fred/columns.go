package fred

import (
	"fmt"
	"strings"
)

// ColumnRules decide which CSV headers hold the date and the value of a series.
type ColumnRules struct {
	// DateColumns are tried in order; the first header present wins.
	DateColumns []string
	// ValueFallbacks are tried, in order, when no header equals the series id.
	ValueFallbacks []string
	// SeriesColumns pins the value column of specific series ids.
	SeriesColumns map[string]string
}

// DefaultColumnRules matches both the legacy (DATE) and current (observation_date) fredgraph layouts.
func DefaultColumnRules() ColumnRules {
	return ColumnRules{
		DateColumns:    []string{"DATE", "observation_date"},
		ValueFallbacks: []string{"VALUE"},
	}
}

// Resolve returns the header positions of the date and value columns for seriesID.
func (r ColumnRules) Resolve(header []string, seriesID string) (dateIdx, valueIdx int, err error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		if _, dup := pos[h]; !dup {
			pos[h] = i
		}
	}

	dateIdx = -1
	for _, c := range r.DateColumns {
		if i, ok := pos[c]; ok {
			dateIdx = i
			break
		}
	}
	if dateIdx < 0 {
		return -1, -1, fmt.Errorf("no date column among %v in header %v", r.DateColumns, header)
	}

	if col, ok := r.SeriesColumns[seriesID]; ok {
		i, found := pos[col]
		if !found {
			return -1, -1, fmt.Errorf("configured value column %q missing from header %v", col, header)
		}
		return dateIdx, i, nil
	}
	if i, ok := pos[seriesID]; ok {
		return dateIdx, i, nil
	}
	for _, c := range r.ValueFallbacks {
		if i, ok := pos[c]; ok {
			return dateIdx, i, nil
		}
	}
	return -1, -1, fmt.Errorf("no value column for %s in header %v", seriesID, header)
}
