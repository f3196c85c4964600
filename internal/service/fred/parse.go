package fred

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"FinLiquidity/internal/domain/models"
	"FinLiquidity/pkg/util"
)

// ParseResult is a decoded series plus the count of rows discarded during coercion.
type ParseResult struct {
	Series  models.TimeSeries
	Dropped int
}

// ParseCSV decodes a fredgraph CSV body. Rows whose date or value cannot be coerced are dropped;
// a body with no usable row is an error.
func ParseCSV(body []byte, seriesID string, rules ColumnRules) (ParseResult, error) {
	r := csv.NewReader(bytes.NewReader(body))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return ParseResult{}, fmt.Errorf("empty body")
		}
		return ParseResult{}, fmt.Errorf("read header: %w", err)
	}

	dateIdx, valueIdx, err := rules.Resolve(header, seriesID)
	if err != nil {
		return ParseResult{}, err
	}

	var (
		points  []models.Observation
		dropped int
	)
	for {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return ParseResult{}, fmt.Errorf("read row: %w", err)
		}
		if dateIdx >= len(rec) || valueIdx >= len(rec) {
			dropped++
			continue
		}
		date, ok := util.ParseDate(rec[dateIdx])
		if !ok {
			dropped++
			continue
		}
		v, ok := util.ParseFloat(rec[valueIdx])
		if !ok {
			dropped++
			continue
		}
		points = append(points, models.Observation{Date: date, Value: v})
	}

	if len(points) == 0 {
		return ParseResult{Dropped: dropped}, fmt.Errorf("no valid rows (%d dropped)", dropped)
	}
	return ParseResult{Series: models.NewTimeSeries(seriesID, points), Dropped: dropped}, nil
}
