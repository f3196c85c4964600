// Package exporter renders a merged liquidity frame as downloadable files.
// Both formats use the frame's fixed column order.
package exporter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"FinLiquidity/internal/domain/models"

	"github.com/xuri/excelize/v2"
)

const (
	CSVFileName    = "liquidity_data.csv"
	CSVContentType = "text/csv"

	XLSXFileName    = "liquidity_data.xlsx"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	sheetName = "liquidity"
)

// CSV writes the header and every row of frame.
func CSV(frame *models.MergedFrame) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(frame.Columns()); err != nil {
		return nil, fmt.Errorf("csv header: %w", err)
	}
	if err := w.WriteAll(frame.Records()); err != nil {
		return nil, fmt.Errorf("csv rows: %w", err)
	}
	return buf.Bytes(), nil
}

// XLSX writes frame to a single sheet with numeric cells and a frozen header row.
func XLSX(frame *models.MergedFrame) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	header := make([]interface{}, 0, len(frame.Labels)*2+3)
	for _, c := range frame.Columns() {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return nil, fmt.Errorf("xlsx header: %w", err)
	}

	for i, r := range frame.Rows {
		row := make([]interface{}, 0, len(header))
		row = append(row, r.Date.String())
		for _, v := range r.Values {
			row = append(row, v)
		}
		for _, z := range r.Z {
			row = append(row, z)
		}
		row = append(row, r.LiquidityZ, r.LiquidityIndex)

		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("xlsx row %d: %w", i, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("xlsx panes: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}
