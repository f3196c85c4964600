package usecase

import (
	"fmt"

	"FinLiquidity/internal/domain/models"
)

// BuildOverlay inner-joins index and reference on date and rebases both to the anchor row.
// Disjoint inputs give an empty overlay and no error.
func BuildOverlay(index, reference models.TimeSeries, anchor models.Anchor) (models.Overlay, error) {
	if anchor != models.AnchorFirst && anchor != models.AnchorLast {
		return models.Overlay{}, models.ErrAnchorUnspecified
	}

	out := models.Overlay{Reference: reference.ID, Anchor: anchor}

	// both inputs are sorted by date with unique dates, so a merge walk is enough
	i, j := 0, 0
	for i < len(index.Points) && j < len(reference.Points) {
		a, b := index.Points[i], reference.Points[j]
		switch {
		case a.Date.Before(b.Date):
			i++
		case b.Date.Before(a.Date):
			j++
		default:
			out.Rows = append(out.Rows, models.OverlayRow{
				Date:           a.Date,
				LiquidityIndex: a.Value,
				Price:          b.Value,
			})
			i++
			j++
		}
	}
	if out.IsEmpty() {
		return out, nil
	}

	ref, _ := out.AnchorRow()
	if ref.LiquidityIndex == 0 {
		return models.Overlay{}, fmt.Errorf("%w: liquidity index on %s", models.ErrZeroAnchor, ref.Date)
	}
	if ref.Price == 0 {
		return models.Overlay{}, fmt.Errorf("%w: %s on %s", models.ErrZeroAnchor, reference.ID, ref.Date)
	}
	for k := range out.Rows {
		out.Rows[k].LiquidityRebased = out.Rows[k].LiquidityIndex / ref.LiquidityIndex
		out.Rows[k].PriceRebased = out.Rows[k].Price / ref.Price
	}
	return out, nil
}
