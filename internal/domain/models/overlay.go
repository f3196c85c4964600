package models

import (
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
)

// Anchor selects the overlay row used as the rebase reference.
type Anchor int

const (
	AnchorUnspecified Anchor = iota
	AnchorFirst
	AnchorLast
)

// ParseAnchor accepts "first" or "last" (case-insensitive).
func ParseAnchor(s string) (Anchor, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "first":
		return AnchorFirst, nil
	case "last":
		return AnchorLast, nil
	default:
		return AnchorUnspecified, fmt.Errorf("%w: %q", ErrAnchorUnspecified, s)
	}
}

func (a Anchor) String() string {
	switch a {
	case AnchorFirst:
		return "first"
	case AnchorLast:
		return "last"
	default:
		return "unspecified"
	}
}

// MarshalText renders the anchor as "first"/"last".
func (a Anchor) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText is the inverse of MarshalText.
func (a *Anchor) UnmarshalText(b []byte) error {
	v, err := ParseAnchor(string(b))
	if err != nil {
		return err
	}
	*a = v
	return nil
}

// OverlayRow pairs the liquidity index with a reference price on a shared date.
type OverlayRow struct {
	Date             civil.Date `json:"date"`
	LiquidityIndex   float64    `json:"liquidity_index"`
	Price            float64    `json:"price"`
	LiquidityRebased float64    `json:"liquidity_rebased"`
	PriceRebased     float64    `json:"price_rebased"`
}

// Overlay is the inner join of the liquidity index and a reference series.
type Overlay struct {
	Reference string       `json:"reference"`
	Anchor    Anchor       `json:"anchor"`
	Rows      []OverlayRow `json:"rows"`
}

// IsEmpty reports whether the two series had no dates in common.
func (o Overlay) IsEmpty() bool { return len(o.Rows) == 0 }

// Len returns the number of joined rows.
func (o Overlay) Len() int { return len(o.Rows) }

// AnchorRow returns the row used as rebase reference.
func (o Overlay) AnchorRow() (OverlayRow, bool) {
	if o.IsEmpty() {
		return OverlayRow{}, false
	}
	if o.Anchor == AnchorLast {
		return o.Rows[len(o.Rows)-1], true
	}
	return o.Rows[0], true
}
