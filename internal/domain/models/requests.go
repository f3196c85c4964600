package models

// Requests for liquidity HTTP endpoints. Defined in domain for consistency and reuse.

type FrameRequest struct {
	Start string `query:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
}

type ComponentRequest struct {
	Start string `query:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	Label string `query:"label" json:"label" validate:"required"`
}

type OverlayRequest struct {
	Start  string `query:"start" json:"start" validate:"omitempty,datetime=2006-01-02"`
	Asset  string `query:"asset" json:"asset" validate:"required"`
	Anchor string `query:"anchor" json:"anchor" validate:"required,oneof=first last"`
}

type PriceRequest struct {
	Coin string `query:"coin" json:"coin" default:"bitcoin" validate:"required"`
}

type RefreshRequest struct {
	Reason string `query:"reason" json:"reason" default:"user" validate:"max=64"`
}
