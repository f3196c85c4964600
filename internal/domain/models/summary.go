package models

import (
	"time"

	"cloud.google.com/go/civil"
)

// ComponentSummary is the latest value of one catalog column and its change.
type ComponentSummary struct {
	Label  string  `json:"label"`
	Latest float64 `json:"latest"`
	Delta  float64 `json:"delta"`
}

// Summary is the overview of the most recent frame rows.
type Summary struct {
	Start           civil.Date         `json:"start"`
	Date            civil.Date         `json:"date"`
	Rows            int                `json:"rows"`
	Components      []ComponentSummary `json:"components"`
	LiquidityZ      float64            `json:"liquidity_z"`
	LiquidityZDelta float64            `json:"liquidity_z_delta"`
	LiquidityIndex  float64            `json:"liquidity_index"`
}

// IndexSnapshot is published after a frame is computed.
type IndexSnapshot struct {
	Start          civil.Date `json:"start"`
	Date           civil.Date `json:"date"`
	Rows           int        `json:"rows"`
	LiquidityZ     float64    `json:"liquidity_z"`
	LiquidityIndex float64    `json:"liquidity_index"`
	ComputedAt     time.Time  `json:"computed_at"`
}

// RefreshEvent asks every instance to drop cached data.
type RefreshEvent struct {
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// Price is a live asset quote.
type Price struct {
	Coin     string    `json:"coin"`
	Currency string    `json:"currency"`
	Value    float64   `json:"value"`
	At       time.Time `json:"at"`
}
