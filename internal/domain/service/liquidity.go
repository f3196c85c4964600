package service

import (
	"context"

	"FinLiquidity/internal/domain/models"

	"cloud.google.com/go/civil"
)

// IndexEngine builds the merged, scored liquidity frame from a start date.
type IndexEngine interface {
	Build(ctx context.Context, start civil.Date) (*models.MergedFrame, error)
}
