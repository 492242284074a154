package interfaces

import (
	"context"

	"recall-trader/internal/types"
)

// MarketDataSource returns price/volume history for an asset, ascending by
// timestamp. Implementations return an empty series when the upstream is
// unavailable rather than failing the cycle.
type MarketDataSource interface {
	GetHistory(ctx context.Context, assetID string, days int) ([]types.PricePoint, error)
}
