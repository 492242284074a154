package interfaces

import (
	"context"

	"recall-trader/internal/types"
)

type PortfolioSource interface {
	GetPortfolio(ctx context.Context) (types.PortfolioState, error)
	GetBalances(ctx context.Context) (map[string]float64, error)
	GetTrades(ctx context.Context) ([]types.Trade, error)
}
