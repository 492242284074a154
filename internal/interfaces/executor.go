package interfaces

import (
	"context"

	"recall-trader/internal/types"
)

// TradeExecutor submits a swap from one token to another for a dollar amount.
type TradeExecutor interface {
	Execute(ctx context.Context, fromToken, toToken string, amountUSD float64, reason string) (types.OrderReceipt, error)
}
