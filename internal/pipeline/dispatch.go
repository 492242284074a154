package pipeline

import (
	"context"

	"recall-trader/internal/interfaces"
	"recall-trader/internal/logger"
	"recall-trader/internal/tradelog"
	"recall-trader/internal/types"
)

// Dispatcher routes approved trades to the executor. BUY swaps the base
// stablecoin into the asset, everything else swaps the asset back into
// the stablecoin.
type Dispatcher struct {
	executor       interfaces.TradeExecutor
	baseStablecoin string
}

func NewDispatcher(executor interfaces.TradeExecutor, baseStablecoin string) *Dispatcher {
	return &Dispatcher{executor: executor, baseStablecoin: baseStablecoin}
}

// Dispatch submits one approved trade and records the outcome. Executor
// failures are captured in the result, never propagated: a failed swap
// must not abort the sibling asset's execution or the cycle. A nil
// approved trade skips execution entirely.
func (d *Dispatcher) Dispatch(ctx context.Context, symbol string, approved *types.ApprovedTrade) *types.TradeResult {
	if approved == nil {
		return nil
	}

	fromToken, toToken := d.baseStablecoin, symbol
	if approved.Action != "BUY" {
		fromToken, toToken = symbol, d.baseStablecoin
	}

	receipt, err := d.executor.Execute(ctx, fromToken, toToken, approved.AmountUSD, approved.Reasoning)
	entry := tradelog.Entry{
		Symbol:    symbol,
		FromToken: fromToken,
		ToToken:   toToken,
		Reason:    approved.Reasoning,
		AmountUSD: approved.AmountUSD,
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Trade execution failed", err,
			"symbol", symbol, "from", fromToken, "to", toToken, "amount_usd", approved.AmountUSD)
		entry.Error = err.Error()
		if logErr := tradelog.Append(entry); logErr != nil {
			logger.Warn(ctx, "Trade log append failed", "error", logErr.Error())
		}
		return &types.TradeResult{Success: false, Error: err.Error()}
	}

	logger.Trade(ctx, symbol, fromToken, toToken, approved.AmountUSD, receipt.OrderID)
	entry.OrderID = receipt.OrderID
	entry.Success = true
	if logErr := tradelog.Append(entry); logErr != nil {
		logger.Warn(ctx, "Trade log append failed", "error", logErr.Error())
	}
	return &types.TradeResult{Success: true, OrderID: receipt.OrderID}
}
