package recallobs

import (
	"context"

	"recall-trader/internal/interfaces"
	"recall-trader/internal/logger"
	"recall-trader/internal/trace"
	"recall-trader/internal/types"
)

// observableExecutor wraps a TradeExecutor with observability (logging & tracing)
type observableExecutor struct {
	executor interfaces.TradeExecutor
}

// Compile-time interface check
var _ interfaces.TradeExecutor = (*observableExecutor)(nil)

// WrapExecutor wraps a trade executor with observability middleware
func WrapExecutor(executor interfaces.TradeExecutor) interfaces.TradeExecutor {
	return &observableExecutor{executor: executor}
}

func (oe *observableExecutor) Execute(ctx context.Context, fromToken, toToken string, amountUSD float64, reason string) (types.OrderReceipt, error) {
	ctx, span := trace.StartSpan(ctx, "recall.Execute")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Submitting swap",
		"from", fromToken,
		"to", toToken,
		"amount_usd", amountUSD,
	)

	receipt, err := oe.executor.Execute(ctx, fromToken, toToken, amountUSD, reason)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Swap submission failed", err,
			"from", fromToken,
			"to", toToken,
		)
		return types.OrderReceipt{}, err
	}

	logger.InfoSkip(ctx, 1, "Swap submitted",
		"from", fromToken,
		"to", toToken,
		"order_id", receipt.OrderID,
		"status", receipt.Status,
	)
	return receipt, nil
}

// observablePortfolio wraps a PortfolioSource with observability
type observablePortfolio struct {
	source interfaces.PortfolioSource
}

var _ interfaces.PortfolioSource = (*observablePortfolio)(nil)

// WrapPortfolio wraps a portfolio source with observability middleware
func WrapPortfolio(source interfaces.PortfolioSource) interfaces.PortfolioSource {
	return &observablePortfolio{source: source}
}

func (op *observablePortfolio) GetPortfolio(ctx context.Context) (types.PortfolioState, error) {
	ctx, span := trace.StartSpan(ctx, "recall.GetPortfolio")
	defer span.End()

	state, err := op.source.GetPortfolio(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Portfolio fetch failed", err)
		return types.PortfolioState{}, err
	}

	logger.DebugSkip(ctx, 1, "Portfolio fetched",
		"tokens", len(state.Tokens),
		"trades", len(state.Trades),
	)
	return state, nil
}

func (op *observablePortfolio) GetBalances(ctx context.Context) (map[string]float64, error) {
	ctx, span := trace.StartSpan(ctx, "recall.GetBalances")
	defer span.End()

	balances, err := op.source.GetBalances(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Balance fetch failed", err)
		return nil, err
	}
	return balances, nil
}

func (op *observablePortfolio) GetTrades(ctx context.Context) ([]types.Trade, error) {
	ctx, span := trace.StartSpan(ctx, "recall.GetTrades")
	defer span.End()

	trades, err := op.source.GetTrades(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Trade history fetch failed", err)
		return nil, err
	}
	return trades, nil
}
