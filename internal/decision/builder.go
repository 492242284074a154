package decision

import (
	"context"
	"fmt"
	"strings"

	"recall-trader/internal/interfaces"
	"recall-trader/internal/logger"
	"recall-trader/internal/store"
	"recall-trader/internal/trace"
)

// Fallback decision strings. These are part of the wire contract: the parser
// and risk gate downstream treat them like any other oracle output.
const (
	FallbackNoOracle   = "HOLD|--|No agent available|LOW"
	FallbackNoDecision = "HOLD|--|No decision|LOW"
)

// RequestBuilder assembles the per-asset decision prompt and invokes the
// oracle. It never fails a cycle: oracle errors degrade to the HOLD fallback.
type RequestBuilder struct {
	cfg    *store.Config
	oracle interfaces.DecisionOracle
}

func NewRequestBuilder(cfg *store.Config, oracle interfaces.DecisionOracle) *RequestBuilder {
	return &RequestBuilder{cfg: cfg, oracle: oracle}
}

// PromptInput carries everything one asset's prompt needs.
type PromptInput struct {
	Asset            store.Asset
	MarketSummary    string
	PortfolioSummary string
	Sentiment        string
	OpenPositions    int
	AvailableCash    float64
}

// Decide builds the prompt, calls the oracle, and returns the raw decision
// text. Unavailable oracle or empty response substitute HOLD fallbacks.
func (b *RequestBuilder) Decide(ctx context.Context, in PromptInput) string {
	ctx, span := trace.StartSpan(ctx, "decision.Decide")
	defer span.End()

	if b.oracle == nil {
		return FallbackNoOracle
	}

	prompt := b.BuildPrompt(in)
	text, err := b.oracle.Generate(ctx, prompt)
	if err != nil {
		logger.ErrorWithErr(ctx, "Oracle unavailable, holding", err, "symbol", in.Asset.Symbol)
		return FallbackNoOracle
	}
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Warn(ctx, "Oracle returned empty decision, holding", "symbol", in.Asset.Symbol)
		return FallbackNoDecision
	}
	return text
}

// BuildPrompt renders the fixed prompt layout: market briefing, portfolio
// briefing, position state, cash, and the trading-rules block.
func (b *RequestBuilder) BuildPrompt(in PromptInput) string {
	r := b.cfg.Rules

	var p strings.Builder
	fmt.Fprintf(&p, "TRADING ANALYSIS - %s (%s)\n\n", in.Asset.Name, in.Asset.Pair)
	p.WriteString(in.MarketSummary)
	p.WriteString("\n")
	p.WriteString(in.PortfolioSummary)
	p.WriteString("\n\n")
	if in.Sentiment != "" {
		fmt.Fprintf(&p, "MARKET SENTIMENT:\n%s\n\n", in.Sentiment)
	}
	p.WriteString("CURRENT POSITION:\n")
	if in.OpenPositions > 0 {
		fmt.Fprintf(&p, "%d open positions\n", in.OpenPositions)
	} else {
		p.WriteString("NO OPEN POSITION\n")
	}
	fmt.Fprintf(&p, "\nAVAILABLE CASH: $%.2f\n\n", in.AvailableCash)
	p.WriteString("TRADING RULES:\n")
	p.WriteString("1. POSITION MANAGEMENT (if position exists):\n")
	fmt.Fprintf(&p, "   - Exit if profit target reached (+%.0f%% momentum, +%.0f%% mean reversion)\n",
		r.ProfitTargetMomentumPct, r.ProfitTargetMeanRevPct)
	fmt.Fprintf(&p, "   - Exit if stop loss triggered (-%.0f%%)\n", r.StopLossPct)
	p.WriteString("   - Exit if RSI reverses through 50 level\n")
	p.WriteString("   - Consider adding if strong confirmation and within risk limits\n")
	p.WriteString("2. NEW POSITION ENTRY (if no position):\n")
	fmt.Fprintf(&p, "   - LONG: RSI < %.0f AND price below lower Bollinger Band\n", r.RSIOversold)
	fmt.Fprintf(&p, "   - SHORT: RSI > %.0f AND volume spike >%.0f%% AND 21-EMA downtrend\n",
		r.RSIOverbought, r.VolumeSpikePct)
	fmt.Fprintf(&p, "   - Position size: %.0f-%.0f%% of available cash\n", r.PositionMinPct, r.PositionMaxPct)
	fmt.Fprintf(&p, "   - Never risk more than %.0f%% of portfolio\n\n", r.MaxRiskPerTradePct)
	p.WriteString("DECISION REQUIRED:\n")
	fmt.Fprintf(&p, "Based on current conditions, what action should be taken for %s?\n", in.Asset.Symbol)
	p.WriteString("Provide specific trade details: BUY/SELL/HOLD, amount, reasoning, and risk assessment.\n")
	p.WriteString("Format: ACTION|AMOUNT|REASONING|RISK_LEVEL")
	return p.String()
}
