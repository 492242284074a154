package types

// PricePoint is one sample of a market history series. Series are ordered
// ascending by timestamp with no duplicate timestamps.
type PricePoint struct {
	Timestamp int64   `json:"timestamp"` // epoch ms
	Price     float64 `json:"price"`
	Volume    float64 `json:"volume"`
}

// Bands holds Bollinger band levels. Upper/Lower/Middle are NaN when the
// series was too short to compute them; Position is always set.
type Bands struct {
	Upper    float64 `json:"upper"`
	Lower    float64 `json:"lower"`
	Middle   float64 `json:"middle"`
	Position string  `json:"position"` // "above", "below", "middle"
}

// IndicatorSet is the per-asset indicator snapshot for one cycle. Immutable
// once computed.
type IndicatorSet struct {
	RSI            float64 `json:"rsi"`
	EMA21          float64 `json:"ema21"`
	Bollinger      Bands   `json:"bollinger"`
	PriceChange24h float64 `json:"price_change_24h"` // fractional
	VolumeRatio    float64 `json:"volume_ratio"`
}

// TokenBalance is one token holding reported by the portfolio provider.
type TokenBalance struct {
	Symbol string  `json:"symbol"`
	Amount float64 `json:"amount"`
	Value  float64 `json:"value"` // USD
}

// Trade is one historical trade record from the portfolio provider. The
// provider does not expose open/closed status, so callers treat every record
// as a completed trade.
type Trade struct {
	ID         string  `json:"id"`
	FromToken  string  `json:"fromToken"`
	ToToken    string  `json:"toToken"`
	FromAmount float64 `json:"fromAmount"`
	Reason     string  `json:"reason"`
	Timestamp  string  `json:"timestamp"`
}

// PortfolioState is the account snapshot for one cycle, read-only after fetch.
// TotalValue is nil when the provider did not report it.
type PortfolioState struct {
	TotalValue *float64       `json:"totalValue,omitempty"`
	Tokens     []TokenBalance `json:"tokens"`
	Trades     []Trade        `json:"trades"`
}

// TradeProposal is the structured form of one oracle decision. Action is not
// validated against the enum here; the risk gate enforces it.
type TradeProposal struct {
	Action    string `json:"action"` // BUY, SELL, HOLD, EXIT
	Amount    string `json:"amount"` // "$500" or "15%"
	Reasoning string `json:"reasoning"`
	RiskLevel string `json:"risk_level"` // LOW, MEDIUM, HIGH
}

// ApprovedTrade is a proposal that passed the risk gate, with the amount
// resolved to dollars. Created and consumed within one cycle.
type ApprovedTrade struct {
	TradeProposal
	AmountUSD float64 `json:"amount_usd"`
}

// OrderReceipt is the executor's acknowledgement of a submitted order.
type OrderReceipt struct {
	OrderID string `json:"order_id"`
	Status  string `json:"status"`
}

// TradeResult is the terminal per-asset artifact of a cycle.
type TradeResult struct {
	Success bool   `json:"success"`
	OrderID string `json:"order_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// AssetCycle accumulates the per-asset artifacts of one pipeline run.
type AssetCycle struct {
	Symbol     string         `json:"symbol"`
	History    []PricePoint   `json:"-"`
	Indicators IndicatorSet   `json:"indicators"`
	Summary    string         `json:"summary"`
	Sentiment  string         `json:"sentiment,omitempty"`
	Decision   string         `json:"decision"` // raw oracle text
	Proposal   TradeProposal  `json:"proposal"`
	Approved   *ApprovedTrade `json:"approved,omitempty"`
	Result     *TradeResult   `json:"result,omitempty"`
}

// CycleRecord aggregates everything one pipeline run produced. Stages only
// add fields; nothing set by an earlier stage is erased by a later one.
type CycleRecord struct {
	CycleID          string         `json:"cycle_id"`
	StartedAt        int64          `json:"started_at"` // epoch ms
	Assets           []AssetCycle   `json:"assets"`     // configured order, ETH before SOL
	Portfolio        PortfolioState `json:"-"`
	PortfolioSummary string         `json:"portfolio_summary"`
	AvailableCash    float64        `json:"available_cash"`
	OpenPositions    int            `json:"open_positions"`
	LogID            string         `json:"log_id,omitempty"`
	Status           string         `json:"status,omitempty"`
}

// Asset returns the cycle entry for a symbol, or nil if the symbol is not
// part of this cycle.
func (r *CycleRecord) Asset(symbol string) *AssetCycle {
	for i := range r.Assets {
		if r.Assets[i].Symbol == symbol {
			return &r.Assets[i]
		}
	}
	return nil
}
