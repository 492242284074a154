package pipeline

import (
	"context"
	"errors"
	"strings"
	"testing"

	"recall-trader/internal/decision"
	"recall-trader/internal/store"
	"recall-trader/internal/types"
)

type fakeMarket struct {
	data map[string][]types.PricePoint
	err  error
}

func (m *fakeMarket) GetHistory(_ context.Context, assetID string, _ int) ([]types.PricePoint, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.data[assetID], nil
}

type fakePortfolio struct {
	state types.PortfolioState
	err   error
}

func (p *fakePortfolio) GetPortfolio(_ context.Context) (types.PortfolioState, error) {
	return p.state, p.err
}

func (p *fakePortfolio) GetBalances(_ context.Context) (map[string]float64, error) {
	out := map[string]float64{}
	for _, t := range p.state.Tokens {
		out[t.Symbol] = t.Amount
	}
	return out, p.err
}

func (p *fakePortfolio) GetTrades(_ context.Context) ([]types.Trade, error) {
	return p.state.Trades, p.err
}

// routeOracle buys ETH on oversold setups and holds everything else.
type routeOracle struct{ err error }

func (o *routeOracle) Generate(_ context.Context, prompt string) (string, error) {
	if o.err != nil {
		return "", o.err
	}
	if strings.Contains(prompt, "what action should be taken for ETH?") {
		return "BUY|$400|RSI 28 oversold|LOW", nil
	}
	return "HOLD|--|no setup|LOW", nil
}

func runnerConfig() *store.Config {
	c := &store.Config{
		Mode:           "DRY_RUN",
		HistoryDays:    30,
		Assets: []store.Asset{
			{Symbol: "ETH", MarketID: "ethereum", Pair: "ETH/USDC", Name: "ETHEREUM"},
			{Symbol: "SOL", MarketID: "solana", Pair: "SOL/USDC", Name: "SOLANA"},
		},
		Stablecoins:    []string{"USDC", "USDbC"},
		BaseStablecoin: "USDC",
	}
	c.Indicators.RSIPeriod = 14
	c.Indicators.EMAPeriod = 21
	c.Indicators.BBWindow = 20
	c.Indicators.BBStdDev = 2
	c.Indicators.ChangeLookback = 24
	c.Rules.ProfitTargetMomentumPct = 3
	c.Rules.ProfitTargetMeanRevPct = 2
	c.Rules.StopLossPct = 2
	c.Rules.RSIOversold = 30
	c.Rules.RSIOverbought = 70
	c.Rules.VolumeSpikePct = 150
	c.Rules.PositionMinPct = 10
	c.Rules.PositionMaxPct = 15
	c.Rules.MaxRiskPerTradePct = 2
	return c
}

// oversoldSeries holds flat at 100 then drops sharply at the end, pushing
// RSI toward zero and the last price below the lower Bollinger band.
func oversoldSeries() []types.PricePoint {
	prices := make([]float64, 0, 30)
	for i := 0; i < 25; i++ {
		prices = append(prices, 100)
	}
	prices = append(prices, 95, 90, 85, 80, 70)

	points := make([]types.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = types.PricePoint{Timestamp: int64(i) * 3_600_000, Price: p, Volume: 1000}
	}
	return points
}

func cashPortfolio(usdc float64) types.PortfolioState {
	total := usdc
	return types.PortfolioState{
		TotalValue: &total,
		Tokens:     []types.TokenBalance{{Symbol: "USDC", Amount: usdc, Value: usdc}},
	}
}

func TestRunEndToEndBuy(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	market := &fakeMarket{data: map[string][]types.PricePoint{
		"ethereum": oversoldSeries(),
		"solana":   oversoldSeries(),
	}}
	portfolio := &fakePortfolio{state: cashPortfolio(2000)}
	exec := &stubExecutor{receipt: types.OrderReceipt{OrderID: "ord-42", Status: "filled"}}

	r := NewRunner(runnerConfig(), market, portfolio, &routeOracle{}, exec, nil)
	rec := r.Run(context.Background())

	if rec.CycleID == "" || rec.LogID == "" {
		t.Errorf("CycleID/LogID not set: %q/%q", rec.CycleID, rec.LogID)
	}
	if rec.Status != StatusOK {
		t.Errorf("Status = %q, want %q", rec.Status, StatusOK)
	}
	if rec.AvailableCash != 2000 {
		t.Errorf("AvailableCash = %v, want 2000", rec.AvailableCash)
	}
	if len(rec.Assets) != 2 || rec.Assets[0].Symbol != "ETH" || rec.Assets[1].Symbol != "SOL" {
		t.Fatalf("assets in wrong order: %+v", rec.Assets)
	}

	eth := rec.Asset("ETH")
	if eth.Indicators.RSI >= 30 {
		t.Errorf("ETH RSI = %v, want < 30 for this series", eth.Indicators.RSI)
	}
	if eth.Indicators.Bollinger.Position != "below" {
		t.Errorf("ETH band position = %q, want below", eth.Indicators.Bollinger.Position)
	}
	if eth.Decision != "BUY|$400|RSI 28 oversold|LOW" {
		t.Errorf("ETH decision = %q", eth.Decision)
	}
	if eth.Approved == nil || eth.Approved.AmountUSD != 400 {
		t.Fatalf("ETH approved = %+v, want $400", eth.Approved)
	}
	if eth.Result == nil || !eth.Result.Success || eth.Result.OrderID != "ord-42" {
		t.Fatalf("ETH result = %+v, want submitted order", eth.Result)
	}

	if len(exec.calls) != 1 {
		t.Fatalf("executor calls = %d, want 1", len(exec.calls))
	}
	call := exec.calls[0]
	if call.fromToken != "USDC" || call.toToken != "ETH" || call.amountUSD != 400 {
		t.Errorf("executed %s->%s $%v, want USDC->ETH $400", call.fromToken, call.toToken, call.amountUSD)
	}

	sol := rec.Asset("SOL")
	if sol.Approved != nil || sol.Result != nil {
		t.Errorf("SOL hold should not execute: approved=%+v result=%+v", sol.Approved, sol.Result)
	}
}

func TestRunCarriesEarlierStageFields(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	market := &fakeMarket{data: map[string][]types.PricePoint{
		"ethereum": oversoldSeries(),
		"solana":   oversoldSeries(),
	}}
	r := NewRunner(runnerConfig(), market, &fakePortfolio{state: cashPortfolio(2000)},
		&routeOracle{}, &stubExecutor{}, nil)
	rec := r.Run(context.Background())

	for _, a := range rec.Assets {
		if len(a.History) != 30 {
			t.Errorf("%s history lost: len=%d", a.Symbol, len(a.History))
		}
		if a.Summary == "" || a.Decision == "" {
			t.Errorf("%s summary/decision lost: %q/%q", a.Symbol, a.Summary, a.Decision)
		}
	}
	if !strings.Contains(rec.PortfolioSummary, "Available Cash: $2000.00") {
		t.Errorf("portfolio summary lost: %q", rec.PortfolioSummary)
	}
	if rec.StartedAt == 0 {
		t.Error("StartedAt not set")
	}
}

func TestRunMarketDataUnavailable(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	market := &fakeMarket{err: errors.New("upstream down")}
	r := NewRunner(runnerConfig(), market, &fakePortfolio{state: cashPortfolio(2000)},
		&routeOracle{}, &stubExecutor{receipt: types.OrderReceipt{OrderID: "ord-1"}}, nil)
	rec := r.Run(context.Background())

	if rec.Status != StatusOK {
		t.Errorf("Status = %q, want %q despite missing data", rec.Status, StatusOK)
	}
	for _, a := range rec.Assets {
		if !strings.Contains(a.Summary, "n/a") {
			t.Errorf("%s summary should carry sentinel values: %q", a.Symbol, a.Summary)
		}
	}
}

func TestRunPortfolioUnavailable(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	market := &fakeMarket{data: map[string][]types.PricePoint{
		"ethereum": oversoldSeries(),
		"solana":   oversoldSeries(),
	}}
	exec := &stubExecutor{receipt: types.OrderReceipt{OrderID: "ord-1"}}
	r := NewRunner(runnerConfig(), market, &fakePortfolio{err: errors.New("api down")},
		&routeOracle{}, exec, nil)
	rec := r.Run(context.Background())

	if rec.AvailableCash != 0 {
		t.Errorf("AvailableCash = %v, want 0 with empty portfolio", rec.AvailableCash)
	}
	// $400 buy against $0 cash must be rejected by the gate
	if len(exec.calls) != 0 {
		t.Errorf("executor called %d times, want 0", len(exec.calls))
	}
	if rec.Status != StatusOK {
		t.Errorf("Status = %q, want %q", rec.Status, StatusOK)
	}
}

func TestRunExecutorFailureSetsStatus(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	market := &fakeMarket{data: map[string][]types.PricePoint{
		"ethereum": oversoldSeries(),
		"solana":   oversoldSeries(),
	}}
	exec := &stubExecutor{err: errors.New("swap reverted")}
	r := NewRunner(runnerConfig(), market, &fakePortfolio{state: cashPortfolio(2000)},
		&routeOracle{}, exec, nil)
	rec := r.Run(context.Background())

	if rec.Status != StatusExecutionError {
		t.Errorf("Status = %q, want %q", rec.Status, StatusExecutionError)
	}
	eth := rec.Asset("ETH")
	if eth.Result == nil || eth.Result.Success {
		t.Errorf("ETH result = %+v, want captured failure", eth.Result)
	}
	if eth.Result != nil && eth.Result.Error != "swap reverted" {
		t.Errorf("ETH error = %q", eth.Result.Error)
	}
}

type fakeSentiment struct {
	text string
	err  error
}

func (s *fakeSentiment) Sentiment(_ context.Context, _ string) (string, error) {
	return s.text, s.err
}

func TestRunSentimentRecorded(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	market := &fakeMarket{data: map[string][]types.PricePoint{
		"ethereum": oversoldSeries(),
		"solana":   oversoldSeries(),
	}}
	r := NewRunner(runnerConfig(), market, &fakePortfolio{state: cashPortfolio(2000)},
		&routeOracle{}, &stubExecutor{receipt: types.OrderReceipt{OrderID: "ord-1"}},
		&fakeSentiment{text: "BULLISH: strong inflows"})
	rec := r.Run(context.Background())

	for _, a := range rec.Assets {
		if a.Sentiment != "BULLISH: strong inflows" {
			t.Errorf("%s sentiment = %q", a.Symbol, a.Sentiment)
		}
	}
}

func TestRunSentimentUnavailableOmitted(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	market := &fakeMarket{data: map[string][]types.PricePoint{
		"ethereum": oversoldSeries(),
		"solana":   oversoldSeries(),
	}}
	r := NewRunner(runnerConfig(), market, &fakePortfolio{state: cashPortfolio(2000)},
		&routeOracle{}, &stubExecutor{receipt: types.OrderReceipt{OrderID: "ord-1"}},
		&fakeSentiment{err: errors.New("scrape failed")})
	rec := r.Run(context.Background())

	for _, a := range rec.Assets {
		if a.Sentiment != "" {
			t.Errorf("%s sentiment = %q, want empty", a.Symbol, a.Sentiment)
		}
	}
	if rec.Status != StatusOK {
		t.Errorf("Status = %q, want %q", rec.Status, StatusOK)
	}
}

func TestRunOracleUnavailableHolds(t *testing.T) {
	t.Setenv("TRADER_LOG_DIR", t.TempDir())
	market := &fakeMarket{data: map[string][]types.PricePoint{
		"ethereum": oversoldSeries(),
		"solana":   oversoldSeries(),
	}}
	exec := &stubExecutor{}
	r := NewRunner(runnerConfig(), market, &fakePortfolio{state: cashPortfolio(2000)},
		&routeOracle{err: errors.New("rate limited")}, exec, nil)
	rec := r.Run(context.Background())

	for _, a := range rec.Assets {
		if a.Decision != decision.FallbackNoOracle {
			t.Errorf("%s decision = %q, want fallback", a.Symbol, a.Decision)
		}
		if a.Proposal.Action != "HOLD" {
			t.Errorf("%s action = %q, want HOLD", a.Symbol, a.Proposal.Action)
		}
	}
	if len(exec.calls) != 0 {
		t.Errorf("executor called %d times, want 0", len(exec.calls))
	}
	if rec.Status != StatusOK {
		t.Errorf("Status = %q, want %q", rec.Status, StatusOK)
	}
}
