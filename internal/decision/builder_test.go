package decision

import (
	"context"
	"errors"
	"strings"
	"testing"

	"recall-trader/internal/store"
)

type stubOracle struct {
	text string
	err  error
	// last prompt seen, for assertions
	prompt string
}

func (s *stubOracle) Generate(_ context.Context, prompt string) (string, error) {
	s.prompt = prompt
	return s.text, s.err
}

func testConfig() *store.Config {
	var c store.Config
	c.Rules.ProfitTargetMomentumPct = 3
	c.Rules.ProfitTargetMeanRevPct = 2
	c.Rules.StopLossPct = 2
	c.Rules.RSIOversold = 30
	c.Rules.RSIOverbought = 70
	c.Rules.VolumeSpikePct = 150
	c.Rules.PositionMinPct = 10
	c.Rules.PositionMaxPct = 15
	c.Rules.MaxRiskPerTradePct = 2
	return &c
}

func testInput() PromptInput {
	return PromptInput{
		Asset:            store.Asset{Symbol: "ETH", MarketID: "ethereum", Pair: "ETH/USDC", Name: "Ethereum"},
		MarketSummary:    "ETH Market Summary:\n- RSI: 28.40\n",
		PortfolioSummary: "Portfolio Value: $5000.00\nCompleted Trades: 0\nAvailable Cash: $2000.00",
		AvailableCash:    2000,
	}
}

func TestDecideReturnsOracleText(t *testing.T) {
	o := &stubOracle{text: "BUY|$400|oversold bounce|LOW"}
	b := NewRequestBuilder(testConfig(), o)

	got := b.Decide(context.Background(), testInput())
	if got != "BUY|$400|oversold bounce|LOW" {
		t.Errorf("Decide = %q", got)
	}
	if o.prompt == "" {
		t.Fatal("oracle was not called with a prompt")
	}
}

func TestDecideNilOracle(t *testing.T) {
	b := NewRequestBuilder(testConfig(), nil)
	if got := b.Decide(context.Background(), testInput()); got != FallbackNoOracle {
		t.Errorf("Decide = %q, want %q", got, FallbackNoOracle)
	}
}

func TestDecideOracleError(t *testing.T) {
	o := &stubOracle{err: errors.New("rate limited")}
	b := NewRequestBuilder(testConfig(), o)
	if got := b.Decide(context.Background(), testInput()); got != FallbackNoOracle {
		t.Errorf("Decide = %q, want %q", got, FallbackNoOracle)
	}
}

func TestDecideEmptyResponse(t *testing.T) {
	o := &stubOracle{text: "   \n"}
	b := NewRequestBuilder(testConfig(), o)
	if got := b.Decide(context.Background(), testInput()); got != FallbackNoDecision {
		t.Errorf("Decide = %q, want %q", got, FallbackNoDecision)
	}
}

func TestBuildPromptLayout(t *testing.T) {
	b := NewRequestBuilder(testConfig(), nil)
	prompt := b.BuildPrompt(testInput())

	for _, want := range []string{
		"TRADING ANALYSIS - Ethereum (ETH/USDC)",
		"ETH Market Summary:",
		"Portfolio Value: $5000.00",
		"CURRENT POSITION:\nNO OPEN POSITION",
		"AVAILABLE CASH: $2000.00",
		"LONG: RSI < 30 AND price below lower Bollinger Band",
		"Position size: 10-15% of available cash",
		"Never risk more than 2% of portfolio",
		"what action should be taken for ETH?",
		"Format: ACTION|AMOUNT|REASONING|RISK_LEVEL",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q\nprompt:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "MARKET SENTIMENT") {
		t.Error("sentiment section rendered without sentiment input")
	}
}

func TestBuildPromptOpenPositionsAndSentiment(t *testing.T) {
	b := NewRequestBuilder(testConfig(), nil)
	in := testInput()
	in.OpenPositions = 3
	in.Sentiment = "NEUTRAL: mixed headlines"
	prompt := b.BuildPrompt(in)

	if !strings.Contains(prompt, "3 open positions") {
		t.Error("prompt missing open position count")
	}
	if strings.Contains(prompt, "NO OPEN POSITION") {
		t.Error("prompt claims no position while positions exist")
	}
	if !strings.Contains(prompt, "MARKET SENTIMENT:\nNEUTRAL: mixed headlines") {
		t.Error("prompt missing sentiment block")
	}
}
