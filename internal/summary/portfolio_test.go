package summary

import (
	"strings"
	"testing"

	"recall-trader/internal/types"
)

func TestSummarizeStablecoinCash(t *testing.T) {
	s := NewPortfolioSummarizer([]string{"USDC", "USDbC"})
	total := 5000.0
	p := types.PortfolioState{
		TotalValue: &total,
		Tokens: []types.TokenBalance{
			{Symbol: "USDC", Amount: 1000, Value: 1000},
			{Symbol: "USDbC", Amount: 250, Value: 250},
			{Symbol: "ETH", Amount: 1, Value: 3750},
		},
		Trades: []types.Trade{{ID: "t1"}, {ID: "t2"}},
	}

	text, cash, positions := s.Summarize(p)

	if cash != 1250 {
		t.Errorf("expected available cash 1250, got %f", cash)
	}
	if positions != 2 {
		t.Errorf("expected 2 positions, got %d", positions)
	}
	if !strings.Contains(text, "Portfolio Value: $5000.00") {
		t.Errorf("expected portfolio value line, got:\n%s", text)
	}
	if !strings.Contains(text, "Completed Trades: 2") {
		t.Errorf("expected completed trades line, got:\n%s", text)
	}
	if !strings.Contains(text, "Available Cash: $1250.00") {
		t.Errorf("expected available cash line, got:\n%s", text)
	}
}

func TestSummarizeUnknownTotalValue(t *testing.T) {
	s := NewPortfolioSummarizer([]string{"USDC"})
	text, cash, positions := s.Summarize(types.PortfolioState{})

	if !strings.Contains(text, "Portfolio Value: $N/A") {
		t.Errorf("expected N/A sentinel, got:\n%s", text)
	}
	if cash != 0 {
		t.Errorf("expected zero cash for empty portfolio, got %f", cash)
	}
	if positions != 0 {
		t.Errorf("expected zero positions, got %d", positions)
	}
}

func TestSummarizeNonStablecoinIgnored(t *testing.T) {
	s := NewPortfolioSummarizer([]string{"USDC"})
	p := types.PortfolioState{
		Tokens: []types.TokenBalance{
			{Symbol: "SOL", Value: 900},
			{Symbol: "USDT", Value: 400}, // not in the configured set
		},
	}

	if cash := s.AvailableCash(p); cash != 0 {
		t.Errorf("expected non-stablecoin balances ignored, got %f", cash)
	}
}
