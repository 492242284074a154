package summary

import (
	"fmt"
	"strings"

	"recall-trader/internal/types"
)

// PortfolioSummarizer renders account state into the briefing block fed to
// the oracle, and derives available cash and the open position count.
//
// The portfolio provider carries no open/closed status on trades, so every
// historical trade counts as one position. That is a known approximation of
// the upstream API, not something to correct here.
type PortfolioSummarizer struct {
	stablecoins map[string]bool
}

func NewPortfolioSummarizer(stablecoins []string) *PortfolioSummarizer {
	set := make(map[string]bool, len(stablecoins))
	for _, s := range stablecoins {
		set[s] = true
	}
	return &PortfolioSummarizer{stablecoins: set}
}

// AvailableCash sums the USD value of stablecoin-tagged token balances.
func (s *PortfolioSummarizer) AvailableCash(p types.PortfolioState) float64 {
	cash := 0.0
	for _, t := range p.Tokens {
		if s.stablecoins[t.Symbol] {
			cash += t.Value
		}
	}
	return cash
}

// OpenPositions counts historical trade records.
func (s *PortfolioSummarizer) OpenPositions(p types.PortfolioState) int {
	return len(p.Trades)
}

// Summarize returns the briefing text plus the derived cash and position
// count for the cycle record.
func (s *PortfolioSummarizer) Summarize(p types.PortfolioState) (text string, availableCash float64, openPositions int) {
	availableCash = s.AvailableCash(p)
	openPositions = s.OpenPositions(p)

	var b strings.Builder
	if p.TotalValue != nil {
		fmt.Fprintf(&b, "Portfolio Value: $%.2f\n", *p.TotalValue)
	} else {
		b.WriteString("Portfolio Value: $N/A\n")
	}
	fmt.Fprintf(&b, "Completed Trades: %d\n", openPositions)
	fmt.Fprintf(&b, "Available Cash: $%.2f", availableCash)
	return b.String(), availableCash, openPositions
}
