package summary

import (
	"fmt"
	"math"
	"strings"

	"recall-trader/internal/types"
)

// FormatMarket renders one asset's indicator snapshot into the fixed briefing
// block fed to the oracle. Output is byte-deterministic for identical input.
func FormatMarket(label string, ind types.IndicatorSet) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s Market Summary:\n", label)
	fmt.Fprintf(&b, "- RSI: %s\n", fmtNum(ind.RSI))
	fmt.Fprintf(&b, "- EMA(21): %s\n", fmtNum(ind.EMA21))
	fmt.Fprintf(&b, "- Bollinger: [%s] (U:%s, L:%s)\n",
		ind.Bollinger.Position, fmtNum(ind.Bollinger.Upper), fmtNum(ind.Bollinger.Lower))
	fmt.Fprintf(&b, "- 24h Change: %s%%\n", fmtNum(ind.PriceChange24h*100))
	return b.String()
}

func fmtNum(v float64) string {
	if math.IsNaN(v) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}
