package pipeline

import (
	"strings"

	"github.com/shopspring/decimal"

	"recall-trader/internal/types"
)

// Approve validates a proposal against available cash and returns the
// approved trade with a resolved dollar amount, or nil on rejection. The
// gate fails closed: only BUY and SELL can deploy capital, everything
// else (HOLD, EXIT, empty, unrecognized actions) is rejected. Percentage
// amounts are resolved against availableCash before the numeric check.
// Pure function, no external calls.
func Approve(p types.TradeProposal, availableCash float64) *types.ApprovedTrade {
	if p.Action != "BUY" && p.Action != "SELL" {
		return nil
	}

	amount, ok := resolveAmount(p.Amount, availableCash)
	if !ok {
		return nil
	}
	cash := decimal.NewFromFloat(availableCash)
	if amount.GreaterThan(cash) {
		return nil
	}

	usd, _ := amount.Float64()
	return &types.ApprovedTrade{TradeProposal: p, AmountUSD: usd}
}

// resolveAmount parses "$500", "500", or "15%" into dollars. Reports
// false when the amount is not a positive finite number.
func resolveAmount(raw string, availableCash float64) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")

	d, err := decimal.NewFromString(s)
	if err != nil || !d.IsPositive() {
		return decimal.Decimal{}, false
	}
	if pct {
		d = d.Div(decimal.NewFromInt(100)).Mul(decimal.NewFromFloat(availableCash))
		if !d.IsPositive() {
			return decimal.Decimal{}, false
		}
	}
	return d, true
}
