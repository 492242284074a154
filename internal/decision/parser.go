package decision

import (
	"strings"

	"recall-trader/internal/types"
)

// fieldCount is the wire contract: ACTION|AMOUNT|REASONING|RISK_LEVEL.
const fieldCount = 4

// Parse turns raw oracle text into a trade proposal. The action is not
// validated against the enum here; the oracle drifts, and enforcement
// belongs to the risk gate. Malformed input (wrong field count) never
// errors — it yields a proposal with an empty action, which the gate
// rejects, with the raw text preserved as reasoning for the logs.
func Parse(raw string) types.TradeProposal {
	parts := strings.Split(raw, "|")
	if len(parts) != fieldCount {
		return types.TradeProposal{Reasoning: strings.TrimSpace(raw)}
	}
	return types.TradeProposal{
		Action:    strings.TrimSpace(parts[0]),
		Amount:    strings.TrimSpace(parts[1]),
		Reasoning: strings.TrimSpace(parts[2]),
		RiskLevel: strings.TrimSpace(parts[3]),
	}
}
