package oracleobs

import (
	"context"

	"recall-trader/internal/interfaces"
	"recall-trader/internal/logger"
	"recall-trader/internal/trace"
)

// observableOracle wraps a DecisionOracle with observability (logging & tracing)
type observableOracle struct {
	oracle interfaces.DecisionOracle
}

// Compile-time interface check
var _ interfaces.DecisionOracle = (*observableOracle)(nil)

// Wrap wraps an oracle with observability middleware
func Wrap(oracle interfaces.DecisionOracle) interfaces.DecisionOracle {
	return &observableOracle{oracle: oracle}
}

func (oo *observableOracle) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := trace.StartSpan(ctx, "oracle.Generate")
	defer span.End()

	// Use DebugSkip(1) to report the actual caller, not this middleware wrapper
	logger.DebugSkip(ctx, 1, "Requesting decision", "prompt_length", len(prompt))

	text, err := oo.oracle.Generate(ctx, prompt)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Decision request failed", err)
		return "", err
	}

	logger.InfoSkip(ctx, 1, "Decision received", "response_length", len(text))
	return text, nil
}
