package oracle

import "context"

// NoopOracle is the fallback oracle used when no provider is configured.
type NoopOracle struct{}

func NewNoopOracle() *NoopOracle {
	return &NoopOracle{}
}

// Generate always returns empty text, which downstream substitutes with
// the HOLD fallback decision.
func (o *NoopOracle) Generate(ctx context.Context, prompt string) (string, error) {
	return "", nil
}
