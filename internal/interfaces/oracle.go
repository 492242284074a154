package interfaces

import "context"

// DecisionOracle is the text-generating advisor. It receives a fully
// assembled prompt and returns raw text; callers never interpret its
// reasoning here, only downstream in the parser and risk gate.
type DecisionOracle interface {
	Generate(ctx context.Context, prompt string) (string, error)
}
