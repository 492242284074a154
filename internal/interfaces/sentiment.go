package interfaces

import "context"

// SentimentSource produces a short textual sentiment briefing for an asset,
// e.g. from news headlines. Implementations degrade to a neutral reading
// when sources are unavailable.
type SentimentSource interface {
	Sentiment(ctx context.Context, symbol string) (string, error)
}
