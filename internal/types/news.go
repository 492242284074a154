package types

// NewsArticle is one scraped headline with optional body text.
type NewsArticle struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	Source      string `json:"source"`
	PublishedAt string `json:"published_at"`
	Symbol      string `json:"symbol"`
}

// ArticleSentiment is one scored article.
type ArticleSentiment struct {
	ArticleTitle string  `json:"article_title"`
	URL          string  `json:"url"`
	Sentiment    string  `json:"sentiment"` // POSITIVE, NEGATIVE, NEUTRAL
	Score        float64 `json:"score"`     // -1.0 to 1.0
	Reasoning    string  `json:"reasoning"`
}

// NewsSentiment aggregates article sentiments for one asset.
type NewsSentiment struct {
	Symbol           string             `json:"symbol"`
	OverallSentiment string             `json:"overall_sentiment"` // POSITIVE, NEGATIVE, NEUTRAL, MIXED
	OverallScore     float64            `json:"overall_score"`
	ArticleCount     int                `json:"article_count"`
	Articles         []ArticleSentiment `json:"articles,omitempty"`
	Summary          string             `json:"summary"`
	Confidence       float64            `json:"confidence"`
	Timestamp        int64              `json:"timestamp"`
}
