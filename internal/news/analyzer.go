package news

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"recall-trader/internal/interfaces"
	"recall-trader/internal/logger"
	"recall-trader/internal/trace"
	"recall-trader/internal/types"
)

// SentimentAnalyzer scores articles with the decision oracle. The oracle
// is asked for strict JSON; anything unparseable drops the article from
// the aggregate rather than failing the batch.
type SentimentAnalyzer struct {
	oracle interfaces.DecisionOracle
}

func NewSentimentAnalyzer(oracle interfaces.DecisionOracle) *SentimentAnalyzer {
	return &SentimentAnalyzer{oracle: oracle}
}

// AnalyzeArticle scores one article.
func (a *SentimentAnalyzer) AnalyzeArticle(ctx context.Context, article types.NewsArticle) (types.ArticleSentiment, error) {
	ctx, span := trace.StartSpan(ctx, "analyze-article-sentiment")
	defer span.End()

	sentiment := types.ArticleSentiment{
		ArticleTitle: article.Title,
		URL:          article.URL,
	}

	if a.oracle == nil {
		return sentiment, fmt.Errorf("no oracle configured for sentiment analysis")
	}

	raw, err := a.oracle.Generate(ctx, buildArticleAnalysisPrompt(article))
	if err != nil {
		return sentiment, err
	}

	var result struct {
		Sentiment string  `json:"sentiment"`
		Score     float64 `json:"score"`
		Reasoning string  `json:"reasoning"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &result); err != nil {
		return sentiment, fmt.Errorf("invalid JSON sentiment response: %w", err)
	}

	sentiment.Sentiment = strings.ToUpper(result.Sentiment)
	sentiment.Score = result.Score
	sentiment.Reasoning = result.Reasoning
	return sentiment, nil
}

// extractJSON trims text the model sometimes wraps around the JSON object.
func extractJSON(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

// AnalyzeMultipleArticles scores every article and aggregates the result.
func (a *SentimentAnalyzer) AnalyzeMultipleArticles(ctx context.Context, symbol string, articles []types.NewsArticle) (types.NewsSentiment, error) {
	logger.Info(ctx, "Analyzing sentiment for multiple articles", "symbol", symbol, "count", len(articles))

	if len(articles) == 0 {
		return types.NewsSentiment{
			Symbol:           symbol,
			OverallSentiment: "NEUTRAL",
			Summary:          "No articles found for analysis",
			Timestamp:        time.Now().Unix(),
		}, nil
	}

	articleSentiments := []types.ArticleSentiment{}
	for i, article := range articles {
		sentiment, err := a.AnalyzeArticle(ctx, article)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to analyze article", err, "article", article.Title)
			continue
		}
		articleSentiments = append(articleSentiments, sentiment)

		if i < len(articles)-1 {
			time.Sleep(1 * time.Second)
		}
	}

	aggregated := aggregateSentiments(symbol, articleSentiments)
	logger.Info(ctx, "Sentiment analysis completed", "symbol", symbol,
		"overall", aggregated.OverallSentiment, "score", aggregated.OverallScore)
	return aggregated, nil
}

func aggregateSentiments(symbol string, articles []types.ArticleSentiment) types.NewsSentiment {
	if len(articles) == 0 {
		return types.NewsSentiment{
			Symbol:           symbol,
			OverallSentiment: "NEUTRAL",
			Timestamp:        time.Now().Unix(),
		}
	}

	totalScore := 0.0
	counts := map[string]int{"POSITIVE": 0, "NEGATIVE": 0, "NEUTRAL": 0}
	for _, article := range articles {
		totalScore += article.Score
		counts[article.Sentiment]++
	}
	avgScore := totalScore / float64(len(articles))

	overall := "NEUTRAL"
	switch {
	case counts["POSITIVE"] > counts["NEGATIVE"]*2:
		overall = "POSITIVE"
	case counts["NEGATIVE"] > counts["POSITIVE"]*2:
		overall = "NEGATIVE"
	case counts["POSITIVE"] > 0 && counts["NEGATIVE"] > 0:
		overall = "MIXED"
	}

	summary := fmt.Sprintf("Analyzed %d articles: %d positive, %d negative, %d neutral.",
		len(articles), counts["POSITIVE"], counts["NEGATIVE"], counts["NEUTRAL"])

	return types.NewsSentiment{
		Symbol:           symbol,
		OverallSentiment: overall,
		OverallScore:     avgScore,
		ArticleCount:     len(articles),
		Articles:         articles,
		Summary:          summary,
		Confidence:       calculateConfidence(len(articles), counts),
		Timestamp:        time.Now().Unix(),
	}
}

// calculateConfidence scales with article count and sentiment consistency.
func calculateConfidence(articleCount int, counts map[string]int) float64 {
	confidence := 0.3
	switch {
	case articleCount >= 10:
		confidence = 0.9
	case articleCount >= 5:
		confidence = 0.7
	case articleCount >= 3:
		confidence = 0.5
	}

	total := float64(counts["POSITIVE"] + counts["NEGATIVE"] + counts["NEUTRAL"])
	if total > 0 {
		maxCount := float64(maxOf(counts["POSITIVE"], counts["NEGATIVE"], counts["NEUTRAL"]))
		confidence *= maxCount / total
	}
	return confidence
}

func maxOf(a, b, c int) int {
	if a > b && a > c {
		return a
	}
	if b > c {
		return b
	}
	return c
}

func buildArticleAnalysisPrompt(article types.NewsArticle) string {
	content := article.Content
	if len(content) > 2000 {
		content = content[:2000] + "..."
	}

	return fmt.Sprintf(`Analyze the sentiment of this news article about %s for trading purposes.

Article Title: %s
Source: %s
Content: %s

Evaluate:
1. Overall sentiment (POSITIVE, NEGATIVE, or NEUTRAL) for the asset's price
2. Sentiment score from -1.0 (very negative) to 1.0 (very positive)

Respond ONLY with valid JSON matching this schema:
{
  "sentiment": "POSITIVE|NEGATIVE|NEUTRAL",
  "score": -1.0 to 1.0 (float),
  "reasoning": "brief explanation"
}`, article.Symbol, article.Title, article.Source, content)
}
