package news

import (
	"context"
	"fmt"
	"sync"
	"time"

	"recall-trader/internal/interfaces"
	"recall-trader/internal/logger"
	"recall-trader/internal/types"
)

// Service provides cached news sentiment per asset. It satisfies the
// pipeline's SentimentSource and always degrades to NEUTRAL instead of
// failing a cycle.
type Service struct {
	scraper  *Scraper
	analyzer *SentimentAnalyzer
	cache    *sentimentCache
	cfg      *ServiceConfig
}

var _ interfaces.SentimentSource = (*Service)(nil)

// ServiceConfig configures the news sentiment service.
type ServiceConfig struct {
	MaxArticles    int
	CacheDuration  time.Duration
	ScraperTimeout time.Duration
	Enabled        bool
}

func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		MaxArticles:    10,
		CacheDuration:  1 * time.Hour,
		ScraperTimeout: 30 * time.Second,
		Enabled:        true,
	}
}

// sentimentCache stores sentiment results temporarily.
type sentimentCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	sentiment types.NewsSentiment
	timestamp time.Time
}

func newSentimentCache(ttl time.Duration) *sentimentCache {
	cache := &sentimentCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
	go cache.cleanupLoop()
	return cache
}

func (c *sentimentCache) get(symbol string) (types.NewsSentiment, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, exists := c.data[symbol]
	if !exists || time.Since(entry.timestamp) > c.ttl {
		return types.NewsSentiment{}, false
	}
	return entry.sentiment, true
}

func (c *sentimentCache) set(symbol string, sentiment types.NewsSentiment) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[symbol] = &cacheEntry{sentiment: sentiment, timestamp: time.Now()}
}

func (c *sentimentCache) cleanupLoop() {
	ticker := time.NewTicker(10 * time.Minute)
	defer ticker.Stop()
	for range ticker.C {
		c.cleanup()
	}
}

func (c *sentimentCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for symbol, entry := range c.data {
		if now.Sub(entry.timestamp) > c.ttl {
			delete(c.data, symbol)
		}
	}
}

func NewService(oracle interfaces.DecisionOracle, serviceCfg *ServiceConfig) *Service {
	if serviceCfg == nil {
		serviceCfg = DefaultServiceConfig()
	}
	return &Service{
		scraper:  NewScraper(serviceCfg.ScraperTimeout),
		analyzer: NewSentimentAnalyzer(oracle),
		cache:    newSentimentCache(serviceCfg.CacheDuration),
		cfg:      serviceCfg,
	}
}

// GetSentiment returns sentiment for a symbol, cached or fresh.
func (s *Service) GetSentiment(ctx context.Context, symbol string) (types.NewsSentiment, error) {
	if !s.cfg.Enabled {
		return types.NewsSentiment{
			Symbol:           symbol,
			OverallSentiment: "NEUTRAL",
			Summary:          "Sentiment analysis disabled",
			Timestamp:        time.Now().Unix(),
		}, nil
	}

	if cached, ok := s.cache.get(symbol); ok {
		logger.Info(ctx, "Using cached sentiment", "symbol", symbol, "age_minutes",
			time.Since(time.Unix(cached.Timestamp, 0)).Minutes())
		return cached, nil
	}

	logger.Info(ctx, "Fetching fresh news sentiment", "symbol", symbol)
	sentiment, err := s.fetchFreshSentiment(ctx, symbol)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch sentiment", err, "symbol", symbol)
		return types.NewsSentiment{
			Symbol:           symbol,
			OverallSentiment: "NEUTRAL",
			Summary:          "Failed to fetch sentiment: " + err.Error(),
			Timestamp:        time.Now().Unix(),
		}, nil
	}

	s.cache.set(symbol, sentiment)
	return sentiment, nil
}

// Sentiment renders the aggregate as a one-line briefing for the prompt.
func (s *Service) Sentiment(ctx context.Context, symbol string) (string, error) {
	sentiment, err := s.GetSentiment(ctx, symbol)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s (score %.2f, %d articles, confidence %.2f): %s",
		sentiment.OverallSentiment, sentiment.OverallScore, sentiment.ArticleCount,
		sentiment.Confidence, sentiment.Summary), nil
}

func (s *Service) fetchFreshSentiment(ctx context.Context, symbol string) (types.NewsSentiment, error) {
	articles, err := s.scraper.ScrapeNews(ctx, symbol, s.cfg.MaxArticles)
	if err != nil {
		return types.NewsSentiment{}, err
	}

	if len(articles) == 0 {
		logger.Info(ctx, "No articles from primary sources, trying Google News", "symbol", symbol)
		articles, err = s.scraper.ScrapeGoogleNews(ctx, symbol, s.cfg.MaxArticles)
		if err != nil {
			logger.ErrorWithErr(ctx, "Google News fallback failed", err, "symbol", symbol)
		}
	}

	return s.analyzer.AnalyzeMultipleArticles(ctx, symbol, articles)
}

// RefreshSentiment bypasses the cache.
func (s *Service) RefreshSentiment(ctx context.Context, symbol string) (types.NewsSentiment, error) {
	sentiment, err := s.fetchFreshSentiment(ctx, symbol)
	if err != nil {
		return types.NewsSentiment{}, err
	}
	s.cache.set(symbol, sentiment)
	return sentiment, nil
}

// ClearCache removes all cached sentiment data.
func (s *Service) ClearCache() {
	s.cache.mu.Lock()
	defer s.cache.mu.Unlock()
	s.cache.data = make(map[string]*cacheEntry)
}

// GetCachedSymbols returns the symbols with cached sentiment.
func (s *Service) GetCachedSymbols() []string {
	s.cache.mu.RLock()
	defer s.cache.mu.RUnlock()

	symbols := make([]string, 0, len(s.cache.data))
	for symbol := range s.cache.data {
		symbols = append(symbols, symbol)
	}
	return symbols
}
