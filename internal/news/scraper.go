package news

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"

	"recall-trader/internal/logger"
	"recall-trader/internal/types"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Scraper collects crypto headlines from multiple sources.
type Scraper struct {
	sources []NewsSource
	timeout time.Duration
}

// NewsSource defines one news source configuration.
type NewsSource struct {
	Name       string
	BaseURL    string
	SearchPath string // e.g. "/tag/{query}"
	Selectors  ArticleSelectors
	RateLimit  time.Duration
}

// ArticleSelectors defines the CSS selectors for extracting article data.
type ArticleSelectors struct {
	ArticleContainer string
	Title            string
	URL              string
	Content          string
	PublishedAt      string
}

func NewScraper(timeout time.Duration) *Scraper {
	return &Scraper{
		sources: getDefaultSources(),
		timeout: timeout,
	}
}

func getDefaultSources() []NewsSource {
	return []NewsSource{
		{
			Name:       "CoinDesk",
			BaseURL:    "https://www.coindesk.com",
			SearchPath: "/tag/{query}",
			Selectors: ArticleSelectors{
				ArticleContainer: "div.article-cardstyles__StyledWrapper-sc-q1x8lc-0, article",
				Title:            "h2 a, h3 a, h6 a",
				URL:              "h2 a, h3 a, h6 a",
				Content:          "p",
				PublishedAt:      "time",
			},
			RateLimit: 2 * time.Second,
		},
		{
			Name:       "Cointelegraph",
			BaseURL:    "https://cointelegraph.com",
			SearchPath: "/tags/{query}",
			Selectors: ArticleSelectors{
				ArticleContainer: "article.post-card-inline",
				Title:            "span.post-card-inline__title",
				URL:              "a.post-card-inline__title-link",
				Content:          "p.post-card-inline__text",
				PublishedAt:      "time",
			},
			RateLimit: 2 * time.Second,
		},
	}
}

// queryFor maps an asset symbol to the tag/search term the sources use.
func queryFor(symbol string) string {
	switch strings.ToUpper(symbol) {
	case "ETH":
		return "ethereum"
	case "SOL":
		return "solana"
	default:
		return strings.ToLower(symbol)
	}
}

// ScrapeNews fetches headlines for a symbol from every configured source.
// Source failures are logged and skipped; the scrape never fails outright.
func (s *Scraper) ScrapeNews(ctx context.Context, symbol string, maxArticles int) ([]types.NewsArticle, error) {
	logger.Info(ctx, "Starting news scraping", "symbol", symbol, "sources", len(s.sources))

	allArticles := []types.NewsArticle{}
	articlesPerSource := maxArticles / len(s.sources)
	if articlesPerSource < 1 {
		articlesPerSource = 1
	}

	for _, source := range s.sources {
		articles, err := s.scrapeSource(ctx, source, symbol, articlesPerSource)
		if err != nil {
			logger.ErrorWithErr(ctx, "Failed to scrape source", err, "source", source.Name, "symbol", symbol)
			continue
		}
		allArticles = append(allArticles, articles...)

		time.Sleep(source.RateLimit)
	}

	logger.Info(ctx, "News scraping completed", "symbol", symbol, "articles", len(allArticles))
	return allArticles, nil
}

func (s *Scraper) scrapeSource(ctx context.Context, source NewsSource, symbol string, maxArticles int) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains(getDomain(source.BaseURL)),
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	c.OnHTML(source.Selectors.ArticleContainer, func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}

		title := strings.TrimSpace(e.ChildText(source.Selectors.Title))
		if title == "" {
			return
		}
		articleURL := e.ChildAttr(source.Selectors.URL, "href")
		if articleURL == "" {
			return
		}
		if !strings.HasPrefix(articleURL, "http") {
			articleURL = source.BaseURL + articleURL
		}

		articles = append(articles, types.NewsArticle{
			Title:       title,
			URL:         articleURL,
			Content:     strings.TrimSpace(e.ChildText(source.Selectors.Content)),
			Source:      source.Name,
			PublishedAt: strings.TrimSpace(e.ChildText(source.Selectors.PublishedAt)),
			Symbol:      symbol,
		})
	})

	c.OnError(func(r *colly.Response, err error) {
		logger.ErrorWithErr(ctx, "Scraping error", err, "source", source.Name, "url", r.Request.URL.String())
	})

	searchURL := source.BaseURL + strings.ReplaceAll(source.SearchPath, "{query}", queryFor(symbol))
	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to visit %s: %w", searchURL, err)
	}
	c.Wait()

	return s.enrichArticles(ctx, articles), nil
}

// enrichArticles fetches body text for headlines whose listing snippet was
// too short to score.
func (s *Scraper) enrichArticles(ctx context.Context, articles []types.NewsArticle) []types.NewsArticle {
	enriched := make([]types.NewsArticle, len(articles))
	copy(enriched, articles)

	for i := range enriched {
		if len(enriched[i].Content) >= 100 {
			continue
		}
		if content := s.fetchArticleContent(ctx, enriched[i].URL); content != "" {
			enriched[i].Content = content
		}
		time.Sleep(500 * time.Millisecond)
	}
	return enriched
}

// fetchArticleContent pulls paragraph text out of an article page.
func (s *Scraper) fetchArticleContent(ctx context.Context, articleURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, articleURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", userAgent)

	client := &http.Client{Timeout: s.timeout}
	resp, err := client.Do(req)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to fetch article content", err, "url", articleURL)
		return ""
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}

	paragraphs := []string{}
	doc.Find("article p, div.article-body p, div.post-content p").Each(func(_ int, sel *goquery.Selection) {
		text := strings.TrimSpace(sel.Text())
		if len(text) > 20 {
			paragraphs = append(paragraphs, text)
		}
	})
	return strings.Join(paragraphs, "\n\n")
}

func getDomain(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// ScrapeGoogleNews is the fallback when the primary sources return nothing.
func (s *Scraper) ScrapeGoogleNews(ctx context.Context, symbol string, maxArticles int) ([]types.NewsArticle, error) {
	articles := []types.NewsArticle{}

	c := colly.NewCollector(
		colly.AllowedDomains("news.google.com", "www.google.com"),
	)
	c.SetRequestTimeout(s.timeout)

	c.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", userAgent)
	})

	c.OnHTML("article", func(e *colly.HTMLElement) {
		if len(articles) >= maxArticles {
			return
		}
		title := e.ChildText("h3, h4")
		link := e.ChildAttr("a", "href")
		if title == "" || link == "" {
			return
		}
		if strings.HasPrefix(link, "./articles/") {
			link = "https://news.google.com" + link[1:]
		}
		articles = append(articles, types.NewsArticle{
			Title:  title,
			URL:    link,
			Source: "GoogleNews",
			Symbol: symbol,
		})
	})

	searchQuery := url.QueryEscape(queryFor(symbol) + " crypto price")
	searchURL := fmt.Sprintf("https://news.google.com/search?q=%s&hl=en-US&gl=US&ceid=US:en", searchQuery)

	if err := c.Visit(searchURL); err != nil {
		return nil, fmt.Errorf("failed to scrape Google News: %w", err)
	}
	c.Wait()

	logger.Info(ctx, "Google News scraping completed", "symbol", symbol, "articles", len(articles))
	return articles, nil
}
