package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"recall-trader/internal/interfaces"
	"recall-trader/internal/logger"
	"recall-trader/internal/marketdata/coingecko"
	"recall-trader/internal/news"
	"recall-trader/internal/oracle"
	"recall-trader/internal/oracle/oracleobs"
	"recall-trader/internal/pipeline"
	"recall-trader/internal/recall"
	"recall-trader/internal/recall/recallobs"
	"recall-trader/internal/store"
	"recall-trader/internal/trace"
	"recall-trader/internal/tradelog"
)

// initializeSystem initializes env, logger, and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig(configPath)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old tradelog files if retention is configured
func compressOldLogs(ctx context.Context) {
	if v := os.Getenv("TRADER_LOG_RETENTION_DAYS"); v != "" {
		var n int
		fmt.Sscanf(v, "%d", &n)
		if err := tradelog.CompressOlder(n); err != nil {
			logger.Warn(ctx, "Failed to compress old logs", "error", err)
		}
	}
}

// initializeRecall builds the Recall client used for both the portfolio
// side and the execution side, wrapped with observability
func initializeRecall(ctx context.Context, cfg *store.Config) (interfaces.PortfolioSource, interfaces.TradeExecutor) {
	client := recall.NewClient(recall.Options{
		BaseURL:           cfg.Recall.BaseURL,
		APIToken:          os.Getenv("RECALL_API_TOKEN"),
		SlippageTolerance: cfg.Recall.SlippageTolerance,
		DryRun:            cfg.Mode == "DRY_RUN",
		Tokens:            cfg.Recall.Tokens,
	})

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - trades will be simulated")
	}

	return recallobs.WrapPortfolio(client), recallobs.WrapExecutor(client)
}

// initializeOracle initializes the decision oracle with observability
func initializeOracle(ctx context.Context, cfg *store.Config) interfaces.DecisionOracle {
	var o interfaces.DecisionOracle

	switch cfg.Oracle.Provider {
	case "GROQ":
		o = oracle.NewGroqOracle(cfg)
	default:
		o = oracle.NewNoopOracle()
		logger.Warn(ctx, "No oracle provider configured - decisions fall back to HOLD")
	}

	return oracleobs.Wrap(o)
}

// initializeSentiment builds the news sentiment service, or nil when disabled
func initializeSentiment(cfg *store.Config, o interfaces.DecisionOracle) interfaces.SentimentSource {
	if !cfg.News.Enabled {
		return nil
	}
	return news.NewService(o, &news.ServiceConfig{
		MaxArticles:    cfg.News.MaxArticles,
		CacheDuration:  time.Duration(cfg.News.CacheMinutes) * time.Minute,
		ScraperTimeout: 30 * time.Second,
		Enabled:        true,
	})
}

// initializeRunner wires every collaborator into the pipeline runner
func initializeRunner(ctx context.Context, cfg *store.Config) *pipeline.Runner {
	market := coingecko.NewClient(coingecko.DefaultBaseURL)
	portfolio, executor := initializeRecall(ctx, cfg)
	o := initializeOracle(ctx, cfg)
	sentiment := initializeSentiment(cfg, o)

	return pipeline.NewRunner(cfg, market, portfolio, o, executor, sentiment)
}
