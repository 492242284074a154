package pipeline

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"

	"recall-trader/internal/decision"
	"recall-trader/internal/interfaces"
	"recall-trader/internal/logger"
	"recall-trader/internal/store"
	"recall-trader/internal/summary"
	"recall-trader/internal/ta"
	"recall-trader/internal/trace"
	"recall-trader/internal/tradelog"
	"recall-trader/internal/types"
	"recall-trader/pkg/id"
)

const (
	StatusOK             = "ok"
	StatusExecutionError = "execution_error"
)

// Runner sequences one trading cycle: fetch market data, compute
// indicators, summarize, fetch portfolio, decide per asset, risk check,
// execute, log, finalize. Stages run strictly in order and each stage is
// total: upstream failures degrade to safe defaults (empty series, empty
// portfolio, HOLD) instead of aborting the cycle. The runner is not
// re-entrant; the caller serializes cycle invocations.
type Runner struct {
	cfg        *store.Config
	market     interfaces.MarketDataSource
	portfolio  interfaces.PortfolioSource
	sentiment  interfaces.SentimentSource // optional
	builder    *decision.RequestBuilder
	dispatcher *Dispatcher
	summarizer *summary.PortfolioSummarizer
}

func NewRunner(
	cfg *store.Config,
	market interfaces.MarketDataSource,
	portfolio interfaces.PortfolioSource,
	oracle interfaces.DecisionOracle,
	executor interfaces.TradeExecutor,
	sentiment interfaces.SentimentSource,
) *Runner {
	return &Runner{
		cfg:        cfg,
		market:     market,
		portfolio:  portfolio,
		sentiment:  sentiment,
		builder:    decision.NewRequestBuilder(cfg, oracle),
		dispatcher: NewDispatcher(executor, cfg.BaseStablecoin),
		summarizer: summary.NewPortfolioSummarizer(cfg.Stablecoins),
	}
}

// Run executes one full cycle and returns the accumulated record. Stages
// pass the record by value and return an extended copy; nothing set by an
// earlier stage is erased later.
func (r *Runner) Run(ctx context.Context) types.CycleRecord {
	ctx, span := trace.StartSpan(ctx, "pipeline.Run")
	defer span.End()

	rec := types.CycleRecord{
		CycleID:   uuid.NewString(),
		StartedAt: time.Now().UnixMilli(),
	}
	logger.Info(ctx, "Cycle started", "cycle_id", rec.CycleID)

	rec = r.fetchMarketData(ctx, rec)
	rec = r.computeIndicators(rec)
	rec = r.summarize(rec)
	rec = r.fetchSentiment(ctx, rec)
	rec = r.fetchPortfolio(ctx, rec)
	rec = r.summarizePortfolio(rec)
	for _, asset := range r.cfg.Assets {
		rec = r.decideAsset(ctx, rec, asset)
	}
	rec = r.riskCheck(ctx, rec)
	rec = r.execute(ctx, rec)
	rec = r.logCycle(ctx, rec)
	return r.finalize(ctx, rec)
}

// cloneAssets copies the asset slice so a stage can append fields without
// mutating the record its caller still holds.
func cloneAssets(rec types.CycleRecord) types.CycleRecord {
	assets := make([]types.AssetCycle, len(rec.Assets))
	copy(assets, rec.Assets)
	rec.Assets = assets
	return rec
}

func (r *Runner) fetchMarketData(ctx context.Context, rec types.CycleRecord) types.CycleRecord {
	rec = cloneAssets(rec)
	for _, asset := range r.cfg.Assets {
		history, err := r.market.GetHistory(ctx, asset.MarketID, r.cfg.HistoryDays)
		if err != nil {
			logger.Warn(ctx, "Market data unavailable, continuing with empty series",
				"symbol", asset.Symbol, "error", err.Error())
			history = nil
		}
		rec.Assets = append(rec.Assets, types.AssetCycle{Symbol: asset.Symbol, History: history})
	}
	return rec
}

func (r *Runner) computeIndicators(rec types.CycleRecord) types.CycleRecord {
	rec = cloneAssets(rec)
	ind := r.cfg.Indicators
	for i := range rec.Assets {
		prices := make([]float64, len(rec.Assets[i].History))
		volumes := make([]float64, len(rec.Assets[i].History))
		for j, p := range rec.Assets[i].History {
			prices[j] = p.Price
			volumes[j] = p.Volume
		}

		ema21 := math.NaN()
		if series := ta.EMA(prices, ind.EMAPeriod); len(series) > 0 {
			ema21 = series[len(series)-1]
		}
		upper, lower, middle, position := ta.Bollinger(prices, ind.BBWindow, ind.BBStdDev)

		rec.Assets[i].Indicators = types.IndicatorSet{
			RSI:            ta.RSI(prices, ind.RSIPeriod),
			EMA21:          ema21,
			Bollinger:      types.Bands{Upper: upper, Lower: lower, Middle: middle, Position: position},
			PriceChange24h: ta.PeriodReturn(prices, ind.ChangeLookback),
			VolumeRatio:    ta.VolumeRatio(volumes),
		}
	}
	return rec
}

func (r *Runner) summarize(rec types.CycleRecord) types.CycleRecord {
	rec = cloneAssets(rec)
	for i := range rec.Assets {
		rec.Assets[i].Summary = summary.FormatMarket(rec.Assets[i].Symbol, rec.Assets[i].Indicators)
	}
	return rec
}

func (r *Runner) fetchSentiment(ctx context.Context, rec types.CycleRecord) types.CycleRecord {
	if r.sentiment == nil {
		return rec
	}
	rec = cloneAssets(rec)
	for i := range rec.Assets {
		text, err := r.sentiment.Sentiment(ctx, rec.Assets[i].Symbol)
		if err != nil {
			logger.Warn(ctx, "Sentiment unavailable, omitting",
				"symbol", rec.Assets[i].Symbol, "error", err.Error())
			continue
		}
		rec.Assets[i].Sentiment = text
	}
	return rec
}

func (r *Runner) fetchPortfolio(ctx context.Context, rec types.CycleRecord) types.CycleRecord {
	state, err := r.portfolio.GetPortfolio(ctx)
	if err != nil {
		logger.Warn(ctx, "Portfolio unavailable, continuing with empty state", "error", err.Error())
		state = types.PortfolioState{}
	}
	rec.Portfolio = state
	return rec
}

func (r *Runner) summarizePortfolio(rec types.CycleRecord) types.CycleRecord {
	text, cash, open := r.summarizer.Summarize(rec.Portfolio)
	rec.PortfolioSummary = text
	rec.AvailableCash = cash
	rec.OpenPositions = open
	return rec
}

func (r *Runner) decideAsset(ctx context.Context, rec types.CycleRecord, asset store.Asset) types.CycleRecord {
	rec = cloneAssets(rec)
	a := rec.Asset(asset.Symbol)
	if a == nil {
		return rec
	}

	raw := r.builder.Decide(ctx, decision.PromptInput{
		Asset:            asset,
		MarketSummary:    a.Summary,
		PortfolioSummary: rec.PortfolioSummary,
		Sentiment:        a.Sentiment,
		OpenPositions:    rec.OpenPositions,
		AvailableCash:    rec.AvailableCash,
	})
	a.Decision = raw
	a.Proposal = decision.Parse(raw)
	logger.Decision(ctx, a.Symbol, a.Proposal.Action, a.Proposal.Amount, a.Proposal.RiskLevel, a.Proposal.Reasoning)
	return rec
}

func (r *Runner) riskCheck(ctx context.Context, rec types.CycleRecord) types.CycleRecord {
	rec = cloneAssets(rec)
	for i := range rec.Assets {
		a := &rec.Assets[i]
		a.Approved = Approve(a.Proposal, rec.AvailableCash)
		if a.Approved == nil && (a.Proposal.Action == "BUY" || a.Proposal.Action == "SELL") {
			logger.Risk(ctx, a.Symbol, "proposal_rejected",
				"amount", a.Proposal.Amount, "available_cash", rec.AvailableCash)
		}
	}
	return rec
}

func (r *Runner) execute(ctx context.Context, rec types.CycleRecord) types.CycleRecord {
	rec = cloneAssets(rec)
	for i := range rec.Assets {
		a := &rec.Assets[i]
		a.Result = r.dispatcher.Dispatch(ctx, a.Symbol, a.Approved)
	}
	return rec
}

func (r *Runner) logCycle(ctx context.Context, rec types.CycleRecord) types.CycleRecord {
	rec.LogID = id.New()
	if err := tradelog.AppendCycle(rec.LogID, rec); err != nil {
		logger.Warn(ctx, "Cycle log append failed", "log_id", rec.LogID, "error", err.Error())
	}
	return rec
}

func (r *Runner) finalize(ctx context.Context, rec types.CycleRecord) types.CycleRecord {
	rec.Status = StatusOK
	for i := range rec.Assets {
		if res := rec.Assets[i].Result; res != nil && !res.Success {
			rec.Status = StatusExecutionError
			break
		}
	}
	logger.Info(ctx, "Cycle complete",
		"cycle_id", rec.CycleID, "log_id", rec.LogID, "status", rec.Status)
	return rec
}
