package store

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Asset describes one tradeable asset of the pipeline.
type Asset struct {
	Symbol   string `yaml:"symbol"`    // e.g. ETH
	MarketID string `yaml:"market_id"` // market data provider id, e.g. ethereum
	Pair     string `yaml:"pair"`      // e.g. ETH/USDC
	Name     string `yaml:"name"`      // prompt display name, e.g. ETHEREUM
}

type Config struct {
	Mode        string  `yaml:"mode"` // DRY_RUN or LIVE
	PollSeconds int     `yaml:"poll_seconds"`
	HistoryDays int     `yaml:"history_days"`
	Assets      []Asset `yaml:"assets"`

	Stablecoins    []string `yaml:"stablecoins"`
	BaseStablecoin string   `yaml:"base_stablecoin"` // execution leg, e.g. USDC

	Indicators struct {
		RSIPeriod      int     `yaml:"rsi_period"`
		EMAPeriod      int     `yaml:"ema_period"`
		BBWindow       int     `yaml:"bb_window"`
		BBStdDev       float64 `yaml:"bb_stddev"`
		ChangeLookback int     `yaml:"change_lookback"`
	} `yaml:"indicators"`

	Rules struct {
		ProfitTargetMomentumPct float64 `yaml:"profit_target_momentum_pct"`
		ProfitTargetMeanRevPct  float64 `yaml:"profit_target_meanrev_pct"`
		StopLossPct             float64 `yaml:"stop_loss_pct"`
		RSIOversold             float64 `yaml:"rsi_oversold"`
		RSIOverbought           float64 `yaml:"rsi_overbought"`
		VolumeSpikePct          float64 `yaml:"volume_spike_pct"`
		PositionMinPct          float64 `yaml:"position_min_pct"`
		PositionMaxPct          float64 `yaml:"position_max_pct"`
		MaxRiskPerTradePct      float64 `yaml:"max_risk_per_trade_pct"`
	} `yaml:"rules"`

	Oracle struct {
		Provider    string  `yaml:"provider"` // GROQ or NOOP
		Model       string  `yaml:"model"`
		MaxTokens   int     `yaml:"max_tokens"`
		Temperature float32 `yaml:"temperature"`
		System      string  `yaml:"system"`
	} `yaml:"oracle"`

	Recall struct {
		BaseURL           string            `yaml:"base_url"`
		SlippageTolerance string            `yaml:"slippage_tolerance"`
		Tokens            map[string]string `yaml:"tokens"` // symbol -> chain address
	} `yaml:"recall"`

	News struct {
		Enabled      bool `yaml:"enabled"`
		MaxArticles  int  `yaml:"max_articles"`
		CacheMinutes int  `yaml:"cache_minutes"`
	} `yaml:"news"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.Assets) == 0 {
		return errors.New("assets cannot be empty")
	}
	for _, a := range c.Assets {
		if a.Symbol == "" || a.MarketID == "" {
			return fmt.Errorf("asset entry needs symbol and market_id, got %+v", a)
		}
	}
	if len(c.Stablecoins) == 0 {
		return errors.New("stablecoins cannot be empty")
	}
	if c.Indicators.RSIPeriod <= 0 {
		return fmt.Errorf("indicators.rsi_period must be positive, got %d", c.Indicators.RSIPeriod)
	}
	if c.Indicators.BBStdDev <= 0 {
		return fmt.Errorf("indicators.bb_stddev must be positive, got %.2f", c.Indicators.BBStdDev)
	}
	if c.Rules.MaxRiskPerTradePct <= 0 || c.Rules.MaxRiskPerTradePct > 100 {
		return fmt.Errorf("rules.max_risk_per_trade_pct must be between 0-100, got %.2f", c.Rules.MaxRiskPerTradePct)
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	applyDefaults(&c)
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func applyDefaults(c *Config) {
	if c.PollSeconds == 0 {
		c.PollSeconds = 900
	}
	if c.HistoryDays == 0 {
		c.HistoryDays = 30
	}
	if len(c.Assets) == 0 {
		c.Assets = []Asset{
			{Symbol: "ETH", MarketID: "ethereum", Pair: "ETH/USDC", Name: "ETHEREUM"},
			{Symbol: "SOL", MarketID: "solana", Pair: "SOL/USDC", Name: "SOLANA"},
		}
	}
	if len(c.Stablecoins) == 0 {
		c.Stablecoins = []string{"USDC", "USDbC"}
	}
	if c.BaseStablecoin == "" {
		c.BaseStablecoin = "USDC"
	}
	if c.Indicators.RSIPeriod == 0 {
		c.Indicators.RSIPeriod = 14
	}
	if c.Indicators.EMAPeriod == 0 {
		c.Indicators.EMAPeriod = 21
	}
	if c.Indicators.BBWindow == 0 {
		c.Indicators.BBWindow = 20
	}
	if c.Indicators.BBStdDev == 0 {
		c.Indicators.BBStdDev = 2
	}
	if c.Indicators.ChangeLookback == 0 {
		c.Indicators.ChangeLookback = 24
	}
	if c.Rules.ProfitTargetMomentumPct == 0 {
		c.Rules.ProfitTargetMomentumPct = 3
	}
	if c.Rules.ProfitTargetMeanRevPct == 0 {
		c.Rules.ProfitTargetMeanRevPct = 2
	}
	if c.Rules.StopLossPct == 0 {
		c.Rules.StopLossPct = 2
	}
	if c.Rules.RSIOversold == 0 {
		c.Rules.RSIOversold = 30
	}
	if c.Rules.RSIOverbought == 0 {
		c.Rules.RSIOverbought = 70
	}
	if c.Rules.VolumeSpikePct == 0 {
		c.Rules.VolumeSpikePct = 150
	}
	if c.Rules.PositionMinPct == 0 {
		c.Rules.PositionMinPct = 10
	}
	if c.Rules.PositionMaxPct == 0 {
		c.Rules.PositionMaxPct = 15
	}
	if c.Rules.MaxRiskPerTradePct == 0 {
		c.Rules.MaxRiskPerTradePct = 2
	}
	if c.Recall.BaseURL == "" {
		c.Recall.BaseURL = "https://api.competitions.recall.network"
	}
	if c.Recall.SlippageTolerance == "" {
		c.Recall.SlippageTolerance = "1.0"
	}
	if len(c.Recall.Tokens) == 0 {
		c.Recall.Tokens = map[string]string{
			"ETH":   "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2", // WETH, Ethereum mainnet
			"SOL":   "So11111111111111111111111111111111111111112",
			"USDC":  "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
			"USDbC": "0xd9aAEc86B65D86f6A7B5B1b0c42FFA531710b6CA", // Base
		}
	}
	if c.News.MaxArticles == 0 {
		c.News.MaxArticles = 10
	}
	if c.News.CacheMinutes == 0 {
		c.News.CacheMinutes = 60
	}
}
