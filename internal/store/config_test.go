package store

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestLoadConfigDefaults(t *testing.T) {
	p := writeConfig(t, `
mode: DRY_RUN
assets:
  - symbol: ETH
    market_id: ethereum
    pair: ETH/USDC
    name: ETHEREUM
  - symbol: SOL
    market_id: solana
    pair: SOL/USDC
    name: SOLANA
`)

	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("expected config to load, got %v", err)
	}

	if cfg.PollSeconds != 900 {
		t.Errorf("expected default poll_seconds 900, got %d", cfg.PollSeconds)
	}
	if cfg.HistoryDays != 30 {
		t.Errorf("expected default history_days 30, got %d", cfg.HistoryDays)
	}
	if cfg.Indicators.RSIPeriod != 14 || cfg.Indicators.EMAPeriod != 21 {
		t.Errorf("expected indicator defaults 14/21, got %d/%d",
			cfg.Indicators.RSIPeriod, cfg.Indicators.EMAPeriod)
	}
	if len(cfg.Stablecoins) != 2 || cfg.Stablecoins[0] != "USDC" {
		t.Errorf("expected default stablecoins [USDC USDbC], got %v", cfg.Stablecoins)
	}
	if cfg.BaseStablecoin != "USDC" {
		t.Errorf("expected default base stablecoin USDC, got %s", cfg.BaseStablecoin)
	}
	if cfg.Rules.MaxRiskPerTradePct != 2 {
		t.Errorf("expected default max risk 2%%, got %.2f", cfg.Rules.MaxRiskPerTradePct)
	}
	if cfg.Recall.Tokens["ETH"] == "" || cfg.Recall.Tokens["USDC"] == "" {
		t.Errorf("expected default token addresses, got %v", cfg.Recall.Tokens)
	}
}

func TestLoadConfigInvalidMode(t *testing.T) {
	p := writeConfig(t, `
mode: YOLO
assets:
  - symbol: ETH
    market_id: ethereum
`)

	if _, err := LoadConfig(p); err == nil {
		t.Fatal("expected validation error for invalid mode")
	}
}

func TestLoadConfigMissingAssets(t *testing.T) {
	p := writeConfig(t, "mode: DRY_RUN\n")

	// Defaults fill in the ETH/SOL pair when assets are omitted entirely.
	cfg, err := LoadConfig(p)
	if err != nil {
		t.Fatalf("expected defaults to apply, got %v", err)
	}
	if len(cfg.Assets) != 2 || cfg.Assets[0].Symbol != "ETH" || cfg.Assets[1].Symbol != "SOL" {
		t.Errorf("expected default ETH/SOL assets, got %v", cfg.Assets)
	}
}

func TestLoadConfigAssetNeedsMarketID(t *testing.T) {
	p := writeConfig(t, `
mode: LIVE
assets:
  - symbol: ETH
`)

	if _, err := LoadConfig(p); err == nil {
		t.Fatal("expected validation error for asset without market_id")
	}
}
