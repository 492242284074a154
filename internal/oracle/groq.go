package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"recall-trader/internal/logger"
	"recall-trader/internal/store"
)

const defaultModel = "llama-3.3-70b-versatile"

const defaultSystem = `You are a professional cryptocurrency trading agent specializing in ETH and SOL pairs. Your goal is to maximize risk-adjusted returns using a hybrid momentum and mean-reversion strategy, while strictly adhering to risk management rules.

CORE PRINCIPLES:
- Never risk more than 2% of portfolio value on any single trade.
- Use technical analysis (RSI, EMA, Bollinger Bands, volume) for all decisions.
- Position sizes must be conservative (10-15% of available capital per trade).
- Only trade when high-probability setups are present.
- Always provide clear, concise reasoning for every action.
- Wait for confirmation and avoid impulsive trades.
- Pause trading during extreme volatility or API/data failures.

RESPONSE FORMAT:
Always respond with: ACTION|AMOUNT|REASONING|RISK_LEVEL
- ACTION: BUY/SELL/HOLD/EXIT
- AMOUNT: Specific dollar amount or percentage
- REASONING: 1-2 sentence explanation referencing technical indicators and risk
- RISK_LEVEL: LOW/MEDIUM/HIGH

EXAMPLES:
BUY|$1000|RSI is 28, price below lower Bollinger Band, trend flattening. Low risk, mean reversion setup.|LOW
SELL|50%|RSI above 70, volume spike, price above upper Bollinger Band. Taking profits on momentum.|MEDIUM
HOLD|--|No clear setup, indicators mixed. Waiting for confirmation.|LOW

Always follow the above rules and format. If data is missing or unclear, skip trading for that cycle.`

// GroqOracle calls the Groq OpenAI-compatible chat completions API and
// returns the raw assistant text.
type GroqOracle struct {
	cfg      *store.Config
	endpoint string
}

func NewGroqOracle(cfg *store.Config) *GroqOracle {
	endpoint := "https://api.groq.com/openai/v1/chat/completions"
	// For proxies set endpoint via GROQ_API_ENDPOINT env var
	if ep := os.Getenv("GROQ_API_ENDPOINT"); ep != "" {
		endpoint = ep
	}
	return &GroqOracle{cfg: cfg, endpoint: endpoint}
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (o *GroqOracle) Generate(ctx context.Context, prompt string) (string, error) {
	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		err := errors.New("GROQ_API_KEY missing")
		logger.ErrorWithErr(ctx, "Groq API key not configured", err)
		return "", err
	}

	model := o.cfg.Oracle.Model
	if model == "" {
		model = defaultModel
	}
	system := o.cfg.Oracle.System
	if system == "" {
		system = defaultSystem
	}
	maxTokens := o.cfg.Oracle.MaxTokens
	if maxTokens == 0 {
		maxTokens = 512
	}

	reqBody := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": system},
			{"role": "user", "content": prompt},
		},
		"max_tokens":  maxTokens,
		"temperature": o.cfg.Oracle.Temperature,
	}

	bb, _ := json.Marshal(reqBody)
	logger.Debug(ctx, "Sending request to Groq", "model", model, "endpoint", o.endpoint)
	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.endpoint, bytes.NewReader(bb))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	latency := time.Since(start)
	if err != nil {
		logger.ErrorWithErr(ctx, "Groq API request failed", err, "latency_ms", latency.Milliseconds())
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("groq http %d: %s", resp.StatusCode, string(body))
		logger.ErrorWithErr(ctx, "Groq API returned error status", err, "status_code", resp.StatusCode)
		return "", err
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		logger.ErrorWithErr(ctx, "Failed to decode Groq response", err)
		return "", err
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("groq response has no choices")
	}

	text := parsed.Choices[0].Message.Content
	logger.Debug(ctx, "Groq response received",
		"latency_ms", latency.Milliseconds(), "response_length", len(text))
	return text, nil
}
