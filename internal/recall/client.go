package recall

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"

	"recall-trader/internal/interfaces"
	"recall-trader/internal/types"
)

// Client talks to the Recall Network competition API. It serves both the
// portfolio side (balances, trades, portfolio) and the execution side
// (swap submission). In dry-run mode Execute never hits the network and
// returns a simulated fill instead.
type Client struct {
	http              *resty.Client
	slippageTolerance string
	dryRun            bool
	tokens            map[string]string // symbol -> chain address
}

var (
	_ interfaces.PortfolioSource = (*Client)(nil)
	_ interfaces.TradeExecutor   = (*Client)(nil)
)

type Options struct {
	BaseURL           string
	APIToken          string
	SlippageTolerance string
	DryRun            bool
	Tokens            map[string]string // symbol -> chain address
}

func NewClient(opts Options) *Client {
	client := resty.New()
	client.SetBaseURL(opts.BaseURL)
	client.SetTimeout(30 * time.Second)
	client.SetHeader("Content-Type", "application/json")
	client.SetAuthToken(opts.APIToken)

	slippage := opts.SlippageTolerance
	if slippage == "" {
		slippage = "1.0"
	}
	return &Client{http: client, slippageTolerance: slippage, dryRun: opts.DryRun, tokens: opts.Tokens}
}

// resolveToken maps a symbol to its chain address. Unknown symbols pass
// through unchanged so the API can reject them with a real error.
func (c *Client) resolveToken(symbol string) string {
	if addr, ok := c.tokens[symbol]; ok {
		return addr
	}
	return symbol
}

type portfolioResponse struct {
	Success    bool                 `json:"success"`
	TotalValue *float64             `json:"totalValue"`
	Tokens     []types.TokenBalance `json:"tokens"`
}

type balancesResponse struct {
	Success  bool                 `json:"success"`
	Balances []types.TokenBalance `json:"balances"`
}

type tradesResponse struct {
	Success bool          `json:"success"`
	Trades  []types.Trade `json:"trades"`
}

type executeRequest struct {
	FromToken         string `json:"fromToken"`
	ToToken           string `json:"toToken"`
	Amount            string `json:"amount"`
	Reason            string `json:"reason"`
	SlippageTolerance string `json:"slippageTolerance"`
	FromChain         string `json:"fromChain"`
	ToChain           string `json:"toChain"`
}

type executeResponse struct {
	Success     bool   `json:"success"`
	Error       string `json:"error"`
	Transaction struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"transaction"`
}

// GetPortfolio returns the account snapshot with real-time valuations. The
// trade history is fetched alongside so one call yields the full
// PortfolioState the cycle needs.
func (c *Client) GetPortfolio(ctx context.Context) (types.PortfolioState, error) {
	var body portfolioResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&body).Get("/api/agent/portfolio")
	if err != nil {
		return types.PortfolioState{}, fmt.Errorf("recall portfolio: %w", err)
	}
	if resp.IsError() {
		return types.PortfolioState{}, fmt.Errorf("recall portfolio: %s", resp.Status())
	}

	trades, err := c.GetTrades(ctx)
	if err != nil {
		return types.PortfolioState{}, err
	}
	return types.PortfolioState{
		TotalValue: body.TotalValue,
		Tokens:     body.Tokens,
		Trades:     trades,
	}, nil
}

func (c *Client) GetBalances(ctx context.Context) (map[string]float64, error) {
	var body balancesResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&body).Get("/api/agent/balances")
	if err != nil {
		return nil, fmt.Errorf("recall balances: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("recall balances: %s", resp.Status())
	}

	out := make(map[string]float64, len(body.Balances))
	for _, b := range body.Balances {
		out[b.Symbol] = b.Amount
	}
	return out, nil
}

func (c *Client) GetTrades(ctx context.Context) ([]types.Trade, error) {
	var body tradesResponse
	resp, err := c.http.R().SetContext(ctx).SetResult(&body).Get("/api/agent/trades")
	if err != nil {
		return nil, fmt.Errorf("recall trades: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("recall trades: %s", resp.Status())
	}
	return body.Trades, nil
}

// Execute submits one swap. Dry-run mode short-circuits with a simulated
// receipt so the rest of the pipeline behaves identically in both modes.
func (c *Client) Execute(ctx context.Context, fromToken, toToken string, amountUSD float64, reason string) (types.OrderReceipt, error) {
	if c.dryRun {
		return types.OrderReceipt{
			OrderID: "dry-" + uuid.NewString(),
			Status:  "simulated",
		}, nil
	}

	payload := executeRequest{
		FromToken:         c.resolveToken(fromToken),
		ToToken:           c.resolveToken(toToken),
		Amount:            strconv.FormatFloat(amountUSD, 'f', -1, 64),
		Reason:            reason,
		SlippageTolerance: c.slippageTolerance,
		FromChain:         "evm",
		ToChain:           "evm",
	}

	var body executeResponse
	resp, err := c.http.R().SetContext(ctx).SetBody(payload).SetResult(&body).SetError(&body).
		Post("/api/trade/execute")
	if err != nil {
		return types.OrderReceipt{}, fmt.Errorf("recall execute: %w", err)
	}
	if resp.IsError() || !body.Success {
		msg := body.Error
		if msg == "" {
			msg = resp.Status()
		}
		return types.OrderReceipt{}, fmt.Errorf("recall execute: %s", msg)
	}
	return types.OrderReceipt{OrderID: body.Transaction.ID, Status: body.Transaction.Status}, nil
}

// Quote is an indicative price for a prospective swap.
type Quote struct {
	FromToken      string  `json:"fromToken"`
	ToToken        string  `json:"toToken"`
	FromAmount     float64 `json:"fromAmount"`
	ToAmount       float64 `json:"toAmount"`
	TradeAmountUSD float64 `json:"tradeAmountUsd"`
}

// GetQuote fetches an indicative quote without committing a trade.
func (c *Client) GetQuote(ctx context.Context, fromToken, toToken string, amountUSD float64) (Quote, error) {
	var body Quote
	resp, err := c.http.R().SetContext(ctx).
		SetQueryParam("fromToken", c.resolveToken(fromToken)).
		SetQueryParam("toToken", c.resolveToken(toToken)).
		SetQueryParam("amount", strconv.FormatFloat(amountUSD, 'f', -1, 64)).
		SetResult(&body).
		Get("/api/trade/quote")
	if err != nil {
		return Quote{}, fmt.Errorf("recall quote: %w", err)
	}
	if resp.IsError() {
		return Quote{}, fmt.Errorf("recall quote: %s", resp.Status())
	}
	return body, nil
}
