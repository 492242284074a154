package coingecko

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"recall-trader/internal/interfaces"
	"recall-trader/internal/types"
)

const DefaultBaseURL = "https://api.coingecko.com"

// Client fetches price/volume history from the CoinGecko market chart API.
type Client struct {
	http   *resty.Client
	apiKey string
}

var _ interfaces.MarketDataSource = (*Client)(nil)

func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	client := resty.New()
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)

	return &Client{
		http:   client,
		apiKey: os.Getenv("COINGECKO_API_KEY"),
	}
}

// marketChart is the subset of the market_chart response we consume.
// Each inner pair is [epoch ms, value].
type marketChart struct {
	Prices       [][]float64 `json:"prices"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// GetHistory returns daily price points for an asset id (e.g. "ethereum"),
// ascending by timestamp. Prices and volumes are merged by index; the API
// reports them as parallel series.
func (c *Client) GetHistory(ctx context.Context, assetID string, days int) ([]types.PricePoint, error) {
	var chart marketChart
	req := c.http.R().
		SetContext(ctx).
		SetHeader("accept", "application/json").
		SetQueryParams(map[string]string{
			"vs_currency": "usd",
			"days":        strconv.Itoa(days),
		}).
		SetResult(&chart)
	if c.apiKey != "" {
		req.SetHeader("x-cg-demo-api-key", c.apiKey)
	}

	resp, err := req.Get(fmt.Sprintf("/api/v3/coins/%s/market_chart", assetID))
	if err != nil {
		return nil, fmt.Errorf("coingecko market_chart: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("coingecko market_chart: %s", resp.Status())
	}

	points := make([]types.PricePoint, 0, len(chart.Prices))
	for i, pair := range chart.Prices {
		if len(pair) < 2 {
			continue
		}
		volume := 0.0
		if i < len(chart.TotalVolumes) && len(chart.TotalVolumes[i]) >= 2 {
			volume = chart.TotalVolumes[i][1]
		}
		points = append(points, types.PricePoint{
			Timestamp: int64(pair[0]),
			Price:     pair[1],
			Volume:    volume,
		})
	}
	return points, nil
}
