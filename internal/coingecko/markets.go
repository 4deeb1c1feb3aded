package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/Lutefd/coin-relay/internal/model"
)

const (
	EndpointGlobal  = "global"
	EndpointMarkets = "coins/markets"
)

func CoinEndpoint(id string) string {
	return "coins/" + id
}

func MarketChartEndpoint(id string) string {
	return "coins/" + id + "/market_chart"
}

// MarketsParams are the query parameters for the top coins by market cap.
func MarketsParams(limit int) url.Values {
	return url.Values{
		"vs_currency": {"usd"},
		"order":       {"market_cap_desc"},
		"per_page":    {strconv.Itoa(limit)},
		"page":        {"1"},
		"sparkline":   {"false"},
	}
}

func MarketChartParams(days int) url.Values {
	return url.Values{
		"vs_currency": {"usd"},
		"days":        {strconv.Itoa(days)},
	}
}

func TopCoins(ctx context.Context, f Fetcher, limit int) ([]model.CryptoCurrency, error) {
	var coins []model.CryptoCurrency
	if err := fetchJSON(ctx, f, EndpointMarkets, MarketsParams(limit), &coins); err != nil {
		return nil, fmt.Errorf("failed to fetch top coins: %w", err)
	}
	return coins, nil
}

func CoinDetails(ctx context.Context, f Fetcher, id string) (*model.CoinDetails, error) {
	var details model.CoinDetails
	if err := fetchJSON(ctx, f, CoinEndpoint(id), nil, &details); err != nil {
		return nil, fmt.Errorf("failed to fetch coin details for %s: %w", id, err)
	}
	return &details, nil
}

func Global(ctx context.Context, f Fetcher) (*model.GlobalData, error) {
	var resp model.GlobalResponse
	if err := fetchJSON(ctx, f, EndpointGlobal, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch global data: %w", err)
	}
	return &resp.Data, nil
}

func MarketChart(ctx context.Context, f Fetcher, id string, days int) (*model.MarketChart, error) {
	var chart model.MarketChart
	if err := fetchJSON(ctx, f, MarketChartEndpoint(id), MarketChartParams(days), &chart); err != nil {
		return nil, fmt.Errorf("failed to fetch market chart for %s: %w", id, err)
	}
	return &chart, nil
}

func (c *Client) TopCoins(ctx context.Context, limit int) ([]model.CryptoCurrency, error) {
	return TopCoins(ctx, c, limit)
}

func (c *Client) CoinDetails(ctx context.Context, id string) (*model.CoinDetails, error) {
	return CoinDetails(ctx, c, id)
}

func (c *Client) Global(ctx context.Context) (*model.GlobalData, error) {
	return Global(ctx, c)
}

func (c *Client) MarketChart(ctx context.Context, id string, days int) (*model.MarketChart, error) {
	return MarketChart(ctx, c, id, days)
}

func fetchJSON(ctx context.Context, f Fetcher, endpoint string, params url.Values, v interface{}) error {
	body, err := f.Fetch(ctx, endpoint, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
