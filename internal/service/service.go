package service

import (
	"context"

	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/Lutefd/coin-relay/internal/relay"
)

type RelayServiceInterface interface {
	Get(ctx context.Context, req relay.Request) (relay.Result, error)
}

type MarketServiceInterface interface {
	Global(ctx context.Context) (*model.GlobalData, error)
	TopCoins(ctx context.Context, limit int) ([]model.CryptoCurrency, error)
	Coin(ctx context.Context, id string) (*model.CoinDetails, error)
	Overview(ctx context.Context) (*model.Overview, error)
	Chart(ctx context.Context, id string, timeRange model.TimeRange, chartType model.ChartType) ([]model.ChartSeries, error)
	History(ctx context.Context, coinID string, limit int) ([]model.MarketSnapshot, error)
}

type AdminServiceInterface interface {
	ClearQueue() int
	PurgeCache(ctx context.Context, req relay.Request) error
	Stats() model.RelayStats
}

type UserServiceInterface interface {
	GetByUsername(ctx context.Context, username string) (model.User, error)
	GetByAPIKey(ctx context.Context, apiKey string) (model.User, error)
	Authenticate(ctx context.Context, username, password string) (model.User, error)
	Create(ctx context.Context, username, password string, role model.Role) (model.User, error)
}
