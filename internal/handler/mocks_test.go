package handler_test

import (
	"context"

	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/Lutefd/coin-relay/internal/relay"
	"github.com/stretchr/testify/mock"
)

type MockRelayService struct {
	mock.Mock
}

func (m *MockRelayService) Get(ctx context.Context, req relay.Request) (relay.Result, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(relay.Result), args.Error(1)
}

type MockMarketService struct {
	mock.Mock
}

func (m *MockMarketService) Global(ctx context.Context) (*model.GlobalData, error) {
	args := m.Called(ctx)
	return args.Get(0).(*model.GlobalData), args.Error(1)
}

func (m *MockMarketService) TopCoins(ctx context.Context, limit int) ([]model.CryptoCurrency, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]model.CryptoCurrency), args.Error(1)
}

func (m *MockMarketService) Coin(ctx context.Context, id string) (*model.CoinDetails, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(*model.CoinDetails), args.Error(1)
}

func (m *MockMarketService) Overview(ctx context.Context) (*model.Overview, error) {
	args := m.Called(ctx)
	return args.Get(0).(*model.Overview), args.Error(1)
}

func (m *MockMarketService) Chart(ctx context.Context, id string, timeRange model.TimeRange, chartType model.ChartType) ([]model.ChartSeries, error) {
	args := m.Called(ctx, id, timeRange, chartType)
	return args.Get(0).([]model.ChartSeries), args.Error(1)
}

func (m *MockMarketService) History(ctx context.Context, coinID string, limit int) ([]model.MarketSnapshot, error) {
	args := m.Called(ctx, coinID, limit)
	return args.Get(0).([]model.MarketSnapshot), args.Error(1)
}

type MockAdminService struct {
	mock.Mock
}

func (m *MockAdminService) ClearQueue() int {
	return m.Called().Int(0)
}

func (m *MockAdminService) PurgeCache(ctx context.Context, req relay.Request) error {
	return m.Called(ctx, req).Error(0)
}

func (m *MockAdminService) Stats() model.RelayStats {
	return m.Called().Get(0).(model.RelayStats)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) GetByUsername(ctx context.Context, username string) (model.User, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserService) GetByAPIKey(ctx context.Context, apiKey string) (model.User, error) {
	args := m.Called(ctx, apiKey)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, username, password string) (model.User, error) {
	args := m.Called(ctx, username, password)
	return args.Get(0).(model.User), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, username, password string, role model.Role) (model.User, error) {
	args := m.Called(ctx, username, password, role)
	return args.Get(0).(model.User), args.Error(1)
}
