package service

import (
	"context"
	"fmt"
	"math"

	"github.com/Lutefd/coin-relay/internal/coingecko"
	"github.com/Lutefd/coin-relay/internal/commons"
	"github.com/Lutefd/coin-relay/internal/logger"
	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/Lutefd/coin-relay/internal/repository"
	"golang.org/x/sync/errgroup"
)

const bubbleScale = 0.01

// MarketService shapes CoinGecko data for the dashboard. Reads go through
// source, normally the relay, so they share its cache.
type MarketService struct {
	source        coingecko.Fetcher
	snapshots     repository.SnapshotRepository
	overviewCoins []string
}

func NewMarketService(source coingecko.Fetcher, snapshots repository.SnapshotRepository, overviewCoins []string) *MarketService {
	if len(overviewCoins) == 0 {
		overviewCoins = commons.DefaultOverviewCoins
	}
	return &MarketService{
		source:        source,
		snapshots:     snapshots,
		overviewCoins: overviewCoins,
	}
}

func (s *MarketService) Global(ctx context.Context) (*model.GlobalData, error) {
	return coingecko.Global(ctx, s.source)
}

func (s *MarketService) TopCoins(ctx context.Context, limit int) ([]model.CryptoCurrency, error) {
	if limit < 1 || limit > commons.MaxTopCoinsLimit {
		return nil, fmt.Errorf("%w: must be between 1 and %d", model.ErrInvalidLimit, commons.MaxTopCoinsLimit)
	}
	return coingecko.TopCoins(ctx, s.source, limit)
}

func (s *MarketService) Coin(ctx context.Context, id string) (*model.CoinDetails, error) {
	return coingecko.CoinDetails(ctx, s.source, id)
}

// Overview loads global stats and the overview coins concurrently. A coin
// that fails to load is left out; a global failure fails the whole call.
func (s *MarketService) Overview(ctx context.Context) (*model.Overview, error) {
	g, ctx := errgroup.WithContext(ctx)

	var global *model.GlobalData
	g.Go(func() error {
		var err error
		global, err = coingecko.Global(ctx, s.source)
		return err
	})

	details := make([]*model.CoinDetails, len(s.overviewCoins))
	for i, id := range s.overviewCoins {
		g.Go(func() error {
			d, err := coingecko.CoinDetails(ctx, s.source, id)
			if err != nil {
				logger.Warnf("overview: skipping %s: %v", id, err)
				return nil
			}
			details[i] = d
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	overview := &model.Overview{Global: *global, Coins: make([]model.CoinDetails, 0, len(details))}
	for _, d := range details {
		if d != nil {
			overview.Coins = append(overview.Coins, *d)
		}
	}
	return overview, nil
}

func (s *MarketService) Chart(ctx context.Context, id string, timeRange model.TimeRange, chartType model.ChartType) ([]model.ChartSeries, error) {
	days, err := timeRange.Days()
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	var details *model.CoinDetails
	var chart *model.MarketChart
	g.Go(func() error {
		var err error
		details, err = coingecko.CoinDetails(gctx, s.source, id)
		return err
	})
	g.Go(func() error {
		var err error
		chart, err = coingecko.MarketChart(gctx, s.source, id, days)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return BuildChartSeries(details.Name, chart, chartType)
}

// BuildChartSeries turns a market chart into plot points. Line charts carry
// price over time; bubble charts add z = sqrt(volume) * 0.01.
func BuildChartSeries(name string, chart *model.MarketChart, chartType model.ChartType) ([]model.ChartSeries, error) {
	if chart == nil || len(chart.Prices) == 0 {
		return nil, model.ErrNoData
	}

	points := make([]model.ChartPoint, 0, len(chart.Prices))
	for i, p := range chart.Prices {
		point := model.ChartPoint{X: int64(p[0]), Y: p[1]}
		if chartType == model.ChartTypeBubble {
			var volume float64
			if i < len(chart.TotalVolumes) {
				volume = chart.TotalVolumes[i][1]
			}
			z := math.Sqrt(math.Max(volume, 0)) * bubbleScale
			point.Z = &z
		}
		points = append(points, point)
	}

	if chartType == model.ChartTypeBubble {
		name = "Volume"
	}
	return []model.ChartSeries{{Name: name, Data: points}}, nil
}

func (s *MarketService) History(ctx context.Context, coinID string, limit int) ([]model.MarketSnapshot, error) {
	if limit < 1 || limit > commons.MaxHistoryLimit {
		return nil, fmt.Errorf("%w: must be between 1 and %d", model.ErrInvalidLimit, commons.MaxHistoryLimit)
	}
	snapshots, err := s.snapshots.ListByCoin(ctx, coinID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to load history for %s: %w", coinID, err)
	}
	return snapshots, nil
}
