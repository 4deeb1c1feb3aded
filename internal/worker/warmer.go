// Package worker keeps the relay cache warm for the dashboard's standard
// endpoints and records market snapshots. The warmer shares the relay and
// request queue of the process serving the API, so its calls are paced
// together with client traffic.
package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Lutefd/coin-relay/internal/coingecko"
	"github.com/Lutefd/coin-relay/internal/logger"
	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/Lutefd/coin-relay/internal/relay"
	"github.com/Lutefd/coin-relay/internal/repository"
)

type Refresher interface {
	Refresh(ctx context.Context, req relay.Request) (relay.Result, error)
}

type Warmer struct {
	relay     Refresher
	snapshots repository.SnapshotRepository
	interval  time.Duration
	limit     int
	coins     []string
	now       func() time.Time
}

// NewWarmer refreshes global data, the top limit markets and the details of
// coins on every interval.
func NewWarmer(relay Refresher, snapshots repository.SnapshotRepository, interval time.Duration, limit int, coins []string) *Warmer {
	return &Warmer{
		relay:     relay,
		snapshots: snapshots,
		interval:  interval,
		limit:     limit,
		coins:     coins,
		now:       time.Now,
	}
}

// Start warms once immediately and then on every tick until ctx is done.
// A non-positive interval disables warming.
func (w *Warmer) Start(ctx context.Context) {
	if w.interval <= 0 {
		logger.Info("cache warmer disabled")
		return
	}
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.run(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Info("cache warmer stopped")
			return
		case <-ticker.C:
			w.run(ctx)
		}
	}
}

func (w *Warmer) run(ctx context.Context) {
	if err := w.warm(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Errorf("error warming cache: %v", err)
		return
	}
	logger.Info("cache warmed successfully")
}

func (w *Warmer) warm(ctx context.Context) error {
	var errs []error

	if _, err := w.relay.Refresh(ctx, relay.Request{Endpoint: coingecko.EndpointGlobal}); err != nil {
		errs = append(errs, fmt.Errorf("failed to refresh global data: %w", err))
	}

	if err := w.warmMarkets(ctx); err != nil {
		errs = append(errs, err)
	}

	for _, id := range w.coins {
		if ctx.Err() != nil {
			break
		}
		if _, err := w.relay.Refresh(ctx, relay.Request{Endpoint: coingecko.CoinEndpoint(id)}); err != nil {
			errs = append(errs, fmt.Errorf("failed to refresh coin %s: %w", id, err))
		}
	}

	return errors.Join(errs...)
}

func (w *Warmer) warmMarkets(ctx context.Context) error {
	res, err := w.relay.Refresh(ctx, relay.Request{
		Endpoint: coingecko.EndpointMarkets,
		Params:   coingecko.MarketsParams(w.limit),
	})
	if err != nil {
		return fmt.Errorf("failed to refresh top markets: %w", err)
	}

	var coins []model.CryptoCurrency
	if err := json.Unmarshal(res.Data, &coins); err != nil {
		return fmt.Errorf("failed to decode top markets: %w", err)
	}
	if len(coins) == 0 {
		return nil
	}

	capturedAt := w.now().UTC()
	snapshots := make([]model.MarketSnapshot, 0, len(coins))
	for _, coin := range coins {
		snapshots = append(snapshots, model.NewMarketSnapshot(coin, capturedAt))
	}

	if err := w.snapshots.SaveSnapshots(ctx, snapshots); err != nil {
		return fmt.Errorf("failed to save market snapshots: %w", err)
	}
	return nil
}
