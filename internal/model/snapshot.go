package model

import (
	"time"

	"github.com/google/uuid"
)

type MarketSnapshot struct {
	ID                       uuid.UUID `json:"id"`
	CoinID                   string    `json:"coin_id"`
	Symbol                   string    `json:"symbol"`
	Price                    float64   `json:"price"`
	MarketCap                float64   `json:"market_cap"`
	TotalVolume              float64   `json:"total_volume"`
	PriceChangePercentage24h float64   `json:"price_change_percentage_24h"`
	CapturedAt               time.Time `json:"captured_at"`
}

func NewMarketSnapshot(coin CryptoCurrency, capturedAt time.Time) MarketSnapshot {
	return MarketSnapshot{
		ID:                       uuid.New(),
		CoinID:                   coin.ID,
		Symbol:                   coin.Symbol,
		Price:                    coin.CurrentPrice,
		MarketCap:                coin.MarketCap,
		TotalVolume:              coin.TotalVolume,
		PriceChangePercentage24h: coin.PriceChangePercentage24h,
		CapturedAt:               capturedAt,
	}
}
