package model

type CryptoCurrency struct {
	ID                       string   `json:"id"`
	Symbol                   string   `json:"symbol"`
	Name                     string   `json:"name"`
	Image                    string   `json:"image"`
	CurrentPrice             float64  `json:"current_price"`
	PriceChangePercentage24h float64  `json:"price_change_percentage_24h"`
	MarketCap                float64  `json:"market_cap"`
	TotalVolume              float64  `json:"total_volume"`
	MarketCapRank            *int     `json:"market_cap_rank,omitempty"`
	High24h                  *float64 `json:"high_24h,omitempty"`
	Low24h                   *float64 `json:"low_24h,omitempty"`
	LastUpdated              string   `json:"last_updated,omitempty"`
}

// CoinDetails is the subset of /coins/{id} the dashboard renders.
type CoinDetails struct {
	ID            string      `json:"id"`
	Symbol        string      `json:"symbol"`
	Name          string      `json:"name"`
	MarketCapRank *int        `json:"market_cap_rank,omitempty"`
	Image         CoinImage   `json:"image"`
	MarketData    *MarketData `json:"market_data,omitempty"`
}

type CoinImage struct {
	Thumb string `json:"thumb,omitempty"`
	Small string `json:"small,omitempty"`
	Large string `json:"large,omitempty"`
}

type MarketData struct {
	CurrentPrice             map[string]float64 `json:"current_price"`
	MarketCap                map[string]float64 `json:"market_cap,omitempty"`
	TotalVolume              map[string]float64 `json:"total_volume,omitempty"`
	PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
}

type GlobalData struct {
	ActiveCryptocurrencies          int                `json:"active_cryptocurrencies"`
	Markets                         int                `json:"markets"`
	TotalMarketCap                  map[string]float64 `json:"total_market_cap"`
	TotalVolume                     map[string]float64 `json:"total_volume"`
	MarketCapPercentage             map[string]float64 `json:"market_cap_percentage"`
	MarketCapChangePercentage24hUSD float64            `json:"market_cap_change_percentage_24h_usd"`
	UpdatedAt                       int64              `json:"updated_at,omitempty"`
}

// GlobalResponse mirrors the upstream /global body, which nests the stats under "data".
type GlobalResponse struct {
	Data GlobalData `json:"data"`
}

// MarketChart mirrors /coins/{id}/market_chart. Each point is [unix ms, value].
type MarketChart struct {
	Prices       [][2]float64 `json:"prices"`
	MarketCaps   [][2]float64 `json:"market_caps"`
	TotalVolumes [][2]float64 `json:"total_volumes"`
}

type Overview struct {
	Global GlobalData    `json:"global"`
	Coins  []CoinDetails `json:"coins"`
}
