package commons

import "time"

const (
	UserContextKey             = "user"
	DefaultCoinGeckoBaseURL    = "https://api.coingecko.com/api/v3"
	DefaultEndpoint            = "global"
	DefaultCacheTTL            = time.Minute
	DefaultCacheStaleWindow    = 5 * time.Minute
	DefaultCacheRetention      = 24 * time.Hour
	DefaultUpstreamTimeout     = 10 * time.Second
	DefaultQueueDelay          = 5 * time.Second
	DefaultQueueJitter         = time.Second
	DefaultQueueMaxFailures    = 3
	DefaultQueueBackoffFactor  = 2
	DefaultRateLimitRPS        = 10
	DefaultRateLimitBurst      = 20
	DefaultWarmupInterval      = 3 * time.Minute
	DefaultTopCoinsLimit       = 10
	MaxTopCoinsLimit           = 250
	DefaultHistoryLimit        = 100
	MaxHistoryLimit            = 1000
	RateLimitRetryAfterSeconds = 60
	RelayCacheControl          = "public, s-maxage=60, stale-while-revalidate=300"
	ServerIdleTimeout          = time.Minute
	ServerReadTimeout          = 10 * time.Second
	ServerWriteTimeout         = 2 * time.Minute
	ShutdownTimeout            = 10 * time.Second
	APIKeyTypePro              = "pro"
	APIKeyTypeDemo             = "demo"
)

var DefaultOverviewCoins = []string{
	"bitcoin",
	"ethereum",
	"solana",
	"ripple",
	"cardano",
	"avalanche-2",
	"polkadot",
	"dogecoin",
	"matic-network",
	"chainlink",
}
