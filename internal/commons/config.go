package commons

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	PostgresConn     string
	RedisAddr        string
	RedisPass        string
	ServerPort       uint16
	CoinGeckoBaseURL string
	CoinGeckoAPIKey  string
	CoinGeckoKeyType string
	UpstreamTimeout  time.Duration
	CacheTTL         time.Duration
	CacheStaleWindow time.Duration
	CacheRetention   time.Duration
	QueueDelay       time.Duration
	QueueJitter      time.Duration
	QueueMaxFailures int
	RateLimitRPS     float64
	RateLimitBurst   int
	WarmupInterval   time.Duration
	OverviewCoins    []string
}

const (
	decimalBase = 10
	bitSize     = 16
)

func LoadConfig() (Config, error) {
	var config Config
	var errors []string

	config.RedisAddr = os.Getenv("REDIS_ADDR")
	config.RedisPass = os.Getenv("REDIS_PASSWORD")

	pg_user := os.Getenv("POSTGRES_USER")
	if pg_user == "" {
		errors = append(errors, "POSTGRES_USER is not set")
	}

	pg_pass := os.Getenv("POSTGRES_PASSWORD")
	if pg_pass == "" {
		errors = append(errors, "POSTGRES_PASSWORD is not set")
	}

	pg_host := os.Getenv("POSTGRES_HOST")
	if pg_host == "" {
		errors = append(errors, "POSTGRES_HOST is not set")
	}
	pg_port := os.Getenv("POSTGRES_PORT")
	if pg_port == "" {
		errors = append(errors, "POSTGRES_PORT is not set")
	}

	pg_db := os.Getenv("POSTGRES_NAME")
	if pg_db == "" {
		errors = append(errors, "POSTGRES_NAME is not set")
	}

	config.PostgresConn = fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", pg_user, pg_pass, pg_host, pg_port, pg_db)

	serverPort := os.Getenv("SERVER_PORT")
	if serverPort == "" {
		errors = append(errors, "SERVER_PORT is not set")
	} else {
		parsedServerPort, err := strconv.ParseUint(serverPort, decimalBase, bitSize)
		if err != nil {
			errors = append(errors, fmt.Sprintf("invalid SERVER_PORT: %s", err))
		} else {
			config.ServerPort = uint16(parsedServerPort)
		}
	}

	config.CoinGeckoBaseURL = strings.TrimRight(getEnv("COINGECKO_BASE_URL", DefaultCoinGeckoBaseURL), "/")
	config.CoinGeckoAPIKey = os.Getenv("COINGECKO_API_KEY")
	config.CoinGeckoKeyType = strings.ToLower(getEnv("COINGECKO_API_KEY_TYPE", APIKeyTypePro))
	if config.CoinGeckoKeyType != APIKeyTypePro && config.CoinGeckoKeyType != APIKeyTypeDemo {
		errors = append(errors, fmt.Sprintf("invalid COINGECKO_API_KEY_TYPE: %s", config.CoinGeckoKeyType))
	}

	config.UpstreamTimeout = parseDuration("UPSTREAM_TIMEOUT", DefaultUpstreamTimeout, &errors)
	config.CacheTTL = parseDuration("CACHE_TTL", DefaultCacheTTL, &errors)
	config.CacheStaleWindow = parseDuration("CACHE_STALE_WINDOW", DefaultCacheStaleWindow, &errors)
	config.CacheRetention = parseDuration("CACHE_RETENTION", DefaultCacheRetention, &errors)
	config.QueueDelay = parseDuration("QUEUE_DELAY", DefaultQueueDelay, &errors)
	config.QueueJitter = parseDuration("QUEUE_JITTER", DefaultQueueJitter, &errors)
	config.WarmupInterval = parseDuration("WARMUP_INTERVAL", DefaultWarmupInterval, &errors)
	config.QueueMaxFailures = parseInt("QUEUE_MAX_FAILURES", DefaultQueueMaxFailures, &errors)
	config.RateLimitBurst = parseInt("RATE_LIMIT_BURST", DefaultRateLimitBurst, &errors)

	config.RateLimitRPS = DefaultRateLimitRPS
	if v := os.Getenv("RATE_LIMIT_RPS"); v != "" {
		rps, err := strconv.ParseFloat(v, 64)
		if err != nil || rps <= 0 {
			errors = append(errors, fmt.Sprintf("invalid RATE_LIMIT_RPS: %s", v))
		} else {
			config.RateLimitRPS = rps
		}
	}

	if config.CacheRetention < config.CacheTTL+config.CacheStaleWindow {
		errors = append(errors, "CACHE_RETENTION must cover CACHE_TTL plus CACHE_STALE_WINDOW")
	}

	config.OverviewCoins = DefaultOverviewCoins
	if v := os.Getenv("OVERVIEW_COINS"); v != "" {
		config.OverviewCoins = splitList(v)
	}

	if len(errors) > 0 {
		for _, err := range errors {
			fmt.Println("Configuration Error:", err)
		}
		return Config{}, fmt.Errorf("configuration errors occurred")
	}

	return config, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseDuration(key string, def time.Duration, errors *[]string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		*errors = append(*errors, fmt.Sprintf("invalid %s: %s", key, v))
		return def
	}
	return d
}

func parseInt(key string, def int, errors *[]string) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil || i < 0 {
		*errors = append(*errors, fmt.Sprintf("invalid %s: %s", key, v))
		return def
	}
	return i
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
