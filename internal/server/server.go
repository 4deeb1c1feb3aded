package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Lutefd/coin-relay/internal/cache"
	"github.com/Lutefd/coin-relay/internal/coingecko"
	"github.com/Lutefd/coin-relay/internal/commons"
	"github.com/Lutefd/coin-relay/internal/logger"
	api_middleware "github.com/Lutefd/coin-relay/internal/middleware"
	"github.com/Lutefd/coin-relay/internal/queue"
	"github.com/Lutefd/coin-relay/internal/relay"
	"github.com/Lutefd/coin-relay/internal/repository"
	"github.com/Lutefd/coin-relay/internal/service"
	"github.com/Lutefd/coin-relay/internal/worker"
)

type Server struct {
	port    int
	router  http.Handler
	config  commons.Config
	deps    *dependencies
	limiter *api_middleware.RateLimiter
}

type dependencies struct {
	db            *sql.DB
	userRepo      repository.UserRepository
	logRepo       repository.LogRepository
	snapshotRepo  repository.SnapshotRepository
	cache         cache.Cache
	queue         *queue.Queue
	relay         *relay.Service
	userService   *service.UserService
	marketService *service.MarketService
	adminService  *service.AdminService
	warmer        *worker.Warmer
}

func NewServer(config commons.Config) (*Server, error) {
	deps, err := initDependencies(config)
	if err != nil {
		return nil, err
	}
	return newServer(config, deps), nil
}

func newServer(config commons.Config, deps *dependencies) *Server {
	server := &Server{
		port:    int(config.ServerPort),
		config:  config,
		deps:    deps,
		limiter: api_middleware.NewRateLimiter(config.RateLimitRPS, config.RateLimitBurst),
	}
	server.registerRoutes()
	return server
}

func initDependencies(config commons.Config) (*dependencies, error) {
	db, err := sql.Open("postgres", config.PostgresConn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	userRepo, err := repository.NewPostgresUserRepository(config.PostgresConn, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize user repository: %w", err)
	}
	logRepo, err := repository.NewPostgresLogRepository(config.PostgresConn, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize log repository: %w", err)
	}
	snapshotRepo, err := repository.NewPostgresSnapshotRepository(config.PostgresConn, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize snapshot repository: %w", err)
	}

	logger.InitLogger(logRepo)

	q := NewQueue(config)
	client := NewCoinGeckoClient(config, q)
	relayCache := NewCache(config)
	relayService := NewRelay(config, client, relayCache)

	return &dependencies{
		db:            db,
		userRepo:      userRepo,
		logRepo:       logRepo,
		snapshotRepo:  snapshotRepo,
		cache:         relayCache,
		queue:         q,
		relay:         relayService,
		userService:   service.NewUserService(userRepo),
		marketService: service.NewMarketService(relayService, snapshotRepo, config.OverviewCoins),
		adminService:  service.NewAdminService(q, relayService),
		warmer:        NewWarmer(config, relayService, snapshotRepo),
	}, nil
}

// NewCache connects to Redis when an address is configured and falls back to
// the in-process cache otherwise or when Redis is unreachable.
func NewCache(config commons.Config) cache.Cache {
	if config.RedisAddr == "" {
		logger.Info("REDIS_ADDR not set, using in-memory cache")
		return cache.NewMemoryCache()
	}
	redisCache, err := cache.NewRedisCache(config.RedisAddr, config.RedisPass)
	if err != nil {
		logger.Warnf("redis unavailable, using in-memory cache: %v", err)
		return cache.NewMemoryCache()
	}
	return redisCache
}

func NewQueue(config commons.Config) *queue.Queue {
	return queue.New(
		queue.WithDelay(config.QueueDelay),
		queue.WithJitter(config.QueueJitter),
		queue.WithMaxFailures(config.QueueMaxFailures),
		queue.WithBackoffMultiplier(commons.DefaultQueueBackoffFactor),
		queue.WithRateLimitCheck(coingecko.IsRateLimited),
	)
}

func NewCoinGeckoClient(config commons.Config, q *queue.Queue) *coingecko.Client {
	return coingecko.NewClient(
		config.CoinGeckoBaseURL,
		coingecko.WithAPIKey(config.CoinGeckoAPIKey, config.CoinGeckoKeyType),
		coingecko.WithTimeout(config.UpstreamTimeout),
		coingecko.WithQueue(q),
	)
}

func NewRelay(config commons.Config, upstream relay.Upstream, c cache.Cache) *relay.Service {
	return relay.NewService(upstream, c,
		relay.WithTTL(config.CacheTTL),
		relay.WithStaleWindow(config.CacheStaleWindow),
		relay.WithRetention(config.CacheRetention),
	)
}

// NewWarmer keeps the dashboard endpoints warm through the same relay, and so
// the same request queue, that serves clients.
func NewWarmer(config commons.Config, relayService *relay.Service, snapshots repository.SnapshotRepository) *worker.Warmer {
	return worker.NewWarmer(relayService, snapshots, config.WarmupInterval, commons.DefaultTopCoinsLimit, config.OverviewCoins)
}

func (s *Server) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Infof("starting server on port %d", s.port)
	ch := make(chan error, 1)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.router,
		IdleTimeout:  commons.ServerIdleTimeout,
		ReadTimeout:  commons.ServerReadTimeout,
		WriteTimeout: commons.ServerWriteTimeout,
	}

	go s.deps.queue.Start(ctx)
	go s.deps.warmer.Start(ctx)
	go s.limiter.Cleanup(ctx, time.Minute)

	go func() {
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			ch <- fmt.Errorf("failed to start server: %w", err)
		}
		close(ch)
	}()

	var err error
	select {
	case err = <-ch:
	case <-ctx.Done():
	}
	cancel()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), commons.ShutdownTimeout)
	defer cancelShutdown()
	if err == nil {
		err = server.Shutdown(shutdownCtx)
	}
	if drainErr := s.drain(shutdownCtx); drainErr != nil {
		err = errors.Join(err, drainErr)
	}
	return err
}

// drain waits for background refreshes, flushes buffered log entries and
// releases the remaining resources.
func (s *Server) drain(ctx context.Context) error {
	s.deps.relay.Wait()
	err := logger.Shutdown(ctx)
	s.close()
	return err
}

func (s *Server) close() {
	if err := s.deps.cache.Close(); err != nil {
		logger.Errorf("error closing cache: %v", err)
	}
	if err := s.deps.userRepo.Close(); err != nil {
		logger.Errorf("error closing user repository: %v", err)
	}
	if err := s.deps.snapshotRepo.Close(); err != nil {
		logger.Errorf("error closing snapshot repository: %v", err)
	}
}
