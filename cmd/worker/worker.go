package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Lutefd/coin-relay/internal/commons"
	"github.com/Lutefd/coin-relay/internal/logger"
	"github.com/Lutefd/coin-relay/internal/repository"
	"github.com/joho/godotenv"
)

// The worker owns log partition rotation. Cache warming runs inside the API
// process so that a single request queue paces every CoinGecko call.
type dependencies struct {
	logRepo      repository.LogRepository
	partitionMgr PartitionManager
}

type PartitionManager interface {
	Start(ctx context.Context) error
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Error loading .env file: %v", err)
	}

	config, err := commons.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	deps, err := initDependencies(config)
	if err != nil {
		log.Fatalf("Failed to initialize dependencies: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errChan := make(chan error, 1)
	go func() {
		errChan <- runWorker(ctx, deps)
	}()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Worker failed: %v", err)
		}
	case <-signalChan:
		log.Println("Shutdown signal received, initiating graceful shutdown...")
		cancel()

		select {
		case <-errChan:
			log.Println("Worker shut down gracefully")
		case <-time.After(30 * time.Second):
			log.Println("Shutdown timed out")
		}
	}
}

func initDependencies(config commons.Config) (*dependencies, error) {
	db, err := sql.Open("postgres", config.PostgresConn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	logRepo, err := repository.NewPostgresLogRepository(config.PostgresConn, db)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize log repository: %w", err)
	}
	logger.SetSource("worker")
	logger.InitLogger(logRepo)

	return &dependencies{
		logRepo:      logRepo,
		partitionMgr: logger.NewPartitionManager(logRepo),
	}, nil
}

func runWorker(ctx context.Context, deps *dependencies) error {
	defer deps.close()

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := deps.partitionMgr.Start(ctx); err != nil {
		return fmt.Errorf("failed to start partition manager: %w", err)
	}

	<-ctx.Done()
	log.Println("Worker shutting down...")
	return ctx.Err()
}

func (d *dependencies) close() {
	if err := d.logRepo.Close(); err != nil {
		log.Printf("Error closing log repository: %v", err)
	}
}
