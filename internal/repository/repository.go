package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Lutefd/coin-relay/internal/model"
	_ "github.com/lib/pq"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.UserDB) error
	GetByUsername(ctx context.Context, username string) (*model.UserDB, error)
	GetByAPIKey(ctx context.Context, apiKey string) (*model.UserDB, error)
	Close() error
}

type LogRepository interface {
	SaveLog(ctx context.Context, log model.Log) error
	CreatePartition(ctx context.Context, month time.Time) error
	Close() error
}

type SnapshotRepository interface {
	SaveSnapshots(ctx context.Context, snapshots []model.MarketSnapshot) error
	ListByCoin(ctx context.Context, coinID string, limit int) ([]model.MarketSnapshot, error)
	Close() error
}

// openDB returns db when it is already set, otherwise opens connURL; either
// way the connection is pinged.
func openDB(connURL string, db *sql.DB) (*sql.DB, error) {
	if db == nil {
		var err error
		db, err = sql.Open("postgres", connURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}
