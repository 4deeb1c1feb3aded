package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Lutefd/coin-relay/internal/model"
)

type PostgresSnapshotRepository struct {
	db *sql.DB
}

func NewPostgresSnapshotRepository(connURL string, db *sql.DB) (*PostgresSnapshotRepository, error) {
	db, err := openDB(connURL, db)
	if err != nil {
		return nil, err
	}
	return &PostgresSnapshotRepository{db: db}, nil
}

// SaveSnapshots writes one batch in a single transaction.
func (r *PostgresSnapshotRepository) SaveSnapshots(ctx context.Context, snapshots []model.MarketSnapshot) error {
	if len(snapshots) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO market_snapshots (id, coin_id, symbol, price, market_cap, total_volume, price_change_24h, captured_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare snapshot insert: %w", err)
	}
	defer stmt.Close()

	for _, s := range snapshots {
		if _, err := stmt.ExecContext(ctx, s.ID, s.CoinID, s.Symbol, s.Price, s.MarketCap, s.TotalVolume, s.PriceChangePercentage24h, s.CapturedAt); err != nil {
			return fmt.Errorf("failed to save snapshot for %s: %w", s.CoinID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshots: %w", err)
	}
	return nil
}

func (r *PostgresSnapshotRepository) ListByCoin(ctx context.Context, coinID string, limit int) ([]model.MarketSnapshot, error) {
	query := `SELECT id, coin_id, symbol, price, market_cap, total_volume, price_change_24h, captured_at
              FROM market_snapshots WHERE coin_id = $1 ORDER BY captured_at DESC LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, coinID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	snapshots := []model.MarketSnapshot{}
	for rows.Next() {
		var s model.MarketSnapshot
		if err := rows.Scan(&s.ID, &s.CoinID, &s.Symbol, &s.Price, &s.MarketCap, &s.TotalVolume, &s.PriceChangePercentage24h, &s.CapturedAt); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		snapshots = append(snapshots, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate snapshots: %w", err)
	}
	return snapshots, nil
}

func (r *PostgresSnapshotRepository) Close() error {
	return r.db.Close()
}
