package repository

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSnapshots() []model.MarketSnapshot {
	now := time.Date(2026, time.October, 19, 12, 0, 0, 0, time.UTC)
	return []model.MarketSnapshot{
		model.NewMarketSnapshot(model.CryptoCurrency{ID: "bitcoin", Symbol: "btc", CurrentPrice: 67000, MarketCap: 1.3e12, TotalVolume: 3.1e10, PriceChangePercentage24h: 1.2}, now),
		model.NewMarketSnapshot(model.CryptoCurrency{ID: "ethereum", Symbol: "eth", CurrentPrice: 2600, MarketCap: 3.1e11, TotalVolume: 1.4e10, PriceChangePercentage24h: -0.4}, now),
	}
}

func TestPostgresSnapshotRepository_SaveSnapshots(t *testing.T) {
	t.Run("Successful batch", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := &PostgresSnapshotRepository{db: db}
		snapshots := testSnapshots()

		mock.ExpectBegin()
		prep := mock.ExpectPrepare("INSERT INTO market_snapshots")
		for _, s := range snapshots {
			prep.ExpectExec().
				WithArgs(s.ID, s.CoinID, s.Symbol, s.Price, s.MarketCap, s.TotalVolume, s.PriceChangePercentage24h, s.CapturedAt).
				WillReturnResult(sqlmock.NewResult(1, 1))
		}
		mock.ExpectCommit()

		err = repo.SaveSnapshots(context.Background(), snapshots)
		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Insert failure rolls back", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := &PostgresSnapshotRepository{db: db}
		snapshots := testSnapshots()

		mock.ExpectBegin()
		mock.ExpectPrepare("INSERT INTO market_snapshots").
			ExpectExec().
			WillReturnError(fmt.Errorf("disk full"))
		mock.ExpectRollback()

		err = repo.SaveSnapshots(context.Background(), snapshots)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to save snapshot for bitcoin")
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Empty batch is a no-op", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()

		repo := &PostgresSnapshotRepository{db: db}

		assert.NoError(t, repo.SaveSnapshots(context.Background(), nil))
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPostgresSnapshotRepository_ListByCoin(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := &PostgresSnapshotRepository{db: db}
	columns := []string{"id", "coin_id", "symbol", "price", "market_cap", "total_volume", "price_change_24h", "captured_at"}

	t.Run("Returns rows newest first", func(t *testing.T) {
		newer := time.Date(2026, time.October, 19, 12, 1, 0, 0, time.UTC)
		older := newer.Add(-time.Minute)
		rows := sqlmock.NewRows(columns).
			AddRow(uuid.New().String(), "bitcoin", "btc", 67100.0, 1.3e12, 3.1e10, 1.3, newer).
			AddRow(uuid.New().String(), "bitcoin", "btc", 67000.0, 1.3e12, 3.0e10, 1.2, older)

		mock.ExpectQuery("SELECT .+ FROM market_snapshots WHERE coin_id = \\$1 ORDER BY captured_at DESC LIMIT \\$2").
			WithArgs("bitcoin", 2).
			WillReturnRows(rows)

		snapshots, err := repo.ListByCoin(context.Background(), "bitcoin", 2)
		require.NoError(t, err)
		require.Len(t, snapshots, 2)
		assert.Equal(t, 67100.0, snapshots[0].Price)
		assert.Equal(t, newer, snapshots[0].CapturedAt)
	})

	t.Run("No rows yields empty slice", func(t *testing.T) {
		mock.ExpectQuery("SELECT .+ FROM market_snapshots").
			WithArgs("solana", 10).
			WillReturnRows(sqlmock.NewRows(columns))

		snapshots, err := repo.ListByCoin(context.Background(), "solana", 10)
		require.NoError(t, err)
		assert.NotNil(t, snapshots)
		assert.Empty(t, snapshots)
	})

	t.Run("Query failure", func(t *testing.T) {
		mock.ExpectQuery("SELECT .+ FROM market_snapshots").
			WillReturnError(fmt.Errorf("timeout"))

		_, err := repo.ListByCoin(context.Background(), "bitcoin", 10)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to list snapshots")
	})
}
