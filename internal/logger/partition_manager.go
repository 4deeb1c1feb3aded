package logger

import (
	"context"
	"fmt"
	"time"

	"github.com/Lutefd/coin-relay/internal/repository"
	"github.com/robfig/cron/v3"
)

const (
	partitionsAhead   = 3
	partitionSchedule = "0 0 1 * *"
)

// PartitionManager keeps monthly partitions of the logs table created ahead
// of time.
type PartitionManager struct {
	repo repository.LogRepository
	cron *cron.Cron
}

func NewPartitionManager(repo repository.LogRepository) *PartitionManager {
	c := cron.New()
	pm := &PartitionManager{
		repo: repo,
		cron: c,
	}

	_, err := c.AddFunc(partitionSchedule, pm.createNextMonthPartitionWrapper)
	if err != nil {
		Errorf("failed to add cron job: %v", err)
	}

	return pm
}

func (pm *PartitionManager) Start(ctx context.Context) error {
	if err := pm.createInitialPartitions(ctx); err != nil {
		Errorf("failed to create initial partitions: %s", err)
		return fmt.Errorf("failed to create initial partitions: %w", err)
	}

	pm.cron.Start()

	go func() {
		<-ctx.Done()
		pm.cron.Stop()
	}()

	return nil
}

func (pm *PartitionManager) createInitialPartitions(ctx context.Context) error {
	now := time.Now()
	for i := 0; i < partitionsAhead; i++ {
		month := now.AddDate(0, i, 0)
		if err := pm.repo.CreatePartition(ctx, month); err != nil {
			return err
		}
	}
	return nil
}

func (pm *PartitionManager) createNextMonthPartition(ctx context.Context) error {
	nextMonth := time.Now().AddDate(0, partitionsAhead, 0)
	return pm.repo.CreatePartition(ctx, nextMonth)
}

func (pm *PartitionManager) createNextMonthPartitionWrapper() {
	ctx := context.Background()
	if err := pm.createNextMonthPartition(ctx); err != nil {
		Errorf("failed to create next month partition: %v", err)
	}
}
