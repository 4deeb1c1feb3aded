package service

import (
	"context"

	"github.com/Lutefd/coin-relay/internal/logger"
	"github.com/Lutefd/coin-relay/internal/model"
	"github.com/Lutefd/coin-relay/internal/relay"
)

type RequestQueue interface {
	Clear() int
	Len() int
	Failures() int
}

type CacheController interface {
	Purge(ctx context.Context, req relay.Request) error
	InFlight() int
}

type AdminService struct {
	queue RequestQueue
	relay CacheController
}

func NewAdminService(queue RequestQueue, relay CacheController) *AdminService {
	return &AdminService{queue: queue, relay: relay}
}

func (s *AdminService) ClearQueue() int {
	dropped := s.queue.Clear()
	logger.Infof("request queue cleared, %d pending requests dropped", dropped)
	return dropped
}

func (s *AdminService) PurgeCache(ctx context.Context, req relay.Request) error {
	if err := s.relay.Purge(ctx, req); err != nil {
		return err
	}
	logger.Infof("purged cache entry for %s", req.Endpoint)
	return nil
}

func (s *AdminService) Stats() model.RelayStats {
	return model.RelayStats{
		QueueLength:       s.queue.Len(),
		QueueFailures:     s.queue.Failures(),
		InFlightRefreshes: s.relay.InFlight(),
	}
}
