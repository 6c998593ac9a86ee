// internal/service/refresh.go
package service

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/jaysongor/ducklens-backend/internal/pipeline"
)

// ErrRefreshInProgress is returned when a refresh is already running.
var ErrRefreshInProgress = errors.New("refresh already in progress")

// BatchRunner is the slice of the pipeline the refresh service needs.
type BatchRunner interface {
	Run(ctx context.Context) (*pipeline.RunResult, error)
}

// RefreshService exposes the idempotent full-recompute operation. Only one
// refresh runs at a time; concurrent requests are rejected rather than
// queued since a queued run would recompute the same staged batch.
type RefreshService struct {
	runner   BatchRunner
	insights *InsightsService
	mu       sync.Mutex
	running  bool
}

func NewRefresh(runner BatchRunner, insights *InsightsService) *RefreshService {
	return &RefreshService{runner: runner, insights: insights}
}

// Refresh recomputes all derived outputs from the current staged batch and
// invalidates the summary cache on success.
func (s *RefreshService) Refresh(ctx context.Context) (*pipeline.RunResult, error) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil, ErrRefreshInProgress
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	result, err := s.runner.Run(ctx)
	if err != nil {
		log.Error().Err(err).Msg("refresh failed; prior outputs remain published")
		return nil, err
	}
	s.insights.Invalidate(ctx)
	return result, nil
}
