package worker

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kingrain94/clinic-access-core/pkg/logger"
)

// Sweeper is implemented by ratelimit.Limiter.
type Sweeper interface {
	Sweep(ctx context.Context, retention time.Duration) (int64, error)
}

// RateLimitSweeper periodically drops rate limit records older than the
// retention window. Request-time pruning only touches the caller's own key,
// so idle keys are left for this loop.
type RateLimitSweeper struct {
	sweeper      Sweeper
	retention    time.Duration
	interval     time.Duration
	logger       *logger.Logger
	shutdownChan chan struct{}
	waitGroup    sync.WaitGroup
}

func NewRateLimitSweeper(sweeper Sweeper, retention, interval time.Duration, logger *logger.Logger) *RateLimitSweeper {
	return &RateLimitSweeper{
		sweeper:      sweeper,
		retention:    retention,
		interval:     interval,
		logger:       logger.Named("ratelimit_sweeper"),
		shutdownChan: make(chan struct{}),
	}
}

func (s *RateLimitSweeper) Start() {
	s.logger.Info("Starting rate limit sweeper",
		zap.Duration("interval", s.interval),
		zap.Duration("retention", s.retention))

	s.waitGroup.Add(1)
	go s.run()
}

func (s *RateLimitSweeper) Stop() {
	s.logger.Info("Stopping rate limit sweeper...")
	close(s.shutdownChan)
	s.waitGroup.Wait()
	s.logger.Info("Rate limit sweeper stopped")
}

func (s *RateLimitSweeper) run() {
	defer s.waitGroup.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.shutdownChan:
			return
		case <-ticker.C:
			s.sweep(context.Background())
		}
	}
}

func (s *RateLimitSweeper) sweep(ctx context.Context) int64 {
	removed, err := s.sweeper.Sweep(ctx, s.retention)
	if err != nil {
		s.logger.Error("Failed to sweep rate limit records", err)
		return 0
	}

	if removed > 0 {
		s.logger.Info("Swept rate limit records", zap.Int64("removed", removed))
	}
	return removed
}
