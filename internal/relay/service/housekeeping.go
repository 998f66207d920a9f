package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/acrelay/internal/relay/store"
)

// HousekeepingService periodically evicts results nobody collected within
// ResultTTL, so the store does not grow with every abandoned job.
type HousekeepingService struct {
	Store     store.Store
	Logger    *slog.Logger
	Interval  time.Duration
	ResultTTL time.Duration

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping service. A non-positive
// interval defaults to 5 minutes and a non-positive TTL to 30 minutes.
func NewHousekeepingService(
	store store.Store,
	logger *slog.Logger,
	interval, resultTTL time.Duration,
) *HousekeepingService {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	if resultTTL <= 0 {
		resultTTL = 30 * time.Minute
	}

	return &HousekeepingService{
		Store:     store,
		Logger:    logger,
		Interval:  interval,
		ResultTTL: resultTTL,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background worker. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval, "result_ttl", s.ResultTTL)
}

// Stop blocks until the worker has finished any in-progress sweep.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background(), time.Now())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep deletes results last written more than ResultTTL before now.
func (s *HousekeepingService) Sweep(ctx context.Context, now time.Time) int {
	deleted, err := s.Store.Results().DeleteExpiredResults(ctx, now.Add(-s.ResultTTL))
	if err != nil {
		s.Logger.Error("failed to delete expired results", "error", err)
		return 0
	}

	if deleted > 0 {
		s.Logger.Info("housekeeping sweep completed", "deleted_results", deleted)
	} else {
		s.Logger.Debug("housekeeping sweep completed", "deleted_results", 0)
	}
	return deleted
}
