package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/fieldops/salesreport/internal/report/store"
)

// HousekeepingService periodically deletes expired refresh tokens. It runs
// on its own timer, decoupled from request handling.
type HousekeepingService struct {
	store    store.Store
	logger   *slog.Logger
	interval time.Duration

	done chan struct{}
}

func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	return &HousekeepingService{
		store:    st,
		logger:   logger,
		interval: interval,
		done:     make(chan struct{}),
	}
}

// Start launches the background loop. Call Stop to end it.
func (s *HousekeepingService) Start() {
	go s.run()
}

// Stop signals the loop to exit.
func (s *HousekeepingService) Stop() {
	close(s.done)
}

func (s *HousekeepingService) run() {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *HousekeepingService) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.store.RefreshTokens().DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		s.logger.Error("housekeeping sweep failed", "error", err)
		return
	}
	if n > 0 {
		s.logger.Info("housekeeping removed expired refresh tokens", "count", n)
	}
}
