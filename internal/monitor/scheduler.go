package monitor

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler drives the registry: one batch update across all patients per
// interval.
type Scheduler struct {
	registry *Registry
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(registry *Registry, interval time.Duration, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 4 * time.Second
	}
	return &Scheduler{registry: registry, interval: interval, logger: logger}
}

func (s *Scheduler) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		if s.logger != nil {
			s.logger.Info("update scheduler started", "interval", s.interval.String())
		}
		for {
			select {
			case <-ticker.C:
				s.registry.UpdateAll(ctx, time.Now().UTC())
			case <-ctx.Done():
				if s.logger != nil {
					s.logger.Info("update scheduler stopped")
				}
				return
			}
		}
	}()
}
