package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civicpulse/grievance-service/internal/repository"
	"github.com/civicpulse/grievance-service/internal/service"
)

// GeoRebuildWorker periodically recomputes the geo index from the record
// store. The incremental updates on the transition path keep the index
// current; this sweep is the consistency check that catches drift.
type GeoRebuildWorker struct {
	geo        *service.GeoIndex
	grievances repository.GrievanceRepository
	interval   time.Duration
	logger     *zap.Logger
}

// NewGeoRebuildWorker constructs the worker.
func NewGeoRebuildWorker(geo *service.GeoIndex, grievances repository.GrievanceRepository, interval time.Duration, logger *zap.Logger) *GeoRebuildWorker {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &GeoRebuildWorker{geo: geo, grievances: grievances, interval: interval, logger: logger}
}

// Run blocks until the context is cancelled.
func (w *GeoRebuildWorker) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.geo.Rebuild(ctx, w.grievances); err != nil {
				w.logger.Warn("geo index rebuild failed", zap.Error(err))
			}
		}
	}
}
