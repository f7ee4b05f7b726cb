package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/civicpulse/grievance-service/internal/service"
)

// ReconcileSweeper expires optimistic board moves that never received an
// authoritative answer, forcing their rollback.
type ReconcileSweeper struct {
	reconciler *service.Reconciler
	interval   time.Duration
	logger     *zap.Logger
}

// NewReconcileSweeper constructs the sweeper.
func NewReconcileSweeper(reconciler *service.Reconciler, interval time.Duration, logger *zap.Logger) *ReconcileSweeper {
	if interval <= 0 {
		interval = time.Second
	}
	return &ReconcileSweeper{reconciler: reconciler, interval: interval, logger: logger}
}

// Run blocks until the context is cancelled.
func (s *ReconcileSweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for _, outcome := range s.reconciler.ExpireOverdue(time.Now()) {
				s.logger.Warn("optimistic update expired",
					zap.String("grievance_id", outcome.GrievanceID),
					zap.String("rollback_status", string(outcome.Status)))
			}
		}
	}
}
