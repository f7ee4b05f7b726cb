package service

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/civicpulse/grievance-service/internal/domain"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

// PendingTransition is a client-side tentative status awaiting the
// authoritative verdict. At most one exists per grievance.
type PendingTransition struct {
	GrievanceID   string
	Event         domain.LifecycleEvent
	Authoritative domain.GrievanceStatus
	Tentative     domain.GrievanceStatus
	StartedAt     time.Time
	Deadline      time.Time
	Abandoned     bool
}

// Outcome is the reconciler's verdict for a pending transition.
type Outcome struct {
	GrievanceID string
	Committed   bool
	Status      domain.GrievanceStatus
	Err         error
}

// Reconciler tracks optimistic status updates made by interactive clients
// (the drag-and-drop board) and reconciles them against the lifecycle
// service's answer. Abandoning a view does not suppress reconciliation; the
// late answer is still applied or rolled back when it arrives.
type Reconciler struct {
	mu      sync.Mutex
	pending map[string]*PendingTransition
	timeout time.Duration
	logger  *zap.Logger
}

// NewReconciler constructs a reconciler with the given answer timeout.
func NewReconciler(timeout time.Duration, logger *zap.Logger) *Reconciler {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Reconciler{
		pending: make(map[string]*PendingTransition),
		timeout: timeout,
		logger:  logger,
	}
}

// Begin registers a tentative transition. A second optimistic update for the
// same grievance while one is in flight is rejected with CONFLICT; the
// client must wait for the first to settle.
func (r *Reconciler) Begin(grievanceID string, event domain.LifecycleEvent, authoritative, tentative domain.GrievanceStatus) (*PendingTransition, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pending[grievanceID]; exists {
		return nil, apperrors.NewConflict("a transition for this grievance is already in flight", map[string]any{
			"grievance_id": grievanceID,
		})
	}

	now := time.Now()
	p := &PendingTransition{
		GrievanceID:   grievanceID,
		Event:         event,
		Authoritative: authoritative,
		Tentative:     tentative,
		StartedAt:     now,
		Deadline:      now.Add(r.timeout),
	}
	r.pending[grievanceID] = p
	return p, nil
}

// Resolve settles a pending transition with the authoritative answer. On
// success the tentative status is committed as the new authoritative one;
// on failure the outcome carries the original status for rollback. Resolving
// a grievance with nothing pending is a no-op returning nil.
func (r *Reconciler) Resolve(grievanceID string, result *domain.Grievance, transitionErr error) *Outcome {
	r.mu.Lock()
	p, exists := r.pending[grievanceID]
	if exists {
		delete(r.pending, grievanceID)
	}
	r.mu.Unlock()

	if !exists {
		return nil
	}

	if transitionErr != nil {
		if p.Abandoned && r.logger != nil {
			r.logger.Info("abandoned optimistic update rolled back",
				zap.String("grievance_id", grievanceID),
				zap.String("event", string(p.Event)))
		}
		return &Outcome{
			GrievanceID: grievanceID,
			Committed:   false,
			Status:      p.Authoritative,
			Err:         transitionErr,
		}
	}

	status := p.Tentative
	if result != nil {
		status = result.Status
	}
	return &Outcome{
		GrievanceID: grievanceID,
		Committed:   true,
		Status:      status,
	}
}

// Abandon marks a pending transition as no longer watched by a client. The
// entry stays registered so the eventual answer still settles it.
func (r *Reconciler) Abandon(grievanceID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, exists := r.pending[grievanceID]; exists {
		p.Abandoned = true
	}
}

// Pending reports the in-flight transition for a grievance, if any.
func (r *Reconciler) Pending(grievanceID string) (*PendingTransition, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, exists := r.pending[grievanceID]
	if !exists {
		return nil, false
	}
	copied := *p
	return &copied, true
}

// ExpireOverdue rolls back entries whose deadline passed without an answer
// and returns their outcomes. Intended to be run periodically.
func (r *Reconciler) ExpireOverdue(now time.Time) []Outcome {
	r.mu.Lock()
	var expired []*PendingTransition
	for id, p := range r.pending {
		if now.After(p.Deadline) {
			expired = append(expired, p)
			delete(r.pending, id)
		}
	}
	r.mu.Unlock()

	outcomes := make([]Outcome, 0, len(expired))
	for _, p := range expired {
		if r.logger != nil {
			r.logger.Warn("optimistic update timed out, rolling back",
				zap.String("grievance_id", p.GrievanceID),
				zap.String("event", string(p.Event)))
		}
		outcomes = append(outcomes, Outcome{
			GrievanceID: p.GrievanceID,
			Committed:   false,
			Status:      p.Authoritative,
			Err:         apperrors.NewUnavailable("no authoritative answer before deadline", nil),
		})
	}
	return outcomes
}
