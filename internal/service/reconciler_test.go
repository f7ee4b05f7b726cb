package service

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicpulse/grievance-service/internal/domain"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

func TestReconcilerCommit(t *testing.T) {
	r := NewReconciler(time.Second, zap.NewNop())

	_, err := r.Begin("g-1", domain.EventVerify, domain.StatusPendingVerification, domain.StatusResolved)
	require.NoError(t, err)

	result := &domain.Grievance{ID: "g-1", Status: domain.StatusResolved}
	outcome := r.Resolve("g-1", result, nil)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Committed)
	assert.Equal(t, domain.StatusResolved, outcome.Status)

	_, pending := r.Pending("g-1")
	assert.False(t, pending)
}

func TestReconcilerRollbackOnError(t *testing.T) {
	r := NewReconciler(time.Second, zap.NewNop())

	_, err := r.Begin("g-1", domain.EventVerify, domain.StatusPendingVerification, domain.StatusResolved)
	require.NoError(t, err)

	outcome := r.Resolve("g-1", nil, errors.New("rejected"))
	require.NotNil(t, outcome)
	assert.False(t, outcome.Committed)
	assert.Equal(t, domain.StatusPendingVerification, outcome.Status)
	assert.Error(t, outcome.Err)
}

func TestReconcilerSingleInFlight(t *testing.T) {
	r := NewReconciler(time.Second, zap.NewNop())

	_, err := r.Begin("g-1", domain.EventStartWork, domain.StatusAssigned, domain.StatusInProgress)
	require.NoError(t, err)

	_, err = r.Begin("g-1", domain.EventVerify, domain.StatusAssigned, domain.StatusResolved)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	// A different grievance is unaffected.
	_, err = r.Begin("g-2", domain.EventStartWork, domain.StatusAssigned, domain.StatusInProgress)
	assert.NoError(t, err)
}

func TestReconcilerAbandonDoesNotSuppressAnswer(t *testing.T) {
	r := NewReconciler(time.Second, zap.NewNop())

	_, err := r.Begin("g-1", domain.EventStartWork, domain.StatusAssigned, domain.StatusInProgress)
	require.NoError(t, err)

	r.Abandon("g-1")

	p, pending := r.Pending("g-1")
	require.True(t, pending)
	assert.True(t, p.Abandoned)

	outcome := r.Resolve("g-1", &domain.Grievance{ID: "g-1", Status: domain.StatusInProgress}, nil)
	require.NotNil(t, outcome)
	assert.True(t, outcome.Committed)
}

func TestReconcilerResolveWithoutPending(t *testing.T) {
	r := NewReconciler(time.Second, zap.NewNop())
	assert.Nil(t, r.Resolve("g-1", nil, nil))
}

func TestReconcilerExpireOverdue(t *testing.T) {
	r := NewReconciler(50*time.Millisecond, zap.NewNop())

	_, err := r.Begin("g-1", domain.EventVerify, domain.StatusPendingVerification, domain.StatusResolved)
	require.NoError(t, err)

	outcomes := r.ExpireOverdue(time.Now())
	assert.Empty(t, outcomes)

	outcomes = r.ExpireOverdue(time.Now().Add(time.Second))
	require.Len(t, outcomes, 1)
	assert.False(t, outcomes[0].Committed)
	assert.Equal(t, domain.StatusPendingVerification, outcomes[0].Status)
	assert.Equal(t, "UNAVAILABLE", apperrors.ToDomainError(outcomes[0].Err).Code)

	// Expired entries free the slot for a new attempt.
	_, err = r.Begin("g-1", domain.EventVerify, domain.StatusPendingVerification, domain.StatusResolved)
	assert.NoError(t, err)
}
