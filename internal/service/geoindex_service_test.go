package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/repository"
	"github.com/civicpulse/grievance-service/internal/repository/memory"
)

func TestGeoIndexAddRemove(t *testing.T) {
	idx := NewGeoIndex(zap.NewNop(), nil)
	scope := domain.GeoScope{State: "Odisha", District: "Cuttack"}

	idx.Add(scope)
	idx.Add(scope)
	idx.Add(domain.GeoScope{State: "Odisha", District: "Puri"})

	assert.Equal(t, 3, idx.CountsByState()["Odisha"])
	assert.Equal(t, 2, idx.CountsByDistrict("Odisha")["Cuttack"])
	assert.Equal(t, 1, idx.CountsByDistrict("Odisha")["Puri"])

	idx.Remove(scope)
	assert.Equal(t, 2, idx.CountsByState()["Odisha"])
	assert.Equal(t, 1, idx.CountsByDistrict("Odisha")["Cuttack"])
}

func TestGeoIndexIgnoresScopesWithoutState(t *testing.T) {
	idx := NewGeoIndex(zap.NewNop(), nil)

	idx.Add(domain.GeoScope{RegionCode: "OD-CT"})
	idx.Add(domain.GeoScope{})

	assert.Empty(t, idx.CountsByState())
}

func TestGeoIndexNeverGoesNegative(t *testing.T) {
	idx := NewGeoIndex(zap.NewNop(), nil)
	scope := domain.GeoScope{State: "Odisha", District: "Cuttack"}

	idx.Remove(scope)
	idx.Add(scope)
	idx.Remove(scope)
	idx.Remove(scope)

	assert.Zero(t, idx.CountsByState()["Odisha"])
	assert.Zero(t, idx.CountsByDistrict("Odisha")["Cuttack"])
}

func TestGeoIndexQuiescentEqualsRecount(t *testing.T) {
	ctx := context.Background()
	store := memory.NewGrievanceStore()
	idx := NewGeoIndex(zap.NewNop(), nil)

	scopes := []domain.GeoScope{
		{State: "Odisha", District: "Cuttack"},
		{State: "Odisha", District: "Cuttack"},
		{State: "Odisha", District: "Puri"},
		{State: "Kerala", District: "Kochi"},
	}
	for _, scope := range scopes {
		g := &domain.Grievance{
			Title:       "t",
			Description: "d",
			CitizenID:   "c",
			Status:      domain.StatusNew,
			Priority:    domain.PriorityLow,
			Geo:         scope,
		}
		require.NoError(t, store.Create(ctx, g))
		idx.Add(scope)
	}

	// Resolve one and mirror it in the index.
	items, err := store.ListWithFilter(ctx, repository.GrievanceFilter{Limit: 100})
	require.NoError(t, err)
	resolved := items[0]
	resolved.Status = domain.StatusResolved
	require.NoError(t, store.Update(ctx, &resolved))
	idx.Remove(resolved.Geo)

	recount := NewGeoIndex(zap.NewNop(), nil)
	require.NoError(t, recount.Rebuild(ctx, store))

	assert.Equal(t, recount.CountsByState(), idx.CountsByState())
	assert.Equal(t, recount.CountsByDistrict("Odisha"), idx.CountsByDistrict("Odisha"))
	assert.Equal(t, recount.CountsByDistrict("Kerala"), idx.CountsByDistrict("Kerala"))
}

func TestGeoIndexRebuildReplacesDrift(t *testing.T) {
	ctx := context.Background()
	store := memory.NewGrievanceStore()
	g := &domain.Grievance{
		Title:       "t",
		Description: "d",
		CitizenID:   "c",
		Status:      domain.StatusNew,
		Priority:    domain.PriorityLow,
		Geo:         domain.GeoScope{State: "Odisha", District: "Cuttack"},
	}
	require.NoError(t, store.Create(ctx, g))

	idx := NewGeoIndex(zap.NewNop(), nil)
	// Seed drifted counts.
	idx.Add(domain.GeoScope{State: "Odisha", District: "Cuttack"})
	idx.Add(domain.GeoScope{State: "Odisha", District: "Cuttack"})
	idx.Add(domain.GeoScope{State: "Ghost", District: "Nowhere"})

	require.NoError(t, idx.Rebuild(ctx, store))
	assert.Equal(t, map[string]int{"Odisha": 1}, idx.CountsByState())
	assert.Empty(t, idx.CountsByDistrict("Ghost"))
}

func TestGeoIndexConcurrentAdjustments(t *testing.T) {
	idx := NewGeoIndex(zap.NewNop(), nil)
	scope := domain.GeoScope{State: "Odisha", District: "Cuttack"}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx.Add(scope)
		}()
	}
	wg.Wait()
	assert.Equal(t, 50, idx.CountsByState()["Odisha"])

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx.Remove(scope)
		}()
	}
	wg.Wait()
	assert.Zero(t, idx.CountsByState()["Odisha"])
}
