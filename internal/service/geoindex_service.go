package service

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/persistence"
	"github.com/civicpulse/grievance-service/internal/repository"
)

const geoSnapshotKey = "geo_counts_snapshot"

// GeoIndex maintains rollup counts of active (not yet resolved) grievances
// per state and per (state, district). The index is adjusted by one at the
// relevant keys on every accepted transition that crosses the resolved
// boundary; a full recount exists only as a periodic consistency check.
type GeoIndex struct {
	mu         sync.RWMutex
	byState    map[string]int
	byDistrict map[string]map[string]int

	redis  *persistence.Redis
	logger *zap.Logger
}

// NewGeoIndex creates an empty index. The Redis client is optional and used
// only for best-effort snapshot publication.
func NewGeoIndex(logger *zap.Logger, redis *persistence.Redis) *GeoIndex {
	return &GeoIndex{
		byState:    make(map[string]int),
		byDistrict: make(map[string]map[string]int),
		redis:      redis,
		logger:     logger,
	}
}

// Add increments the counts for an active grievance in the given scope.
// Scopes without a state (legacy code/id only) are not indexed.
func (x *GeoIndex) Add(scope domain.GeoScope) {
	if scope.State == "" {
		return
	}
	x.mu.Lock()
	x.byState[scope.State]++
	if scope.District != "" {
		districts := x.byDistrict[scope.State]
		if districts == nil {
			districts = make(map[string]int)
			x.byDistrict[scope.State] = districts
		}
		districts[scope.District]++
	}
	x.mu.Unlock()
	x.publishSnapshot()
}

// Remove decrements the counts when a grievance in the scope resolves.
// Counts clamp at zero; a decrement below zero indicates drift and is
// logged rather than stored.
func (x *GeoIndex) Remove(scope domain.GeoScope) {
	if scope.State == "" {
		return
	}
	x.mu.Lock()
	if x.byState[scope.State] > 0 {
		x.byState[scope.State]--
		if x.byState[scope.State] == 0 {
			delete(x.byState, scope.State)
		}
	} else if x.logger != nil {
		x.logger.Warn("geo index underflow", zap.String("state", scope.State))
	}
	if scope.District != "" {
		if districts := x.byDistrict[scope.State]; districts != nil {
			if districts[scope.District] > 0 {
				districts[scope.District]--
				if districts[scope.District] == 0 {
					delete(districts, scope.District)
				}
			}
			if len(districts) == 0 {
				delete(x.byDistrict, scope.State)
			}
		}
	}
	x.mu.Unlock()
	x.publishSnapshot()
}

// CountsByState returns a copy of the per-state counts. The snapshot may be
// slightly stale relative to in-flight transitions but never negative.
func (x *GeoIndex) CountsByState() map[string]int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	result := make(map[string]int, len(x.byState))
	for state, count := range x.byState {
		result[state] = count
	}
	return result
}

// CountsByDistrict returns a copy of the district counts within a state.
func (x *GeoIndex) CountsByDistrict(state string) map[string]int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	districts := x.byDistrict[state]
	result := make(map[string]int, len(districts))
	for district, count := range districts {
		result[district] = count
	}
	return result
}

// Rebuild recomputes the index from the record store and swaps it in.
// Used at startup and by the periodic consistency check, never on the
// transition hot path.
func (x *GeoIndex) Rebuild(ctx context.Context, grievances repository.GrievanceRepository) error {
	rows, err := grievances.CountActiveByGeo(ctx)
	if err != nil {
		return err
	}

	byState := make(map[string]int)
	byDistrict := make(map[string]map[string]int)
	for _, row := range rows {
		byState[row.State] += row.Count
		if row.District != "" {
			districts := byDistrict[row.State]
			if districts == nil {
				districts = make(map[string]int)
				byDistrict[row.State] = districts
			}
			districts[row.District] += row.Count
		}
	}

	x.mu.Lock()
	drift := len(byState) != len(x.byState)
	if !drift {
		for state, count := range byState {
			if x.byState[state] != count {
				drift = true
				break
			}
		}
	}
	x.byState = byState
	x.byDistrict = byDistrict
	x.mu.Unlock()

	if drift && x.logger != nil {
		x.logger.Warn("geo index drift corrected by rebuild")
	}
	x.publishSnapshot()
	return nil
}

// publishSnapshot pushes the current counts to Redis so dashboards can read
// a stale copy without touching the index. Best effort.
func (x *GeoIndex) publishSnapshot() {
	if x.redis == nil || x.redis.Client == nil {
		return
	}
	x.mu.RLock()
	payload := struct {
		ByState    map[string]int            `json:"by_state"`
		ByDistrict map[string]map[string]int `json:"by_district"`
	}{x.byState, x.byDistrict}
	data, err := json.Marshal(payload)
	x.mu.RUnlock()
	if err != nil {
		return
	}
	if err := x.redis.Set(context.Background(), geoSnapshotKey, data, 600); err != nil && x.logger != nil {
		x.logger.Debug("geo snapshot publish failed", zap.Error(err))
	}
}
