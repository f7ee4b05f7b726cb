// Package memory provides in-memory repository implementations backed by
// maps. They serve the test suite and deployments without Postgres.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/repository"
)

// GrievanceStore is a map-backed GrievanceRepository.
type GrievanceStore struct {
	mu         sync.RWMutex
	grievances map[string]domain.Grievance
}

// NewGrievanceStore creates an empty store.
func NewGrievanceStore() *GrievanceStore {
	return &GrievanceStore{grievances: make(map[string]domain.Grievance)}
}

func (s *GrievanceStore) Create(ctx context.Context, g *domain.Grievance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now()
	g.CreatedAt = now
	g.UpdatedAt = now
	s.grievances[g.ID] = *g
	return nil
}

func (s *GrievanceStore) Update(ctx context.Context, g *domain.Grievance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.grievances[g.ID]; !ok {
		return repository.ErrNotFound
	}
	g.UpdatedAt = time.Now()
	s.grievances[g.ID] = *g
	return nil
}

func (s *GrievanceStore) GetByID(ctx context.Context, id string) (*domain.Grievance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.grievances[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := g
	return &copied, nil
}

func (s *GrievanceStore) ListWithFilter(ctx context.Context, filter repository.GrievanceFilter) ([]domain.Grievance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Grievance
	for _, g := range s.grievances {
		if !matchesFilter(g, filter) {
			continue
		}
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].UpdatedAt.After(result[j].UpdatedAt)
	})

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	if offset >= len(result) {
		return nil, nil
	}
	end := offset + limit
	if end > len(result) {
		end = len(result)
	}
	return result[offset:end], nil
}

func (s *GrievanceStore) CountByStatus(ctx context.Context) (map[domain.GrievanceStatus]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.GrievanceStatus]int)
	for _, g := range s.grievances {
		counts[g.Status]++
	}
	return counts, nil
}

func (s *GrievanceStore) CountActiveByPriority(ctx context.Context) (map[domain.Priority]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[domain.Priority]int)
	for _, g := range s.grievances {
		if !g.Status.Active() {
			continue
		}
		counts[g.Priority]++
	}
	return counts, nil
}

func (s *GrievanceStore) CountActiveByGeo(ctx context.Context) ([]repository.GeoCountRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type key struct{ state, district string }
	counts := make(map[key]int)
	for _, g := range s.grievances {
		if !g.Status.Active() || g.Geo.State == "" {
			continue
		}
		counts[key{g.Geo.State, g.Geo.District}]++
	}

	result := make([]repository.GeoCountRow, 0, len(counts))
	for k, count := range counts {
		result = append(result, repository.GeoCountRow{State: k.state, District: k.district, Count: count})
	}
	return result, nil
}

func matchesFilter(g domain.Grievance, filter repository.GrievanceFilter) bool {
	if filter.CitizenID != nil && g.CitizenID != *filter.CitizenID {
		return false
	}
	if filter.AssigneeID != nil && (g.AssigneeID == nil || *g.AssigneeID != *filter.AssigneeID) {
		return false
	}
	if filter.DepartmentID != nil && (g.DepartmentID == nil || *g.DepartmentID != *filter.DepartmentID) {
		return false
	}
	if len(filter.Statuses) > 0 && !containsStatus(filter.Statuses, g.Status) {
		return false
	}
	if len(filter.Priorities) > 0 && !containsPriority(filter.Priorities, g.Priority) {
		return false
	}
	if filter.State != nil && g.Geo.State != *filter.State {
		return false
	}
	if filter.District != nil && g.Geo.District != *filter.District {
		return false
	}
	if filter.RegionCode != nil && g.Geo.RegionCode != *filter.RegionCode {
		return false
	}
	return true
}

func containsStatus(list []domain.GrievanceStatus, status domain.GrievanceStatus) bool {
	for _, s := range list {
		if s == status {
			return true
		}
	}
	return false
}

func containsPriority(list []domain.Priority, priority domain.Priority) bool {
	for _, p := range list {
		if p == priority {
			return true
		}
	}
	return false
}
