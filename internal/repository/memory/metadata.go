package memory

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/repository"
)

// DepartmentStore is a map-backed DepartmentRepository.
type DepartmentStore struct {
	mu          sync.RWMutex
	departments map[string]domain.Department
}

// NewDepartmentStore creates an empty store.
func NewDepartmentStore() *DepartmentStore {
	return &DepartmentStore{departments: make(map[string]domain.Department)}
}

// Put adds or replaces a department, assigning an id when missing.
func (s *DepartmentStore) Put(dept domain.Department) domain.Department {
	s.mu.Lock()
	defer s.mu.Unlock()
	if dept.ID == "" {
		dept.ID = uuid.NewString()
	}
	s.departments[dept.ID] = dept
	return dept
}

func (s *DepartmentStore) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dept, ok := s.departments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := dept
	return &copied, nil
}

func (s *DepartmentStore) GetByName(ctx context.Context, name string) (*domain.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, dept := range s.departments {
		if dept.Name == name {
			copied := dept
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *DepartmentStore) List(ctx context.Context) ([]domain.Department, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Department, 0, len(s.departments))
	for _, dept := range s.departments {
		result = append(result, dept)
	}
	return result, nil
}

// RegionStore is a map-backed RegionRepository.
type RegionStore struct {
	mu      sync.RWMutex
	regions map[string]domain.Region
}

// NewRegionStore creates an empty store.
func NewRegionStore() *RegionStore {
	return &RegionStore{regions: make(map[string]domain.Region)}
}

// Put adds or replaces a region, assigning an id when missing.
func (s *RegionStore) Put(region domain.Region) domain.Region {
	s.mu.Lock()
	defer s.mu.Unlock()
	if region.ID == "" {
		region.ID = uuid.NewString()
	}
	s.regions[region.ID] = region
	return region
}

func (s *RegionStore) GetByID(ctx context.Context, id string) (*domain.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	region, ok := s.regions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := region
	return &copied, nil
}

func (s *RegionStore) GetByCode(ctx context.Context, code string) (*domain.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, region := range s.regions {
		if region.Code == code {
			copied := region
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *RegionStore) List(ctx context.Context) ([]domain.Region, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Region, 0, len(s.regions))
	for _, region := range s.regions {
		result = append(result, region)
	}
	return result, nil
}
