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

// OfficerStore is a map-backed staff directory.
type OfficerStore struct {
	mu       sync.RWMutex
	officers map[string]domain.Officer
}

// NewOfficerStore creates an empty directory.
func NewOfficerStore() *OfficerStore {
	return &OfficerStore{officers: make(map[string]domain.Officer)}
}

func (s *OfficerStore) Create(ctx context.Context, o *domain.Officer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID == "" {
		o.ID = uuid.NewString()
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	s.officers[o.ID] = *o
	return nil
}

func (s *OfficerStore) Update(ctx context.Context, o *domain.Officer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.officers[o.ID]; !ok {
		return repository.ErrNotFound
	}
	o.UpdatedAt = time.Now()
	s.officers[o.ID] = *o
	return nil
}

func (s *OfficerStore) GetByID(ctx context.Context, id string) (*domain.Officer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.officers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := o
	return &copied, nil
}

func (s *OfficerStore) GetByEmail(ctx context.Context, email string) (*domain.Officer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, o := range s.officers {
		if o.Email == email {
			copied := o
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *OfficerStore) List(ctx context.Context, filter repository.OfficerFilter) ([]domain.Officer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.Officer
	for _, o := range s.officers {
		if filter.Role != nil && o.Role != *filter.Role {
			continue
		}
		if filter.DepartmentID != nil && (o.DepartmentID == nil || *o.DepartmentID != *filter.DepartmentID) {
			continue
		}
		if filter.State != nil && o.Geo.State != *filter.State {
			continue
		}
		if filter.District != nil && o.Geo.District != *filter.District {
			continue
		}
		if filter.RegionCode != nil && o.Geo.RegionCode != *filter.RegionCode {
			continue
		}
		if filter.RegionID != nil && o.Geo.RegionID != *filter.RegionID {
			continue
		}
		if filter.Active != nil && o.Active != *filter.Active {
			continue
		}
		result = append(result, o)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result, nil
}
