package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/repository"
)

// MediaStore is a map-backed, append-only MediaRepository.
type MediaStore struct {
	mu    sync.RWMutex
	media []domain.Media
}

// NewMediaStore creates an empty store.
func NewMediaStore() *MediaStore {
	return &MediaStore{}
}

func (s *MediaStore) Create(ctx context.Context, media *domain.Media) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if media.ID == "" {
		media.ID = uuid.NewString()
	}
	media.CreatedAt = time.Now()
	s.media = append(s.media, *media)
	return nil
}

func (s *MediaStore) ListByGrievance(ctx context.Context, grievanceID string) ([]domain.Media, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []domain.Media
	for _, m := range s.media {
		if m.GrievanceID == grievanceID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (s *MediaStore) CountByPurpose(ctx context.Context, grievanceID string, purpose domain.MediaPurpose) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, m := range s.media {
		if m.GrievanceID == grievanceID && m.Purpose == purpose {
			count++
		}
	}
	return count, nil
}

// FeedbackStore is a map-backed FeedbackRepository, one row per grievance.
type FeedbackStore struct {
	mu       sync.RWMutex
	feedback map[string]domain.Feedback
}

// NewFeedbackStore creates an empty store.
func NewFeedbackStore() *FeedbackStore {
	return &FeedbackStore{feedback: make(map[string]domain.Feedback)}
}

func (s *FeedbackStore) Create(ctx context.Context, feedback *domain.Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.feedback[feedback.GrievanceID]; ok {
		return errors.New("feedback already exists for grievance")
	}
	if feedback.ID == "" {
		feedback.ID = uuid.NewString()
	}
	feedback.CreatedAt = time.Now()
	s.feedback[feedback.GrievanceID] = *feedback
	return nil
}

func (s *FeedbackStore) GetByGrievance(ctx context.Context, grievanceID string) (*domain.Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	feedback, ok := s.feedback[grievanceID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := feedback
	return &copied, nil
}

// TimelineStore is a map-backed TimelineRepository.
type TimelineStore struct {
	mu      sync.RWMutex
	entries []domain.TimelineEntry
}

// NewTimelineStore creates an empty store.
func NewTimelineStore() *TimelineStore {
	return &TimelineStore{}
}

func (s *TimelineStore) Create(ctx context.Context, entry *domain.TimelineEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.CreatedAt = time.Now()
	s.entries = append(s.entries, *entry)
	return nil
}

func (s *TimelineStore) ListByGrievance(ctx context.Context, grievanceID string, limit, offset int) ([]domain.TimelineEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []domain.TimelineEntry
	for _, entry := range s.entries {
		if entry.GrievanceID == grievanceID {
			result = append(result, entry)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	if limit <= 0 {
		limit = 100
	}
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

// UserStore is a map-backed UserRepository for citizen accounts.
type UserStore struct {
	mu    sync.RWMutex
	users map[string]domain.User
}

// NewUserStore creates an empty store.
func NewUserStore() *UserStore {
	return &UserStore{users: make(map[string]domain.User)}
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}

func (s *UserStore) GetByID(ctx context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copied := user
	return &copied, nil
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}
