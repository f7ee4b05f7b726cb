package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/events"
	"github.com/civicpulse/grievance-service/internal/repository"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

// CreateGrievanceInput carries citizen-supplied fields for a new grievance.
type CreateGrievanceInput struct {
	Title        string
	Description  string
	DepartmentID *string
	Priority     domain.Priority
	Category     *string
	Geo          domain.GeoScope
	Location     *string
	Evidence     []EvidenceInput
}

// GrievanceDetail is a grievance with its attachments, feedback and history.
type GrievanceDetail struct {
	Grievance *domain.Grievance
	Media     []domain.Media
	Feedback  *domain.Feedback
	Timeline  []domain.TimelineEntry
}

// DashboardStats is the admin overview rollup.
type DashboardStats struct {
	Total         int
	Active        int
	Resolved      int
	Critical      int
	ByStatus      map[domain.GrievanceStatus]int
	ActiveByState map[string]int
}

// GrievanceService covers intake and read paths. All status changes go
// through LifecycleService.
type GrievanceService struct {
	grievances  repository.GrievanceRepository
	media       repository.MediaRepository
	feedback    repository.FeedbackRepository
	timeline    repository.TimelineRepository
	departments repository.DepartmentRepository
	matcher     *MatcherService
	geo         *GeoIndex
	dispatcher  events.Dispatcher
	logger      *zap.Logger
}

// GrievanceDependencies bundles collaborators for the grievance service.
type GrievanceDependencies struct {
	GrievanceRepo  repository.GrievanceRepository
	MediaRepo      repository.MediaRepository
	FeedbackRepo   repository.FeedbackRepository
	TimelineRepo   repository.TimelineRepository
	DepartmentRepo repository.DepartmentRepository
	Matcher        *MatcherService
	GeoIndex       *GeoIndex
	Dispatcher     events.Dispatcher
	Logger         *zap.Logger
}

// NewGrievanceService constructs the service.
func NewGrievanceService(deps GrievanceDependencies) *GrievanceService {
	return &GrievanceService{
		grievances:  deps.GrievanceRepo,
		media:       deps.MediaRepo,
		feedback:    deps.FeedbackRepo,
		timeline:    deps.TimelineRepo,
		departments: deps.DepartmentRepo,
		matcher:     deps.Matcher,
		geo:         deps.GeoIndex,
		dispatcher:  deps.Dispatcher,
		logger:      deps.Logger,
	}
}

// Create validates input, normalizes the geo scope, stores the grievance in
// status NEW and bumps the live geo rollup.
func (s *GrievanceService) Create(ctx context.Context, citizenID string, input CreateGrievanceInput) (*domain.Grievance, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, apperrors.NewValidationError("title required", nil)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}
	switch input.Priority {
	case "":
		input.Priority = domain.PriorityLow
	case domain.PriorityLow, domain.PriorityMedium, domain.PriorityHigh, domain.PriorityCritical:
	default:
		return nil, apperrors.NewValidationError("unknown priority", map[string]any{"priority": input.Priority})
	}

	if input.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *input.DepartmentID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, apperrors.NewValidationError("unknown department", map[string]any{
					"department_id": *input.DepartmentID,
				})
			}
			return nil, apperrors.NewUnavailable("record store unavailable", err)
		}
	}

	geo := s.matcher.Normalize(ctx, input.Geo)

	grievance := &domain.Grievance{
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		CitizenID:    citizenID,
		DepartmentID: input.DepartmentID,
		Status:       domain.StatusNew,
		Priority:     input.Priority,
		Category:     input.Category,
		Geo:          geo,
		Location:     input.Location,
	}
	if err := s.grievances.Create(ctx, grievance); err != nil {
		return nil, apperrors.NewUnavailable("record store unavailable", err)
	}

	uploaderID := citizenID
	for _, ev := range input.Evidence {
		if strings.TrimSpace(ev.URL) == "" {
			continue
		}
		media := &domain.Media{
			GrievanceID: grievance.ID,
			URL:         ev.URL,
			Purpose:     domain.MediaPurposeReportEvidence,
			UploaderID:  &uploaderID,
		}
		if ev.MimeType != "" {
			mime := ev.MimeType
			media.MimeType = &mime
		}
		if err := s.media.Create(ctx, media); err != nil && s.logger != nil {
			s.logger.Warn("evidence write failed", zap.Error(err), zap.String("grievance_id", grievance.ID))
		}
	}

	s.geo.Add(grievance.Geo)

	if s.timeline != nil {
		actorID := citizenID
		entry := &domain.TimelineEntry{
			GrievanceID: grievance.ID,
			Event:       domain.EventCreate,
			ActorType:   domain.SubjectTypeCitizen,
			ActorID:     &actorID,
			NewValue:    map[string]any{"status": grievance.Status},
		}
		if err := s.timeline.Create(ctx, entry); err != nil && s.logger != nil {
			s.logger.Warn("timeline write failed", zap.Error(err), zap.String("grievance_id", grievance.ID))
		}
	}

	if s.dispatcher != nil {
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventGrievanceCreated,
			GrievanceID: grievance.ID,
			Actor:       events.Actor{Type: domain.SubjectTypeCitizen, CitizenID: &uploaderID},
			Timestamp:   time.Now(),
			Payload: events.GrievanceCreatedPayload{
				DepartmentID: grievance.DepartmentID,
				Priority:     grievance.Priority,
				State:        grievance.Geo.State,
				District:     grievance.Geo.District,
				Title:        grievance.Title,
			},
		})
	}

	return grievance, nil
}

// Get returns a single grievance.
func (s *GrievanceService) Get(ctx context.Context, id string) (*domain.Grievance, error) {
	grievance, err := s.grievances.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("grievance", map[string]any{"grievance_id": id})
		}
		return nil, apperrors.NewUnavailable("record store unavailable", err)
	}
	return grievance, nil
}

// GetDetail returns a grievance with media, feedback and timeline attached.
func (s *GrievanceService) GetDetail(ctx context.Context, id string) (*GrievanceDetail, error) {
	grievance, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	detail := &GrievanceDetail{Grievance: grievance}

	if detail.Media, err = s.media.ListByGrievance(ctx, id); err != nil {
		return nil, apperrors.NewUnavailable("media store unavailable", err)
	}
	if fb, err := s.feedback.GetByGrievance(ctx, id); err == nil {
		detail.Feedback = fb
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUnavailable("record store unavailable", err)
	}
	if detail.Timeline, err = s.timeline.ListByGrievance(ctx, id, 100, 0); err != nil {
		return nil, apperrors.NewUnavailable("record store unavailable", err)
	}
	return detail, nil
}

// List applies the caller-scoped filter.
func (s *GrievanceService) List(ctx context.Context, filter repository.GrievanceFilter) ([]domain.Grievance, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	items, err := s.grievances.ListWithFilter(ctx, filter)
	if err != nil {
		return nil, apperrors.NewUnavailable("record store unavailable", err)
	}
	return items, nil
}

// Stats builds the admin dashboard rollup. Status counts come from the
// record store; the per-state active counts come from the live geo index.
func (s *GrievanceService) Stats(ctx context.Context) (*DashboardStats, error) {
	byStatus, err := s.grievances.CountByStatus(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailable("record store unavailable", err)
	}
	byPriority, err := s.grievances.CountActiveByPriority(ctx)
	if err != nil {
		return nil, apperrors.NewUnavailable("record store unavailable", err)
	}

	stats := &DashboardStats{
		Critical:      byPriority[domain.PriorityCritical],
		ByStatus:      byStatus,
		ActiveByState: s.geo.CountsByState(),
	}
	for status, count := range byStatus {
		stats.Total += count
		if status.Active() {
			stats.Active += count
		} else {
			stats.Resolved += count
		}
	}
	return stats, nil
}
