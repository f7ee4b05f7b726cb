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
	"github.com/civicpulse/grievance-service/internal/observability"
	"github.com/civicpulse/grievance-service/internal/repository"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

// Actor identifies the caller of a transition, as supplied by the identity
// layer. The lifecycle core never authenticates; it only authorizes.
type Actor struct {
	Type domain.SubjectType
	Role *domain.StaffRole
	ID   string
}

// CitizenActor builds an actor for a citizen caller.
func CitizenActor(id string) Actor {
	return Actor{Type: domain.SubjectTypeCitizen, ID: id}
}

// StaffActor builds an actor for a staff caller.
func StaffActor(id string, role domain.StaffRole) Actor {
	return Actor{Type: domain.SubjectTypeStaff, Role: &role, ID: id}
}

func (a Actor) isAdmin() bool {
	return a.Type == domain.SubjectTypeStaff && a.Role != nil && *a.Role == domain.StaffRoleAdmin
}

// EvidenceInput references an already-uploaded file.
type EvidenceInput struct {
	URL      string
	MimeType string
}

// TransitionInput describes a lifecycle event with its payload.
type TransitionInput struct {
	Event     domain.LifecycleEvent
	OfficerID string
	Evidence  []EvidenceInput
	Rating    int
	Comment   string
	Remark    string
}

// LifecycleService is the single authority for status changes. Transitions
// for the same grievance id are serialized; distinct ids run in parallel.
// Nothing inside the critical section calls out of process except the
// record store itself.
type LifecycleService struct {
	grievances repository.GrievanceRepository
	officers   repository.OfficerRepository
	media      repository.MediaRepository
	feedback   repository.FeedbackRepository
	timeline   repository.TimelineRepository
	matcher    *MatcherService
	geo        *GeoIndex
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger

	strictVerify bool
	locks        *keyedMutex
}

// LifecycleDependencies bundles collaborators for the lifecycle service.
type LifecycleDependencies struct {
	GrievanceRepo repository.GrievanceRepository
	OfficerRepo   repository.OfficerRepository
	MediaRepo     repository.MediaRepository
	FeedbackRepo  repository.FeedbackRepository
	TimelineRepo  repository.TimelineRepository
	Matcher       *MatcherService
	GeoIndex      *GeoIndex
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	Logger        *zap.Logger
	StrictVerify  bool
}

// NewLifecycleService constructs the service.
func NewLifecycleService(deps LifecycleDependencies) *LifecycleService {
	return &LifecycleService{
		grievances:   deps.GrievanceRepo,
		officers:     deps.OfficerRepo,
		media:        deps.MediaRepo,
		feedback:     deps.FeedbackRepo,
		timeline:     deps.TimelineRepo,
		matcher:      deps.Matcher,
		geo:          deps.GeoIndex,
		dispatcher:   deps.Dispatcher,
		metrics:      deps.Metrics,
		logger:       deps.Logger,
		strictVerify: deps.StrictVerify,
		locks:        newKeyedMutex(),
	}
}

// allowedFrom lists the statuses each event may fire from. Assign doubles
// as reassignment when already assigned; StartWork from NEW covers the
// directly-assigned case and still requires the caller to be the assignee.
var allowedFrom = map[domain.LifecycleEvent][]domain.GrievanceStatus{
	domain.EventAssign:           {domain.StatusNew, domain.StatusAssigned},
	domain.EventReassign:         {domain.StatusAssigned},
	domain.EventStartWork:        {domain.StatusNew, domain.StatusAssigned},
	domain.EventSubmitResolution: {domain.StatusInProgress},
	domain.EventVerify:           {domain.StatusPendingVerification},
	domain.EventAttachFeedback:   {domain.StatusResolved},
}

func eventAllowedFrom(event domain.LifecycleEvent, status domain.GrievanceStatus) bool {
	for _, candidate := range allowedFrom[event] {
		if candidate == status {
			return true
		}
	}
	return false
}

// Transition validates and applies a lifecycle event. On any error the
// grievance's authoritative status is unchanged. The authorization check
// runs before the state check, so a caller lacking the role for an event
// sees FORBIDDEN rather than INVALID_TRANSITION.
func (s *LifecycleService) Transition(ctx context.Context, actor Actor, grievanceID string, input TransitionInput) (*domain.Grievance, error) {
	s.locks.Lock(grievanceID)
	grievance, event, err := s.apply(ctx, actor, grievanceID, input)
	s.locks.Unlock(grievanceID)

	if s.metrics != nil {
		outcome := "accepted"
		if err != nil {
			outcome = apperrors.ToDomainError(err).Code
		}
		s.metrics.RecordTransition(string(input.Event), outcome)
	}

	if err != nil {
		return nil, err
	}
	if event != nil {
		s.publish(ctx, *event)
	}
	return grievance, nil
}

func (s *LifecycleService) apply(ctx context.Context, actor Actor, grievanceID string, input TransitionInput) (*domain.Grievance, *events.Event, error) {
	grievance, err := s.grievances.GetByID(ctx, grievanceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewNotFound("grievance", map[string]any{"grievance_id": grievanceID})
		}
		return nil, nil, apperrors.NewUnavailable("record store unavailable", err)
	}

	if err := s.authorize(actor, input.Event, grievance); err != nil {
		return nil, nil, err
	}
	if !eventAllowedFrom(input.Event, grievance.Status) {
		return nil, nil, apperrors.NewInvalidTransition(string(grievance.Status), string(input.Event))
	}

	switch input.Event {
	case domain.EventAssign, domain.EventReassign:
		return s.applyAssign(ctx, actor, grievance, input)
	case domain.EventStartWork:
		return s.applyStartWork(ctx, actor, grievance)
	case domain.EventSubmitResolution:
		return s.applySubmitResolution(ctx, actor, grievance, input)
	case domain.EventVerify:
		return s.applyVerify(ctx, actor, grievance)
	case domain.EventAttachFeedback:
		return s.applyAttachFeedback(ctx, actor, grievance, input)
	default:
		return nil, nil, apperrors.NewInvalidTransition(string(grievance.Status), string(input.Event))
	}
}

// authorize enforces the role column of the transition table. StartWork and
// SubmitResolution belong to the assignee alone; feedback belongs to the
// grievance owner alone.
func (s *LifecycleService) authorize(actor Actor, event domain.LifecycleEvent, grievance *domain.Grievance) error {
	switch event {
	case domain.EventAssign, domain.EventReassign, domain.EventVerify:
		if !actor.isAdmin() {
			return apperrors.NewForbidden("admin role required")
		}
	case domain.EventStartWork, domain.EventSubmitResolution:
		if actor.Type != domain.SubjectTypeStaff {
			return apperrors.NewForbidden("assignee role required")
		}
		if grievance.AssigneeID == nil || *grievance.AssigneeID != actor.ID {
			return apperrors.NewForbidden("caller is not the assigned officer")
		}
	case domain.EventAttachFeedback:
		if actor.Type != domain.SubjectTypeCitizen {
			return apperrors.NewForbidden("citizen role required")
		}
		if grievance.CitizenID != actor.ID {
			return apperrors.NewForbidden("caller does not own this grievance")
		}
	default:
		return apperrors.NewForbidden("unknown event")
	}
	return nil
}

func (s *LifecycleService) applyAssign(ctx context.Context, actor Actor, grievance *domain.Grievance, input TransitionInput) (*domain.Grievance, *events.Event, error) {
	if strings.TrimSpace(input.OfficerID) == "" {
		return nil, nil, apperrors.NewValidationError("officer_id required", nil)
	}
	officer, err := s.officers.GetByID(ctx, input.OfficerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil, apperrors.NewNotFound("officer", map[string]any{"officer_id": input.OfficerID})
		}
		return nil, nil, apperrors.NewUnavailable("staff directory unavailable", err)
	}

	// Re-issuing Assign with the current assignee is a no-op, no side effects.
	if grievance.Status == domain.StatusAssigned && grievance.AssigneeID != nil && *grievance.AssigneeID == officer.ID {
		return grievance, nil, nil
	}

	// Eligibility is re-validated at transition time, never trusted from the
	// earlier listing.
	if !s.matcher.IsEligible(ctx, officer, grievance) {
		return nil, nil, apperrors.NewIneligibleAssignee(officer.ID, map[string]any{
			"grievance_id": grievance.ID,
		})
	}

	oldStatus := grievance.Status
	oldAssignee := grievance.AssigneeID
	assigneeID := officer.ID
	grievance.AssigneeID = &assigneeID
	grievance.Status = domain.StatusAssigned
	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, nil, apperrors.NewUnavailable("record store unavailable", err)
	}

	s.recordTimeline(ctx, actor, grievance.ID, input.Event, map[string]any{
		"status":      oldStatus,
		"assignee_id": oldAssignee,
	}, map[string]any{
		"status":      grievance.Status,
		"assignee_id": grievance.AssigneeID,
	}, input.Remark)

	event := s.newEvent(events.EventGrievanceAssigned, actor, grievance.ID, events.GrievanceAssignedPayload{
		AssigneeID:   grievance.AssigneeID,
		PreviouslyTo: oldAssignee,
	})
	return grievance, &event, nil
}

func (s *LifecycleService) applyStartWork(ctx context.Context, actor Actor, grievance *domain.Grievance) (*domain.Grievance, *events.Event, error) {
	oldStatus := grievance.Status
	grievance.Status = domain.StatusInProgress
	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, nil, apperrors.NewUnavailable("record store unavailable", err)
	}

	s.recordTimeline(ctx, actor, grievance.ID, domain.EventStartWork,
		map[string]any{"status": oldStatus},
		map[string]any{"status": grievance.Status}, "")

	event := s.newEvent(events.EventStatusChanged, actor, grievance.ID, events.StatusChangedPayload{
		Event:     domain.EventStartWork,
		OldStatus: oldStatus,
		NewStatus: grievance.Status,
	})
	return grievance, &event, nil
}

func (s *LifecycleService) applySubmitResolution(ctx context.Context, actor Actor, grievance *domain.Grievance, input TransitionInput) (*domain.Grievance, *events.Event, error) {
	// Evidence is optional here; strictness, if any, is enforced at Verify.
	for _, ev := range input.Evidence {
		if strings.TrimSpace(ev.URL) == "" {
			return nil, nil, apperrors.NewValidationError("evidence url required", nil)
		}
	}

	uploaderID := actor.ID
	for _, ev := range input.Evidence {
		media := &domain.Media{
			GrievanceID: grievance.ID,
			URL:         ev.URL,
			Purpose:     domain.MediaPurposeResolutionProof,
			UploaderID:  &uploaderID,
		}
		if ev.MimeType != "" {
			mime := ev.MimeType
			media.MimeType = &mime
		}
		if err := s.media.Create(ctx, media); err != nil {
			return nil, nil, apperrors.NewUnavailable("media store unavailable", err)
		}
	}

	oldStatus := grievance.Status
	grievance.Status = domain.StatusPendingVerification
	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, nil, apperrors.NewUnavailable("record store unavailable", err)
	}

	s.recordTimeline(ctx, actor, grievance.ID, domain.EventSubmitResolution,
		map[string]any{"status": oldStatus},
		map[string]any{"status": grievance.Status, "proof_count": len(input.Evidence)},
		input.Comment)

	event := s.newEvent(events.EventResolutionSubmitted, actor, grievance.ID, events.ResolutionSubmittedPayload{
		ProofCount: len(input.Evidence),
	})
	return grievance, &event, nil
}

func (s *LifecycleService) applyVerify(ctx context.Context, actor Actor, grievance *domain.Grievance) (*domain.Grievance, *events.Event, error) {
	if s.strictVerify {
		count, err := s.media.CountByPurpose(ctx, grievance.ID, domain.MediaPurposeResolutionProof)
		if err != nil {
			return nil, nil, apperrors.NewUnavailable("media store unavailable", err)
		}
		if count == 0 {
			return nil, nil, apperrors.NewValidationError("resolution proof required before verification", map[string]any{
				"grievance_id": grievance.ID,
			})
		}
	}

	oldStatus := grievance.Status
	grievance.Status = domain.StatusResolved
	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, nil, apperrors.NewUnavailable("record store unavailable", err)
	}

	// RESOLVED leaves the active set; the rollups shed this grievance.
	s.geo.Remove(grievance.Geo)

	s.recordTimeline(ctx, actor, grievance.ID, domain.EventVerify,
		map[string]any{"status": oldStatus},
		map[string]any{"status": grievance.Status}, "")

	event := s.newEvent(events.EventGrievanceVerified, actor, grievance.ID, events.StatusChangedPayload{
		Event:     domain.EventVerify,
		OldStatus: oldStatus,
		NewStatus: grievance.Status,
	})
	return grievance, &event, nil
}

func (s *LifecycleService) applyAttachFeedback(ctx context.Context, actor Actor, grievance *domain.Grievance, input TransitionInput) (*domain.Grievance, *events.Event, error) {
	if input.Rating < 1 || input.Rating > 5 {
		return nil, nil, apperrors.NewValidationError("rating must be between 1 and 5", map[string]any{
			"rating": input.Rating,
		})
	}
	if _, err := s.feedback.GetByGrievance(ctx, grievance.ID); err == nil {
		return nil, nil, apperrors.NewDuplicateFeedback(grievance.ID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, nil, apperrors.NewUnavailable("record store unavailable", err)
	}

	feedback := &domain.Feedback{
		GrievanceID: grievance.ID,
		Rating:      input.Rating,
	}
	if strings.TrimSpace(input.Comment) != "" {
		comment := input.Comment
		feedback.Comment = &comment
	}
	if err := s.feedback.Create(ctx, feedback); err != nil {
		return nil, nil, apperrors.NewUnavailable("record store unavailable", err)
	}

	// Status stays RESOLVED; the accepted transition still bumps updated_at.
	if err := s.grievances.Update(ctx, grievance); err != nil {
		return nil, nil, apperrors.NewUnavailable("record store unavailable", err)
	}

	s.recordTimeline(ctx, actor, grievance.ID, domain.EventAttachFeedback,
		map[string]any{"feedback": nil},
		map[string]any{"rating": input.Rating}, "")

	event := s.newEvent(events.EventFeedbackAttached, actor, grievance.ID, events.FeedbackAttachedPayload{
		Rating: input.Rating,
	})
	return grievance, &event, nil
}

func (s *LifecycleService) recordTimeline(ctx context.Context, actor Actor, grievanceID string, event domain.LifecycleEvent, oldValue, newValue map[string]any, remark string) {
	if s.timeline == nil {
		return
	}
	actorID := actor.ID
	entry := &domain.TimelineEntry{
		GrievanceID: grievanceID,
		Event:       event,
		ActorType:   actor.Type,
		ActorID:     &actorID,
		OldValue:    oldValue,
		NewValue:    newValue,
		Remark:      remark,
	}
	if err := s.timeline.Create(ctx, entry); err != nil && s.logger != nil {
		s.logger.Warn("timeline write failed", zap.Error(err), zap.String("grievance_id", grievanceID))
	}
}

func (s *LifecycleService) newEvent(eventType events.EventType, actor Actor, grievanceID string, payload any) events.Event {
	eventActor := events.Actor{Type: actor.Type}
	actorID := actor.ID
	if actor.Type == domain.SubjectTypeCitizen {
		eventActor.CitizenID = &actorID
	} else {
		eventActor.StaffID = &actorID
	}
	return events.Event{
		ID:          uuid.NewString(),
		Type:        eventType,
		GrievanceID: grievanceID,
		Actor:       eventActor,
		Timestamp:   time.Now(),
		Payload:     payload,
	}
}

func (s *LifecycleService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, event)
}
