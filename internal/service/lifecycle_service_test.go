package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/events"
	"github.com/civicpulse/grievance-service/internal/observability"
	"github.com/civicpulse/grievance-service/internal/repository/memory"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

type lifecycleFixture struct {
	grievances *memory.GrievanceStore
	officers   *memory.OfficerStore
	media      *memory.MediaStore
	feedback   *memory.FeedbackStore
	timeline   *memory.TimelineStore
	regions    *memory.RegionStore
	geo        *GeoIndex
	metrics    *observability.Metrics
	matcher    *MatcherService
	svc        *LifecycleService
}

func newLifecycleFixture(t *testing.T, strictVerify bool) *lifecycleFixture {
	t.Helper()

	f := &lifecycleFixture{
		grievances: memory.NewGrievanceStore(),
		officers:   memory.NewOfficerStore(),
		media:      memory.NewMediaStore(),
		feedback:   memory.NewFeedbackStore(),
		timeline:   memory.NewTimelineStore(),
		regions:    memory.NewRegionStore(),
		geo:        NewGeoIndex(zap.NewNop(), nil),
		metrics:    observability.NewMetrics(),
	}
	f.matcher = NewMatcherService(MatcherDependencies{
		GrievanceRepo: f.grievances,
		OfficerRepo:   f.officers,
		RegionRepo:    f.regions,
	})
	f.svc = NewLifecycleService(LifecycleDependencies{
		GrievanceRepo: f.grievances,
		OfficerRepo:   f.officers,
		MediaRepo:     f.media,
		FeedbackRepo:  f.feedback,
		TimelineRepo:  f.timeline,
		Matcher:       f.matcher,
		GeoIndex:      f.geo,
		Dispatcher:    events.NewInMemoryDispatcher(),
		Metrics:       f.metrics,
		Logger:        zap.NewNop(),
		StrictVerify:  strictVerify,
	})
	return f
}

func (f *lifecycleFixture) addOfficer(t *testing.T, dept string, geo domain.GeoScope) *domain.Officer {
	t.Helper()
	officer := &domain.Officer{
		Name:         "Officer",
		Email:        "officer@example.com",
		PasswordHash: "x",
		Role:         domain.StaffRoleFieldOfficer,
		DepartmentID: &dept,
		Geo:          geo,
		Active:       true,
	}
	require.NoError(t, f.officers.Create(context.Background(), officer))
	return officer
}

func (f *lifecycleFixture) addGrievance(t *testing.T, status domain.GrievanceStatus, dept string, geo domain.GeoScope) *domain.Grievance {
	t.Helper()
	g := &domain.Grievance{
		Title:        "Streetlight out",
		Description:  "Dark at night",
		CitizenID:    "citizen-1",
		DepartmentID: &dept,
		Status:       status,
		Priority:     domain.PriorityMedium,
		Geo:          geo,
	}
	require.NoError(t, f.grievances.Create(context.Background(), g))
	return g
}

func assignEligible(t *testing.T, f *lifecycleFixture, g *domain.Grievance, officerID string) {
	t.Helper()
	_, err := f.svc.Transition(context.Background(), StaffActor("admin-1", domain.StaffRoleAdmin), g.ID, TransitionInput{
		Event:     domain.EventAssign,
		OfficerID: officerID,
	})
	require.NoError(t, err)
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return apperrors.ToDomainError(err).Code
}

func odisha() domain.GeoScope {
	return domain.GeoScope{State: "Odisha", District: "Cuttack"}
}

func TestAssignHappyPath(t *testing.T) {
	f := newLifecycleFixture(t, true)
	officer := f.addOfficer(t, "dept-water", odisha())
	g := f.addGrievance(t, domain.StatusNew, "dept-water", odisha())

	updated, err := f.svc.Transition(context.Background(), StaffActor("admin-1", domain.StaffRoleAdmin), g.ID, TransitionInput{
		Event:     domain.EventAssign,
		OfficerID: officer.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, updated.Status)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, officer.ID, *updated.AssigneeID)

	entries, err := f.timeline.ListByGrievance(context.Background(), g.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EventAssign, entries[0].Event)
}

func TestAssignSameOfficerIsNoop(t *testing.T) {
	f := newLifecycleFixture(t, true)
	officer := f.addOfficer(t, "dept-water", odisha())
	g := f.addGrievance(t, domain.StatusNew, "dept-water", odisha())
	assignEligible(t, f, g, officer.ID)

	updated, err := f.svc.Transition(context.Background(), StaffActor("admin-1", domain.StaffRoleAdmin), g.ID, TransitionInput{
		Event:     domain.EventAssign,
		OfficerID: officer.ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, updated.Status)

	// No second audit record for the no-op.
	entries, err := f.timeline.ListByGrievance(context.Background(), g.ID, 10, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestAssignIneligibleOfficerRejected(t *testing.T) {
	f := newLifecycleFixture(t, true)
	officer := f.addOfficer(t, "dept-roads", odisha())
	g := f.addGrievance(t, domain.StatusNew, "dept-water", odisha())

	_, err := f.svc.Transition(context.Background(), StaffActor("admin-1", domain.StaffRoleAdmin), g.ID, TransitionInput{
		Event:     domain.EventAssign,
		OfficerID: officer.ID,
	})
	assert.Equal(t, "INELIGIBLE_ASSIGNEE", errorCode(t, err))

	current, err := f.grievances.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, current.Status)
	assert.Nil(t, current.AssigneeID)
}

func TestAssignDeactivatedOfficerRejected(t *testing.T) {
	f := newLifecycleFixture(t, true)
	officer := f.addOfficer(t, "dept-water", odisha())
	officer.Active = false
	require.NoError(t, f.officers.Update(context.Background(), officer))
	g := f.addGrievance(t, domain.StatusNew, "dept-water", odisha())

	_, err := f.svc.Transition(context.Background(), StaffActor("admin-1", domain.StaffRoleAdmin), g.ID, TransitionInput{
		Event:     domain.EventAssign,
		OfficerID: officer.ID,
	})
	assert.Equal(t, "INELIGIBLE_ASSIGNEE", errorCode(t, err))
}

func TestAssignRequiresAdmin(t *testing.T) {
	f := newLifecycleFixture(t, true)
	officer := f.addOfficer(t, "dept-water", odisha())
	g := f.addGrievance(t, domain.StatusNew, "dept-water", odisha())

	_, err := f.svc.Transition(context.Background(), StaffActor(officer.ID, domain.StaffRoleFieldOfficer), g.ID, TransitionInput{
		Event:     domain.EventAssign,
		OfficerID: officer.ID,
	})
	assert.Equal(t, "FORBIDDEN", errorCode(t, err))
}

func TestReassignOnlyFromAssigned(t *testing.T) {
	f := newLifecycleFixture(t, true)
	officer := f.addOfficer(t, "dept-water", odisha())
	g := f.addGrievance(t, domain.StatusNew, "dept-water", odisha())

	_, err := f.svc.Transition(context.Background(), StaffActor("admin-1", domain.StaffRoleAdmin), g.ID, TransitionInput{
		Event:     domain.EventReassign,
		OfficerID: officer.ID,
	})
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, err))
}

func TestStartWorkByAssignee(t *testing.T) {
	f := newLifecycleFixture(t, true)
	officer := f.addOfficer(t, "dept-water", odisha())
	g := f.addGrievance(t, domain.StatusNew, "dept-water", odisha())
	assignEligible(t, f, g, officer.ID)

	updated, err := f.svc.Transition(context.Background(), StaffActor(officer.ID, domain.StaffRoleFieldOfficer), g.ID, TransitionInput{
		Event: domain.EventStartWork,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
}

func TestStartWorkByStrangerForbidden(t *testing.T) {
	f := newLifecycleFixture(t, true)
	officer := f.addOfficer(t, "dept-water", odisha())
	g := f.addGrievance(t, domain.StatusNew, "dept-water", odisha())
	assignEligible(t, f, g, officer.ID)

	_, err := f.svc.Transition(context.Background(), StaffActor("other-officer", domain.StaffRoleFieldOfficer), g.ID, TransitionInput{
		Event: domain.EventStartWork,
	})
	assert.Equal(t, "FORBIDDEN", errorCode(t, err))
}

func TestStartWorkFromNewRequiresAssignee(t *testing.T) {
	f := newLifecycleFixture(t, true)
	officer := f.addOfficer(t, "dept-water", odisha())
	g := f.addGrievance(t, domain.StatusNew, "dept-water", odisha())

	// Unassigned NEW grievance: the authorization check fires before the
	// state check, so the caller sees FORBIDDEN.
	_, err := f.svc.Transition(context.Background(), StaffActor(officer.ID, domain.StaffRoleFieldOfficer), g.ID, TransitionInput{
		Event: domain.EventStartWork,
	})
	assert.Equal(t, "FORBIDDEN", errorCode(t, err))

	// Directly-assigned case: assignee set while status is still NEW.
	g.AssigneeID = &officer.ID
	require.NoError(t, f.grievances.Update(context.Background(), g))

	updated, err := f.svc.Transition(context.Background(), StaffActor(officer.ID, domain.StaffRoleFieldOfficer), g.ID, TransitionInput{
		Event: domain.EventStartWork,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
}

func TestSubmitResolutionStoresProof(t *testing.T) {
	f := newLifecycleFixture(t, true)
	officer := f.addOfficer(t, "dept-water", odisha())
	g := f.addGrievance(t, domain.StatusNew, "dept-water", odisha())
	assignEligible(t, f, g, officer.ID)

	actor := StaffActor(officer.ID, domain.StaffRoleFieldOfficer)
	_, err := f.svc.Transition(context.Background(), actor, g.ID, TransitionInput{Event: domain.EventStartWork})
	require.NoError(t, err)

	updated, err := f.svc.Transition(context.Background(), actor, g.ID, TransitionInput{
		Event:    domain.EventSubmitResolution,
		Evidence: []EvidenceInput{{URL: "https://media.example.com/proof.jpg", MimeType: "image/jpeg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingVerification, updated.Status)

	count, err := f.media.CountByPurpose(context.Background(), g.ID, domain.MediaPurposeResolutionProof)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestVerifyStrictRequiresProof(t *testing.T) {
	f := newLifecycleFixture(t, true)
	g := f.addGrievance(t, domain.StatusPendingVerification, "dept-water", odisha())

	_, err := f.svc.Transition(context.Background(), StaffActor("admin-1", domain.StaffRoleAdmin), g.ID, TransitionInput{
		Event: domain.EventVerify,
	})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))

	current, err := f.grievances.GetByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPendingVerification, current.Status)
}

func TestVerifyLenientSkipsProofCheck(t *testing.T) {
	f := newLifecycleFixture(t, false)
	g := f.addGrievance(t, domain.StatusPendingVerification, "dept-water", odisha())

	updated, err := f.svc.Transition(context.Background(), StaffActor("admin-1", domain.StaffRoleAdmin), g.ID, TransitionInput{
		Event: domain.EventVerify,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, updated.Status)
}

func TestVerifyFromNewIsInvalidTransition(t *testing.T) {
	f := newLifecycleFixture(t, false)
	g := f.addGrievance(t, domain.StatusNew, "dept-water", odisha())

	_, err := f.svc.Transition(context.Background(), StaffActor("admin-1", domain.StaffRoleAdmin), g.ID, TransitionInput{
		Event: domain.EventVerify,
	})
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, err))
}

func TestVerifyShedsGeoCount(t *testing.T) {
	f := newLifecycleFixture(t, false)
	g := f.addGrievance(t, domain.StatusPendingVerification, "dept-water", odisha())
	f.geo.Add(g.Geo)
	require.Equal(t, 1, f.geo.CountsByState()["Odisha"])

	_, err := f.svc.Transition(context.Background(), StaffActor("admin-1", domain.StaffRoleAdmin), g.ID, TransitionInput{
		Event: domain.EventVerify,
	})
	require.NoError(t, err)
	assert.Zero(t, f.geo.CountsByState()["Odisha"])
	assert.Zero(t, f.geo.CountsByDistrict("Odisha")["Cuttack"])
}

func TestAttachFeedbackOnceByOwner(t *testing.T) {
	f := newLifecycleFixture(t, false)
	g := f.addGrievance(t, domain.StatusResolved, "dept-water", odisha())

	owner := CitizenActor("citizen-1")
	_, err := f.svc.Transition(context.Background(), owner, g.ID, TransitionInput{
		Event:   domain.EventAttachFeedback,
		Rating:  4,
		Comment: "fixed quickly",
	})
	require.NoError(t, err)

	fb, err := f.feedback.GetByGrievance(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, fb.Rating)

	_, err = f.svc.Transition(context.Background(), owner, g.ID, TransitionInput{
		Event:  domain.EventAttachFeedback,
		Rating: 5,
	})
	assert.Equal(t, "DUPLICATE_FEEDBACK", errorCode(t, err))
}

func TestAttachFeedbackRejectsStrangersAndBadRatings(t *testing.T) {
	f := newLifecycleFixture(t, false)
	g := f.addGrievance(t, domain.StatusResolved, "dept-water", odisha())

	_, err := f.svc.Transition(context.Background(), CitizenActor("someone-else"), g.ID, TransitionInput{
		Event:  domain.EventAttachFeedback,
		Rating: 3,
	})
	assert.Equal(t, "FORBIDDEN", errorCode(t, err))

	_, err = f.svc.Transition(context.Background(), CitizenActor("citizen-1"), g.ID, TransitionInput{
		Event:  domain.EventAttachFeedback,
		Rating: 6,
	})
	assert.Equal(t, "VALIDATION_FAILED", errorCode(t, err))
}

func TestAttachFeedbackBeforeResolvedRejected(t *testing.T) {
	f := newLifecycleFixture(t, false)
	g := f.addGrievance(t, domain.StatusInProgress, "dept-water", odisha())

	_, err := f.svc.Transition(context.Background(), CitizenActor("citizen-1"), g.ID, TransitionInput{
		Event:  domain.EventAttachFeedback,
		Rating: 5,
	})
	assert.Equal(t, "INVALID_TRANSITION", errorCode(t, err))
}

func TestTransitionUnknownGrievance(t *testing.T) {
	f := newLifecycleFixture(t, false)

	_, err := f.svc.Transition(context.Background(), StaffActor("admin-1", domain.StaffRoleAdmin), "missing", TransitionInput{
		Event: domain.EventVerify,
	})
	assert.Equal(t, "NOT_FOUND", errorCode(t, err))
}

func TestTransitionRecordsMetrics(t *testing.T) {
	f := newLifecycleFixture(t, false)
	g := f.addGrievance(t, domain.StatusPendingVerification, "dept-water", odisha())

	_, err := f.svc.Transition(context.Background(), StaffActor("admin-1", domain.StaffRoleAdmin), g.ID, TransitionInput{
		Event: domain.EventVerify,
	})
	require.NoError(t, err)
	assert.EqualValues(t, 1, f.metrics.TransitionCount(string(domain.EventVerify), "accepted"))
}

func TestDispatchScenarioOdishaCuttack(t *testing.T) {
	f := newLifecycleFixture(t, true)
	ctx := context.Background()

	officer := f.addOfficer(t, "dept-3", odisha())
	g := f.addGrievance(t, domain.StatusNew, "dept-3", odisha())

	eligible, err := f.matcher.ListEligibleOfficers(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	assert.Equal(t, officer.ID, eligible[0].ID)

	updated, err := f.svc.Transition(ctx, StaffActor("admin-1", domain.StaffRoleAdmin), g.ID, TransitionInput{
		Event:     domain.EventAssign,
		OfficerID: eligible[0].ID,
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusAssigned, updated.Status)
	require.NotNil(t, updated.AssigneeID)
	assert.Equal(t, officer.ID, *updated.AssigneeID)
}

func TestConcurrentVerifySingleWinner(t *testing.T) {
	f := newLifecycleFixture(t, false)
	g := f.addGrievance(t, domain.StatusPendingVerification, "dept-water", odisha())
	f.geo.Add(g.Geo)

	admin := StaffActor("admin-1", domain.StaffRoleAdmin)
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Transition(context.Background(), admin, g.ID, TransitionInput{
				Event: domain.EventVerify,
			})
		}(i)
	}
	wg.Wait()

	var accepted, rejected int
	for _, err := range errs {
		if err == nil {
			accepted++
		} else {
			assert.Equal(t, "INVALID_TRANSITION", apperrors.ToDomainError(err).Code)
			rejected++
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, 1, rejected)

	// The losing verify must not decrement the rollup a second time.
	assert.Zero(t, f.geo.CountsByState()["Odisha"])
}
