package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/events"
	"github.com/civicpulse/grievance-service/internal/repository"
	"github.com/civicpulse/grievance-service/internal/repository/memory"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

type grievanceFixture struct {
	grievances  *memory.GrievanceStore
	media       *memory.MediaStore
	feedback    *memory.FeedbackStore
	timeline    *memory.TimelineStore
	departments *memory.DepartmentStore
	regions     *memory.RegionStore
	geo         *GeoIndex
	svc         *GrievanceService
}

func newGrievanceFixture() *grievanceFixture {
	f := &grievanceFixture{
		grievances:  memory.NewGrievanceStore(),
		media:       memory.NewMediaStore(),
		feedback:    memory.NewFeedbackStore(),
		timeline:    memory.NewTimelineStore(),
		departments: memory.NewDepartmentStore(),
		regions:     memory.NewRegionStore(),
		geo:         NewGeoIndex(zap.NewNop(), nil),
	}
	matcher := NewMatcherService(MatcherDependencies{
		GrievanceRepo: f.grievances,
		OfficerRepo:   memory.NewOfficerStore(),
		RegionRepo:    f.regions,
	})
	f.svc = NewGrievanceService(GrievanceDependencies{
		GrievanceRepo:  f.grievances,
		MediaRepo:      f.media,
		FeedbackRepo:   f.feedback,
		TimelineRepo:   f.timeline,
		DepartmentRepo: f.departments,
		Matcher:        matcher,
		GeoIndex:       f.geo,
		Dispatcher:     events.NewInMemoryDispatcher(),
		Logger:         zap.NewNop(),
	})
	return f
}

func TestCreateGrievance(t *testing.T) {
	f := newGrievanceFixture()
	dept := f.departments.Put(domain.Department{Name: "Water", Code: "WTR", IsActive: true})

	g, err := f.svc.Create(context.Background(), "citizen-1", CreateGrievanceInput{
		Title:        "Burst pipe",
		Description:  "Water flooding the street",
		DepartmentID: &dept.ID,
		Priority:     domain.PriorityHigh,
		Geo:          domain.GeoScope{State: "Odisha", District: "Cuttack"},
		Evidence:     []EvidenceInput{{URL: "https://media.example.com/pipe.jpg"}},
	})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusNew, g.Status)
	assert.Equal(t, "citizen-1", g.CitizenID)

	// Creation counts toward the live geo rollup.
	assert.Equal(t, 1, f.geo.CountsByState()["Odisha"])
	assert.Equal(t, 1, f.geo.CountsByDistrict("Odisha")["Cuttack"])

	count, err := f.media.CountByPurpose(context.Background(), g.ID, domain.MediaPurposeReportEvidence)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	entries, err := f.timeline.ListByGrievance(context.Background(), g.ID, 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, domain.EventCreate, entries[0].Event)
}

func TestCreateGrievanceDefaultsPriority(t *testing.T) {
	f := newGrievanceFixture()

	g, err := f.svc.Create(context.Background(), "citizen-1", CreateGrievanceInput{
		Title:       "Pothole",
		Description: "Deep one",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.PriorityLow, g.Priority)
}

func TestCreateGrievanceValidation(t *testing.T) {
	f := newGrievanceFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "citizen-1", CreateGrievanceInput{Description: "no title"})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = f.svc.Create(ctx, "citizen-1", CreateGrievanceInput{Title: "no description"})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = f.svc.Create(ctx, "citizen-1", CreateGrievanceInput{
		Title: "t", Description: "d", Priority: "URGENT",
	})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	unknown := "dept-missing"
	_, err = f.svc.Create(ctx, "citizen-1", CreateGrievanceInput{
		Title: "t", Description: "d", DepartmentID: &unknown,
	})
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestCreateGrievanceNormalizesLegacyGeo(t *testing.T) {
	f := newGrievanceFixture()
	state := f.regions.Put(domain.Region{Name: "Odisha", Code: "OD", Type: domain.RegionTypeState})
	f.regions.Put(domain.Region{Name: "Cuttack", Code: "OD-CT", Type: domain.RegionTypeDistrict, ParentID: &state.ID})

	g, err := f.svc.Create(context.Background(), "citizen-1", CreateGrievanceInput{
		Title:       "Garbage pile",
		Description: "Not collected",
		Geo:         domain.GeoScope{RegionCode: "OD-CT"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Odisha", g.Geo.State)
	assert.Equal(t, "Cuttack", g.Geo.District)
	assert.Equal(t, "OD-CT", g.Geo.RegionCode)
}

func TestGetDetail(t *testing.T) {
	f := newGrievanceFixture()
	ctx := context.Background()

	g, err := f.svc.Create(ctx, "citizen-1", CreateGrievanceInput{
		Title:       "Streetlight",
		Description: "Flickers",
		Evidence:    []EvidenceInput{{URL: "https://media.example.com/a.jpg"}},
	})
	require.NoError(t, err)

	detail, err := f.svc.GetDetail(ctx, g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, detail.Grievance.ID)
	assert.Len(t, detail.Media, 1)
	assert.Nil(t, detail.Feedback)
	assert.Len(t, detail.Timeline, 1)
}

func TestListScopedByCitizen(t *testing.T) {
	f := newGrievanceFixture()
	ctx := context.Background()

	_, err := f.svc.Create(ctx, "citizen-1", CreateGrievanceInput{Title: "a", Description: "a"})
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, "citizen-2", CreateGrievanceInput{Title: "b", Description: "b"})
	require.NoError(t, err)

	citizenID := "citizen-1"
	items, err := f.svc.List(ctx, repository.GrievanceFilter{CitizenID: &citizenID})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "citizen-1", items[0].CitizenID)
}

func TestStats(t *testing.T) {
	f := newGrievanceFixture()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.svc.Create(ctx, "citizen-1", CreateGrievanceInput{
			Title: "t", Description: "d",
			Geo: domain.GeoScope{State: "Odisha", District: "Cuttack"},
		})
		require.NoError(t, err)
	}

	_, err := f.svc.Create(ctx, "citizen-2", CreateGrievanceInput{
		Title: "burst water main", Description: "d",
		Priority: domain.PriorityCritical,
		Geo:      domain.GeoScope{State: "Odisha", District: "Puri"},
	})
	require.NoError(t, err)

	citizenID := "citizen-1"
	items, err := f.grievances.ListWithFilter(ctx, repository.GrievanceFilter{CitizenID: &citizenID, Limit: 10})
	require.NoError(t, err)
	resolved := items[0]
	resolved.Status = domain.StatusResolved
	require.NoError(t, f.grievances.Update(ctx, &resolved))
	f.geo.Remove(resolved.Geo)

	stats, err := f.svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 3, stats.Active)
	assert.Equal(t, 1, stats.Resolved)
	assert.Equal(t, 1, stats.Critical)
	assert.Equal(t, 3, stats.ActiveByState["Odisha"])
	assert.Equal(t, 1, stats.ByStatus[domain.StatusResolved])
}
