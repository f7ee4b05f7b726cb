package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/repository/memory"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

type matcherFixture struct {
	grievances *memory.GrievanceStore
	officers   *memory.OfficerStore
	regions    *memory.RegionStore
	svc        *MatcherService
}

func newMatcherFixture() *matcherFixture {
	f := &matcherFixture{
		grievances: memory.NewGrievanceStore(),
		officers:   memory.NewOfficerStore(),
		regions:    memory.NewRegionStore(),
	}
	f.svc = NewMatcherService(MatcherDependencies{
		GrievanceRepo: f.grievances,
		OfficerRepo:   f.officers,
		RegionRepo:    f.regions,
	})
	return f
}

func (f *matcherFixture) seedOdisha() {
	state := f.regions.Put(domain.Region{Name: "Odisha", Code: "OD", Type: domain.RegionTypeState})
	f.regions.Put(domain.Region{Name: "Cuttack", Code: "OD-CT", Type: domain.RegionTypeDistrict, ParentID: &state.ID})
}

func fieldOfficer(dept string, geo domain.GeoScope) *domain.Officer {
	return &domain.Officer{
		Name:         "Officer",
		Email:        "o@example.com",
		PasswordHash: "x",
		Role:         domain.StaffRoleFieldOfficer,
		DepartmentID: &dept,
		Geo:          geo,
		Active:       true,
	}
}

func grievanceIn(dept string, geo domain.GeoScope) *domain.Grievance {
	return &domain.Grievance{
		Title:        "t",
		Description:  "d",
		CitizenID:    "citizen-1",
		DepartmentID: &dept,
		Status:       domain.StatusNew,
		Priority:     domain.PriorityLow,
		Geo:          geo,
	}
}

func TestIsEligibleStateDistrictMatch(t *testing.T) {
	f := newMatcherFixture()
	ctx := context.Background()

	officer := fieldOfficer("dept-water", domain.GeoScope{State: "Odisha", District: "Cuttack"})
	g := grievanceIn("dept-water", domain.GeoScope{State: "Odisha", District: "Cuttack"})
	assert.True(t, f.svc.IsEligible(ctx, officer, g))

	other := fieldOfficer("dept-water", domain.GeoScope{State: "Odisha", District: "Puri"})
	assert.False(t, f.svc.IsEligible(ctx, other, g))
}

func TestIsEligibleDepartmentMustMatch(t *testing.T) {
	f := newMatcherFixture()
	ctx := context.Background()

	officer := fieldOfficer("dept-roads", domain.GeoScope{State: "Odisha", District: "Cuttack"})
	g := grievanceIn("dept-water", domain.GeoScope{State: "Odisha", District: "Cuttack"})
	assert.False(t, f.svc.IsEligible(ctx, officer, g))

	g.DepartmentID = nil
	sameGeo := fieldOfficer("dept-water", domain.GeoScope{State: "Odisha", District: "Cuttack"})
	assert.False(t, f.svc.IsEligible(ctx, sameGeo, g))
}

func TestIsEligibleLegacyCodeMatch(t *testing.T) {
	f := newMatcherFixture()
	ctx := context.Background()

	officer := fieldOfficer("dept-water", domain.GeoScope{RegionCode: "OD-CT"})
	g := grievanceIn("dept-water", domain.GeoScope{RegionCode: "OD-CT"})
	assert.True(t, f.svc.IsEligible(ctx, officer, g))

	mismatch := grievanceIn("dept-water", domain.GeoScope{RegionCode: "OD-PR"})
	assert.False(t, f.svc.IsEligible(ctx, officer, mismatch))
}

func TestIsEligibleNoCrossFormMatch(t *testing.T) {
	f := newMatcherFixture()
	ctx := context.Background()

	// Unmapped legacy code on one side, canonical pair on the other: the
	// forms never compare against each other.
	officer := fieldOfficer("dept-water", domain.GeoScope{RegionCode: "UNKNOWN"})
	g := grievanceIn("dept-water", domain.GeoScope{State: "Odisha", District: "Cuttack"})
	assert.False(t, f.svc.IsEligible(ctx, officer, g))
}

func TestNormalizeResolvesLegacyDistrict(t *testing.T) {
	f := newMatcherFixture()
	f.seedOdisha()

	scope := f.svc.Normalize(context.Background(), domain.GeoScope{RegionCode: "OD-CT"})
	assert.Equal(t, "Odisha", scope.State)
	assert.Equal(t, "Cuttack", scope.District)
	assert.Equal(t, "OD-CT", scope.RegionCode)
}

func TestNormalizeLeavesUnmappedScope(t *testing.T) {
	f := newMatcherFixture()

	scope := f.svc.Normalize(context.Background(), domain.GeoScope{RegionCode: "NOPE"})
	assert.Empty(t, scope.State)
	assert.Equal(t, "NOPE", scope.RegionCode)
}

func TestNormalizeBridgesLegacyToCanonical(t *testing.T) {
	f := newMatcherFixture()
	f.seedOdisha()
	ctx := context.Background()

	// A mapped legacy scope matches a canonical one after normalization.
	officer := fieldOfficer("dept-water", domain.GeoScope{RegionCode: "OD-CT"})
	g := grievanceIn("dept-water", domain.GeoScope{State: "Odisha", District: "Cuttack"})
	assert.True(t, f.svc.IsEligible(ctx, officer, g))
}

func TestListEligibleOfficers(t *testing.T) {
	f := newMatcherFixture()
	ctx := context.Background()

	eligible := fieldOfficer("dept-water", domain.GeoScope{State: "Odisha", District: "Cuttack"})
	require.NoError(t, f.officers.Create(ctx, eligible))

	wrongDistrict := fieldOfficer("dept-water", domain.GeoScope{State: "Odisha", District: "Puri"})
	wrongDistrict.Email = "puri@example.com"
	require.NoError(t, f.officers.Create(ctx, wrongDistrict))

	admin := fieldOfficer("dept-water", domain.GeoScope{State: "Odisha", District: "Cuttack"})
	admin.Email = "admin@example.com"
	admin.Role = domain.StaffRoleAdmin
	require.NoError(t, f.officers.Create(ctx, admin))

	g := grievanceIn("dept-water", domain.GeoScope{State: "Odisha", District: "Cuttack"})
	require.NoError(t, f.grievances.Create(ctx, g))

	officers, err := f.svc.ListEligibleOfficers(ctx, g.ID)
	require.NoError(t, err)
	require.Len(t, officers, 1)
	assert.Equal(t, eligible.ID, officers[0].ID)
}

func TestListEligibleOfficersRequiresDepartment(t *testing.T) {
	f := newMatcherFixture()
	ctx := context.Background()

	g := grievanceIn("dept-water", domain.GeoScope{State: "Odisha", District: "Cuttack"})
	g.DepartmentID = nil
	require.NoError(t, f.grievances.Create(ctx, g))

	_, err := f.svc.ListEligibleOfficers(ctx, g.ID)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestListEligibleOfficersUnknownGrievance(t *testing.T) {
	f := newMatcherFixture()

	_, err := f.svc.ListEligibleOfficers(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
