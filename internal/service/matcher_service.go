package service

import (
	"context"
	"errors"

	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/repository"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

// MatcherService computes which officers are eligible for a grievance:
// same department and matching geographic scope. It is a pure query with
// no side effects, safe to call concurrently and repeatedly.
type MatcherService struct {
	grievances repository.GrievanceRepository
	officers   repository.OfficerRepository
	regions    repository.RegionRepository
}

// MatcherDependencies bundles repositories for the matcher.
type MatcherDependencies struct {
	GrievanceRepo repository.GrievanceRepository
	OfficerRepo   repository.OfficerRepository
	RegionRepo    repository.RegionRepository
}

// NewMatcherService constructs the service.
func NewMatcherService(deps MatcherDependencies) *MatcherService {
	return &MatcherService{
		grievances: deps.GrievanceRepo,
		officers:   deps.OfficerRepo,
		regions:    deps.RegionRepo,
	}
}

// Normalize resolves a legacy region code/id to state and district when the
// region reference table carries a mapping. Resolution is best effort: an
// unmapped legacy scope keeps its original form and still matches code
// against code, id against id. The legacy fields are preserved either way.
func (m *MatcherService) Normalize(ctx context.Context, scope domain.GeoScope) domain.GeoScope {
	if scope.HasStateDistrict() {
		return scope
	}

	var region *domain.Region
	var err error
	switch {
	case scope.HasRegionCode():
		region, err = m.regions.GetByCode(ctx, scope.RegionCode)
	case scope.HasRegionID():
		region, err = m.regions.GetByID(ctx, scope.RegionID)
	default:
		return scope
	}
	if err != nil || region == nil {
		return scope
	}

	switch region.Type {
	case domain.RegionTypeDistrict:
		scope.District = region.Name
		if region.ParentID != nil {
			if parent, perr := m.regions.GetByID(ctx, *region.ParentID); perr == nil {
				scope.State = parent.Name
			}
		}
	case domain.RegionTypeState:
		scope.State = region.Name
	}
	return scope
}

// IsEligible reports whether the officer may be assigned the grievance.
func (m *MatcherService) IsEligible(ctx context.Context, officer *domain.Officer, grievance *domain.Grievance) bool {
	if officer == nil || grievance == nil {
		return false
	}
	if !officer.Active || officer.Role != domain.StaffRoleFieldOfficer {
		return false
	}
	if grievance.DepartmentID == nil || officer.DepartmentID == nil {
		return false
	}
	if *grievance.DepartmentID != *officer.DepartmentID {
		return false
	}
	grievanceScope := m.Normalize(ctx, grievance.Geo)
	officerScope := m.Normalize(ctx, officer.Geo)
	return grievanceScope.Matches(officerScope)
}

// ListEligibleOfficers returns the officers eligible for the grievance.
func (m *MatcherService) ListEligibleOfficers(ctx context.Context, grievanceID string) ([]domain.Officer, error) {
	grievance, err := m.grievances.GetByID(ctx, grievanceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("grievance", map[string]any{"grievance_id": grievanceID})
		}
		return nil, apperrors.MapError(err)
	}
	if grievance.DepartmentID == nil {
		return nil, apperrors.NewValidationError("grievance has no department; triage it first", nil)
	}

	role := domain.StaffRoleFieldOfficer
	active := true
	filter := repository.OfficerFilter{
		Role:         &role,
		DepartmentID: grievance.DepartmentID,
		Active:       &active,
		Limit:        1000,
	}
	candidates, err := m.officers.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	eligible := make([]domain.Officer, 0, len(candidates))
	for i := range candidates {
		if m.IsEligible(ctx, &candidates[i], grievance) {
			eligible = append(eligible, candidates[i])
		}
	}
	return eligible, nil
}
