package service

import (
	"context"
	"errors"
	"strings"

	"github.com/civicpulse/grievance-service/internal/auth"
	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/repository"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

// OfficerService is the admin-facing staff directory.
type OfficerService struct {
	officers    repository.OfficerRepository
	departments repository.DepartmentRepository
	matcher     *MatcherService
	bcryptCost  int
}

// OfficerDependencies bundles collaborators for the officer service.
type OfficerDependencies struct {
	OfficerRepo    repository.OfficerRepository
	DepartmentRepo repository.DepartmentRepository
	Matcher        *MatcherService
	BcryptCost     int
}

// NewOfficerService constructs the service.
func NewOfficerService(deps OfficerDependencies) *OfficerService {
	return &OfficerService{
		officers:    deps.OfficerRepo,
		departments: deps.DepartmentRepo,
		matcher:     deps.Matcher,
		bcryptCost:  deps.BcryptCost,
	}
}

// CreateOfficerInput carries admin-supplied fields for a new staff account.
type CreateOfficerInput struct {
	Name         string
	Email        string
	Password     string
	Role         domain.StaffRole
	DepartmentID *string
	Geo          domain.GeoScope
}

// Create registers a staff account. Field officers must carry a department;
// their geo scope is normalized before storage so the matcher sees the
// canonical form.
func (s *OfficerService) Create(ctx context.Context, input CreateOfficerInput) (*domain.Officer, error) {
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, apperrors.NewValidationError("valid email required", nil)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidationError("password must be at least 8 characters", nil)
	}
	switch input.Role {
	case domain.StaffRoleFieldOfficer, domain.StaffRoleAdmin:
	default:
		return nil, apperrors.NewValidationError("unknown role", map[string]any{"role": input.Role})
	}
	if input.Role == domain.StaffRoleFieldOfficer && input.DepartmentID == nil {
		return nil, apperrors.NewValidationError("field officers require a department", nil)
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

	if _, err := s.officers.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUnavailable("staff directory unavailable", err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	officer := &domain.Officer{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		DepartmentID: input.DepartmentID,
		Geo:          s.matcher.Normalize(ctx, input.Geo),
		Active:       true,
	}
	if err := s.officers.Create(ctx, officer); err != nil {
		return nil, apperrors.NewUnavailable("staff directory unavailable", err)
	}
	return officer, nil
}

// List returns officers matching the filter.
func (s *OfficerService) List(ctx context.Context, filter repository.OfficerFilter) ([]domain.Officer, error) {
	if filter.Limit <= 0 || filter.Limit > 200 {
		filter.Limit = 50
	}
	items, err := s.officers.List(ctx, filter)
	if err != nil {
		return nil, apperrors.NewUnavailable("staff directory unavailable", err)
	}
	return items, nil
}

// Get returns a single officer.
func (s *OfficerService) Get(ctx context.Context, id string) (*domain.Officer, error) {
	officer, err := s.officers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewNotFound("officer", map[string]any{"officer_id": id})
		}
		return nil, apperrors.NewUnavailable("staff directory unavailable", err)
	}
	return officer, nil
}

// SetActive toggles the active flag; inactive officers stop matching.
func (s *OfficerService) SetActive(ctx context.Context, id string, active bool) (*domain.Officer, error) {
	officer, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if officer.Active == active {
		return officer, nil
	}
	officer.Active = active
	if err := s.officers.Update(ctx, officer); err != nil {
		return nil, apperrors.NewUnavailable("staff directory unavailable", err)
	}
	return officer, nil
}
