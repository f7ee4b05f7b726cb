package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/civicpulse/grievance-service/internal/auth"
	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/repository"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

// AuthService handles citizen registration and citizen/staff login.
type AuthService struct {
	users      repository.UserRepository
	officers   repository.OfficerRepository
	tokens     *auth.TokenManager
	bcryptCost int
}

// AuthDependencies bundles collaborators for the auth service.
type AuthDependencies struct {
	UserRepo     repository.UserRepository
	OfficerRepo  repository.OfficerRepository
	TokenManager *auth.TokenManager
	BcryptCost   int
}

// NewAuthService constructs the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	return &AuthService{
		users:      deps.UserRepo,
		officers:   deps.OfficerRepo,
		tokens:     deps.TokenManager,
		bcryptCost: deps.BcryptCost,
	}
}

// RegisterCitizenInput carries signup fields.
type RegisterCitizenInput struct {
	Name     string
	Email    string
	Password string
	Phone    *string
}

// LoginResult is an issued token with its subject.
type LoginResult struct {
	Token     string
	ExpiresAt time.Time
	Subject   domain.SubjectType
	SubjectID string
	Role      *domain.StaffRole
}

// RegisterCitizen creates a citizen account with a hashed password.
func (s *AuthService) RegisterCitizen(ctx context.Context, input RegisterCitizenInput) (*domain.User, error) {
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

	if _, err := s.users.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.NewConflict("email already registered", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperrors.NewUnavailable("record store unavailable", err)
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: hash,
		Phone:        input.Phone,
		Status:       domain.UserStatusActive,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperrors.NewUnavailable("record store unavailable", err)
	}
	return user, nil
}

// LoginCitizen verifies credentials and issues a citizen token.
func (s *AuthService) LoginCitizen(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.NewUnavailable("record store unavailable", err)
	}
	if user.Status != domain.UserStatusActive {
		return nil, apperrors.NewForbidden("account suspended")
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.tokens.GenerateToken(user.ID, domain.SubjectTypeCitizen, nil)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Subject:   domain.SubjectTypeCitizen,
		SubjectID: user.ID,
	}, nil
}

// LoginStaff verifies credentials against the staff directory and issues a
// staff token carrying the officer's role.
func (s *AuthService) LoginStaff(ctx context.Context, email, password string) (*LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	officer, err := s.officers.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("invalid credentials")
		}
		return nil, apperrors.NewUnavailable("staff directory unavailable", err)
	}
	if !officer.Active {
		return nil, apperrors.NewForbidden("account deactivated")
	}
	if err := auth.ComparePassword(officer.PasswordHash, password); err != nil {
		return nil, apperrors.NewUnauthorized("invalid credentials")
	}

	role := officer.Role
	token, expiresAt, err := s.tokens.GenerateToken(officer.ID, domain.SubjectTypeStaff, &role)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return &LoginResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Subject:   domain.SubjectTypeStaff,
		SubjectID: officer.ID,
		Role:      &role,
	}, nil
}
