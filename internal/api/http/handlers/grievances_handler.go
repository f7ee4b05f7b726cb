package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicpulse/grievance-service/internal/api/dto"
	"github.com/civicpulse/grievance-service/internal/auth"
	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/repository"
	"github.com/civicpulse/grievance-service/internal/service"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

// GrievancesHandler exposes the citizen-facing grievance endpoints.
type GrievancesHandler struct {
	grievances *service.GrievanceService
	lifecycle  *service.LifecycleService
}

// NewGrievancesHandler constructs handler.
func NewGrievancesHandler(grievances *service.GrievanceService, lifecycle *service.LifecycleService) *GrievancesHandler {
	return &GrievancesHandler{grievances: grievances, lifecycle: lifecycle}
}

// Create handles POST /grievances.
func (h *GrievancesHandler) Create(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Citizen == nil {
		return apperrors.NewUnauthorized("citizen token required")
	}

	var req dto.CreateGrievanceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	input := service.CreateGrievanceInput{
		Title:        req.Title,
		Description:  req.Description,
		DepartmentID: req.DepartmentID,
		Priority:     domain.Priority(req.Priority),
		Category:     req.Category,
		Geo:          req.Geo.ToDomain(),
		Location:     req.Location,
	}
	for _, ev := range req.Evidence {
		input.Evidence = append(input.Evidence, service.EvidenceInput{URL: ev.URL, MimeType: ev.MimeType})
	}

	grievance, err := h.grievances.Create(c.UserContext(), principal.Citizen.ID, input)
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.GrievanceFromDomain(grievance)})
}

// ListMine handles GET /grievances, scoped to the calling citizen.
func (h *GrievancesHandler) ListMine(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Citizen == nil {
		return apperrors.NewUnauthorized("citizen token required")
	}

	citizenID := principal.Citizen.ID
	filter := repository.GrievanceFilter{
		CitizenID: &citizenID,
		Limit:     c.QueryInt("limit", 50),
		Offset:    c.QueryInt("offset", 0),
	}
	if status := c.Query("status"); status != "" {
		filter.Statuses = []domain.GrievanceStatus{domain.GrievanceStatus(status)}
	}

	items, err := h.grievances.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.GrievanceListFromDomain(items)})
}

// Get handles GET /grievances/:id. Citizens only see their own records.
func (h *GrievancesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Citizen == nil {
		return apperrors.NewUnauthorized("citizen token required")
	}

	detail, err := h.grievances.GetDetail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	if detail.Grievance.CitizenID != principal.Citizen.ID {
		return apperrors.NewNotFound("grievance", map[string]any{"grievance_id": c.Params("id")})
	}
	return c.JSON(fiber.Map{"data": dto.DetailFromDomain(detail.Grievance, detail.Media, detail.Feedback, detail.Timeline)})
}

// AttachFeedback handles POST /grievances/:id/feedback.
func (h *GrievancesHandler) AttachFeedback(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Citizen == nil {
		return apperrors.NewUnauthorized("citizen token required")
	}

	var req dto.FeedbackRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	actor := service.CitizenActor(principal.Citizen.ID)
	grievance, err := h.lifecycle.Transition(c.UserContext(), actor, c.Params("id"), service.TransitionInput{
		Event:   domain.EventAttachFeedback,
		Rating:  req.Rating,
		Comment: req.Comment,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.GrievanceFromDomain(grievance)})
}
