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

// OfficerGrievancesHandler exposes the field officer's workload endpoints.
type OfficerGrievancesHandler struct {
	grievances *service.GrievanceService
	lifecycle  *service.LifecycleService
}

// NewOfficerGrievancesHandler constructs handler.
func NewOfficerGrievancesHandler(grievances *service.GrievanceService, lifecycle *service.LifecycleService) *OfficerGrievancesHandler {
	return &OfficerGrievancesHandler{grievances: grievances, lifecycle: lifecycle}
}

// ListAssigned handles GET /staff/grievances, scoped to the calling officer.
func (h *OfficerGrievancesHandler) ListAssigned(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff token required")
	}

	assigneeID := principal.Staff.ID
	filter := repository.GrievanceFilter{
		AssigneeID: &assigneeID,
		Limit:      c.QueryInt("limit", 50),
		Offset:     c.QueryInt("offset", 0),
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

// Get handles GET /staff/grievances/:id.
func (h *OfficerGrievancesHandler) Get(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff token required")
	}

	detail, err := h.grievances.GetDetail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DetailFromDomain(detail.Grievance, detail.Media, detail.Feedback, detail.Timeline)})
}

// StartWork handles POST /staff/grievances/:id/start.
func (h *OfficerGrievancesHandler) StartWork(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff token required")
	}

	actor := service.StaffActor(principal.Staff.ID, principal.Staff.Role)
	grievance, err := h.lifecycle.Transition(c.UserContext(), actor, c.Params("id"), service.TransitionInput{
		Event: domain.EventStartWork,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.GrievanceFromDomain(grievance)})
}

// SubmitResolution handles POST /staff/grievances/:id/resolution.
func (h *OfficerGrievancesHandler) SubmitResolution(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff token required")
	}

	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	input := service.TransitionInput{
		Event:   domain.EventSubmitResolution,
		Comment: req.Comment,
	}
	for _, ev := range req.Evidence {
		input.Evidence = append(input.Evidence, service.EvidenceInput{URL: ev.URL, MimeType: ev.MimeType})
	}

	actor := service.StaffActor(principal.Staff.ID, principal.Staff.Role)
	grievance, err := h.lifecycle.Transition(c.UserContext(), actor, c.Params("id"), input)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.GrievanceFromDomain(grievance)})
}
