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

// AdminGrievancesHandler exposes triage, assignment and oversight endpoints.
type AdminGrievancesHandler struct {
	grievances *service.GrievanceService
	lifecycle  *service.LifecycleService
	matcher    *service.MatcherService
	geo        *service.GeoIndex
	reconciler *service.Reconciler
}

// NewAdminGrievancesHandler constructs handler.
func NewAdminGrievancesHandler(
	grievances *service.GrievanceService,
	lifecycle *service.LifecycleService,
	matcher *service.MatcherService,
	geo *service.GeoIndex,
	reconciler *service.Reconciler,
) *AdminGrievancesHandler {
	return &AdminGrievancesHandler{
		grievances: grievances,
		lifecycle:  lifecycle,
		matcher:    matcher,
		geo:        geo,
		reconciler: reconciler,
	}
}

// List handles GET /admin/grievances with full filtering.
func (h *AdminGrievancesHandler) List(c *fiber.Ctx) error {
	filter := repository.GrievanceFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if v := c.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}
	if v := c.Query("state"); v != "" {
		filter.State = &v
	}
	if v := c.Query("district"); v != "" {
		filter.District = &v
	}
	if v := c.Query("status"); v != "" {
		filter.Statuses = []domain.GrievanceStatus{domain.GrievanceStatus(v)}
	}
	if v := c.Query("priority"); v != "" {
		filter.Priorities = []domain.Priority{domain.Priority(v)}
	}

	items, err := h.grievances.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.GrievanceListFromDomain(items)})
}

// Get handles GET /admin/grievances/:id.
func (h *AdminGrievancesHandler) Get(c *fiber.Ctx) error {
	detail, err := h.grievances.GetDetail(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DetailFromDomain(detail.Grievance, detail.Media, detail.Feedback, detail.Timeline)})
}

// Transition handles POST /admin/grievances/:id/transition, the generic
// lifecycle endpoint for admins.
func (h *AdminGrievancesHandler) Transition(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff token required")
	}

	var req dto.TransitionRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	event := domain.LifecycleEvent(req.Event)
	if event == "" {
		return apperrors.NewValidationError("event required", nil)
	}

	input := service.TransitionInput{
		Event:     event,
		OfficerID: req.OfficerID,
		Rating:    req.Rating,
		Comment:   req.Comment,
		Remark:    req.Remark,
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

// EligibleOfficers handles GET /admin/grievances/:id/eligible-officers.
func (h *AdminGrievancesHandler) EligibleOfficers(c *fiber.Ctx) error {
	officers, err := h.matcher.ListEligibleOfficers(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.OfficerListFromDomain(officers)})
}

// GeoCounts handles GET /admin/stats/geo, the live active-grievance rollup.
// Passing ?state= drills into that state's districts.
func (h *AdminGrievancesHandler) GeoCounts(c *fiber.Ctx) error {
	data := fiber.Map{"by_state": h.geo.CountsByState()}
	if state := c.Query("state"); state != "" {
		data["state"] = state
		data["by_district"] = h.geo.CountsByDistrict(state)
	}
	return c.JSON(fiber.Map{"data": data})
}

// Dashboard handles GET /admin/stats/dashboard.
func (h *AdminGrievancesHandler) Dashboard(c *fiber.Ctx) error {
	stats, err := h.grievances.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{
		"total":           stats.Total,
		"active":          stats.Active,
		"resolved":        stats.Resolved,
		"critical":        stats.Critical,
		"by_status":       stats.ByStatus,
		"active_by_state": stats.ActiveByState,
	}})
}

// tentativeStatus maps a board move to the column the client shows while
// the answer is pending.
func tentativeStatus(event domain.LifecycleEvent) (domain.GrievanceStatus, bool) {
	switch event {
	case domain.EventAssign, domain.EventReassign:
		return domain.StatusAssigned, true
	case domain.EventStartWork:
		return domain.StatusInProgress, true
	case domain.EventSubmitResolution:
		return domain.StatusPendingVerification, true
	case domain.EventVerify:
		return domain.StatusResolved, true
	default:
		return "", false
	}
}

// BoardMove handles POST /admin/grievances/:id/board-move. The drag-and-drop
// board registers the optimistic target first, then the transition runs and
// the pending entry is settled with the authoritative answer.
func (h *AdminGrievancesHandler) BoardMove(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return apperrors.NewUnauthorized("staff token required")
	}

	var req dto.BoardMoveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	event := domain.LifecycleEvent(req.Event)
	tentative, ok := tentativeStatus(event)
	if !ok {
		return apperrors.NewValidationError("event not movable on the board", map[string]any{"event": req.Event})
	}

	grievanceID := c.Params("id")
	current, err := h.grievances.Get(c.UserContext(), grievanceID)
	if err != nil {
		return err
	}

	if _, err := h.reconciler.Begin(grievanceID, event, current.Status, tentative); err != nil {
		return err
	}

	actor := service.StaffActor(principal.Staff.ID, principal.Staff.Role)
	result, transitionErr := h.lifecycle.Transition(c.UserContext(), actor, grievanceID, service.TransitionInput{
		Event:     event,
		OfficerID: req.OfficerID,
		Remark:    req.Remark,
	})
	outcome := h.reconciler.Resolve(grievanceID, result, transitionErr)
	if outcome == nil {
		// A sweeper expired the entry before the answer landed; report the
		// answer anyway.
		if transitionErr != nil {
			return transitionErr
		}
		return c.JSON(fiber.Map{"data": fiber.Map{
			"committed": true,
			"status":    result.Status,
			"grievance": dto.GrievanceFromDomain(result),
		}})
	}

	if !outcome.Committed {
		domainErr := apperrors.ToDomainError(outcome.Err)
		return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"data": fiber.Map{
			"committed":       false,
			"rollback_status": outcome.Status,
			"error": fiber.Map{
				"code":    domainErr.Code,
				"message": domainErr.Message,
			},
		}})
	}

	return c.JSON(fiber.Map{"data": fiber.Map{
		"committed": true,
		"status":    outcome.Status,
		"grievance": dto.GrievanceFromDomain(result),
	}})
}
