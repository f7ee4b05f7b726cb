package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/civicpulse/grievance-service/internal/api/dto"
	"github.com/civicpulse/grievance-service/internal/domain"
	"github.com/civicpulse/grievance-service/internal/repository"
	"github.com/civicpulse/grievance-service/internal/service"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

// StaffHandler exposes the admin-only staff directory.
type StaffHandler struct {
	officers *service.OfficerService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(officers *service.OfficerService) *StaffHandler {
	return &StaffHandler{officers: officers}
}

// Create handles POST /admin/officers.
func (h *StaffHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateOfficerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	officer, err := h.officers.Create(c.UserContext(), service.CreateOfficerInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         domain.StaffRole(req.Role),
		DepartmentID: req.DepartmentID,
		Geo:          req.Geo.ToDomain(),
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": dto.OfficerFromDomain(officer)})
}

// List handles GET /admin/officers.
func (h *StaffHandler) List(c *fiber.Ctx) error {
	filter := repository.OfficerFilter{
		Limit:  c.QueryInt("limit", 50),
		Offset: c.QueryInt("offset", 0),
	}
	if v := c.Query("role"); v != "" {
		role := domain.StaffRole(v)
		filter.Role = &role
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
	if c.Query("active") != "" {
		active := c.QueryBool("active")
		filter.Active = &active
	}

	items, err := h.officers.List(c.UserContext(), filter)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.OfficerListFromDomain(items)})
}

// Get handles GET /admin/officers/:id.
func (h *StaffHandler) Get(c *fiber.Ctx) error {
	officer, err := h.officers.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.OfficerFromDomain(officer)})
}

// SetActive handles PATCH /admin/officers/:id/active.
func (h *StaffHandler) SetActive(c *fiber.Ctx) error {
	var req dto.SetOfficerActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}

	officer, err := h.officers.SetActive(c.UserContext(), c.Params("id"), req.Active)
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": dto.OfficerFromDomain(officer)})
}
