package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/civicpulse/grievance-service/internal/api/dto"
	"github.com/civicpulse/grievance-service/internal/repository"
	apperrors "github.com/civicpulse/grievance-service/pkg/util"
)

// MetadataHandler serves the reference tables the portal forms need.
type MetadataHandler struct {
	departments repository.DepartmentRepository
	regions     repository.RegionRepository
}

// NewMetadataHandler constructs handler.
func NewMetadataHandler(departments repository.DepartmentRepository, regions repository.RegionRepository) *MetadataHandler {
	return &MetadataHandler{departments: departments, regions: regions}
}

// Departments handles GET /metadata/departments.
func (h *MetadataHandler) Departments(c *fiber.Ctx) error {
	items, err := h.departments.List(c.UserContext())
	if err != nil {
		return apperrors.NewUnavailable("record store unavailable", err)
	}
	return c.JSON(fiber.Map{"data": dto.DepartmentListFromDomain(items)})
}

// Regions handles GET /metadata/regions.
func (h *MetadataHandler) Regions(c *fiber.Ctx) error {
	items, err := h.regions.List(c.UserContext())
	if err != nil {
		return apperrors.NewUnavailable("record store unavailable", err)
	}
	return c.JSON(fiber.Map{"data": dto.RegionListFromDomain(items)})
}
