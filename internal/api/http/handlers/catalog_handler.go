package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/office-hours/queue-service/internal/repository"
	apperrors "github.com/office-hours/queue-service/pkg/util"
)

// CatalogHandler lists the reference data the ticket form offers.
type CatalogHandler struct {
	catalog repository.CatalogRepository
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog repository.CatalogRepository) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// ListAssignments GET /assignments.
func (h *CatalogHandler) ListAssignments(c *fiber.Ctx) error {
	assignments, err := h.catalog.ListActiveAssignments(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": assignments})
}

// ListLocations GET /locations.
func (h *CatalogHandler) ListLocations(c *fiber.Ctx) error {
	locations, err := h.catalog.ListActiveLocations(c.UserContext())
	if err != nil {
		return apperrors.MapError(err)
	}
	return c.JSON(fiber.Map{"data": locations})
}
