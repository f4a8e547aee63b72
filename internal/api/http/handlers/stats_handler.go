package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/office-hours/queue-service/internal/service"
	apperrors "github.com/office-hours/queue-service/pkg/util"
)

// StatsHandler serves ticket timing rows for the course dashboard.
type StatsHandler struct {
	service *service.TicketService
}

// NewStatsHandler constructs handler.
func NewStatsHandler(ticketService *service.TicketService) *StatsHandler {
	return &StatsHandler{service: ticketService}
}

// GetTicketStats GET /stats/tickets.
func (h *StatsHandler) GetTicketStats(c *fiber.Ctx) error {
	stats, err := h.service.Stats(c.UserContext(), nil)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}

// GetHelperStats GET /stats/helpers/:userId.
func (h *StatsHandler) GetHelperStats(c *fiber.Ctx) error {
	userID := c.Params("userId")
	if userID == "" {
		return apperrors.NewValidationError("userId required", nil)
	}
	stats, err := h.service.Stats(c.UserContext(), &userID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": stats})
}
