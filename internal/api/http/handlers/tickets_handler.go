package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/office-hours/queue-service/internal/api/dto"
	"github.com/office-hours/queue-service/internal/auth"
	"github.com/office-hours/queue-service/internal/domain"
	"github.com/office-hours/queue-service/internal/service"
	apperrors "github.com/office-hours/queue-service/pkg/util"
)

// TicketsHandler manages ticket creation and reads.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// CreateTicket POST /tickets.
func (h *TicketsHandler) CreateTicket(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssignmentID == 0 || req.LocationID == 0 {
		return apperrors.NewValidationError("assignmentId and locationId required", nil)
	}

	result, err := h.service.CreateTicket(c.UserContext(), principal.UserID, principal.Name, service.CreateTicketInput{
		Description:         req.Description,
		AssignmentID:        req.AssignmentID,
		LocationID:          req.LocationID,
		LocationDescription: req.LocationDescription,
		TicketType:          req.TicketType,
		IsPublic:            req.IsPublic,
		PersonalQueueName:   req.PersonalQueueName,
	})
	if err != nil {
		return err
	}

	if result.Rejection != nil {
		return c.JSON(dto.CreateTicketResponse{
			Created:             false,
			Reason:              string(result.Rejection.Reason),
			CooldownMinutesLeft: result.Rejection.CooldownMinutes,
		})
	}
	ticket := dto.FromTicket(result.Ticket)
	return c.Status(fiber.StatusCreated).JSON(dto.CreateTicketResponse{
		Created: true,
		Ticket:  &ticket,
	})
}

// GetTicket GET /tickets/:id.
func (h *TicketsHandler) GetTicket(c *fiber.Ctx) error {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return apperrors.NewValidationError("invalid ticket id", nil)
	}
	ticket, err := h.service.GetTicket(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTicket(ticket)})
}

// ListTickets GET /tickets?status=OPEN — the bulk fetch seeding one
// client partition.
func (h *TicketsHandler) ListTickets(c *fiber.Ctx) error {
	status := domain.TicketStatus(c.Query("status"))
	if status == "" {
		return apperrors.NewValidationError("status query parameter required", nil)
	}
	tickets, err := h.service.ListByStatus(c.UserContext(), status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(tickets)})
}
