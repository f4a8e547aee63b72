package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/office-hours/queue-service/internal/api/dto"
	"github.com/office-hours/queue-service/internal/auth"
	"github.com/office-hours/queue-service/internal/lifecycle"
	apperrors "github.com/office-hours/queue-service/pkg/util"
)

// LifecycleHandler exposes the batch status-transition operations.
type LifecycleHandler struct {
	engine *lifecycle.Engine
}

// NewLifecycleHandler constructs handler.
func NewLifecycleHandler(engine *lifecycle.Engine) *LifecycleHandler {
	return &LifecycleHandler{engine: engine}
}

// ApproveTickets POST /tickets/approve.
func (h *LifecycleHandler) ApproveTickets(c *fiber.Ctx) error {
	ids, err := parseTicketIDs(c)
	if err != nil {
		return err
	}
	moved, err := h.engine.Approve(c.UserContext(), ids)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(moved)})
}

// AssignTickets POST /tickets/assign. The caller becomes the helper.
func (h *LifecycleHandler) AssignTickets(c *fiber.Ctx) error {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return apperrors.NewUnauthorized("authentication required")
	}
	ids, err := parseTicketIDs(c)
	if err != nil {
		return err
	}
	moved, err := h.engine.Assign(c.UserContext(), principal.UserID, principal.Name, ids)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(moved)})
}

// ResolveTickets POST /tickets/resolve.
func (h *LifecycleHandler) ResolveTickets(c *fiber.Ctx) error {
	ids, err := parseTicketIDs(c)
	if err != nil {
		return err
	}
	moved, err := h.engine.Resolve(c.UserContext(), ids)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(moved)})
}

// RequeueTickets POST /tickets/requeue.
func (h *LifecycleHandler) RequeueTickets(c *fiber.Ctx) error {
	ids, err := parseTicketIDs(c)
	if err != nil {
		return err
	}
	moved, err := h.engine.Requeue(c.UserContext(), ids)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(moved)})
}

// ReopenTickets POST /tickets/reopen.
func (h *LifecycleHandler) ReopenTickets(c *fiber.Ctx) error {
	ids, err := parseTicketIDs(c)
	if err != nil {
		return err
	}
	moved, err := h.engine.Reopen(c.UserContext(), ids)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.FromTickets(moved)})
}

func parseTicketIDs(c *fiber.Ctx) ([]int64, error) {
	var req dto.TicketIDsRequest
	if err := c.BodyParser(&req); err != nil {
		return nil, apperrors.NewValidationError("invalid payload", nil)
	}
	if len(req.TicketIDs) == 0 {
		return nil, apperrors.NewValidationError("ticketIds required", nil)
	}
	seen := make(map[int64]struct{}, len(req.TicketIDs))
	ids := make([]int64, 0, len(req.TicketIDs))
	for _, id := range req.TicketIDs {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
