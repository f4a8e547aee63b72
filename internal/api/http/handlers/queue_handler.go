package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/office-hours/queue-service/internal/queueview"
)

// QueueHandler serves the live queue snapshot maintained by the
// reconciliation cache, so reads don't touch the ticket store.
type QueueHandler struct {
	cache *queueview.Cache
}

// NewQueueHandler constructs handler.
func NewQueueHandler(cache *queueview.Cache) *QueueHandler {
	return &QueueHandler{cache: cache}
}

// GetQueue GET /queue.
func (h *QueueHandler) GetQueue(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.cache.Snapshot()})
}
