package queueview

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/office-hours/queue-service/internal/domain"
	"github.com/office-hours/queue-service/internal/events"
	"github.com/office-hours/queue-service/internal/repository"
)

// Cache is the server-resident reconciliation view: it seeds the
// partitions from the ticket store once, then stays current from the event
// stream so queue reads never hit the store again.
type Cache struct {
	mu     sync.Mutex
	view   *View
	logger *zap.Logger
}

// NewCache constructs a cache around a fresh view.
func NewCache(pendingStageEnabled func() bool, logger *zap.Logger) *Cache {
	return &Cache{view: NewView(pendingStageEnabled), logger: logger}
}

// Seed bulk-loads each visible partition. Partitions that fail to load stay
// unloaded and can be retried; the others serve reads meanwhile.
func (c *Cache) Seed(ctx context.Context, tickets repository.TicketRepository) error {
	var firstErr error
	for _, status := range []domain.TicketStatus{
		domain.TicketStatusPending,
		domain.TicketStatusOpen,
		domain.TicketStatusAssigned,
	} {
		loaded, err := tickets.ListByStatus(ctx, status)
		if err != nil {
			c.logger.Warn("partition seed failed", zap.String("status", string(status)), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		c.mu.Lock()
		c.view.Seed(status, loaded)
		c.mu.Unlock()
	}
	return firstErr
}

// Handle folds one event into the view. Called by the subscriber in
// arrival order; the flush right after apply means a buffered new ticket
// is routed one step later, with the setting read at that moment.
func (c *Cache) Handle(event events.LifecycleEvent) {
	c.mu.Lock()
	c.view.Apply(event)
	c.view.Flush()
	c.mu.Unlock()
}

// Snapshot returns the current partitions.
func (c *Cache) Snapshot() Partitions {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view.Snapshot()
}
