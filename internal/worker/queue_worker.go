package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/office-hours/queue-service/internal/events"
	"github.com/office-hours/queue-service/internal/observability"
	"github.com/office-hours/queue-service/internal/queueview"
)

// StartQueueWorker keeps the reconciliation cache fed from the global
// event topic, resubscribing with a small backoff if the connection drops.
func StartQueueWorker(ctx context.Context, subscriber *events.Subscriber, cache *queueview.Cache, metrics *observability.Metrics, topic string, logger *zap.Logger) {
	go func() {
		for {
			err := subscriber.Run(ctx, topic, func(event events.LifecycleEvent) {
				metrics.RecordEvent(eventName(event))
				cache.Handle(event)
			})
			if ctx.Err() != nil {
				return
			}
			logger.Warn("queue subscription lost, retrying", zap.Error(err))
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
		}
	}()
}

func eventName(event events.LifecycleEvent) string {
	switch event.(type) {
	case events.NewTicket:
		return events.NameNewTicket
	case events.TicketsApproved:
		return events.NameTicketsApproved
	case events.TicketsAssigned:
		return events.NameTicketsAssigned
	case events.TicketsResolved:
		return events.NameTicketsResolved
	case events.TicketsRequeued:
		return events.NameTicketsRequeued
	case events.TicketsReopened:
		return events.NameTicketsReopened
	default:
		return "unknown"
	}
}
