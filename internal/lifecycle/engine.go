// Package lifecycle implements the ticket status state machine. Every
// operation moves a batch of tickets along exactly one edge of the graph
//
//	PENDING -> OPEN -> ASSIGNED -> RESOLVED
//	              ^___________/  (requeue)
//	              ^_____________________/  (reopen)
//
// and announces the move on the event channel. A batch either transitions
// every targeted ticket or none; clients rely on batch events always
// describing a fully-applied move.
package lifecycle

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/office-hours/queue-service/internal/domain"
	"github.com/office-hours/queue-service/internal/events"
	"github.com/office-hours/queue-service/internal/repository"
	apperrors "github.com/office-hours/queue-service/pkg/util"
)

// Engine validates and executes status transitions against the ticket
// store and emits the corresponding events.
type Engine struct {
	tickets     repository.TicketRepository
	publisher   events.Publisher
	logger      *zap.Logger
	globalTopic string
}

// NewEngine constructs the engine. globalTopic is the channel carrying
// queue-wide events, usually events.GlobalTopic.
func NewEngine(tickets repository.TicketRepository, publisher events.Publisher, logger *zap.Logger, globalTopic string) *Engine {
	if globalTopic == "" {
		globalTopic = events.GlobalTopic
	}
	return &Engine{tickets: tickets, publisher: publisher, logger: logger, globalTopic: globalTopic}
}

// Approve moves PENDING tickets into the OPEN queue.
func (e *Engine) Approve(ctx context.Context, ids []int64) ([]domain.Ticket, error) {
	moved, err := e.transition(ctx, ids, domain.TicketStatusPending, domain.TicketStatusOpen, repository.TransitionMutation{})
	if err != nil {
		return nil, err
	}
	e.emit(ctx, events.NameTicketsApproved, events.SignalTicketApproved, moved)
	return moved, nil
}

// Assign marks OPEN tickets as being helped by the given staff member,
// stamping HelpedAt on first assignment.
func (e *Engine) Assign(ctx context.Context, helperID, helperName string, ids []int64) ([]domain.Ticket, error) {
	mut := repository.TransitionMutation{
		HelperID:      &helperID,
		HelperName:    &helperName,
		StampHelpedAt: true,
	}
	moved, err := e.transition(ctx, ids, domain.TicketStatusOpen, domain.TicketStatusAssigned, mut)
	if err != nil {
		return nil, err
	}
	e.emit(ctx, events.NameTicketsAssigned, events.SignalTicketAssigned, moved)
	return moved, nil
}

// Resolve completes ASSIGNED tickets, stamping ResolvedAt once.
func (e *Engine) Resolve(ctx context.Context, ids []int64) ([]domain.Ticket, error) {
	mut := repository.TransitionMutation{StampResolvedAt: true}
	moved, err := e.transition(ctx, ids, domain.TicketStatusAssigned, domain.TicketStatusResolved, mut)
	if err != nil {
		return nil, err
	}
	e.emit(ctx, events.NameTicketsResolved, events.SignalTicketResolved, moved)
	return moved, nil
}

// Requeue returns ASSIGNED tickets to the OPEN queue, clearing the helper.
// Consumers put requeued tickets at the front of the queue.
func (e *Engine) Requeue(ctx context.Context, ids []int64) ([]domain.Ticket, error) {
	mut := repository.TransitionMutation{ClearHelper: true}
	moved, err := e.transition(ctx, ids, domain.TicketStatusAssigned, domain.TicketStatusOpen, mut)
	if err != nil {
		return nil, err
	}
	e.emit(ctx, events.NameTicketsRequeued, events.SignalTicketRequeued, moved)
	return moved, nil
}

// Reopen puts RESOLVED tickets back into the OPEN queue and clears
// ResolvedAt so a later resolve stamps it again.
func (e *Engine) Reopen(ctx context.Context, ids []int64) ([]domain.Ticket, error) {
	mut := repository.TransitionMutation{ClearResolvedAt: true}
	moved, err := e.transition(ctx, ids, domain.TicketStatusResolved, domain.TicketStatusOpen, mut)
	if err != nil {
		return nil, err
	}
	e.emit(ctx, events.NameTicketsReopened, events.SignalTicketReopened, moved)
	return moved, nil
}

func (e *Engine) transition(ctx context.Context, ids []int64, from, to domain.TicketStatus, mut repository.TransitionMutation) ([]domain.Ticket, error) {
	if len(ids) == 0 {
		return nil, apperrors.NewValidationError("ticketIds required", nil)
	}
	moved, err := e.tickets.TransitionAll(ctx, ids, from, to, mut)
	if err != nil {
		if errors.Is(err, repository.ErrStalePrecondition) {
			return nil, apperrors.NewInvalidTransition(map[string]any{
				"ticket_ids":      ids,
				"required_status": from,
			})
		}
		return nil, apperrors.MapError(err)
	}
	e.logger.Info("tickets transitioned",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
		zap.Int("count", len(moved)))
	return moved, nil
}

// emit publishes the batch event on the global topic and a payloadless
// signal on each ticket's own topic. Emission is fire-and-forget; a
// delivery failure never unwinds an applied transition.
func (e *Engine) emit(ctx context.Context, batchName, signalName string, moved []domain.Ticket) {
	if e.publisher == nil || len(moved) == 0 {
		return
	}
	if err := e.publisher.Publish(ctx, e.globalTopic, batchName, moved); err != nil {
		e.logger.Warn("global event emission failed", zap.String("event", batchName), zap.Error(err))
	}
	for _, ticket := range moved {
		if err := e.publisher.Publish(ctx, events.TicketTopic(ticket.ID), signalName, nil); err != nil {
			e.logger.Warn("ticket signal emission failed",
				zap.Int64("ticket_id", ticket.ID),
				zap.String("event", signalName),
				zap.Error(err))
		}
	}
}
