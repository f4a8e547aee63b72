package service

import (
	"context"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/office-hours/queue-service/internal/domain"
	"github.com/office-hours/queue-service/internal/events"
	"github.com/office-hours/queue-service/internal/repository"
	apperrors "github.com/office-hours/queue-service/pkg/util"
)

// RejectionReason distinguishes the business rules that can block ticket
// creation. A rejection is an explicit result, not an error, so callers
// can tell it apart from a transport failure and explain it precisely.
type RejectionReason string

const (
	RejectionAlreadyActive RejectionReason = "ALREADY_ACTIVE_TICKET"
	RejectionCooldown      RejectionReason = "COOLDOWN"
)

// CreateRejection carries why creation was refused.
type CreateRejection struct {
	Reason          RejectionReason
	CooldownMinutes int
}

// CreateTicketInput describes ticket creation payload.
type CreateTicketInput struct {
	Description         string
	AssignmentID        int64
	LocationID          int64
	LocationDescription string
	TicketType          domain.TicketType
	IsPublic            bool
	PersonalQueueName   *string
}

// CreateTicketResult is either a created ticket or a rejection.
type CreateTicketResult struct {
	Ticket    *domain.Ticket
	Rejection *CreateRejection
}

// TicketService coordinates ticket creation and reads around the
// lifecycle engine.
type TicketService struct {
	tickets     repository.TicketRepository
	catalog     repository.CatalogRepository
	settings    *SettingsService
	publisher   events.Publisher
	logger      *zap.Logger
	globalTopic string
	now         func() time.Time
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo  repository.TicketRepository
	CatalogRepo repository.CatalogRepository
	Settings    *SettingsService
	Publisher   events.Publisher
	Logger      *zap.Logger
	GlobalTopic string
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	topic := deps.GlobalTopic
	if topic == "" {
		topic = events.GlobalTopic
	}
	return &TicketService{
		tickets:     deps.TicketRepo,
		catalog:     deps.CatalogRepo,
		settings:    deps.Settings,
		publisher:   deps.Publisher,
		logger:      deps.Logger,
		globalTopic: topic,
		now:         time.Now,
	}
}

// CreateTicket creates a help request for a student. Business-rule
// rejections (an active ticket already open, or the cooldown after the
// last resolved one) come back in the result, never as an error.
func (s *TicketService) CreateTicket(ctx context.Context, creatorID, creatorName string, input CreateTicketInput) (*CreateTicketResult, error) {
	description := strings.TrimSpace(input.Description)
	if description == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}
	if len(description) > domain.MaxDescriptionLength {
		return nil, apperrors.NewValidationError("description too long", map[string]any{
			"max_length": domain.MaxDescriptionLength,
		})
	}
	switch input.TicketType {
	case domain.TicketTypeDebugging, domain.TicketTypeConceptual, domain.TicketTypeCheckoff:
	default:
		return nil, apperrors.NewValidationError("unknown ticket type", map[string]any{
			"ticket_type": input.TicketType,
		})
	}

	assignment, err := s.catalog.GetAssignmentByID(ctx, input.AssignmentID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !assignment.IsActive {
		return nil, apperrors.NewConflict("assignment inactive", map[string]any{"assignment_id": assignment.ID})
	}
	location, err := s.catalog.GetLocationByID(ctx, input.LocationID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if !location.IsActive {
		return nil, apperrors.NewConflict("location inactive", map[string]any{"location_id": location.ID})
	}
	if input.PersonalQueueName != nil {
		queue, err := s.catalog.GetPersonalQueue(ctx, *input.PersonalQueueName)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		if queue == nil {
			return nil, apperrors.NewNotFound("personal queue", map[string]any{"name": *input.PersonalQueueName})
		}
		if !queue.IsOpen {
			return nil, apperrors.NewConflict("personal queue closed", map[string]any{"name": queue.Name})
		}
	}

	if rejection, err := s.checkCreationRules(ctx, creatorID); err != nil {
		return nil, err
	} else if rejection != nil {
		return &CreateTicketResult{Rejection: rejection}, nil
	}

	status, err := s.initialStatus(ctx, input.TicketType)
	if err != nil {
		return nil, err
	}
	isPublic, err := s.resolveVisibility(ctx, input.TicketType, input.IsPublic)
	if err != nil {
		return nil, err
	}

	ticket := &domain.Ticket{
		Description:         description,
		TicketType:          input.TicketType,
		Status:              status,
		IsPublic:            isPublic,
		CreatedByID:         creatorID,
		CreatedByName:       creatorName,
		AssignmentID:        assignment.ID,
		LocationID:          location.ID,
		LocationDescription: strings.TrimSpace(input.LocationDescription),
		PersonalQueueName:   input.PersonalQueueName,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	created, err := s.tickets.GetByID(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}

	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, s.globalTopic, events.NameNewTicket, created); err != nil {
			s.logger.Warn("new-ticket emission failed", zap.Int64("ticket_id", created.ID), zap.Error(err))
		}
	}
	s.logger.Info("ticket created",
		zap.Int64("ticket_id", created.ID),
		zap.String("status", string(created.Status)),
		zap.String("ticket_type", string(created.TicketType)))
	return &CreateTicketResult{Ticket: created}, nil
}

// GetTicket fetches one ticket's detail.
func (s *TicketService) GetTicket(ctx context.Context, id int64) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// ListByStatus is the bulk fetch backing one queue partition.
func (s *TicketService) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	switch status {
	case domain.TicketStatusPending, domain.TicketStatusOpen, domain.TicketStatusAssigned, domain.TicketStatusResolved:
	default:
		return nil, apperrors.NewValidationError("unknown status", map[string]any{"status": status})
	}
	tickets, err := s.tickets.ListByStatus(ctx, status)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Stats returns the timing rows behind the course dashboard. helpedByID
// narrows to tickets helped by one staff member.
func (s *TicketService) Stats(ctx context.Context, helpedByID *string) ([]domain.TicketStats, error) {
	stats, err := s.tickets.ListStats(ctx, helpedByID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return stats, nil
}

func (s *TicketService) checkCreationRules(ctx context.Context, creatorID string) (*CreateRejection, error) {
	active, err := s.tickets.FindActiveByCreator(ctx, creatorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if active != nil {
		return &CreateRejection{Reason: RejectionAlreadyActive}, nil
	}

	cooldown, err := s.settings.CooldownMinutes(ctx)
	if err != nil {
		return nil, err
	}
	if cooldown <= 0 {
		return nil, nil
	}
	lastResolved, err := s.tickets.LastResolvedAt(ctx, creatorID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if lastResolved == nil {
		return nil, nil
	}
	elapsed := s.now().Sub(*lastResolved)
	window := time.Duration(cooldown) * time.Minute
	if elapsed >= window {
		return nil, nil
	}
	remaining := int(math.Ceil((window - elapsed).Minutes()))
	return &CreateRejection{Reason: RejectionCooldown, CooldownMinutes: remaining}, nil
}

func (s *TicketService) initialStatus(ctx context.Context, ticketType domain.TicketType) (domain.TicketStatus, error) {
	if !ticketType.RequiresModeration() {
		return domain.TicketStatusOpen, nil
	}
	enabled, err := s.settings.PendingStageEnabled(ctx)
	if err != nil {
		return "", err
	}
	if enabled {
		return domain.TicketStatusPending, nil
	}
	return domain.TicketStatusOpen, nil
}

// resolveVisibility forces non-conceptual tickets private and honors the
// public-tickets toggle for conceptual ones.
func (s *TicketService) resolveVisibility(ctx context.Context, ticketType domain.TicketType, requested bool) (bool, error) {
	if !ticketType.MayBePublic() || !requested {
		return false, nil
	}
	enabled, err := s.settings.PublicTicketsEnabled(ctx)
	if err != nil {
		return false, err
	}
	return enabled, nil
}
