package dto

import (
	"time"

	"github.com/office-hours/queue-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Description         string            `json:"description"`
	AssignmentID        int64             `json:"assignmentId"`
	LocationID          int64             `json:"locationId"`
	LocationDescription string            `json:"locationDescription"`
	TicketType          domain.TicketType `json:"ticketType"`
	IsPublic            bool              `json:"isPublic"`
	PersonalQueueName   *string           `json:"personalQueueName,omitempty"`
}

// CreateTicketResponse reports either the created ticket or the business
// rule that blocked creation, so clients can render a precise message.
type CreateTicketResponse struct {
	Created             bool            `json:"created"`
	Reason              string          `json:"reason,omitempty"`
	CooldownMinutesLeft int             `json:"cooldownMinutesLeft,omitempty"`
	Ticket              *TicketResponse `json:"ticket,omitempty"`
}

// TicketIDsRequest is the shared payload of the batch lifecycle endpoints.
type TicketIDsRequest struct {
	TicketIDs []int64 `json:"ticketIds"`
}

// TicketResponse is the wire shape of one ticket with resolved names.
type TicketResponse struct {
	ID                  int64               `json:"id"`
	Description         string              `json:"description"`
	TicketType          domain.TicketType   `json:"ticketType"`
	Status              domain.TicketStatus `json:"status"`
	IsPublic            bool                `json:"isPublic"`
	CreatedByID         string              `json:"createdByUserId"`
	CreatedByName       string              `json:"createdByName"`
	HelpedByID          *string             `json:"helpedByUserId,omitempty"`
	HelpedByName        *string             `json:"helpedByName,omitempty"`
	AssignmentID        int64               `json:"assignmentId"`
	AssignmentName      string              `json:"assignmentName"`
	LocationID          int64               `json:"locationId"`
	LocationName        string              `json:"locationName"`
	LocationDescription string              `json:"locationDescription"`
	PersonalQueueName   *string             `json:"personalQueueName,omitempty"`
	CreatedAt           time.Time           `json:"createdAt"`
	HelpedAt            *time.Time          `json:"helpedAt,omitempty"`
	ResolvedAt          *time.Time          `json:"resolvedAt,omitempty"`
}

// FromTicket maps a domain ticket onto the response shape.
func FromTicket(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:                  ticket.ID,
		Description:         ticket.Description,
		TicketType:          ticket.TicketType,
		Status:              ticket.Status,
		IsPublic:            ticket.IsPublic,
		CreatedByID:         ticket.CreatedByID,
		CreatedByName:       ticket.CreatedByName,
		HelpedByID:          ticket.HelpedByID,
		HelpedByName:        ticket.HelpedByName,
		AssignmentID:        ticket.AssignmentID,
		AssignmentName:      ticket.AssignmentName,
		LocationID:          ticket.LocationID,
		LocationName:        ticket.LocationName,
		LocationDescription: ticket.LocationDescription,
		PersonalQueueName:   ticket.PersonalQueueName,
		CreatedAt:           ticket.CreatedAt,
		HelpedAt:            ticket.HelpedAt,
		ResolvedAt:          ticket.ResolvedAt,
	}
}

// FromTickets maps a batch.
func FromTickets(tickets []domain.Ticket) []TicketResponse {
	result := make([]TicketResponse, 0, len(tickets))
	for i := range tickets {
		result = append(result, FromTicket(&tickets[i]))
	}
	return result
}

// UpdateSettingRequest payload.
type UpdateSettingRequest struct {
	Value string `json:"value"`
}
