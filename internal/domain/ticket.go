package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusPending  TicketStatus = "PENDING"
	TicketStatusOpen     TicketStatus = "OPEN"
	TicketStatusAssigned TicketStatus = "ASSIGNED"
	TicketStatusResolved TicketStatus = "RESOLVED"
)

// TicketType enumerates the kinds of help a student can ask for.
type TicketType string

const (
	TicketTypeDebugging  TicketType = "DEBUGGING"
	TicketTypeConceptual TicketType = "CONCEPTUAL"
	TicketTypeCheckoff   TicketType = "CHECKOFF"
)

// MaxDescriptionLength bounds the free-text description field.
const MaxDescriptionLength = 1000

// Ticket is the aggregate for a single help request.
type Ticket struct {
	ID                  int64        `json:"id"`
	Description         string       `json:"description"`
	TicketType          TicketType   `json:"ticketType"`
	Status              TicketStatus `json:"status"`
	IsPublic            bool         `json:"isPublic"`
	CreatedByID         string       `json:"createdByUserId"`
	CreatedByName       string       `json:"createdByName"`
	HelpedByID          *string      `json:"helpedByUserId,omitempty"`
	HelpedByName        *string      `json:"helpedByName,omitempty"`
	AssignmentID        int64        `json:"assignmentId"`
	AssignmentName      string       `json:"assignmentName"`
	LocationID          int64        `json:"locationId"`
	LocationName        string       `json:"locationName"`
	LocationDescription string       `json:"locationDescription"`
	PersonalQueueName   *string      `json:"personalQueueName,omitempty"`
	CreatedAt           time.Time    `json:"createdAt"`
	HelpedAt            *time.Time   `json:"helpedAt,omitempty"`
	ResolvedAt          *time.Time   `json:"resolvedAt,omitempty"`
}

// RequiresModeration reports whether tickets of this type pass through the
// PENDING stage when the pending stage is enabled. Checkoff tickets skip it.
func (t TicketType) RequiresModeration() bool {
	return t == TicketTypeDebugging || t == TicketTypeConceptual
}

// MayBePublic reports whether tickets of this type can be shared publicly.
// Only conceptual questions are safe to broadcast to other students.
func (t TicketType) MayBePublic() bool {
	return t == TicketTypeConceptual
}

// IsTerminal reports whether the status is terminal from the queue's
// perspective. Resolved tickets leave all visible partitions.
func (s TicketStatus) IsTerminal() bool {
	return s == TicketStatusResolved
}

// TicketStats is the projection used for course statistics dashboards.
type TicketStats struct {
	CreatedAt    time.Time    `json:"createdAt"`
	HelpedAt     *time.Time   `json:"helpedAt,omitempty"`
	ResolvedAt   *time.Time   `json:"resolvedAt,omitempty"`
	Status       TicketStatus `json:"status"`
	TicketType   TicketType   `json:"ticketType"`
	Description  string       `json:"description"`
	IsPublic     bool         `json:"isPublic"`
	LocationID   int64        `json:"locationId"`
	AssignmentID int64        `json:"assignmentId"`
}
