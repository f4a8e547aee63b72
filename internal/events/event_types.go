package events

import (
	"encoding/json"
	"fmt"

	"github.com/office-hours/queue-service/internal/domain"
)

// Event names published on the global queue topic.
const (
	NameNewTicket       = "new-ticket"
	NameTicketsApproved = "tickets-approved"
	NameTicketsAssigned = "tickets-assigned"
	NameTicketsResolved = "tickets-resolved"
	NameTicketsRequeued = "tickets-requeued"
	NameTicketsReopened = "tickets-reopened"
)

// Signal names published on per-ticket topics. These carry no payload;
// subscribers re-fetch the ticket detail on receipt.
const (
	SignalTicketApproved = "ticket-approved"
	SignalTicketAssigned = "ticket-assigned"
	SignalTicketResolved = "ticket-resolved"
	SignalTicketRequeued = "ticket-requeued"
	SignalTicketReopened = "ticket-reopened"
)

// GlobalTopic is the default channel carrying queue-wide events.
const GlobalTopic = "tickets"

// TicketTopic returns the per-ticket channel name.
func TicketTopic(ticketID int64) string {
	return fmt.Sprintf("ticket-%d", ticketID)
}

// Envelope is the wire shape of a published message.
type Envelope struct {
	ID   string          `json:"id"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}

// LifecycleEvent is the tagged union of queue events a consumer can act on.
// Unknown event names never decode to a LifecycleEvent; callers drop them.
type LifecycleEvent interface {
	lifecycleEvent()
}

// NewTicket announces a freshly created ticket. Its destination partition
// is not decided by the producer; consumers route it based on the current
// pending-stage setting.
type NewTicket struct {
	Ticket domain.Ticket
}

// TicketsApproved moves tickets from PENDING to OPEN.
type TicketsApproved struct {
	Tickets []domain.Ticket
}

// TicketsAssigned moves tickets from OPEN to ASSIGNED.
type TicketsAssigned struct {
	Tickets []domain.Ticket
}

// TicketsResolved removes tickets from ASSIGNED; they leave the queue.
type TicketsResolved struct {
	Tickets []domain.Ticket
}

// TicketsRequeued moves tickets from ASSIGNED back to the front of OPEN.
type TicketsRequeued struct {
	Tickets []domain.Ticket
}

// TicketsReopened puts previously resolved tickets back into OPEN.
type TicketsReopened struct {
	Tickets []domain.Ticket
}

func (NewTicket) lifecycleEvent()       {}
func (TicketsApproved) lifecycleEvent() {}
func (TicketsAssigned) lifecycleEvent() {}
func (TicketsResolved) lifecycleEvent() {}
func (TicketsRequeued) lifecycleEvent() {}
func (TicketsReopened) lifecycleEvent() {}

// Decode maps an envelope onto the event union. The second return value is
// false for unrecognized names so consumers can skip them without failing.
func Decode(env Envelope) (LifecycleEvent, bool, error) {
	switch env.Name {
	case NameNewTicket:
		var ticket domain.Ticket
		if err := json.Unmarshal(env.Data, &ticket); err != nil {
			return nil, true, fmt.Errorf("decode %s: %w", env.Name, err)
		}
		return NewTicket{Ticket: ticket}, true, nil
	case NameTicketsApproved, NameTicketsAssigned, NameTicketsResolved, NameTicketsRequeued, NameTicketsReopened:
		var tickets []domain.Ticket
		if err := json.Unmarshal(env.Data, &tickets); err != nil {
			return nil, true, fmt.Errorf("decode %s: %w", env.Name, err)
		}
		switch env.Name {
		case NameTicketsApproved:
			return TicketsApproved{Tickets: tickets}, true, nil
		case NameTicketsAssigned:
			return TicketsAssigned{Tickets: tickets}, true, nil
		case NameTicketsResolved:
			return TicketsResolved{Tickets: tickets}, true, nil
		case NameTicketsRequeued:
			return TicketsRequeued{Tickets: tickets}, true, nil
		default:
			return TicketsReopened{Tickets: tickets}, true, nil
		}
	default:
		return nil, false, nil
	}
}
