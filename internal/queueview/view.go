// Package queueview maintains the client-facing partitions of the ticket
// queue (PENDING / OPEN / ASSIGNED) by combining one bulk load per
// partition with the incremental event stream, instead of re-fetching on
// every event.
//
// The view tolerates at-least-once, cross-topic-unordered delivery: an
// event applied twice never duplicates a ticket, and a status event for a
// ticket may arrive before the new-ticket event that announced it.
package queueview

import (
	"github.com/office-hours/queue-service/internal/domain"
	"github.com/office-hours/queue-service/internal/events"
)

// Partitions is an immutable snapshot of the queue.
type Partitions struct {
	Pending  []domain.Ticket `json:"pending"`
	Open     []domain.Ticket `json:"open"`
	Assigned []domain.Ticket `json:"assigned"`

	PendingLoaded  bool `json:"pendingLoaded"`
	OpenLoaded     bool `json:"openLoaded"`
	AssignedLoaded bool `json:"assignedLoaded"`
}

// View reduces lifecycle events into queue partitions. It is not safe for
// concurrent use; callers serialize access (see Cache).
type View struct {
	pendingStageEnabled func() bool

	pending  []domain.Ticket
	open     []domain.Ticket
	assigned []domain.Ticket

	pendingLoaded  bool
	openLoaded     bool
	assignedLoaded bool

	// Tickets announced by new-ticket whose destination partition is not
	// decided yet. Routing happens in Flush so it always uses the latest
	// pending-stage setting rather than a snapshot captured at arrival.
	incoming []domain.Ticket
}

// NewView constructs a view. pendingStageEnabled is consulted at flush
// time for every buffered new ticket.
func NewView(pendingStageEnabled func() bool) *View {
	if pendingStageEnabled == nil {
		pendingStageEnabled = func() bool { return false }
	}
	return &View{pendingStageEnabled: pendingStageEnabled}
}

// Seed installs the bulk-loaded contents of one partition and marks it
// loaded. Partitions load independently so callers can render partial
// results.
func (v *View) Seed(status domain.TicketStatus, tickets []domain.Ticket) {
	switch status {
	case domain.TicketStatusPending:
		v.pending = dedupeAppend(nil, tickets)
		v.pendingLoaded = true
	case domain.TicketStatusOpen:
		v.open = dedupeAppend(nil, tickets)
		v.openLoaded = true
	case domain.TicketStatusAssigned:
		v.assigned = dedupeAppend(nil, tickets)
		v.assignedLoaded = true
	}
}

// Apply folds one event into the partitions. New tickets are buffered
// until the next Flush; everything else takes effect immediately.
// Events outside the known union are a no-op by construction (they never
// decode), so the queue keeps working when new event types appear.
func (v *View) Apply(event events.LifecycleEvent) {
	switch ev := event.(type) {
	case events.NewTicket:
		v.incoming = dedupeAppend(v.incoming, []domain.Ticket{ev.Ticket})
	case events.TicketsApproved:
		ids := idSet(ev.Tickets)
		v.pending = removeByID(v.pending, ids)
		v.open = dedupeAppend(v.open, ev.Tickets)
	case events.TicketsAssigned:
		ids := idSet(ev.Tickets)
		v.open = removeByID(v.open, ids)
		v.pending = removeByID(v.pending, ids)
		v.assigned = dedupeAppend(v.assigned, ev.Tickets)
	case events.TicketsResolved:
		ids := idSet(ev.Tickets)
		v.assigned = removeByID(v.assigned, ids)
		v.open = removeByID(v.open, ids)
		v.pending = removeByID(v.pending, ids)
	case events.TicketsRequeued:
		ids := idSet(ev.Tickets)
		v.assigned = removeByID(v.assigned, ids)
		v.open = dedupePrepend(v.open, ev.Tickets)
	case events.TicketsReopened:
		v.assigned = removeByID(v.assigned, idSet(ev.Tickets))
		v.open = dedupeAppend(v.open, ev.Tickets)
	}
}

// Flush routes buffered new tickets into PENDING or OPEN using the current
// pending-stage setting. A ticket already present in any partition is
// dropped: a status event that overtook its new-ticket announcement has
// already placed it correctly.
func (v *View) Flush() {
	if len(v.incoming) == 0 {
		return
	}
	buffered := v.incoming
	v.incoming = nil
	for _, ticket := range buffered {
		if v.contains(ticket.ID) {
			continue
		}
		if v.pendingStageEnabled() && ticket.Status == domain.TicketStatusPending {
			v.pending = dedupeAppend(v.pending, []domain.Ticket{ticket})
		} else {
			v.open = dedupeAppend(v.open, []domain.Ticket{ticket})
		}
	}
}

// Snapshot returns a copy of the partitions.
func (v *View) Snapshot() Partitions {
	return Partitions{
		Pending:        append([]domain.Ticket{}, v.pending...),
		Open:           append([]domain.Ticket{}, v.open...),
		Assigned:       append([]domain.Ticket{}, v.assigned...),
		PendingLoaded:  v.pendingLoaded,
		OpenLoaded:     v.openLoaded,
		AssignedLoaded: v.assignedLoaded,
	}
}

func (v *View) contains(id int64) bool {
	for _, list := range [][]domain.Ticket{v.pending, v.open, v.assigned} {
		for i := range list {
			if list[i].ID == id {
				return true
			}
		}
	}
	return false
}

func idSet(tickets []domain.Ticket) map[int64]struct{} {
	set := make(map[int64]struct{}, len(tickets))
	for i := range tickets {
		set[tickets[i].ID] = struct{}{}
	}
	return set
}

// removeByID drops every ticket whose id is in the set. Removing an absent
// id is a no-op.
func removeByID(list []domain.Ticket, ids map[int64]struct{}) []domain.Ticket {
	kept := list[:0]
	for i := range list {
		if _, hit := ids[list[i].ID]; !hit {
			kept = append(kept, list[i])
		}
	}
	return kept
}

// dedupeAppend appends tickets preserving batch order, skipping ids
// already present.
func dedupeAppend(list []domain.Ticket, batch []domain.Ticket) []domain.Ticket {
	present := idSet(list)
	for i := range batch {
		if _, hit := present[batch[i].ID]; hit {
			continue
		}
		present[batch[i].ID] = struct{}{}
		list = append(list, batch[i])
	}
	return list
}

// dedupePrepend puts the batch in front of the list, preserving batch
// order. Requeued tickets take priority over waiting ones.
func dedupePrepend(list []domain.Ticket, batch []domain.Ticket) []domain.Ticket {
	present := idSet(list)
	front := make([]domain.Ticket, 0, len(batch)+len(list))
	for i := range batch {
		if _, hit := present[batch[i].ID]; hit {
			continue
		}
		present[batch[i].ID] = struct{}{}
		front = append(front, batch[i])
	}
	return append(front, list...)
}
