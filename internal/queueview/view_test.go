package queueview

import (
	"testing"

	"github.com/office-hours/queue-service/internal/domain"
	"github.com/office-hours/queue-service/internal/events"
)

func ticket(id int64, status domain.TicketStatus) domain.Ticket {
	return domain.Ticket{
		ID:          id,
		Description: "help",
		TicketType:  domain.TicketTypeDebugging,
		Status:      status,
	}
}

func ids(tickets []domain.Ticket) []int64 {
	out := make([]int64, len(tickets))
	for i, t := range tickets {
		out[i] = t.ID
	}
	return out
}

func assertIDs(t *testing.T, got []domain.Ticket, want ...int64) {
	t.Helper()
	gotIDs := ids(got)
	if len(gotIDs) != len(want) {
		t.Fatalf("got ids %v, want %v", gotIDs, want)
	}
	for i := range want {
		if gotIDs[i] != want[i] {
			t.Fatalf("got ids %v, want %v", gotIDs, want)
		}
	}
}

func TestApprovedMovesPendingToOpen(t *testing.T) {
	v := NewView(func() bool { return true })
	v.Seed(domain.TicketStatusPending, []domain.Ticket{ticket(1, domain.TicketStatusPending)})
	v.Seed(domain.TicketStatusOpen, nil)

	v.Apply(events.TicketsApproved{Tickets: []domain.Ticket{ticket(1, domain.TicketStatusOpen)}})

	snap := v.Snapshot()
	assertIDs(t, snap.Pending)
	assertIDs(t, snap.Open, 1)
}

func TestAssignedEventIsIdempotent(t *testing.T) {
	v := NewView(nil)
	v.Seed(domain.TicketStatusOpen, []domain.Ticket{ticket(1, domain.TicketStatusOpen), ticket(2, domain.TicketStatusOpen)})

	assigned := events.TicketsAssigned{Tickets: []domain.Ticket{ticket(1, domain.TicketStatusAssigned)}}
	v.Apply(assigned)
	v.Apply(assigned)

	snap := v.Snapshot()
	assertIDs(t, snap.Open, 2)
	assertIDs(t, snap.Assigned, 1)
}

func TestRequeuePrependsAheadOfWaitingTickets(t *testing.T) {
	v := NewView(nil)
	v.Seed(domain.TicketStatusOpen, []domain.Ticket{ticket(3, domain.TicketStatusOpen)})
	v.Seed(domain.TicketStatusAssigned, []domain.Ticket{
		ticket(1, domain.TicketStatusAssigned),
		ticket(2, domain.TicketStatusAssigned),
	})

	v.Apply(events.TicketsRequeued{Tickets: []domain.Ticket{
		ticket(1, domain.TicketStatusOpen),
		ticket(2, domain.TicketStatusOpen),
	}})

	snap := v.Snapshot()
	assertIDs(t, snap.Assigned)
	assertIDs(t, snap.Open, 1, 2, 3)
}

func TestResolvedLeavesAllPartitions(t *testing.T) {
	v := NewView(nil)
	v.Seed(domain.TicketStatusAssigned, []domain.Ticket{ticket(1, domain.TicketStatusAssigned)})

	resolved := events.TicketsResolved{Tickets: []domain.Ticket{ticket(1, domain.TicketStatusResolved)}}
	v.Apply(resolved)
	// A duplicate delivery of the same event is a no-op.
	v.Apply(resolved)

	snap := v.Snapshot()
	assertIDs(t, snap.Pending)
	assertIDs(t, snap.Open)
	assertIDs(t, snap.Assigned)
}

func TestReopenedReentersOpen(t *testing.T) {
	v := NewView(nil)
	v.Seed(domain.TicketStatusOpen, []domain.Ticket{ticket(2, domain.TicketStatusOpen)})

	v.Apply(events.TicketsReopened{Tickets: []domain.Ticket{ticket(1, domain.TicketStatusOpen)}})

	assertIDs(t, v.Snapshot().Open, 2, 1)
}

func TestNewTicketRoutingUsesLatestPendingStageSetting(t *testing.T) {
	enabled := true
	v := NewView(func() bool { return enabled })
	v.Seed(domain.TicketStatusPending, nil)
	v.Seed(domain.TicketStatusOpen, nil)

	v.Apply(events.NewTicket{Ticket: ticket(1, domain.TicketStatusPending)})
	// The stage is switched off between arrival and the routing step; the
	// decision must reflect the new value.
	enabled = false
	v.Flush()

	snap := v.Snapshot()
	assertIDs(t, snap.Pending)
	assertIDs(t, snap.Open, 1)
}

func TestNewTicketRoutedToPendingWhenStageEnabled(t *testing.T) {
	v := NewView(func() bool { return true })

	v.Apply(events.NewTicket{Ticket: ticket(1, domain.TicketStatusPending)})
	v.Flush()

	snap := v.Snapshot()
	assertIDs(t, snap.Pending, 1)
	assertIDs(t, snap.Open)
}

func TestAssignedBeforeNewTicketConverges(t *testing.T) {
	// Cross-topic ordering is not guaranteed: the assignment may be
	// processed before the announcement of the ticket it targets.
	v := NewView(func() bool { return true })

	v.Apply(events.TicketsAssigned{Tickets: []domain.Ticket{ticket(7, domain.TicketStatusAssigned)}})
	v.Apply(events.NewTicket{Ticket: ticket(7, domain.TicketStatusPending)})
	v.Flush()

	snap := v.Snapshot()
	assertIDs(t, snap.Assigned, 7)
	assertIDs(t, snap.Pending)
	assertIDs(t, snap.Open)
}

func TestApprovedBatchPreservesRelativeOrder(t *testing.T) {
	v := NewView(nil)
	v.Seed(domain.TicketStatusPending, []domain.Ticket{
		ticket(1, domain.TicketStatusPending),
		ticket(2, domain.TicketStatusPending),
	})
	v.Seed(domain.TicketStatusOpen, []domain.Ticket{ticket(5, domain.TicketStatusOpen)})

	v.Apply(events.TicketsApproved{Tickets: []domain.Ticket{
		ticket(2, domain.TicketStatusOpen),
		ticket(1, domain.TicketStatusOpen),
	}})

	assertIDs(t, v.Snapshot().Open, 5, 2, 1)
}

func TestSeedTracksPerPartitionLoading(t *testing.T) {
	v := NewView(nil)
	v.Seed(domain.TicketStatusOpen, nil)

	snap := v.Snapshot()
	if !snap.OpenLoaded {
		t.Fatal("open partition should be marked loaded")
	}
	if snap.PendingLoaded || snap.AssignedLoaded {
		t.Fatal("unseeded partitions must stay unloaded")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	v := NewView(nil)
	v.Seed(domain.TicketStatusOpen, []domain.Ticket{ticket(1, domain.TicketStatusOpen)})

	snap := v.Snapshot()
	snap.Open[0].ID = 99

	assertIDs(t, v.Snapshot().Open, 1)
}
