package events

import (
	"context"
	"testing"

	"github.com/office-hours/queue-service/internal/domain"
)

func TestDecodeSkipsUnknownEventNames(t *testing.T) {
	event, known, err := Decode(Envelope{ID: "1", Name: "ticket-migrated", Data: []byte(`{}`)})
	if err != nil {
		t.Fatalf("unknown names must not error: %v", err)
	}
	if known || event != nil {
		t.Fatalf("got known=%v event=%v, want the envelope dropped", known, event)
	}
}

func TestDecodeReportsMalformedPayloads(t *testing.T) {
	_, known, err := Decode(Envelope{ID: "1", Name: NameTicketsApproved, Data: []byte(`not-json`)})
	if !known {
		t.Fatal("a recognized name with a bad payload is still known")
	}
	if err == nil {
		t.Fatal("malformed payload must surface a decode error")
	}
}

func TestPublishDecodeRoundTrip(t *testing.T) {
	publisher := NewMemoryPublisher()
	batch := []domain.Ticket{
		{ID: 7, Status: domain.TicketStatusOpen},
		{ID: 9, Status: domain.TicketStatusOpen},
	}
	if err := publisher.Publish(context.Background(), GlobalTopic, NameTicketsRequeued, batch); err != nil {
		t.Fatalf("publish: %v", err)
	}

	published := publisher.Published()
	if len(published) != 1 {
		t.Fatalf("published %d messages, want 1", len(published))
	}
	event, known, err := Decode(published[0].Envelope)
	if err != nil || !known {
		t.Fatalf("decode: known=%v err=%v", known, err)
	}
	requeued, ok := event.(TicketsRequeued)
	if !ok {
		t.Fatalf("decoded %T, want TicketsRequeued", event)
	}
	if len(requeued.Tickets) != 2 || requeued.Tickets[0].ID != 7 {
		t.Fatalf("decoded batch %+v, want tickets 7 and 9 in order", requeued.Tickets)
	}
}

func TestMemoryPublisherNotifiesTopicListeners(t *testing.T) {
	publisher := NewMemoryPublisher()
	var seen []string
	publisher.Subscribe(TicketTopic(4), func(env Envelope) {
		seen = append(seen, env.Name)
	})

	if err := publisher.Publish(context.Background(), TicketTopic(4), SignalTicketResolved, nil); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if err := publisher.Publish(context.Background(), TicketTopic(5), SignalTicketResolved, nil); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(seen) != 1 || seen[0] != SignalTicketResolved {
		t.Fatalf("listener saw %v, want exactly one %s on its own topic", seen, SignalTicketResolved)
	}
}
