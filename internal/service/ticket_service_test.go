package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/office-hours/queue-service/internal/domain"
	"github.com/office-hours/queue-service/internal/events"
	"github.com/office-hours/queue-service/internal/repository"
)

type fakeTicketRepo struct {
	created      []*domain.Ticket
	activeTicket *domain.Ticket
	lastResolved *time.Time
	nextID       int64
}

func (f *fakeTicketRepo) Create(ctx context.Context, ticket *domain.Ticket) error {
	f.nextID++
	ticket.ID = f.nextID
	ticket.CreatedAt = time.Now()
	copied := *ticket
	f.created = append(f.created, &copied)
	return nil
}

func (f *fakeTicketRepo) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	for _, ticket := range f.created {
		if ticket.ID == id {
			copied := *ticket
			copied.AssignmentName = "Lab 3"
			copied.LocationName = "Cory 111"
			return &copied, nil
		}
	}
	return nil, errors.New("ticket not found")
}

func (f *fakeTicketRepo) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	return nil, nil
}

func (f *fakeTicketRepo) FindActiveByCreator(ctx context.Context, userID string) (*domain.Ticket, error) {
	return f.activeTicket, nil
}

func (f *fakeTicketRepo) LastResolvedAt(ctx context.Context, userID string) (*time.Time, error) {
	return f.lastResolved, nil
}

func (f *fakeTicketRepo) TransitionAll(ctx context.Context, ids []int64, from, to domain.TicketStatus, mut repository.TransitionMutation) ([]domain.Ticket, error) {
	return nil, nil
}

func (f *fakeTicketRepo) ListStats(ctx context.Context, helpedByID *string) ([]domain.TicketStats, error) {
	return nil, nil
}

type fakeCatalogRepo struct{}

func (fakeCatalogRepo) ListActiveAssignments(ctx context.Context) ([]domain.Assignment, error) {
	return nil, nil
}

func (fakeCatalogRepo) ListActiveLocations(ctx context.Context) ([]domain.Location, error) {
	return nil, nil
}

func (fakeCatalogRepo) GetAssignmentByID(ctx context.Context, id int64) (*domain.Assignment, error) {
	return &domain.Assignment{ID: id, Name: "Lab 3", IsActive: true}, nil
}

func (fakeCatalogRepo) GetLocationByID(ctx context.Context, id int64) (*domain.Location, error) {
	return &domain.Location{ID: id, Name: "Cory 111", IsActive: true}, nil
}

func (fakeCatalogRepo) GetPersonalQueue(ctx context.Context, name string) (*domain.PersonalQueue, error) {
	return &domain.PersonalQueue{Name: name, OwnerID: "staff-1", IsOpen: true}, nil
}

type fakeSettingsRepo struct {
	values map[domain.SettingKey]string
}

func (f *fakeSettingsRepo) Get(ctx context.Context, key domain.SettingKey) (string, bool, error) {
	value, ok := f.values[key]
	return value, ok, nil
}

func (f *fakeSettingsRepo) Set(ctx context.Context, key domain.SettingKey, value string) error {
	f.values[key] = value
	return nil
}

func (f *fakeSettingsRepo) List(ctx context.Context) ([]domain.SiteSetting, error) {
	return nil, nil
}

type serviceFixture struct {
	service   *TicketService
	tickets   *fakeTicketRepo
	settings  *fakeSettingsRepo
	publisher *events.MemoryPublisher
}

func newFixture(settings map[domain.SettingKey]string) *serviceFixture {
	tickets := &fakeTicketRepo{}
	settingsRepo := &fakeSettingsRepo{values: settings}
	publisher := events.NewMemoryPublisher()
	logger := zap.NewNop()
	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		CatalogRepo: fakeCatalogRepo{},
		Settings:    NewSettingsService(settingsRepo, logger, 10),
		Publisher:   publisher,
		Logger:      logger,
	})
	return &serviceFixture{service: svc, tickets: tickets, settings: settingsRepo, publisher: publisher}
}

func createInput(ticketType domain.TicketType, isPublic bool) CreateTicketInput {
	return CreateTicketInput{
		Description:         "Conceptual question about pipelining",
		AssignmentID:        1,
		LocationID:          1,
		LocationDescription: "station 4",
		TicketType:          ticketType,
		IsPublic:            isPublic,
	}
}

func TestConceptualTicketStartsOpenAndPublic(t *testing.T) {
	fx := newFixture(map[domain.SettingKey]string{
		domain.SettingPendingStageEnabled:  "false",
		domain.SettingPublicTicketsEnabled: "true",
	})

	result, err := fx.service.CreateTicket(context.Background(), "student-1", "Grace", createInput(domain.TicketTypeConceptual, true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Ticket == nil {
		t.Fatalf("ticket not created: %+v", result.Rejection)
	}
	if result.Ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("status %s, want OPEN with pending stage disabled", result.Ticket.Status)
	}
	if !result.Ticket.IsPublic {
		t.Fatal("conceptual ticket should honor the public toggle")
	}
}

func TestDebuggingTicketIsForcedPrivate(t *testing.T) {
	fx := newFixture(map[domain.SettingKey]string{
		domain.SettingPendingStageEnabled:  "false",
		domain.SettingPublicTicketsEnabled: "true",
	})

	result, err := fx.service.CreateTicket(context.Background(), "student-1", "Grace", createInput(domain.TicketTypeDebugging, true))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Ticket.IsPublic {
		t.Fatal("debugging tickets must never be public")
	}
}

func TestModeratedTypeStartsPendingWhenStageEnabled(t *testing.T) {
	fx := newFixture(map[domain.SettingKey]string{
		domain.SettingPendingStageEnabled: "true",
	})

	result, err := fx.service.CreateTicket(context.Background(), "student-1", "Grace", createInput(domain.TicketTypeDebugging, false))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Ticket.Status != domain.TicketStatusPending {
		t.Fatalf("status %s, want PENDING", result.Ticket.Status)
	}
}

func TestCheckoffSkipsModeration(t *testing.T) {
	fx := newFixture(map[domain.SettingKey]string{
		domain.SettingPendingStageEnabled: "true",
	})

	result, err := fx.service.CreateTicket(context.Background(), "student-1", "Grace", createInput(domain.TicketTypeCheckoff, false))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Ticket.Status != domain.TicketStatusOpen {
		t.Fatalf("status %s, want OPEN for checkoff even with pending stage on", result.Ticket.Status)
	}
}

func TestCreateRejectedWhenTicketAlreadyActive(t *testing.T) {
	fx := newFixture(map[domain.SettingKey]string{})
	fx.tickets.activeTicket = &domain.Ticket{ID: 42, Status: domain.TicketStatusOpen, CreatedByID: "student-1"}

	result, err := fx.service.CreateTicket(context.Background(), "student-1", "Grace", createInput(domain.TicketTypeConceptual, false))
	if err != nil {
		t.Fatalf("rejection must not be an error: %v", err)
	}
	if result.Ticket != nil {
		t.Fatal("no ticket may be created while another is active")
	}
	if result.Rejection == nil || result.Rejection.Reason != RejectionAlreadyActive {
		t.Fatalf("rejection %+v, want ALREADY_ACTIVE_TICKET", result.Rejection)
	}
}

func TestCreateRejectedDuringCooldownWithRemainingMinutes(t *testing.T) {
	fx := newFixture(map[domain.SettingKey]string{
		domain.SettingCooldownMinutes: "10",
	})
	resolved := time.Now().Add(-4 * time.Minute)
	fx.tickets.lastResolved = &resolved

	result, err := fx.service.CreateTicket(context.Background(), "student-1", "Grace", createInput(domain.TicketTypeConceptual, false))
	if err != nil {
		t.Fatalf("rejection must not be an error: %v", err)
	}
	if result.Rejection == nil || result.Rejection.Reason != RejectionCooldown {
		t.Fatalf("rejection %+v, want COOLDOWN", result.Rejection)
	}
	if result.Rejection.CooldownMinutes != 6 {
		t.Fatalf("remaining minutes %d, want 6", result.Rejection.CooldownMinutes)
	}
}

func TestCreateAllowedAfterCooldownExpires(t *testing.T) {
	fx := newFixture(map[domain.SettingKey]string{
		domain.SettingCooldownMinutes: "10",
	})
	resolved := time.Now().Add(-11 * time.Minute)
	fx.tickets.lastResolved = &resolved

	result, err := fx.service.CreateTicket(context.Background(), "student-1", "Grace", createInput(domain.TicketTypeConceptual, false))
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if result.Ticket == nil {
		t.Fatalf("ticket should be created after cooldown, got %+v", result.Rejection)
	}
}

func TestCreateEmitsNewTicketEvent(t *testing.T) {
	fx := newFixture(map[domain.SettingKey]string{})

	result, err := fx.service.CreateTicket(context.Background(), "student-1", "Grace", createInput(domain.TicketTypeConceptual, false))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	published := fx.publisher.Published()
	if len(published) != 1 {
		t.Fatalf("published %d messages, want 1", len(published))
	}
	msg := published[0]
	if msg.Topic != events.GlobalTopic || msg.Envelope.Name != events.NameNewTicket {
		t.Fatalf("published %s on %s, want %s on %s", msg.Envelope.Name, msg.Topic, events.NameNewTicket, events.GlobalTopic)
	}
	decoded, known, err := events.Decode(msg.Envelope)
	if err != nil || !known {
		t.Fatalf("decode: known=%v err=%v", known, err)
	}
	announced, ok := decoded.(events.NewTicket)
	if !ok {
		t.Fatalf("decoded %T, want NewTicket", decoded)
	}
	if announced.Ticket.ID != result.Ticket.ID {
		t.Fatalf("announced ticket %d, want %d", announced.Ticket.ID, result.Ticket.ID)
	}
}

func TestCreateRejectsOversizedDescription(t *testing.T) {
	fx := newFixture(map[domain.SettingKey]string{})
	input := createInput(domain.TicketTypeConceptual, false)
	long := make([]byte, domain.MaxDescriptionLength+1)
	for i := range long {
		long[i] = 'a'
	}
	input.Description = string(long)

	if _, err := fx.service.CreateTicket(context.Background(), "student-1", "Grace", input); err == nil {
		t.Fatal("oversized description must fail validation")
	}
}
