package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/office-hours/queue-service/internal/domain"
)

// ErrStalePrecondition is returned by TransitionAll when at least one
// targeted ticket is no longer in the expected status. The whole batch is
// rolled back; callers surface this as an invalid transition.
var ErrStalePrecondition = errors.New("one or more tickets not in expected status")

// TransitionMutation describes the field changes applied alongside a status
// transition.
type TransitionMutation struct {
	HelperID        *string
	HelperName      *string
	ClearHelper     bool
	StampHelpedAt   bool
	StampResolvedAt bool
	ClearResolvedAt bool
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	GetByID(ctx context.Context, id int64) (*domain.Ticket, error)
	ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error)
	FindActiveByCreator(ctx context.Context, userID string) (*domain.Ticket, error)
	LastResolvedAt(ctx context.Context, userID string) (*time.Time, error)
	TransitionAll(ctx context.Context, ids []int64, from, to domain.TicketStatus, mut TransitionMutation) ([]domain.Ticket, error)
	ListStats(ctx context.Context, helpedByID *string) ([]domain.TicketStats, error)
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `t.id, t.description, t.ticket_type, t.status, t.is_public,
       t.created_by_user_id, t.created_by_name, t.helped_by_user_id, t.helped_by_name,
       t.assignment_id, a.name, t.location_id, l.name, t.location_description,
       t.personal_queue_name, t.created_at, t.helped_at, t.resolved_at`

const ticketJoins = `FROM tickets t
         JOIN assignments a ON a.id = t.assignment_id
         JOIN locations l ON l.id = t.location_id`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (description, ticket_type, status, is_public,
            created_by_user_id, created_by_name, assignment_id, location_id,
            location_description, personal_queue_name)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
        RETURNING id, created_at`
	return r.pool.QueryRow(ctx, query,
		ticket.Description,
		ticket.TicketType,
		ticket.Status,
		ticket.IsPublic,
		ticket.CreatedByID,
		ticket.CreatedByName,
		ticket.AssignmentID,
		ticket.LocationID,
		ticket.LocationDescription,
		ticket.PersonalQueueName,
	).Scan(&ticket.ID, &ticket.CreatedAt)
}

func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE t.id=$1`, ticketColumns, ticketJoins)
	row := r.pool.QueryRow(ctx, query, id)
	return scanTicketRow(row)
}

func (r *ticketRepository) ListByStatus(ctx context.Context, status domain.TicketStatus) ([]domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s %s WHERE t.status=$1 ORDER BY t.created_at ASC`, ticketColumns, ticketJoins)
	rows, err := r.pool.Query(ctx, query, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanTickets(rows)
}

func (r *ticketRepository) FindActiveByCreator(ctx context.Context, userID string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s %s
        WHERE t.created_by_user_id=$1 AND t.status <> $2
        ORDER BY t.created_at DESC LIMIT 1`, ticketColumns, ticketJoins)
	row := r.pool.QueryRow(ctx, query, userID, domain.TicketStatusResolved)
	ticket, err := scanTicketRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	return ticket, err
}

func (r *ticketRepository) LastResolvedAt(ctx context.Context, userID string) (*time.Time, error) {
	const query = `SELECT MAX(resolved_at) FROM tickets
        WHERE created_by_user_id=$1 AND resolved_at IS NOT NULL`
	var last *time.Time
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&last); err != nil {
		return nil, err
	}
	return last, nil
}

// TransitionAll moves every listed ticket from one status to another as a
// single conditional update. The precondition is enforced by the WHERE
// clause, so two racing calls against the same ticket cannot both succeed.
// If any ticket misses the precondition nothing is applied.
func (r *ticketRepository) TransitionAll(ctx context.Context, ids []int64, from, to domain.TicketStatus, mut TransitionMutation) ([]domain.Ticket, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	sets := []string{"status=$1"}
	args := []any{to}
	if mut.HelperID != nil {
		args = append(args, *mut.HelperID)
		sets = append(sets, fmt.Sprintf("helped_by_user_id=$%d", len(args)))
	}
	if mut.HelperName != nil {
		args = append(args, *mut.HelperName)
		sets = append(sets, fmt.Sprintf("helped_by_name=$%d", len(args)))
	}
	if mut.ClearHelper {
		sets = append(sets, "helped_by_user_id=NULL", "helped_by_name=NULL")
	}
	if mut.StampHelpedAt {
		sets = append(sets, "helped_at=COALESCE(helped_at, NOW())")
	}
	if mut.StampResolvedAt {
		sets = append(sets, "resolved_at=COALESCE(resolved_at, NOW())")
	}
	if mut.ClearResolvedAt {
		sets = append(sets, "resolved_at=NULL")
	}
	args = append(args, ids)
	idsArg := len(args)
	args = append(args, from)
	fromArg := len(args)

	query := fmt.Sprintf(`UPDATE tickets SET %s WHERE id = ANY($%d) AND status=$%d`,
		strings.Join(sets, ", "), idsArg, fromArg)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	cmd, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if cmd.RowsAffected() != int64(len(ids)) {
		return nil, ErrStalePrecondition
	}

	selectQuery := fmt.Sprintf(`SELECT %s %s
        WHERE t.id = ANY($1)
        ORDER BY array_position($1, t.id)`, ticketColumns, ticketJoins)
	rows, err := tx.Query(ctx, selectQuery, ids)
	if err != nil {
		return nil, err
	}
	moved, err := scanTickets(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return moved, nil
}

func (r *ticketRepository) ListStats(ctx context.Context, helpedByID *string) ([]domain.TicketStats, error) {
	base := `SELECT created_at, helped_at, resolved_at, status, ticket_type,
                    description, is_public, location_id, assignment_id
             FROM tickets`
	args := []any{}
	if helpedByID != nil {
		args = append(args, *helpedByID)
		base += " WHERE helped_by_user_id=$1"
	}
	rows, err := r.pool.Query(ctx, base, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TicketStats
	for rows.Next() {
		var entry domain.TicketStats
		if err := rows.Scan(
			&entry.CreatedAt,
			&entry.HelpedAt,
			&entry.ResolvedAt,
			&entry.Status,
			&entry.TicketType,
			&entry.Description,
			&entry.IsPublic,
			&entry.LocationID,
			&entry.AssignmentID,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func scanTicketRow(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	if err := row.Scan(
		&ticket.ID,
		&ticket.Description,
		&ticket.TicketType,
		&ticket.Status,
		&ticket.IsPublic,
		&ticket.CreatedByID,
		&ticket.CreatedByName,
		&ticket.HelpedByID,
		&ticket.HelpedByName,
		&ticket.AssignmentID,
		&ticket.AssignmentName,
		&ticket.LocationID,
		&ticket.LocationName,
		&ticket.LocationDescription,
		&ticket.PersonalQueueName,
		&ticket.CreatedAt,
		&ticket.HelpedAt,
		&ticket.ResolvedAt,
	); err != nil {
		return nil, err
	}
	return &ticket, nil
}

func scanTickets(rows pgx.Rows) ([]domain.Ticket, error) {
	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicketRow(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}
