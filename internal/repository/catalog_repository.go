package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/office-hours/queue-service/internal/domain"
)

// CatalogRepository serves the reference data tickets point at:
// assignments, locations, and personal queues.
type CatalogRepository interface {
	ListActiveAssignments(ctx context.Context) ([]domain.Assignment, error)
	ListActiveLocations(ctx context.Context) ([]domain.Location, error)
	GetAssignmentByID(ctx context.Context, id int64) (*domain.Assignment, error)
	GetLocationByID(ctx context.Context, id int64) (*domain.Location, error)
	GetPersonalQueue(ctx context.Context, name string) (*domain.PersonalQueue, error)
}

type catalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository instantiates repository.
func NewCatalogRepository(pool *pgxpool.Pool) CatalogRepository {
	return &catalogRepository{pool: pool}
}

func (r *catalogRepository) ListActiveAssignments(ctx context.Context) ([]domain.Assignment, error) {
	const query = `SELECT id, name, is_active, created_at FROM assignments
        WHERE is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Assignment
	for rows.Next() {
		var a domain.Assignment
		if err := rows.Scan(&a.ID, &a.Name, &a.IsActive, &a.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, a)
	}
	return result, rows.Err()
}

func (r *catalogRepository) ListActiveLocations(ctx context.Context) ([]domain.Location, error) {
	const query = `SELECT id, name, is_active, created_at FROM locations
        WHERE is_active ORDER BY name`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Location
	for rows.Next() {
		var l domain.Location
		if err := rows.Scan(&l.ID, &l.Name, &l.IsActive, &l.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, l)
	}
	return result, rows.Err()
}

func (r *catalogRepository) GetAssignmentByID(ctx context.Context, id int64) (*domain.Assignment, error) {
	const query = `SELECT id, name, is_active, created_at FROM assignments WHERE id=$1`
	var a domain.Assignment
	if err := r.pool.QueryRow(ctx, query, id).Scan(&a.ID, &a.Name, &a.IsActive, &a.CreatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *catalogRepository) GetLocationByID(ctx context.Context, id int64) (*domain.Location, error) {
	const query = `SELECT id, name, is_active, created_at FROM locations WHERE id=$1`
	var l domain.Location
	if err := r.pool.QueryRow(ctx, query, id).Scan(&l.ID, &l.Name, &l.IsActive, &l.CreatedAt); err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *catalogRepository) GetPersonalQueue(ctx context.Context, name string) (*domain.PersonalQueue, error) {
	const query = `SELECT name, owner_user_id, is_open, created_at FROM personal_queues WHERE name=$1`
	var q domain.PersonalQueue
	err := r.pool.QueryRow(ctx, query, name).Scan(&q.Name, &q.OwnerID, &q.IsOpen, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &q, nil
}
