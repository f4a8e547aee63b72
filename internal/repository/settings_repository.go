package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/office-hours/queue-service/internal/domain"
)

// SettingsRepository persists site-wide queue settings.
type SettingsRepository interface {
	Get(ctx context.Context, key domain.SettingKey) (string, bool, error)
	Set(ctx context.Context, key domain.SettingKey, value string) error
	List(ctx context.Context) ([]domain.SiteSetting, error)
}

type settingsRepository struct {
	pool *pgxpool.Pool
}

// NewSettingsRepository instantiates repository.
func NewSettingsRepository(pool *pgxpool.Pool) SettingsRepository {
	return &settingsRepository{pool: pool}
}

func (r *settingsRepository) Get(ctx context.Context, key domain.SettingKey) (string, bool, error) {
	const query = `SELECT value FROM site_settings WHERE key=$1`
	var value string
	err := r.pool.QueryRow(ctx, query, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *settingsRepository) Set(ctx context.Context, key domain.SettingKey, value string) error {
	const query = `INSERT INTO site_settings (key, value) VALUES ($1,$2)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`
	_, err := r.pool.Exec(ctx, query, key, value)
	return err
}

func (r *settingsRepository) List(ctx context.Context) ([]domain.SiteSetting, error) {
	const query = `SELECT key, value FROM site_settings ORDER BY key`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.SiteSetting
	for rows.Next() {
		var s domain.SiteSetting
		if err := rows.Scan(&s.Key, &s.Value); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	return result, rows.Err()
}
