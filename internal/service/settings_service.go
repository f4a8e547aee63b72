package service

import (
	"context"
	"strconv"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/office-hours/queue-service/internal/domain"
	"github.com/office-hours/queue-service/internal/repository"
	apperrors "github.com/office-hours/queue-service/pkg/util"
)

// SettingsService reads and mutates site-wide queue settings. It keeps the
// last observed pending-stage value so consumers that cannot afford a
// store round-trip (the reconciliation view's routing step) still see the
// freshest known value.
type SettingsService struct {
	repo                   repository.SettingsRepository
	logger                 *zap.Logger
	defaultCooldownMinutes int

	lastPendingStage atomic.Bool
}

// NewSettingsService constructs the service.
func NewSettingsService(repo repository.SettingsRepository, logger *zap.Logger, defaultCooldownMinutes int) *SettingsService {
	return &SettingsService{
		repo:                   repo,
		logger:                 logger,
		defaultCooldownMinutes: defaultCooldownMinutes,
	}
}

// PendingStageEnabled reports whether new tickets pass through moderation.
func (s *SettingsService) PendingStageEnabled(ctx context.Context) (bool, error) {
	enabled, err := s.boolSetting(ctx, domain.SettingPendingStageEnabled, false)
	if err != nil {
		return false, err
	}
	s.lastPendingStage.Store(enabled)
	return enabled, nil
}

// PublicTicketsEnabled reports whether conceptual tickets may be public.
func (s *SettingsService) PublicTicketsEnabled(ctx context.Context) (bool, error) {
	return s.boolSetting(ctx, domain.SettingPublicTicketsEnabled, false)
}

// CooldownMinutes returns the creation cooldown after a resolved ticket.
func (s *SettingsService) CooldownMinutes(ctx context.Context) (int, error) {
	value, found, err := s.repo.Get(ctx, domain.SettingCooldownMinutes)
	if err != nil {
		return 0, apperrors.MapError(err)
	}
	if !found {
		return s.defaultCooldownMinutes, nil
	}
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes < 0 {
		s.logger.Warn("invalid cooldown setting, using default", zap.String("value", value))
		return s.defaultCooldownMinutes, nil
	}
	return minutes, nil
}

// LastKnownPendingStage returns the most recently observed pending-stage
// value without touching the store. Used at event-routing time where the
// decision must be synchronous.
func (s *SettingsService) LastKnownPendingStage(ctx context.Context) bool {
	if enabled, err := s.PendingStageEnabled(ctx); err == nil {
		return enabled
	}
	return s.lastPendingStage.Load()
}

// Set writes one setting.
func (s *SettingsService) Set(ctx context.Context, key domain.SettingKey, value string) error {
	switch key {
	case domain.SettingPendingStageEnabled, domain.SettingPublicTicketsEnabled:
		if _, err := strconv.ParseBool(value); err != nil {
			return apperrors.NewValidationError("value must be a boolean", map[string]any{"key": key})
		}
	case domain.SettingCooldownMinutes:
		minutes, err := strconv.Atoi(value)
		if err != nil || minutes < 0 {
			return apperrors.NewValidationError("value must be a non-negative integer", map[string]any{"key": key})
		}
	default:
		return apperrors.NewValidationError("unknown setting", map[string]any{"key": key})
	}
	if err := s.repo.Set(ctx, key, value); err != nil {
		return apperrors.MapError(err)
	}
	if key == domain.SettingPendingStageEnabled {
		enabled, _ := strconv.ParseBool(value)
		s.lastPendingStage.Store(enabled)
	}
	s.logger.Info("setting updated", zap.String("key", string(key)), zap.String("value", value))
	return nil
}

// List returns all stored settings.
func (s *SettingsService) List(ctx context.Context) ([]domain.SiteSetting, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return settings, nil
}

func (s *SettingsService) boolSetting(ctx context.Context, key domain.SettingKey, fallback bool) (bool, error) {
	value, found, err := s.repo.Get(ctx, key)
	if err != nil {
		return fallback, apperrors.MapError(err)
	}
	if !found {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		s.logger.Warn("invalid boolean setting", zap.String("key", string(key)), zap.String("value", value))
		return fallback, nil
	}
	return parsed, nil
}
