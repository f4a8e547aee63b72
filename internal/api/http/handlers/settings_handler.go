package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/office-hours/queue-service/internal/api/dto"
	"github.com/office-hours/queue-service/internal/domain"
	"github.com/office-hours/queue-service/internal/service"
	apperrors "github.com/office-hours/queue-service/pkg/util"
)

// SettingsHandler exposes site-wide queue settings to staff.
type SettingsHandler struct {
	settings *service.SettingsService
}

// NewSettingsHandler constructs handler.
func NewSettingsHandler(settings *service.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// ListSettings GET /settings.
func (h *SettingsHandler) ListSettings(c *fiber.Ctx) error {
	settings, err := h.settings.List(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": settings})
}

// UpdateSetting PUT /settings/:key.
func (h *SettingsHandler) UpdateSetting(c *fiber.Ctx) error {
	key := domain.SettingKey(c.Params("key"))
	var req dto.UpdateSettingRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.settings.Set(c.UserContext(), key, req.Value); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": domain.SiteSetting{Key: key, Value: req.Value}})
}
