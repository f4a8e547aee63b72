package domain

// SettingKey identifies a site-wide setting.
type SettingKey string

const (
	// SettingPendingStageEnabled gates the PENDING moderation stage. When
	// disabled, new tickets go straight to OPEN.
	SettingPendingStageEnabled SettingKey = "IS_PENDING_STAGE_ENABLED"
	// SettingPublicTicketsEnabled allows conceptual tickets to be public.
	SettingPublicTicketsEnabled SettingKey = "ARE_PUBLIC_TICKETS_ENABLED"
	// SettingCooldownMinutes is the minimum wait after a student's last
	// resolved ticket before they may create another.
	SettingCooldownMinutes SettingKey = "COOLDOWN_MINUTES"
)

// SiteSetting is one key/value pair of queue configuration.
type SiteSetting struct {
	Key   SettingKey `json:"key"`
	Value string     `json:"value"`
}
