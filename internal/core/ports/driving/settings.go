package driving

import "github.com/custodia-labs/rawrepo-update/internal/core/domain"

// SettingsService manages service settings.
type SettingsService interface {
	// Get returns the current settings with defaults applied.
	Get() (*domain.Settings, error)

	// Set stores one setting by key.
	Set(key string, value any) error
}
