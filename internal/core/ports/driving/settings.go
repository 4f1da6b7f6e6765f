package driving

import "github.com/custodia-labs/tillsync/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings, with defaults and
	// environment overrides applied.
	Get() (*domain.Settings, error)

	// Save persists application settings.
	Save(settings *domain.Settings) error

	// SetAPIToken stores the bearer token for the remote API.
	SetAPIToken(token string) error

	// SetConnectivitySource selects the connectivity source.
	SetConnectivitySource(source domain.ConnectivitySourceType, statusFile string) error

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings
}
