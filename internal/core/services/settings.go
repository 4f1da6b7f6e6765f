package services

import (
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/tillsync/internal/core/domain"
	"github.com/custodia-labs/tillsync/internal/core/ports/driven"
	"github.com/custodia-labs/tillsync/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvAPIURL overrides api.base_url when set.
const EnvAPIURL = "TILLSYNC_API_URL"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyAPIBaseURL        = "api.base_url"
	keyAPIToken          = "api.token"
	keyAPITimeout        = "api.timeout"
	keyAPIRPS            = "api.requests_per_second"
	keyAPIBurst          = "api.burst"
	keyDataDir           = "storage.data_dir"
	keyConnSource        = "connectivity.source"
	keyConnStatusFile    = "connectivity.status_file"
	keyOnlineDismiss     = "notices.online_dismiss"
	keySchedulerEnabled  = "scheduler.enabled"
	keySchedulerInterval = "scheduler.replay_interval"
	keyServerAddr        = "server.addr"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
}

// Get retrieves current application settings. Missing or invalid values
// fall back to defaults, and TILLSYNC_API_URL overrides the base URL.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		API: domain.APISettings{
			BaseURL:           s.getString(keyAPIBaseURL, defaults.API.BaseURL),
			Token:             s.configStore.GetString(keyAPIToken),
			Timeout:           s.getDuration(keyAPITimeout, defaults.API.Timeout),
			RequestsPerSecond: s.getFloat(keyAPIRPS, defaults.API.RequestsPerSecond),
			Burst:             s.getInt(keyAPIBurst, defaults.API.Burst),
		},
		DataDir: s.configStore.GetString(keyDataDir),
		Connectivity: domain.ConnectivitySettings{
			Source:     s.getConnectivitySource(defaults.Connectivity.Source),
			StatusFile: s.configStore.GetString(keyConnStatusFile),
		},
		OnlineNoticeTTL: s.getDuration(keyOnlineDismiss, defaults.OnlineNoticeTTL),
		Scheduler: domain.SchedulerConfig{
			Enabled:  s.getBool(keySchedulerEnabled, defaults.Scheduler.Enabled),
			Interval: s.getDuration(keySchedulerInterval, defaults.Scheduler.Interval),
		},
		ServerAddr: s.getString(keyServerAddr, defaults.ServerAddr),
	}

	if url := s.getenv(EnvAPIURL); url != "" {
		settings.API.BaseURL = url
	}

	return settings, nil
}

// Save persists application settings. An empty token is not written.
func (s *SettingsService) Save(settings *domain.Settings) error {
	values := []struct {
		key string
		val any
	}{
		{keyAPIBaseURL, settings.API.BaseURL},
		{keyAPITimeout, settings.API.Timeout.String()},
		{keyAPIRPS, settings.API.RequestsPerSecond},
		{keyAPIBurst, settings.API.Burst},
		{keyDataDir, settings.DataDir},
		{keyConnSource, settings.Connectivity.Source.String()},
		{keyConnStatusFile, settings.Connectivity.StatusFile},
		{keyOnlineDismiss, settings.OnlineNoticeTTL.String()},
		{keySchedulerEnabled, settings.Scheduler.Enabled},
		{keySchedulerInterval, settings.Scheduler.Interval.String()},
		{keyServerAddr, settings.ServerAddr},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.val); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.API.Token != "" {
		if err := s.configStore.Set(keyAPIToken, settings.API.Token); err != nil {
			return fmt.Errorf("save %s: %w", keyAPIToken, err)
		}
	}
	return nil
}

// SetAPIToken stores the bearer token for the remote API.
func (s *SettingsService) SetAPIToken(token string) error {
	if token == "" {
		return fmt.Errorf("%w: token must not be empty", domain.ErrInvalidInput)
	}
	if err := s.configStore.Set(keyAPIToken, token); err != nil {
		return fmt.Errorf("save %s: %w", keyAPIToken, err)
	}
	return nil
}

// SetConnectivitySource selects the connectivity source. The file source
// requires a status file path.
func (s *SettingsService) SetConnectivitySource(source domain.ConnectivitySourceType, statusFile string) error {
	if !source.IsValid() {
		return fmt.Errorf("%w: unknown connectivity source %q", domain.ErrInvalidInput, source)
	}
	if source == domain.ConnectivityFile && statusFile == "" {
		return fmt.Errorf("%w: file source requires a status file", domain.ErrInvalidInput)
	}

	if err := s.configStore.Set(keyConnSource, source.String()); err != nil {
		return fmt.Errorf("save %s: %w", keyConnSource, err)
	}
	if statusFile != "" {
		if err := s.configStore.Set(keyConnStatusFile, statusFile); err != nil {
			return fmt.Errorf("save %s: %w", keyConnStatusFile, err)
		}
	}
	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	val := s.configStore.GetFloat(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(val)
	if err != nil || d <= 0 {
		return defaultVal
	}
	return d
}

func (s *SettingsService) getConnectivitySource(defaultVal domain.ConnectivitySourceType) domain.ConnectivitySourceType {
	val := s.configStore.GetString(keyConnSource)
	if val == "" {
		return defaultVal
	}
	source := domain.ConnectivitySourceType(val)
	if !source.IsValid() {
		return defaultVal
	}
	return source
}
