package services

import (
	"fmt"

	"github.com/custodia-labs/rawrepo-update/internal/core/domain"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driven"
	"github.com/custodia-labs/rawrepo-update/internal/core/ports/driving"
)

// Config keys for settings storage.
const (
	keyStorageDriver       = "storage.driver"
	keyStorageDataDir      = "storage.data_dir"
	keyStoragePostgresDSN  = "storage.postgres_dsn"
	keyUpdateProvider      = "update.provider"
	keyRulesClassification = "rules.classification_fields"
	keyRulesDBCEnrichment  = "rules.dbc_enrichment"
	keyImportRate          = "import.rate"
	keyImportBurst         = "import.burst"
	keyS3Region            = "s3.region"
	keyS3Endpoint          = "s3.endpoint"
	keyS3PathStyle         = "s3.path_style"
	keyMetricsAddr         = "metrics.addr"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// SettingsService reads service settings from a ConfigStore.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get returns the configured settings, falling back to defaults for
// missing keys. An unknown storage driver is rejected.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Storage: domain.StorageSettings{
			Driver:      domain.StorageDriver(s.getString(keyStorageDriver, defaults.Storage.Driver.String())),
			DataDir:     s.configStore.GetString(keyStorageDataDir),
			PostgresDSN: s.configStore.GetString(keyStoragePostgresDSN),
		},
		Update: domain.UpdateSettings{
			Provider: s.getString(keyUpdateProvider, defaults.Update.Provider),
		},
		Rules: domain.RuleSettings{
			ClassificationFields: s.configStore.GetStringSlice(keyRulesClassification),
			DBCEnrichment:        s.configStore.GetBool(keyRulesDBCEnrichment),
		},
		Import: domain.ImportSettings{
			Rate:  s.configStore.GetFloat(keyImportRate),
			Burst: s.getInt(keyImportBurst, defaults.Import.Burst),
		},
		S3: domain.S3Settings{
			Region:    s.configStore.GetString(keyS3Region),
			Endpoint:  s.configStore.GetString(keyS3Endpoint),
			PathStyle: s.configStore.GetBool(keyS3PathStyle),
		},
		Metrics: domain.MetricsSettings{
			Addr: s.configStore.GetString(keyMetricsAddr),
		},
	}

	if !settings.Storage.Driver.IsValid() {
		return nil, fmt.Errorf("storage driver %q: %w", settings.Storage.Driver, domain.ErrInvalidInput)
	}
	return settings, nil
}

// Set stores one setting by key.
func (s *SettingsService) Set(key string, value any) error {
	if err := s.configStore.Set(key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

func (s *SettingsService) getString(key, fallback string) string {
	if v := s.configStore.GetString(key); v != "" {
		return v
	}
	return fallback
}

func (s *SettingsService) getInt(key string, fallback int) int {
	if v := s.configStore.GetInt(key); v > 0 {
		return v
	}
	return fallback
}
