package domain

// StorageDriver selects the record store backend.
type StorageDriver string

// Available storage drivers.
const (
	// StorageSQLite is the embedded single-file store.
	StorageSQLite StorageDriver = "sqlite"

	// StoragePostgres is the shared server store.
	StoragePostgres StorageDriver = "postgres"

	// StorageMemory keeps records in process memory only.
	StorageMemory StorageDriver = "memory"
)

// IsValid returns true if the storage driver is recognised.
func (d StorageDriver) IsValid() bool {
	switch d {
	case StorageSQLite, StoragePostgres, StorageMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d StorageDriver) String() string {
	return string(d)
}

// Settings is the complete service configuration.
type Settings struct {
	Storage StorageSettings
	Update  UpdateSettings
	Rules   RuleSettings
	Import  ImportSettings
	S3      S3Settings
	Metrics MetricsSettings
}

// StorageSettings configures the record store.
type StorageSettings struct {
	Driver StorageDriver
	// DataDir holds the SQLite database. Empty means ~/.rawrepo/data.
	DataDir     string
	PostgresDSN string
}

// UpdateSettings configures the update flow.
type UpdateSettings struct {
	// Provider tags every change signal.
	Provider string
}

// RuleSettings configures the native rule table.
type RuleSettings struct {
	// ClassificationFields overrides the default classification fields when set.
	ClassificationFields []string
	DBCEnrichment        bool
}

// ImportSettings configures bulk imports.
type ImportSettings struct {
	// Rate is the maximum number of records per second. Zero disables throttling.
	Rate  float64
	Burst int
}

// S3Settings configures the S3 import source.
type S3Settings struct {
	Region    string
	Endpoint  string
	PathStyle bool
}

// MetricsSettings configures the metrics endpoint.
type MetricsSettings struct {
	// Addr is the listen address of the /metrics endpoint. Empty disables it.
	Addr string
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		Storage: StorageSettings{Driver: StorageSQLite},
		Update:  UpdateSettings{Provider: Provider},
		Import:  ImportSettings{Burst: 1},
	}
}
