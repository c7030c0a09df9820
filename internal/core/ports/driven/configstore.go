package driven

// ConfigStore is the persisted key/value configuration behind Settings.
// Keys are dotted table paths such as "storage.driver" or "import.rate".
// The typed getters return the zero value for a missing key or a value of
// another type.
type ConfigStore interface {
	// Get returns the raw value and whether the key is set.
	Get(key string) (any, bool)

	GetString(key string) string
	GetInt(key string) int

	// GetFloat widens integer values.
	GetFloat(key string) float64

	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores value under key and persists the configuration.
	Set(key string, value any) error

	// Save writes the in-memory configuration.
	Save() error

	// Load replaces the in-memory configuration with the persisted one.
	Load() error

	// Path describes where the configuration is kept.
	Path() string
}
