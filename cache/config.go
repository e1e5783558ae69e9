package cache

// Config exposes the entity cache tuning knobs.
type Config struct {
	// MaxSize is the ceiling on cached entries. When an insert pushes the
	// population past it, the oldest EvictionBatch entries are dropped.
	// Must be greater than 0.
	MaxSize int

	// EvictionBatch is how many entries are removed per eviction pass,
	// oldest first by insertion order. Must be greater than 0.
	EvictionBatch int
}

// DefaultConfig returns a Config populated with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxSize:       1000,
		EvictionBatch: 100,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.MaxSize <= 0 {
		return &ConfigError{Field: "MaxSize", Message: "must be greater than 0"}
	}
	if c.EvictionBatch <= 0 {
		return &ConfigError{Field: "EvictionBatch", Message: "must be greater than 0"}
	}
	return nil
}

// ConfigError represents a configuration validation error.
type ConfigError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return "config error in field " + e.Field + ": " + e.Message
}
