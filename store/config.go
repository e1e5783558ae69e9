package store

import "time"

// Config exposes connection manager configuration options.
type Config struct {
	// Driver is the database/sql driver name, e.g. "sqlite3" or "postgres".
	Driver string

	// DSN is the driver-specific connection string.
	DSN string

	// RetryAttempts is how many times Connect tries to establish the
	// connection before giving up. Must be greater than 0.
	RetryAttempts int

	// RetryBaseDelay scales the backoff between attempts: the wait after
	// attempt n is n * RetryBaseDelay.
	RetryBaseDelay time.Duration

	// ConnectionTimeout bounds each store I/O operation, including the
	// initial dial and liveness probes.
	ConnectionTimeout time.Duration

	// StatementCacheSize bounds the prepared-statement cache. When full,
	// the oldest quarter of entries is closed and dropped before a new
	// statement is prepared. Must be greater than 0.
	StatementCacheSize int

	// QueryLogSize bounds the in-memory query log. When exceeded, the
	// oldest half is discarded.
	QueryLogSize int
}

// DefaultConfig returns a Config populated with sensible defaults.
// Driver and DSN must still be supplied by the caller.
func DefaultConfig() Config {
	return Config{
		RetryAttempts:      3,
		RetryBaseDelay:     time.Second,
		ConnectionTimeout:  30 * time.Second,
		StatementCacheSize: 100,
		QueryLogSize:       1000,
	}
}

// Validate checks whether the configuration values are valid.
func (c Config) Validate() error {
	if c.Driver == "" {
		return &ConfigError{Field: "Driver", Message: "must not be empty"}
	}
	if c.DSN == "" {
		return &ConfigError{Field: "DSN", Message: "must not be empty"}
	}
	if c.RetryAttempts <= 0 {
		return &ConfigError{Field: "RetryAttempts", Message: "must be greater than 0"}
	}
	if c.RetryBaseDelay < 0 {
		return &ConfigError{Field: "RetryBaseDelay", Message: "must be non-negative"}
	}
	if c.ConnectionTimeout <= 0 {
		return &ConfigError{Field: "ConnectionTimeout", Message: "must be greater than 0"}
	}
	if c.StatementCacheSize <= 0 {
		return &ConfigError{Field: "StatementCacheSize", Message: "must be greater than 0"}
	}
	if c.QueryLogSize <= 0 {
		return &ConfigError{Field: "QueryLogSize", Message: "must be greater than 0"}
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
