package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Study    StudyConfig    `mapstructure:"study"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret"             validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"required,gt=0"`
}

// StudyConfig contains study-session tuning knobs.
type StudyConfig struct {
	// HardIsLapse treats a Hard rating as failed recall. Off by default.
	HardIsLapse bool `mapstructure:"hard_is_lapse"`

	// SessionTTLMinutes is how long a built session stays answerable.
	// Zero means sessions never expire.
	SessionTTLMinutes int `mapstructure:"session_ttl_minutes" validate:"gte=0"`

	// ConflictRetries bounds the read-compute-write retry loop when a
	// schedule write hits a version conflict.
	ConflictRetries int `mapstructure:"conflict_retries" validate:"gte=0"`
}
