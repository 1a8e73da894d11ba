package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
}

// ServerConfig contains all HTTP server related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required,url"`
}

// SchedulerConfig contains the claim-and-process loop settings. These are
// process-wide configuration injected into the scheduler, not global state.
type SchedulerConfig struct {
	// PollInterval is the fixed delay between ticks.
	PollInterval time.Duration `mapstructure:"poll_interval" validate:"required,min=1s"`

	// GraceHours bounds how far in the past a trigger instant may lie and
	// still be processed. Older obligations are treated as missed rather
	// than flooding stale notifications after an outage.
	GraceHours int `mapstructure:"grace_hours" validate:"required,gte=1,lte=720"`

	// MaxPerTick caps how many tasks a single tick may process.
	MaxPerTick int `mapstructure:"max_per_tick" validate:"required,gte=1,lte=1000"`

	// SendTimeout bounds a single notification delivery attempt. A timed
	// out send is classified as retryable.
	SendTimeout time.Duration `mapstructure:"send_timeout" validate:"required,min=1s"`
}
